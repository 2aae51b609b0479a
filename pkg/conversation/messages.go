package conversation

import (
	"fmt"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
)

const (
	designEditReply    = "Here is the updated version."
	editFailedReply    = "Sorry, I couldn't process that change. Please try again."
	mockupFailedReply  = "Sorry, I couldn't generate the mockup. Please try again."
	mockupEditReplyFmt = "Updated model: %s"
	tryOnReplyFmt      = "Here is a preview: %s. \n\nYou can chat with me to change the model (e.g., \"Change to a black hoodie\")."
	openReplyFmt       = "Here is your %s design for \"%s\"! \nStyle: %s. \n\nNeed any changes?"
)

func openReply(d domain.Design) string {
	return fmt.Sprintf(openReplyFmt, d.Kind.Label(), d.Prompt, d.Style)
}
