package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"google.golang.org/genai"

	"github.com/shouni/gemini-sticker-kit/pkg/domain"
	"github.com/shouni/gemini-sticker-kit/pkg/imgutil"
)

const (
	// ImageCompressionQuality は参照画像を送信前に JPEG 化するときの品質です。
	ImageCompressionQuality = 85
	// compressThreshold を超える参照画像だけ圧縮します。
	compressThreshold = 1 << 20
)

// ImageCacher は画像データのキャッシュ操作を抽象化するインターフェースです。
type ImageCacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, d time.Duration)
}

// GeminiImageCore は参照画像の取得・キャッシュと、Gemini の応答の解析を担う共通コンポーネントです。
type GeminiImageCore struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	imageCache ImageCacher
	cacheTTL   time.Duration
}

// NewGeminiImageCore は依存関係を注入して GeminiImageCore のインスタンスを生成します。
// reader と imageCache は nil を許容します（gs:// 非対応・キャッシュなし）。
func NewGeminiImageCore(httpClient httpkit.ClientInterface, reader remoteio.InputReader, imageCache ImageCacher, cacheTTL time.Duration) (*GeminiImageCore, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &GeminiImageCore{
		httpClient: httpClient,
		reader:     reader,
		imageCache: imageCache,
		cacheTTL:   cacheTTL,
	}, nil
}

// ToParts はドメインのパーツ列を genai.Part に変換します。
// プロンプトは参照画像がある前提で書かれているので、URL の画像が取得できない場合は
// 画像なしで送らずに ErrInvalidRequest を返すのだ。
func (c *GeminiImageCore) ToParts(ctx context.Context, parts []domain.PromptPart) ([]*genai.Part, error) {
	out := make([]*genai.Part, 0, len(parts))
	for i, p := range parts {
		switch {
		case p.Image != nil:
			out = append(out, &genai.Part{InlineData: &genai.Blob{MIMEType: mimeOf(*p.Image), Data: p.Image.Data}})
		case p.ImageURL != "":
			part := c.PrepareImagePart(ctx, p.ImageURL)
			if part == nil {
				return nil, fmt.Errorf("%w: reference image %d could not be loaded: %s", domain.ErrInvalidRequest, i, p.ImageURL)
			}
			out = append(out, part)
		case p.Text != "":
			out = append(out, &genai.Part{Text: p.Text})
		}
	}
	return out, nil
}

// PrepareImagePart は URL から画像を準備して genai.Part に変換します。
// http(s) は go-http-kit、gs:// は go-remote-io で取得します。
func (c *GeminiImageCore) PrepareImagePart(ctx context.Context, rawURL string) *genai.Part {
	if c.imageCache != nil {
		if cached, found := c.imageCache.Get(rawURL); found {
			if data, ok := cached.([]byte); ok {
				return c.ToPart(data)
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "url", rawURL, "type", fmt.Sprintf("%T", cached))
		}
	}

	data, err := c.fetchImageData(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "参照画像のダウンロードに失敗しました", "url", rawURL, "error", err)
		return nil
	}

	if len(data) > compressThreshold {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			data = compressed
		}
	}

	if c.imageCache != nil {
		c.imageCache.Set(rawURL, data, c.cacheTTL)
	}
	return c.ToPart(data)
}

func (c *GeminiImageCore) fetchImageData(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.HasPrefix(rawURL, "gs://") {
		if c.reader == nil {
			return nil, fmt.Errorf("gs:// の読み込みには InputReader が必要です: %s", rawURL)
		}
		rc, err := c.reader.Open(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if safe, err := isSafeURL(rawURL); !safe || err != nil {
		return nil, fmt.Errorf("SSRFの可能性がある、または不正なURLです: %w", err)
	}
	return c.httpClient.FetchBytes(ctx, rawURL)
}

// ToPart はバイト列を genai.Part (InlineData) に変換します。
func (c *GeminiImageCore) ToPart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		slog.Warn("MIMEタイプが画像ではないためPartに変換できませんでした", "detected_mime_type", mimeType)
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	}
}

// ParseToResponse は Gemini のレスポンスから最初の画像を取り出します。
// 安全フィルター等で止められた場合は InvalidRequest、画像が無い場合は ErrNoImageReturned です。
func (c *GeminiImageCore) ParseToResponse(resp *gemini.Response) (*domain.ImageData, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("%w: Geminiからの有効な応答がありませんでした", domain.ErrNoImageReturned)
	}

	// 最初の候補 (Candidate) のみを利用する。
	candidate := resp.RawResponse.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.ImageData{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	if blockedFinishReason(candidate.FinishReason) {
		return nil, fmt.Errorf("%w: 画像生成がブロックされました (FinishReason: %s)", domain.ErrInvalidRequest, candidate.FinishReason)
	}
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: 画像生成が異常終了しました (FinishReason: %s)", domain.ErrNoImageReturned, candidate.FinishReason)
	}
	return nil, domain.ErrNoImageReturned
}

func blockedFinishReason(r genai.FinishReason) bool {
	switch r {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist,
		genai.FinishReasonSPII, genai.FinishReasonImageSafety:
		return true
	}
	return false
}

func mimeOf(img domain.ImageData) string {
	if img.MimeType != "" {
		return img.MimeType
	}
	return http.DetectContentType(img.Data)
}

// isSafeURL は SSRF 対策として URL を検証します。
// 名前解決されたすべての IP アドレスに対してプライベート IP チェックを行います。
func isSafeURL(rawURL string) (bool, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return false, fmt.Errorf("URLパース失敗: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return false, fmt.Errorf("不許可スキーム: %s", parsedURL.Scheme)
	}

	host := parsedURL.Hostname()
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		resolvedIPs, err := net.LookupIP(host)
		if err != nil {
			return false, fmt.Errorf("名前解決失敗: %w", err)
		}
		ips = resolvedIPs
	}

	if len(ips) == 0 {
		return false, fmt.Errorf("IPが見つかりません")
	}

	for _, ip := range ips {
		if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
			return false, fmt.Errorf("制限されたネットワークへのアクセスを検知: %s", ip.String())
		}
	}
	return true, nil
}
