// Package preset はモックアップ合成用のモデル・商品プリセットを提供します。
package preset

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CustomModelDescription は持ち込み写真で合成したときの説明文です。
const CustomModelDescription = "Custom uploaded model"

//go:embed presets.yaml
var defaultPresets []byte

// Preset はモックアップ1種類分の定義です。Description がそのまま合成プロンプトに入ります。
type Preset struct {
	ID          string `yaml:"id"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

type catalogFile struct {
	Presets []Preset `yaml:"presets"`
}

// Catalog はプリセットの一覧です（定義順）。
type Catalog struct {
	presets []Preset
}

// Default は組み込みのプリセット一覧を返します。
func Default() (*Catalog, error) {
	return Parse(defaultPresets)
}

// LoadFile は YAML ファイルからプリセット一覧を読み込みます。
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset: %s: %w", path, err)
	}
	return c, nil
}

// Parse は YAML を解析し、ID の重複や空の説明がないか検証します。
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("preset: payload is empty")
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("preset: decode: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, fmt.Errorf("preset: no presets defined")
	}

	seen := make(map[string]struct{}, len(f.Presets))
	for i, p := range f.Presets {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("preset: entry %d has no id", i)
		}
		if strings.TrimSpace(p.Description) == "" {
			return nil, fmt.Errorf("preset: %q has no description", id)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("preset: duplicate id %q", id)
		}
		seen[id] = struct{}{}
		f.Presets[i].ID = id
	}
	return &Catalog{presets: f.Presets}, nil
}

// All は定義順のプリセット一覧のコピーを返します。
func (c *Catalog) All() []Preset {
	return append([]Preset(nil), c.presets...)
}

// Find は ID またはラベル（大文字小文字を区別しない）でプリセットを探すのだ。
func (c *Catalog) Find(key string) (Preset, bool) {
	key = strings.TrimSpace(key)
	for _, p := range c.presets {
		if p.ID == key || strings.EqualFold(p.Label, key) {
			return p, true
		}
	}
	return Preset{}, false
}
