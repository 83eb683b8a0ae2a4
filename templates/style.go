package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"planboard/models"
)

// IconShape はカード右上に描画されるアイコンの形状です
type IconShape string

// アイコン形状の種類
const (
	IconDiamond  IconShape = "diamond"
	IconCircle   IconShape = "circle"
	IconTriangle IconShape = "triangle"
	IconSquare   IconShape = "square"
	IconStar     IconShape = "star"
	IconHexagon  IconShape = "hexagon"
)

// Style は種別ごとの描画・抽出設定です
// レンダラーと抽出器の両方がこの1つのテーブルを参照します
type Style struct {
	Color            string    `yaml:"color"`            // 背景色（#RRGGBB）
	Icon             IconShape `yaml:"icon"`             // アイコン形状
	LargeNumberField string    `yaml:"largeNumberField"` // 右下に大きく表示するフィールド（なければ空）
	AssigneeField    bool      `yaml:"assigneeField"`    // 左下に担当者を表示するか
	Width            float64   `yaml:"width"`            // カード幅（レイアウト単位）
	BottomBand       float64   `yaml:"bottomBand"`       // 下端バンドの高さ（汎用ペア抽出から除外される領域）
}

// defaultStyles は組み込みの種別別スタイルです
var defaultStyles = map[models.TemplateKind]Style{
	models.KindTheme: {
		Color: "#9B59B6", Icon: IconStar,
		LargeNumberField: "Priority Rank",
		Width:            400, BottomBand: 70,
	},
	models.KindMilestone: {
		Color: "#D93333", Icon: IconDiamond,
		Width: 400, BottomBand: 70,
	},
	models.KindUserStory: {
		Color: "#3380E6", Icon: IconCircle,
		LargeNumberField: "Story Points",
		Width:            400, BottomBand: 70,
	},
	models.KindEpic: {
		Color: "#E69919", Icon: IconTriangle,
		Width: 400, BottomBand: 70,
	},
	models.KindInitiative: {
		Color: "#4DB34D", Icon: IconSquare,
		Width: 400, BottomBand: 70,
	},
	models.KindTask: {
		Color: "#26A6A6", Icon: IconSquare,
		LargeNumberField: "Story Points",
		AssigneeField:    true,
		Width:            400, BottomBand: 70,
	},
	models.KindSpike: {
		Color: "#E6C319", Icon: IconHexagon,
		LargeNumberField: "Story Points",
		AssigneeField:    true,
		Width:            400, BottomBand: 70,
	},
	models.KindTest: {
		Color: "#808C99", Icon: IconHexagon,
		LargeNumberField: "Story Points",
		AssigneeField:    true,
		Width:            400, BottomBand: 70,
	},
}

// StyleTable は種別→スタイルの対応表です
// レンダラーと抽出器へ注入され、nil の場合は組み込みデフォルトが使われます
type StyleTable map[models.TemplateKind]Style

// For は種別のスタイルを返します（テーブル未設定・未登録の種別はデフォルトへ退避）
func (t StyleTable) For(kind models.TemplateKind) Style {
	if s, ok := t[kind]; ok {
		return s
	}
	return StyleFor(kind)
}

// StyleFor は種別の組み込みスタイルを返します（未定義の種別は無地のデフォルト）
func StyleFor(kind models.TemplateKind) Style {
	if s, ok := defaultStyles[kind]; ok {
		return s
	}
	return Style{Color: "#FFFFFF", Icon: IconSquare, Width: 400, BottomBand: 70}
}

// styleOverride はYAMLの上書き項目です
// 意味的な2項目はゼロ値（空文字・false）と未指定を区別するためポインタで受けます
type styleOverride struct {
	Color            *string    `yaml:"color"`
	Icon             *IconShape `yaml:"icon"`
	LargeNumberField *string    `yaml:"largeNumberField"`
	AssigneeField    *bool      `yaml:"assigneeField"`
	Width            *float64   `yaml:"width"`
	BottomBand       *float64   `yaml:"bottomBand"`
}

// LoadStyles はYAMLファイルからスタイルの上書き設定を読み込み、
// 組み込みデフォルトへマージした完全なテーブルを返します
// パスが空の場合はデフォルトのコピーを返します
func LoadStyles(path string) (StyleTable, error) {
	styles := make(StyleTable, len(defaultStyles))
	for kind, s := range defaultStyles {
		styles[kind] = s
	}

	if path == "" {
		return styles, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("スタイルファイル読み込みエラー: %w", err)
	}

	overrides := make(map[string]styleOverride)
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("スタイルファイル解析エラー: %w", err)
	}

	for name, override := range overrides {
		kind, ok := KindOf(name)
		if !ok {
			return nil, fmt.Errorf("未知のカード種別です: %s", name)
		}
		base := styles[kind]
		if override.Color != nil {
			base.Color = *override.Color
		}
		if override.Icon != nil {
			base.Icon = *override.Icon
		}
		if override.LargeNumberField != nil {
			base.LargeNumberField = *override.LargeNumberField
		}
		if override.AssigneeField != nil {
			base.AssigneeField = *override.AssigneeField
		}
		if override.Width != nil && *override.Width > 0 {
			base.Width = *override.Width
		}
		if override.BottomBand != nil && *override.BottomBand > 0 {
			base.BottomBand = *override.BottomBand
		}
		styles[kind] = base
	}

	return styles, nil
}
