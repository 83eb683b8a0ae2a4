package services

import (
	"regexp"
	"strings"
)

// separatorLine は "----" 行の置き換えに使う固定幅の罫線です
const separatorLine = "────────────────────"

// トラッカー記法の変換パターン（適用順に依存関係があるため順序は固定）
var (
	linkWithLabelRe = regexp.MustCompile(`\[([^|\[\]]+)\|([^\[\]]+)\]`)
	bareLinkRe      = regexp.MustCompile(`\[([^\[\]]+)\]`)
	strongRe        = regexp.MustCompile(`\*\*([^*\n]+)\*\*`)
	emphasisRe      = regexp.MustCompile(`\*([^*\n]+)\*`)
	headingRe       = regexp.MustCompile(`(?m)^#+\s*`)
	ruleRe          = regexp.MustCompile(`(?m)^\s*-{4}\s*$`)
	bulletRe        = regexp.MustCompile(`(?m)^([ \t]*)[-*]\s+`)
	blankRunRe      = regexp.MustCompile(`\n([ \t]*\n){3,}`)
	labelLineRe     = regexp.MustCompile(`^[ \t]*[A-Z][A-Za-z0-9 ]*:`)
)

// NormalizeText はトラッカー記法のテキストをカード表示用のプレーンテキストへ整えます
// 入力のみに依存する純粋関数で、空・空白のみの入力はそのまま返します
func NormalizeText(text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	// 1. リンク記法: [url|label] → label (url)、残った [x] → x
	text = linkWithLabelRe.ReplaceAllString(text, "$2 ($1)")
	text = bareLinkRe.ReplaceAllString(text, "$1")

	// 2. 強調記法: アスタリスクを除去しテキストを残す
	// （対は行内でのみ成立。行をまたいで対にすると * 箇条書き行を壊す）
	text = strongRe.ReplaceAllString(text, "$1")
	text = emphasisRe.ReplaceAllString(text, "$1")

	// 3. 見出し記法: 行頭の # を除去
	text = headingRe.ReplaceAllString(text, "")

	// 4. "----" のみの行は固定幅の罫線へ
	text = ruleRe.ReplaceAllString(text, separatorLine)

	// 5. 箇条書き: 行頭の - / * をインデント保持のまま • へ
	text = bulletRe.ReplaceAllString(text, "$1• ")

	// 6. 3行以上連続する空行は1行へ畳む
	text = blankRunRe.ReplaceAllString(text, "\n\n")

	// 7. 各行をトリム（箇条書き行とラベル行はインデントを保持）
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmedLeft := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmedLeft, "• ") || labelLineRe.MatchString(line) {
			lines[i] = strings.TrimRight(line, " \t")
			continue
		}
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
