package services

import (
	"regexp"
	"sort"
	"strings"

	"planboard/models"
	"planboard/templates"
)

// 大数字フィールド（ストーリーポイント等）として認識する値のパターン
var numberTokenRe = regexp.MustCompile(`^(\d+|\?|#)$`)

// Extractor は描画済みフラグメント集合から構造化カードを復元します
type Extractor struct {
	// RowTolerance は同一行とみなす縦位置の許容幅（レイアウト単位）です
	RowTolerance float64

	// Styles は幾何判定に使うスタイル表です（nil なら組み込みデフォルト）
	// 描画側と同じ表を注入しないと抽出の逆変換が成立しません
	Styles templates.StyleTable
}

// NewExtractor は新しい抽出器を作成します
func NewExtractor(rowTolerance float64) *Extractor {
	if rowTolerance <= 0 {
		rowTolerance = 10
	}
	return &Extractor{RowTolerance: rowTolerance}
}

// ExtractCard はフレーム名とフラグメント集合からカードを復元します
// フレーム名がカタログのどのタイトルにも一致しない場合はカードになりません
func (e *Extractor) ExtractCard(frameName string, frags []models.Fragment, issueKey string) (models.Card, bool) {
	kind, ok := templates.KindOf(frameName)
	if !ok {
		return models.Card{}, false
	}

	if len(frags) == 0 {
		return models.Card{}, false
	}

	sorted := e.sortByRow(frags)

	// 最上段のフラグメントがタイトル
	// （ユーザーが表示テキストを直接編集している可能性があるため、
	// フレームに記録された名前ではなく描画テキストを採用します）
	card := models.Card{
		Kind:     kind,
		Title:    strings.TrimSpace(sorted[0].Text),
		IssueKey: issueKey,
	}

	rest := sorted[1:]
	if len(rest) < 2 {
		// タイトル以外が2片未満ならフィールドなしのカード（エラーではない）
		return card, true
	}

	style := e.Styles.For(kind)
	cardWidth := style.Width
	cardHeight := 0.0
	for _, f := range frags {
		if f.Y+f.Height > cardHeight {
			cardHeight = f.Y + f.Height
		}
	}
	bandTop := cardHeight - style.BottomBand

	// 下端バンドのフラグメントは汎用ペア抽出から除外します
	// （大数字・担当者の特化抽出の対象。特化フィールドを持たない種別では
	// 下端バンドそのものが存在しません）
	hasBand := style.LargeNumberField != "" || style.AssigneeField
	paired := make([]models.Fragment, 0, len(rest))
	for _, f := range rest {
		if hasBand && f.Y > bandTop {
			continue
		}
		paired = append(paired, f)
	}

	fields := make([]models.Field, 0)
	haveLabel := make(map[string]bool)
	for i := 0; i+1 < len(paired); {
		label, ok := labelText(paired[i])
		if !ok {
			i++
			continue
		}
		value := paired[i+1].Text
		if strings.TrimSpace(value) == "" {
			value = ""
		} else {
			value = strings.TrimRight(value, " \t")
		}
		fields = append(fields, models.Field{Label: label, Value: value})
		haveLabel[label] = true
		i += 2
	}

	// 大数字フィールド: 下から上、右から左へ走査し、
	// 右半分にある数字/?/# パターンの最初のフラグメントを採用
	if style.LargeNumberField != "" && !haveLabel[style.LargeNumberField] {
		candidates := e.sortBottomUp(rest, true)
		for _, f := range candidates {
			if f.X+f.Width/2 <= cardWidth/2 {
				continue
			}
			if numberTokenRe.MatchString(strings.TrimSpace(f.Text)) {
				fields = append(fields, models.Field{
					Label: style.LargeNumberField, Value: strings.TrimSpace(f.Text),
				})
				haveLabel[style.LargeNumberField] = true
				break
			}
		}
	}

	// 担当者フィールド: 下から上、左から右へ走査し、
	// 左半分にある非数字パターンの最初のフラグメントを採用
	// （汎用ペア抽出で既に担当者が得られている場合は走査しない）
	if style.AssigneeField && !haveLabel["Assignee"] {
		candidates := e.sortBottomUp(rest, false)
		for _, f := range candidates {
			if f.X+f.Width/2 > cardWidth/2 {
				continue
			}
			text := strings.TrimSpace(f.Text)
			if text == "" || numberTokenRe.MatchString(text) {
				continue
			}
			fields = append(fields, models.Field{Label: "Assignee", Value: text})
			break
		}
	}

	// フィールド順は種別の正準順へ揃える（未知ラベルは末尾）
	sort.SliceStable(fields, func(i, j int) bool {
		return templates.CanonicalIndex(fields[i].Label) < templates.CanonicalIndex(fields[j].Label)
	})

	card.Fields = fields
	return card, true
}

// labelText はフラグメントをラベルとして解釈できる場合にその文言を返します
// 末尾のコロンを除去・トリムした結果が非空で、かつ数字/?/# のみでないこと
func labelText(f models.Fragment) (string, bool) {
	text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(f.Text), ":"))
	if text == "" {
		return "", false
	}
	if numberTokenRe.MatchString(text) {
		return "", false
	}
	return text, true
}

// sortByRow は縦位置昇順に並べ、許容幅内の縦位置は同一行として横位置で解決します
func (e *Extractor) sortByRow(frags []models.Fragment) []models.Fragment {
	sorted := make([]models.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	// 許容幅でまとめた行ごとに横位置でソート
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[end].Y-sorted[start].Y <= e.RowTolerance {
			end++
		}
		row := sorted[start:end]
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
		start = end
	}
	return sorted
}

// sortBottomUp は縦位置降順に並べます（同一行は rightFirst に応じて横位置で解決）
func (e *Extractor) sortBottomUp(frags []models.Fragment, rightFirst bool) []models.Fragment {
	sorted := make([]models.Fragment, len(frags))
	copy(sorted, frags)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})
	for start := 0; start < len(sorted); {
		end := start + 1
		for end < len(sorted) && sorted[start].Y-sorted[end].Y <= e.RowTolerance {
			end++
		}
		row := sorted[start:end]
		sort.SliceStable(row, func(i, j int) bool {
			if rightFirst {
				return row[i].X > row[j].X
			}
			return row[i].X < row[j].X
		})
		start = end
	}
	return sorted
}
