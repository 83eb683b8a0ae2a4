package services

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"planboard/models"
	"planboard/templates"
)

// ユーザーストーリーの叙述マーカー（各マーカーは次のマーカーまたは改行まで捕捉。
// "has a" 等の語中一致を防ぐため先頭は語境界に固定）
var narrativeRe = regexp.MustCompile(`(?i)\bas a[:\s]+([^\n]*?)[\s,;.]*i want[:\s]+([^\n]*?)[\s,;.]*so that[:\s]+([^\n]*)`)

// classificationRule は分類の決定リストの1段です（先に一致した規則が勝ちます）
type classificationRule struct {
	Name    string
	Matches func(row models.Row) bool
	Kind    models.TemplateKind
}

// classificationRules は分類の優先順位そのものです
// 入れ子の条件分岐ではなく明示的な順序付きテーブルとして保持し、
// 優先順位を監査・単体検証できるようにしています
var classificationRules = []classificationRule{
	{
		Name:    "issue-type-epic",
		Matches: func(row models.Row) bool { return issueTypeIs(row, "Epic") },
		Kind:    models.KindEpic,
	},
	{
		Name: "story-or-narrative",
		Matches: func(row models.Row) bool {
			if issueTypeIs(row, "Story") || issueTypeIs(row, "User Story") {
				return true
			}
			return narrativeRe.MatchString(narrativeText(row))
		},
		Kind: models.KindUserStory,
	},
	{
		Name: "due-date-or-fix-version",
		Matches: func(row models.Row) bool {
			return pick(row, "Due date", "Due Date", "Fix Version/s", "Fix versions") != ""
		},
		Kind: models.KindMilestone,
	},
	{
		Name:    "issue-type-task",
		Matches: func(row models.Row) bool { return issueTypeIs(row, "Task") },
		Kind:    models.KindTask,
	},
	{
		Name:    "issue-type-spike",
		Matches: func(row models.Row) bool { return issueTypeIs(row, "Spike") },
		Kind:    models.KindSpike,
	},
	{
		Name:    "issue-type-test",
		Matches: func(row models.Row) bool { return issueTypeIs(row, "Test") },
		Kind:    models.KindTest,
	},
	{
		Name:    "issue-type-theme",
		Matches: func(row models.Row) bool { return issueTypeIs(row, "Theme") },
		Kind:    models.KindTheme,
	},
	{
		// 最後の受け皿: Summary のある行は必ずどれかに分類される
		Name:    "fallback-initiative",
		Matches: func(row models.Row) bool { return true },
		Kind:    models.KindInitiative,
	},
}

// ClassifyRow は1行をカードへ分類・射影します
// Summary が空の行は呼び出し側で除外されている前提です
func ClassifyRow(row models.Row) models.Card {
	var kind models.TemplateKind
	for _, rule := range classificationRules {
		if rule.Matches(row) {
			kind = rule.Kind
			break
		}
	}

	title := strings.TrimSpace(pick(row, "Summary"))
	card := models.Card{
		Kind:     kind,
		Title:    title,
		Fields:   projectFields(kind, row),
		IssueKey: strings.TrimSpace(pick(row, "Issue key", "Issue Key")),
	}
	return card
}

// projectFields は行の列を種別の正準フィールドへ射影します
// 欠損・空白の列には種別のデフォルト値を適用します
func projectFields(kind models.TemplateKind, row models.Row) []models.Field {
	desc := NormalizeText(pick(row, "Description"))

	// ユーザーストーリーは As a / I want / So that を1つの Description へ合成して保持します
	// （インポート時に3フィールドのまま保持することはありません）
	if kind == models.KindUserStory {
		return projectUserStory(row, desc)
	}
	// テストも同様に Given / When / Then を Description へ畳みます
	if kind == models.KindTest {
		return projectTest(row, desc)
	}

	fields := make([]models.Field, 0)
	for _, canonical := range templates.FieldsOf(kind) {
		value := sourceValue(kind, canonical.Label, row, desc)
		if strings.TrimSpace(value) == "" {
			value = canonical.Value
		}
		fields = append(fields, models.Field{Label: canonical.Label, Value: value})
	}
	return fields
}

// projectUserStory はユーザーストーリー行を射影します
func projectUserStory(row models.Row, desc string) []models.Field {
	description := desc
	if m := narrativeRe.FindStringSubmatch(desc); m != nil {
		description = ConcatNarrative(m[1], m[2], m[3])
	}

	return []models.Field{
		{Label: "Description", Value: description},
		{Label: "Acceptance Criteria", Value: defaulted(models.KindUserStory, "Acceptance Criteria",
			NormalizeText(pick(row, "Custom field (Acceptance Criteria)", "Acceptance Criteria")))},
		{Label: "Story Points", Value: FormatStoryPoints(
			pick(row, "Custom field (Story Points)", "Story Points"),
			templates.DefaultOf(models.KindUserStory, "Story Points"))},
		{Label: "Priority", Value: defaulted(models.KindUserStory, "Priority", pick(row, "Priority"))},
	}
}

// projectTest はテスト行を射影します（Given/When/Then は Description で代替）
func projectTest(row models.Row, desc string) []models.Field {
	fields := []models.Field{
		{Label: "Name", Value: pick(row, "Summary")},
	}
	if strings.TrimSpace(desc) != "" {
		fields = append(fields, models.Field{Label: "Description", Value: desc})
	} else {
		fields = append(fields,
			models.Field{Label: "Given", Value: templates.DefaultOf(models.KindTest, "Given")},
			models.Field{Label: "When", Value: templates.DefaultOf(models.KindTest, "When")},
			models.Field{Label: "Then", Value: templates.DefaultOf(models.KindTest, "Then")},
		)
	}
	fields = append(fields,
		models.Field{Label: "Test Type", Value: defaulted(models.KindTest, "Test Type",
			pick(row, "Custom field (Test Type)", "Test Type"))},
		models.Field{Label: "Assignee", Value: defaulted(models.KindTest, "Assignee", pick(row, "Assignee"))},
		models.Field{Label: "Story Points", Value: FormatStoryPoints(
			pick(row, "Custom field (Story Points)", "Story Points"),
			templates.DefaultOf(models.KindTest, "Story Points"))},
	)
	return fields
}

// sourceValue は種別・ラベルごとの参照元列から値を取り出します
func sourceValue(kind models.TemplateKind, label string, row models.Row, desc string) string {
	switch label {
	case "Name":
		return pick(row, "Summary")
	case "Description":
		return desc
	case "Status":
		return pick(row, "Status")
	case "Priority":
		return pick(row, "Priority")
	case "Assignee":
		return pick(row, "Assignee")
	case "Target Date":
		return pick(row, "Due date", "Due Date", "Fix Version/s", "Fix versions")
	case "Business Value":
		return pick(row, "Custom field (Business Value)", "Business Value")
	case "Dependencies":
		return pick(row, "Custom field (Dependencies)", "Dependencies")
	case "Team":
		return pick(row, "Custom field (Team)", "Team")
	case "Priority Rank":
		return FormatStoryPoints(pick(row, "Custom field (Priority Rank)", "Priority Rank"),
			templates.DefaultOf(kind, "Priority Rank"))
	case "Story Points":
		return FormatStoryPoints(pick(row, "Custom field (Story Points)", "Story Points"),
			templates.DefaultOf(kind, "Story Points"))
	case "Question":
		return desc
	case "Timebox":
		return pick(row, "Custom field (Timebox)", "Timebox")
	}
	return ""
}

// ConcatNarrative は As a / I want / So that を1つの記述文へ合成します
// （インポートとエクスポートで同じ合成規則を使います）
func ConcatNarrative(asA, iWant, soThat string) string {
	return fmt.Sprintf("As a %s, I want %s, so that %s",
		strings.TrimSpace(asA), strings.TrimSpace(iWant), strings.TrimSpace(soThat))
}

// ConcatGivenWhenThen は Given / When / Then を1つの記述文へ合成します
func ConcatGivenWhenThen(given, when, then string) string {
	return fmt.Sprintf("Given %s, when %s, then %s",
		strings.TrimSpace(given), strings.TrimSpace(when), strings.TrimSpace(then))
}

// FormatStoryPoints はストーリーポイント値を整形します
// 数値は最も近い整数へ丸めて小数なしで表示し、"?" と "#" はそのまま通します
// 空白はデフォルト値になります
func FormatStoryPoints(raw, defaultValue string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return defaultValue
	}
	if s == "?" || s == "#" {
		// リテラルトークンは数値として解釈しない
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.Itoa(int(math.Round(f)))
}

// issueTypeIs は Issue Type 列の値を大文字小文字を無視して比較します
func issueTypeIs(row models.Row, name string) bool {
	return strings.EqualFold(strings.TrimSpace(pick(row, "Issue Type", "Issue type")), name)
}

// narrativeText は叙述マーカーの探索対象テキストを返します
// マーカーは *As a* のように強調記法で書かれることがあるため、
// 正規化（強調除去）後のテキストに対して照合します
func narrativeText(row models.Row) string {
	return NormalizeText(pick(row, "Description"))
}

// pick は候補列のうち最初の非空値を返します
func pick(row models.Row, columns ...string) string {
	for _, col := range columns {
		if v, ok := row[col]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// defaulted は値が空白のとき種別のデフォルト値を返します
func defaulted(kind models.TemplateKind, label, value string) string {
	if strings.TrimSpace(value) == "" {
		return templates.DefaultOf(kind, label)
	}
	return value
}
