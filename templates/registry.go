package templates

import (
	"strings"

	"planboard/models"
)

// Template は1つのカード種別の定義（タイトルと順序付きフィールド）です
type Template struct {
	Kind   models.TemplateKind
	Title  string
	Fields []models.Field // Value はデフォルト値
}

// catalogue はカード種別の固定カタログです（起動時に定義され、以後変更されません）
// ここでの並び順が正準フィールド順（CSV列順とレイアウト順の契約）を決めます
var catalogue = []Template{
	{
		Kind:  models.KindTheme,
		Title: "Theme",
		Fields: []models.Field{
			{Label: "Name", Value: "Theme Name"},
			{Label: "Description", Value: "Theme description..."},
			{Label: "Priority Rank", Value: "?"},
		},
	},
	{
		Kind:  models.KindMilestone,
		Title: "Milestone",
		Fields: []models.Field{
			{Label: "Name", Value: "Milestone Name"},
			{Label: "Target Date", Value: "MM/DD/YYYY"},
			{Label: "Status", Value: "Not Started"},
			{Label: "Description", Value: "Milestone description..."},
		},
	},
	{
		Kind:  models.KindUserStory,
		Title: "User Story",
		Fields: []models.Field{
			{Label: "As a", Value: "[user type]"},
			{Label: "I want", Value: "[feature]"},
			{Label: "So that", Value: "[benefit]"},
			{Label: "Acceptance Criteria", Value: "• Criterion 1\n• Criterion 2\n• Criterion 3"},
			{Label: "Story Points", Value: "?"},
			{Label: "Priority", Value: "Medium"},
		},
	},
	{
		Kind:  models.KindEpic,
		Title: "Epic",
		Fields: []models.Field{
			{Label: "Name", Value: "Epic Name"},
			{Label: "Description", Value: "Epic description..."},
			{Label: "Business Value", Value: "High"},
			{Label: "Status", Value: "Planning"},
		},
	},
	{
		Kind:  models.KindInitiative,
		Title: "Initiative",
		Fields: []models.Field{
			{Label: "Name", Value: "Initiative Name"},
			{Label: "Description", Value: "Initiative description..."},
			{Label: "Dependencies", Value: "None"},
			{Label: "Team", Value: "Team Name"},
		},
	},
	{
		Kind:  models.KindTask,
		Title: "Task",
		Fields: []models.Field{
			{Label: "Name", Value: "Task Name"},
			{Label: "Description", Value: "Task description..."},
			{Label: "Assignee", Value: "Unassigned"},
			{Label: "Status", Value: "To Do"},
			{Label: "Story Points", Value: "?"},
		},
	},
	{
		Kind:  models.KindSpike,
		Title: "Spike",
		Fields: []models.Field{
			{Label: "Name", Value: "Spike Name"},
			{Label: "Question", Value: "What do we need to learn?"},
			{Label: "Timebox", Value: "1 day"},
			{Label: "Assignee", Value: "Unassigned"},
			{Label: "Story Points", Value: "?"},
		},
	},
	{
		Kind:  models.KindTest,
		Title: "Test",
		Fields: []models.Field{
			{Label: "Name", Value: "Test Name"},
			{Label: "Given", Value: "[precondition]"},
			{Label: "When", Value: "[action]"},
			{Label: "Then", Value: "[expected result]"},
			{Label: "Test Type", Value: "Manual"},
			{Label: "Assignee", Value: "Unassigned"},
			{Label: "Story Points", Value: "?"},
		},
	},
}

// tokens はUI側のテンプレート識別子（lowerCamel）から種別への対応表です
var tokens = map[string]models.TemplateKind{
	"theme":      models.KindTheme,
	"milestone":  models.KindMilestone,
	"userStory":  models.KindUserStory,
	"epic":       models.KindEpic,
	"initiative": models.KindInitiative,
	"task":       models.KindTask,
	"spike":      models.KindSpike,
	"test":       models.KindTest,
}

// AllKinds はカタログ順の全カード種別を返します
func AllKinds() []models.TemplateKind {
	kinds := make([]models.TemplateKind, 0, len(catalogue))
	for _, t := range catalogue {
		kinds = append(kinds, t.Kind)
	}
	return kinds
}

// KindOf はフレーム名（カタログのタイトル）から種別を検索します
// 一致しない場合は第2戻り値が false になります
func KindOf(title string) (models.TemplateKind, bool) {
	for _, t := range catalogue {
		if t.Title == title {
			return t.Kind, true
		}
	}
	return "", false
}

// KindFromToken はUIのテンプレート識別子（"userStory" 等）または
// 表示タイトルから種別を解決します
func KindFromToken(token string) (models.TemplateKind, bool) {
	if kind, ok := tokens[token]; ok {
		return kind, true
	}
	if kind, ok := KindOf(token); ok {
		return kind, true
	}
	// 大文字小文字を無視したフォールバック
	for key, kind := range tokens {
		if strings.EqualFold(key, token) {
			return kind, true
		}
	}
	return "", false
}

// TitleOf は種別の表示タイトルを返します
func TitleOf(kind models.TemplateKind) string {
	return string(kind)
}

// FieldsOf は種別の正準フィールドリスト（デフォルト値付き）のコピーを返します
func FieldsOf(kind models.TemplateKind) []models.Field {
	for _, t := range catalogue {
		if t.Kind == kind {
			fields := make([]models.Field, len(t.Fields))
			copy(fields, t.Fields)
			return fields
		}
	}
	return nil
}

// DefaultOf は種別内のラベルのデフォルト値を返します
func DefaultOf(kind models.TemplateKind, label string) string {
	for _, t := range catalogue {
		if t.Kind == kind {
			for _, f := range t.Fields {
				if f.Label == label {
					return f.Value
				}
			}
		}
	}
	return ""
}

// CanonicalFieldOrder は全種別のラベルを初出順に並べたリストを返します
// （種別をまたぐ重複ラベルは最初の位置に1つへ畳み込まれます）
// この順序はエクスポート列順とカードレイアウトの両方の契約です
func CanonicalFieldOrder() []string {
	seen := make(map[string]bool)
	order := make([]string, 0)
	for _, t := range catalogue {
		for _, f := range t.Fields {
			if seen[f.Label] {
				continue
			}
			seen[f.Label] = true
			order = append(order, f.Label)
		}
	}
	return order
}

// CanonicalIndex はラベルの正準順における位置を返します（未知のラベルは末尾扱い）
func CanonicalIndex(label string) int {
	for i, l := range CanonicalFieldOrder() {
		if l == label {
			return i
		}
	}
	return len(CanonicalFieldOrder()) + 1
}
