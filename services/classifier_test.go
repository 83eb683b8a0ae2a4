package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/models"
)

func TestClassificationPrecedence(t *testing.T) {
	tests := []struct {
		name string
		row  models.Row
		want models.TemplateKind
	}{
		{
			name: "Epicは最優先",
			row:  models.Row{"Summary": "大機能", "Issue Type": "Epic", "Due date": "2026-09-30"},
			want: models.KindEpic,
		},
		{
			name: "Storyは期日よりも優先（規則2が規則3に先行）",
			row:  models.Row{"Summary": "検索", "Issue Type": "Story", "Due date": "2026-09-30"},
			want: models.KindUserStory,
		},
		{
			name: "叙述マーカーだけでもユーザーストーリー",
			row: models.Row{
				"Summary":     "検索",
				"Description": "As a user, I want search, so that I can find things",
			},
			want: models.KindUserStory,
		},
		{
			name: "強調記法で囲まれた叙述マーカーも検出",
			row: models.Row{
				"Summary":     "検索",
				"Description": "*As a* user, *I want* search, *so that* I can find things",
			},
			want: models.KindUserStory,
		},
		{
			name: "行をまたぐ叙述マーカーも検出",
			row: models.Row{
				"Summary":     "検索",
				"Description": "As a: user\nI want: search\nSo that: I can find things",
			},
			want: models.KindUserStory,
		},
		{
			name: "語中の as a は叙述マーカーではない",
			row: models.Row{
				"Summary":     "フラグ削除",
				"Description": "It has a flag, I want it gone so that nobody trips on it",
			},
			want: models.KindInitiative,
		},
		{
			name: "期日があればマイルストーン",
			row:  models.Row{"Summary": "リリース", "Due date": "2026-12-01"},
			want: models.KindMilestone,
		},
		{
			name: "フィックスバージョンでもマイルストーン",
			row:  models.Row{"Summary": "リリース", "Fix Version/s": "v2.0"},
			want: models.KindMilestone,
		},
		{
			name: "Task",
			row:  models.Row{"Summary": "作業", "Issue Type": "Task"},
			want: models.KindTask,
		},
		{
			name: "Spike",
			row:  models.Row{"Summary": "調査", "Issue Type": "Spike"},
			want: models.KindSpike,
		},
		{
			name: "Test",
			row:  models.Row{"Summary": "検証", "Issue Type": "Test"},
			want: models.KindTest,
		},
		{
			name: "Theme",
			row:  models.Row{"Summary": "テーマ", "Issue Type": "Theme"},
			want: models.KindTheme,
		},
		{
			name: "未知のタイプはInitiativeへフォールバック",
			row:  models.Row{"Summary": "その他", "Issue Type": "Bug"},
			want: models.KindInitiative,
		},
		{
			name: "タイプなしでもInitiativeへフォールバック",
			row:  models.Row{"Summary": "その他"},
			want: models.KindInitiative,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			card := ClassifyRow(tc.row)
			assert.Equal(t, tc.want, card.Kind)
		})
	}
}

func TestClassifyRowUserStoryNarrative(t *testing.T) {
	card := ClassifyRow(models.Row{
		"Summary":     "検索機能",
		"Issue Type":  "Story",
		"Description": "As a developer, I want fast builds, so that I can ship daily",
	})

	require.Equal(t, models.KindUserStory, card.Kind)

	// 3つのマーカーは1つのDescriptionへ合成され、個別フィールドとしては保持されない
	assert.Equal(t, "As a developer, I want fast builds, so that I can ship daily",
		card.FieldValue("Description"))
	assert.Empty(t, card.FieldValue("As a"))
	assert.Empty(t, card.FieldValue("I want"))
	assert.Empty(t, card.FieldValue("So that"))
}

func TestClassifyRowFieldProjection(t *testing.T) {
	card := ClassifyRow(models.Row{
		"Summary":                     "ログ収集",
		"Issue key":                   "PI-42",
		"Issue Type":                  "Task",
		"Description":                 "ログを集める",
		"Assignee":                    "田中",
		"Status":                      "In Progress",
		"Custom field (Story Points)": "3.6",
	})

	require.Equal(t, models.KindTask, card.Kind)
	assert.Equal(t, "ログ収集", card.Title)
	assert.Equal(t, "PI-42", card.IssueKey)
	assert.Equal(t, "ログ収集", card.FieldValue("Name"))
	assert.Equal(t, "ログを集める", card.FieldValue("Description"))
	assert.Equal(t, "田中", card.FieldValue("Assignee"))
	assert.Equal(t, "In Progress", card.FieldValue("Status"))
	assert.Equal(t, "4", card.FieldValue("Story Points"))
}

func TestClassifyRowAppliesDefaults(t *testing.T) {
	card := ClassifyRow(models.Row{"Summary": "作業", "Issue Type": "Task"})

	// 欠けている列には種別のデフォルト値が入る
	assert.Equal(t, "Unassigned", card.FieldValue("Assignee"))
	assert.Equal(t, "To Do", card.FieldValue("Status"))
	assert.Equal(t, "?", card.FieldValue("Story Points"))
}

func TestFormatStoryPoints(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"3.6", "4"},
		{"3.4", "3"},
		{"5", "5"},
		{"?", "?"},
		{"#", "#"},
		{"", "?"},
		{"  2.5  ", "3"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatStoryPoints(tc.input, "?"))
		})
	}
}
