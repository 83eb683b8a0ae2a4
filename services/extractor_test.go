package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/models"
)

// taskFragments は描画規約どおりのTaskカードのフラグメント集合を組み立てます
func taskFragments() []models.Fragment {
	return []models.Fragment{
		{Text: "ログ収集", X: 20, Y: 20, Width: 300, Height: 28, Bold: true},
		{Text: "Description:", X: 20, Y: 60, Width: 180, Height: 14, Bold: true},
		{Text: "ログを集める", X: 20, Y: 80, Width: 360, Height: 16},
		{Text: "Status:", X: 20, Y: 120, Width: 180, Height: 14, Bold: true},
		{Text: "In Progress", X: 20, Y: 140, Width: 360, Height: 16},
		// 下端バンド: 左に担当者、右に大数字
		{Text: "田中", X: 20, Y: 258, Width: 140, Height: 16},
		{Text: "5", X: 320, Y: 260, Width: 48, Height: 32, Bold: true},
	}
}

func TestExtractCard(t *testing.T) {
	e := NewExtractor(10)

	t.Run("タイトルは最上段のフラグメント", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "")
		require.True(t, ok)
		assert.Equal(t, models.KindTask, card.Kind)
		// フレーム名ではなく描画テキストを採用（ユーザー編集に追従）
		assert.Equal(t, "ログ収集", card.Title)
	})

	t.Run("ラベルと値のペア抽出", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "")
		require.True(t, ok)
		assert.Equal(t, "ログを集める", card.FieldValue("Description"))
		assert.Equal(t, "In Progress", card.FieldValue("Status"))
	})

	t.Run("大数字フィールドは右下の数字パターン", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "")
		require.True(t, ok)
		assert.Equal(t, "5", card.FieldValue("Story Points"))
	})

	t.Run("担当者は左下の非数字パターン", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "")
		require.True(t, ok)
		assert.Equal(t, "田中", card.FieldValue("Assignee"))
	})

	t.Run("イシューキーはメタデータから引き継ぐ", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "PI-42")
		require.True(t, ok)
		assert.Equal(t, "PI-42", card.IssueKey)
	})

	t.Run("フィールド順は正準順に揃う", func(t *testing.T) {
		card, ok := e.ExtractCard("Task", taskFragments(), "")
		require.True(t, ok)
		labels := make([]string, 0, len(card.Fields))
		for _, f := range card.Fields {
			labels = append(labels, f.Label)
		}
		assert.Equal(t, []string{"Description", "Status", "Story Points", "Assignee"}, labels)
	})

	t.Run("未知のフレーム名はカードにならない", func(t *testing.T) {
		_, ok := e.ExtractCard("付箋", taskFragments(), "")
		assert.False(t, ok)
	})

	t.Run("タイトル以外が2片未満ならフィールドなし", func(t *testing.T) {
		frags := []models.Fragment{
			{Text: "タイトルのみ", X: 20, Y: 20, Width: 300, Height: 28},
			{Text: "孤立", X: 20, Y: 60, Width: 100, Height: 16},
		}
		card, ok := e.ExtractCard("Epic", frags, "")
		require.True(t, ok)
		assert.Equal(t, "タイトルのみ", card.Title)
		assert.Empty(t, card.Fields)
	})

	t.Run("数字のみのフラグメントはラベルにならない", func(t *testing.T) {
		frags := []models.Fragment{
			{Text: "タイトル", X: 20, Y: 20, Width: 300, Height: 28},
			{Text: "42", X: 20, Y: 60, Width: 100, Height: 16},
			{Text: "Status:", X: 20, Y: 100, Width: 100, Height: 14},
			{Text: "Open", X: 20, Y: 120, Width: 100, Height: 16},
		}
		card, ok := e.ExtractCard("Epic", frags, "")
		require.True(t, ok)
		assert.Equal(t, "Open", card.FieldValue("Status"))
	})
}

func TestExtractCardRowTolerance(t *testing.T) {
	e := NewExtractor(10)

	// ラベルと値の縦位置が数単位ずれていても、許容幅内は同一行として
	// 横位置で順序が決まる
	frags := []models.Fragment{
		{Text: "タイトル", X: 20, Y: 20, Width: 300, Height: 28},
		{Text: "Status:", X: 20, Y: 100, Width: 100, Height: 14},
		{Text: "Open", X: 200, Y: 97, Width: 100, Height: 16},
	}
	card, ok := e.ExtractCard("Epic", frags, "")
	require.True(t, ok)
	assert.Equal(t, "Open", card.FieldValue("Status"))
}
