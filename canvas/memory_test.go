package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/models"
	"planboard/templates"
)

func TestMemoryCreateCardLayout(t *testing.T) {
	cv := NewMemory()

	h, err := cv.CreateCard(models.KindTask, "Task", templates.FieldsOf(models.KindTask), models.Position{X: 10, Y: 20})
	require.NoError(t, err)

	assert.Equal(t, "Task", cv.FrameName(h))
	assert.Equal(t, models.Position{X: 10, Y: 20}, cv.FramePosition(h))

	frags := cv.GetTextFragments(h)
	require.NotEmpty(t, frags)

	// タイトルは最上段かつ太字
	title := frags[0]
	for _, f := range frags[1:] {
		assert.Less(t, title.Y, f.Y)
	}
	assert.Equal(t, "Task", title.Text)
	assert.True(t, title.Bold)

	// ラベルは末尾コロン付き、値はその下に置かれる
	var sawLabel bool
	for i, f := range frags {
		if strings.HasSuffix(f.Text, ":") {
			sawLabel = true
			require.Less(t, i+1, len(frags))
			assert.Greater(t, frags[i+1].Y, f.Y)
		}
	}
	assert.True(t, sawLabel)

	// 大数字フィールドは右半分、担当者は左半分の下端バンドに置かれる
	style := templates.StyleFor(models.KindTask)
	var number, assignee *models.Fragment
	for i := range frags {
		switch frags[i].Text {
		case "?":
			number = &frags[i]
		case "Unassigned":
			assignee = &frags[i]
		}
	}
	require.NotNil(t, number)
	require.NotNil(t, assignee)
	assert.Greater(t, number.X+number.Width/2, style.Width/2)
	assert.Less(t, assignee.X+assignee.Width/2, style.Width/2)
	for _, f := range frags[:len(frags)-2] {
		assert.GreaterOrEqual(t, number.Y, f.Y)
	}
}

func TestMemoryUsesInjectedStyles(t *testing.T) {
	cv := NewMemory()
	wide := templates.StyleFor(models.KindTask)
	wide.Width = 600
	cv.Styles = templates.StyleTable{models.KindTask: wide}

	h, err := cv.CreateCard(models.KindTask, "Task", templates.FieldsOf(models.KindTask), models.Position{})
	require.NoError(t, err)

	// 大数字フィールドは上書き後の幅を基準に右端へ寄る
	frags := cv.GetTextFragments(h)
	var number *models.Fragment
	for i := range frags {
		if frags[i].Text == "?" {
			number = &frags[i]
		}
	}
	require.NotNil(t, number)
	assert.Greater(t, number.X, 400.0)
}

func TestMemoryMetadata(t *testing.T) {
	cv := NewMemory()
	h, err := cv.CreateCard(models.KindEpic, "Epic", templates.FieldsOf(models.KindEpic), models.Position{})
	require.NoError(t, err)

	assert.Empty(t, cv.GetFrameMetadata(h, MetaIssueKey))
	cv.SetFrameMetadata(h, MetaIssueKey, "PI-9")
	assert.Equal(t, "PI-9", cv.GetFrameMetadata(h, MetaIssueKey))

	// 空値の設定はキーの削除と同じ
	cv.SetFrameMetadata(h, MetaIssueKey, "")
	assert.Empty(t, cv.GetFrameMetadata(h, MetaIssueKey))
}

func TestMemoryEnumerateFrames(t *testing.T) {
	cv := NewMemory()
	_, err := cv.CreateCard(models.KindTask, "Task", nil, models.Position{})
	require.NoError(t, err)
	_, err = cv.CreateCard(models.KindEpic, "Epic", nil, models.Position{})
	require.NoError(t, err)

	assert.Len(t, cv.EnumerateFrames(nil), 2)
	tasks := cv.EnumerateFrames(func(name string) bool { return name == "Task" })
	assert.Len(t, tasks, 1)
}

func TestMemoryTitleLink(t *testing.T) {
	cv := NewMemory()
	h, err := cv.CreateCard(models.KindTask, "Task", nil, models.Position{})
	require.NoError(t, err)

	cv.SetTitleLink(h, "https://tracker.example.com/browse/PI-1")
	assert.NotEmpty(t, cv.TitleLink(h))
	cv.StripTitleLink(h)
	assert.Empty(t, cv.TitleLink(h))
}

func TestMemoryDuplicate(t *testing.T) {
	cv := NewMemory()
	h, err := cv.CreateCard(models.KindTask, "Task", templates.FieldsOf(models.KindTask), models.Position{})
	require.NoError(t, err)
	cv.SetFrameMetadata(h, MetaIssueKey, "PI-1")

	dup, ok := cv.Duplicate(h, models.Position{X: 40, Y: 40})
	require.True(t, ok)
	assert.NotEqual(t, h, dup)
	assert.Equal(t, "PI-1", cv.GetFrameMetadata(dup, MetaIssueKey))
	assert.Equal(t, cv.FrameName(h), cv.FrameName(dup))
	assert.Equal(t, models.Position{X: 40, Y: 40}, cv.FramePosition(dup))
}

func TestMemoryBlankValueKeepsPairing(t *testing.T) {
	cv := NewMemory()
	fields := []models.Field{
		{Label: "Description", Value: ""},
		{Label: "Status", Value: "Open"},
	}
	h, err := cv.CreateCard(models.KindEpic, "Epic", fields, models.Position{})
	require.NoError(t, err)

	// 空値でもラベルの直後に値フラグメントが置かれ、ペアが崩れない
	frags := cv.GetTextFragments(h)
	require.Len(t, frags, 5) // タイトル + 2ペア
	assert.Equal(t, "Description:", frags[1].Text)
	assert.Equal(t, " ", frags[2].Text)
}
