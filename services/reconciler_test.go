package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planboard/canvas"
	"planboard/models"
	"planboard/templates"
)

// makeFrame は指定位置にTaskカードを1枚作成してイシューキーを付けます
func makeFrame(t *testing.T, cv *canvas.Memory, key string, pos models.Position) canvas.Handle {
	t.Helper()
	h, err := cv.CreateCard(models.KindTask, "Task", templates.FieldsOf(models.KindTask), pos)
	require.NoError(t, err)
	if key != "" {
		cv.SetFrameMetadata(h, canvas.MetaIssueKey, key)
	}
	return h
}

func TestReconcilerDemotesCopies(t *testing.T) {
	cv := canvas.NewMemory()
	var notices []string
	cv.Notify = func(msg string) { notices = append(notices, msg) }

	original := makeFrame(t, cv, "PI-1", models.Position{X: 0, Y: 0})
	copy1 := makeFrame(t, cv, "PI-1", models.Position{X: 100, Y: 200})

	r := NewReconciler(cv)
	demoted := r.Pass()

	// 位置の低い非コピーが原本として残り、もう一方が降格される
	assert.Equal(t, 1, demoted)
	assert.Equal(t, "PI-1", cv.GetFrameMetadata(original, canvas.MetaIssueKey))
	assert.Empty(t, cv.GetFrameMetadata(copy1, canvas.MetaIssueKey))
	assert.Equal(t, "true", cv.GetFrameMetadata(copy1, canvas.MetaIsCopy))
	assert.Len(t, notices, 1)
}

func TestReconcilerIsIdempotent(t *testing.T) {
	cv := canvas.NewMemory()
	var notices []string
	cv.Notify = func(msg string) { notices = append(notices, msg) }

	makeFrame(t, cv, "PI-1", models.Position{X: 0, Y: 0})
	makeFrame(t, cv, "PI-1", models.Position{X: 0, Y: 300})

	r := NewReconciler(cv)
	assert.Equal(t, 1, r.Pass())

	// 直後の再実行は変更も通知も発生しない
	assert.Equal(t, 0, r.Pass())
	assert.Len(t, notices, 1)
}

func TestReconcilerHandlesDuplicatedFrames(t *testing.T) {
	cv := canvas.NewMemory()

	original := makeFrame(t, cv, "PI-7", models.Position{X: 0, Y: 0})
	cv.SetTitleLink(original, "https://tracker.example.com/browse/PI-7")

	// ホスト上のコピー＆ペースト相当: メタデータとリンクも複製される
	dup, ok := cv.Duplicate(original, models.Position{X: 40, Y: 40})
	require.True(t, ok)
	require.Equal(t, "PI-7", cv.GetFrameMetadata(dup, canvas.MetaIssueKey))

	r := NewReconciler(cv)
	assert.Equal(t, 1, r.Pass())

	// 複製側だけが降格され、タイトルリンクも剥がされる
	assert.Equal(t, "PI-7", cv.GetFrameMetadata(original, canvas.MetaIssueKey))
	assert.NotEmpty(t, cv.TitleLink(original))
	assert.Empty(t, cv.GetFrameMetadata(dup, canvas.MetaIssueKey))
	assert.Empty(t, cv.TitleLink(dup))
}

func TestReconcilerIgnoresUniqueKeys(t *testing.T) {
	cv := canvas.NewMemory()
	makeFrame(t, cv, "PI-1", models.Position{})
	makeFrame(t, cv, "PI-2", models.Position{X: 0, Y: 300})
	makeFrame(t, cv, "", models.Position{X: 0, Y: 600})

	r := NewReconciler(cv)
	assert.Equal(t, 0, r.Pass())
}
