package canvas

import (
	"strings"

	"github.com/google/uuid"

	"planboard/models"
	"planboard/templates"
	"planboard/utils"
)

// レイアウト定数（メモリ内ホストの描画規約）
const (
	padding      = 20.0 // 左右余白
	titleY       = 20.0 // タイトルの縦位置
	titleHeight  = 28.0
	fieldStartY  = 60.0 // 最初のフィールドラベルの縦位置
	labelHeight  = 14.0
	lineHeight   = 16.0 // 値テキスト1行の高さ
	fieldGap     = 24.0 // 値と次のラベルの間隔
	numberWidth  = 48.0 // 大数字フィールドの幅
	numberHeight = 32.0
)

// frame はメモリ内ホストが保持する1枚のフレームです
type frame struct {
	id        Handle
	name      string
	pos       models.Position
	fragments []models.Fragment
	metadata  map[string]string
	titleLink string
}

// Memory はテストとCLIのためのメモリ内キャンバスホストです
// 実ホストと同じレイアウト規約でフラグメントを生成するため、
// 抽出の逆変換を端から端まで検証できます
type Memory struct {
	frames      []*frame
	byID        map[Handle]*frame
	fontsLoaded bool

	// Styles は描画に使うスタイル表です（nil なら組み込みデフォルト）
	Styles templates.StyleTable

	// Notify は通知の送り先です（未設定ならログへ出力）
	Notify func(message string)

	// CreateHook はテスト用の作成失敗注入ポイントです
	CreateHook func(kind models.TemplateKind, title string) error

	// LastScrolled は直近の ScrollTo 呼び出しの引数です
	LastScrolled []Handle
}

// NewMemory は新しいメモリ内キャンバスホストを作成します
func NewMemory() *Memory {
	return &Memory{
		byID: make(map[Handle]*frame),
	}
}

// LoadFonts はフォント取得をシミュレートします（冪等）
func (m *Memory) LoadFonts() error {
	m.fontsLoaded = true
	return nil
}

// CreateCard はカードをレイアウトしてフラグメント集合を生成します
func (m *Memory) CreateCard(kind models.TemplateKind, title string, fields []models.Field, pos models.Position) (Handle, error) {
	if m.CreateHook != nil {
		if err := m.CreateHook(kind, title); err != nil {
			return "", err
		}
	}

	// フォントは一度だけ読み込まれ、以後はキャッシュされます
	if !m.fontsLoaded {
		if err := m.LoadFonts(); err != nil {
			return "", err
		}
	}

	style := m.Styles.For(kind)
	width := style.Width

	frags := []models.Fragment{
		{Text: title, X: padding, Y: titleY, Width: width - 100, Height: titleHeight, Bold: true},
	}

	// 大数字フィールドと担当者フィールドは下端バンドへ分離して描画します
	var numberValue, assigneeValue string
	haveNumber, haveAssignee := false, false

	y := fieldStartY
	for _, f := range fields {
		if style.LargeNumberField != "" && f.Label == style.LargeNumberField && !haveNumber {
			numberValue = f.Value
			haveNumber = true
			continue
		}
		if style.AssigneeField && f.Label == "Assignee" && !haveAssignee {
			assigneeValue = f.Value
			haveAssignee = true
			continue
		}

		value := f.Value
		if strings.TrimSpace(value) == "" {
			// 空値でもラベルと値のペアが崩れないように1文字分を置く
			value = " "
		}
		valueHeight := lineHeight * float64(strings.Count(value, "\n")+1)

		frags = append(frags,
			models.Fragment{Text: f.Label + ":", X: padding, Y: y, Width: 180, Height: labelHeight, Bold: true},
			models.Fragment{Text: value, X: padding, Y: y + 20, Width: width - 2*padding, Height: valueHeight},
		)
		y += 20 + valueHeight + fieldGap
	}

	height := y + style.BottomBand

	if haveNumber {
		v := numberValue
		if strings.TrimSpace(v) == "" {
			v = "?"
		}
		frags = append(frags, models.Fragment{
			Text: v, X: width - padding - numberWidth - 12, Y: height - 50,
			Width: numberWidth, Height: numberHeight, Bold: true,
		})
	}
	if haveAssignee {
		v := assigneeValue
		if strings.TrimSpace(v) == "" {
			v = "Unassigned"
		}
		frags = append(frags, models.Fragment{
			Text: v, X: padding, Y: height - 52, Width: 140, Height: lineHeight,
		})
	}

	f := &frame{
		id:        Handle(uuid.NewString()),
		name:      templates.TitleOf(kind),
		pos:       pos,
		fragments: frags,
		metadata:  make(map[string]string),
	}
	m.frames = append(m.frames, f)
	m.byID[f.id] = f
	return f.id, nil
}

// EnumerateFrames は述語にマッチする名前のフレームを挿入順で返します
func (m *Memory) EnumerateFrames(predicate func(name string) bool) []Handle {
	handles := make([]Handle, 0)
	for _, f := range m.frames {
		if predicate == nil || predicate(f.name) {
			handles = append(handles, f.id)
		}
	}
	return handles
}

// FrameName はフレーム名を返します
func (m *Memory) FrameName(h Handle) string {
	if f, ok := m.byID[h]; ok {
		return f.name
	}
	return ""
}

// FramePosition はフレーム位置を返します
func (m *Memory) FramePosition(h Handle) models.Position {
	if f, ok := m.byID[h]; ok {
		return f.pos
	}
	return models.Position{}
}

// GetFrameMetadata は帯域外メタデータを取得します
func (m *Memory) GetFrameMetadata(h Handle, key string) string {
	if f, ok := m.byID[h]; ok {
		return f.metadata[key]
	}
	return ""
}

// SetFrameMetadata は帯域外メタデータを設定します
func (m *Memory) SetFrameMetadata(h Handle, key, value string) {
	if f, ok := m.byID[h]; ok {
		if value == "" {
			delete(f.metadata, key)
		} else {
			f.metadata[key] = value
		}
	}
}

// GetTextFragments はフラグメント集合のコピーを返します
func (m *Memory) GetTextFragments(h Handle) []models.Fragment {
	f, ok := m.byID[h]
	if !ok {
		return nil
	}
	frags := make([]models.Fragment, len(f.fragments))
	copy(frags, f.fragments)
	return frags
}

// SetTitleLink はタイトルへのハイパーリンクを記録します
func (m *Memory) SetTitleLink(h Handle, url string) {
	if f, ok := m.byID[h]; ok {
		f.titleLink = url
	}
}

// StripTitleLink はタイトルのハイパーリンクを除去します
func (m *Memory) StripTitleLink(h Handle) {
	if f, ok := m.byID[h]; ok {
		f.titleLink = ""
	}
}

// TitleLink はテスト検証用にタイトルリンクを返します
func (m *Memory) TitleLink(h Handle) string {
	if f, ok := m.byID[h]; ok {
		return f.titleLink
	}
	return ""
}

// NotifyUser はユーザー通知を配送します
func (m *Memory) NotifyUser(message string) {
	if m.Notify != nil {
		m.Notify(message)
		return
	}
	utils.LogInfo("通知: %s", message)
}

// ScrollTo はビューポート移動を記録します
func (m *Memory) ScrollTo(handles []Handle) {
	m.LastScrolled = handles
}

// Duplicate はフレームの複製（コピー＆ペースト相当）をシミュレートします
// メタデータはホストの挙動と同じく複製側にもそのまま引き継がれます
func (m *Memory) Duplicate(h Handle, offset models.Position) (Handle, bool) {
	src, ok := m.byID[h]
	if !ok {
		return "", false
	}
	dup := &frame{
		id:        Handle(uuid.NewString()),
		name:      src.name,
		pos:       models.Position{X: src.pos.X + offset.X, Y: src.pos.Y + offset.Y},
		fragments: append([]models.Fragment(nil), src.fragments...),
		metadata:  make(map[string]string, len(src.metadata)),
		titleLink: src.titleLink,
	}
	for k, v := range src.metadata {
		dup.metadata[k] = v
	}
	m.frames = append(m.frames, dup)
	m.byID[dup.id] = dup
	return dup.id, true
}
