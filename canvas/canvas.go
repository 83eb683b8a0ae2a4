package canvas

import "planboard/models"

// Handle は描画済みフレームの識別子です
type Handle string

// フレームに付与する帯域外メタデータのキー
const (
	MetaIssueKey = "issueKey"
	MetaIsCopy   = "isCopy"
)

// Service はキャンバスホストとの境界インターフェースです
// コアは直接描画せず、どのフィールドをどの意味的スロットへ置くかだけを
// このインターフェース越しに指示します。レイアウト演算はホスト側の責務です
type Service interface {
	// LoadFonts はフォントリソースを取得します（冪等・プロセス生存期間キャッシュ）
	LoadFonts() error

	// CreateCard はカードを1枚描画し、フレームハンドルを返します
	CreateCard(kind models.TemplateKind, title string, fields []models.Field, pos models.Position) (Handle, error)

	// EnumerateFrames は述語にマッチする名前のフレームを列挙します
	EnumerateFrames(predicate func(name string) bool) []Handle

	// FrameName はフレームに記録された名前（カード種別のタイトル）を返します
	FrameName(h Handle) string

	// FramePosition はフレームのキャンバス上の位置を返します
	FramePosition(h Handle) models.Position

	// GetFrameMetadata は帯域外メタデータを取得します（未設定なら空文字列）
	GetFrameMetadata(h Handle, key string) string

	// SetFrameMetadata は帯域外メタデータを設定します
	SetFrameMetadata(h Handle, key, value string)

	// GetTextFragments はフレーム内の位置付きテキスト片を返します
	GetTextFragments(h Handle) []models.Fragment

	// SetTitleLink はタイトルテキストへハイパーリンクを付与します
	SetTitleLink(h Handle, url string)

	// StripTitleLink はタイトルテキストのハイパーリンクを除去します
	StripTitleLink(h Handle)

	// NotifyUser はユーザー可視の通知を表示します
	NotifyUser(message string)

	// ScrollTo は指定フレームが見えるようにビューポートを移動します
	ScrollTo(handles []Handle)
}
