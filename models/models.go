package models

// TemplateKind はカードの種別を表します（値はカタログ上の表示タイトルと一致します）
type TemplateKind string

// カード種別の固定カタログ
const (
	KindTheme      TemplateKind = "Theme"
	KindMilestone  TemplateKind = "Milestone"
	KindUserStory  TemplateKind = "User Story"
	KindEpic       TemplateKind = "Epic"
	KindInitiative TemplateKind = "Initiative"
	KindTask       TemplateKind = "Task"
	KindSpike      TemplateKind = "Spike"
	KindTest       TemplateKind = "Test"
)

// Field はカード上の1つのフィールド（ラベルと値）を表します
type Field struct {
	Label string
	Value string
}

// Card は描画前後のプランニングアイテムのメモリ内表現です
type Card struct {
	Kind     TemplateKind
	Title    string
	Fields   []Field
	IssueKey string // 空文字列 = トラッカー未連携（ローカル作成）
}

// FieldValue はラベルに対応する値を返します（存在しない場合は空文字列）
func (c *Card) FieldValue(label string) string {
	for _, f := range c.Fields {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}

// Row はCSVの1行を表します（列名→値のマップ）
type Row map[string]string

// Fragment は描画済みカード内の位置付きテキスト片を表します
type Fragment struct {
	Text   string
	X      float64
	Y      float64
	Width  float64
	Height float64
	Bold   bool
}

// Position はキャンバス上の配置座標です
type Position struct {
	X float64
	Y float64
}

// InboundMessage はホストUIから受信するコマンドです
type InboundMessage struct {
	Type         string `json:"type"`
	TemplateType string `json:"templateType,omitempty"`
	CSVText      string `json:"csvText,omitempty"`
}

// OutboundMessage はホストUIへ送信するメッセージです
type OutboundMessage struct {
	Type     string `json:"type"`
	CSV      string `json:"csv,omitempty"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// 受信メッセージ種別
const (
	MsgInsertTemplate = "insert-template"
	MsgImportCSV      = "import-csv"
	MsgExportCSV      = "export-csv"
	MsgClose          = "close"
)

// 送信メッセージ種別
const (
	MsgNotify = "notify"
)
