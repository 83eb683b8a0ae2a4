package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"planboard/canvas"
	"planboard/config"
	"planboard/models"
	"planboard/templates"
	"planboard/utils"
)

// カード配置のグリッド設定
const (
	gridColumns = 3
	gridSpacingX = 440.0
	gridSpacingY = 380.0
)

// BoardService はメッセージループ・インポート・エクスポート・調停を束ねる
// オーケストレーションサービスです
type BoardService struct {
	config     *config.Config
	canvas     canvas.Service
	extractor  *Extractor
	reconciler *Reconciler

	// busy は実行中のインポート/エクスポートの背後に調停を直列化するためのフラグです
	// （ホストへの制御移譲中に周期タイマーが発火しても作りかけのフレームを走査しない）
	busy bool

	// 配置済みカード数（グリッド配置用）
	placed int
}

// NewBoardService は新しいボードサービスを作成します
// styles はホストの描画側と共有するスタイル表です（nil なら組み込みデフォルト）
func NewBoardService(cfg *config.Config, cv canvas.Service, styles templates.StyleTable) *BoardService {
	extractor := NewExtractor(cfg.RowTolerance)
	extractor.Styles = styles
	return &BoardService{
		config:     cfg,
		canvas:     cv,
		extractor:  extractor,
		reconciler: NewReconciler(cv),
	}
}

// HandleMessage はホストUIからの1コマンドを処理します
// 予期しないエラー（パニックを含む）はここで捕捉し、
// ユーザー通知へ変換します（プロセスは落とさない）
func (b *BoardService) HandleMessage(msg models.InboundMessage) (reply *models.OutboundMessage) {
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("メッセージ処理中に予期しないエラーが発生しました: %v", r)
			b.canvas.NotifyUser("❌ 予期しないエラー: " + utils.MessageText(r))
			reply = nil
		}
	}()
	switch msg.Type {
	case models.MsgInsertTemplate:
		if err := b.InsertTemplate(msg.TemplateType); err != nil {
			b.canvas.NotifyUser("❌ テンプレート挿入エラー: " + utils.MessageText(err))
		}
		return nil

	case models.MsgImportCSV:
		created, skipped, err := b.ImportCSV(msg.CSVText)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				b.canvas.NotifyUser("❌ CSVに利用可能なデータがありません")
			} else {
				b.canvas.NotifyUser("❌ インポートエラー: " + utils.MessageText(err))
			}
			return nil
		}
		b.canvas.NotifyUser(fmt.Sprintf("✅ インポート完了: 作成 %d 件 / スキップ %d 件", created, skipped))
		return nil

	case models.MsgExportCSV:
		csvText, filename, err := b.ExportCSV()
		if err != nil {
			b.canvas.NotifyUser("❌ エクスポートエラー: " + utils.MessageText(err))
			return nil
		}
		return &models.OutboundMessage{Type: models.MsgExportCSV, CSV: csvText, Filename: filename}

	case models.MsgClose:
		return nil

	default:
		utils.LogWarn("未知のメッセージ種別です: %s", msg.Type)
		return nil
	}
}

// InsertTemplate はテンプレートカードを1枚挿入します
func (b *BoardService) InsertTemplate(token string) error {
	kind, ok := templates.KindFromToken(token)
	if !ok {
		return fmt.Errorf("未知のテンプレート種別です: %s", token)
	}

	b.busy = true
	defer func() { b.busy = false }()

	if err := b.canvas.LoadFonts(); err != nil {
		return fmt.Errorf("フォント読み込みエラー: %w", err)
	}

	handle, err := b.canvas.CreateCard(kind, templates.TitleOf(kind), templates.FieldsOf(kind), b.nextPosition())
	if err != nil {
		return fmt.Errorf("カード作成エラー: %w", err)
	}

	b.canvas.ScrollTo([]canvas.Handle{handle})
	b.canvas.NotifyUser(fmt.Sprintf("✅ %s テンプレートを挿入しました", templates.TitleOf(kind)))
	return nil
}

// ImportCSV はトラッカーのCSVエクスポートをカードとして取り込みます
// 行単位の失敗はスキップ数に計上してバッチを継続します（全体は中断しない）
func (b *BoardService) ImportCSV(text string) (created, skipped int, err error) {
	start := time.Now()
	defer utils.TrackTime(start, "CSVインポート")

	rows, err := ParseTabular(text)
	if err != nil {
		return 0, 0, err
	}

	b.busy = true
	defer func() { b.busy = false }()

	// フォントは一度だけ読み込まれ、以後キャッシュされます
	if err := b.canvas.LoadFonts(); err != nil {
		return 0, 0, fmt.Errorf("フォント読み込みエラー: %w", err)
	}

	progressStep := len(rows) / b.config.ProgressSteps
	if progressStep < 1 {
		progressStep = 1
	}

	handles := make([]canvas.Handle, 0, len(rows))
	for i, row := range rows {
		// Summary が空の行は分類前に除外します
		if strings.TrimSpace(row["Summary"]) == "" {
			skipped++
			continue
		}

		card := ClassifyRow(row)
		handle, cerr := b.canvas.CreateCard(card.Kind, card.Title, card.Fields, b.nextPosition())
		if cerr != nil {
			utils.LogWarn("行 %d: カード作成に失敗したためスキップします: %v", i+2, cerr)
			skipped++
			continue
		}

		if card.IssueKey != "" {
			b.canvas.SetFrameMetadata(handle, canvas.MetaIssueKey, card.IssueKey)
			if b.config.TrackerURL != "" {
				b.canvas.SetTitleLink(handle, fmt.Sprintf("%s/browse/%s", b.config.TrackerURL, card.IssueKey))
			}
		}
		handles = append(handles, handle)
		created++

		// 大きなインポートでは約10%ごとに進捗を通知します
		if (i+1)%progressStep == 0 && i+1 < len(rows) {
			b.canvas.NotifyUser(fmt.Sprintf("処理中... %d%% (%d/%d)", (i+1)*100/len(rows), i+1, len(rows)))
		}
	}

	if len(handles) > 0 {
		b.canvas.ScrollTo(handles)
	}
	return created, skipped, nil
}

// ExportCSV はキャンバス上のカードを抽出してCSVへ直列化します
func (b *BoardService) ExportCSV() (csvText, filename string, err error) {
	start := time.Now()
	defer utils.TrackTime(start, "CSVエクスポート")

	b.busy = true
	defer func() { b.busy = false }()

	// カタログのタイトルに一致する名前のフレームだけが対象です
	handles := b.canvas.EnumerateFrames(func(name string) bool {
		_, ok := templates.KindOf(name)
		return ok
	})

	cards := make([]models.Card, 0, len(handles))
	for _, h := range handles {
		frags := b.canvas.GetTextFragments(h)
		issueKey := b.canvas.GetFrameMetadata(h, canvas.MetaIssueKey)
		card, ok := b.extractor.ExtractCard(b.canvas.FrameName(h), frags, issueKey)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		return "", "", fmt.Errorf("エクスポート対象のカードがありません")
	}

	csvText = SerializeCards(cards, b.config.TrackerURL)
	filename = fmt.Sprintf("pi-planning-export-%s.csv", time.Now().Format("2006-01-02"))
	b.canvas.NotifyUser(fmt.Sprintf("✅ エクスポート完了: %d 件のカードを書き出しました", len(cards)))
	return csvText, filename, nil
}

// Reconcile は重複調停パスを実行します
// インポート/エクスポートの実行中は何もしません（次の周期に委ねます）
func (b *BoardService) Reconcile() {
	if b.busy {
		return
	}
	b.reconciler.Pass()
}

// Run はメッセージループを実行します
// 受信コマンド・周期タイマー・デバウンスされた選択変更イベントを
// 1本のゴルーチン上で直列に処理します（協調的単一スレッドモデル）
func (b *BoardService) Run(in <-chan models.InboundMessage, out chan<- models.OutboundMessage, selection <-chan struct{}) {
	ticker := time.NewTicker(b.config.ReconcileInterval)
	defer ticker.Stop()

	var debounce <-chan time.Time

	for {
		select {
		case msg, ok := <-in:
			if !ok {
				return
			}
			if reply := b.HandleMessage(msg); reply != nil {
				out <- *reply
			}
			if msg.Type == models.MsgClose {
				return
			}

		case <-ticker.C:
			b.Reconcile()

		case <-selection:
			// 選択変更はデバウンスしてから調停します
			debounce = time.After(b.config.SelectionDebounce)

		case <-debounce:
			debounce = nil
			b.Reconcile()
		}
	}
}

// nextPosition は次のカードのグリッド配置座標を返します
func (b *BoardService) nextPosition() models.Position {
	col := b.placed % gridColumns
	row := b.placed / gridColumns
	b.placed++
	return models.Position{X: float64(col) * gridSpacingX, Y: float64(row) * gridSpacingY}
}
