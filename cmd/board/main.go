package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"planboard/canvas"
	"planboard/config"
	"planboard/models"
	"planboard/services"
	"planboard/templates"
	"planboard/utils"
)

func main() {
	help := flag.Bool("help", false, "ヘルプを表示する")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	utils.LogInfo("PIプランニングボード メッセージループを開始します")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// スタイル上書きファイルの読み込み（描画側と抽出側で同じ表を共有する）
	styles, err := templates.LoadStyles(cfg.StylePath)
	if err != nil {
		utils.LogError("スタイル設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// 出力エンコーダ（送信メッセージと通知を1行JSONで書き出す）
	encoder := json.NewEncoder(os.Stdout)

	// メモリ内キャンバスホスト（通知は送信メッセージとして配送）
	cv := canvas.NewMemory()
	cv.Styles = styles
	cv.Notify = func(message string) {
		_ = encoder.Encode(models.OutboundMessage{Type: models.MsgNotify, Message: message})
	}

	board := services.NewBoardService(cfg, cv, styles)

	// 標準入力の1行JSONメッセージを受信チャネルへ流し込む
	in := make(chan models.InboundMessage)
	go func() {
		defer close(in)
		decoder := json.NewDecoder(os.Stdin)
		for {
			var msg models.InboundMessage
			if err := decoder.Decode(&msg); err != nil {
				if err != io.EOF {
					utils.LogWarn("メッセージ解読エラー: %v", err)
				}
				return
			}
			in <- msg
		}
	}()

	out := make(chan models.OutboundMessage)
	go func() {
		for msg := range out {
			_ = encoder.Encode(msg)
		}
	}()

	// 選択変更イベントはこのホストには存在しないため、周期調停のみが動きます
	selection := make(chan struct{})

	board.Run(in, out, selection)
	close(out)

	utils.LogInfo("メッセージループを終了しました")
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
PIプランニングボード（標準入出力メッセージループ）

使用方法:
  %s

説明:
  標準入力から1行JSONのコマンドを受け取り、メモリ内キャンバスに対して
  テンプレート挿入・CSVインポート・CSVエクスポートを実行します。

コマンド例:
  {"type":"insert-template","templateType":"userStory"}
  {"type":"import-csv","csvText":"Summary,Issue Type\n..."}
  {"type":"export-csv"}
  {"type":"close"}
`, os.Args[0])
}
