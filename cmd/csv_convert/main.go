package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"planboard/config"
	"planboard/models"
	"planboard/services"
	"planboard/utils"
)

func main() {
	// コマンドラインフラグの定義
	inputCSV := flag.String("input", "", "トラッカーからエクスポートしたCSVファイルのパス（指定しない場合は環境変数から取得）")
	outputCSV := flag.String("output", "", "再直列化したCSVの出力先（指定しない場合はエクスポート命名規則で自動生成）")
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}

	// 開始時間の記録
	startTime := time.Now()

	utils.LogInfo("トラッカーCSV 分類・再直列化ツール")

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	// コマンドラインでパスが指定された場合、設定を上書き
	if *inputCSV != "" {
		cfg.InputCSV = *inputCSV
	}
	if *outputCSV != "" {
		cfg.OutputCSV = *outputCSV
	}
	if cfg.OutputCSV == "" {
		cfg.OutputCSV = fmt.Sprintf("pi-planning-export-%s.csv", time.Now().Format("2006-01-02"))
	}

	// 入力CSVの読み込み
	utils.LogInfo("CSVを読み込んでいます: %s", cfg.InputCSV)
	data, err := os.ReadFile(cfg.InputCSV)
	if err != nil {
		utils.LogError("CSV読み込みエラー: %v", err)
		os.Exit(1)
	}

	rows, err := services.ParseTabular(string(data))
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			utils.LogError("CSVに利用可能なデータがありません")
		} else {
			utils.LogError("CSV解析エラー: %v", err)
		}
		os.Exit(1)
	}
	utils.LogInfo("CSVを読み込みました: %d 行", len(rows))

	// 分類とカード化
	cards := make([]models.Card, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if strings.TrimSpace(row["Summary"]) == "" {
			skipped++
			continue
		}
		cards = append(cards, services.ClassifyRow(row))
	}
	utils.LogInfo("分類完了: カード %d 件 / スキップ %d 件", len(cards), skipped)

	// 再直列化して保存
	csvText := services.SerializeCards(cards, cfg.TrackerURL)
	if err := os.WriteFile(cfg.OutputCSV, []byte(csvText), 0o644); err != nil {
		utils.LogError("CSV書き込みエラー: %v", err)
		os.Exit(1)
	}

	// 処理時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("変換が完了しました: %s に %d 件を書き出しました。処理時間: %s", cfg.OutputCSV, len(cards), elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
トラッカーCSV 分類・再直列化ツール

使用方法:
  %s [オプション]

オプション:
  -input ファイル      入力するトラッカーCSV
  -output ファイル     出力するCSV
  -help               このヘルプを表示する

環境変数:
  INPUT_CSV           トラッカーからエクスポートしたCSVファイルパス (デフォルト: tracker_export.csv)
  OUTPUT_CSV          出力CSVファイルパス (デフォルト: pi-planning-export-<日付>.csv)
  TRACKER_URL         ディープリンク生成用のトラッカーURL

説明:
  このツールはイシュートラッカーからエクスポートしたCSVを読み込み、
  各行をプランニングカード種別へ分類したうえで、
  エクスポート列順の規約に従ったCSVとして再直列化します。
`, os.Args[0])
}
