package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"planboard/config"
	"planboard/models"
	"planboard/services"
	"planboard/utils"
)

func main() {
	inputCSV := flag.String("input", "", "監視するトラッカーCSVファイルのパス（指定しない場合は環境変数から取得）")
	outputCSV := flag.String("output", "", "再直列化したCSVの出力先（指定しない場合は環境変数から取得）")
	debounce := flag.Duration("debounce", 500*time.Millisecond, "変更検出から変換までの待ち時間")
	help := flag.Bool("help", false, "ヘルプを表示する")
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}
	if *inputCSV != "" {
		cfg.InputCSV = *inputCSV
	}
	if *outputCSV != "" {
		cfg.OutputCSV = *outputCSV
	}
	if cfg.OutputCSV == "" {
		cfg.OutputCSV = fmt.Sprintf("pi-planning-export-%s.csv", time.Now().Format("2006-01-02"))
	}

	utils.LogInfo("CSV監視モードを開始します: %s → %s", cfg.InputCSV, cfg.OutputCSV)

	// 起動時に一度変換し、その後は変更のたびに再変換します
	convert(cfg)

	watcher, err := services.NewWatcher(cfg.InputCSV, *debounce, func() {
		convert(cfg)
	})
	if err != nil {
		utils.LogError("監視の開始に失敗しました: %v", err)
		os.Exit(1)
	}
	defer watcher.Close()

	go watcher.Run()

	// シグナルを待って終了
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	utils.LogInfo("CSV監視モードを終了します")
}

// convert は入力CSVを1回変換して出力へ書き出します
func convert(cfg *config.Config) {
	data, err := os.ReadFile(cfg.InputCSV)
	if err != nil {
		utils.LogWarn("CSV読み込みエラー: %v", err)
		return
	}

	rows, err := services.ParseTabular(string(data))
	if err != nil {
		if errors.Is(err, services.ErrNoData) {
			utils.LogWarn("CSVに利用可能なデータがありません")
		} else {
			utils.LogWarn("CSV解析エラー: %v", err)
		}
		return
	}

	cards := make([]models.Card, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if strings.TrimSpace(row["Summary"]) == "" {
			skipped++
			continue
		}
		cards = append(cards, services.ClassifyRow(row))
	}

	csvText := services.SerializeCards(cards, cfg.TrackerURL)
	if err := os.WriteFile(cfg.OutputCSV, []byte(csvText), 0o644); err != nil {
		utils.LogWarn("CSV書き込みエラー: %v", err)
		return
	}
	utils.LogInfo("再変換しました: カード %d 件 / スキップ %d 件", len(cards), skipped)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
トラッカーCSV 監視・自動変換ツール

使用方法:
  %s [オプション]

オプション:
  -input ファイル      監視するトラッカーCSV
  -output ファイル     出力するCSV
  -debounce 時間       変更検出から変換までの待ち時間 (デフォルト: 500ms)
  -help               このヘルプを表示する

説明:
  トラッカーCSVファイルの変更を監視し、保存のたびに分類・再直列化を
  実行します。終了するには Ctrl+C を押してください。
`, os.Args[0])
}
