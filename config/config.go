package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// トラッカー設定（ディープリンク生成用）
	TrackerURL string

	// ファイルパス
	InputCSV  string
	OutputCSV string
	StylePath string

	// 重複検出設定
	ReconcileInterval time.Duration
	SelectionDebounce time.Duration

	// 抽出設定
	RowTolerance float64

	// インポート時の進捗通知の分割数（10 = 約10%ごと）
	ProgressSteps int
}

// ExportColumnMapping はカードのフィールドラベルからエクスポート列名へのマッピングです
var ExportColumnMapping = map[string]string{
	"Name":                "Summary",
	"Story Points":        "Custom field (Story Points)",
	"Acceptance Criteria": "Custom field (Acceptance Criteria)",
	"Business Value":      "Custom field (Business Value)",
	"Target Date":         "Due date",
	"Dependencies":        "Custom field (Dependencies)",
	"Team":                "Custom field (Team)",
	"Priority Rank":       "Custom field (Priority Rank)",
	"Test Type":           "Custom field (Test Type)",
	"Timebox":             "Custom field (Timebox)",
	"Question":            "Description",
}

// ExportColumnPriority はエクスポート時の既知列の優先順序です
// （Summary / Issue key / Issue Type の後に続く部分。存在する列のみ出力されます）
var ExportColumnPriority = []string{
	"Description",
	"Status",
	"Priority",
	"Assignee",
	"Custom field (Story Points)",
	"Custom field (Acceptance Criteria)",
	"Custom field (Business Value)",
	"Due date",
	"Custom field (Dependencies)",
	"Custom field (Team)",
	"Custom field (Priority Rank)",
	"Custom field (Test Type)",
}

// IssueTypeMapping はカード種別からトラッカーのイシュータイプ名へのマッピングです
// （記載のない種別はカード種別名をそのまま使用します）
var IssueTypeMapping = map[string]string{
	"User Story": "Story",
}

// LoadConfig は環境変数から設定を読み込みます
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	config := &Config{
		TrackerURL:        strings.TrimRight(os.Getenv("TRACKER_URL"), "/"),
		InputCSV:          getEnvWithDefault("INPUT_CSV", "tracker_export.csv"),
		OutputCSV:         getEnvWithDefault("OUTPUT_CSV", ""),
		StylePath:         getEnvWithDefault("CARD_STYLE_FILE", ""),
		ReconcileInterval: getEnvAsDurationWithDefault("RECONCILE_INTERVAL", 2*time.Second),
		SelectionDebounce: getEnvAsDurationWithDefault("SELECTION_DEBOUNCE", 300*time.Millisecond),
		RowTolerance:      getEnvAsFloatWithDefault("EXTRACT_ROW_TOLERANCE", 10.0),
		ProgressSteps:     getEnvAsIntWithDefault("PROGRESS_STEPS", 10),
	}

	return config, nil
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// デフォルト値付きで環境変数を整数として取得
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を浮動小数点数として取得
func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// デフォルト値付きで環境変数を時間として取得
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
