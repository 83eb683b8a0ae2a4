package services

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"planboard/models"
	"planboard/utils"
)

// ErrNoData は入力に利用可能なデータが1行もなかったことを示します
// （空文字列・空白のみ・ヘッダーのみ・全行スキップの場合）
var ErrNoData = errors.New("利用可能なデータがありません")

// ParseTabular はカンマ区切りテキストを行のリストへ解析します
// 引用符で囲まれたフィールドは改行と二重引用符エスケープ（"" → "）を含められます
// 重複した列名は1つのエントリへ畳み込まれます（最初の非空値が勝ち）
func ParseTabular(text string) ([]models.Row, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoData
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1 // 行ごとのフィールド数不一致を許容
	reader.LazyQuotes = true    // 多少崩れた引用符も行スキップに留める

	// ヘッダー行（最初の引用符外改行まで）
	headers, err := reader.Read()
	if err != nil {
		return nil, ErrNoData
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]models.Row, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// 不正な行は例外にせずスキップへ退化させる
			utils.LogWarn("行 %d: 解析できないためスキップします: %v", line, err)
			continue
		}

		// 先頭フィールドが空白の行、および全フィールドが空白の行は破棄
		if strings.TrimSpace(record[0]) == "" {
			continue
		}
		allBlank := true
		for _, v := range record {
			if strings.TrimSpace(v) != "" {
				allBlank = false
				break
			}
		}
		if allBlank {
			continue
		}

		row := make(models.Row)
		for j := 0; j < min(len(headers), len(record)); j++ {
			name := headers[j]
			if name == "" {
				continue
			}
			// 重複ヘッダーの畳み込み: 最初の非空値を保持し、以後の値は捨てる
			if existing, ok := row[name]; ok && strings.TrimSpace(existing) != "" {
				continue
			}
			row[name] = record[j]
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// min は２つの整数の小さい方を返します
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
