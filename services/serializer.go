package services

import (
	"fmt"
	"sort"
	"strings"

	"planboard/config"
	"planboard/models"
)

// SerializeCards はカードの列をトラッカー取り込み用のCSVテキストへ平坦化します
// trackerURL が非空の場合、イシューキーを持つカードにはディープリンク列を付加します
func SerializeCards(cards []models.Card, trackerURL string) string {
	// マイルストーンはキャンバス限定のプランニング補助であり、
	// トラッカーへは書き戻しません
	exportable := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if c.Kind == models.KindMilestone {
			continue
		}
		exportable = append(exportable, c)
	}
	if len(exportable) == 0 {
		return ""
	}

	// 各カードを列名→値のレコードへ変換
	records := make([]models.Row, 0, len(exportable))
	hasIssueKey := false
	for _, c := range exportable {
		card := collapseMultiPartFields(c)
		record := make(models.Row)
		record["Summary"] = card.Title
		record["Issue Type"] = issueTypeOf(card.Kind)
		if card.IssueKey != "" {
			hasIssueKey = true
			record["Issue key"] = card.IssueKey
			if trackerURL != "" {
				record["Issue URL"] = fmt.Sprintf("%s/browse/%s", trackerURL, card.IssueKey)
			}
		}

		for _, f := range card.Fields {
			label := strings.TrimSpace(f.Label)
			// 空白・"?" のラベルは列を作らない
			if label == "" || label == "?" {
				continue
			}
			column := label
			if mapped, ok := config.ExportColumnMapping[label]; ok {
				column = mapped
			}
			// 複数ラベルが同じ列に写る場合は Summary（カードタイトル）を優先
			if column == "Summary" {
				continue
			}
			if _, exists := record[column]; exists {
				continue
			}
			record[column] = f.Value
		}
		records = append(records, record)
	}

	columns := columnOrder(records, hasIssueKey)

	// すべての値を引用符で囲み、内部の引用符は二重化します
	var b strings.Builder
	writeRow := func(values []string) {
		for i, v := range values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(v, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}

	writeRow(columns)
	for _, record := range records {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = record[col]
		}
		writeRow(row)
	}
	return b.String()
}

// collapseMultiPartFields は複数部構成フィールドを1つの Description へ畳みます
// ユーザーストーリーの As a / I want / So that、テストの Given / When / Then が対象で、
// 既存の Description は新しく合成した値で置き換えられます
func collapseMultiPartFields(card models.Card) models.Card {
	switch card.Kind {
	case models.KindUserStory:
		asA, iWant, soThat := card.FieldValue("As a"), card.FieldValue("I want"), card.FieldValue("So that")
		if asA == "" && iWant == "" && soThat == "" {
			return card
		}
		return replaceWithDescription(card,
			map[string]bool{"As a": true, "I want": true, "So that": true},
			ConcatNarrative(asA, iWant, soThat))
	case models.KindTest:
		given, when, then := card.FieldValue("Given"), card.FieldValue("When"), card.FieldValue("Then")
		if given == "" && when == "" && then == "" {
			return card
		}
		return replaceWithDescription(card,
			map[string]bool{"Given": true, "When": true, "Then": true},
			ConcatGivenWhenThen(given, when, then))
	}
	return card
}

// replaceWithDescription は指定ラベル群と既存の Description を除去し、
// 合成済みの Description を最初の除去位置へ挿入します
func replaceWithDescription(card models.Card, drop map[string]bool, description string) models.Card {
	out := card
	out.Fields = make([]models.Field, 0, len(card.Fields))
	inserted := false
	for _, f := range card.Fields {
		if drop[f.Label] || f.Label == "Description" {
			if !inserted {
				out.Fields = append(out.Fields, models.Field{Label: "Description", Value: description})
				inserted = true
			}
			continue
		}
		out.Fields = append(out.Fields, f)
	}
	if !inserted {
		out.Fields = append(out.Fields, models.Field{Label: "Description", Value: description})
	}
	return out
}

// issueTypeOf はカード種別をトラッカーのイシュータイプ語彙へ写します
func issueTypeOf(kind models.TemplateKind) string {
	if mapped, ok := config.IssueTypeMapping[string(kind)]; ok {
		return mapped
	}
	return string(kind)
}

// columnOrder は出力列の順序を決定します:
// Summary、Issue key（いずれかのカードが保持する場合のみ）、Issue Type、
// 既知列の固定優先リスト（存在するもののみ）、残りはアルファベット順
func columnOrder(records []models.Row, hasIssueKey bool) []string {
	present := make(map[string]bool)
	for _, r := range records {
		for col := range r {
			present[col] = true
		}
	}

	columns := []string{"Summary"}
	used := map[string]bool{"Summary": true}
	if hasIssueKey {
		columns = append(columns, "Issue key")
	}
	used["Issue key"] = true
	columns = append(columns, "Issue Type")
	used["Issue Type"] = true

	for _, col := range config.ExportColumnPriority {
		if present[col] && !used[col] {
			columns = append(columns, col)
			used[col] = true
		}
	}

	rest := make([]string, 0)
	for col := range present {
		if !used[col] {
			rest = append(rest, col)
		}
	}
	sort.Strings(rest)
	return append(columns, rest...)
}
