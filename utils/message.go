package utils

import "fmt"

// MessageText は任意のエラー値からユーザー通知用のテキストを取り出します
// すべての捕捉箇所で同じ整形を使うための共通ヘルパーです
func MessageText(v interface{}) string {
	switch e := v.(type) {
	case nil:
		return "不明なエラー"
	case error:
		return e.Error()
	case string:
		return e
	default:
		return fmt.Sprintf("%v", e)
	}
}
