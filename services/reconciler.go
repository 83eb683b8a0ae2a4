package services

import (
	"fmt"
	"sort"
	"strings"

	"planboard/canvas"
	"planboard/utils"
)

// Reconciler はキャンバス上でコピーされたカードを検出し、
// コピー側からイシューキーを剥がしてエクスポート時に新規扱いにします
type Reconciler struct {
	canvas canvas.Service

	// seen は処理済みフレームの集合です（再処理と重複通知を防ぎます）
	// プロセス生存期間の状態としてこの構造体が所有します
	seen map[canvas.Handle]bool
}

// NewReconciler は新しい重複調停器を作成します
func NewReconciler(cv canvas.Service) *Reconciler {
	return &Reconciler{
		canvas: cv,
		seen:   make(map[canvas.Handle]bool),
	}
}

// Pass は調停を1回実行し、降格したフレーム数を返します
// 冪等です: 降格済みのカードに対する再実行は何もしません
func (r *Reconciler) Pass() int {
	// 非空のイシューキーごとにフレームをグループ化
	groups := make(map[string][]canvas.Handle)
	for _, h := range r.canvas.EnumerateFrames(nil) {
		key := strings.TrimSpace(r.canvas.GetFrameMetadata(h, canvas.MetaIssueKey))
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], h)
	}

	demoted := 0
	for key, handles := range groups {
		if len(handles) < 2 {
			continue
		}

		// (isCopy 昇順, 位置 昇順) でソートし、先頭の非コピー・最小位置を原本とする
		sort.SliceStable(handles, func(i, j int) bool {
			ci := r.canvas.GetFrameMetadata(handles[i], canvas.MetaIsCopy) == "true"
			cj := r.canvas.GetFrameMetadata(handles[j], canvas.MetaIsCopy) == "true"
			if ci != cj {
				return !ci
			}
			pi, pj := r.canvas.FramePosition(handles[i]), r.canvas.FramePosition(handles[j])
			if pi.Y != pj.Y {
				return pi.Y < pj.Y
			}
			return pi.X < pj.X
		})

		for _, dup := range handles[1:] {
			if r.seen[dup] {
				continue
			}
			r.seen[dup] = true

			// イシューキーを剥がすと次回パスではグループに現れなくなる
			r.canvas.SetFrameMetadata(dup, canvas.MetaIssueKey, "")
			r.canvas.SetFrameMetadata(dup, canvas.MetaIsCopy, "true")
			r.canvas.StripTitleLink(dup)
			r.canvas.NotifyUser(fmt.Sprintf("ℹ️ コピーされたカードを検出しました: %s のイシューキーを解除し、新規カードとして扱います", key))
			demoted++
		}
	}

	if demoted > 0 {
		utils.LogInfo("重複調停: %d 件のコピーを降格しました", demoted)
	}
	return demoted
}
