package services

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"planboard/utils"
)

// Watcher はトラッカーCSVファイルの変更を監視し、
// デバウンス後にコールバックを呼び出します（再インポートのトリガ）
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher は新しいファイル監視を作成します
// エディタの「別ファイルに書いてリネーム」保存にも反応できるよう、
// ファイルそのものではなく親ディレクトリを監視します
func NewWatcher(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("ファイル監視の初期化エラー: %w", err)
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("監視ディレクトリ追加エラー: %w", err)
	}

	return &Watcher{
		path:     path,
		debounce: debounce,
		onChange: onChange,
		watcher:  fw,
		done:     make(chan struct{}),
	}, nil
}

// Run はイベントループを実行します（Close されるまでブロックします）
func (w *Watcher) Run() {
	base := filepath.Base(w.path)
	var debounce <-chan time.Time

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			utils.LogInfo("ファイル変更を検出しました: %s", event.Name)
			debounce = time.After(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			utils.LogWarn("ファイル監視エラー: %v", err)

		case <-debounce:
			debounce = nil
			w.onChange()

		case <-w.done:
			return
		}
	}
}

// Close は監視を停止します
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
