package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"modtap/log"
)

const debounceDelay = 100 * time.Millisecond

// Watch reloads path whenever it changes and hands the validated
// result to onChange. Edits that fail to parse or validate are logged
// and skipped: the daemon keeps running on the configuration it had.
// The returned stop function ends watching.
func Watch(path string, onChange func(Config)) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory, not the file: editors replace the file on
	// save, which silently drops a watch set on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	done := make(chan struct{})
	go func() {
		var debounce *time.Timer
		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != filepath.Base(path) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, func() {
					cfg, err := Load(path)
					if err != nil {
						log.Warnf("config: ignoring change to %s: %v", path, err)
						return
					}
					onChange(cfg)
				})
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("config: watcher: %v", werr)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
