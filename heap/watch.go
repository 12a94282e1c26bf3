/*
Copyright (C) 2026  The RefPerSys-Go Authors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package heap

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDir is a supplemental feature beyond the persistence core itself:
// it watches a FileStore-backed heap directory (persistore/ and the top
// manifest) for writes from a separate dumping process and invokes
// onChange, debounced, so a long-running REPL/GUI collaborator (out of
// scope for this package) can re-run Load without polling.
func WatchDir(dir string, onChange func()) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dw := &DirWatcher{w: w, done: make(chan struct{})}

	for _, sub := range []string{dir, filepath.Join(dir, "persistore")} {
		if err := w.Add(sub); err != nil {
			w.Close()
			return nil, err
		}
	}

	go dw.run(onChange)
	return dw, nil
}

// DirWatcher is the handle returned by WatchDir; Close stops the
// underlying fsnotify watcher and its debounce goroutine.
type DirWatcher struct {
	w    *fsnotify.Watcher
	done chan struct{}
}

// debounceWindow coalesces a burst of writes from one dump run (manifest
// plus every space file) into a single onChange call.
const debounceWindow = 200 * time.Millisecond

func (dw *DirWatcher) run(onChange func()) {
	var timer *time.Timer
	for {
		select {
		case _, ok := <-dw.w.Events:
			if !ok {
				return
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, onChange)
			} else {
				timer.Reset(debounceWindow)
			}
		case _, ok := <-dw.w.Errors:
			if !ok {
				return
			}
		case <-dw.done:
			return
		}
	}
}

func (dw *DirWatcher) Close() error {
	close(dw.done)
	return dw.w.Close()
}
