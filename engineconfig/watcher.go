// The MIT License
//
// Copyright (c) 2020 Temporal Technologies Inc.  All rights reserved.
//
// Copyright (c) 2020 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package engineconfig

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Store's Config whenever the underlying file changes,
// debouncing rapid successive writes (editors and config-management tools
// both tend to write a file more than once per logical change).
type Watcher struct {
	path  string
	store *Store
}

// NewWatcher builds a Watcher for path, reloading into store.
func NewWatcher(path string, store *Store) *Watcher {
	return &Watcher{path: path, store: store}
}

// Run blocks, watching for changes to the file until ctx is done or the
// underlying fsnotify.Watcher fails to start. cb is called with nil after
// every successful reload, and with an error if a reload or the watch setup
// itself fails.
func (w *Watcher) Run(ctx context.Context, cb func(error)) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		cb(err)
		return
	}
	defer fw.Close()
	if err := fw.Add(w.path); err != nil {
		cb(err)
		return
	}

	debounce := time.NewTimer(time.Hour)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.Events:
			debounce.Reset(200 * time.Millisecond)
		case err := <-fw.Errors:
			cb(err)
		case <-debounce.C:
			cfg, err := Load(w.path)
			if err != nil {
				cb(err)
				continue
			}
			w.store.set(cfg)
			cb(nil)
		}
	}
}
