// Copyright (C) 2026 Hackeval Labs
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package server

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hackeval/hackeval/services/judge/domain"
)

// settleDelay gives an unpacking submission time to finish writing
// before the watcher enqueues it.
const settleDelay = 3 * time.Second

// Watcher enqueues a judging job whenever a new submission directory
// appears under the watched root. Only top-level directories are
// considered submissions.
type Watcher struct {
	dir     string
	queue   *Queue
	watcher *fsnotify.Watcher
	closed  chan struct{}
}

// NewWatcher watches dir for new submission directories.
func NewWatcher(dir string, queue *Queue) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		dir:     dir,
		queue:   queue,
		watcher: fw,
		closed:  make(chan struct{}),
	}, nil
}

// Start launches the watch loop.
func (w *Watcher) Start(ctx context.Context) {
	go w.watchLoop(ctx)
}

// Close stops the watch loop and releases the inotify handle.
func (w *Watcher) Close() {
	select {
	case <-w.closed:
	default:
		close(w.closed)
	}
	w.watcher.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.closed:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("Submissions watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Op&fsnotify.Create == 0 {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}

	// Enqueue after the settle delay so partially unpacked trees do
	// not get judged mid-write.
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-w.closed:
			return
		case <-time.After(settleDelay):
		}

		job, err := w.queue.Enqueue(domain.Submission{
			ID:   name,
			Root: event.Name,
		})
		if err != nil {
			slog.Error("Watched submission rejected", "submission_id", name, "error", err)
			return
		}
		slog.Info("Watched submission enqueued", "submission_id", name, "job_id", job.ID)
	}()
}
