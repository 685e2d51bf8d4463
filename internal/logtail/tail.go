// Package logtail follows the miner log file, emitting lines as the
// backend's daemonized process appends them.
package logtail

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// Event is one appended log line, or a watch error
type Event struct {
	// Line is the log line without its trailing newline
	Line string
	// Err is a non-fatal watch error
	Err error
}

// CleanupFunc stops the follow and waits for its goroutine to exit
type CleanupFunc func() error

// Follow tails path from its current end, emitting appended lines on
// the returned channel until the context is done or cleanup is called.
// The watch is on the parent directory so a log rotated or recreated by
// the backend is picked up again.
func Follow(ctx context.Context, path string) (<-chan Event, CleanupFunc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = f.Close()
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		_ = f.Close()
		return nil, nil, err
	}

	ch := make(chan Event, 64)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		_ = f.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	reader := bufio.NewReader(f)

	emit := func(line string) bool {
		select {
		case ch <- Event{Line: line}:
			return true
		case <-sctx.Stopping():
			return false
		}
	}

	// drain reads every complete line currently available. A trailing
	// partial line is held back until its newline arrives.
	var pending string
	drain := func() bool {
		for {
			chunk, err := reader.ReadString('\n')
			if err != nil {
				pending += chunk
				return true
			}
			line := pending + chunk
			pending = ""
			if !emit(trimNewline(line)) {
				return false
			}
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Name != path {
					continue
				}
				if event.Has(fsnotify.Create) {
					// log was recreated; reopen from the start
					if nf, err := os.Open(path); err == nil {
						_ = f.Close()
						f = nf
						reader.Reset(f)
					}
				}
				if !drain() {
					return nil
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					select {
					case ch <- Event{Err: err}:
					case <-sctx.Stopping():
						return nil
					}
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
