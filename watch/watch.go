// Package watch calls a function whenever files in a set of folders change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is how long changes must settle before the function runs.
const DefaultDelay = 300 * time.Millisecond

// Run watches dirs and their subfolders, calling fn after changes settle for
// delay. Calls never overlap; changes seen while fn runs cause one more call.
// Missing folders are skipped. Run returns when ctx is done.
func Run(ctx context.Context, dirs []string, delay time.Duration, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer watcher.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, dir := range dirs {
		addDirs(watcher, dir)
	}

	var (
		mu    sync.Mutex
		timer *time.Timer
		req   = make(chan struct{}, 1)
	)
	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-req:
				fn()
			}
		}
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignore(ev.Name) {
				continue
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					addDirs(watcher, ev.Name)
				}
			}
			trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %s", err)
		}
	}
}

// addDirs watches root and every folder below it.
func addDirs(w *fsnotify.Watcher, root string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignore(path) && path != root {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				log.Printf("watch: %s", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("watch: %s", err)
	}
}

// ignore reports whether changes to path should be ignored: hidden files and
// editor swap or backup files.
func ignore(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") ||
		strings.HasPrefix(base, "#") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx")
}
