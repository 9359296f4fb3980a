package config

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// applyEnvFile reads KEY=VALUE lines from path and sets each as a process
// environment variable, overwriting any existing value. Blank lines and
// lines starting with # are ignored; malformed lines are skipped.
func applyEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		os.Setenv(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return scanner.Err()
}

// WatchEnvFile optionally reloads environment overrides from a file (e.g. a
// mounted .env-style ConfigMap) whenever it changes on disk, following the
// debounced fsnotify watch-loop idiom used for workspace file watching
// elsewhere in the corpus. Unrecognized keys in the file are ignored; a
// reload only ever replaces process environment values, it never removes
// one. onReload is called with the freshly loaded Config after every
// debounced change.
func WatchEnvFile(ctx context.Context, path string, onReload func(Config)) error {
	if path == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := w.Add(path); err != nil {
		w.Close()
		return err
	}
	if err := applyEnvFile(path); err != nil {
		w.Close()
		return err
	}

	go func() {
		defer w.Close()
		const debounce = 500 * time.Millisecond
		var pending *time.Timer

		fire := func() {
			if err := applyEnvFile(path); err != nil {
				slog.Error("config: reload failed", "error", err)
				return
			}
			onReload(Load())
		}

		for {
			select {
			case <-ctx.Done():
				if pending != nil {
					pending.Stop()
				}
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(debounce, fire)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Error("config: watch error", "error", err)
			}
		}
	}()

	return nil
}
