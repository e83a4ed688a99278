package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/medassist-labs/medchat/internal/logger"
)

// Reload re-reads the template file, when one is configured.
func (b *Builder) Reload() error {
	if b.templatePath == "" {
		return nil
	}
	data, err := os.ReadFile(b.templatePath)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	t := strings.TrimSpace(string(data))
	if t == "" {
		return fmt.Errorf("template file %s is empty", b.templatePath)
	}
	b.setTemplate(t)
	return nil
}

// Watch reloads the template whenever its file changes, until ctx is done.
// The watcher sits on the parent directory so editors that replace the file
// by rename are picked up too. Reload failures are logged, never fatal.
func (b *Builder) Watch(ctx context.Context) error {
	if b.templatePath == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	target := filepath.Clean(b.templatePath)
	if err := w.Add(filepath.Dir(target)); err != nil {
		w.Close()
		return fmt.Errorf("watch template dir: %w", err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := b.Reload(); err != nil {
					logger.Warn("prompt template reload failed", "path", target, "error", err)
					continue
				}
				logger.Info("prompt template reloaded", "path", target)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("prompt template watcher error", "error", err)
			}
		}
	}()
	return nil
}
