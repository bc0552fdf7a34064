package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

// WatchDebounce coalesces bursts of file events into a single re-run.
const WatchDebounce = 100 * time.Millisecond

// Watch runs the rule book once, then again every time the rules or the fact
// file change, until ctx is cancelled. Run failures are printed and do not stop
// the watcher, so a broken edit can be fixed in place.
func Watch(ctx context.Context, opts RunOptions, stdout io.Writer) error {
	logger := createLogger(opts.Log)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	targets, err := watchTargets(opts.SourceOptions)
	if err != nil {
		return err
	}
	dirs := make(map[string]bool)
	for _, t := range targets {
		// Watch parent directories so atomic rename-over-writes are seen.
		dir := t.path
		if !t.dir {
			dir = filepath.Dir(t.path)
		}
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	run := func() {
		if err := Execute(ctx, opts, stdout); err != nil && !isInterrupted(err) {
			fmt.Fprintf(stdout, "Error: %v\n", err)
		}
	}

	printSystemMessage(stdout, "Watching %d path(s) for changes.", len(targets))
	run()

	timer := time.NewTimer(WatchDebounce)
	timer.Stop()
	defer timer.Stop()
	var changed string

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if !matchesTarget(targets, ev.Name) {
				continue
			}
			logger.Debug("File event", "path", ev.Name, "op", ev.Op.String())
			changed = ev.Name
			timer.Reset(WatchDebounce)

		case <-timer.C:
			printSystemMessage(stdout, "Change detected in '%s'.", changed)
			run()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "err", err)
		}
	}
}

type watchTarget struct {
	path string
	dir  bool
}

// watchTargets resolves the local files a run depends on. Redis facts are not
// watched.
func watchTargets(opts SourceOptions) ([]watchTarget, error) {
	var targets []watchTarget

	rules, err := filepath.Abs(sourceName(opts.Rules, domain.DefaultRulesFile))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(rules)
	targets = append(targets, watchTarget{path: rules, dir: err == nil && info.IsDir()})

	if opts.Redis.Addr == "" {
		facts, err := filepath.Abs(sourceName(opts.Facts, domain.DefaultFactsFile))
		if err != nil {
			return nil, err
		}
		targets = append(targets, watchTarget{path: facts})
	}
	return targets, nil
}

func matchesTarget(targets []watchTarget, name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, t := range targets {
		if t.dir {
			if strings.HasPrefix(abs, t.path+string(filepath.Separator)) {
				return true
			}
			continue
		}
		if abs == t.path {
			return true
		}
	}
	return false
}
