package cli

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watch runs the scenarios once, then again whenever a scenario file under
// dir is written, created, removed or renamed, until ctx is done.
func watch(ctx context.Context, dir string, opts *RunOptions, cmd *cobra.Command) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, dir); err != nil {
		return WrapExitError(ExitCommandError, "failed to watch scenarios", err)
	}

	f := opts.formatter(cmd)
	rerun := func() error {
		err := runAndReport(ctx, opts, dir, cmd)
		if GetExitCode(err) == ExitCommandError {
			return err
		}
		f.VerboseLog("watching %s", dir)
		return nil
	}
	if err := rerun(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isScenarioChange(event) {
				continue
			}
			f.VerboseLog("fsnotify event=%s file=%s", event.Op, event.Name)
			fmt.Fprintf(f.Writer, "\n%s changed, rerunning\n", filepath.Base(event.Name))
			if err := rerun(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.VerboseLog("fsnotify error=%v", err)
		}
	}
}

// addWatchDirs watches dir and its subdirectories, except golden outputs.
func addWatchDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == "golden" && path != dir {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

func isScenarioChange(event fsnotify.Event) bool {
	ext := filepath.Ext(event.Name)
	if ext != ".yaml" && ext != ".yml" {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
