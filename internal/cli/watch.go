// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package cli

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watch runs the program, then runs it again each time its file is written,
// until ctx is cancelled. Run errors are logged and do not stop the watch.
//
// The file's directory is watched rather than the file itself since editors
// often replace files on save.
//
func (s *Session) Watch(ctx context.Context) error {
	path, err := filepath.Abs(s.opts.Path)
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "watch")
	}
	defer w.Close()
	if err = w.Add(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "watch")
	}

	s.watchRun(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			s.opts.Logger.Info("program changed, running again", "path", s.opts.Path)
			s.watchRun(ctx)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.opts.Logger.Error("watcher failed", "err", err)
		}
	}
}

func (s *Session) watchRun(ctx context.Context) {
	err := s.Run(ctx)
	if err != nil {
		s.opts.Logger.Error("run failed", "path", s.opts.Path, "err", err)
	}
	if s.opts.OnRun != nil {
		s.opts.OnRun(err)
	}
}
