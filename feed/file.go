package feed

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/delta"
)

// FileWatcher emits the contents of a file whenever it changes.
//
// The parent directory is watched rather than the file itself, so editors and
// deploy tools that replace the file by renaming a new one over it are
// followed. Writes that leave the contents unchanged are not emitted.
type FileWatcher struct {
	path string
}

// NewFileWatcher creates a FileWatcher for path.
func NewFileWatcher(path string) *FileWatcher {
	return &FileWatcher{path: path}
}

// Path returns the watched path.
func (w *FileWatcher) Path() string { return w.path }

// Watch emits the current contents, then the new contents after every
// change. The file must exist when Watch is called.
func (w *FileWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	path, err := filepath.Abs(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", w.path, err)
	}
	initial, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan []byte)
	go w.run(ctx, fsw, path, initial, out)
	return out, nil
}

func (w *FileWatcher) run(ctx context.Context, fsw *fsnotify.Watcher, path string, last []byte, out chan<- []byte) {
	defer close(out)
	defer fsw.Close()

	if !send(ctx, out, last) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			data, err := os.ReadFile(path)
			if err != nil {
				// Mid-replace; the following Create brings the new file.
				continue
			}
			if bytes.Equal(data, last) {
				continue
			}
			last = data
			if !send(ctx, out, data) {
				return
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			capitan.Emit(ctx, FileWatchError,
				KeyPath.Field(path),
				delta.KeyError.Field(err.Error()),
			)
		}
	}
}
