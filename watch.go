package projects

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is how long Watch waits for disk events to settle.
const DefaultWatchDebounce = 100 * time.Millisecond

// DiskChange describes a change to a document's file made by someone else.
type DiskChange struct {
	Path    string
	Removed bool
	ModTime time.Time
	Size    int64
}

type fileStamp struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (s fileStamp) equal(o fileStamp) bool {
	return s.exists == o.exists && s.size == o.size && s.modTime.Equal(o.modTime)
}

func statStamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// rememberDisk records the file as the document last read or wrote it, so
// Watch does not report the document's own saves.
func (d *Document) rememberDisk() {
	stamp := statStamp(d.path)
	d.watchMu.Lock()
	d.lastWrite = stamp
	d.watchMu.Unlock()
}

// Watch reports changes other processes make to the document's file until ctx
// is done. Bursts of events are coalesced; fn runs on the calling goroutine
// and a disk.changed event is emitted for each reported change. Watch returns
// nil when ctx ends.
func (d *Document) Watch(ctx context.Context, fn func(DiskChange)) error {
	if d.closed {
		return ErrClosed
	}
	if d.path == "" {
		return ErrNoPath
	}
	target, err := filepath.Abs(d.path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", d.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched because saves replace the file by rename.
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	debounce := d.watchDebounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}
	d.log().Debug("Watching document", "path", target, "debounce", debounce)

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			timerC = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.log().Warn("Document watcher error", "path", target, "error", err)

		case <-timerC:
			timerC = nil
			d.checkDisk(target, fn)
		}
	}
}

func (d *Document) checkDisk(path string, fn func(DiskChange)) {
	stamp := statStamp(path)

	d.watchMu.Lock()
	if stamp.equal(d.lastWrite) {
		d.watchMu.Unlock()
		return
	}
	d.lastWrite = stamp
	d.watchMu.Unlock()

	change := DiskChange{
		Path:    path,
		Removed: !stamp.exists,
		ModTime: stamp.modTime,
		Size:    stamp.size,
	}
	d.log().Info("Document changed on disk", "path", path, "removed", change.Removed)

	if fn != nil {
		fn(change)
	}
	d.emit(EventTypeDocumentDiskChanged, map[string]any{"removed": change.Removed, "size": change.Size})
}
