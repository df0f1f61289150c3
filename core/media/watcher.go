package media

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"time"

	"FrameLoom/logger"
	"FrameLoom/model"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Watcher auto-imports media dropped into a watch folder: new files are
// probed and handed to the import callback as ready MediaFile records.
type Watcher struct {
	dir      string
	prober   Prober
	onImport func(*model.MediaFile)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher over dir. onImport is called from the
// watcher goroutine for every successfully probed file.
func NewWatcher(dir string, prober Prober, onImport func(*model.MediaFile)) *Watcher {
	return &Watcher{dir: dir, prober: prober, onImport: onImport, done: make(chan struct{})}
}

// Start begins watching. Returns after the fsnotify watch is in place;
// events are handled on a background goroutine until Close.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}
	w.watcher = fsw

	go func() {
		processed := make(map[string]bool)
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != fsnotify.Create {
					continue
				}
				if processed[event.Name] {
					continue
				}
				processed[event.Name] = true
				w.importFile(event.Name)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn("watch folder error", logger.ErrorField(err))
			case <-w.done:
				return
			}
		}
	}()

	logger.Info("watch folder active", logger.String("dir", w.dir))
	return nil
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) importFile(path string) {
	// Give the writer a moment to finish; a partially copied file makes
	// ffprobe report garbage.
	time.Sleep(500 * time.Millisecond)

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	probe, err := w.prober.Probe(ctx, path)
	if err != nil {
		logger.Warn("watch folder probe failed",
			logger.String("path", path), logger.ErrorField(err))
		return
	}

	mf := &model.MediaFile{
		ID:       uuid.NewString(),
		Name:     filepath.Base(path),
		Type:     probe.Type,
		MimeType: mime.TypeByExtension(filepath.Ext(path)),
		Size:     info.Size(),
		Duration: probe.DurationMs,
		Width:    probe.Width,
		Height:   probe.Height,
		URL:      "file://" + path,
	}
	logger.Info("media auto-imported",
		logger.String("path", path),
		logger.String("type", string(mf.Type)),
		logger.Int64("duration", mf.Duration))
	w.onImport(mf)
}
