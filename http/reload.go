package http

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/tom5610/sagemaker-101-workshop/train"
)

// reloadDebounce coalesces the burst of filesystem events a training run
// emits while it writes its artifact set.
const reloadDebounce = 500 * time.Millisecond

// ModelWatcher reloads the served pipeline whenever a training run rewrites
// the model directory.
type ModelWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
}

// NewModelWatcher loads whatever artifacts are already in dir and starts
// watching for rewrites. A missing or incomplete artifact set is tolerated;
// the server simply reports unhealthy until a training run completes.
func NewModelWatcher(dir string, logger *zap.Logger) (*ModelWatcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	pipeline, err := LoadPipeline(dir)
	if err != nil {
		logger.Warn("no model loaded at startup", zap.String("dir", dir), zap.Error(err))
	} else {
		SetPipeline(pipeline)
		logger.Info("model loaded",
			zap.String("dir", dir),
			zap.String("model_type", pipeline.Manifest.ModelType))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	mw := &ModelWatcher{
		dir:     dir,
		watcher: watcher,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go mw.loop()
	return mw, nil
}

func (mw *ModelWatcher) loop() {
	var pending *time.Timer
	var pendingC <-chan time.Time
	for {
		select {
		case <-mw.done:
			return
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if !mw.relevant(event) {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(reloadDebounce)
				pendingC = pending.C
			} else {
				pending.Reset(reloadDebounce)
			}
		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Warn("model watcher error", zap.Error(err))
		case <-pendingC:
			pending = nil
			pendingC = nil
			mw.reload()
		}
	}
}

// relevant reports whether an event touches an artifact the pipeline loads.
// The manifest is written last, so a rewrite of it signals a complete set.
func (mw *ModelWatcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Base(event.Name) {
	case train.ManifestFile, train.ModelFile, train.ScalerFile, train.TokenizerFile:
		return true
	}
	return false
}

func (mw *ModelWatcher) reload() {
	pipeline, err := LoadPipeline(mw.dir)
	if err != nil {
		mw.logger.Warn("model reload failed", zap.String("dir", mw.dir), zap.Error(err))
		return
	}
	SetPipeline(pipeline)
	mw.logger.Info("model reloaded",
		zap.String("dir", mw.dir),
		zap.String("model_type", pipeline.Manifest.ModelType))
}

// Stop ends the watch loop and releases the underlying watcher.
func (mw *ModelWatcher) Stop() {
	close(mw.done)
	mw.watcher.Close()
}
