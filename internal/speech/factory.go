package speech

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"vapajomi/internal/models"
)

// Opener loads an engine from a model directory.
type Opener func(modelPath string) (Engine, error)

func openVosk(modelPath string) (Engine, error) {
	return NewVoskEngine(modelPath)
}

// Factory owns the current engine and swaps it when the model changes.
type Factory struct {
	manager *models.Manager
	open    Opener

	mu      sync.RWMutex
	current Engine
	modelID string
}

// NewFactory creates a factory. A nil opener loads Vosk models.
func NewFactory(manager *models.Manager, open Opener) *Factory {
	if open == nil {
		open = openVosk
	}
	return &Factory{manager: manager, open: open}
}

// Create loads a fresh engine for the model without installing it.
func (f *Factory) Create(modelID string) (Engine, error) {
	info, ok := models.Get(modelID)
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelID)
	}
	if !f.manager.IsDownloaded(info) {
		return nil, fmt.Errorf("model %s is not downloaded", info.ID)
	}

	engine, err := f.open(f.manager.Path(info))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", info.ID, err)
	}
	return engine, nil
}

// Load installs the model as current, closing the previous engine.
func (f *Factory) Load(modelID string) error {
	engine, err := f.Create(modelID)
	if err != nil {
		return err
	}

	if old := f.install(engine, modelID); old != nil {
		old.Close()
	}
	log.Info("speech engine loaded", "engine", engine.Name(), "model", modelID)
	return nil
}

// Swap is Load with the old engine closed in the background, so an
// in-flight transcription can finish first.
func (f *Factory) Swap(modelID string) error {
	engine, err := f.Create(modelID)
	if err != nil {
		return err
	}

	if old := f.install(engine, modelID); old != nil {
		go old.Close()
	}
	log.Info("speech engine swapped", "model", modelID)
	return nil
}

func (f *Factory) install(engine Engine, modelID string) Engine {
	f.mu.Lock()
	defer f.mu.Unlock()
	old := f.current
	f.current = engine
	f.modelID = modelID
	return old
}

// Current returns the installed engine or nil.
func (f *Factory) Current() Engine {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.current
}

// CurrentModelID returns the installed model ID.
func (f *Factory) CurrentModelID() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.modelID
}

// IsLoaded reports whether an engine is installed.
func (f *Factory) IsLoaded() bool {
	return f.Current() != nil
}

// Close closes the installed engine.
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current != nil {
		f.current.Close()
		f.current = nil
		f.modelID = ""
	}
}
