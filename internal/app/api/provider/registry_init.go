package provider

import (
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"media-transcribe/internal/app/api"
	"media-transcribe/internal/app/errors"
	"media-transcribe/internal/config"
)

// EngineCreator builds an engine from the run configuration.
type EngineCreator func(cfg *config.Config, logger *zap.Logger) (api.Engine, error)

// engineRegistry stores engine creation functions
var (
	engineRegistry = make(map[string]EngineCreator)
	registryMutex  sync.RWMutex
)

// RegisterEngine registers an engine creator under name. Engines register
// themselves from init.
func RegisterEngine(name string, creator EngineCreator) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	engineRegistry[name] = creator
}

// GetEngineCreator returns the creator function for an engine name
func GetEngineCreator(name string) (EngineCreator, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	creator, ok := engineRegistry[name]
	if !ok {
		return nil, errors.Ef(errors.KindConfig, nil, "engine %s not registered (available: %v)", name, listLocked())
	}
	return creator, nil
}

// NewEngine creates the engine named by cfg.Engine.
func NewEngine(cfg *config.Config, logger *zap.Logger) (api.Engine, error) {
	creator, err := GetEngineCreator(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return creator(cfg, logger)
}

// ListRegisteredEngines returns all registered engine names, sorted.
func ListRegisteredEngines() []string {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	return listLocked()
}

func listLocked() []string {
	names := lo.Keys(engineRegistry)
	sort.Strings(names)
	return names
}
