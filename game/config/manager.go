package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/notehunt/game/engine"
	"github.com/wricardo/notehunt/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
	ErrReadOnly       = errors.New("configuration store is read-only")
	ErrInvalidName    = errors.New("invalid configuration name")
)

// DefaultName is the configuration preferred as the default
const DefaultName = "classic"

// Manager handles game configuration loading and caching
type Manager struct {
	fsys          fs.FS
	configDir     string // empty when the store is read-only
	defaultConfig *engine.GameConfig
	configs       map[string]*engine.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a configuration manager backed by a directory on disk
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := newManager(os.DirFS(configDir))
	m.configDir = configDir
	m.loadDefaultConfig()
	return m, nil
}

// NewEmbeddedManager creates a read-only manager over fsys, typically the
// configurations compiled into the binary
func NewEmbeddedManager(fsys fs.FS) *Manager {
	m := newManager(fsys)
	m.loadDefaultConfig()
	return m
}

func newManager(fsys fs.FS) *Manager {
	return &Manager{
		fsys:    fsys,
		configs: make(map[string]*engine.GameConfig),
	}
}

func configName(name string) (string, error) {
	name = strings.TrimSuffix(name, ".json")
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name, nil
}

// LoadConfig loads a configuration by name
func (m *Manager) LoadConfig(name string) (*engine.GameConfig, error) {
	name, err := configName(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	data, err := fs.ReadFile(m.fsys, path.Join(".", name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrConfigNotFound)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
	}

	m.configs[name] = &config
	return &config, nil
}

// ListConfigs returns information about all valid configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	configs := []*service.ConfigInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")
		config, err := m.LoadConfig(name)
		if err != nil {
			log.Warn().Err(err).Str("file", entry.Name()).Msg("skipping invalid config")
			continue
		}

		configs = append(configs, &service.ConfigInfo{
			Filename:    entry.Name(),
			ConfigID:    name,
			Name:        config.Name,
			Description: config.Description,
			GridSize:    config.GridSize,
			NoteCount:   config.NoteCount,
		})
	}

	return configs, nil
}

// GetDefault returns the default configuration
func (m *Manager) GetDefault() *engine.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// Resolve loads ref as a configuration file when it names a .json path, the
// default configuration when it is empty, and by name otherwise
func (m *Manager) Resolve(ref string) (*engine.GameConfig, error) {
	switch {
	case ref == "":
		return m.GetDefault(), nil
	case strings.HasSuffix(ref, ".json") || strings.ContainsRune(ref, os.PathSeparator):
		return engine.LoadGameConfig(ref)
	default:
		return m.LoadConfig(ref)
	}
}

// RefreshCache drops every cached configuration and reselects the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.GameConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// ReadOnly reports whether SaveConfig is unavailable
func (m *Manager) ReadOnly() bool {
	return m.configDir == ""
}

// loadDefaultConfig prefers classic, then the first valid file, then the
// built-in configuration
func (m *Manager) loadDefaultConfig() {
	config, err := m.LoadConfig(DefaultName)
	if err != nil {
		config = engine.DefaultConfig()
		if configs, listErr := m.ListConfigs(); listErr == nil && len(configs) > 0 {
			if first, loadErr := m.LoadConfig(configs[0].ConfigID); loadErr == nil {
				config = first
			}
		}
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig saves a configuration to disk
func (m *Manager) SaveConfig(name string, config *engine.GameConfig) error {
	if m.ReadOnly() {
		return ErrReadOnly
	}

	name, err := configName(name)
	if err != nil {
		return err
	}

	// Validate config before saving
	if err := engine.ValidateGameConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	configPath := filepath.Join(m.configDir, name+".json")
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	log.Info().Str("config", name).Str("path", configPath).Msg("config saved")
	return nil
}
