package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/interstellar-mission/game/engine"
	"github.com/wricardo/interstellar-mission/game/service"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// supportedExts lists universe file extensions in lookup order.
var supportedExts = []string{".json", ".yaml", ".yml"}

// DefaultConfigID is loaded as the default universe when present.
const DefaultConfigID = "classic"

// Manager handles universe configuration loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.UniverseConfig
	configs       map[string]*engine.UniverseConfig
	logger        *zap.Logger
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string, logger *zap.Logger) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.UniverseConfig),
		logger:    logger,
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// configID strips a supported extension from a file or config name
func configID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range supportedExts {
		if ext == e {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

// resolvePath finds the file backing a config name
func (m *Manager) resolvePath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q is not a plain config name", ErrInvalidConfig, name)
	}

	if id := configID(name); id != name {
		path := filepath.Join(m.configDir, name)
		if _, err := os.Stat(path); err != nil {
			return "", ErrConfigNotFound
		}
		return path, nil
	}

	for _, ext := range supportedExts {
		path := filepath.Join(m.configDir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// LoadConfig loads a configuration by name, with or without extension
func (m *Manager) LoadConfig(name string) (*engine.UniverseConfig, error) {
	id := configID(name)

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	// Load from file
	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	return m.loadLocked(name)
}

func (m *Manager) loadLocked(name string) (*engine.UniverseConfig, error) {
	path, err := m.resolvePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.DecodeUniverseConfig(data, engine.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[configID(name)] = config
	return config, nil
}

// ListConfigs returns information about all available configurations
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var configs []*service.ConfigInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id := configID(entry.Name())
		if id == entry.Name() || seen[id] {
			continue
		}

		config, err := m.LoadConfig(entry.Name())
		if err != nil {
			m.logger.Warn("skipping invalid universe",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}
		seen[id] = true

		configs = append(configs, service.NewConfigInfo(id, entry.Name(), config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// GetDefault returns the default configuration and its identifier
func (m *Manager) GetDefault() (string, *engine.UniverseConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultConfig
}

// SetDefault sets the default configuration by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = configID(name)
	m.defaultConfig = config
	return nil
}

// RefreshCache reloads all cached configurations from disk
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.UniverseConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// loadDefaultConfig loads the default configuration
func (m *Manager) loadDefaultConfig() error {
	id := DefaultConfigID
	config, err := m.LoadConfig(id)
	if err != nil {
		// Try to load the first available config
		configs, listErr := m.ListConfigs()
		if listErr != nil || len(configs) == 0 {
			m.setDefault("default", createMinimalConfig())
			return nil
		}

		id = configs[0].ConfigID
		config, err = m.LoadConfig(configs[0].Filename)
		if err != nil {
			m.setDefault("default", createMinimalConfig())
			return nil
		}
	}

	m.setDefault(id, config)
	return nil
}

func (m *Manager) setDefault(id string, config *engine.UniverseConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	m.defaultConfig = config
}

// SaveConfig saves a configuration to disk. The extension picks the encoding;
// names without one are written as JSON.
func (m *Manager) SaveConfig(name string, config *engine.UniverseConfig) error {
	if err := engine.ValidateUniverseConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q is not a plain config name", ErrInvalidConfig, name)
	}

	filename := name
	if configID(name) == name {
		filename = name + ".json"
	}
	configPath := filepath.Join(m.configDir, filename)

	data, err := engine.EncodeUniverseConfig(config, engine.FormatFromPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[configID(name)] = config
	m.mu.Unlock()

	m.logger.Info("universe saved", zap.String("config_id", configID(name)), zap.String("file", filename))
	return nil
}

// createMinimalConfig creates a minimal valid universe
func createMinimalConfig() *engine.UniverseConfig {
	return &engine.UniverseConfig{
		Name:          "default",
		Description:   "Default minimal universe",
		Rows:          5,
		Cols:          5,
		Origin:        engine.Coord{Row: 0, Col: 0},
		Destination:   engine.Coord{Row: 4, Col: 4},
		InitialEnergy: 20,
		Costs: [][]int{
			{0, 1, 1, 2, 1},
			{1, 3, 1, 1, 1},
			{1, 1, 2, 1, 3},
			{2, 1, 1, 1, 1},
			{1, 1, 3, 1, 0},
		},
		BlackHoles:     []engine.Coord{{Row: 2, Col: 2}},
		Stars:          []engine.Coord{{Row: 1, Col: 2}},
		Wormholes:      []engine.Wormhole{{Entrance: engine.Coord{Row: 0, Col: 3}, Exit: engine.Coord{Row: 3, Col: 3}}},
		RechargeZones:  []engine.RechargeZone{{At: engine.Coord{Row: 2, Col: 0}, Factor: 2}},
		AdmissionGates: []engine.AdmissionGate{{At: engine.Coord{Row: 4, Col: 2}, MinEnergy: 10}},
	}
}
