package config

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Client setting keys.
const (
	APIBaseURLKey        = "API_BASE_URL"
	APITimeoutKey        = "API_TIMEOUT_MS"
	ItemsPerPageKey      = "UI_ITEMS_PER_PAGE"
	LowStockThresholdKey = "INVENTORY_LOW_STOCK_THRESHOLD"
	ThemeKey             = "UI_THEME"
	AppVersionKey        = "APP_VERSION"
	AppNameKey           = "APP_NAME"

	// DefaultSettingsFile is where the client keeps its settings unless told otherwise.
	DefaultSettingsFile = "inventory.env"
)

// Client setting defaults.
const (
	DefaultAPIBaseURL        = "http://localhost:8000"
	DefaultAPITimeoutMS      = 30000
	DefaultItemsPerPage      = 20
	DefaultLowStockThreshold = 10
	DefaultTheme             = "light"
	DefaultAppVersion        = "1.0.0"
	DefaultAppName           = "Inventory Management System"
)

// ErrInvalidSetting is returned when a numeric setting does not parse.
var ErrInvalidSetting = errors.New("invalid setting")

var numericSettings = []string{APITimeoutKey, ItemsPerPageKey, LowStockThresholdKey}

func defaultSettings() map[string]string {
	return map[string]string{
		APIBaseURLKey:        DefaultAPIBaseURL,
		APITimeoutKey:        strconv.Itoa(DefaultAPITimeoutMS),
		ItemsPerPageKey:      strconv.Itoa(DefaultItemsPerPage),
		LowStockThresholdKey: strconv.Itoa(DefaultLowStockThreshold),
		ThemeKey:             DefaultTheme,
		AppVersionKey:        DefaultAppVersion,
		AppNameKey:           DefaultAppName,
	}
}

// Settings is the client's key-value configuration, persisted as a dotenv file.
// It is loaded once at startup and written back only on Save.
type Settings struct {
	path   string
	mu     sync.RWMutex
	values map[string]string
}

// NewSettings returns settings holding the defaults, bound to the file at path.
func NewSettings(path string) *Settings {
	if path == "" {
		path = DefaultSettingsFile
	}
	return &Settings{
		path:   path,
		values: defaultSettings(),
	}
}

// Path is the backing file.
func (s *Settings) Path() string {
	return s.path
}

// Load applies defaults, overlays the settings file and validates the result.
// A missing file is created from the defaults.
func (s *Settings) Load() error {
	values := defaultSettings()

	if s.FileExists() {
		fromFile, err := godotenv.Read(s.path)
		if err != nil {
			return fmt.Errorf("failed to read settings file %s: %w", s.path, err)
		}
		maps.Copy(values, fromFile)
		slog.Info("settings loaded", slog.String("path", s.path))
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()

	if !s.FileExists() {
		slog.Info("no settings file found, writing defaults", slog.String("path", s.path))
		if err := s.Save(); err != nil {
			return err
		}
	}

	return s.Validate()
}

// Validate checks that numeric settings parse; a malformed base URL is only reported.
func (s *Settings) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	baseURL := s.values[APIBaseURLKey]
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		slog.Warn("invalid API base URL format", slog.String("url", baseURL))
	}

	for _, key := range numericSettings {
		value := s.values[key]
		if _, err := strconv.Atoi(value); err != nil {
			slog.Error("settings validation failed", slog.String("key", key), slog.String("value", value))
			return fmt.Errorf("%w %s=%q: %v", ErrInvalidSetting, key, value, err)
		}
	}
	return nil
}

// Save writes every setting to the backing file.
func (s *Settings) Save() error {
	values := s.All()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}
	if err := godotenv.Write(values, s.path); err != nil {
		return fmt.Errorf("failed to save settings to %s: %w", s.path, err)
	}
	slog.Info("settings saved", slog.String("path", s.path))
	return nil
}

// ResetToDefaults discards every setting, restores the defaults and saves them.
func (s *Settings) ResetToDefaults() error {
	slog.Info("resetting settings to defaults")
	s.mu.Lock()
	s.values = defaultSettings()
	s.mu.Unlock()
	return s.Save()
}

// FileExists reports whether the backing file is present.
func (s *Settings) FileExists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Get returns the value for key, or def when it is not set.
func (s *Settings) Get(key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// Set stores value under key. It is not persisted until Save.
func (s *Settings) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	slog.Debug("setting changed", slog.String("key", key), slog.String("value", value))
}

// Int returns key parsed as an integer, or def when missing or malformed.
func (s *Settings) Int(key string, def int) int {
	v, err := strconv.Atoi(s.Get(key, ""))
	if err != nil {
		return def
	}
	return v
}

// All returns a copy of every setting.
func (s *Settings) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.values)
}

func (s *Settings) APIBaseURL() string {
	return s.Get(APIBaseURLKey, DefaultAPIBaseURL)
}

func (s *Settings) SetAPIBaseURL(url string) {
	s.Set(APIBaseURLKey, url)
}

// APITimeout is the per-request transport timeout.
func (s *Settings) APITimeout() time.Duration {
	return time.Duration(s.Int(APITimeoutKey, DefaultAPITimeoutMS)) * time.Millisecond
}

func (s *Settings) SetAPITimeout(d time.Duration) {
	s.Set(APITimeoutKey, strconv.FormatInt(d.Milliseconds(), 10))
}

func (s *Settings) ItemsPerPage() int {
	return s.Int(ItemsPerPageKey, DefaultItemsPerPage)
}

func (s *Settings) SetItemsPerPage(n int) {
	s.Set(ItemsPerPageKey, strconv.Itoa(n))
}

func (s *Settings) LowStockThreshold() int {
	return s.Int(LowStockThresholdKey, DefaultLowStockThreshold)
}

func (s *Settings) SetLowStockThreshold(n int) {
	s.Set(LowStockThresholdKey, strconv.Itoa(n))
}

func (s *Settings) Theme() string {
	return s.Get(ThemeKey, DefaultTheme)
}

func (s *Settings) SetTheme(theme string) {
	s.Set(ThemeKey, theme)
}

func (s *Settings) AppVersion() string {
	return s.Get(AppVersionKey, DefaultAppVersion)
}

func (s *Settings) AppName() string {
	return s.Get(AppNameKey, DefaultAppName)
}
