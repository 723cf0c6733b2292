// Package config resolves the application's data directory and the
// Settings a source reads through the defaults host module: tracked
// languages, the chapter storage size limit, and per-source key/value
// settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/hanatsumi/rakuyomi/value"
)

// StorageSizeLimit is a size expressed the way the source settings UI
// lets a user type it: a float followed by "GB" or "MB".
type StorageSizeLimit struct {
	Bytes int64
}

var storageSizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*(GB|MB)\s*$`)

// ParseStorageSizeLimit parses strings like "2 GB" or "512MB", matching
// the original settings schema's accepted format.
func ParseStorageSizeLimit(s string) (StorageSizeLimit, error) {
	matches := storageSizePattern.FindStringSubmatch(s)
	if matches == nil {
		return StorageSizeLimit{}, fmt.Errorf("config: %q is not a valid storage size (expected e.g. \"2 GB\")", s)
	}
	amount, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return StorageSizeLimit{}, err
	}

	var unit int64
	switch strings.ToUpper(matches[2]) {
	case "GB":
		unit = 1 << 30
	case "MB":
		unit = 1 << 20
	}

	return StorageSizeLimit{Bytes: int64(amount * float64(unit))}, nil
}

// DefaultStorageSizeLimit is used when nothing else is configured.
func DefaultStorageSizeLimit() StorageSizeLimit {
	return StorageSizeLimit{Bytes: 2 << 30} // 2 GB
}

// Settings is the full set of values that affect how sources behave:
// which languages are shown, how much local storage chapters are
// allowed to use, and each source's own settings, keyed by
// "sourceID.settingKey".
type Settings struct {
	LanguageList      []string
	Storage           StorageSizeLimit
	PerSourceSettings map[string]value.Value
}

func New() *Settings {
	return &Settings{
		LanguageList:      []string{"en"},
		Storage:           DefaultStorageSizeLimit(),
		PerSourceSettings: make(map[string]value.Value),
	}
}

func (s *Settings) Languages() []string {
	return s.LanguageList
}

func (s *Settings) SourceSetting(sourceID, key string) (value.Value, bool) {
	v, ok := s.PerSourceSettings[sourceID+"."+key]
	return v, ok
}

func (s *Settings) SetSourceSetting(sourceID, key string, v value.Value) {
	s.PerSourceSettings[sourceID+"."+key] = v
}

// DataDir resolves the application's data directory: the
// RAKUYOMI_DATA_DIR environment variable if set, otherwise
// $XDG_DATA_HOME/rakuyomi (or ~/.local/share/rakuyomi if XDG_DATA_HOME
// is unset), creating it if necessary.
func DataDir() (string, error) {
	if dir := os.Getenv("RAKUYOMI_DATA_DIR"); dir != "" {
		return ensureDir(dir)
	}

	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("config: resolving home directory: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}

	return ensureDir(filepath.Join(base, "rakuyomi"))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("config: creating data directory %s: %w", dir, err)
	}
	return dir, nil
}
