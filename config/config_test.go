package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanatsumi/rakuyomi/value"
)

func TestParseStorageSizeLimit(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"2 GB", 2 << 30},
		{"2GB", 2 << 30},
		{"512 MB", 512 << 20},
		{"0.5 GB", int64(0.5 * float64(1<<30))},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStorageSizeLimit(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got.Bytes)
		})
	}
}

func TestParseStorageSizeLimit_Invalid(t *testing.T) {
	_, err := ParseStorageSizeLimit("not a size")
	assert.Error(t, err)
}

func TestSettings_SourceSetting(t *testing.T) {
	s := New()
	s.SetSourceSetting("mangadex", "showDataSaver", value.Bool(true))

	v, ok := s.SourceSetting("mangadex", "showDataSaver")
	assert.True(t, ok)
	assert.Equal(t, value.Bool(true), v)

	_, ok = s.SourceSetting("mangadex", "missing")
	assert.False(t, ok)
}
