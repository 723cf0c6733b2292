package sourcemanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanatsumi/rakuyomi/config"
	"github.com/hanatsumi/rakuyomi/rerr"
)

func TestManager_Get_Missing_ReturnsFalse(t *testing.T) {
	m := New(t.TempDir(), config.New())

	_, ok := m.Get("missing")

	assert.False(t, ok)
}

func TestManager_List_Empty(t *testing.T) {
	m := New(t.TempDir(), config.New())

	assert.Empty(t, m.List())
}

func TestManager_Uninstall_Missing_ReturnsNotFound(t *testing.T) {
	m := New(t.TempDir(), config.New())

	err := m.Uninstall(context.Background(), "missing")

	assert.Error(t, err)
	assert.Equal(t, rerr.NotFound, rerr.KindOf(err))
}

func TestManager_Discover_MissingDirectory_ReturnsNotFound(t *testing.T) {
	m := New(t.TempDir()+"/does-not-exist", config.New())

	errs := m.Discover(context.Background())

	assert.Len(t, errs, 1)
	assert.Equal(t, rerr.NotFound, rerr.KindOf(errs[0]))
}

func TestManager_Discover_EmptyDirectory_ReturnsNoErrors(t *testing.T) {
	m := New(t.TempDir(), config.New())

	errs := m.Discover(context.Background())

	assert.Empty(t, errs)
}

func TestManager_UpdateSettings_NothingInstalled_IsANoop(t *testing.T) {
	m := New(t.TempDir(), config.New())

	errs := m.UpdateSettings(context.Background())

	assert.Empty(t, errs)
}
