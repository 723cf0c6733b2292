// Package sourcemanager tracks which source archives are installed,
// loads them into source.Source instances, and rebuilds them whenever
// settings that affect every source (languages, per-source values)
// change.
package sourcemanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/rerr"
	"github.com/hanatsumi/rakuyomi/source"
	"github.com/hanatsumi/rakuyomi/wasmhost"
)

// Manager owns every installed source, keyed by its manifest id.
type Manager struct {
	mu          sync.RWMutex
	sourcesDir  string
	settings    wasmhost.Settings
	loaded      map[string]*source.Source
	archivePath map[string]string
}

func New(sourcesDir string, settings wasmhost.Settings) *Manager {
	return &Manager{
		sourcesDir:  sourcesDir,
		settings:    settings,
		loaded:      make(map[string]*source.Source),
		archivePath: make(map[string]string),
	}
}

// Discover scans sourcesDir for .aix archives and loads each one that
// isn't already loaded. It does not fail the whole scan if one archive
// is broken; that archive is skipped and its error returned alongside
// the ones that succeeded.
func (m *Manager) Discover(ctx context.Context) []error {
	entries, err := os.ReadDir(m.sourcesDir)
	if err != nil {
		return []error{rerr.New(rerr.NotFound, err)}
	}

	var errs []error
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".aix") {
			continue
		}
		path := filepath.Join(m.sourcesDir, entry.Name())
		if err := m.Install(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Install loads the archive at path and registers it under its
// manifest id, replacing any previously loaded source with that id.
func (m *Manager) Install(ctx context.Context, archivePath string) error {
	src, err := source.Load(ctx, archivePath, m.settings)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.loaded[src.Manifest.Id]; ok {
		_ = old.Close(ctx)
	}
	m.loaded[src.Manifest.Id] = src
	m.archivePath[src.Manifest.Id] = archivePath
	return nil
}

// Uninstall closes and forgets the source with the given id, and
// removes its archive from disk.
func (m *Manager) Uninstall(ctx context.Context, sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.loaded[sourceID]
	if !ok {
		return rerr.Newf(rerr.NotFound, "source %s is not installed", sourceID)
	}
	_ = src.Close(ctx)
	delete(m.loaded, sourceID)

	path, ok := m.archivePath[sourceID]
	delete(m.archivePath, sourceID)
	if ok {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return rerr.New(rerr.Other, err)
		}
	}
	return nil
}

// Get resolves an installed source by its manifest id.
func (m *Manager) Get(sourceID string) (*source.Source, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	src, ok := m.loaded[sourceID]
	return src, ok
}

// List returns every installed source's manifest, sorted by id. It
// returns manifests rather than *source.Source so callers can't be
// tempted to copy a Source, which embeds a mutex.
func (m *Manager) List() []model.SourceManifest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.SourceManifest, 0, len(m.loaded))
	for _, src := range m.loaded {
		out = append(out, src.Manifest)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// UpdateSettings reloads every installed source from its archive on
// disk, so that each one's host environment picks up the new settings
// on its next call. Sources have no "settings changed" callback of
// their own; rebuilding is how the original handles this too, since a
// source only ever reads defaults.get at the moment it needs a value.
func (m *Manager) UpdateSettings(ctx context.Context) []error {
	m.mu.Lock()
	paths := make(map[string]string, len(m.archivePath))
	for id, path := range m.archivePath {
		paths[id] = path
	}
	m.mu.Unlock()

	var errs []error
	for id, path := range paths {
		if err := m.Install(ctx, path); err != nil {
			errs = append(errs, rerr.New(rerr.Other, fmt.Errorf("reloading %s: %w", id, err)))
		}
	}
	return errs
}

// Close shuts down every loaded source.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, src := range m.loaded {
		_ = src.Close(ctx)
	}
	m.loaded = make(map[string]*source.Source)
}
