// Package wasmhost wires the Value Store, Memory Bridge, and the Aidoku
// host import modules (env, std, aidoku, html, json, net, defaults) into a
// wazero runtime, giving a loaded source module everything it needs to
// call back into the host.
package wasmhost

import (
	"context"
	"net/http"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/model"
	"github.com/hanatsumi/rakuyomi/value"
)

// Settings is the per-source configuration the defaults module reads and
// (nominally) writes: global languages/storage limits plus this source's
// own key-value settings, both sourced from config.Settings but kept as
// a narrow interface here so wasmhost doesn't import the config package
// directly.
type Settings interface {
	Languages() []string
	SourceSetting(sourceID, key string) (value.Value, bool)
}

// Host owns one source's Value Store and logging identity and exposes the
// host import modules a wazero module instantiation links against.
type Host struct {
	SourceID   string
	Store      *value.Store
	Settings   Settings
	HTTPClient *http.Client

	logs     []string
	requests *requestTable
	context  OperationContext
}

func New(sourceID string, settings Settings) *Host {
	return &Host{
		SourceID:   sourceID,
		Store:      value.NewStore(),
		Settings:   settings,
		HTTPClient: http.DefaultClient,
	}
}

// Logs returns every line the guest has printed via env.print since the
// host was created, in order. Used to surface guest diagnostics to the
// operator when a source call fails.
func (h *Host) Logs() []string {
	return h.logs
}

func (h *Host) log(line string) {
	h.logs = append(h.logs, line)
}

// Instantiate builds every host module this package implements and
// registers them on runtime, ready for a guest module to import from.
func (h *Host) Instantiate(ctx context.Context, runtime wazero.Runtime) error {
	builders := []func(context.Context, wazero.Runtime) error{
		h.instantiateEnv,
		h.instantiateStd,
		h.instantiateAidoku,
		h.instantiateHTML,
		h.instantiateJSON,
		h.instantiateNet,
		h.instantiateDefaults,
	}
	for _, build := range builders {
		if err := build(ctx, runtime); err != nil {
			return err
		}
	}
	return nil
}

func mustMemory(mod api.Module) api.Memory {
	mem := mod.Memory()
	if mem == nil {
		panic("wasmhost: guest module exports no memory")
	}
	return mem
}

func identifierOf(h *Host, mangaID string) model.MangaId {
	return model.NewMangaId(model.NewSourceId(h.SourceID), mangaID)
}
