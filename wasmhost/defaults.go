package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

func (h *Host) storeStringArray(items []string) int32 {
	values := make([]value.Value, len(items))
	for i, item := range items {
		values[i] = value.String(item)
	}
	return int32(h.Store.Store(value.Array(values)))
}

// instantiateDefaults registers the defaults module. get special-cases
// the "languages" key to return the global setting rather than a
// per-source one, matching wasm_imports/defaults.rs's get(). set is
// accepted but never persists anything: the original logs the call and
// returns Ok(()) without writing the value back anywhere, and sources
// are not expected to rely on a round trip through it.
func (h *Host) instantiateDefaults(ctx context.Context, runtime wazero.Runtime) error {
	builder := runtime.NewHostModuleBuilder("defaults")
	builder.NewFunctionBuilder().WithFunc(h.defaultsGet).Export("get")
	builder.NewFunctionBuilder().WithFunc(h.defaultsSet).Export("set")
	_, err := builder.Instantiate(ctx)
	return err
}

func (h *Host) defaultsGet(ctx context.Context, mod api.Module, keyPtr, keyLen uint32) int32 {
	key, err := memory.ReadString(mustMemory(mod), keyPtr, keyLen)
	if err != nil {
		return memory.Absent
	}

	if key == "languages" && h.Settings != nil {
		return h.storeStringArray(h.Settings.Languages())
	}

	if h.Settings == nil {
		return memory.Absent
	}
	v, ok := h.Settings.SourceSetting(h.SourceID, key)
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(v))
}

func (h *Host) defaultsSet(ctx context.Context, mod api.Module, keyPtr, keyLen uint32, valueHandle int32) int32 {
	key, err := memory.ReadString(mustMemory(mod), keyPtr, keyLen)
	if err != nil {
		return memory.Absent
	}
	h.log(h.SourceID + ": defaults.set: " + key + " (not persisted)")
	return 0
}
