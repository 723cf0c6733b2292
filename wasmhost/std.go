package wasmhost

import (
	"context"
	"strconv"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

// instantiateStd registers the std module: the Value Store's guest-facing
// surface (create/destroy/copy, typeof, and per-kind accessors).
func (h *Host) instantiateStd(ctx context.Context, runtime wazero.Runtime) error {
	builder := runtime.NewHostModuleBuilder("std")

	builder.NewFunctionBuilder().WithFunc(h.stdDestroy).Export("destroy")
	builder.NewFunctionBuilder().WithFunc(h.stdCopy).Export("copy")
	builder.NewFunctionBuilder().WithFunc(h.stdTypeof).Export("typeof")

	builder.NewFunctionBuilder().WithFunc(h.stdCreateNull).Export("create_null")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateInt).Export("create_int")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateFloat).Export("create_float")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateBool).Export("create_bool")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateString).Export("create_string")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateArray).Export("create_array")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateObject).Export("create_object")
	builder.NewFunctionBuilder().WithFunc(h.stdCreateDate).Export("create_date")

	builder.NewFunctionBuilder().WithFunc(h.stdStringLen).Export("string_len")
	builder.NewFunctionBuilder().WithFunc(h.stdReadString).Export("read_string")
	builder.NewFunctionBuilder().WithFunc(h.stdReadInt).Export("read_int")
	builder.NewFunctionBuilder().WithFunc(h.stdReadFloat).Export("read_float")
	builder.NewFunctionBuilder().WithFunc(h.stdReadBool).Export("read_bool")
	builder.NewFunctionBuilder().WithFunc(h.stdReadDate).Export("read_date")
	builder.NewFunctionBuilder().WithFunc(h.stdReadDateString).Export("read_date_string")

	builder.NewFunctionBuilder().WithFunc(h.stdObjectLen).Export("object_len")
	builder.NewFunctionBuilder().WithFunc(h.stdObjectGet).Export("object_get")
	builder.NewFunctionBuilder().WithFunc(h.stdObjectSet).Export("object_set")
	builder.NewFunctionBuilder().WithFunc(h.stdObjectRemove).Export("object_remove")
	builder.NewFunctionBuilder().WithFunc(h.stdObjectKeys).Export("object_keys")
	builder.NewFunctionBuilder().WithFunc(h.stdObjectValues).Export("object_values")

	builder.NewFunctionBuilder().WithFunc(h.stdArrayLen).Export("array_len")
	builder.NewFunctionBuilder().WithFunc(h.stdArrayGet).Export("array_get")
	builder.NewFunctionBuilder().WithFunc(h.stdArraySet).Export("array_set")
	builder.NewFunctionBuilder().WithFunc(h.stdArrayAppend).Export("array_append")
	builder.NewFunctionBuilder().WithFunc(h.stdArrayRemove).Export("array_remove")

	_, err := builder.Instantiate(ctx)
	return err
}

func (h *Host) stdDestroy(ctx context.Context, handle int32) {
	h.Store.Remove(value.Handle(handle))
}

// stdCopy implements std.copy's deep-clone contract: the returned handle
// is independent of the source, see DESIGN.md's Open Question decision
// on copy-on-write vs. independent ownership.
func (h *Host) stdCopy(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(v.Clone()))
}

func (h *Host) stdTypeof(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return memory.Absent
	}
	return v.Kind.TypeTag()
}

func (h *Host) stdCreateNull(ctx context.Context) int32 {
	return int32(h.Store.Store(value.Null()))
}

func (h *Host) stdCreateInt(ctx context.Context, v int64) int32 {
	return int32(h.Store.Store(value.Int(v)))
}

func (h *Host) stdCreateFloat(ctx context.Context, v float64) int32 {
	return int32(h.Store.Store(value.Float(v)))
}

func (h *Host) stdCreateBool(ctx context.Context, v int32) int32 {
	return int32(h.Store.Store(value.Bool(v != 0)))
}

func (h *Host) stdCreateString(ctx context.Context, mod api.Module, ptr, length uint32) int32 {
	s, err := memory.ReadString(mustMemory(mod), ptr, length)
	if err != nil {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(s)))
}

func (h *Host) stdCreateArray(ctx context.Context) int32 {
	return int32(h.Store.Store(value.Array(nil)))
}

func (h *Host) stdCreateObject(ctx context.Context) int32 {
	return int32(h.Store.Store(value.Object(value.ValueMapObject(map[string]value.Value{}))))
}

// stdCreateDate takes seconds since the Unix epoch, matching the
// original's f64 timestamp convention.
func (h *Host) stdCreateDate(ctx context.Context, secondsSinceEpoch float64) int32 {
	t := secondsToTime(secondsSinceEpoch)
	return int32(h.Store.Store(value.Date(t)))
}

// stdReadInt coerces whatever handle holds into an int, matching the
// original's permissive read_int: bools become 0/1, floats truncate,
// strings parse (defaulting to 0), anything else is 0.
func (h *Host) stdReadInt(ctx context.Context, handle int32) int64 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return 0
	}
	switch v.Kind {
	case value.KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case value.KindInt:
		return v.Int
	case value.KindFloat:
		return int64(v.Float)
	case value.KindString:
		n, err := strconv.ParseInt(v.Str, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// stdReadFloat mirrors stdReadInt's permissiveness, defaulting to -1
// rather than 0 for values it can't coerce, matching the original.
func (h *Host) stdReadFloat(ctx context.Context, handle int32) float64 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return -1
	}
	switch v.Kind {
	case value.KindInt:
		return float64(v.Int)
	case value.KindFloat:
		return v.Float
	case value.KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return -1
		}
		return f
	default:
		return -1
	}
}

func (h *Host) stdReadBool(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok {
		return 0
	}
	switch v.Kind {
	case value.KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case value.KindInt:
		if v.Int != 0 {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// stdReadDate returns a Date value as seconds since the epoch, or 0 if
// handle isn't a Date.
func (h *Host) stdReadDate(ctx context.Context, handle int32) float64 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindDate {
		return 0
	}
	return timeToSeconds(v.Date)
}

// stdReadDateString parses a String value against a strptime-style format
// (converted from the guest's Swift dateFormat convention) and an
// optional IANA timezone name, returning the parsed instant as seconds
// since the epoch, or -1 on any failure.
func (h *Host) stdReadDateString(ctx context.Context, mod api.Module, handle int32, formatPtr, formatLen, _localePtr, _localeLen, tzPtr, tzLen uint32) float64 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindString {
		return -1
	}
	mem := mustMemory(mod)
	format, err := memory.ReadString(mem, formatPtr, formatLen)
	if err != nil {
		return -1
	}
	loc := time.UTC
	if tzLen > 0 {
		tzName, err := memory.ReadString(mem, tzPtr, tzLen)
		if err == nil {
			if l, err := time.LoadLocation(tzName); err == nil {
				loc = l
			}
		}
	}
	layout := swiftDateFormatToLayout(format)
	t, err := time.ParseInLocation(layout, v.Str, loc)
	if err != nil {
		return -1
	}
	return timeToSeconds(t)
}

func (h *Host) stdStringLen(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindString {
		return memory.Absent
	}
	return int32(len(v.Str))
}

func (h *Host) stdReadString(ctx context.Context, mod api.Module, handle int32, outPtr uint32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindString {
		return memory.Absent
	}
	if err := memory.WriteBytes(mustMemory(mod), outPtr, []byte(v.Str)); err != nil {
		return memory.Absent
	}
	return int32(len(v.Str))
}

func (h *Host) stdArrayLen(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindArray {
		return memory.Absent
	}
	return int32(len(v.Array))
}

func (h *Host) stdArrayGet(ctx context.Context, handle, index int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindArray {
		return memory.Absent
	}
	if index < 0 || int(index) >= len(v.Array) {
		return memory.Absent
	}
	return int32(h.Store.Store(v.Array[index]))
}

func (h *Host) stdArraySet(ctx context.Context, handle, index, elementHandle int32) {
	element, ok := h.Store.Get(value.Handle(elementHandle))
	if !ok {
		return
	}
	h.Store.Mutate(value.Handle(handle), func(v *value.Value) {
		if v.Kind != value.KindArray || index < 0 || int(index) >= len(v.Array) {
			return
		}
		v.Array[index] = element
	})
	h.Store.AddChild(value.Handle(handle), value.Handle(elementHandle))
}

func (h *Host) stdArrayAppend(ctx context.Context, handle, elementHandle int32) {
	element, ok := h.Store.Get(value.Handle(elementHandle))
	if !ok {
		return
	}
	h.Store.Mutate(value.Handle(handle), func(v *value.Value) {
		if v.Kind != value.KindArray {
			return
		}
		v.Array = append(v.Array, element)
	})
	h.Store.AddChild(value.Handle(handle), value.Handle(elementHandle))
}

func (h *Host) stdArrayRemove(ctx context.Context, handle, index int32) {
	h.Store.Mutate(value.Handle(handle), func(v *value.Value) {
		if v.Kind != value.KindArray || index < 0 || int(index) >= len(v.Array) {
			return
		}
		v.Array = append(v.Array[:index], v.Array[index+1:]...)
	})
}

func (h *Host) stdObjectLen(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindObject || v.Object.Kind != value.ObjectValueMap {
		return memory.Absent
	}
	return int32(len(v.Object.Map))
}

func (h *Host) stdObjectGet(ctx context.Context, mod api.Module, handle int32, keyPtr, keyLen uint32) int32 {
	key, err := memory.ReadString(mustMemory(mod), keyPtr, keyLen)
	if err != nil {
		return memory.Absent
	}
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindObject {
		return memory.Absent
	}
	field, ok := v.Object.Field(key)
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(field))
}

func (h *Host) stdObjectSet(ctx context.Context, mod api.Module, handle int32, keyPtr, keyLen uint32, valueHandle int32) {
	key, err := memory.ReadString(mustMemory(mod), keyPtr, keyLen)
	if err != nil {
		return
	}
	fieldValue, ok := h.Store.Get(value.Handle(valueHandle))
	if !ok {
		return
	}
	h.Store.Mutate(value.Handle(handle), func(v *value.Value) {
		if v.Kind != value.KindObject || v.Object.Kind != value.ObjectValueMap {
			return
		}
		if v.Object.Map == nil {
			v.Object.Map = make(map[string]value.Value)
		}
		v.Object.Map[key] = fieldValue
	})
	h.Store.AddChild(value.Handle(handle), value.Handle(valueHandle))
}

func (h *Host) stdObjectRemove(ctx context.Context, mod api.Module, handle int32, keyPtr, keyLen uint32) {
	key, err := memory.ReadString(mustMemory(mod), keyPtr, keyLen)
	if err != nil {
		return
	}
	h.Store.Mutate(value.Handle(handle), func(v *value.Value) {
		if v.Kind != value.KindObject || v.Object.Kind != value.ObjectValueMap {
			return
		}
		delete(v.Object.Map, key)
	})
}

func (h *Host) stdObjectKeys(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindObject || v.Object.Kind != value.ObjectValueMap {
		return memory.Absent
	}
	keys := make([]value.Value, 0, len(v.Object.Map))
	for k := range v.Object.Map {
		keys = append(keys, value.String(k))
	}
	return int32(h.Store.Store(value.Array(keys)))
}

func (h *Host) stdObjectValues(ctx context.Context, handle int32) int32 {
	v, ok := h.Store.Get(value.Handle(handle))
	if !ok || v.Kind != value.KindObject || v.Object.Kind != value.ObjectValueMap {
		return memory.Absent
	}
	values := make([]value.Value, 0, len(v.Object.Map))
	for _, fv := range v.Object.Map {
		values = append(values, fv)
	}
	return int32(h.Store.Store(value.Array(values)))
}
