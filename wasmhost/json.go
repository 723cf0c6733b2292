package wasmhost

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

// instantiateJSON registers the json module's single import, parse.
// There is no original-source file grounding this one (see DESIGN.md);
// it is implemented directly from the numeric-classification rule
// spec.md describes: a number with a fractional part or exponent
// decodes to Float, any other numeral decodes to Int.
func (h *Host) instantiateJSON(ctx context.Context, runtime wazero.Runtime) error {
	_, err := runtime.NewHostModuleBuilder("json").
		NewFunctionBuilder().
		WithFunc(h.jsonParse).
		Export("parse").
		Instantiate(ctx)
	return err
}

func (h *Host) jsonParse(ctx context.Context, mod api.Module, ptr, length uint32) int32 {
	data, err := memory.ReadBytes(mustMemory(mod), ptr, length)
	if err != nil {
		return memory.Absent
	}
	return h.storeParsedJSON(data)
}

// storeParsedJSON decodes data as JSON and stores the resulting Value,
// shared by json.parse and net.json (which parses a response body the
// same way, per the real ABI's net.rs duplicating this logic).
func (h *Host) storeParsedJSON(data []byte) int32 {
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()

	var raw interface{}
	if err := decoder.Decode(&raw); err != nil {
		return memory.Absent
	}

	return int32(h.Store.Store(jsonToValue(raw)))
}

func jsonToValue(raw interface{}) value.Value {
	switch v := raw.(type) {
	case nil:
		return value.Null()
	case bool:
		return value.Bool(v)
	case string:
		return value.String(v)
	case json.Number:
		return jsonNumberToValue(v)
	case []interface{}:
		elements := make([]value.Value, len(v))
		for i, e := range v {
			elements[i] = jsonToValue(e)
		}
		return value.Array(elements)
	case map[string]interface{}:
		fields := make(map[string]value.Value, len(v))
		for k, e := range v {
			fields[k] = jsonToValue(e)
		}
		return value.Object(value.ValueMapObject(fields))
	default:
		return value.Null()
	}
}

func jsonNumberToValue(n json.Number) value.Value {
	s := n.String()
	if strings.ContainsAny(s, ".eE") {
		f, err := n.Float64()
		if err != nil {
			return value.Null()
		}
		return value.Float(f)
	}
	i, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return value.Null()
		}
		return value.Float(f)
	}
	return value.Int(i)
}
