package wasmhost

import (
	"context"
	"net/http"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/httppipeline"
	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/value"
)

var httpMethods = []string{
	http.MethodGet, http.MethodPost, http.MethodHead, http.MethodPut, http.MethodDelete,
}

// requests holds in-flight httppipeline.Request objects, keyed by a
// small integer handed to the guest. These live in a separate space
// from value.Store's handles: a request isn't a Value the guest can
// store/copy/destroy generically, it's a stateful object with its own
// lifecycle, so it gets its own handle space instead of overloading the
// Value Store with non-Value objects.
type requestTable struct {
	mu   sync.Mutex
	next int32
	reqs map[int32]*httppipeline.Request
}

func newRequestTable() *requestTable {
	return &requestTable{next: 1, reqs: make(map[int32]*httppipeline.Request)}
}

func (t *requestTable) store(r *httppipeline.Request) int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.reqs[h] = r
	return h
}

func (t *requestTable) get(h int32) (*httppipeline.Request, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.reqs[h]
	return r, ok
}

func (t *requestTable) remove(h int32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.reqs, h)
}

// instantiateNet registers the net module: request construction, header
// and body assembly, sending, and response inspection, backed by
// httppipeline.Request.
func (h *Host) instantiateNet(ctx context.Context, runtime wazero.Runtime) error {
	h.requests = newRequestTable()

	builder := runtime.NewHostModuleBuilder("net")
	builder.NewFunctionBuilder().WithFunc(h.netInit).Export("init")
	builder.NewFunctionBuilder().WithFunc(h.netClose).Export("close")
	builder.NewFunctionBuilder().WithFunc(h.netSetURL).Export("set_url")
	builder.NewFunctionBuilder().WithFunc(h.netSetHeader).Export("set_header")
	builder.NewFunctionBuilder().WithFunc(h.netSetBody).Export("set_body")
	builder.NewFunctionBuilder().WithFunc(h.netSetRateLimit).Export("set_rate_limit")
	builder.NewFunctionBuilder().WithFunc(h.netSetRateLimitPeriod).Export("set_rate_limit_period")
	builder.NewFunctionBuilder().WithFunc(h.netSend).Export("send")
	builder.NewFunctionBuilder().WithFunc(h.netGetURL).Export("get_url")
	builder.NewFunctionBuilder().WithFunc(h.netGetDataSize).Export("get_data_size")
	builder.NewFunctionBuilder().WithFunc(h.netGetData).Export("get_data")
	builder.NewFunctionBuilder().WithFunc(h.netGetHeader).Export("get_header")
	builder.NewFunctionBuilder().WithFunc(h.netGetStatusCode).Export("get_status_code")
	builder.NewFunctionBuilder().WithFunc(h.netJSON).Export("json")
	builder.NewFunctionBuilder().WithFunc(h.netHTML).Export("html")

	_, err := builder.Instantiate(ctx)
	return err
}

// StoreRequest registers an httppipeline.Request the host (not a guest
// call) constructed, so that a guest-exported function like
// modify_image_request can be handed its handle directly.
func (h *Host) StoreRequest(r *httppipeline.Request) int32 {
	return h.requests.store(r)
}

func (h *Host) netInit(ctx context.Context, method int32) int32 {
	if method < 0 || int(method) >= len(httpMethods) {
		return memory.Absent
	}
	req := httppipeline.NewRequest(httpMethods[method], h.HTTPClient)
	return h.requests.store(req)
}

func (h *Host) netClose(ctx context.Context, handle int32) {
	req, ok := h.requests.get(handle)
	if !ok {
		return
	}
	_ = req.Close()
	h.requests.remove(handle)
}

func (h *Host) netSetURL(ctx context.Context, mod api.Module, handle int32, urlPtr, urlLen uint32) {
	req, ok := h.requests.get(handle)
	if !ok {
		return
	}
	url, err := memory.ReadString(mustMemory(mod), urlPtr, urlLen)
	if err != nil {
		return
	}
	_ = req.SetURL(url)
}

func (h *Host) netSetHeader(ctx context.Context, mod api.Module, handle int32, keyPtr, keyLen, valPtr, valLen uint32) {
	req, ok := h.requests.get(handle)
	if !ok {
		return
	}
	mem := mustMemory(mod)
	key, err := memory.ReadString(mem, keyPtr, keyLen)
	if err != nil {
		return
	}
	val, err := memory.ReadString(mem, valPtr, valLen)
	if err != nil {
		return
	}
	_ = req.SetHeader(key, val)
}

func (h *Host) netSetBody(ctx context.Context, mod api.Module, handle int32, bodyPtr, bodyLen uint32) {
	req, ok := h.requests.get(handle)
	if !ok {
		return
	}
	body, err := memory.ReadBytes(mustMemory(mod), bodyPtr, bodyLen)
	if err != nil {
		return
	}
	_ = req.SetBody(body)
}

// netSetRateLimit and netSetRateLimitPeriod are no-ops: rate limiting a
// source's own requests isn't implemented, matching the original's
// todo!() for both.
func (h *Host) netSetRateLimit(ctx context.Context, rateLimit int32) {}

func (h *Host) netSetRateLimitPeriod(ctx context.Context, period int32) {}

func (h *Host) netSend(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	if !httppipeline.CheckConnectivity(ctx) {
		return memory.Absent
	}
	if err := req.Send(ctx); err != nil {
		return memory.Absent
	}
	return 0
}

func (h *Host) netGetURL(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(req.URL)))
}

func (h *Host) netGetDataSize(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	remaining, err := req.UnreadLen()
	if err != nil {
		return memory.Absent
	}
	return int32(remaining)
}

func (h *Host) netGetData(ctx context.Context, mod api.Module, handle int32, bufferPtr, size uint32) {
	req, ok := h.requests.get(handle)
	if !ok {
		return
	}
	buf := make([]byte, size)
	n, err := req.ReadChunk(buf)
	if err != nil {
		return
	}
	_ = memory.WriteBytes(mustMemory(mod), bufferPtr, buf[:n])
}

func (h *Host) netGetHeader(ctx context.Context, mod api.Module, handle int32, namePtr, nameLen uint32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	name, err := memory.ReadString(mustMemory(mod), namePtr, nameLen)
	if err != nil {
		return memory.Absent
	}
	headerValue, found := req.ResponseHeader(name)
	if !found {
		return memory.Absent
	}
	return int32(h.Store.Store(value.String(headerValue)))
}

func (h *Host) netGetStatusCode(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	status, err := req.StatusCode()
	if err != nil {
		return memory.Absent
	}
	return int32(h.Store.Store(value.Int(int64(status))))
}

func (h *Host) netJSON(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	body, err := req.ResponseBody()
	if err != nil {
		return memory.Absent
	}
	return h.storeParsedJSON(body)
}

func (h *Host) netHTML(ctx context.Context, handle int32) int32 {
	req, ok := h.requests.get(handle)
	if !ok {
		return memory.Absent
	}
	body, err := req.ResponseBody()
	if err != nil {
		return memory.Absent
	}
	return h.parseDocument(string(body), nil)
}
