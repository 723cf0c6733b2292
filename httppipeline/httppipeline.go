// Package httppipeline drives the HTTP requests a source builds
// piecemeal through the net WASM import module: a request moves through
// a small state machine (Building, Sent, Closed) so that a guest can't,
// say, add a header after the request has already gone out.
package httppipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/hanatsumi/rakuyomi/rerr"
)

type State int

const (
	StateBuilding State = iota
	StateSent
	StateClosed
)

// Request is one source-initiated HTTP call. It is safe for concurrent
// use, though in practice a single source.Source guest call only ever
// touches it from one goroutine at a time.
type Request struct {
	mu sync.Mutex

	state  State
	Method string
	URL    string
	Header http.Header
	Body   []byte

	client *http.Client

	response     *http.Response
	responseBody []byte
	bodyRead     bool
	readCursor   int
}

func NewRequest(method string, client *http.Client) *Request {
	if client == nil {
		client = http.DefaultClient
	}
	return &Request{
		Method: method,
		Header: make(http.Header),
		client: client,
	}
}

func (r *Request) requireBuilding() error {
	if r.state != StateBuilding {
		return rerr.Newf(rerr.ProtocolViolation, "request is no longer being built (state %d)", r.state)
	}
	return nil
}

func (r *Request) SetURL(url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBuilding(); err != nil {
		return err
	}
	r.URL = url
	return nil
}

func (r *Request) SetHeader(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBuilding(); err != nil {
		return err
	}
	r.Header.Set(key, value)
	return nil
}

func (r *Request) SetBody(body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBuilding(); err != nil {
		return err
	}
	r.Body = body
	return nil
}

// Send performs the HTTP round trip. It classifies failures into rerr
// kinds: a context cancellation becomes Cancelled, anything else from
// the transport becomes NetworkFailure.
func (r *Request) Send(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requireBuilding(); err != nil {
		return err
	}

	var bodyReader io.Reader
	if r.Body != nil {
		bodyReader = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, bodyReader)
	if err != nil {
		return rerr.New(rerr.ProtocolViolation, err)
	}
	req.Header = r.Header.Clone()

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return rerr.New(rerr.Cancelled, ctx.Err())
		}
		return rerr.New(rerr.NetworkFailure, err)
	}

	r.response = resp
	r.state = StateSent
	return nil
}

func (r *Request) StatusCode() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response == nil {
		return 0, rerr.Newf(rerr.ProtocolViolation, "request has not been sent")
	}
	return r.response.StatusCode, nil
}

func (r *Request) ResponseHeader(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response == nil {
		return "", false
	}
	values := r.response.Header.Values(name)
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// ResponseBody reads and caches the full response body the first time
// it's called; subsequent calls return the cached bytes.
func (r *Request) ResponseBody() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response == nil {
		return nil, rerr.Newf(rerr.ProtocolViolation, "request has not been sent")
	}
	if r.bodyRead {
		return r.responseBody, nil
	}

	body, err := io.ReadAll(r.response.Body)
	if err != nil {
		return nil, rerr.New(rerr.NetworkFailure, err)
	}
	r.responseBody = body
	r.bodyRead = true
	return body, nil
}

// ReadChunk copies up to len(into) unread response body bytes into into,
// advancing the read cursor, and reports how many bytes it wrote. It
// backs net.get_data's streaming read, which is a separate cursor from
// ResponseBody's whole-body read.
func (r *Request) ReadChunk(into []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response == nil {
		return 0, rerr.Newf(rerr.ProtocolViolation, "request has not been sent")
	}
	if !r.bodyRead {
		body, err := io.ReadAll(r.response.Body)
		if err != nil {
			return 0, rerr.New(rerr.NetworkFailure, err)
		}
		r.responseBody = body
		r.bodyRead = true
	}

	remaining := r.responseBody[r.readCursor:]
	n := copy(into, remaining)
	r.readCursor += n
	return n, nil
}

// UnreadLen reports how many response body bytes remain unread by
// ReadChunk.
func (r *Request) UnreadLen() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response == nil {
		return 0, rerr.Newf(rerr.ProtocolViolation, "request has not been sent")
	}
	if !r.bodyRead {
		body, err := io.ReadAll(r.response.Body)
		if err != nil {
			return 0, rerr.New(rerr.NetworkFailure, err)
		}
		r.responseBody = body
		r.bodyRead = true
	}
	return len(r.responseBody) - r.readCursor, nil
}

func (r *Request) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.response != nil {
		_ = r.response.Body.Close()
	}
	r.state = StateClosed
	return nil
}

// dualPreflightAddresses are two well-known, independently operated
// resolver addresses (Cloudflare's 1.1.1.1 and 1.0.0.1). Dialing both
// before attributing a request failure to the network lets the host
// distinguish "my network is down" from "this one server is down"
// without depending on DNS, which may itself be the thing that's down.
var dualPreflightAddresses = []string{"1.1.1.1:80", "1.0.0.1:80"}

// CheckConnectivity reports whether the host appears to have outbound
// network access at all, by attempting a TCP connect to either
// preflight address with a short timeout.
func CheckConnectivity(ctx context.Context) bool {
	dialer := net.Dialer{Timeout: 3 * time.Second}
	for _, addr := range dualPreflightAddresses {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			conn.Close()
			return true
		}
	}
	return false
}

// ClassifyDialError wraps a low-level network error as a rerr.NetworkFailure,
// unless ctx has already been cancelled, in which case it's Cancelled.
func ClassifyDialError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return rerr.New(rerr.Cancelled, ctx.Err())
	}
	return rerr.New(rerr.NetworkFailure, fmt.Errorf("dial failed: %w", err))
}
