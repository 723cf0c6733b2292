package httppipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanatsumi/rakuyomi/rerr"
)

func TestRequest_FullLifecycle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	req := NewRequest("GET", server.Client())
	require.NoError(t, req.SetURL(server.URL))
	require.NoError(t, req.SetHeader("X-Foo", "bar"))

	require.NoError(t, req.Send(context.Background()))

	status, err := req.StatusCode()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)

	contentType, ok := req.ResponseHeader("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "application/json", contentType)

	body, err := req.ResponseBody()
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))

	body2, err := req.ResponseBody()
	require.NoError(t, err)
	assert.Equal(t, body, body2)

	require.NoError(t, req.Close())
}

func TestRequest_MutatingAfterSend_IsProtocolViolation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req := NewRequest("GET", server.Client())
	require.NoError(t, req.SetURL(server.URL))
	require.NoError(t, req.Send(context.Background()))

	err := req.SetHeader("X-Foo", "bar")
	require.Error(t, err)
	assert.Equal(t, rerr.ProtocolViolation, rerr.KindOf(err))
}

func TestRequest_StatusCode_BeforeSend_IsProtocolViolation(t *testing.T) {
	req := NewRequest("GET", http.DefaultClient)

	_, err := req.StatusCode()

	require.Error(t, err)
	assert.Equal(t, rerr.ProtocolViolation, rerr.KindOf(err))
}

func TestRequest_Send_NetworkFailure(t *testing.T) {
	req := NewRequest("GET", http.DefaultClient)
	require.NoError(t, req.SetURL("http://127.0.0.1:1"))

	err := req.Send(context.Background())

	require.Error(t, err)
	assert.Equal(t, rerr.NetworkFailure, rerr.KindOf(err))
}

func TestRequest_Send_ContextCancelled(t *testing.T) {
	req := NewRequest("GET", http.DefaultClient)
	require.NoError(t, req.SetURL("http://127.0.0.1:1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := req.Send(ctx)

	require.Error(t, err)
	assert.Equal(t, rerr.Cancelled, rerr.KindOf(err))
}

func TestClassifyDialError_Nil(t *testing.T) {
	assert.NoError(t, ClassifyDialError(context.Background(), nil))
}

func TestClassifyDialError_PlainError(t *testing.T) {
	err := ClassifyDialError(context.Background(), errors.New("boom"))

	require.Error(t, err)
	assert.Equal(t, rerr.NetworkFailure, rerr.KindOf(err))
}

func TestClassifyDialError_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ClassifyDialError(ctx, errors.New("boom"))

	require.Error(t, err)
	assert.Equal(t, rerr.Cancelled, rerr.KindOf(err))
}
