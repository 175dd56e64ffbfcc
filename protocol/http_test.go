package protocol

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionURL(t *testing.T) {
	tests := []struct {
		name    string
		address string
		path    string
		want    string
	}{
		{"bare host port", "127.0.0.1:8080", "/now", "http://127.0.0.1:8080/now"},
		{"with scheme", "https://board.example", "/send", "https://board.example/send"},
		{"trailing slash", "http://localhost:9000/", "/", "http://localhost:9000/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Connection{Network: "tcp", Address: tt.address}
			assert.Equal(t, tt.want, c.URL(tt.path))
		})
	}
}

func TestInvokeRoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PathSend, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req SendRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.NotNil(t, req.Message) {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		_ = json.NewEncoder(w).Encode(SendReply{ServerId: 3, RequestCount: 1, Message: *req.Message})
	}))
	defer ts.Close()

	msg := "hi"
	var reply SendReply
	err := Invoke(context.Background(), ts.Client(), Connection{Network: "tcp", Address: ts.URL}, http.MethodPost, PathSend, SendRequest{Message: &msg}, &reply)
	require.NoError(t, err)
	assert.Equal(t, SendReply{ServerId: 3, RequestCount: 1, Message: "hi"}, reply)
}

func TestInvokeDecodesErrorReply(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_ = json.NewEncoder(w).Encode(ErrorReply{Error: "payload_too_large", Detail: "limit 4096 bytes"})
	}))
	defer ts.Close()

	err := Invoke(context.Background(), ts.Client(), Connection{Address: ts.URL}, http.MethodPost, PathSend, map[string]string{"message": "x"}, nil)
	require.Error(t, err)

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, perr.Status)
	assert.Equal(t, "payload_too_large", perr.Code)
	assert.Equal(t, "limit 4096 bytes", perr.Detail)
}

func TestInvokeNonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := Invoke(context.Background(), ts.Client(), Connection{Address: ts.URL}, http.MethodGet, PathIndex, nil, nil)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusBadGateway, perr.Status)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), perr.Code)
}

func TestInvokeDialError(t *testing.T) {
	err := Invoke(context.Background(), nil, Connection{Address: "127.0.0.1:1"}, http.MethodGet, PathNow, nil, nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "trouble calling"))
}
