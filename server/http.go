package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/alanwang67/message_board/protocol"
	"github.com/alanwang67/message_board/store"
	"github.com/dustin/go-humanize"
)

type httpError struct {
	Status int
	Code   string
	Detail string
}

func (h httpError) Error() string {
	if h.Detail != "" {
		return fmt.Sprintf("%s: %s", h.Code, h.Detail)
	}
	return h.Code
}

// route binds a method and path to a decoder. bind runs on the accepting
// goroutine; a bind error rejects the request before any worker sees it.
type route struct {
	name   string
	method string
	bind   func(w http.ResponseWriter, r *http.Request, limit int64) (operation, error)
}

func newRoutes() map[string]route {
	return map[string]route{
		protocol.PathIndex: {name: "index", method: http.MethodGet, bind: bindIndex},
		protocol.PathNow:   {name: "now", method: http.MethodGet, bind: bindNow},
		protocol.PathSend:  {name: "send", method: http.MethodPost, bind: bindSend},
		protocol.PathClear: {name: "clear", method: http.MethodPost, bind: bindClear},
	}
}

// The hello header of the first revision of / is accepted and ignored.
func bindIndex(_ http.ResponseWriter, _ *http.Request, _ int64) (operation, error) {
	return func(s *Server) (any, error) {
		return s.HandleIndex()
	}, nil
}

func bindNow(_ http.ResponseWriter, _ *http.Request, _ int64) (operation, error) {
	return func(s *Server) (any, error) {
		return s.HandleNow(), nil
	}, nil
}

func bindClear(_ http.ResponseWriter, _ *http.Request, _ int64) (operation, error) {
	return func(s *Server) (any, error) {
		return s.HandleClear()
	}, nil
}

func bindSend(w http.ResponseWriter, r *http.Request, limit int64) (operation, error) {
	tooLarge := httpError{
		Status: http.StatusRequestEntityTooLarge,
		Code:   "payload_too_large",
		Detail: fmt.Sprintf("body exceeds %s", humanize.IBytes(uint64(limit))),
	}
	if r.ContentLength > limit {
		return nil, tooLarge
	}

	body := http.MaxBytesReader(w, r.Body, limit)
	defer body.Close()

	var req protocol.SendRequest
	if err := decodeJSONBody(body, &req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tooLarge
		}
		return nil, httpError{
			Status: http.StatusBadRequest,
			Code:   "invalid_body",
			Detail: fmt.Sprintf("failed to parse request: %v", err),
		}
	}
	if req.Message == nil {
		return nil, httpError{
			Status: http.StatusBadRequest,
			Code:   "invalid_body",
			Detail: "message is required",
		}
	}

	message := *req.Message
	return func(s *Server) (any, error) {
		return s.HandleSend(message)
	}, nil
}

// decodeJSONBody decodes exactly one JSON value from body.
func decodeJSONBody(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return fmt.Errorf("unexpected trailing JSON value")
}

// toHTTPError maps handler errors onto the wire.
func toHTTPError(err error) httpError {
	var herr httpError
	switch {
	case errors.As(err, &herr):
		return herr
	case errors.Is(err, store.ErrPoisoned):
		return httpError{Status: http.StatusInternalServerError, Code: "lock_poisoned", Detail: err.Error()}
	default:
		return httpError{Status: http.StatusInternalServerError, Code: "internal", Detail: err.Error()}
	}
}

// writeJSON encodes v before touching w so an encoding failure can still
// become a 500.
func writeJSON(w http.ResponseWriter, status int, v any) int {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(protocol.ErrorReply{Error: "internal", Detail: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return status
}

func writeError(w http.ResponseWriter, herr httpError) int {
	return writeJSON(w, herr.Status, protocol.ErrorReply{Error: herr.Code, Detail: herr.Detail})
}
