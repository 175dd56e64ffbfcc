package protocol

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is returned by Invoke when the server answers with a non-2xx status.
type Error struct {
	Status int
	Code   string
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Code)
}

// URL joins the connection address and path. Addresses without a scheme
// are treated as plain http.
func (c Connection) URL(path string) string {
	base := strings.TrimRight(c.Address, "/")
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return base + path
}

// Invoke performs one JSON round trip against conn. args may be nil for
// requests without a body; reply may be nil when the body is not needed.
func Invoke(ctx context.Context, client *http.Client, conn Connection, method, path string, args, reply any) error {
	if client == nil {
		client = http.DefaultClient
	}

	var body io.Reader
	if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, conn.URL(path), body)
	if err != nil {
		return err
	}
	if args != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("trouble calling %s %s: %w", method, conn.URL(path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if reply == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(reply); err != nil {
		return fmt.Errorf("decode %s %s reply: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	e := &Error{Status: resp.StatusCode, Code: http.StatusText(resp.StatusCode)}
	var payload ErrorReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil && payload.Error != "" {
		e.Code = payload.Error
		e.Detail = payload.Detail
	}
	return e
}
