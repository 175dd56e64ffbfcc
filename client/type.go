package client

import (
	"net/http"
	"sync/atomic"

	"github.com/alanwang67/message_board/protocol"
	"github.com/charmbracelet/log"
)

// Client talks to one or more board servers, spreading calls round-robin.
type Client struct {
	Id      uint64
	Servers []*protocol.Connection

	http   *http.Client
	logger *log.Logger
	next   atomic.Uint64
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}
