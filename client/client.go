package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alanwang67/message_board/protocol"
	"github.com/alanwang67/message_board/report"
	"github.com/alanwang67/message_board/workload"
	"github.com/charmbracelet/log"
)

var ErrNoServers = errors.New("client: no servers configured")

func New(id uint64, servers []*protocol.Connection, opts ...Option) *Client {
	c := &Client{
		Id:      id,
		Servers: servers,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("client", id)
	c.logger.Debugf("client %d created with %d servers", id, len(servers))
	return c
}

func (c *Client) pick() (protocol.Connection, error) {
	if len(c.Servers) == 0 {
		return protocol.Connection{}, ErrNoServers
	}
	return *c.Servers[(c.next.Add(1)-1)%uint64(len(c.Servers))], nil
}

func (c *Client) invoke(ctx context.Context, method, path string, args, reply any) error {
	conn, err := c.pick()
	if err != nil {
		return err
	}
	return protocol.Invoke(ctx, c.http, conn, method, path, args, reply)
}

func (c *Client) Index(ctx context.Context) (protocol.IndexReply, error) {
	var reply protocol.IndexReply
	err := c.invoke(ctx, http.MethodGet, protocol.PathIndex, nil, &reply)
	return reply, err
}

func (c *Client) Now(ctx context.Context) (protocol.NowReply, error) {
	var reply protocol.NowReply
	err := c.invoke(ctx, http.MethodGet, protocol.PathNow, nil, &reply)
	return reply, err
}

func (c *Client) Send(ctx context.Context, message string) (protocol.SendReply, error) {
	var reply protocol.SendReply
	err := c.invoke(ctx, http.MethodPost, protocol.PathSend, protocol.SendRequest{Message: &message}, &reply)
	return reply, err
}

func (c *Client) Clear(ctx context.Context) (protocol.ClearReply, error) {
	var reply protocol.ClearReply
	err := c.invoke(ctx, http.MethodPost, protocol.PathClear, nil, &reply)
	return reply, err
}

// Perform executes a single workload instruction.
func (c *Client) Perform(ctx context.Context, instr workload.Instruction) error {
	var err error
	switch instr.Type {
	case workload.InstructionTypeIndex:
		_, err = c.Index(ctx)
	case workload.InstructionTypeNow:
		_, err = c.Now(ctx)
	case workload.InstructionTypeSend:
		_, err = c.Send(ctx, instr.Message)
	case workload.InstructionTypeClear:
		_, err = c.Clear(ctx)
	default:
		err = fmt.Errorf("unknown instruction type %q", instr.Type)
	}
	return err
}

// Start replays instructions in order and returns one sample per
// instruction. Failed operations are recorded, not fatal; only ctx
// cancellation stops the run early.
func (c *Client) Start(ctx context.Context, instructions []workload.Instruction) ([]report.Sample, error) {
	c.logger.Debugf("starting client %d", c.Id)

	samples := make([]report.Sample, 0, len(instructions))
	start := time.Now()

	for i, instr := range instructions {
		if err := ctx.Err(); err != nil {
			return samples, err
		}

		opStart := time.Now()
		err := c.Perform(ctx, instr)
		samples = append(samples, report.Sample{
			Index:   i,
			Type:    instr.Type,
			Latency: time.Since(opStart),
			Elapsed: time.Since(start),
			Err:     err,
		})
		if err != nil {
			c.logger.Warn("operation failed", "index", i, "type", instr.Type, "err", err)
		}

		if instr.Delay > 0 {
			select {
			case <-time.After(instr.Delay):
			case <-ctx.Done():
				return samples, ctx.Err()
			}
		}
	}

	c.logger.Info("workload complete", "summary", report.Summarize(samples).String())
	return samples, nil
}
