package server

import (
	"time"

	"github.com/alanwang67/message_board/protocol"
	"github.com/alanwang67/message_board/store"
)

// New creates a worker instance with the given identity and shared store.
// now defaults to time.Now.
func New(id uint64, messages *store.Store, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{
		Id:       id,
		messages: messages,
		now:      now,
	}
}

// Requests returns how many requests this instance has handled. Only the
// goroutine that owns the instance may call it.
func (s *Server) Requests() uint64 {
	return s.requests
}

func (s *Server) nextRequest() uint64 {
	s.requests++
	return s.requests
}

// HandleIndex returns the instance identity, its request count and a
// snapshot of the stored messages.
func (s *Server) HandleIndex() (protocol.IndexReply, error) {
	count := s.nextRequest()

	messages, err := s.messages.Snapshot()
	if err != nil {
		return protocol.IndexReply{}, err
	}
	return protocol.IndexReply{
		ServerId:     s.Id,
		RequestCount: count,
		Messages:     messages,
	}, nil
}

// HandleNow returns the current UTC time as an RFC 2822 string and as
// milliseconds since the epoch.
func (s *Server) HandleNow() protocol.NowReply {
	s.nextRequest()

	now := s.now().UTC()
	return protocol.NowReply{
		RFC2822:   now.Format(time.RFC1123Z),
		Timestamp: now.UnixMilli(),
	}
}

// HandleSend appends message to the shared store and echoes it back.
func (s *Server) HandleSend(message string) (protocol.SendReply, error) {
	count := s.nextRequest()

	if err := s.messages.Append(message); err != nil {
		return protocol.SendReply{}, err
	}
	return protocol.SendReply{
		ServerId:     s.Id,
		RequestCount: count,
		Message:      message,
	}, nil
}

// HandleClear empties the shared store.
func (s *Server) HandleClear() (protocol.ClearReply, error) {
	count := s.nextRequest()

	if err := s.messages.Clear(); err != nil {
		return protocol.ClearReply{}, err
	}
	return protocol.ClearReply{
		ServerId:     s.Id,
		RequestCount: count,
		Messages:     []string{},
	}, nil
}
