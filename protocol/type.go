package protocol

// Connection identifies one board server.
type Connection struct {
	Network string
	Address string
}

type IndexReply struct {
	ServerId     uint64   `json:"server_id"`
	RequestCount uint64   `json:"request_count"`
	Messages     []string `json:"messages"`
}

type NowReply struct {
	RFC2822   string `json:"rfc2822"`
	Timestamp int64  `json:"timestamp"` // milliseconds since the Unix epoch
}

// SendRequest is the body of POST /send. Message is a pointer so a missing
// field can be told apart from an empty string.
type SendRequest struct {
	Message *string `json:"message"`
}

type SendReply struct {
	ServerId     uint64 `json:"server_id"`
	RequestCount uint64 `json:"request_count"`
	Message      string `json:"message"`
}

type ClearReply struct {
	ServerId     uint64   `json:"server_id"`
	RequestCount uint64   `json:"request_count"`
	Messages     []string `json:"messages"`
}

type ErrorReply struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Routes served by every board server.
const (
	PathIndex = "/"
	PathNow   = "/now"
	PathSend  = "/send"
	PathClear = "/clear"
)

// HeaderRequestID carries the per-request identifier set by the server.
const HeaderRequestID = "X-Request-ID"
