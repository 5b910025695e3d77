package protocol

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const writeTimeout = 10 * time.Second

// Conn is one end of a control channel. Reads must come from a single
// goroutine; writes may be concurrent.
type Conn struct {
	ws  *websocket.Conn
	mu  sync.Mutex
	log zerolog.Logger
}

// NewConn wraps an established WebSocket connection.
func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ws:  ws,
		log: log.With().Str("component", "protocol").Str("remote", ws.RemoteAddr().String()).Logger(),
	}
}

// Dial opens a control channel to url.
func Dial(ctx context.Context, url string, header http.Header) (*Conn, error) {
	ws, resp, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewConn(ws), nil
}

// Upgrade accepts a control channel on the server side.
func Upgrade(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) (*Conn, error) {
	if upgrader == nil {
		upgrader = &websocket.Upgrader{}
	}
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrading control channel: %w", err)
	}
	return NewConn(ws), nil
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// SendCommand wraps cmd in a new WsRequest, sends it and returns the
// request id.
func (c *Conn) SendCommand(cmd Command) (string, error) {
	req := NewRequest(cmd)
	if err := c.SendRequest(req); err != nil {
		return "", err
	}
	return req.RequestID, nil
}

// SendRequest sends req as is.
func (c *Conn) SendRequest(req WsRequest) error {
	data, err := req.MarshalJSON()
	if err != nil {
		return err
	}
	if err := c.write(data); err != nil {
		return fmt.Errorf("sending %s: %w", req.Command.CommandType(), err)
	}
	c.log.Debug().Str("requestId", req.RequestID).Str("type", req.Command.CommandType()).Msg("command sent")
	return nil
}

// SendEvent sends ev.
func (c *Conn) SendEvent(ev Event) error {
	data, err := MarshalEvent(ev)
	if err != nil {
		return err
	}
	if err := c.write(data); err != nil {
		return fmt.Errorf("sending %s: %w", ev.EventType(), err)
	}
	return nil
}

func (c *Conn) read() ([]byte, error) {
	kind, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, err
	}
	if kind != websocket.TextMessage {
		return nil, &DecodeError{Kind: DecodeMalformed, Cause: fmt.Errorf("unexpected frame type %d", kind)}
	}
	return data, nil
}

// ReadRequest blocks for the next request. A *DecodeError leaves the
// connection usable.
func (c *Conn) ReadRequest() (WsRequest, error) {
	data, err := c.read()
	if err != nil {
		return WsRequest{}, err
	}
	req, err := DecodeRequest(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("rejected request")
		return WsRequest{}, err
	}
	return req, nil
}

// ReadEvent blocks for the next event. A *DecodeError leaves the
// connection usable.
func (c *Conn) ReadEvent() (Event, error) {
	data, err := c.read()
	if err != nil {
		return nil, err
	}
	ev, err := DecodeEvent(data)
	if err != nil {
		c.log.Warn().Err(err).Msg("rejected event")
		return nil, err
	}
	return ev, nil
}

// Close sends a close frame and closes the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.mu.Unlock()
	return c.ws.Close()
}
