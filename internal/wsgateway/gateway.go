// Package wsgateway implements the WebSocket boundary (spec §4.8, §6):
// browser and CLI clients submit dynamic-value resolve requests over a
// persistent socket and receive one result or error frame back per
// request (no progress frames are sent),
// grounded on the teacher's internal/fabric/websocket.go hub
// (gorilla/websocket upgrader, one outbound channel per connection, a
// ping/pong keepalive loop).
package wsgateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/request"
	"github.com/urlofmar/cradle-sub001/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 1 << 20
)

// Frame is the wire envelope exchanged over the socket in both
// directions.
type Frame struct {
	ID      string          `json:"id"`
	Op      string          `json:"op"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Err     string          `json:"err,omitempty"`
}

// Gateway upgrades HTTP connections and services resolve requests
// against a shared service.Core.
type Gateway struct {
	core     *service.Core
	upgrader websocket.Upgrader
	log      *slog.Logger
}

// NewGateway returns a Gateway bound to core.
func NewGateway(core *service.Core, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{
		core: core,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Thinknode-style deployments terminate TLS and same-origin
			// policy upstream of this process; origin checking is the
			// reverse proxy's job, not the engine core's.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the connection and services it until it closes.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan Frame, 16), gateway: g}
	go c.writePump()
	c.readPump()
}

type client struct {
	conn    *websocket.Conn
	send    chan Frame
	gateway *Gateway
}

func (c *client) readPump() {
	defer func() {
		close(c.send)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var f Frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.log.Warn("websocket read error", "error", err)
			}
			return
		}
		c.handle(f)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case f, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handle(f Frame) {
	switch f.Op {
	case "ping":
		c.reply(f.ID, "pong", nil, nil)
	case "resolve_value":
		c.handleResolveValue(f)
	default:
		c.reply(f.ID, f.Op, nil, cerr.New(cerr.Protocol, "unknown op").With("op", f.Op))
	}
}

// handleResolveValue decodes the payload as JSON, wraps it as a
// request.Value, resolves it (always immediate, since Value publishes
// inline per spec §4.5), and replies with the resolved value as JSON
// (the request's id is not included) — a minimal but genuine exercise of the request
// graph over the wire, standing in for the richer Apply/Meta submissions
// a full client library would compose client-side.
func (c *client) handleResolveValue(f Frame) {
	v, err := dynamic.UnmarshalJSON(f.Payload)
	if err != nil {
		c.reply(f.ID, f.Op, nil, err)
		return
	}
	req := request.Value(v)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := c.gateway.core.Resolve(ctx, req)
	if err != nil {
		c.reply(f.ID, f.Op, nil, err)
		return
	}
	resultValue, _ := result.(dynamic.Value)
	payload, marshalErr := dynamic.MarshalJSON(resultValue)
	if marshalErr != nil {
		c.reply(f.ID, f.Op, nil, marshalErr)
		return
	}
	c.reply(f.ID, f.Op, payload, nil)
}

func (c *client) reply(id, op string, payload json.RawMessage, err error) {
	f := Frame{ID: id, Op: op, Payload: payload}
	if err != nil {
		f.Err = err.Error()
	}
	select {
	case c.send <- f:
	default:
		c.gateway.log.Warn("dropping websocket reply, client not draining", "id", id)
	}
}
