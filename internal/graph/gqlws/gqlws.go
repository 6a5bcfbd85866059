// Package gqlws serves GraphQL subscriptions over websocket, speaking the
// graphql-transport-ws subprotocol (connection_init/ack, subscribe, next,
// complete, ping/pong).
package gqlws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/graphql-go/graphql"
)

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

// close codes defined by the graphql-transport-ws spec
const (
	closeUnauthorized      = 4401
	closeSubscriberExists  = 4409
	closeTooManyInits      = 4429
	connectionInitDeadline = 10 * time.Second
	writeDeadline          = 10 * time.Second
	maxMessageSize         = 1 << 20
)

type message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type subscribePayload struct {
	OperationName string                 `json:"operationName,omitempty"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

type Handler struct {
	schema   graphql.Schema
	upgrader websocket.Upgrader
}

func New(schema graphql.Schema) *Handler {
	return &Handler{
		schema: schema,
		upgrader: websocket.Upgrader{
			Subprotocols: []string{"graphql-transport-ws"},
			// Origin policy is enforced by the CORS middleware on the HTTP
			// surface; the upgrade accepts any origin like the rest of the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gqlws] upgrade failed: %v", err)
		return
	}
	c := &client{
		schema: h.schema,
		conn:   conn,
		subs:   make(map[string]context.CancelFunc),
	}
	c.run(r.Context())
}

type client struct {
	schema graphql.Schema
	conn   *websocket.Conn

	writeMu sync.Mutex

	mu    sync.Mutex
	acked bool
	subs  map[string]context.CancelFunc
}

func (c *client) run(ctx context.Context) {
	defer c.conn.Close()
	defer c.cancelAll()

	c.conn.SetReadLimit(maxMessageSize)
	// The client has a bounded window to say hello.
	_ = c.conn.SetReadDeadline(time.Now().Add(connectionInitDeadline))

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.closeWith(websocket.CloseUnsupportedData, "invalid message")
			return
		}

		switch msg.Type {
		case msgConnectionInit:
			c.mu.Lock()
			already := c.acked
			c.acked = true
			c.mu.Unlock()
			if already {
				c.closeWith(closeTooManyInits, "too many initialisation requests")
				return
			}
			_ = c.conn.SetReadDeadline(time.Time{})
			c.send(message{Type: msgConnectionAck})

		case msgPing:
			c.send(message{Type: msgPong})

		case msgSubscribe:
			if !c.ready() {
				c.closeWith(closeUnauthorized, "unauthorized")
				return
			}
			var payload subscribePayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || msg.ID == "" {
				c.closeWith(websocket.CloseUnsupportedData, "malformed subscribe")
				return
			}
			if !c.addSub(msg.ID, ctx, payload) {
				c.closeWith(closeSubscriberExists, "subscriber already exists: "+msg.ID)
				return
			}

		case msgComplete:
			c.removeSub(msg.ID)

		default:
			// pong and unknown types are ignored
		}
	}
}

func (c *client) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.acked
}

// addSub registers the operation and starts pumping results. Returns false if
// the id is already taken.
func (c *client) addSub(id string, parent context.Context, payload subscribePayload) bool {
	c.mu.Lock()
	if _, exists := c.subs[id]; exists {
		c.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(parent)
	c.subs[id] = cancel
	c.mu.Unlock()

	go func() {
		defer c.removeSub(id)

		results := graphql.Subscribe(graphql.Params{
			Schema:         c.schema,
			RequestString:  payload.Query,
			VariableValues: payload.Variables,
			OperationName:  payload.OperationName,
			Context:        ctx,
		})
		for res := range results {
			if res == nil {
				continue
			}
			if len(res.Errors) > 0 && res.Data == nil {
				errs, _ := json.Marshal(res.Errors)
				c.send(message{ID: id, Type: msgError, Payload: errs})
				return
			}
			body, err := json.Marshal(res)
			if err != nil {
				log.Printf("[gqlws] marshal result: %v", err)
				continue
			}
			c.send(message{ID: id, Type: msgNext, Payload: body})
		}
		if ctx.Err() == nil {
			c.send(message{ID: id, Type: msgComplete})
		}
	}()
	return true
}

func (c *client) removeSub(id string) {
	c.mu.Lock()
	cancel, ok := c.subs[id]
	if ok {
		delete(c.subs, id)
	}
	c.mu.Unlock()
	if ok {
		cancel()
	}
}

func (c *client) cancelAll() {
	c.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(c.subs))
	for id, cancel := range c.subs {
		cancels = append(cancels, cancel)
		delete(c.subs, id)
	}
	c.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (c *client) send(msg message) {
	body, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := c.conn.WriteMessage(websocket.TextMessage, body); err != nil {
		log.Printf("[gqlws] write failed: %v", err)
	}
}

func (c *client) closeWith(code int, reason string) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason))
}
