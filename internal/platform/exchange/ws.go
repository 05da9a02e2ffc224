package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/predictlabs/predictbot/internal/domain"
)

const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// handshakeTimeout bounds the websocket dial.
	handshakeTimeout = 15 * time.Second

	// reconnectDelay is the fixed pause before every reconnection attempt.
	// Reconnection is best-effort: no cap on attempts, no backoff growth.
	reconnectDelay = 5 * time.Second
)

// MarketMessage is one inbound push-channel message for a market.
type MarketMessage struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// MarketHandler is invoked for every inbound message whose channel matches
// the subscribed market.
type MarketHandler func(msg MarketMessage)

// wsCommand is the outbound subscribe/unsubscribe envelope.
type wsCommand struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// PushClient is a best-effort WebSocket client for per-market push updates.
// It manages the connection lifecycle and re-subscribes after reconnecting.
type PushClient struct {
	wsURL string
	conn  *websocket.Conn

	mu     sync.RWMutex
	closed bool

	// handlers maps channel name ("market:<id>") to its callback.
	// Subscriptions are restored from this map on reconnect.
	handlers map[string]MarketHandler

	// done is closed when the client is shut down.
	done chan struct{}
}

// NewPushClient creates a push-channel client for the given WebSocket URL.
func NewPushClient(wsURL string) *PushClient {
	return &PushClient{
		wsURL:    wsURL,
		handlers: make(map[string]MarketHandler),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
func (p *PushClient) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("exchange/ws: %w", domain.ErrWSDisconnect)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, p.wsURL, nil)
	if err != nil {
		return fmt.Errorf("exchange/ws: connect: %w", err)
	}
	p.conn = conn

	go p.readLoop(conn)

	// Restore subscriptions after a reconnect.
	for channel := range p.handlers {
		if err := p.sendCommand(wsCommand{Type: "subscribe", Channel: channel}); err != nil {
			return fmt.Errorf("exchange/ws: restore subscription %s: %w", channel, err)
		}
	}
	return nil
}

// Subscribe registers a handler for one market's channel and sends the
// subscribe command.
func (p *PushClient) Subscribe(ctx context.Context, marketID string, handler MarketHandler) error {
	channel := "market:" + marketID

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return fmt.Errorf("exchange/ws: not connected")
	}

	if err := p.sendCommand(wsCommand{Type: "subscribe", Channel: channel}); err != nil {
		return fmt.Errorf("exchange/ws: subscribe %s: %w", channel, err)
	}
	p.handlers[channel] = handler
	return nil
}

// Unsubscribe removes a market's handler and sends the unsubscribe command.
func (p *PushClient) Unsubscribe(ctx context.Context, marketID string) error {
	channel := "market:" + marketID

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return fmt.Errorf("exchange/ws: not connected")
	}

	if err := p.sendCommand(wsCommand{Type: "unsubscribe", Channel: channel}); err != nil {
		return fmt.Errorf("exchange/ws: unsubscribe %s: %w", channel, err)
	}
	delete(p.handlers, channel)
	return nil
}

// Close shuts down the connection and stops the read loop.
func (p *PushClient) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	if p.conn != nil {
		_ = p.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		return p.conn.Close()
	}
	return nil
}

// --------------------------------------------------------------------------
// Internal methods
// --------------------------------------------------------------------------

// sendCommand sends a JSON command to the WebSocket. Caller must hold p.mu.
func (p *PushClient) sendCommand(cmd wsCommand) error {
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))

	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads messages from conn and dispatches them until the connection
// drops or the client is closed. On an unexpected drop it hands off to
// reconnect.
func (p *PushClient) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-p.done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-p.done:
				return
			default:
			}
			conn.Close()
			p.reconnect()
			return // a fresh readLoop is started by reconnect -> Connect
		}

		p.dispatch(message)
	}
}

// dispatch routes an inbound message to the handler subscribed to its
// channel. Messages for unknown channels and unparseable frames are dropped.
func (p *PushClient) dispatch(raw []byte) {
	var msg MarketMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}
	if !strings.HasPrefix(msg.Channel, "market:") {
		return
	}

	p.mu.RLock()
	handler := p.handlers[msg.Channel]
	p.mu.RUnlock()

	if handler != nil {
		handler(msg)
	}
}

// reconnect re-establishes the connection after a fixed delay. It retries
// forever until it succeeds or the client is closed.
func (p *PushClient) reconnect() {
	for {
		select {
		case <-p.done:
			return
		case <-time.After(reconnectDelay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		err := p.Connect(ctx)
		cancel()

		if err == nil {
			return
		}
	}
}
