// Package streamdeck implements the plugin side of the deck's websocket protocol.
package streamdeck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const readLimit = 1 << 20

// Handler receives inbound events on the read goroutine. It must not block.
type Handler func(Message)

// Client is a registered connection to the deck.
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger
}

// Dial connects to the deck on localhost and registers the plugin.
func Dial(ctx context.Context, port int, pluginUUID, registerEvent string, logger *zap.Logger) (*Client, error) {
	return DialURL(ctx, fmt.Sprintf("ws://127.0.0.1:%d", port), pluginUUID, registerEvent, logger)
}

// DialURL connects to url and registers the plugin.
func DialURL(ctx context.Context, url, pluginUUID, registerEvent string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to deck at %s: %w", url, err)
	}
	conn.SetReadLimit(readLimit)

	reg := Registration{Event: registerEvent, UUID: pluginUUID}
	if err := wsjson.Write(ctx, conn, reg); err != nil {
		conn.Close(websocket.StatusInternalError, "registration failed")
		return nil, fmt.Errorf("failed to register plugin: %w", err)
	}

	logger.Info("registered with deck", zap.String("url", url), zap.String("event", registerEvent))
	return &Client{conn: conn, logger: logger}, nil
}

// Send writes an event to the deck. Safe for concurrent use.
func (c *Client) Send(ctx context.Context, msg Outbound) error {
	if err := wsjson.Write(ctx, c.conn, msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Event, err)
	}
	return nil
}

// Run reads events until the connection closes or ctx ends. Undecodable
// messages are logged and skipped. A normal close returns nil.
func (c *Client) Run(ctx context.Context, handle Handler) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("deck connection lost: %w", err)
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping undecodable message", zap.Error(err), zap.ByteString("data", data))
			continue
		}
		c.logger.Debug("event", zap.String("event", msg.Event), zap.String("context", msg.Context))
		handle(msg)
	}
}

// Close closes the connection normally.
func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
