package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
)

func init() {
	registry.Register("ws", "WebSocket game server", func(opts registry.Options) (autopilot.Driver, error) {
		return NewClient(opts.URL, opts.Timeout, opts.Logger)
	})
}

// DefaultTimeout bounds every request when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// Client plays a game hosted by Server over a WebSocket connection.
// It dials lazily and redials after a broken connection, restarting the game
// if one had been begun. It is not safe for concurrent use.
type Client struct {
	url     string
	timeout time.Duration
	dialer  websocket.Dialer
	logger  *log.Logger

	conn  *websocket.Conn
	begun bool
}

// NewClient creates a client for the server at baseURL (http, https, ws or wss).
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) (*Client, error) {
	u, err := websocketURL(baseURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		url:     u,
		timeout: timeout,
		dialer:  websocket.Dialer{HandshakeTimeout: timeout},
		logger:  logger,
	}, nil
}

// websocketURL derives the /ws endpoint from a server base URL.
func websocketURL(base string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("remote: invalid url %q: %w", base, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("remote: unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("remote: url %q has no host", base)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

func (c *Client) connect(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("remote: failed to connect to %s: %w", c.url, err)
	}
	c.conn = conn
	c.logger.Debug("connected", "url", c.url)

	if c.begun {
		// A fresh connection is a fresh server-side game.
		c.logger.Info("reconnected, starting a new game")
		if _, err := c.exchange(ctx, TypeStart, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// roundTrip sends one message and waits for the reply, dialing first if needed.
func (c *Client) roundTrip(ctx context.Context, t MessageType, data any) (Envelope, error) {
	if err := c.connect(ctx); err != nil {
		return Envelope{}, err
	}
	return c.exchange(ctx, t, data)
}

func (c *Client) exchange(ctx context.Context, t MessageType, data any) (Envelope, error) {
	req, err := NewEnvelope(t, data)
	if err != nil {
		return Envelope{}, err
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		c.drop()
		return Envelope{}, fmt.Errorf("remote: %s: %w", t, err)
	}
	if err := c.conn.WriteJSON(req); err != nil {
		c.drop()
		return Envelope{}, fmt.Errorf("remote: cannot send %s: %w", t, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		c.drop()
		return Envelope{}, fmt.Errorf("remote: %s: %w", t, err)
	}
	var reply Envelope
	if err := c.conn.ReadJSON(&reply); err != nil {
		// A failed read leaves the connection unusable.
		c.drop()
		return Envelope{}, fmt.Errorf("remote: no reply to %s: %w", t, err)
	}

	if reply.Type == TypeError {
		var e ErrorPayload
		if err := reply.Decode(&e); err != nil {
			return Envelope{}, err
		}
		if e.Code == CodeUnavailable {
			return Envelope{}, fmt.Errorf("remote: %s: %w", e.Message, autopilot.ErrUnavailable)
		}
		return Envelope{}, fmt.Errorf("remote: server rejected %s: %s (%s)", t, e.Message, e.Code)
	}
	return reply, nil
}

// GameState implements autopilot.PerceptionSource. Transport failures are
// reported as unavailable so the tick is skipped and the next one redials.
func (c *Client) GameState(ctx context.Context) (core.GameState, error) {
	reply, err := c.roundTrip(ctx, TypeObserve, nil)
	if err != nil {
		if errors.Is(err, autopilot.ErrUnavailable) {
			return core.GameState{}, err
		}
		return core.GameState{}, fmt.Errorf("%w: %w", autopilot.ErrUnavailable, err)
	}
	if reply.Type != TypeState {
		return core.GameState{}, fmt.Errorf("remote: unexpected %s reply to observe", reply.Type)
	}

	var st StatePayload
	if err := reply.Decode(&st); err != nil {
		return core.GameState{}, err
	}
	return st.GameState(), nil
}

// SendDirection implements autopilot.ActuatorSink.
func (c *Client) SendDirection(ctx context.Context, d core.Direction) error {
	_, err := c.roundTrip(ctx, TypeMove, MovePayload{Direction: d})
	return err
}

// Begin implements autopilot.Session.
func (c *Client) Begin(ctx context.Context) error {
	if _, err := c.roundTrip(ctx, TypeStart, nil); err != nil {
		return err
	}
	c.begun = true
	return nil
}

// Reenter implements autopilot.Session.
func (c *Client) Reenter(ctx context.Context) error {
	_, err := c.roundTrip(ctx, TypeRestart, nil)
	return err
}

// Close sends a close frame and releases the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.timeout))
	err := c.conn.Close()
	c.conn = nil
	return err
}
