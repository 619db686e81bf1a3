package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/registry"
	"github.com/vovakirdan/snake-autopilot/internal/remote"
)

const userAgent = "snake-autopilot/1.0"

func init() {
	registry.Register("page", "HTML board page", func(opts registry.Options) (autopilot.Driver, error) {
		return NewDriver(opts.URL, opts.Bounds.W, opts.Timeout, opts.Logger)
	})
}

// Driver plays the board page served at a base URL: it reads GET /board,
// presses keys with POST /key, and starts games with POST /start and
// POST /restart.
type Driver struct {
	base   string
	width  int
	client *http.Client
	logger *log.Logger
}

// NewDriver creates a page driver. A width of 0 reads it from the page.
func NewDriver(baseURL string, width int, timeout time.Duration, logger *log.Logger) (*Driver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("scrape: invalid url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("scrape: unsupported url scheme %q", u.Scheme)
	}
	if timeout <= 0 {
		timeout = remote.DefaultTimeout
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Driver{
		base:   strings.TrimSuffix(u.String(), "/"),
		width:  width,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// GameState implements autopilot.PerceptionSource.
func (d *Driver) GameState(ctx context.Context) (core.GameState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.base+"/board", nil)
	if err != nil {
		return core.GameState{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return core.GameState{}, fmt.Errorf("scrape: %w: %w", autopilot.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return core.GameState{}, fmt.Errorf("scrape: unexpected status code %d: %w",
			resp.StatusCode, autopilot.ErrUnavailable)
	}
	return ParseBoard(resp.Body, d.width)
}

// SendDirection implements autopilot.ActuatorSink with an arrow key press.
func (d *Driver) SendDirection(ctx context.Context, dir core.Direction) error {
	return d.post(ctx, "/key", url.Values{"key": {remote.KeyForDirection(dir)}})
}

// Begin implements autopilot.Session.
func (d *Driver) Begin(ctx context.Context) error {
	return d.post(ctx, "/start", nil)
}

// Reenter implements autopilot.Session.
func (d *Driver) Reenter(ctx context.Context) error {
	return d.post(ctx, "/restart", nil)
}

// Close releases idle connections.
func (d *Driver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}

func (d *Driver) post(ctx context.Context, path string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("scrape: POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("scrape: POST %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	d.logger.Debug("posted", "path", path, "form", form.Encode())
	return nil
}
