package remote

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snake-autopilot/internal/autopilot"
	"github.com/vovakirdan/snake-autopilot/internal/core"
	"github.com/vovakirdan/snake-autopilot/internal/games/snake"
)

// ServerConfig holds configuration for the game server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// Game describes the simulated field.
	Game snake.Config

	// Seed seeds the page game. WebSocket connection n uses Seed + n*1000.
	Seed int64

	// IdleTimeout closes WebSocket connections that stay silent this long.
	IdleTimeout time.Duration
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:     ":8080",
		Game:        snake.DefaultConfig(),
		Seed:        1,
		IdleTimeout: 5 * time.Minute,
	}
}

// Server hosts snake games for remote drivers. Every WebSocket connection
// plays its own game; the HTML page endpoints share a single game.
type Server struct {
	config   ServerConfig
	logger   *log.Logger
	upgrader websocket.Upgrader
	server   *http.Server
	conns    atomic.Int64

	mu   sync.Mutex
	page *snake.Driver
}

// NewServer creates a game server. A nil logger discards output.
func NewServer(cfg ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultServerConfig().IdleTimeout
	}

	srv := &Server{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin
			},
		},
		page: snake.NewDriver(snake.New(cfg.Game), cfg.Seed),
	}
	srv.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /board", s.handleBoard)
	mux.HandleFunc("POST /key", s.handleKey)
	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /restart", s.handleRestart)
	return s.loggingMiddleware(mux)
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"took", time.Since(start),
		)
	})
}

// ListenAndServe starts the server and blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting game server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("remote: server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

// handleWebSocket runs one game per connection, answering each message in turn.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	id := s.conns.Add(1)
	game := snake.NewDriver(snake.New(s.config.Game), s.config.Seed+id*1000)
	s.logger.Info("player connected", "conn", id, "remote", r.RemoteAddr)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.config.IdleTimeout)); err != nil {
			return
		}

		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Info("player disconnected", "conn", id)
			} else {
				s.logger.Warn("read failed", "conn", id, "error", err)
			}
			return
		}

		reply := s.dispatch(r.Context(), game, env)
		if err := conn.WriteJSON(reply); err != nil {
			s.logger.Warn("write failed", "conn", id, "error", err)
			return
		}
	}
}

// dispatch applies one client message to a game and builds the reply.
func (s *Server) dispatch(ctx context.Context, game *snake.Driver, env Envelope) Envelope {
	switch env.Type {
	case TypeObserve:
		st, err := game.GameState(ctx)
		if err != nil {
			return s.errorReply(codeFor(err), err)
		}
		return s.stateReply(st)

	case TypeMove:
		var mv MovePayload
		if err := env.Decode(&mv); err != nil {
			return s.errorReply(CodeBadRequest, err)
		}
		if err := game.SendDirection(ctx, mv.Direction); err != nil {
			return s.errorReply(CodeConflict, err)
		}
		return s.stateReply(game.Game().State())

	case TypeStart:
		if err := game.Begin(ctx); err != nil {
			return s.errorReply(CodeConflict, err)
		}
		return s.stateReply(game.Game().State())

	case TypeRestart:
		if err := game.Reenter(ctx); err != nil {
			return s.errorReply(CodeConflict, err)
		}
		return s.stateReply(game.Game().State())

	default:
		return s.errorReply(CodeBadRequest, fmt.Errorf("unknown message type %q", env.Type))
	}
}

func (s *Server) stateReply(st core.GameState) Envelope {
	env, err := NewEnvelope(TypeState, NewStatePayload(st))
	if err != nil {
		return s.errorReply(CodeConflict, err)
	}
	return env
}

func (s *Server) errorReply(code string, err error) Envelope {
	env, encErr := NewEnvelope(TypeError, ErrorPayload{Code: code, Message: err.Error()})
	if encErr != nil {
		s.logger.Error("cannot encode error reply", "error", encErr)
		return Envelope{Type: TypeError}
	}
	return env
}

func codeFor(err error) string {
	if errors.Is(err, autopilot.ErrUnavailable) {
		return CodeUnavailable
	}
	return CodeConflict
}

// --- Page endpoints ---

var boardTemplate = template.Must(template.New("board").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Snake</title>
<style>
body { font-family: monospace; background: #111; color: #ddd; }
.board { display: grid; grid-template-columns: repeat({{.Width}}, 16px); gap: 1px; }
.cell { width: 16px; height: 16px; background: #222; }
.cell.snake { background: #3a3; }
.cell.head { background: #7f7; }
.cell.food { background: #e33; }
.board.over { opacity: 0.5; }
</style>
</head>
<body>
<p>Score: <span class="score">{{.Score}}</span></p>
<div class="board{{if .Over}} over{{end}}" data-width="{{.Width}}">
{{range .Cells}}<div class="cell{{if .}} {{.}}{{end}}"></div>
{{end}}</div>
</body>
</html>
`))

type boardView struct {
	Width int
	Score int
	Over  bool
	Cells []string
}

func newBoardView(b core.Bounds, st core.GameState) boardView {
	board := core.BoardOf(b, st)
	cells := make([]string, 0, b.Area())
	for _, c := range board.Cells() {
		switch c {
		case core.CellHead:
			cells = append(cells, "snake head")
		case core.CellBody, core.CellFood:
			cells = append(cells, c.String())
		default:
			cells = append(cells, "")
		}
	}
	return boardView{Width: b.W, Score: st.Score, Over: st.Over, Cells: cells}
}

// handleBoard renders the shared game as an HTML grid.
func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	view := newBoardView(s.config.Game.Bounds, s.page.Game().State())
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := boardTemplate.Execute(w, view); err != nil {
		s.logger.Warn("cannot render board", "error", err)
	}
}

// handleKey applies one arrow key press to the shared game.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	key := r.FormValue("key")
	dir, ok := DirectionForKey(key)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown key %q", key), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	err := s.page.SendDirection(r.Context(), dir)
	s.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.page.Begin(r.Context())
	s.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.page.Reenter(r.Context())
	s.mu.Unlock()

	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// KeyForDirection returns the DOM key name for an arrow key press.
func KeyForDirection(d core.Direction) string {
	switch d {
	case core.DirUp:
		return "ArrowUp"
	case core.DirDown:
		return "ArrowDown"
	case core.DirLeft:
		return "ArrowLeft"
	default:
		return "ArrowRight"
	}
}

// DirectionForKey maps a DOM arrow key name to a direction.
func DirectionForKey(key string) (core.Direction, bool) {
	switch key {
	case "ArrowUp":
		return core.DirUp, true
	case "ArrowDown":
		return core.DirDown, true
	case "ArrowLeft":
		return core.DirLeft, true
	case "ArrowRight":
		return core.DirRight, true
	}
	return core.DirUp, false
}
