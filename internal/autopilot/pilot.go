// Package autopilot drives the perceive -> decide -> act loop that plays a snake
// game through external collaborators. It owns the restart state machine and
// the score-stagnation game-over heuristic; the move decisions themselves come
// from the agent package.
package autopilot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snake-autopilot/internal/agent"
	"github.com/vovakirdan/snake-autopilot/internal/core"
)

var (
	// ErrUnavailable is returned (possibly wrapped) by a PerceptionSource when
	// the game surface cannot currently be read. The pilot skips the tick.
	ErrUnavailable = errors.New("autopilot: game state unavailable")

	// ErrActuationFailed is wrapped by Run when actuation kept failing.
	ErrActuationFailed = errors.New("autopilot: actuation failed")
)

// PerceptionSource yields a structured snapshot of the game.
type PerceptionSource interface {
	GameState(ctx context.Context) (core.GameState, error)
}

// ActuatorSink dispatches one direction command to the game.
// It is fire-and-forget and applies at most one discrete move per call.
type ActuatorSink interface {
	SendDirection(ctx context.Context, d core.Direction) error
}

// Session performs the collaborator-specific actions that enter a game.
type Session interface {
	// Begin starts or resumes a game.
	Begin(ctx context.Context) error
	// Reenter leaves a finished game so that Begin can start a new one.
	Reenter(ctx context.Context) error
	// Close releases external resources.
	Close() error
}

// Driver bundles every collaborator the pilot needs.
type Driver interface {
	PerceptionSource
	ActuatorSink
	Session
}

// Phase is the pilot's lifecycle state.
type Phase int

const (
	PhaseStarting Phase = iota
	PhaseRunning
	PhaseRestarting
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseRestarting:
		return "restarting"
	default:
		return "unknown"
	}
}

// Options configures a Pilot.
type Options struct {
	Bounds           core.Bounds
	InitialHead      core.Position
	InitialDirection core.Direction
	TickInterval     time.Duration // Pause between running ticks (0 = no pause)

	// StagnationTicks is how many consecutive ticks with an issued move and an
	// unchanged score are read as game over. 1 reproduces a single-tick trigger.
	StagnationTicks int

	// MaxActuationFailures is how many consecutive collaborator failures
	// (send, begin or reenter) stop the loop.
	MaxActuationFailures int

	// MaxGames stops the pilot after that many games have ended (0 = unlimited).
	MaxGames int

	Logger   *log.Logger
	Observer Observer
}

// DefaultOptions returns options for the classic 21x15 field.
func DefaultOptions() Options {
	return Options{
		Bounds:               core.NewBounds(21, 15),
		InitialHead:          core.Pos(10, 2),
		InitialDirection:     agent.DefaultDirection,
		TickInterval:         50 * time.Millisecond,
		StagnationTicks:      1,
		MaxActuationFailures: 5,
	}
}

// Pilot runs the control loop. All mutable state is owned by the goroutine
// that calls Run; only Stop may be called concurrently.
type Pilot struct {
	opts   Options
	driver Driver
	logger *log.Logger
	pf     *agent.PathFinder
	steer  *agent.Steering

	phase     Phase
	head      core.Position
	lastScore int
	moved     bool // A direction was sent on the previous running tick
	stagnant  int
	failures  int
	tick      uint64
	done      bool

	game      int
	gameStart time.Time
	gameTicks int
	moves     int
	fallbacks int
	holds     int

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a pilot for the given driver.
func New(driver Driver, opts Options) *Pilot {
	if opts.StagnationTicks <= 0 {
		opts.StagnationTicks = 1
	}
	if opts.MaxActuationFailures <= 0 {
		opts.MaxActuationFailures = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Pilot{
		opts:   opts,
		driver: driver,
		logger: logger,
		pf:     agent.NewPathFinder(opts.Bounds),
		steer:  agent.NewSteering(opts.InitialDirection),
		phase:  PhaseStarting,
		head:   opts.InitialHead,
		stop:   make(chan struct{}),
	}
}

// Phase returns the current lifecycle phase.
func (p *Pilot) Phase() Phase {
	return p.phase
}

// Direction returns the last committed direction.
func (p *Pilot) Direction() core.Direction {
	return p.steer.Current()
}

// Head returns the tracked head position.
func (p *Pilot) Head() core.Position {
	return p.head
}

// Stop asks the loop to terminate. It is safe to call more than once and from
// any goroutine; a pending inter-tick pause is interrupted.
func (p *Pilot) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

func (p *Pilot) stopped(ctx context.Context) bool {
	select {
	case <-p.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return p.done
	}
}

// Run drives the loop until Stop is called, ctx is cancelled, MaxGames is
// reached, or actuation fails too often. The driver is closed on return.
// Stopping is not an error; only a fatal actuation failure is reported.
func (p *Pilot) Run(ctx context.Context) error {
	defer func() {
		if p.phase == PhaseRunning {
			p.endGame(EndReasonStopped)
		}
		if cerr := p.driver.Close(); cerr != nil {
			p.logger.Warn("closing driver", "error", cerr)
		}
	}()

	p.logger.Info("autopilot started",
		"grid", fmt.Sprintf("%dx%d", p.opts.Bounds.W, p.opts.Bounds.H),
		"head", p.opts.InitialHead,
		"interval", p.opts.TickInterval,
		"stagnation", p.opts.StagnationTicks,
	)

	for !p.stopped(ctx) {
		ran := p.phase == PhaseRunning
		if err := p.step(ctx); err != nil {
			p.logger.Error("autopilot stopped", "error", err)
			return err
		}
		// Failed begin/reenter attempts are paced like ticks.
		if (ran || p.failures > 0) && !p.wait(ctx, p.opts.TickInterval) {
			break
		}
	}

	p.logger.Info("autopilot stopped", "games", p.game, "ticks", p.tick)
	return nil
}

// wait pauses between ticks. Returns false if the pause was interrupted.
func (p *Pilot) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-p.stop:
		return false
	case <-t.C:
		return true
	}
}

// step performs one unit of work for the current phase.
func (p *Pilot) step(ctx context.Context) error {
	switch p.phase {
	case PhaseStarting:
		return p.begin(ctx)
	case PhaseRestarting:
		return p.reenter(ctx)
	default:
		return p.runTick(ctx)
	}
}

func (p *Pilot) begin(ctx context.Context) error {
	if err := p.driver.Begin(ctx); err != nil {
		return p.collaboratorFailed("begin", err)
	}
	p.failures = 0

	p.head = p.opts.InitialHead
	p.steer.Reset(p.opts.InitialDirection)
	p.lastScore = 0
	p.moved = false
	p.stagnant = 0

	p.game++
	p.gameStart = time.Now()
	p.gameTicks = 0
	p.moves = 0
	p.fallbacks = 0
	p.holds = 0

	p.setPhase(PhaseRunning)
	return nil
}

func (p *Pilot) reenter(ctx context.Context) error {
	if err := p.driver.Reenter(ctx); err != nil {
		return p.collaboratorFailed("reenter", err)
	}
	p.failures = 0
	p.setPhase(PhaseStarting)
	return nil
}

// runTick performs one perceive -> decide -> act cycle.
func (p *Pilot) runTick(ctx context.Context) error {
	p.tick++
	p.gameTicks++

	state, err := p.driver.GameState(ctx)
	if err == nil {
		err = state.Validate(p.opts.Bounds)
	}
	if err != nil {
		// Transient: hold direction, try again next tick.
		p.logger.Debug("perception skipped", "tick", p.tick, "error", err)
		p.emit(TickEvent{
			Tick:      p.tick,
			Game:      p.game,
			Head:      p.head,
			Direction: p.steer.Current(),
			Decision:  DecisionSkip,
			Err:       err,
		})
		return nil
	}

	if state.Over {
		p.lastScore = state.Score
		p.endGame(EndReasonGameOver)
		return nil
	}
	if p.moved && state.Score == p.lastScore {
		p.stagnant++
		if p.stagnant >= p.opts.StagnationTicks {
			p.logger.Info("score stagnant, assuming game over",
				"score", state.Score, "ticks", p.stagnant)
			p.endGame(EndReasonStagnation)
			return nil
		}
	} else {
		p.stagnant = 0
	}
	p.lastScore = state.Score

	if head, ok := state.Head(); ok {
		if head != p.head {
			p.logger.Debug("head drift", "predicted", p.head, "observed", head)
		}
		p.head = head
	}

	grid := agent.NewGrid(p.opts.Bounds, state)
	dir, decision, pathLen := p.decide(grid)

	ev := TickEvent{
		Tick:      p.tick,
		Game:      p.game,
		State:     state,
		Head:      p.head,
		Direction: dir,
		Decision:  decision,
		PathLen:   pathLen,
	}

	if err := p.driver.SendDirection(ctx, dir); err != nil {
		p.moved = false
		ev.Err = err
		p.emit(ev)
		return p.collaboratorFailed("send direction", err)
	}
	p.failures = 0
	p.moved = true
	p.moves++

	// The next snapshot is not available yet, so predict where the head went.
	p.head = p.head.Step(dir)

	p.emit(ev)
	return nil
}

// decide picks and commits the direction for this tick.
func (p *Pilot) decide(grid *agent.Grid) (core.Direction, Decision, int) {
	if food, ok := grid.Food(); ok {
		if path, found := p.pf.FindPath(grid, p.head, food); found && len(path) > 0 {
			if dir, ok := p.steer.Steer(p.head, path[0]); ok {
				return dir, DecisionPath, len(path)
			}
			// The shortest path starts by reversing; treat it as no path.
			p.logger.Debug("path starts with a reversal", "head", p.head, "next", path[0])
		}
	}

	if next, _, ok := agent.SafeMove(grid, p.head, p.steer.Current()); ok {
		p.fallbacks++
		dir, _ := p.steer.Steer(p.head, next)
		return dir, DecisionFallback, 0
	}

	p.holds++
	p.logger.Warn("no safe move, holding direction",
		"head", p.head, "direction", p.steer.Current())
	return p.steer.Current(), DecisionHold, 0
}

// collaboratorFailed counts a failure and turns it fatal past the threshold.
func (p *Pilot) collaboratorFailed(op string, err error) error {
	p.failures++
	p.logger.Warn("collaborator failed", "op", op, "error", err,
		"failures", p.failures, "max", p.opts.MaxActuationFailures)
	if p.failures >= p.opts.MaxActuationFailures {
		return fmt.Errorf("%w: %s failed %d times in a row: %w",
			ErrActuationFailed, op, p.failures, err)
	}
	return nil
}

func (p *Pilot) endGame(reason EndReason) {
	p.emit(GameEndedEvent{
		Game:      p.game,
		Score:     p.lastScore,
		Ticks:     p.gameTicks,
		Moves:     p.moves,
		Fallbacks: p.fallbacks,
		Holds:     p.holds,
		Reason:    reason,
		StartedAt: p.gameStart,
		EndedAt:   time.Now(),
	})
	p.logger.Info("game ended", "game", p.game, "score", p.lastScore,
		"ticks", p.gameTicks, "reason", reason)

	p.setPhase(PhaseRestarting)
	if p.opts.MaxGames > 0 && p.game >= p.opts.MaxGames {
		p.done = true
	}
}

func (p *Pilot) setPhase(to Phase) {
	from := p.phase
	p.phase = to
	p.logger.Debug("phase", "from", from, "to", to, "game", p.game)
	p.emit(PhaseChangedEvent{From: from, To: to, Game: p.game})
}

func (p *Pilot) emit(e Event) {
	if p.opts.Observer != nil {
		p.opts.Observer.Observe(e)
	}
}
