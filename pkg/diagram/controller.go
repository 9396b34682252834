package diagram

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/layout"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/pipeline"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// State is the lifecycle state of a controller.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateReady    State = "ready"
	StateError    State = "error"
)

// Status is what a view should display.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

// DefaultFitDelay is how long after a recompute the camera is fitted.
const DefaultFitDelay = 100 * time.Millisecond

var (
	// ErrLocked is returned by MoveNode while the diagram is locked.
	ErrLocked = errors.New(errors.ErrCodeLocked, "diagram is locked")

	// ErrStale is returned by Load when a newer Load superseded it.
	ErrStale = stderrors.New("superseded by a newer request")
)

// Fetcher retrieves the scene graph for a request.
type Fetcher interface {
	Fetch(ctx context.Context, req scene.Request) (*scene.Graph, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, req scene.Request) (*scene.Graph, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req scene.Request) (*scene.Graph, error) {
	return f(ctx, req)
}

// Camera frames a freshly laid out graph.
type Camera interface {
	Fit(g *visual.Graph)
}

// Options configures [New].
type Options struct {
	Fetcher   Fetcher
	Runner    *pipeline.Runner
	Mode      projection.Mode
	Direction visual.Direction
	Camera    Camera
	FitDelay  time.Duration
	Logger    *log.Logger
}

// Controller is the diagram state machine.
type Controller struct {
	fetcher  Fetcher
	runner   *pipeline.Runner
	camera   Camera
	fitDelay time.Duration
	logger   *log.Logger

	mu        sync.Mutex
	state     State
	err       error
	token     uint64
	req       scene.Request
	scene     *scene.Graph
	mode      projection.Mode
	direction visual.Direction
	result    *layout.Result
	selected  string
	filter    string
	locked    bool
	fitTimer  *time.Timer
}

// New creates an idle controller.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Mode == "" {
		opts.Mode = projection.ModeSummary
	}
	if opts.Direction == "" {
		opts.Direction = visual.DirectionAuto
	}
	if opts.FitDelay <= 0 {
		opts.FitDelay = DefaultFitDelay
	}
	return &Controller{
		fetcher:   opts.Fetcher,
		runner:    opts.Runner,
		camera:    opts.Camera,
		fitDelay:  opts.FitDelay,
		logger:    opts.Logger,
		state:     StateIdle,
		mode:      opts.Mode,
		direction: opts.Direction,
	}
}

// Load fetches the scene graph for req and recomputes the diagram.
//
// Retrieval failures move the controller to Error and are returned. A
// response that cannot be decoded is not a retrieval failure: the diagram
// becomes Ready and empty. If another Load starts before this one's fetch
// returns, the result is dropped and ErrStale is returned.
func (c *Controller) Load(ctx context.Context, req scene.Request) error {
	if c.fetcher == nil {
		return errors.New(errors.ErrCodeInvalidState, "no scene source configured")
	}

	c.mu.Lock()
	c.token++
	token := c.token
	c.req = req
	c.setState(ctx, StateFetching)
	c.mu.Unlock()

	g, err := c.fetcher.Fetch(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.token {
		c.logger.Debug("discarding stale scene graph", "token", token, "current", c.token)
		observability.Diagram().OnStaleResult(ctx, token)
		return ErrStale
	}

	if err != nil {
		if !errors.Is(err, errors.ErrCodeMalformedPayload) {
			c.err = err
			c.setState(ctx, StateError)
			c.logger.Error("scene graph retrieval failed", "start", req.StartID, "err", err)
			return err
		}
		c.logger.Error("scene graph payload is malformed", "start", req.StartID, "err", err)
		g = nil
	}

	c.scene = g
	c.selected = ""
	if err := c.recompute(ctx); err != nil {
		c.err = err
		c.setState(ctx, StateError)
		return err
	}
	return nil
}

// Reload reissues the last request.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	req := c.req
	c.mu.Unlock()
	if req.StartID == "" {
		return errors.New(errors.ErrCodeInvalidState, "nothing loaded yet")
	}
	return c.Load(ctx, req)
}

// SetMode switches between summary and detail projection. When Ready the
// diagram is recomputed at once and manual positions are dropped.
func (c *Controller) SetMode(ctx context.Context, m projection.Mode) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = m
	if c.state != StateReady {
		return nil
	}
	return c.recompute(ctx)
}

// SetDirection changes the flow direction, recomputing like SetMode.
func (c *Controller) SetDirection(ctx context.Context, d visual.Direction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direction = d
	if c.state != StateReady {
		return nil
	}
	return c.recompute(ctx)
}

// recompute rebuilds the positioned graph from the scene graph. c.mu must
// be held.
func (c *Controller) recompute(ctx context.Context) error {
	res, err := c.runner.Execute(ctx, c.scene, pipeline.Options{
		Mode:      c.mode,
		Direction: c.direction,
		MainID:    c.req.StartID,
		Logger:    c.logger,
	})
	if err != nil {
		return err
	}
	c.result = res.Result
	c.err = nil
	if c.selected != "" {
		if _, ok := c.result.Graph.Node(c.selected); !ok {
			c.selected = ""
		}
	}
	c.setState(ctx, StateReady)
	c.scheduleFit()
	return nil
}

// scheduleFit arms the camera timer, replacing any pending one. c.mu must
// be held.
func (c *Controller) scheduleFit() {
	if c.camera == nil {
		return
	}
	if c.fitTimer != nil {
		c.fitTimer.Stop()
	}
	c.fitTimer = time.AfterFunc(c.fitDelay, func() {
		c.mu.Lock()
		var g *visual.Graph
		if c.result != nil {
			g = c.result.Graph.Clone()
		}
		c.mu.Unlock()
		if g != nil {
			c.camera.Fit(g)
		}
	})
}

func (c *Controller) setState(ctx context.Context, s State) {
	if c.state == s {
		return
	}
	observability.Diagram().OnStateChange(ctx, string(c.state), string(s))
	c.state = s
}

// Select marks a node as selected and returns a copy of it for a detail
// panel. An empty id clears the selection.
func (c *Controller) Select(id string) (*visual.Node, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		c.selected = ""
		return nil, nil
	}
	if c.state != StateReady {
		return nil, errors.New(errors.ErrCodeInvalidState, "diagram is %s", c.state)
	}
	n, ok := c.result.Graph.Node(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeNodeNotFound, "node %q not in diagram", id)
	}
	c.selected = id
	cp := *n
	if n.Position != nil {
		p := *n.Position
		cp.Position = &p
	}
	return &cp, nil
}

// SetFilter sets the search text. It only affects View.
func (c *Controller) SetFilter(text string) {
	c.mu.Lock()
	c.filter = strings.TrimSpace(text)
	c.mu.Unlock()
}

// SetLocked enables or disables manual node moves.
func (c *Controller) SetLocked(locked bool) {
	c.mu.Lock()
	c.locked = locked
	c.mu.Unlock()
}

// MoveNode overrides a node's position until the next recompute.
func (c *Controller) MoveNode(id string, pos visual.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.locked {
		return ErrLocked
	}
	if c.state != StateReady {
		return errors.New(errors.ErrCodeInvalidState, "diagram is %s", c.state)
	}
	n, ok := c.result.Graph.Node(id)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q not in diagram", id)
	}
	n.Position = &visual.Position{X: pos.X, Y: pos.Y}
	return nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error that put the controller in Error, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close stops a pending camera fit.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fitTimer != nil {
		c.fitTimer.Stop()
		c.fitTimer = nil
	}
}
