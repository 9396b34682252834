package diagram

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/observability"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/topology"
	"github.com/matzehuels/topoview/pkg/visual"
)

var fixtures = topology.FileSource{Path: "testdata"}

type recordingCamera struct {
	fits chan *visual.Graph
}

func (c *recordingCamera) Fit(g *visual.Graph) { c.fits <- g }

type recordingHooks struct {
	observability.NoopDiagramHooks
	mu          sync.Mutex
	transitions []string
	stale       int
}

func (h *recordingHooks) OnStateChange(_ context.Context, from, to string) {
	h.mu.Lock()
	h.transitions = append(h.transitions, from+">"+to)
	h.mu.Unlock()
}

func (h *recordingHooks) OnStaleResult(context.Context, uint64) {
	h.mu.Lock()
	h.stale++
	h.mu.Unlock()
}

func TestLoadDetailScenario(t *testing.T) {
	ctx := context.Background()
	cam := &recordingCamera{fits: make(chan *visual.Graph, 4)}
	c := New(Options{Fetcher: fixtures, Mode: projection.ModeDetail, Camera: cam, FitDelay: 5 * time.Millisecond})
	defer c.Close()

	if got := c.Status(); got != StatusEmpty {
		t.Fatalf("initial status = %s, want %s", got, StatusEmpty)
	}
	if err := c.Load(ctx, scene.NewRequest("vm-42")); err != nil {
		t.Fatalf("Load: %v", err)
	}

	v := c.View()
	if v.State != StateReady || v.Status != StatusReady {
		t.Fatalf("state/status = %s/%s", v.State, v.Status)
	}
	g := v.Result.Graph
	if len(g.Nodes) != 11 || len(g.Edges) != 11 {
		t.Fatalf("got %d nodes %d edges, want 11/11", len(g.Nodes), len(g.Edges))
	}
	if v.Result.Direction != visual.DirectionLR {
		t.Errorf("direction = %s, want LR for more than ten nodes", v.Result.Direction)
	}
	if !g.Positioned() {
		t.Error("every node should be positioned")
	}

	animated := 0
	for _, e := range g.Edges {
		if e.Animated {
			animated++
			if e.Synthetic {
				t.Errorf("synthetic edge %s is animated", e.ID)
			}
		}
	}
	if animated != 1 {
		t.Errorf("animated edges = %d, want 1 (the hosting relation)", animated)
	}

	select {
	case fitted := <-cam.fits:
		if len(fitted.Nodes) != 11 {
			t.Errorf("camera saw %d nodes", len(fitted.Nodes))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("camera was never fitted")
	}
}

func TestSetModeRecomputes(t *testing.T) {
	ctx := context.Background()
	c := New(Options{Fetcher: fixtures})
	if err := c.Load(ctx, scene.NewRequest("vm-42")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if n := len(c.View().Result.Graph.Nodes); n != 3 {
		t.Fatalf("summary nodes = %d, want 3", n)
	}
	if err := c.MoveNode("vm-42", visual.Position{X: 999, Y: 999}); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}

	if err := c.SetMode(ctx, projection.ModeDetail); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	v := c.View()
	if n := len(v.Result.Graph.Nodes); n != 11 {
		t.Fatalf("detail nodes = %d, want 11", n)
	}
	if n, _ := v.Result.Graph.Node("vm-42"); n.Position.X == 999 {
		t.Error("manual position should be dropped on recompute")
	}

	if err := c.SetDirection(ctx, visual.DirectionTB); err != nil {
		t.Fatalf("SetDirection: %v", err)
	}
	if d := c.View().Result.Direction; d != visual.DirectionTB {
		t.Errorf("direction = %s, want TB", d)
	}
}

func TestSetModeBeforeLoad(t *testing.T) {
	c := New(Options{Fetcher: fixtures})
	if err := c.SetMode(context.Background(), projection.ModeDetail); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if c.State() != StateIdle {
		t.Errorf("state = %s, want idle", c.State())
	}
	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatal(err)
	}
	if n := len(c.View().Result.Graph.Nodes); n != 11 {
		t.Errorf("mode set before load should apply, got %d nodes", n)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantErr    bool
		wantState  State
		wantStatus Status
	}{
		{"missing", "vm-404", true, StateError, StatusError},
		{"malformed", "broken", false, StateReady, StatusEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(Options{Fetcher: fixtures})
			err := c.Load(context.Background(), scene.NewRequest(tt.id))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load error = %v, wantErr %v", err, tt.wantErr)
			}
			if c.State() != tt.wantState || c.Status() != tt.wantStatus {
				t.Errorf("state/status = %s/%s, want %s/%s", c.State(), c.Status(), tt.wantState, tt.wantStatus)
			}
			if tt.wantErr && c.View().Error == "" {
				t.Error("view should carry the error message")
			}
		})
	}
}

func TestLoadRecoversFromError(t *testing.T) {
	ctx := context.Background()
	c := New(Options{Fetcher: fixtures})
	_ = c.Load(ctx, scene.NewRequest("vm-404"))
	if err := c.Load(ctx, scene.NewRequest("vm-42")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.State() != StateReady || c.Err() != nil {
		t.Errorf("state = %s err = %v", c.State(), c.Err())
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetDiagramHooks(hooks)
	defer observability.Reset()

	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := FetcherFunc(func(ctx context.Context, req scene.Request) (*scene.Graph, error) {
		if req.StartID == "slow" {
			close(started)
			<-release
			return &scene.Graph{
				Nodes: []scene.Entity{{ID: "slow", Type: scene.KindVM}},
				Edges: []scene.Relation{},
			}, nil
		}
		return fixtures.Fetch(ctx, req)
	})
	c := New(Options{Fetcher: fetcher})

	slowErr := make(chan error, 1)
	go func() { slowErr <- c.Load(context.Background(), scene.NewRequest("slow")) }()
	<-started

	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatalf("Load: %v", err)
	}
	close(release)

	if err := <-slowErr; !stderrors.Is(err, ErrStale) {
		t.Fatalf("slow Load error = %v, want ErrStale", err)
	}
	v := c.View()
	if _, ok := v.Result.Graph.Node("vm-42"); !ok {
		t.Error("newer result should win")
	}
	if _, ok := v.Result.Graph.Node("slow"); ok {
		t.Error("stale result should be discarded")
	}
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if hooks.stale != 1 {
		t.Errorf("stale hook fired %d times", hooks.stale)
	}
	if len(hooks.transitions) == 0 || hooks.transitions[0] != "idle>fetching" {
		t.Errorf("transitions = %v", hooks.transitions)
	}
}

func TestSelect(t *testing.T) {
	c := New(Options{Fetcher: fixtures})
	if _, err := c.Select("vm-42"); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Select before load: %v", err)
	}
	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatal(err)
	}

	n, err := c.Select("ds-prod-01")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	p, ok := n.Payload.(visual.DatastorePayload)
	if !ok {
		t.Fatalf("payload = %T, want DatastorePayload", n.Payload)
	}
	if p.Utilization != "75.0%" {
		t.Errorf("utilization = %q", p.Utilization)
	}
	if c.View().Selected != "ds-prod-01" {
		t.Error("selection not recorded")
	}

	if _, err := c.Select("nope"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Select unknown: %v", err)
	}
	if _, err := c.Select(""); err != nil || c.View().Selected != "" {
		t.Error("empty id should clear the selection")
	}
}

func TestLockedMove(t *testing.T) {
	c := New(Options{Fetcher: fixtures})
	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatal(err)
	}
	c.SetLocked(true)
	if err := c.MoveNode("vm-42", visual.Position{X: 1, Y: 2}); err != ErrLocked {
		t.Fatalf("MoveNode while locked = %v", err)
	}
	c.SetLocked(false)
	if err := c.MoveNode("vm-42", visual.Position{X: 1, Y: 2}); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	n, _ := c.View().Result.Graph.Node("vm-42")
	if n.Position.X != 1 || n.Position.Y != 2 {
		t.Errorf("position = %+v", n.Position)
	}
	if err := c.MoveNode("nope", visual.Position{}); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("MoveNode unknown: %v", err)
	}
}

func TestReload(t *testing.T) {
	c := New(Options{Fetcher: fixtures})
	if err := c.Reload(context.Background()); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Reload before Load: %v", err)
	}
	if err := c.Load(context.Background(), scene.NewRequest("vm-42")); err != nil {
		t.Fatal(err)
	}
	if err := c.Reload(context.Background()); err != nil {
		t.Errorf("Reload: %v", err)
	}
}
