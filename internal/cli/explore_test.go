package cli

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/topology"
	"github.com/matzehuels/topoview/pkg/visual"
)

func newTestExplorer(t *testing.T, vmID string) ExplorerModel {
	t.Helper()
	ctrl := diagram.New(diagram.Options{Fetcher: topology.FileSource{Path: "testdata"}})
	t.Cleanup(ctrl.Close)

	m := NewExplorerModel(context.Background(), ctrl, scene.NewRequest(vmID))
	msg := m.Init()()
	next, _ := m.Update(msg)
	return next.(ExplorerModel)
}

func press(t *testing.T, m ExplorerModel, keys ...string) ExplorerModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(ExplorerModel)
	}
	return m
}

func TestExplorerLoad(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	if m.view.Status != diagram.StatusReady {
		t.Fatalf("status = %s, want ready", m.view.Status)
	}
	if got := len(m.nodes()); got != 3 {
		t.Errorf("nodes = %d, want 3", got)
	}
	out := m.View()
	for _, want := range []string{"app-prod-42", "esx-prod-07", "summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExplorerLoadFailure(t *testing.T) {
	m := newTestExplorer(t, "vm-missing")

	if m.view.Status != diagram.StatusError {
		t.Fatalf("status = %s, want error", m.view.Status)
	}
	if !strings.Contains(m.View(), "press r to retry") {
		t.Error("error view should offer a retry")
	}
}

func TestExplorerNavigation(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	m = press(t, m, "j", "j", "j", "j")
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", m.cursor)
	}
	m = press(t, m, "k")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestExplorerSelect(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	id := m.nodes()[m.cursor].ID
	m = press(t, m, "enter")
	if m.detail == nil || m.detail.ID != id {
		t.Fatalf("detail = %v, want %s", m.detail, id)
	}
	if m.view.Selected != id {
		t.Errorf("selected = %q, want %q", m.view.Selected, id)
	}

	m = press(t, m, "esc")
	if m.detail != nil || m.view.Selected != "" {
		t.Error("esc should clear the selection")
	}
}

func TestExplorerFilter(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	m = press(t, m, "/", "E", "S", "X")
	if !m.filtering {
		t.Fatal("expected filter mode")
	}
	if got := len(m.nodes()); got != 1 {
		t.Fatalf("filtered nodes = %d, want 1", got)
	}
	if m.nodes()[0].ID != "host-7" {
		t.Errorf("filtered node = %s, want host-7", m.nodes()[0].ID)
	}

	// Keys are text while filtering.
	m = press(t, m, "q")
	if m.view.Filter != "ESXq" {
		t.Errorf("filter = %q, want ESXq", m.view.Filter)
	}

	m = press(t, m, "backspace", "backspace", "backspace", "backspace", "enter")
	if m.filtering {
		t.Error("enter should leave filter mode")
	}
	if got := len(m.nodes()); got != 3 {
		t.Errorf("nodes after clearing filter = %d, want 3", got)
	}
}

func TestExplorerModeAndDirection(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	m = press(t, m, "e")
	if m.view.Mode != projection.ModeDetail {
		t.Fatalf("mode = %s, want detail", m.view.Mode)
	}
	if got := len(m.nodes()); got != 11 {
		t.Errorf("detail nodes = %d, want 11", got)
	}

	m = press(t, m, "d")
	if m.view.Direction != visual.DirectionTB || m.view.Result.Direction != visual.DirectionTB {
		t.Errorf("direction = %s/%s, want TB", m.view.Direction, m.view.Result.Direction)
	}

	m = press(t, m, "e")
	if m.view.Mode != projection.ModeSummary {
		t.Errorf("mode = %s, want summary", m.view.Mode)
	}
}

func TestExplorerLock(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	m = press(t, m, "l")
	if !m.view.Locked {
		t.Fatal("expected locked")
	}
	if !strings.Contains(m.View(), "locked") {
		t.Error("header should show the lock")
	}
	m = press(t, m, "l")
	if m.view.Locked {
		t.Error("expected unlocked")
	}
}

func TestExplorerReload(t *testing.T) {
	m := newTestExplorer(t, "vm-42")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(ExplorerModel)
	if m.view.Status != diagram.StatusLoading {
		t.Errorf("status = %s, want loading", m.view.Status)
	}
	if cmd == nil {
		t.Fatal("reload should return a command")
	}
	next, _ = m.Update(cmd())
	m = next.(ExplorerModel)
	if m.view.Status != diagram.StatusReady {
		t.Errorf("status after reload = %s, want ready", m.view.Status)
	}
}

func TestExplorerFitFocusesMain(t *testing.T) {
	m := newTestExplorer(t, "vm-42")
	m.cursor = 2

	next, _ := m.Update(fitMsg{})
	m = next.(ExplorerModel)
	if !m.nodes()[m.cursor].Main {
		t.Errorf("cursor on %s, want the main node", m.nodes()[m.cursor].ID)
	}
}

func TestNextDirection(t *testing.T) {
	tests := []struct {
		in, want visual.Direction
	}{
		{visual.DirectionAuto, visual.DirectionTB},
		{visual.DirectionTB, visual.DirectionLR},
		{visual.DirectionLR, visual.DirectionAuto},
	}
	for _, tt := range tests {
		if got := nextDirection(tt.in); got != tt.want {
			t.Errorf("nextDirection(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestCompleteVMIDs(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	cmd, _, err := root.Find([]string{"explore"})
	if err != nil {
		t.Fatal(err)
	}
	if err := cmd.Flags().Set("file", "testdata"); err != nil {
		t.Fatal(err)
	}

	ids, _ := completeVMIDs(cmd, nil, "vm")
	if len(ids) != 1 || ids[0] != "vm-42" {
		t.Errorf("completions = %v, want [vm-42]", ids)
	}
	if ids, _ := completeVMIDs(cmd, []string{"vm-42"}, ""); len(ids) != 0 {
		t.Errorf("second argument should not complete, got %v", ids)
	}
}
