package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topoview/pkg/diagram"
	"github.com/matzehuels/topoview/pkg/errors"
	"github.com/matzehuels/topoview/pkg/projection"
	"github.com/matzehuels/topoview/pkg/scene"
	"github.com/matzehuels/topoview/pkg/visual"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	panelStyle        = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

type exploreOpts struct {
	file      string
	explode   bool
	direction string
	noCache   bool
	req       requestFlags
}

func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore <vm-id>",
		Short: "Browse the topology of a VM in the terminal",
		Long: `Explore loads the diagram of a VM and lists its nodes. Select a node to
see its details, filter by label or type, switch between summary and detail
mode, change the flow direction, and reload.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], &opts)
		},
	}

	cmd.ValidArgsFunction = completeVMIDs

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read scene graphs from a file or directory")
	cmd.Flags().BoolVarP(&opts.explode, "explode", "e", false, "start in detail mode")
	cmd.Flags().StringVarP(&opts.direction, "direction", "d", "", "initial flow direction: TB, LR or auto")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "recompute layouts even if cached")
	opts.req.register(cmd)

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, vmID string, opts *exploreOpts) error {
	req, err := opts.req.build(c.cfg, vmID)
	if err != nil {
		return err
	}
	fetcher, err := c.newFetcher(opts.file)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	dir, err := c.direction(opts.direction)
	if err != nil {
		return err
	}
	mode := c.cfg.Mode()
	if opts.explode {
		mode = projection.ModeDetail
	}

	cam := &programCamera{}
	ctrl := diagram.New(diagram.Options{
		Fetcher:   fetcher,
		Runner:    runner,
		Mode:      mode,
		Direction: dir,
		Camera:    cam,
		FitDelay:  c.cfg.Diagram.FitDelay,
		Logger:    c.Logger,
	})
	defer ctrl.Close()

	// The TUI owns the terminal; silence the logger while it runs.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(log.FatalLevel)
	defer c.Logger.SetLevel(level)

	p := tea.NewProgram(NewExplorerModel(ctx, ctrl, req), tea.WithAltScreen(), tea.WithContext(ctx))
	cam.send = p.Send
	_, err = p.Run()
	return err
}

// =============================================================================
// Camera
// =============================================================================

// fitMsg asks the explorer to bring the main node into view.
type fitMsg struct{}

// programCamera forwards camera fits to a running program.
type programCamera struct {
	send func(tea.Msg)
}

func (c *programCamera) Fit(*visual.Graph) {
	if c.send != nil {
		c.send(fitMsg{})
	}
}

// =============================================================================
// ExplorerModel
// =============================================================================

type loadedMsg struct{ err error }

// ExplorerModel is the bubbletea model of the explore command.
type ExplorerModel struct {
	ctx  context.Context
	ctrl *diagram.Controller
	req  scene.Request

	view      diagram.View
	cursor    int
	offset    int
	height    int
	filtering bool
	detail    *visual.Node
	message   string
}

// NewExplorerModel creates a model that loads req on start.
func NewExplorerModel(ctx context.Context, ctrl *diagram.Controller, req scene.Request) ExplorerModel {
	return ExplorerModel{
		ctx:    ctx,
		ctrl:   ctrl,
		req:    req,
		view:   ctrl.View(),
		height: 15,
	}
}

func (m ExplorerModel) Init() tea.Cmd {
	return m.load(false)
}

func (m ExplorerModel) load(reload bool) tea.Cmd {
	ctx, ctrl, req := m.ctx, m.ctrl, m.req
	return func() tea.Msg {
		if reload {
			return loadedMsg{err: ctrl.Reload(ctx)}
		}
		return loadedMsg{err: ctrl.Load(ctx, req)}
	}
}

func (m ExplorerModel) nodes() []visual.Node {
	if m.view.Result == nil {
		return nil
	}
	return m.view.Result.Graph.Nodes
}

// refresh takes a new snapshot and keeps the cursor in range.
func (m *ExplorerModel) refresh() {
	m.view = m.ctrl.View()
	n := len(m.nodes())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *ExplorerModel) moveCursor(delta int) {
	n := len(m.nodes())
	if n == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), n-1)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m ExplorerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.message = ""
		if msg.err != nil && !stderrors.Is(msg.err, diagram.ErrStale) {
			m.message = errors.UserMessage(msg.err)
		}
		m.detail = nil
		m.refresh()
	case fitMsg:
		m.refresh()
		m.cursor, m.offset = 0, 0
		for i, n := range m.nodes() {
			if n.Main {
				m.cursor = i
				m.moveCursor(0)
				break
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-12, 5)
	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg), nil
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m ExplorerModel) updateFilter(msg tea.KeyMsg) ExplorerModel {
	text := m.view.Filter
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.filtering = false
		return m
	case tea.KeyBackspace:
		if r := []rune(text); len(r) > 0 {
			text = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		text += string(msg.Runes)
	default:
		return m
	}
	m.ctrl.SetFilter(text)
	m.cursor, m.offset = 0, 0
	m.refresh()
	// SetFilter trims; keep a trailing space the user is still typing.
	m.view.Filter = text
	return m
}

func (m ExplorerModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.message = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "/":
		m.filtering = true
	case "esc":
		m.detail = nil
		_, _ = m.ctrl.Select("")
		m.refresh()
	case "enter":
		nodes := m.nodes()
		if len(nodes) == 0 {
			return m, nil
		}
		n, err := m.ctrl.Select(nodes[m.cursor].ID)
		if err != nil {
			m.message = errors.UserMessage(err)
			return m, nil
		}
		m.detail = n
		m.refresh()
	case "e":
		next := projection.ModeDetail
		if m.view.Mode == projection.ModeDetail {
			next = projection.ModeSummary
		}
		m.setView(m.ctrl.SetMode(m.ctx, next))
	case "d":
		m.setView(m.ctrl.SetDirection(m.ctx, nextDirection(m.view.Direction)))
	case "l":
		m.ctrl.SetLocked(!m.view.Locked)
		m.refresh()
	case "r":
		m.view.State = diagram.StateFetching
		m.view.Status = diagram.StatusLoading
		return m, m.load(true)
	}
	return m, nil
}

func (m *ExplorerModel) setView(err error) {
	if err != nil {
		m.message = errors.UserMessage(err)
	}
	m.detail = nil
	m.refresh()
}

// nextDirection cycles auto, TB, LR.
func nextDirection(d visual.Direction) visual.Direction {
	switch d {
	case visual.DirectionAuto:
		return visual.DirectionTB
	case visual.DirectionTB:
		return visual.DirectionLR
	default:
		return visual.DirectionAuto
	}
}

func (m ExplorerModel) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  / filter  e mode  d direction  l lock  r reload  q quit"))
	b.WriteString("\n\n")

	switch m.view.Status {
	case diagram.StatusLoading:
		b.WriteString(StyleDim.Render("Loading " + m.req.StartID + "..."))
		b.WriteString("\n")
		return b.String()
	case diagram.StatusError:
		b.WriteString(styleIconError.Render(iconError) + " " + m.view.Error)
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("press r to retry"))
		return b.String()
	case diagram.StatusEmpty:
		b.WriteString(StyleDim.Render("Nothing to show for " + m.req.StartID))
		b.WriteString("\n")
		return b.String()
	}

	if m.filtering || m.view.Filter != "" {
		prompt := "/" + m.view.Filter
		if m.filtering {
			prompt += "█"
		}
		b.WriteString(StyleHighlight.Render(prompt))
		b.WriteString("\n")
	}

	b.WriteString(m.table())
	b.WriteString("\n")

	if m.detail != nil {
		b.WriteString(renderDetail(m.detail))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(StyleWarning.Render(m.message))
		b.WriteString("\n")
	}
	return b.String()
}

func (m ExplorerModel) header() string {
	parts := []string{StyleTitle.Render("topoview"), StyleValue.Render(m.req.StartID), string(m.view.Mode)}
	if m.view.Result != nil {
		dir := string(m.view.Result.Direction)
		if m.view.Direction == visual.DirectionAuto {
			dir += " (auto)"
		}
		parts = append(parts, dir)
	}
	if m.view.Locked {
		parts = append(parts, StyleWarning.Render("locked"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func (m ExplorerModel) table() string {
	nodes := m.nodes()
	end := min(m.offset+m.height, len(nodes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		label := n.Label
		if n.Main {
			label += " ★"
		}
		rows = append(rows, []string{cursor, label, n.Type, string(n.Kind), n.ParentID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Label", "Type", "Kind", "Parent").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.offset + row
			switch {
			case idx == m.cursor:
				return listSelectedStyle
			case idx < len(nodes) && nodes[idx].ID == m.view.Selected:
				return StyleSuccess
			case idx < len(nodes) && nodes[idx].IsSubComponent():
				return listDimStyle
			default:
				return listNormalStyle
			}
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(StyleNumber.Render(fmt.Sprintf("  [%d/%d]", min(m.cursor+1, len(nodes)), len(nodes))))
	return b.String()
}

// renderDetail draws the payload fields of a node.
func renderDetail(n *visual.Node) string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render(n.Label))
	b.WriteString(StyleDim.Render("  " + n.Type))
	if n.Status != "" {
		b.WriteString(StyleDim.Render(" · " + n.Status))
	}
	if n.Payload != nil {
		keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(18)
		for _, f := range n.Payload.Fields() {
			b.WriteString("\n")
			b.WriteString(keyStyle.Render(f.Name) + " " + StyleValue.Render(f.Value))
		}
	}
	return panelStyle.Render(b.String())
}
