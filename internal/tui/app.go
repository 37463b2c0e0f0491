package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mirador/internal/drag"
	"mirador/internal/outline"
	"mirador/internal/store"
)

// The terminal has one mouse; every pointer event carries this id.
const terminalPointerID = 1

const frameInterval = 16 * time.Millisecond

// Options configures the TUI run.
type Options struct {
	// Store persists the document on quit when Persist is set.
	Store   store.Store
	Persist bool
}

// Run starts the outline TUI over the given document.
func Run(doc *outline.Doc, opts Options) error {
	applyGlyphPreference()
	m := newAppModel(doc, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	if err != nil {
		return err
	}
	return m.saveErr
}

// terminalTuning scales the engine's pixel-oriented defaults to cells: one
// cell of travel activates a drag, the scroll band is three lines deep and
// a frame moves one to three lines.
func terminalTuning() drag.Tuning {
	return drag.Tuning{
		ActivateThreshold: 1,
		ScrollBand:        3,
		ScrollMinStep:     1,
		ScrollMaxStep:     3,
	}
}

type frameMsg struct{}

// frameScheduler queues at most one callback for the next animation frame;
// the update loop drains it on frameMsg.
type frameScheduler struct {
	pending func()
}

func (f *frameScheduler) Request(fn func()) { f.pending = fn }
func (f *frameScheduler) Cancel()           { f.pending = nil }

type appModel struct {
	doc  *outline.Doc
	opts Options

	theme  theme
	layout *Layout
	coord  *drag.Coordinator
	frames frameScheduler

	panes       []*Pane
	controllers map[string]*drag.Controller
	focus       int
	split       bool

	width, height int
	tickArmed     bool
	quitting      bool
	saveErr       error
}

func newAppModel(doc *outline.Doc, opts Options) *appModel {
	m := &appModel{
		doc:         doc,
		opts:        opts,
		theme:       newTheme(),
		layout:      NewLayout(),
		controllers: map[string]*drag.Controller{},
	}
	m.coord = drag.NewCoordinator(m.layout, doc)
	m.addPane("pane-1", "outline")
	return m
}

func (m *appModel) addPane(id, title string) *Pane {
	p := NewPane(id, title, m.doc)
	m.layout.Add(p)
	m.panes = append(m.panes, p)

	ctrl, err := drag.NewController(drag.ControllerConfig{
		PaneID:      id,
		Coordinator: m.coord,
		Committer:   &drag.Committer{Tree: m.doc, Writer: m.doc},
		Rows:        p.Row,
		ScrollRegions: func() []drag.ScrollRegion {
			return []drag.ScrollRegion{p.Region()}
		},
		Frames: &m.frames,
		Tuning: terminalTuning(),
	})
	if err != nil {
		// Config is fully under our control here.
		panic(err)
	}
	ctrl.Start()
	m.controllers[id] = ctrl
	return p
}

func (m *appModel) removePane(p *Pane) {
	if ctrl := m.controllers[p.ID]; ctrl != nil {
		ctrl.Stop()
		delete(m.controllers, p.ID)
	}
	m.layout.Remove(p.ID)
	for i, q := range m.panes {
		if q == p {
			m.panes = append(m.panes[:i], m.panes[i+1:]...)
			break
		}
	}
	if m.focus >= len(m.panes) {
		m.focus = len(m.panes) - 1
	}
}

func (m *appModel) Init() tea.Cmd { return nil }

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.placePanes()
		return m, nil
	case tea.KeyMsg:
		return m.updateKey(msg)
	case tea.MouseMsg:
		return m.updateMouse(msg)
	case frameMsg:
		m.tickArmed = false
		fn := m.frames.pending
		m.frames.pending = nil
		if fn != nil {
			fn()
		}
		return m, m.armFrame()
	}
	return m, nil
}

// placePanes splits the content area horizontally across the mounted
// panes; the bottom line is the help footer.
func (m *appModel) placePanes() {
	if m.width == 0 || len(m.panes) == 0 {
		return
	}
	h := m.height - 1
	if h < 2 {
		h = 2
	}
	w := m.width / len(m.panes)
	for i, p := range m.panes {
		pw := w
		if i == len(m.panes)-1 {
			pw = m.width - w*i
		}
		p.SetBounds(w*i, 0, pw, h)
	}
}

func (m *appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		if m.opts.Persist {
			m.saveErr = m.opts.Store.SaveDoc(context.Background(), m.doc)
		}
		return m, tea.Quit
	case "tab":
		if len(m.panes) > 1 {
			m.focus = (m.focus + 1) % len(m.panes)
		}
	case "2":
		m.toggleSplit()
	case "up":
		m.moveCursor(-1)
	case "down":
		m.moveCursor(1)
	case " ":
		p := m.panes[m.focus]
		if sel := p.selectedOrder; len(sel) > 0 {
			p.ToggleCollapse(sel[len(sel)-1])
		}
	}
	return m, nil
}

func (m *appModel) toggleSplit() {
	if m.split {
		for _, p := range m.panes {
			if p.ID == "pane-2" {
				m.removePane(p)
				break
			}
		}
	} else {
		m.addPane("pane-2", "outline (mirror view)")
	}
	m.split = !m.split
	m.placePanes()
}

func (m *appModel) moveCursor(delta int) {
	p := m.panes[m.focus]
	if len(p.rows) == 0 {
		return
	}
	i := 0
	if sel := p.selectedOrder; len(sel) > 0 {
		if j, ok := p.rowIndex[sel[len(sel)-1]]; ok {
			i = j + delta
		}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p.rows) {
		i = len(p.rows) - 1
	}
	p.Select(p.rows[i].EdgeID)
	if i < p.vp.YOffset {
		p.vp.SetYOffset(i)
	}
	if i >= p.vp.YOffset+p.vp.Height {
		p.vp.SetYOffset(i - p.vp.Height + 1)
	}
}

// updateMouse translates terminal mouse events into engine pointer events.
// Coordinates are cell centers so zone boundaries resolve per cell.
func (m *appModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	ev := drag.PointerEvent{
		PointerID: terminalPointerID,
		X:         float64(msg.X) + 0.5,
		Y:         float64(msg.Y) + 0.5,
		Alt:       msg.Alt,
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			m.mouseDown(msg, ev)
		case tea.MouseButtonWheelUp:
			if p, ok := m.layout.PaneAt(msg.X, msg.Y); ok {
				p.vp.LineUp(3)
			}
		case tea.MouseButtonWheelDown:
			if p, ok := m.layout.PaneAt(msg.X, msg.Y); ok {
				p.vp.LineDown(3)
			}
		}
	case tea.MouseActionMotion:
		if ctrl := m.ownerController(); ctrl != nil {
			ctrl.PointerMove(ev)
		}
	case tea.MouseActionRelease:
		if ctrl := m.ownerController(); ctrl != nil {
			dragging := m.coord.State().Active != nil
			_ = ctrl.PointerUp(ev)
			if dragging {
				m.reloadPanes()
			}
		}
	}
	return m, m.armFrame()
}

func (m *appModel) mouseDown(msg tea.MouseMsg, ev drag.PointerEvent) {
	p, ok := m.layout.PaneAt(msg.X, msg.Y)
	if !ok {
		return
	}
	m.focusPane(p)
	row, ok := p.RowAt(msg.Y)
	if !ok {
		return
	}
	geom, ok := p.Geometry(row.EdgeID)
	if !ok {
		return
	}
	switch {
	case ev.X >= geom.Bullet.Left && ev.X < geom.Text.Left:
		// Bullet cell is the drag handle. The press leaves the selection
		// alone so a multi-row selection can travel.
		m.controllers[p.ID].PointerDown(ev, row.EdgeID, p.Selection())
	case ev.X < geom.Bullet.Left && row.HasChildren && ev.X >= geom.Bullet.Left-twistyWidth:
		p.ToggleCollapse(row.EdgeID)
	default:
		if msg.Shift {
			p.ExtendSelect(row.EdgeID)
		} else {
			p.Select(row.EdgeID)
		}
	}
}

func (m *appModel) focusPane(p *Pane) {
	for i, q := range m.panes {
		if q == p {
			m.focus = i
			return
		}
	}
}

// ownerController returns the controller of the pane that owns the
// in-flight drag, if any.
func (m *appModel) ownerController() *drag.Controller {
	st := m.coord.State()
	if st.OwnerPaneID == "" {
		return nil
	}
	return m.controllers[st.OwnerPaneID]
}

func (m *appModel) reloadPanes() {
	for _, p := range m.panes {
		p.Reload()
	}
}

func (m *appModel) armFrame() tea.Cmd {
	if m.frames.pending == nil || m.tickArmed {
		return nil
	}
	m.tickArmed = true
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

func (m *appModel) View() string {
	if m.quitting {
		return ""
	}
	st := m.coord.State()
	views := make([]string, 0, len(m.panes))
	for _, p := range m.panes {
		views = append(views, p.View(st))
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, views...)
	help := m.theme.header.Render("drag bullets to move  alt-drop mirrors  shift-click selects  2 split  q quit")
	return body + "\n" + help
}
