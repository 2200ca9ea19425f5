// Package menu hosts the two-pane category menu in a terminal: the rail on
// the left and every category's sections in one scrollable pane on the right.
package menu

import (
	"fmt"
	"strings"
	"time"

	"storefront/catnav/internal/catalog"
	"storefront/catnav/internal/domain"
	"storefront/catnav/internal/resolver"
	"storefront/catnav/internal/scrollspy"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerRows = 1
	railWidth  = 18
	frameDelay = 16 * time.Millisecond
	wheelRows  = 3
)

type frameMsg struct{}

type activeMsg string

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	railStyle      = lipgloss.NewStyle().Width(railWidth).Foreground(lipgloss.Color("245"))
	railActive     = lipgloss.NewStyle().Width(railWidth).Bold(true).Reverse(true).Foreground(lipgloss.Color("213"))
	headerStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	thirdStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	fourthStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type Model struct {
	tree     *catalog.Tree
	resolver *resolver.Resolver
	ctrl     *scrollspy.Controller
	pane     *pane
	lines    []line
	rail     []*domain.Category

	width   int
	height  int
	ticking bool

	send      func(tea.Msg)
	cancelSub func()
}

// New builds the menu and mounts its scroll-spy controller.
func New(tree *catalog.Tree, res *resolver.Resolver, opts scrollspy.Options) *Model {
	lines, anchors := layout(tree)
	p := newPane(headerRows, len(lines))

	opts.EdgeThreshold = 1

	ctrl := scrollspy.New(tree.Categories(), scrollspy.Host{
		Container:   p,
		Viewport:    p,
		BottomNav:   statusBar{},
		Events:      p,
		NewObserver: p.newObserver,
	}, opts)

	m := &Model{
		tree:     tree,
		resolver: res,
		ctrl:     ctrl,
		pane:     p,
		lines:    lines,
		rail:     tree.Categories(),
	}

	for _, category := range m.rail {
		ctrl.RegisterAnchor(category.Name, p.anchor(anchors[category.Name]))
	}
	m.cancelSub = ctrl.Subscribe(m.onActive)
	ctrl.Mount()

	return m
}

// onActive may run on a timer goroutine; the program is poked asynchronously
// so that a change made inside Update cannot block on Send.
func (m *Model) onActive(name string) {
	if send := m.send; send != nil {
		go send(activeMsg(name))
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.pane.resize(msg.Height)
		m.pane.setHeight(int(m.ctrl.ViewportHeight()) - headerRows)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Close()
			return m, tea.Quit
		case "down", "j":
			m.pane.ScrollBy(1)
		case "up", "k":
			m.pane.ScrollBy(-1)
		case "pgdown", " ":
			m.pane.ScrollBy(m.pane.ClientHeight())
		case "pgup":
			m.pane.ScrollBy(-m.pane.ClientHeight())
		case "home", "g":
			m.pane.ScrollBy(-m.pane.ScrollHeight())
		case "end", "G":
			m.pane.ScrollBy(m.pane.ScrollHeight())
		case "right", "l", "tab":
			m.clickRelative(1)
		case "left", "h", "shift+tab":
			m.clickRelative(-1)
		}

	case tea.MouseMsg:
		switch {
		case msg.Button == tea.MouseButtonWheelDown:
			m.pane.ScrollBy(wheelRows)
		case msg.Button == tea.MouseButtonWheelUp:
			m.pane.ScrollBy(-wheelRows)
		case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.X < railWidth:
			if i := msg.Y - headerRows; i >= 0 && i < len(m.rail) {
				m.ctrl.Click(m.rail[i].Name)
			}
		}

	case frameMsg:
		m.ticking = false
		m.pane.step()
	}

	return m, m.animate()
}

func (m *Model) clickRelative(delta int) {
	if len(m.rail) == 0 {
		return
	}
	current := 0
	active := m.ctrl.ActiveCategory()
	for i, category := range m.rail {
		if category.Name == active {
			current = i
			break
		}
	}
	next := min(max(current+delta, 0), len(m.rail)-1)
	m.ctrl.Click(m.rail[next].Name)
}

func (m *Model) animate() tea.Cmd {
	if m.ticking || !m.pane.animating() {
		return nil
	}
	m.ticking = true
	return tea.Tick(frameDelay, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

func (m *Model) View() string {
	if m.height == 0 {
		return ""
	}

	rows := max(int(m.pane.ClientHeight()), 0)
	active := m.ctrl.ActiveCategory()

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title(active)))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.railView(active, rows), m.contentView(rows)))
	b.WriteString("\n")
	b.WriteString(statusBarStyle.Render(fmt.Sprintf("%s · ↑↓ scroll · ←→ category · q quit", m.ctrl.Phase())))
	return b.String()
}

func (m *Model) title(active string) string {
	labels := []string{domain.CategoryRoot.Label}
	for _, node := range m.resolver.BreadcrumbChain(domain.PathPrefix + "/" + active) {
		labels = append(labels, node.Info().Label)
	}
	return strings.Join(labels, " › ")
}

func (m *Model) railView(active string, rows int) string {
	out := make([]string, rows)
	for i := range out {
		if i >= len(m.rail) {
			out[i] = railStyle.Render("")
			continue
		}
		category := m.rail[i]
		label := " " + category.Label
		if category.Kind == domain.KindSpecial {
			label += " ★"
		}
		if category.Name == active {
			out[i] = railActive.Render(label)
		} else {
			out[i] = railStyle.Render(label)
		}
	}
	return strings.Join(out, "\n")
}

func (m *Model) contentView(rows int) string {
	offset := int(m.pane.ScrollTop())
	out := make([]string, rows)
	for i := range out {
		idx := offset + i
		if idx >= len(m.lines) {
			continue
		}
		out[i] = renderLine(m.lines[idx])
	}
	return strings.Join(out, "\n")
}

func renderLine(l line) string {
	switch l.kind {
	case lineHeader:
		return headerStyle.Render(l.text)
	case lineSubcategory:
		return "  " + l.text
	case lineBanner:
		return bannerStyle.Render("  ▣ " + l.text)
	case lineThird:
		return thirdStyle.Render("    · " + l.text)
	case lineFourth:
		return fourthStyle.Render("      - " + l.text)
	default:
		return ""
	}
}

// ActiveCategory is the category highlighted in the rail.
func (m *Model) ActiveCategory() string {
	return m.ctrl.ActiveCategory()
}

// Close stops the controller's timers and listeners.
func (m *Model) Close() {
	if m.cancelSub != nil {
		m.cancelSub()
		m.cancelSub = nil
	}
	m.ctrl.Close()
}

// Run shows the menu until the user quits.
func Run(m *Model) error {
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	m.send = program.Send
	defer m.Close()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run menu: %w", err)
	}
	return nil
}
