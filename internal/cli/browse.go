package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/virtgrid/pkg/geom"
	pkgio "github.com/matzehuels/virtgrid/pkg/io"
	"github.com/matzehuels/virtgrid/pkg/scroll"
	"github.com/matzehuels/virtgrid/pkg/store"
)

// browseCommand creates the interactive browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		flags viewFlags
		step  float64
	)

	cmd := &cobra.Command{
		Use:   "browse [layout.json | URL]",
		Short: "Scroll through a layout interactively",
		Long: `Scroll through a layout interactively.

Arrow keys (or hjkl) scroll by --step, page up/down by one viewport.
Tab cycles through the visible items and c centers the selected one.
The list only redraws when the set of visible items changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBrowse(cmd.Context(), args[0], flags, step)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&step, "step", 50, "scroll distance per key press")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, src string, flags viewFlags, step float64) error {
	if step <= 0 {
		return fmt.Errorf("step must be positive")
	}
	s, layout, err := c.openStore(ctx, src, flags)
	if err != nil {
		return err
	}

	m := newBrowseModel(s, layout, step)
	defer m.close()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// browseModel - Interactive viewport over a store
// =============================================================================

var (
	browseSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browseDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCounter is shared between the model copies bubbletea passes around
// and the store listener.
type browseCounter struct {
	updates int
	dirty   bool
}

type browseModel struct {
	store *store.Store[string, geom.Box]
	boxes map[string]geom.Box
	step  float64

	counter     *browseCounter
	unsubscribe func()

	keys   []string
	cursor int
	rows   int
	status string
}

func newBrowseModel(s *store.Store[string, geom.Box], layout pkgio.Layout, step float64) browseModel {
	counter := &browseCounter{}
	m := browseModel{
		store:   s,
		boxes:   layout.Boxes(),
		step:    step,
		counter: counter,
		rows:    15,
	}
	m.unsubscribe = s.Subscribe(func() {
		counter.updates++
		counter.dirty = true
	})
	m.refresh()
	return m
}

func (m browseModel) close() { m.unsubscribe() }

// refresh reloads the sorted visible keys and keeps the cursor on the
// same key when it is still visible.
func (m *browseModel) refresh() {
	var selected string
	if m.cursor < len(m.keys) {
		selected = m.keys[m.cursor]
	}
	m.keys = slices.Clone(m.store.State().VisibleKeys)
	slices.Sort(m.keys)
	m.counter.dirty = false

	m.cursor = 0
	if i := slices.Index(m.keys, selected); i >= 0 {
		m.cursor = i
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		v := m.store.Viewport()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.scrollBy(0, -m.step)
		case "down", "j":
			m.scrollBy(0, m.step)
		case "left", "h":
			m.scrollBy(-m.step, 0)
		case "right", "l":
			m.scrollBy(m.step, 0)
		case "pgup":
			m.scrollBy(0, -v.Size.Height)
		case "pgdown", " ":
			m.scrollBy(0, v.Size.Height)
		case "home", "g":
			m.scrollTo(geom.Position{})
		case "+":
			m.setOverscan(v.Overscan + m.step)
		case "-":
			m.setOverscan(max(0, v.Overscan-m.step))
		case "tab":
			if len(m.keys) > 0 {
				m.cursor = (m.cursor + 1) % len(m.keys)
			}
		case "shift+tab":
			if len(m.keys) > 0 {
				m.cursor = (m.cursor - 1 + len(m.keys)) % len(m.keys)
			}
		case "c":
			m.center()
		}
	case tea.WindowSizeMsg:
		m.rows = max(5, msg.Height-10)
	}
	if m.counter.dirty {
		m.refresh()
	}
	return m, nil
}

// scrollBy moves the viewport, clamped to the canvas.
func (m *browseModel) scrollBy(dx, dy float64) {
	p := m.store.Viewport().Scroll
	m.scrollTo(geom.Position{X: p.X + dx, Y: p.Y + dy})
}

func (m *browseModel) scrollTo(p geom.Position) {
	v := m.store.Viewport()
	canvas := m.store.State().CanvasSize
	p.X = min(max(0, p.X), max(0, canvas.Width-v.Size.Width))
	p.Y = min(max(0, p.Y), max(0, canvas.Height-v.Size.Height))
	m.store.Set(store.Update[string, geom.Box]{ScrollPosition: &p})
	m.status = ""
}

func (m *browseModel) setOverscan(overscan float64) {
	m.store.Set(store.Update[string, geom.Box]{Overscan: &overscan})
}

func (m *browseModel) center() {
	if m.cursor >= len(m.keys) {
		return
	}
	key := m.keys[m.cursor]
	target, err := m.store.ScrollToItem(key, scroll.Options{Alignment: scroll.Center})
	if err != nil {
		m.status = err.Error()
		return
	}
	m.scrollTo(target.Apply(m.store.Viewport().Scroll))
	m.status = "centered " + key
}

func (m browseModel) View() string {
	var b strings.Builder
	v := m.store.Viewport()
	state := m.store.State()

	b.WriteString(StyleTitle.Render("Browse Layout"))
	b.WriteString("\n")
	b.WriteString(browseDimStyle.Render("arrows/hjkl scroll  pgup/pgdn page  tab select  c center  +/- overscan  q quit"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s  %s %s  %s %s  %s %s\n",
		browseDimStyle.Render("scroll"), StyleValue.Render(fmt.Sprintf("%g,%g", v.Scroll.X, v.Scroll.Y)),
		browseDimStyle.Render("viewport"), StyleValue.Render(v.Size.String()),
		browseDimStyle.Render("overscan"), StyleValue.Render(formatFloat(v.Overscan)),
		browseDimStyle.Render("canvas"), StyleValue.Render(state.CanvasSize.String())))
	b.WriteString(fmt.Sprintf("%s %s  %s %s\n\n",
		browseDimStyle.Render("visible"), StyleHighlight.Render(fmt.Sprint(len(m.keys))),
		browseDimStyle.Render("updates"), StyleHighlight.Render(fmt.Sprint(m.counter.updates))))

	start := 0
	if m.cursor >= m.rows {
		start = m.cursor - m.rows + 1
	}
	end := min(len(m.keys), start+m.rows)
	for i := start; i < end; i++ {
		key := m.keys[i]
		box := m.boxes[key]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		line := fmt.Sprintf("%s%-16s %s", cursor, key, browseDimStyle.Render(box.String()))
		if i == m.cursor {
			b.WriteString(browseSelectedStyle.Render(line))
		} else {
			b.WriteString(browseNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(m.keys) > end {
		b.WriteString(browseDimStyle.Render(fmt.Sprintf("  ... %d more", len(m.keys)-end)))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(StyleSuccess.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}
