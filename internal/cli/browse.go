package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/entitymap/pkg/errors"
	"github.com/matzehuels/entitymap/pkg/layout"
	"github.com/matzehuels/entitymap/pkg/pipeline"
)

// browseCommand creates the browse command, an interactive folder picker
// that lays out the highlighted folder as the cursor moves.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		output string
		depth  int
	)

	cmd := &cobra.Command{
		Use:   "browse [dir]",
		Short: "Pick a folder interactively with a live layout preview",
		Long: `Pick a folder interactively with a live layout preview.

Moving the cursor lays out the highlighted folder in the background. Only the
newest preview is shown; results for folders you have already moved past are
dropped. Press enter to write the previewed layout to a file.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completePath,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runBrowse(cmd.Context(), dir, output, depth)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <folder>.layout.json)")
	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "maximum folder depth (default from config)")

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, dir, output string, depth int) error {
	opts, err := c.sourceOptions(dir, depth, false)
	if err != nil {
		return err
	}
	if opts.Root == "" {
		return fmt.Errorf("%s is not a folder", dir)
	}

	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	m, err := newBrowseModel(ctx, runner, opts, output)
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("browse: %w", err)
	}

	bm, ok := final.(browseModel)
	if !ok || bm.saved == "" {
		printInfo("Nothing saved")
		return nil
	}
	printSuccess("Layout saved")
	printFile(bm.saved)
	printStats(len(bm.preview.layout.Nodes), len(bm.preview.layout.Edges), bm.preview.cached)
	return nil
}

// =============================================================================
// browseModel
// =============================================================================

var (
	browseCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	browseItemStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	browsePanelStyle  = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

const (
	thisFolder        = "."
	previewChildLimit = 8
)

// loadMsg asks the model to preview the current selection.
type loadMsg struct{}

// previewMsg carries a finished preview tagged with its request sequence.
type previewMsg struct {
	seq    uint64
	path   string
	layout layout.Layout
	cached bool
	err    error
}

type preview struct {
	path   string
	layout layout.Layout
	cached bool
}

type browseModel struct {
	ctx     context.Context
	runner  *pipeline.Runner
	tracker *pipeline.Tracker
	view    string
	opts    pipeline.Options
	output  string

	dir     string
	entries []string
	cursor  int
	offset  int
	height  int

	spinner spinner.Model
	pending uint64 // sequence of the newest preview request
	loading bool
	preview *preview
	err     error

	saved string
}

func newBrowseModel(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, output string) (browseModel, error) {
	dir, err := filepath.Abs(opts.Root)
	if err != nil {
		return browseModel{}, fmt.Errorf("resolve %s: %w", opts.Root, err)
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styleIconSpinner

	m := browseModel{
		ctx:     ctx,
		runner:  runner,
		tracker: pipeline.NewTracker(),
		view:    "browse-" + uuid.NewString(),
		opts:    opts,
		output:  output,
		dir:     dir,
		height:  12,
		spinner: s,
	}
	if m.entries, err = m.readEntries(dir); err != nil {
		return browseModel{}, err
	}
	return m, nil
}

// readEntries lists the visible subfolders of dir, prefixed by dir itself.
func (m browseModel) readEntries(dir string) ([]string, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", dir)
	}
	entries := []string{thisFolder}
	for _, de := range des {
		if de.IsDir() && !m.runner.Walker.IsBlocked(de.Name()) {
			entries = append(entries, de.Name())
		}
	}
	return entries, nil
}

func (m browseModel) selected() string {
	if m.entries[m.cursor] == thisFolder {
		return m.dir
	}
	return filepath.Join(m.dir, m.entries[m.cursor])
}

func (m browseModel) Init() tea.Cmd {
	return func() tea.Msg { return loadMsg{} }
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-18, 3)
		m.clampOffset()
	case loadMsg:
		return m.requestPreview()
	case previewMsg:
		if msg.seq != m.pending {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.preview = nil
			return m, nil
		}
		m.err = nil
		m.preview = &preview{path: msg.path, layout: msg.layout, cached: msg.cached}
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m browseModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.clampOffset()
			return m.requestPreview()
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
			m.clampOffset()
			return m.requestPreview()
		}
	case "right", "l":
		if m.entries[m.cursor] != thisFolder {
			return m.changeDir(m.selected(), "")
		}
	case "left", "h", "backspace":
		if parent := filepath.Dir(m.dir); parent != m.dir {
			return m.changeDir(parent, filepath.Base(m.dir))
		}
	case "enter":
		return m.save()
	}
	return m, nil
}

// changeDir moves the listing to dir with the cursor on focus, if present.
func (m browseModel) changeDir(dir, focus string) (tea.Model, tea.Cmd) {
	entries, err := m.readEntries(dir)
	if err != nil {
		m.err = err
		return m, nil
	}
	m.dir, m.entries, m.cursor, m.offset = dir, entries, 0, 0
	for i, e := range entries {
		if e == focus {
			m.cursor = i
		}
	}
	m.clampOffset()
	return m.requestPreview()
}

func (m *browseModel) clampOffset() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// requestPreview starts a layout of the selection. The tracker cancels the
// previous request, and its sequence number lets Update drop late results.
func (m browseModel) requestPreview() (browseModel, tea.Cmd) {
	ctx, ticket := m.tracker.Begin(m.ctx, m.view)
	m.pending = ticket.Seq
	m.err = nil

	cmd := previewCmd(ctx, m.runner, m.tracker, ticket, m.opts, m.selected())
	if m.loading {
		return m, cmd
	}
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, cmd)
}

func previewCmd(ctx context.Context, runner *pipeline.Runner, tracker *pipeline.Tracker, ticket *pipeline.Ticket, opts pipeline.Options, path string) tea.Cmd {
	opts.Root = path
	return func() tea.Msg {
		defer tracker.Finish(ticket)

		msg := previewMsg{seq: ticket.Seq, path: path}
		tree, cached, err := runner.FetchWithCacheInfo(ctx, opts)
		if err == nil {
			msg.layout, err = runner.Layout(ctx, tree, opts)
		}
		if err == nil {
			err = ticket.Check()
		}
		msg.cached, msg.err = cached, err
		return msg
	}
}

// save writes the current preview and quits.
func (m browseModel) save() (tea.Model, tea.Cmd) {
	if m.loading || m.preview == nil || m.preview.path != m.selected() {
		return m, nil
	}
	path := m.output
	if path == "" {
		path = filepath.Base(m.preview.path) + ".layout.json"
	}
	if err := layout.WriteFile(m.preview.layout, path); err != nil {
		m.err = err
		return m, nil
	}
	m.saved = path
	return m, tea.Quit
}

// =============================================================================
// View
// =============================================================================

func (m browseModel) View() string {
	if m.saved != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("entitymap") + "  " + StyleValue.Render(m.dir))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ move  → open  ← up  ⏎ save layout  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.entries))
	for i := m.offset; i < end; i++ {
		name := m.entries[i]
		if name == thisFolder {
			name = ". " + StyleDim.Render("(this folder)")
		}
		if i == m.cursor {
			b.WriteString(browseCursorStyle.Render("▸ " + name))
		} else {
			b.WriteString(browseItemStyle.Render("  " + name))
		}
		b.WriteString("\n")
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.entries))))
	b.WriteString("\n\n")
	b.WriteString(browsePanelStyle.Render(m.previewView()))
	b.WriteString("\n")
	return b.String()
}

func (m browseModel) previewView() string {
	switch {
	case m.loading:
		return m.spinner.View() + " " + StyleDim.Render("laying out "+filepath.Base(m.selected()))
	case m.err != nil:
		return StyleError.Render(iconError + " " + errors.UserMessage(m.err))
	case m.preview == nil:
		return StyleDim.Render("no preview")
	}

	l := m.preview.layout
	var b strings.Builder
	b.WriteString(StyleTitle.Render(filepath.Base(m.preview.path)))
	b.WriteString("\n")
	b.WriteString(statsLine(len(l.Nodes), len(l.Edges), m.preview.cached))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %.0f x %.0f", l.Bounds.Width, l.Bounds.Height)))
	if t := childTable(l); t != "" {
		b.WriteString("\n")
		b.WriteString(t)
	}
	return b.String()
}

// childTable lists the root's children as they appear in the layout.
func childTable(l layout.Layout) string {
	root, ok := l.Root()
	if !ok {
		return ""
	}
	var rows [][]string
	var projects []bool
	more := 0
	for _, e := range l.Edges {
		if e.Source != root.ID {
			continue
		}
		if len(rows) == previewChildLimit {
			more++
			continue
		}
		n, ok := l.NodeByID(e.Target)
		if !ok {
			continue
		}
		kind := "folder"
		if n.Data.IsProject {
			kind = "project"
		}
		rows = append(rows, []string{n.Data.Label, n.Data.Subtitle, kind, fmt.Sprintf("%.0f", n.Position.X)})
		projects = append(projects, n.Data.IsProject)
	}
	if len(rows) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Folder", "Files", "Kind", "x").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if row >= 0 && row < len(projects) && projects[row] {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})

	out := t.Render()
	if more > 0 {
		out += "\n" + StyleDim.Render(fmt.Sprintf("  +%d more", more))
	}
	return out
}
