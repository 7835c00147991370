package cli

import (
	"fmt"
	"math"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/spiderfy/pkg/errors"
	"github.com/matzehuels/spiderfy/pkg/spider"
)

var (
	plotAnchorStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	plotLegStyle    = lipgloss.NewStyle().Foreground(colorDim)
	plotMarkerStyle = lipgloss.NewStyle().Foreground(colorCyan)
	previewBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// Plot glyphs.
const (
	glyphAnchor = '+'
	glyphLeg    = '·'
	glyphMarker = '●'
)

// forcedMode overrides the switchover from the preview.
type forcedMode int

const (
	forceNone forcedMode = iota
	forceCircle
	forceSpiral
)

func (f forcedMode) String() string {
	switch f {
	case forceCircle:
		return "circle"
	case forceSpiral:
		return "spiral"
	default:
		return "auto"
	}
}

// =============================================================================
// PreviewModel - Interactive layout preview
// =============================================================================

// PreviewModel is the bubbletea model behind "spiderfy preview". It keeps the
// last layout and recomputes it only when a relayout field changes, the way a
// map host would.
type PreviewModel struct {
	Count  int
	Params spider.Parameters
	Force  forcedMode
	Layout spider.Layout

	// Relayouts counts recomputations; Relaid reports whether the last key did one.
	Relayouts int
	Relaid    bool

	Cols, Rows int
}

// NewPreviewModel creates a preview with an initial layout.
func NewPreviewModel(count int, params spider.Parameters) PreviewModel {
	m := PreviewModel{Count: count, Params: params, Cols: 61, Rows: 23}
	m.Layout = spider.Compute(count, m.effective())
	m.Relayouts = 1
	return m
}

// effective returns the parameters with the forced mode applied.
func (m PreviewModel) effective() spider.Parameters {
	p := m.Params
	switch m.Force {
	case forceCircle:
		p.CircleSpiralSwitchover = spider.AlwaysCircle
	case forceSpiral:
		p.CircleSpiralSwitchover = 0
	}
	return p
}

// apply moves to the new state, recomputing the layout only if needed.
func (m PreviewModel) apply(next PreviewModel) PreviewModel {
	prev := m.effective()
	p := next.effective()
	next.Relaid = spider.NeedsRelayout(m.Count, prev, next.Count, p)
	if next.Relaid {
		next.Layout = spider.Compute(next.Count, p)
		next.Relayouts++
	}
	return next
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next := m
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "right", "+", "k":
			if next.Count < errs.MaxCount {
				next.Count++
			}
		case "down", "left", "-", "j":
			if next.Count > 0 {
				next.Count--
			}
		case "m":
			next.Force = (next.Force + 1) % 3
		case "l":
			next.Params.ForceLegsWhenSingle = !next.Params.ForceLegsWhenSingle
		case "a":
			next.Params.Animate = !next.Params.Animate
		default:
			return m, nil
		}
		return m.apply(next), nil
	case tea.WindowSizeMsg:
		m.Rows = max(9, msg.Height-8)
		m.Cols = max(19, min(msg.Width-4, 2*m.Rows+1))
	}
	return m, nil
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Spiderfy Preview"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ count  m mode  l single leg  a animate  q quit"))
	b.WriteString("\n\n")

	status := "cached layout"
	if m.Relaid {
		status = "relaid"
	}
	legs := "off"
	if m.Params.ForceLegsWhenSingle {
		legs = "on"
	}
	fmt.Fprintf(&b, "%s %s  %s %s  %s %s  %s %s  %s\n",
		StyleDim.Render("count"), StyleValue.Render(fmt.Sprint(m.Count)),
		StyleDim.Render("mode"), renderMode(m.Layout.Mode)+StyleDim.Render(" ("+m.Force.String()+")"),
		StyleDim.Render("single leg"), StyleValue.Render(legs),
		StyleDim.Render("animate"), StyleValue.Render(fmt.Sprint(m.Params.Animate)),
		StyleDim.Render(fmt.Sprintf("[%s, %d computed]", status, m.Relayouts)))

	b.WriteString(previewBoxStyle.Render(strings.Join(stylePlot(plotLayout(m.Layout, m.Cols, m.Rows)), "\n")))
	b.WriteString("\n")
	return b.String()
}

// plotLayout draws l onto a cols×rows character grid with the anchor at the
// center. Terminal cells are about twice as tall as wide, so x is stretched
// by two to keep circles round.
func plotLayout(l spider.Layout, cols, rows int) [][]rune {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}
	cx, cy := cols/2, rows/2

	maxX, maxY := 1.0, 1.0
	for _, r := range l.Records {
		maxX = math.Max(maxX, math.Abs(r.X))
		maxY = math.Max(maxY, math.Abs(r.Y))
	}
	scale := math.Min(float64(rows/2)/maxY, float64(cols/2)/(2*maxX))

	cell := func(x, y float64) (int, int, bool) {
		c := cx + int(math.Round(2*x*scale))
		r := cy + int(math.Round(y*scale))
		return c, r, c >= 0 && c < cols && r >= 0 && r < rows
	}

	for _, r := range l.Records {
		if !r.ShouldRenderLeg {
			continue
		}
		steps := int(math.Max(math.Abs(2*r.X*scale), math.Abs(r.Y*scale))) + 1
		for s := 1; s < steps; s++ {
			t := float64(s) / float64(steps)
			if c, rr, ok := cell(r.X*t, r.Y*t); ok && grid[rr][c] == ' ' {
				grid[rr][c] = glyphLeg
			}
		}
	}

	order := make([]int, len(l.Records))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return stack(l.Records[a]) - stack(l.Records[b]) })
	for _, i := range order {
		if c, r, ok := cell(l.Records[i].X, l.Records[i].Y); ok {
			grid[r][c] = glyphMarker
		}
	}

	grid[cy][cx] = glyphAnchor
	return grid
}

func stack(r spider.Record) int {
	if r.StackOrder != nil {
		return *r.StackOrder
	}
	return 0
}

// stylePlot colors the glyphs of a plotted grid.
func stylePlot(grid [][]rune) []string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		var b strings.Builder
		for _, ch := range row {
			switch ch {
			case glyphAnchor:
				b.WriteString(plotAnchorStyle.Render(string(ch)))
			case glyphLeg:
				b.WriteString(plotLegStyle.Render(string(ch)))
			case glyphMarker:
				b.WriteString(plotMarkerStyle.Render(string(ch)))
			default:
				b.WriteRune(ch)
			}
		}
		lines[i] = b.String()
	}
	return lines
}

// previewCommand opens the interactive layout preview.
func (c *CLI) previewCommand() *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Explore layouts interactively in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			params := flags.parameters(cmd.Flags(), cfg.Layout)
			if err := errs.ValidateParameters(params); err != nil {
				return err
			}
			count := flags.count
			if count == 0 {
				count = 5
			}
			if err := errs.ValidateCount(count); err != nil {
				return err
			}

			p := tea.NewProgram(NewPreviewModel(count, params), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
