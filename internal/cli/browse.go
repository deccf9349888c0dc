package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/graph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand creates the interactive generation browser.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the tree generation by generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			svc, err := c.openService(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.Store.Close()

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			members, err := svc.Members(ctx)
			if err != nil {
				return err
			}
			if len(members) == 0 {
				printInfo("No family members yet")
				return nil
			}
			l, _, err := runner.Layout(ctx, members, layoutOptions(cfg))
			if err != nil {
				return fmt.Errorf("compute layout: %w", err)
			}

			_, err = tea.NewProgram(NewBrowseModel(members, *l), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// =============================================================================
// BrowseModel - Generation browser
// =============================================================================

// Generation is one row of the tree. Pinned members sit in their own group
// because dragging takes them out of generation alignment.
type Generation struct {
	Title   string
	Members []family.Member
}

// BrowseModel is the bubbletea model for the generation browser.
type BrowseModel struct {
	Generations []Generation
	Gen         int
	Cursor      int

	byID map[string]family.Member
}

// NewBrowseModel groups members by the generation their layout node sits in,
// ordered left to right on the canvas.
func NewBrowseModel(members []family.Member, l graph.Layout) BrowseModel {
	byID := make(map[string]family.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	levels := map[int][]graph.Node{}
	var pinned []graph.Node
	for _, n := range l.Nodes {
		if n.IsJunction() {
			continue
		}
		if _, ok := byID[n.ID]; !ok {
			continue
		}
		if n.Custom {
			pinned = append(pinned, n)
			continue
		}
		levels[n.Level] = append(levels[n.Level], n)
	}

	byX := func(a, b graph.Node) int {
		if c := cmp.Compare(a.X, b.X); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
	group := func(title string, nodes []graph.Node) Generation {
		slices.SortFunc(nodes, byX)
		g := Generation{Title: title, Members: make([]family.Member, 0, len(nodes))}
		for _, n := range nodes {
			g.Members = append(g.Members, byID[n.ID])
		}
		return g
	}

	keys := make([]int, 0, len(levels))
	for k := range levels {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var gens []Generation
	for _, k := range keys {
		gens = append(gens, group(fmt.Sprintf("Generation %d", k+1), levels[k]))
	}
	if len(pinned) > 0 {
		gens = append(gens, group("Pinned", pinned))
	}
	return BrowseModel{Generations: gens, byID: byID}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	}
	if len(m.Generations) == 0 {
		return m, nil
	}
	switch key.String() {
	case "left", "h":
		if m.Gen > 0 {
			m.Gen--
			m.Cursor = 0
		}
	case "right", "l":
		if m.Gen < len(m.Generations)-1 {
			m.Gen++
			m.Cursor = 0
		}
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Generations[m.Gen].Members)-1 {
			m.Cursor++
		}
	}
	return m, nil
}

// Selected returns the member under the cursor.
func (m BrowseModel) Selected() (family.Member, bool) {
	if m.Gen >= len(m.Generations) || m.Cursor >= len(m.Generations[m.Gen].Members) {
		return family.Member{}, false
	}
	return m.Generations[m.Gen].Members[m.Cursor], true
}

func (m BrowseModel) View() string {
	var b strings.Builder

	if len(m.Generations) == 0 {
		b.WriteString(listDimStyle.Render("No members to show. Press q to quit."))
		return b.String()
	}
	gen := m.Generations[m.Gen]

	b.WriteString(StyleTitle.Render(gen.Title))
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Gen+1, len(m.Generations))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←/→ generation  ↑/↓ member  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(gen.Members))
	for i, mem := range gen.Members {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, mem.Name, orDash(mem.BirthDate), orDash(mem.Relationship), m.name(mem.SpouseID)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Born", "Relationship", "Spouse").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == m.Cursor:
				return listSelectedStyle
			}
			return StyleValue
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if sel, ok := m.Selected(); ok {
		b.WriteString("\n")
		b.WriteString(m.details(sel))
	}
	return b.String()
}

// details renders the parents, location and bio of mem.
func (m BrowseModel) details(mem family.Member) string {
	var b strings.Builder
	line := func(k, v string) {
		if v == "" {
			return
		}
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  %-10s", k)))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(v))
		b.WriteString("\n")
	}
	var parents []string
	for _, id := range []string{mem.ParentID, mem.Parent2ID} {
		if id != "" {
			parents = append(parents, m.name(id))
		}
	}
	line("Parents", strings.Join(parents, ", "))
	line("Location", mem.Location)
	line("Bio", mem.Bio)
	return b.String()
}

func (m BrowseModel) name(id string) string {
	if id == "" {
		return "—"
	}
	if mem, ok := m.byID[id]; ok {
		return mem.Name
	}
	return id
}
