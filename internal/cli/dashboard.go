package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/veldrane/herald/internal/core"
	"github.com/veldrane/herald/pkg/models"
)

// Dashboard panel indices.
const (
	panelDecisions = iota
	panelVoting
	panelProposals
	panelCount
)

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	stateCounts map[string]int
	voting      []votingSnapshot
	proposals   []proposalSnapshot

	// State.
	loading bool
	err     error
}

type votingSnapshot struct {
	title    string
	actions  int
	resolves string
}

type proposalSnapshot struct {
	glyph       string
	description string
	author      string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	stateCounts map[string]int
	voting      []votingSnapshot
	proposals   []proposalSnapshot
	err         error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statePreparation = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statePublished   = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	stateResolved    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelDecisions,
		loading:     true,
		stateCounts: make(map[string]int),
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.stateCounts = msg.stateCounts
		m.voting = msg.voting
		m.proposals = msg.proposals
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" Herald Dashboard ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	decisionsPanel := m.renderDecisionsPanel()
	votingPanel := m.renderVotingPanel()
	proposalsPanel := m.renderProposalsPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Horizontal layout: three columns.
		colWidth := availableWidth / 3
		decisionsPanel = m.applyPanelStyle(panelDecisions, decisionsPanel, colWidth-4)
		votingPanel = m.applyPanelStyle(panelVoting, votingPanel, colWidth-4)
		proposalsPanel = m.applyPanelStyle(panelProposals, proposalsPanel, colWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, decisionsPanel, votingPanel, proposalsPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		decisionsPanel = m.applyPanelStyle(panelDecisions, decisionsPanel, panelWidth)
		votingPanel = m.applyPanelStyle(panelVoting, votingPanel, panelWidth)
		proposalsPanel = m.applyPanelStyle(panelProposals, proposalsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, decisionsPanel, votingPanel, proposalsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderDecisionsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Decisions"))
	b.WriteString("\n")

	if len(m.stateCounts) == 0 {
		b.WriteString("  No decisions found.")
		return b.String()
	}

	// Display in lifecycle order.
	order := []string{
		string(models.StatePreparation),
		string(models.StatePublished),
		string(models.StateResolved),
	}
	for _, state := range order {
		count, ok := m.stateCounts[state]
		if !ok || count == 0 {
			continue
		}
		label := fmt.Sprintf("  %-14s %d", state, count)
		b.WriteString(styleForState(state).Render(label))
		b.WriteString("\n")
	}

	total := 0
	for _, c := range m.stateCounts {
		total += c
	}
	b.WriteString(fmt.Sprintf("\n  Total: %d", total))

	return b.String()
}

func (m dashboardModel) renderVotingPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Voting"))
	b.WriteString("\n")

	if len(m.voting) == 0 {
		b.WriteString("  No open votes.")
		return b.String()
	}

	for _, v := range m.voting {
		b.WriteString(fmt.Sprintf("  %-24s %d option(s), closes %s\n",
			truncate(v.title, 24), v.actions, v.resolves))
	}

	return b.String()
}

func (m dashboardModel) renderProposalsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Pending Proposals"))
	b.WriteString("\n")

	if len(m.proposals) == 0 {
		b.WriteString("  No proposals awaiting review.")
		return b.String()
	}

	for _, p := range m.proposals {
		author := p.author
		if author == "" {
			author = "unknown"
		}
		b.WriteString(fmt.Sprintf("  %s %s (by %s)\n", p.glyph, truncate(p.description, 30), author))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d proposal(s)", len(m.proposals)))

	return b.String()
}

func styleForState(state string) lipgloss.Style {
	switch state {
	case string(models.StatePreparation):
		return statePreparation
	case string(models.StatePublished):
		return statePublished
	case string(models.StateResolved):
		return stateResolved
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	result := dataLoadedMsg{
		stateCounts: make(map[string]int),
	}

	if Lifecycle != nil {
		decisions, err := Lifecycle.Find(core.DecisionFilter{})
		if err != nil {
			result.err = fmt.Errorf("loading decisions: %w", err)
			return result
		}
		for _, d := range decisions {
			result.stateCounts[string(d.State)]++
			if d.State != models.StatePublished {
				continue
			}
			resolves := "-"
			if d.ResolveTime != nil {
				resolves = d.ResolveTime.Format("2006-01-02 15:04")
			}
			result.voting = append(result.voting, votingSnapshot{
				title:    d.Title,
				actions:  len(d.DisplayedActions()),
				resolves: resolves,
			})
		}
		sort.Slice(result.voting, func(i, j int) bool {
			return result.voting[i].resolves < result.voting[j].resolves
		})
	}

	if Actions != nil {
		proposed, err := Actions.Find(core.ActionFilter{State: models.ActionProposed})
		if err != nil {
			result.err = fmt.Errorf("loading proposals: %w", err)
			return result
		}
		for _, a := range proposed {
			result.proposals = append(result.proposals, proposalSnapshot{
				glyph:       a.Glyph,
				description: a.Description,
				author:      a.AuthorID,
			})
		}
	}

	return result
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI overview of decisions and proposals",
	Long: `Launch an interactive terminal dashboard showing decision counts by
state, open votes with their deadlines, and player proposals awaiting
review.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Lifecycle == nil {
			return fmt.Errorf("decision manager not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
