// ABOUTME: Dashboard command for the wp-capacity CLI
// ABOUTME: Bubbletea view of facts and the current plan with utilization bars

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Martel-IT/wp-nixos/internal/client"
	"github.com/Martel-IT/wp-nixos/internal/tui/styles"
	"github.com/Martel-IT/wp-nixos/internal/tui/widgets"
	"github.com/Martel-IT/wp-nixos/planner"
)

var dashboardTenants uint

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live plan dashboard",
	Long:  `Interactive view of hardware facts and the current allocation plan. Press r to refresh, q to quit.`,
	Run: func(cmd *cobra.Command, args []string) {
		model := newDashboardModel(client.New(GetAPIURL()), dashboardTenants)
		if _, err := tea.NewProgram(model).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().UintVar(&dashboardTenants, "tenants", 1, "Number of tenant sites to plan for")
}

type planMsg struct {
	facts *client.FactsResponse
	plan  *planner.AllocationPlan
	err   error
}

type dashboardModel struct {
	client  *client.Client
	tenants uint
	spinner spinner.Model
	loading bool
	facts   *client.FactsResponse
	plan    *planner.AllocationPlan
	err     error
}

func newDashboardModel(c *client.Client, tenants uint) dashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.StatusOK
	return dashboardModel{
		client:  c,
		tenants: tenants,
		spinner: s,
		loading: true,
	}
}

func (m dashboardModel) fetch() tea.Msg {
	ctx := context.Background()

	facts, err := m.client.Facts(ctx)
	if err != nil {
		return planMsg{err: err}
	}
	plan, err := m.client.Plan(ctx, &client.PlanRequest{TenantCount: m.tenants})
	if err != nil {
		return planMsg{facts: facts, err: err}
	}
	return planMsg{facts: facts, plan: plan}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.fetch)
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.err = nil
			return m, tea.Batch(m.spinner.Tick, m.fetch)
		}
	case planMsg:
		m.loading = false
		m.facts = msg.facts
		m.plan = msg.plan
		m.err = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render("wp-capacity dashboard"))
	sb.WriteString("\n")

	if m.loading {
		sb.WriteString(fmt.Sprintf("%s Fetching plan...\n", m.spinner.View()))
		return styles.Panel.Render(sb.String())
	}

	if m.err != nil {
		sb.WriteString(styles.StatusCritical.Render("Error: " + m.err.Error()))
		sb.WriteString("\n")
		sb.WriteString(styles.Help.Render("r refresh · q quit"))
		return styles.Panel.Render(sb.String())
	}

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%d MB RAM / %d cores (%s), %d tenant(s)",
		m.facts.Facts.RAMMb, m.facts.Facts.Cores, m.facts.Source, m.tenants)))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Workers/tenant: %s   DB buffer pool: %s   Cache: %s\n",
		styles.ValueStyle.Render(fmt.Sprintf("%d", m.plan.WorkerPool.MaxChildren)),
		styles.ValueStyle.Render(fmt.Sprintf("%d MB", m.plan.Database.BufferPoolMb)),
		styles.ValueStyle.Render(fmt.Sprintf("%d MB", m.plan.Cache.MaxMemoryMb))))
	sb.WriteString("\n")

	sb.WriteString("Projected footprint\n")
	sb.WriteString(widgets.ProgressBarWithLabel(m.plan.FootprintPercent(), widgets.DefaultProgressBarConfig(), true))
	sb.WriteString(fmt.Sprintf("  %d of %d MB\n", m.plan.FootprintMb, m.facts.Facts.RAMMb))

	for _, d := range m.plan.Diagnostics {
		style := styles.StatusOK
		switch d.Severity {
		case planner.SeverityWarning:
			style = styles.StatusWarning
		case planner.SeverityFatal:
			style = styles.StatusCritical
		}
		sb.WriteString(fmt.Sprintf("\n%s %s", style.Render(strings.ToUpper(string(d.Severity))), d.Message))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.Help.Render("r refresh · q quit"))

	return styles.Panel.Render(sb.String())
}
