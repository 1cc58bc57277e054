package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nullforge/queuectl/internal/cliclient"
)

const statusRefreshInterval = 2 * time.Second

var (
	watchTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	watchHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	watchErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// statusRefreshMsg carries the result of a polled GET /status.
type statusRefreshMsg struct {
	status cliclient.Status
	err    error
}

// statusModel is the bubbletea model behind `queuectl status --watch`,
// grounded on storacha-piri's cmd/cli/client/admin/payment statusModel: a
// periodic tea.Tick driving a re-fetch, rendered with a bubbles table.
type statusModel struct {
	api         *cliclient.Client
	table       table.Model
	lastErr     error
	lastRefresh time.Time
}

func newStatusModel(api *cliclient.Client) statusModel {
	return statusModel{api: api, table: buildStatusTable(cliclient.Status{})}
}

func buildStatusTable(s cliclient.Status) table.Model {
	columns := []table.Column{
		{Title: "PENDING", Width: 9},
		{Title: "PROCESSING", Width: 11},
		{Title: "COMPLETED", Width: 10},
		{Title: "FAILED", Width: 8},
		{Title: "DEAD", Width: 6},
		{Title: "ACTIVE WORKERS", Width: 15},
		{Title: "POOL RUNNING", Width: 13},
	}
	row := table.Row{
		strconv.FormatInt(s.Pending, 10),
		strconv.FormatInt(s.Processing, 10),
		strconv.FormatInt(s.Completed, 10),
		strconv.FormatInt(s.Failed, 10),
		strconv.FormatInt(s.Dead, 10),
		strconv.Itoa(s.ActiveWorkers),
		strconv.FormatBool(s.PoolRunning),
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows([]table.Row{row}),
		table.WithHeight(3),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = styles.Selected.Bold(false)
	t.SetStyles(styles)
	return t
}

func (m statusModel) Init() tea.Cmd {
	return m.fetchStatus()
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.fetchStatus()
		}
	case statusRefreshMsg:
		m.lastErr = msg.err
		if msg.err == nil {
			m.table = buildStatusTable(msg.status)
			m.lastRefresh = time.Now()
		}
		return m, m.scheduleRefresh()
	}
	return m, nil
}

// fetchStatus runs immediately (used for Init and the "r" key).
func (m statusModel) fetchStatus() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := api.GetStatus(ctx)
		return statusRefreshMsg{status: s, err: err}
	}
}

// scheduleRefresh waits statusRefreshInterval, then fetches, the way the
// teacher's polling loops space out repeated work.
func (m statusModel) scheduleRefresh() tea.Cmd {
	api := m.api
	return tea.Tick(statusRefreshInterval, func(time.Time) tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s, err := api.GetStatus(ctx)
		return statusRefreshMsg{status: s, err: err}
	})
}

func (m statusModel) View() string {
	var b []byte
	b = append(b, watchTitleStyle.Render("QUEUECTL STATUS")...)
	b = append(b, "\n\n"...)
	b = append(b, m.table.View()...)
	b = append(b, "\n\n"...)

	if m.lastErr != nil {
		b = append(b, watchErrorStyle.Render("refresh error: "+m.lastErr.Error())...)
		b = append(b, '\n')
	} else if !m.lastRefresh.IsZero() {
		b = append(b, watchHelpStyle.Render(fmt.Sprintf("last refresh: %s ago", time.Since(m.lastRefresh).Round(time.Second)))...)
		b = append(b, '\n')
	}
	b = append(b, watchHelpStyle.Render("r refresh  │  q quit")...)

	return string(b)
}
