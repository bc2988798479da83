package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/leadmate/leadmate/pkg/api"
	"github.com/leadmate/leadmate/pkg/domain/task"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Interactive kanban board TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("LEADMATE_SKIP_BOARD_RUN") == "true" {
			return nil
		}
		services, err := loadAuthedServices(cmd.Context())
		if err != nil {
			return err
		}
		contextID := services.Session.ContextID(projectFlag)
		if err := services.Tasks.Refresh(cmd.Context(), contextID); err != nil {
			return fmt.Errorf("load tasks: %s", api.UserMessage(err))
		}

		p := tea.NewProgram(newBoardModel(cmd.Context(), services))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("board run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(boardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#2563EB")).
	PaddingLeft(1).
	PaddingRight(1)

var errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

type boardModel struct {
	ctx      context.Context
	services *appServices
	table    table.Model
	who      string
	lastErr  string
}

// moveDoneMsg reports the outcome of an optimistic move. The board
// re-reads the store either way: on failure the engine has already
// reverted the task to its prior column.
type moveDoneMsg struct{ err error }

func newBoardModel(ctx context.Context, services *appServices) boardModel {
	columns := []table.Column{
		{Title: "Column", Width: 12},
		{Title: "Priority", Width: 8},
		{Title: "Task", Width: 44},
		{Title: "ID", Width: 24},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	m := boardModel{
		ctx:      ctx,
		services: services,
		table:    t,
		who:      services.Session.User().Name,
	}
	m.reloadRows()
	return m
}

func columnLabel(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return "in progress"
	case task.StatusCompleted:
		return "completed"
	default:
		return "to do"
	}
}

func (m *boardModel) reloadRows() {
	columns, _ := m.services.Views.TaskColumns()
	rows := []table.Row{}
	for _, group := range [][]task.Task{columns.Todo, columns.InProgress, columns.Completed} {
		for _, t := range group {
			rows = append(rows, table.Row{columnLabel(t.Status), string(t.Priority), t.Title, t.ID})
		}
	}
	m.table.SetRows(rows)
}

func (m boardModel) selectedTaskID() string {
	row := m.table.SelectedRow()
	if row == nil {
		return ""
	}
	return row[3]
}

func (m boardModel) moveSelected(to task.Status) tea.Cmd {
	id := m.selectedTaskID()
	if id == "" {
		return nil
	}
	return func() tea.Msg {
		return moveDoneMsg{err: m.services.Tasks.Move(m.ctx, id, to)}
	}
}

func (m boardModel) Init() tea.Cmd { return nil }

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "1":
			return m, m.moveSelected(task.StatusTodo)
		case "2":
			return m, m.moveSelected(task.StatusInProgress)
		case "3":
			return m, m.moveSelected(task.StatusCompleted)
		case "r":
			contextID := m.services.Session.ContextID(projectFlag)
			if err := m.services.Tasks.Refresh(m.ctx, contextID); err != nil {
				m.lastErr = api.UserMessage(err)
			} else {
				m.lastErr = ""
			}
			m.reloadRows()
			return m, nil
		}
	case moveDoneMsg:
		if msg.err != nil {
			m.lastErr = api.UserMessage(msg.err)
		} else {
			m.lastErr = ""
		}
		m.reloadRows()
		return m, nil
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m boardModel) View() string {
	header := headerStyle.Render(fmt.Sprintf("LeadMate board — %s", m.who))

	errView := ""
	if m.lastErr != "" {
		errView = errStyle.Render("\n" + m.lastErr)
	}

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			errView,
			"\n[1] To do  [2] In progress  [3] Completed  [r] Refresh  [q] Quit",
		),
	) + "\n"
}
