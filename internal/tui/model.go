// Package tui is the interactive front-end for a logged-in session. It only
// produces command lines and projects the reconciled view; every game action
// goes through the dispatcher.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/session"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// LogLimit is how many log lines the activity pane keeps
const LogLimit = 200

// Model is the bubbletea model for `sovereign play`
type Model struct {
	app    *factory.App
	ctx    context.Context
	theme  theme
	unread <-chan int

	input textinput.Model
	pane  viewport.Model

	width  int
	height int

	status    string
	statusErr bool
	busy      bool
	// console replaces the activity log with client output until cleared
	console string
	server  string
	count   int
	ended   bool
}

// New creates the model for an already established session
func New(ctx context.Context, app *factory.App) Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "MOVE 2, TRADE BUY ORE 10, /inbox, /help"
	input.CharLimit = 500
	input.Focus()

	pane := viewport.New(80, 10)

	m := Model{
		app:    app,
		ctx:    ctx,
		theme:  newTheme(),
		unread: app.Poller.Subscribe(),
		input:  input,
		pane:   pane,
		width:  80,
		height: 24,
		count:  app.Poller.Unread(),
		status: "Ready. Type HELP for game commands or /help for client commands.",
	}
	if app.Session.State() == session.PasswordChangeRequired {
		m.status = "A password change is required: /passwd <old> <new>"
		m.statusErr = true
	}
	m.refreshPane()
	return m
}

// Run starts the program and blocks until the player quits
func Run(ctx context.Context, app *factory.App) error {
	_, err := tea.NewProgram(New(ctx, app), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// Init starts the unread subscription and the health badge fetch
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitUnread(m.unread), m.healthCmd())
}

// Update handles input, command results and unread updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			if m.console != "" {
				m.console = ""
				m.refreshPane()
				return m, nil
			}
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			cmd := m.submit(line)
			if m.ended {
				return m, tea.Quit
			}
			return m, cmd
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.pane, cmd = m.pane.Update(msg)
			return m, cmd
		}

	case submitDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.ok(msg.message)
			m.console = ""
		}
		m.refreshPane()
		if m.ended {
			return m, tea.Quit
		}
		return m, nil

	case clientDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.fail(msg.err)
		} else {
			m.ok(msg.status)
			if msg.console != "" {
				m.console = msg.console
			}
		}
		if msg.quit {
			return m, tea.Quit
		}
		m.refreshPane()
		if m.ended {
			return m, tea.Quit
		}
		return m, nil

	case unreadMsg:
		m.count = int(msg)
		cmds = append(cmds, waitUnread(m.unread))

	case healthMsg:
		m.server = string(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the screen
func (m Model) View() string {
	status := m.theme.status.Render(m.status)
	if m.statusErr {
		status = m.theme.errStatus.Render(m.status)
	}
	if m.busy {
		status = m.theme.muted.Render("Waiting for the server...")
	}
	footer := m.theme.muted.Render("enter send · pgup/pgdn scroll · esc back/quit")
	if m.server != "" {
		footer += m.theme.muted.Render(" · " + m.server)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderSector(),
		m.pane.View(),
		status,
		m.theme.input.Width(m.width).Render(m.input.View()),
		footer,
	)
}

// submit routes a line to the dispatcher or a client command
func (m *Model) submit(line string) tea.Cmd {
	if line == "" || m.busy {
		return nil
	}
	if strings.HasPrefix(line, "/") {
		return m.clientCommand(line)
	}
	if err := m.app.Session.Playable(); err != nil {
		if errors.Is(err, model.ErrPasswordChangeRequired) {
			m.fail(errors.New("password change required: /passwd <old> <new>"))
		} else {
			m.fail(err)
		}
		return nil
	}
	// Parse failures never leave the client
	if _, err := command.Parse(line); err != nil {
		m.fail(err)
		return nil
	}

	m.busy = true
	return m.submitCmd(line)
}

func (m *Model) ok(status string) {
	m.status = status
	m.statusErr = false
}

func (m *Model) fail(err error) {
	m.statusErr = true
	m.status = err.Error()
	if transport.IsUnauthorized(err) || m.app.Session.State() == session.Anonymous {
		m.ended = true
		m.status = "Session ended. Log in again with `sovereign login`."
	}
}

func (m *Model) resize() {
	sectorHeight := lipgloss.Height(m.renderSector())
	// header, status, input (with border) and footer
	chrome := 1 + 1 + 2 + 1
	h := m.height - sectorHeight - chrome
	if h < 3 {
		h = 3
	}
	m.pane.Width = m.width
	m.pane.Height = h
	m.input.Width = m.width - len(m.input.Prompt) - 1
	m.refreshPane()
}

func (m *Model) refreshPane() {
	if m.console != "" {
		m.pane.SetContent(m.console)
	} else {
		m.pane.SetContent(m.renderLogs(m.app.View.RecentLogs(LogLimit)))
	}
	m.pane.GotoTop()
}
