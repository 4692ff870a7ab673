package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mcoot/sovereign-client/internal/messages"
	"github.com/mcoot/sovereign-client/internal/model"
)

// clientHelp lists the slash commands handled by the client itself
var clientHelp = []string{
	"/inbox               list received messages (marks them read)",
	"/sent                list sent messages",
	"/read <id>           show a message",
	"/msg <user> <text>   send a message",
	"/reply <id> <text>   reply to a message, quoting it",
	"/cancel              drop the pending reply",
	"/delete <id>         delete a message",
	"/refresh             reload state from the server",
	"/passwd <old> <new>  change password",
	"/logs                back to the activity log",
	"/logout              end the session",
	"/quit                leave",
}

type submitDoneMsg struct {
	message string
	err     error
}

type clientDoneMsg struct {
	status  string
	console string
	err     error
	quit    bool
}

type unreadMsg int

type healthMsg string

func (m Model) submitCmd(line string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Dispatcher.Submit(m.ctx, line)
		if err != nil {
			return submitDoneMsg{err: err}
		}
		return submitDoneMsg{message: res.Message}
	}
}

func waitUnread(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return unreadMsg(n)
	}
}

// healthCmd fetches the server name and version for the footer. Failures
// leave the footer blank.
func (m Model) healthCmd() tea.Cmd {
	return func() tea.Msg {
		h, err := m.app.Transport.Health(m.ctx)
		if err != nil {
			return nil
		}
		return healthMsg(fmt.Sprintf("%s %s", h.Name, h.Version))
	}
}

// clientCommand handles slash commands. Anything touching the network runs
// as a tea.Cmd.
func (m *Model) clientCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/quit", "/exit":
		return tea.Quit
	case "/help":
		m.console = strings.Join(clientHelp, "\n")
		m.ok("Client commands")
		m.refreshPane()
		return nil
	case "/logs":
		m.console = ""
		m.ok("Activity log")
		m.refreshPane()
		return nil
	case "/passwd":
		if len(args) != 2 {
			m.fail(fmt.Errorf("usage: /passwd <old> <new>"))
			return nil
		}
		return m.run(func() clientDoneMsg {
			if err := m.app.Session.ChangePassword(m.ctx, args[0], args[1]); err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: "Password changed."}
		})
	case "/cancel":
		if _, ok := m.app.Messages.ReplyContext(); !ok {
			m.ok("No reply pending.")
			return nil
		}
		m.app.Messages.CancelReply()
		m.ok("Reply cancelled.")
		return nil
	case "/logout":
		return m.run(func() clientDoneMsg {
			m.app.Session.Logout(m.ctx)
			return clientDoneMsg{status: "Logged out.", quit: true}
		})
	}

	// Everything below needs a playable session
	if err := m.app.Session.Playable(); err != nil {
		m.fail(err)
		return nil
	}

	switch name {
	case "/refresh":
		return m.run(func() clientDoneMsg {
			if err := m.app.Session.Refresh(m.ctx); err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: "State refreshed."}
		})
	case "/inbox":
		return m.run(func() clientDoneMsg {
			msgs, err := m.app.Messages.ListInbox(m.ctx)
			if err != nil && msgs == nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: "Inbox", console: renderMessageList("inbox", msgs), err: err}
		})
	case "/sent":
		return m.run(func() clientDoneMsg {
			msgs, err := m.app.Messages.ListSent(m.ctx)
			if err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: "Sent", console: renderMessageList("sent", msgs)}
		})
	case "/read", "/delete":
		if len(args) != 1 {
			m.fail(fmt.Errorf("usage: %s <id>", name))
			return nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			m.fail(fmt.Errorf("invalid message id %q", args[0]))
			return nil
		}
		if name == "/delete" {
			return m.run(func() clientDoneMsg {
				if err := m.app.Messages.Delete(m.ctx, id); err != nil {
					return clientDoneMsg{err: err}
				}
				return clientDoneMsg{status: fmt.Sprintf("Message %d deleted.", id), console: renderMessageList("inbox", m.app.Messages.Inbox())}
			})
		}
		return m.run(func() clientDoneMsg {
			msg, err := m.find(id)
			if err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: fmt.Sprintf("Message %d", id), console: renderMessage(msg)}
		})
	case "/msg":
		if len(args) < 2 {
			m.fail(fmt.Errorf("usage: /msg <user> <text>"))
			return nil
		}
		draft := messages.Draft{To: args[0], Body: strings.Join(args[1:], " ")}
		return m.run(func() clientDoneMsg {
			res, err := m.app.Messages.Send(m.ctx, draft)
			if err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: res.Message}
		})
	case "/reply":
		if len(args) < 2 {
			m.fail(fmt.Errorf("usage: /reply <id> <text>"))
			return nil
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			m.fail(fmt.Errorf("invalid message id %q", args[0]))
			return nil
		}
		text := strings.Join(args[1:], " ")
		return m.run(func() clientDoneMsg {
			original, err := m.find(id)
			if err != nil {
				return clientDoneMsg{err: err}
			}
			res, err := m.app.Messages.Send(m.ctx, m.app.Messages.Reply(original, text))
			if err != nil {
				return clientDoneMsg{err: err}
			}
			return clientDoneMsg{status: res.Message}
		})
	}

	m.fail(fmt.Errorf("unknown client command %s (try /help)", name))
	return nil
}

func (m *Model) run(fn func() clientDoneMsg) tea.Cmd {
	m.busy = true
	return func() tea.Msg {
		return fn()
	}
}

// find looks in the caches first, then lists the inbox
func (m Model) find(id int64) (model.Message, error) {
	if msg, err := m.app.Messages.Find(id); err == nil {
		return msg, nil
	}
	if _, err := m.app.Messages.ListInbox(m.ctx); err != nil {
		return model.Message{}, err
	}
	return m.app.Messages.Find(id)
}
