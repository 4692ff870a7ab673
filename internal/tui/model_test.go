package tui

import (
	"context"
	"strconv"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/sovereign-client/internal/factory"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/session"
)

type ModelTestSuite struct {
	suite.Suite
	app *factory.TestApp
	ctx context.Context
}

func TestModelTestSuite(t *testing.T) {
	suite.Run(t, new(ModelTestSuite))
}

func (s *ModelTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.app = factory.NewTestApp()
	s.Require().NoError(s.app.CreateAccount("alice"))
	s.Require().NoError(s.app.CreateAccount("bob"))
	s.Require().NoError(s.app.Session.Login(s.ctx, "alice", factory.TestPassword))
}

func (s *ModelTestSuite) TearDownTest() {
	s.app.Close()
}

// enter types line, presses enter and feeds back the command result
func (s *ModelTestSuite) enter(m Model, line string) (Model, tea.Cmd) {
	m.input.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	switch msg.(type) {
	case submitDoneMsg, clientDoneMsg:
		next, cmd = m.Update(msg)
		return next.(Model), cmd
	}
	return m, cmd
}

func (s *ModelTestSuite) TestViewShowsPilotAndSector() {
	m := New(s.ctx, s.app.App)

	view := m.View()
	s.Contains(view, "alice")
	s.Contains(view, "Sector 1 · Sol")
	s.Contains(view, "Welcome aboard, alice.")
}

func (s *ModelTestSuite) TestSubmitMovesAndReconciles() {
	m := New(s.ctx, s.app.App)

	m, _ = s.enter(m, "move 2")

	s.False(m.statusErr)
	s.Equal("Moved to sector 2.", m.status)
	s.Contains(m.View(), "Sector 2 · Vega")
	sec, ok := s.app.View.Sector()
	s.Require().True(ok)
	s.Equal(2, sec.ID)
}

func (s *ModelTestSuite) TestParseFailureStaysLocal() {
	m := New(s.ctx, s.app.App)
	s.app.Server.Recorder.Reset()

	m.input.SetValue("MOVE north")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	s.Nil(cmd)
	s.True(m.statusErr)
	s.Empty(s.app.Server.Recorder.RequestsTo("/api/command"))
}

func (s *ModelTestSuite) TestServerRejectionKeepsState() {
	m := New(s.ctx, s.app.App)
	before, _ := s.app.View.State()

	m, _ = s.enter(m, "MOVE 9999")

	s.True(m.statusErr)
	s.Contains(m.status, "Invalid destination sector.")
	after, _ := s.app.View.State()
	s.Equal(before, after)
	s.Equal(session.Authenticated, s.app.Session.State())
}

func (s *ModelTestSuite) TestUnauthorizedEndsProgram() {
	m := New(s.ctx, s.app.App)
	s.Require().NoError(s.app.Server.RevokeTokens("alice"))

	m, cmd := s.enter(m, "SCAN")

	s.True(m.ended)
	s.NotNil(cmd)
	s.Equal(session.Anonymous, s.app.Session.State())
}

func (s *ModelTestSuite) TestInboxAndReply() {
	id, err := s.app.Server.SeedMessage(model.MessageKindUser, "bob", "alice", "convoy", "meet at 4")
	s.Require().NoError(err)
	m := New(s.ctx, s.app.App)

	m, _ = s.enter(m, "/inbox")
	s.False(m.statusErr, m.status)
	s.Contains(m.console, "convoy")
	s.Contains(m.console, "bob")

	m, _ = s.enter(m, "/reply "+strconv.FormatInt(id, 10)+" on my way")
	s.False(m.statusErr, m.status)
	s.Equal("Message sent.", m.status)

	sent := s.app.Messages.Sent()
	s.Require().Len(sent, 1)
	s.Equal("Re: convoy", sent[0].Subject)
	s.True(strings.HasPrefix(sent[0].Body, "on my way"))
}

func (s *ModelTestSuite) TestPasswordChangeGate() {
	s.Require().NoError(s.app.Server.RequirePasswordChange("alice"))
	s.app.Session.Logout(s.ctx)
	s.Require().NoError(s.app.Session.Login(s.ctx, "alice", factory.TestPassword))
	m := New(s.ctx, s.app.App)
	s.True(m.statusErr)

	m, _ = s.enter(m, "SCAN")
	s.Contains(m.status, "password change required")

	m, _ = s.enter(m, "/passwd "+factory.TestPassword+" new-password-1")
	s.False(m.statusErr, m.status)
	s.Equal(session.Authenticated, s.app.Session.State())
}

func (s *ModelTestSuite) TestUnreadBadge() {
	m := New(s.ctx, s.app.App)

	next, _ := m.Update(unreadMsg(3))
	m = next.(Model)

	s.Contains(m.View(), "✉ 3")
}

func (s *ModelTestSuite) TestHelpAndEscape() {
	m := New(s.ctx, s.app.App)

	m, _ = s.enter(m, "/help")
	s.Contains(m.console, "/inbox")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	s.Nil(cmd)
	s.Empty(m.console)
}

func (s *ModelTestSuite) TestCancelDropsPendingReply() {
	m := New(s.ctx, s.app.App)
	s.app.Messages.SetReplyContext(&model.Message{ID: 5, From: "bob", Subject: "hi"})

	m, _ = s.enter(m, "/cancel")
	_, ok := s.app.Messages.ReplyContext()
	s.False(ok)
	s.Equal("Reply cancelled.", m.status)

	m, _ = s.enter(m, "/cancel")
	s.Equal("No reply pending.", m.status)
}
