// Package messages manages direct messages: inbox and sent caches, read
// acknowledgment, sending with optional attachments, and the reply context.
package messages

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/transport"
)

// API is the message surface of the server
type API interface {
	Inbox(ctx context.Context) ([]model.Message, error)
	Sent(ctx context.Context) ([]model.Message, error)
	SendMessage(ctx context.Context, req transport.SendRequest) (*transport.SendResult, error)
	MarkRead(ctx context.Context, ids []int64) (int, error)
	DeleteMessage(ctx context.Context, id int64) error
	ReportMessage(ctx context.Context, id int64) error
	DownloadAttachment(ctx context.Context, id int64) (*transport.Download, error)
}

// UnreadRefresher triggers an out-of-band unread-count fetch
type UnreadRefresher interface {
	Refresh(ctx context.Context)
}

// SessionGuard tears the session down on auth failures
type SessionGuard interface {
	Guard(ctx context.Context, err error) error
}

// Draft is an outgoing message as composed by the player
type Draft struct {
	To         string
	Subject    string
	Body       string
	Attachment *transport.Upload
	// RelatedID links a reply. Nil means use the active reply context when
	// the draft goes back to that message's sender.
	RelatedID *int64
}

// Manager holds client-side projections of server-owned messages
type Manager struct {
	api     API
	unread  UnreadRefresher
	session SessionGuard
	clock   clock.Clock
	logger  *slog.Logger

	mu    sync.Mutex
	inbox []model.Message
	sent  []model.Message
	reply *model.Message
}

// NewManager creates a Manager with empty caches
func NewManager(api API, unread UnreadRefresher, session SessionGuard, clk clock.Clock, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Manager{
		api:     api,
		unread:  unread,
		session: session,
		clock:   clk,
		logger:  logger,
	}
}

// ListInbox fetches the inbox, then marks every unread message read in one
// batched call and refreshes the unread count. The list is returned as
// received so callers can highlight what was new.
func (m *Manager) ListInbox(ctx context.Context) ([]model.Message, error) {
	msgs, err := m.api.Inbox(ctx)
	if err != nil {
		return nil, m.session.Guard(ctx, err)
	}

	m.mu.Lock()
	m.inbox = cloneMessages(msgs)
	m.mu.Unlock()

	var unread []int64
	for _, msg := range msgs {
		if msg.Unread() {
			unread = append(unread, msg.ID)
		}
	}
	if len(unread) > 0 {
		if _, err := m.markRead(ctx, unread); err != nil {
			return msgs, fmt.Errorf("failed to mark messages read: %w", err)
		}
	}
	return msgs, nil
}

// ListSent fetches messages sent by the player
func (m *Manager) ListSent(ctx context.Context) ([]model.Message, error) {
	msgs, err := m.api.Sent(ctx)
	if err != nil {
		return nil, m.session.Guard(ctx, err)
	}

	m.mu.Lock()
	m.sent = cloneMessages(msgs)
	m.mu.Unlock()
	return msgs, nil
}

// MarkRead acknowledges ids. Ids already known to be read are skipped, so
// repeating a call changes nothing and makes no request.
func (m *Manager) MarkRead(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, model.ErrNothingToMark
	}

	m.mu.Lock()
	pending := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if msg := findMessage(m.inbox, id); msg != nil && !msg.Unread() {
			continue
		}
		pending = append(pending, id)
	}
	m.mu.Unlock()

	if len(pending) == 0 {
		return 0, nil
	}
	return m.markRead(ctx, pending)
}

func (m *Manager) markRead(ctx context.Context, ids []int64) (int, error) {
	updated, err := m.api.MarkRead(ctx, ids)
	if err != nil {
		return 0, m.session.Guard(ctx, err)
	}

	now := m.clock.Now()
	m.mu.Lock()
	for _, id := range ids {
		if msg := findMessage(m.inbox, id); msg != nil && msg.Unread() {
			readAt := now
			msg.ReadAt = &readAt
		}
	}
	m.mu.Unlock()

	m.unread.Refresh(ctx)
	return updated, nil
}

// Send validates and sends d. Multipart is used when d carries attachment
// bytes. On success the reply context is cleared and the sent list and
// unread count are refreshed.
func (m *Manager) Send(ctx context.Context, d Draft) (*transport.SendResult, error) {
	to := strings.TrimSpace(d.To)
	body := strings.TrimSpace(d.Body)
	if to == "" || body == "" {
		return nil, model.ErrEmptyDraft
	}

	related := d.RelatedID
	if related == nil {
		m.mu.Lock()
		if m.reply != nil && strings.EqualFold(m.reply.From, to) {
			id := m.reply.ID
			related = &id
		}
		m.mu.Unlock()
	}

	res, err := m.api.SendMessage(ctx, transport.SendRequest{
		ToUsername:       to,
		Subject:          strings.TrimSpace(d.Subject),
		Body:             body,
		RelatedMessageID: related,
		Attachment:       d.Attachment,
	})
	if err != nil {
		return nil, m.session.Guard(ctx, err)
	}

	m.CancelReply()
	if _, err := m.ListSent(ctx); err != nil {
		m.logger.Debug("sent list refresh failed", "error", err)
	}
	m.unread.Refresh(ctx)
	return res, nil
}

// Delete removes a message from the player's view
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if err := m.api.DeleteMessage(ctx, id); err != nil {
		return m.session.Guard(ctx, err)
	}

	m.mu.Lock()
	m.inbox = removeMessage(m.inbox, id)
	m.sent = removeMessage(m.sent, id)
	if m.reply != nil && m.reply.ID == id {
		m.reply = nil
	}
	m.mu.Unlock()

	m.unread.Refresh(ctx)
	return nil
}

// Report flags a user message for the admins
func (m *Manager) Report(ctx context.Context, id int64) error {
	if err := m.api.ReportMessage(ctx, id); err != nil {
		return m.session.Guard(ctx, err)
	}
	m.unread.Refresh(ctx)
	return nil
}

// Download fetches an attachment's bytes
func (m *Manager) Download(ctx context.Context, attachmentID int64) (*transport.Download, error) {
	dl, err := m.api.DownloadAttachment(ctx, attachmentID)
	if err != nil {
		return nil, m.session.Guard(ctx, err)
	}
	return dl, nil
}

// SetReplyContext replaces the reply context. Nil clears it.
func (m *Manager) SetReplyContext(msg *model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg == nil {
		m.reply = nil
		return
	}
	c := *msg
	m.reply = &c
}

// ReplyContext returns the message being replied to, if any
func (m *Manager) ReplyContext() (model.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reply == nil {
		return model.Message{}, false
	}
	return *m.reply, true
}

// CancelReply clears the reply context
func (m *Manager) CancelReply() {
	m.SetReplyContext(nil)
}

// Reply makes msg the reply context and seeds a draft from it. Any text
// already composed is kept ahead of the quote.
func (m *Manager) Reply(msg model.Message, composed string) Draft {
	m.SetReplyContext(&msg)
	id := msg.ID
	return Draft{
		To:        msg.From,
		Subject:   ReplySubject(msg.Subject),
		Body:      composed + QuoteBody(msg),
		RelatedID: &id,
	}
}

// Find looks a message up in the inbox then sent caches
func (m *Manager) Find(id int64) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg := findMessage(m.inbox, id); msg != nil {
		return *msg, nil
	}
	if msg := findMessage(m.sent, id); msg != nil {
		return *msg, nil
	}
	return model.Message{}, model.ErrMessageNotFound
}

// LocalUnread counts cached inbox messages without a read timestamp
func (m *Manager) LocalUnread() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.inbox {
		if msg.Unread() {
			n++
		}
	}
	return n
}

// Inbox returns the cached inbox
func (m *Manager) Inbox() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMessages(m.inbox)
}

// Sent returns the cached sent list
func (m *Manager) Sent() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneMessages(m.sent)
}

// Reset discards the caches and the reply context
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbox = nil
	m.sent = nil
	m.reply = nil
}

func findMessage(msgs []model.Message, id int64) *model.Message {
	for i := range msgs {
		if msgs[i].ID == id {
			return &msgs[i]
		}
	}
	return nil
}

func removeMessage(msgs []model.Message, id int64) []model.Message {
	out := msgs[:0]
	for _, msg := range msgs {
		if msg.ID != id {
			out = append(out, msg)
		}
	}
	return out
}

func cloneMessages(msgs []model.Message) []model.Message {
	if msgs == nil {
		return nil
	}
	out := make([]model.Message, len(msgs))
	copy(out, msgs)
	return out
}
