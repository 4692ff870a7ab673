package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mcoot/sovereign-client/internal/model"
)

// MaxAttachmentBytes caps a single uploaded file
const MaxAttachmentBytes = 1 << 20

// Message validation errors. Their text is returned to the client verbatim.
var (
	ErrInvalidRecipient   = errors.New("recipient username must be 3-20 chars")
	ErrUnknownRecipient   = errors.New("unknown recipient username")
	ErrMessageToSelf      = errors.New("cannot send a message to yourself")
	ErrEmptyBody          = errors.New("message body required")
	ErrAttachmentTooLarge = errors.New("attachment too large")
	ErrNotReportable      = errors.New("only player messages can be reported")
	ErrNoAdmin            = errors.New("no administrator available to receive reports")
	ErrAttachmentNotFound = errors.New("attachment not found")
)

// Upload is a file attached to an outgoing message
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendInput is an outgoing direct message
type SendInput struct {
	ToUsername       string
	Subject          string
	Body             string
	RelatedMessageID *int64
	Attachment       *Upload
}

type storedAttachment struct {
	model.Attachment
	data []byte
}

type storedMessage struct {
	id          int64
	kind        model.MessageKind
	fromID      string
	toID        string
	from        string
	to          string
	subject     string
	body        string
	createdAt   time.Time
	readAt      *time.Time
	relatedID   *int64
	attachments []storedAttachment

	deletedBySender    bool
	deletedByRecipient bool
}

func (m *storedMessage) view() model.Message {
	msg := model.Message{
		ID:               m.id,
		Kind:             m.kind,
		From:             m.from,
		To:               m.to,
		Subject:          m.subject,
		Body:             m.body,
		CreatedAt:        m.createdAt,
		RelatedMessageID: m.relatedID,
	}
	if m.readAt != nil {
		t := *m.readAt
		msg.ReadAt = &t
	}
	for _, a := range m.attachments {
		msg.Attachments = append(msg.Attachments, a.Attachment)
	}
	return msg
}

// SendMessage validates and stores a direct message from a pilot
func (w *World) SendMessage(fromID string, in SendInput) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	from, ok := w.players[fromID]
	if !ok {
		return 0, ErrPlayerNotFound
	}
	toName := strings.TrimSpace(in.ToUsername)
	if len(toName) < 3 || len(toName) > 20 {
		return 0, ErrInvalidRecipient
	}
	to, ok := w.playerByUsername(toName)
	if !ok {
		return 0, ErrUnknownRecipient
	}
	if to.ID == from.ID {
		return 0, ErrMessageToSelf
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return 0, ErrEmptyBody
	}

	var attachments []storedAttachment
	if in.Attachment != nil && len(in.Attachment.Data) > 0 {
		if len(in.Attachment.Data) > MaxAttachmentBytes {
			return 0, ErrAttachmentTooLarge
		}
		attachments = append(attachments, w.newAttachment(*in.Attachment))
	}

	m := w.store(model.MessageKindUser, from, to, strings.TrimSpace(in.Subject), body, in.RelatedMessageID)
	m.attachments = attachments
	return m.id, nil
}

// SeedMessage delivers a message of any kind, bypassing validation. A nil
// sender is the game itself.
func (w *World) SeedMessage(kind model.MessageKind, fromUsername, toUsername, subject, body string) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	to, ok := w.playerByUsername(toUsername)
	if !ok {
		return 0, ErrUnknownRecipient
	}
	from, _ := w.playerByUsername(fromUsername)
	return w.store(kind, from, to, subject, body, nil).id, nil
}

// store must be called with mu held
func (w *World) store(kind model.MessageKind, from, to *model.PlayerState, subject, body string, related *int64) *storedMessage {
	m := &storedMessage{
		id:        w.nextMessageID,
		kind:      kind,
		toID:      to.ID,
		to:        to.Username,
		from:      "SYSTEM",
		subject:   subject,
		body:      body,
		createdAt: w.clock.Now(),
	}
	if from != nil {
		m.fromID = from.ID
		m.from = from.Username
	}
	if related != nil {
		id := *related
		m.relatedID = &id
	}
	w.nextMessageID++
	w.messages = append(w.messages, m)
	return m
}

func (w *World) newAttachment(up Upload) storedAttachment {
	name := strings.TrimSpace(up.Filename)
	if name == "" {
		name = "attachment"
	}
	ct := up.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	a := storedAttachment{
		Attachment: model.Attachment{
			ID:          w.nextAttachID,
			Filename:    name,
			ContentType: ct,
			SizeBytes:   int64(len(up.Data)),
		},
		data: append([]byte(nil), up.Data...),
	}
	w.nextAttachID++
	return a
}

// Inbox lists messages received by a pilot, newest first
func (w *World) Inbox(playerID string) []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.list(func(m *storedMessage) bool {
		return m.toID == playerID && !m.deletedByRecipient
	})
}

// Sent lists messages sent by a pilot, newest first
func (w *World) Sent(playerID string) []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.list(func(m *storedMessage) bool {
		return m.fromID == playerID && !m.deletedBySender
	})
}

func (w *World) list(keep func(*storedMessage) bool) []model.Message {
	out := make([]model.Message, 0)
	for _, m := range w.messages {
		if keep(m) {
			out = append(out, m.view())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// UnreadCount counts undeleted unread messages in a pilot's inbox
func (w *World) UnreadCount(playerID string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, m := range w.messages {
		if m.toID == playerID && !m.deletedByRecipient && m.readAt == nil {
			n++
		}
	}
	return n
}

// MarkRead stamps the given inbox messages as read and returns how many
// changed. Already-read and foreign ids are ignored.
func (w *World) MarkRead(playerID string, ids []int64) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	now := w.clock.Now()
	updated := 0
	for _, m := range w.messages {
		if !want[m.id] || m.toID != playerID || m.deletedByRecipient || m.readAt != nil {
			continue
		}
		t := now
		m.readAt = &t
		updated++
	}
	return updated
}

// DeleteMessage hides a message from the caller's side only
func (w *World) DeleteMessage(playerID string, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	m := w.find(id)
	if m == nil {
		return ErrMessageNotFound
	}
	switch {
	case m.toID == playerID && !m.deletedByRecipient:
		m.deletedByRecipient = true
	case m.fromID == playerID && !m.deletedBySender:
		m.deletedBySender = true
	default:
		return ErrMessageNotFound
	}
	return nil
}

// ReportMessage forwards a received player message to an administrator as
// a bug report
func (w *World) ReportMessage(playerID string, id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	m := w.find(id)
	if m == nil || m.toID != playerID || m.deletedByRecipient {
		return ErrMessageNotFound
	}
	if m.kind != model.MessageKindUser {
		return ErrNotReportable
	}
	admin := w.firstAdmin()
	if admin == nil {
		return ErrNoAdmin
	}
	reporter := w.players[playerID]
	body := fmt.Sprintf("Reported message #%d from %s:\n\n%s", m.id, m.from, m.body)
	related := m.id
	w.store(model.MessageKindBugReport, reporter, admin, "Report: "+m.subject, body, &related)
	return nil
}

// Attachment returns an attachment visible to the pilot. Administrators
// can read any attachment.
func (w *World) Attachment(playerID string, attachmentID int64) (model.Attachment, []byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.players[playerID]
	for _, m := range w.messages {
		for _, a := range m.attachments {
			if a.ID != attachmentID {
				continue
			}
			visible := (m.toID == playerID && !m.deletedByRecipient) ||
				(m.fromID == playerID && !m.deletedBySender) ||
				(p != nil && p.IsAdmin)
			if !visible {
				return model.Attachment{}, nil, ErrAttachmentNotFound
			}
			return a.Attachment, append([]byte(nil), a.data...), nil
		}
	}
	return model.Attachment{}, nil, ErrAttachmentNotFound
}

func (w *World) find(id int64) *storedMessage {
	for _, m := range w.messages {
		if m.id == id {
			return m
		}
	}
	return nil
}

func (w *World) firstAdmin() *model.PlayerState {
	var admin *model.PlayerState
	for _, p := range w.players {
		if p.IsAdmin && (admin == nil || p.Username < admin.Username) {
			admin = p
		}
	}
	return admin
}
