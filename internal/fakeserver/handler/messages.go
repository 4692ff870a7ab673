package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/sovereign-client/internal/fakeserver/middleware"
	"github.com/mcoot/sovereign-client/internal/fakeserver/request"
	"github.com/mcoot/sovereign-client/internal/fakeserver/response"
	"github.com/mcoot/sovereign-client/internal/fakeserver/world"
)

// maxMultipartMemory bounds the form fields held in memory
const maxMultipartMemory = world.MaxAttachmentBytes + 64<<10

// MessageHandler handles direct message endpoints
type MessageHandler struct {
	world  *world.World
	logger *slog.Logger
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(w *world.World, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{world: w, logger: logger}
}

// UnreadCount handles GET /api/messages/unread_count
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.UnreadCount{Unread: h.world.UnreadCount(user.PlayerID)})
}

// Inbox handles GET /api/messages/inbox
func (h *MessageHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.MessageList{Messages: h.world.Inbox(user.PlayerID)})
}

// Sent handles GET /api/messages/sent
func (h *MessageHandler) Sent(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())
	response.JSON(w, http.StatusOK, response.MessageList{Messages: h.world.Sent(user.PlayerID)})
}

// Send handles POST /api/messages/send as JSON or multipart/form-data
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	in, err := decodeSend(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	id, err := h.world.SendMessage(user.PlayerID, in)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("message sent",
		slog.String("from", user.Username),
		slog.String("to", in.ToUsername),
		slog.Int64("id", id),
		slog.Bool("attachment", in.Attachment != nil),
	)
	response.JSON(w, http.StatusOK, response.Sent{OK: true, Message: "Message sent.", ID: id})
}

// MarkRead handles POST /api/messages/mark_read
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	var req request.MarkReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return
	}
	if len(req.MessageIDs) == 0 {
		WriteError(w, badRequest("message_ids required"))
		return
	}

	updated := h.world.MarkRead(user.PlayerID, req.MessageIDs)
	response.JSON(w, http.StatusOK, response.MarkRead{OK: true, Updated: updated})
}

// Delete handles POST /api/messages/delete
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	id, ok := decodeMessageID(w, r)
	if !ok {
		return
	}
	if err := h.world.DeleteMessage(user.PlayerID, id); err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.OK{OK: true})
}

// Report handles POST /api/messages/report
func (h *MessageHandler) Report(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	id, ok := decodeMessageID(w, r)
	if !ok {
		return
	}
	if err := h.world.ReportMessage(user.PlayerID, id); err != nil {
		WriteError(w, err)
		return
	}
	h.logger.Info("message reported", slog.String("by", user.Username), slog.Int64("id", id))
	response.JSON(w, http.StatusOK, response.OK{OK: true, Message: "Report sent."})
}

// Attachment handles GET /api/messages/attachments/{id}
func (h *MessageHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	user := middleware.MustGetUser(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, badRequest("invalid attachment id"))
		return
	}

	meta, data, err := h.world.Attachment(user.PlayerID, id)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.Attachment(w, meta.Filename, meta.ContentType, data)
}

func decodeMessageID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req request.MessageIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, badRequest("invalid request body"))
		return 0, false
	}
	if req.MessageID <= 0 {
		WriteError(w, badRequest("message_id required"))
		return 0, false
	}
	return req.MessageID, true
}

func decodeSend(r *http.Request) (world.SendInput, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req request.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return world.SendInput{}, badRequest("invalid request body")
		}
		return world.SendInput{
			ToUsername:       req.ToUsername,
			Subject:          req.Subject,
			Body:             req.Body,
			RelatedMessageID: req.RelatedMessageID,
		}, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return world.SendInput{}, badRequest("invalid multipart body")
	}
	in := world.SendInput{
		ToUsername: r.FormValue("to_username"),
		Subject:    r.FormValue("subject"),
		Body:       r.FormValue("body"),
	}
	if raw := strings.TrimSpace(r.FormValue("related_message_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return world.SendInput{}, badRequest("invalid related_message_id")
		}
		in.RelatedMessageID = &id
	}

	file, header, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return in, nil
	}
	if err != nil {
		return world.SendInput{}, badRequest("invalid attachment")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, world.MaxAttachmentBytes+1))
	if err != nil {
		return world.SendInput{}, badRequest("invalid attachment")
	}
	in.Attachment = &world.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	return in, nil
}
