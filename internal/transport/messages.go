package transport

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"github.com/mcoot/sovereign-client/internal/model"
)

// Upload is a file attached to an outgoing message
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendRequest is an outgoing direct message
type SendRequest struct {
	ToUsername       string  `json:"to_username"`
	Subject          string  `json:"subject"`
	Body             string  `json:"body"`
	RelatedMessageID *int64  `json:"related_message_id,omitempty"`
	Attachment       *Upload `json:"-"`
}

// SendResult is the server acknowledgment of a sent message
type SendResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type messageListResponse struct {
	Messages []model.Message `json:"messages"`
}

type unreadCountResponse struct {
	Unread int `json:"unread"`
}

type markReadRequest struct {
	MessageIDs []int64 `json:"message_ids"`
}

type markReadResponse struct {
	Updated int `json:"updated"`
}

type messageIDRequest struct {
	MessageID int64 `json:"message_id"`
}

// UnreadCount fetches the server-computed unread inbox count
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var resp unreadCountResponse
	if err := c.Get(ctx, "/messages/unread_count", &resp); err != nil {
		return 0, err
	}
	return resp.Unread, nil
}

// Inbox lists received messages
func (c *Client) Inbox(ctx context.Context) ([]model.Message, error) {
	var resp messageListResponse
	if err := c.Get(ctx, "/messages/inbox", &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Sent lists messages sent by the current pilot
func (c *Client) Sent(ctx context.Context) ([]model.Message, error) {
	var resp messageListResponse
	if err := c.Get(ctx, "/messages/sent", &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage sends as JSON, or as multipart when an attachment with content is present
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	var resp SendResult
	if req.Attachment == nil || len(req.Attachment.Data) == 0 {
		if err := c.Post(ctx, "/messages/send", req, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	body, contentType, err := encodeMultipart(req)
	if err != nil {
		return nil, err
	}
	if err := c.PostMultipart(ctx, "/messages/send", contentType, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MarkRead acknowledges messages in a single batched call
func (c *Client) MarkRead(ctx context.Context, ids []int64) (int, error) {
	var resp markReadResponse
	if err := c.Post(ctx, "/messages/mark_read", markReadRequest{MessageIDs: ids}, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

// DeleteMessage removes a message from the pilot's view
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.Post(ctx, "/messages/delete", messageIDRequest{MessageID: id}, nil)
}

// ReportMessage flags a user message for the admins
func (c *Client) ReportMessage(ctx context.Context, id int64) error {
	return c.Post(ctx, "/messages/report", messageIDRequest{MessageID: id}, nil)
}

// DownloadAttachment fetches the raw bytes of an attachment
func (c *Client) DownloadAttachment(ctx context.Context, id int64) (*Download, error) {
	return c.GetBinary(ctx, fmt.Sprintf("/messages/attachments/%d", id))
}

func encodeMultipart(req SendRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"to_username", req.ToUsername},
		{"subject", req.Subject},
		{"body", req.Body},
	}
	if req.RelatedMessageID != nil {
		fields = append(fields, [2]string{"related_message_id", strconv.FormatInt(*req.RelatedMessageID, 10)})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to encode %s: %w", f[0], err)
		}
	}

	contentType := req.Attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="attachment"; filename=%q`, req.Attachment.Filename))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode attachment: %w", err)
	}
	if _, err := part.Write(req.Attachment.Data); err != nil {
		return nil, "", fmt.Errorf("failed to encode attachment: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode message: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
