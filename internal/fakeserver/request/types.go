package request

// CredentialsRequest is the body of register and login
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of change_password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// SendMessageRequest is the JSON form of messages/send. The multipart form
// carries the same fields plus an attachment part.
type SendMessageRequest struct {
	ToUsername       string `json:"to_username"`
	Subject          string `json:"subject"`
	Body             string `json:"body"`
	RelatedMessageID *int64 `json:"related_message_id,omitempty"`
}

// MarkReadRequest is the body of messages/mark_read
type MarkReadRequest struct {
	MessageIDs []int64 `json:"message_ids"`
}

// MessageIDRequest is the body of messages/delete and messages/report
type MessageIDRequest struct {
	MessageID int64 `json:"message_id"`
}
