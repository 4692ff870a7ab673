package fakeserver_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/sovereign-client/internal/fakeserver"
	"github.com/mcoot/sovereign-client/internal/fakeserver/auth"
	"github.com/mcoot/sovereign-client/internal/fakeserver/handler"
	"github.com/mcoot/sovereign-client/internal/model"
	"github.com/mcoot/sovereign-client/internal/testutil"
)

const password = "hunter22!"

// testServer drives the router in-process
type testServer struct {
	backend *fakeserver.Backend
}

func newTestServer(t *testing.T, mode handler.RegisterMode) *testServer {
	t.Helper()
	return &testServer{backend: fakeserver.New(fakeserver.Options{
		Logger:       testutil.NopLogger(),
		Auth:         auth.Config{BcryptCost: bcrypt.MinCost},
		RegisterMode: mode,
		Version:      "test",
	})}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.backend.Handler().ServeHTTP(rr, req)
	return rr
}

// account creates a user and logs in, returning the bearer token
func (ts *testServer) account(t *testing.T, username string) string {
	t.Helper()
	_, err := ts.backend.CreateAccount(username, password)
	require.NoError(t, err)

	rr := ts.request(http.MethodPost, "/api/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)

	rr := ts.request(http.MethodGet, "/api/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	body := decode[map[string]any](t, rr)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, fakeserver.Name, body["name"])
	assert.Equal(t, "test", body["version"])
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)

	rr := ts.request(http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	reg := decode[model.AuthResponse](t, rr)
	assert.NotEmpty(t, reg.Token)
	require.NotNil(t, reg.State)
	assert.Equal(t, "alice", reg.State.Username)
	require.NotNil(t, reg.Sector)
	assert.Equal(t, 1, reg.Sector.ID)
	assert.NotEmpty(t, reg.Logs)

	rr = ts.request(http.MethodPost, "/api/login", map[string]string{"username": "alice", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, errorBody{OK: false, Error: "invalid credentials"}, decode[errorBody](t, rr))

	rr = ts.request(http.MethodPost, "/api/login", map[string]string{"username": "ALICE", "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, decode[model.AuthResponse](t, rr).Token)
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)

	rr := ts.request(http.MethodPost, "/api/register", map[string]string{"username": "al", "password": password}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "username must be 3-20 chars", decode[errorBody](t, rr).Error)

	rr = ts.request(http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "password must be 8-100 chars", decode[errorBody](t, rr).Error)

	ts.account(t, "alice")
	rr = ts.request(http.MethodPost, "/api/register", map[string]string{"username": "Alice", "password": password}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterResponseShapes(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterTokenOnly)
	rr := ts.request(http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]any](t, rr)
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body, "state")

	ts = newTestServer(t, fakeserver.RegisterNoToken)
	rr = ts.request(http.MethodPost, "/api/register", map[string]string{"username": "alice", "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[map[string]any](t, rr)
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "token")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)

	rr := ts.request(http.MethodGet, "/api/state", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "missing bearer token", decode[errorBody](t, rr).Error)

	rr = ts.request(http.MethodGet, "/api/messages/inbox", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid token", decode[errorBody](t, rr).Error)
}

func TestRevokedTokenIsRejected(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	token := ts.account(t, "alice")

	rr := ts.request(http.MethodGet, "/api/state", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	require.NoError(t, ts.backend.RevokeTokens("alice"))
	rr = ts.request(http.MethodGet, "/api/state", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCommandSuccessAndRejection(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	token := ts.account(t, "alice")

	rr := ts.request(http.MethodPost, "/api/command", map[string]any{"type": "SCAN"}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	ok := decode[model.CommandResponse](t, rr)
	assert.True(t, ok.OK)
	assert.Equal(t, "Scan complete for sector 1.", ok.Message)
	require.NotNil(t, ok.State)
	turns := ok.State.Turns

	rr = ts.request(http.MethodPost, "/api/command", map[string]any{"type": "MOVE", "to": 9999}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	failed := decode[model.CommandResponse](t, rr)
	assert.False(t, failed.OK)
	assert.Equal(t, "INVALID_MOVE", failed.Error)
	assert.Equal(t, "Invalid destination sector.", failed.Message)
	require.NotNil(t, failed.State)
	assert.Equal(t, turns, failed.State.Turns)
}

func TestPasswordChangeGate(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	token := ts.account(t, "alice")
	require.NoError(t, ts.backend.RequirePasswordChange("alice"))

	rr := ts.request(http.MethodGet, "/api/state", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[model.Snapshot](t, rr).State.MustChangePassword)

	rr = ts.request(http.MethodPost, "/api/command", map[string]any{"type": "SCAN"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "PASSWORD_CHANGE_REQUIRED", decode[model.CommandResponse](t, rr).Error)

	rr = ts.request(http.MethodPost, "/api/change_password", map[string]string{"old_password": "nope-nope", "new_password": "brand-new-pass"}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/change_password", map[string]string{"old_password": password, "new_password": "brand-new-pass"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/command", map[string]any{"type": "SCAN"}, token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMessageRoundTrip(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	alice := ts.account(t, "alice")
	bob := ts.account(t, "bob")

	rr := ts.request(http.MethodPost, "/api/messages/send", map[string]any{
		"to_username": "bob",
		"subject":     "hello",
		"body":        "  fancy a trade?  ",
	}, alice)
	require.Equal(t, http.StatusOK, rr.Code)
	sent := decode[map[string]any](t, rr)
	assert.Equal(t, "Message sent.", sent["message"])
	id := int64(sent["id"].(float64))

	rr = ts.request(http.MethodGet, "/api/messages/unread_count", nil, bob)
	assert.JSONEq(t, `{"unread":1}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/messages/inbox", nil, bob)
	inbox := decode[struct {
		Messages []model.Message `json:"messages"`
	}](t, rr)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, "alice", inbox.Messages[0].From)
	assert.Equal(t, "fancy a trade?", inbox.Messages[0].Body)
	assert.True(t, inbox.Messages[0].Unread())

	rr = ts.request(http.MethodPost, "/api/messages/mark_read", map[string]any{"message_ids": []int64{}}, bob)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "message_ids required", decode[errorBody](t, rr).Error)

	rr = ts.request(http.MethodPost, "/api/messages/mark_read", map[string]any{"message_ids": []int64{id}}, bob)
	assert.JSONEq(t, `{"ok":true,"updated":1}`, rr.Body.String())
	rr = ts.request(http.MethodPost, "/api/messages/mark_read", map[string]any{"message_ids": []int64{id}}, bob)
	assert.JSONEq(t, `{"ok":true,"updated":0}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/messages/unread_count", nil, bob)
	assert.JSONEq(t, `{"unread":0}`, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/messages/sent", nil, alice)
	assert.Contains(t, rr.Body.String(), `"to":"bob"`)

	assert.Equal(t, [][]int64{{}, {id}, {id}}, ts.backend.Recorder.MarkReadCalls())
}

func TestSendValidation(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	alice := ts.account(t, "alice")

	tests := []struct {
		name string
		body map[string]any
		want string
	}{
		{"short recipient", map[string]any{"to_username": "al", "body": "x"}, "recipient username must be 3-20 chars"},
		{"unknown recipient", map[string]any{"to_username": "nobody", "body": "x"}, "unknown recipient username"},
		{"self", map[string]any{"to_username": "alice", "body": "x"}, "cannot send a message to yourself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/messages/send", tt.body, alice)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.want, decode[errorBody](t, rr).Error)
		})
	}
}

func TestMultipartAttachment(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	alice := ts.account(t, "alice")
	bob := ts.account(t, "bob")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("to_username", "bob"))
	require.NoError(t, mw.WriteField("subject", "charts"))
	require.NoError(t, mw.WriteField("body", "see attached"))
	part, err := mw.CreateFormFile("attachment", "route plan.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("1 -> 2 -> 3"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/messages/send", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice)
	rr := httptest.NewRecorder()
	ts.backend.Handler().ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/messages/inbox", nil, bob)
	inbox := decode[struct {
		Messages []model.Message `json:"messages"`
	}](t, rr)
	require.Len(t, inbox.Messages, 1)
	require.Len(t, inbox.Messages[0].Attachments, 1)
	att := inbox.Messages[0].Attachments[0]
	assert.Equal(t, "route plan.txt", att.Filename)
	assert.Equal(t, int64(11), att.SizeBytes)

	rr = ts.request(http.MethodGet, "/api/messages/attachments/1", nil, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1 -> 2 -> 3", rr.Body.String())
	assert.Equal(t, `attachment; filename="route plan.txt"`, rr.Header().Get("Content-Disposition"))

	carol := ts.account(t, "carol")
	rr = ts.request(http.MethodGet, "/api/messages/attachments/1", nil, carol)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteAndReport(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	ts.account(t, "alice")
	bob := ts.account(t, "bob")

	userMsg, err := ts.backend.SeedMessage(model.MessageKindUser, "alice", "bob", "spam", "buy ore now")
	require.NoError(t, err)
	systemMsg, err := ts.backend.SeedMessage(model.MessageKindSystem, "", "bob", "Welcome", "hi")
	require.NoError(t, err)

	rr := ts.request(http.MethodPost, "/api/messages/report", map[string]any{"message_id": userMsg}, bob)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	admin := ts.account(t, "admiral")
	require.NoError(t, ts.backend.SetAdmin("admiral", true))

	rr = ts.request(http.MethodPost, "/api/messages/report", map[string]any{"message_id": systemMsg}, bob)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/messages/report", map[string]any{"message_id": userMsg}, bob)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/messages/inbox", nil, admin)
	inbox := decode[struct {
		Messages []model.Message `json:"messages"`
	}](t, rr)
	require.Len(t, inbox.Messages, 1)
	assert.Equal(t, model.MessageKindBugReport, inbox.Messages[0].Kind)
	assert.Equal(t, "Report: spam", inbox.Messages[0].Subject)

	rr = ts.request(http.MethodPost, "/api/messages/delete", map[string]any{"message_id": userMsg}, bob)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/messages/delete", map[string]any{"message_id": userMsg}, bob)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.request(http.MethodPost, "/api/messages/delete", map[string]any{}, bob)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodGet, "/api/messages/inbox", nil, bob)
	assert.NotContains(t, rr.Body.String(), "buy ore now")
}

func TestAdminMap(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	token := ts.account(t, "alice")

	rr := ts.request(http.MethodGet, "/api/admin/ansi_map", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	require.NoError(t, ts.backend.SetAdmin("alice", true))
	rr = ts.request(http.MethodGet, "/api/admin/ansi_map", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["map"], "Sol")
}

func TestRecorderKeepsAuthorization(t *testing.T) {
	ts := newTestServer(t, fakeserver.RegisterFull)
	token := ts.account(t, "alice")
	ts.backend.Recorder.Reset()

	ts.request(http.MethodGet, "/api/state", nil, token)

	reqs := ts.backend.Recorder.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/state", reqs[0].Path)
	assert.Equal(t, "Bearer "+token, reqs[0].Authorization)
}
