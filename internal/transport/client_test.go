package transport_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/sovereign-client/internal/command"
	"github.com/mcoot/sovereign-client/internal/storage/memory"
	"github.com/mcoot/sovereign-client/internal/testutil"
	"github.com/mcoot/sovereign-client/internal/transport"
)

func newClient(t *testing.T, handler http.HandlerFunc, token string) (*transport.Client, *memory.Storage) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := memory.NewWithToken(token)
	cfg := transport.DefaultConfig()
	cfg.BaseURL = srv.URL + "/"
	return transport.New(cfg, store, testutil.NopLogger()), store
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAttachesBearerTokenWhenPresent(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{"unread": 3})
	}, "tok-1")

	n, err := client.UnreadCount(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/api/messages/unread_count", gotPath)
}

func TestReadsTokenOnEveryCall(t *testing.T) {
	var gotAuth []string
	client, store := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"unread": 0})
	}, "tok-1")

	_, err := client.UnreadCount(testContext(t))
	require.NoError(t, err)

	require.NoError(t, store.Clear(testContext(t)))
	_, err = client.UnreadCount(testContext(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer tok-1", ""}, gotAuth)
}

func TestErrorMessageFromErrorField(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "username must be 3-20 chars"})
	}, "")

	_, err := client.Register(testContext(t), "ab", "password123")
	require.Error(t, err)

	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "username must be 3-20 chars", apiErr.Message)
	assert.Empty(t, apiErr.Code)
	assert.False(t, transport.IsUnauthorized(err))
}

func TestCommandFailurePrefersMessageOverCode(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":      false,
			"message": "Not enough credits.",
			"error":   "INSUFFICIENT_CREDITS",
			"state":   map[string]any{"credits": 5},
		})
	}, "tok")

	cmd, err := command.Parse("TRADE BUY ORE 50")
	require.NoError(t, err)

	resp, err := client.Command(testContext(t), cmd)
	assert.Nil(t, resp)

	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not enough credits.", apiErr.Message)
	assert.Equal(t, "INSUFFICIENT_CREDITS", apiErr.Code)
	assert.Equal(t, "Not enough credits. (INSUFFICIENT_CREDITS)", apiErr.Error())
}

func TestNestedErrorEnvelope(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "message not found"},
		})
	}, "tok")

	err := client.DeleteMessage(testContext(t), 9)
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "message not found", apiErr.Message)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestRawBodyWhenNotJSON(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream exploded\n")
	}, "tok")

	_, err := client.State(testContext(t))
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
}

func TestUnauthorizedIsDistinguished(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "invalid token"})
	}, "stale")

	_, err := client.State(testContext(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, transport.ErrUnauthorized))
	assert.True(t, transport.IsUnauthorized(err))
	assert.Equal(t, "invalid token", err.Error())
}

func TestNetworkFailureIsGenericAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := transport.DefaultConfig()
	cfg.BaseURL = url
	client := transport.New(cfg, memory.New(), testutil.NopLogger())

	_, err := client.State(testContext(t))
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, transport.StatusTransportFailure, apiErr.Status)
	assert.Equal(t, "unable to reach server", apiErr.Message)
	assert.NotNil(t, errors.Unwrap(apiErr))
	assert.False(t, transport.IsUnauthorized(err))
}

func TestMalformedSuccessBody(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "{not json")
	}, "tok")

	_, err := client.State(testContext(t))
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, transport.StatusTransportFailure, apiErr.Status)
	assert.Equal(t, "malformed server response", apiErr.Message)
}

func TestCommandSendsParsedBody(t *testing.T) {
	var got map[string]any
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/command", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"message": "Bought 50 ORE.",
			"state":   map[string]any{"username": "alice", "credits": 900},
			"logs":    []map[string]any{{"kind": "TRADE", "message": "Bought 50 ORE."}},
		})
	}, "tok")

	cmd, err := command.Parse("trade buy ore 50")
	require.NoError(t, err)

	resp, err := client.Command(testContext(t), cmd)
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "Bought 50 ORE.", resp.Message)
	require.NotNil(t, resp.State)
	assert.Equal(t, int64(900), resp.State.Credits)
	assert.Nil(t, resp.Sector)
	require.Len(t, resp.Logs, 1)

	assert.Equal(t, map[string]any{
		"type":      "TRADE",
		"action":    "BUY",
		"commodity": "ORE",
		"quantity":  float64(50),
	}, got)
}

func TestSendMessageUsesJSONWithoutAttachment(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "bob", body["to_username"])
		assert.Equal(t, float64(4), body["related_message_id"])
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "Message sent.", "id": 11})
	}, "tok")

	related := int64(4)
	res, err := client.SendMessage(testContext(t), transport.SendRequest{
		ToUsername:       "bob",
		Subject:          "hi",
		Body:             "hello",
		RelatedMessageID: &related,
		Attachment:       &transport.Upload{Filename: "empty.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), res.ID)
}

func TestSendMessageUsesMultipartWithAttachment(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bob", r.FormValue("to_username"))
		assert.Equal(t, "logs", r.FormValue("subject"))
		assert.Equal(t, "see attached", r.FormValue("body"))
		assert.Equal(t, "7", r.FormValue("related_message_id"))

		f, hdr, err := r.FormFile("attachment")
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = f.Close() }()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "trace.log", hdr.Filename)
		assert.Equal(t, "text/plain", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "boom", string(data))

		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": 12})
	}, "tok")

	related := int64(7)
	res, err := client.SendMessage(testContext(t), transport.SendRequest{
		ToUsername:       "bob",
		Subject:          "logs",
		Body:             "see attached",
		RelatedMessageID: &related,
		Attachment:       &transport.Upload{Filename: "trace.log", ContentType: "text/plain", Data: []byte("boom")},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.ID)
}

func TestMarkReadSendsBatch(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]int64
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []int64{1, 3}, body["message_ids"])
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": 2})
	}, "tok")

	updated, err := client.MarkRead(testContext(t), []int64{1, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
}

func TestDownloadAttachment(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages/attachments/5", r.URL.Path)
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Disposition", `attachment; filename="shot.png"`)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}, "tok")

	dl, err := client.DownloadAttachment(testContext(t), 5)
	require.NoError(t, err)
	assert.Equal(t, "shot.png", dl.Filename)
	assert.Equal(t, "image/png", dl.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, dl.Data)
}

func TestHealthAndAdminMap(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/healthz":
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": "Sovereign Conquest", "version": "1.2.3"})
		case "/api/admin/ansi_map":
			writeJSON(w, http.StatusOK, map[string]any{"map": "[1]--[2]"})
		default:
			http.NotFound(w, r)
		}
	}, "tok")

	h, err := client.Health(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", h.Version)

	m, err := client.AdminMap(testContext(t))
	require.NoError(t, err)
	assert.Equal(t, "[1]--[2]", m)
}

func TestEmptySuccessBodyIsFine(t *testing.T) {
	client, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, "tok")

	assert.NoError(t, client.ChangePassword(testContext(t), "old-password", "new-password"))
}
