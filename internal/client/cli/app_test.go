package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/journeyconnect/journeyconnect/internal/client/config"
	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

// fakeBackend answers the REST calls the CLI makes for a single user.
type fakeBackend struct {
	mu       sync.Mutex
	role     models.Role
	decided  map[string]bool
	requests []string
	sent     []map[string]any
	messages []models.Message
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r.Method+" "+r.URL.Path)

	user := models.User{ID: "u1", Name: "Sam", Email: "sam@example.com", Role: b.role}
	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.URL.Path == "/api/auth/session":
		writeJSON(http.StatusOK, map[string]any{"session_token": "tok", "user_id": user.ID, "user": user})
	case r.URL.Path == "/api/auth/me":
		writeJSON(http.StatusOK, user)
	case r.URL.Path == "/api/auth/logout":
		writeJSON(http.StatusOK, map[string]string{"message": "Logged out"})
	case r.URL.Path == "/api/rent-payments" && r.Method == http.MethodGet:
		writeJSON(http.StatusOK, []map[string]any{{
			"id": "p1", "user_id": "u1", "payment_date": "2026-03-01T00:00:00Z",
			"amount": 450, "status": "pending", "mismatched": true,
		}})
	case r.URL.Path == "/api/rent-payments" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.sent = append(b.sent, body)
		writeJSON(http.StatusCreated, map[string]any{"id": "p2", "amount": body["amount"], "status": "pending"})
	case r.URL.Path == "/api/rent-payments/p1/confirm":
		if b.decided["p1"] {
			writeJSON(http.StatusConflict, map[string]string{"error": "already_decided", "message": "payment already decided"})
			return
		}
		b.decided["p1"] = true
		writeJSON(http.StatusOK, map[string]any{"id": "p1", "status": "confirmed", "confirmed": true, "confirmed_by": user.Name})
	case r.URL.Path == "/api/messages" && r.Method == http.MethodGet:
		writeJSON(http.StatusOK, b.messages)
	case r.URL.Path == "/api/messages" && r.Method == http.MethodPost:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.sent = append(b.sent, body)
		writeJSON(http.StatusCreated, map[string]any{"id": "m9", "content": body["content"]})
	default:
		writeJSON(http.StatusNotFound, map[string]string{"error": "not_found"})
	}
}

func runSession(t *testing.T, role models.Role, input string) (string, *fakeBackend) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })

	backend := &fakeBackend{role: role, decided: map[string]bool{}}
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = srv.URL
	cfg.RequestTimeout = time.Second
	cfg.CredentialFile = filepath.Join(t.TempDir(), "session")

	var out bytes.Buffer
	app := newApp(cfg, logging.Nop(), strings.NewReader(input), &out)
	app.Run(context.Background())
	return out.String(), backend
}

func TestRun_SignedOut(t *testing.T) {
	out, backend := runSession(t, models.RoleUser, "help\npayments\nbogus\n")

	assert.Contains(t, out, "Not signed in.")
	assert.Contains(t, out, "login")
	assert.NotContains(t, out, "payments [user_id]")
	assert.Contains(t, out, "Please 'login' first.")
	assert.Contains(t, out, "Unknown command: bogus")
	assert.Empty(t, backend.requests)
}

func TestRun_UserAffordances(t *testing.T) {
	input := strings.Join([]string{
		"login", "psid",
		"help",
		"payments",
		"addtest",
		"confirm p1",
		"pay", "450.00", "2026-03-01", "March", "",
		"logout",
		"exit",
	}, "\n")
	out, backend := runSession(t, models.RoleUser, input)

	assert.Contains(t, out, "Signed in as Sam (user)")
	assert.Contains(t, out, "pay ")
	assert.NotContains(t, out, "addtest  ")
	assert.NotContains(t, out, "setrent")
	assert.Contains(t, out, "amount differs from expected rent")
	assert.Contains(t, out, "'addtest' is not available to the user role.")
	assert.Contains(t, out, "'confirm' is not available to the user role.")
	assert.Contains(t, out, "Payment p2 of 450.00 submitted, status pending.")
	assert.Contains(t, out, "Signed out.")
	assert.Contains(t, out, "Bye!")

	require.Len(t, backend.sent, 1)
	assert.EqualValues(t, 450, backend.sent[0]["amount"])
	assert.Contains(t, backend.requests, "POST /api/auth/logout")
}

func TestRun_MentorDecides(t *testing.T) {
	input := "login\npsid\nhelp\nconfirm p1\nconfirm p1\nconfirm\nexit\n"
	out, _ := runSession(t, models.RoleMentor, input)

	assert.Contains(t, out, "confirm <payment_id>")
	assert.Contains(t, out, "addtest")
	assert.NotContains(t, out, "pay   ")
	assert.Contains(t, out, "Payment p1 is now confirmed (by Sam).")
	assert.Contains(t, out, "That payment was already decided.")
	assert.Contains(t, out, "payment id is required")
}

func TestRun_SendMessages(t *testing.T) {
	input := "login\npsid\nsend @u2 hello there\nsend everyone hi\nexit\n"
	_, backend := runSession(t, models.RoleUser, input)

	require.Len(t, backend.sent, 2)
	assert.Equal(t, "u2", backend.sent[0]["recipient_id"])
	assert.Equal(t, "hello there", backend.sent[0]["content"])
	assert.Nil(t, backend.sent[1]["recipient_id"])
	assert.Equal(t, "everyone hi", backend.sent[1]["content"])
}

func TestShowFeed_PrintsOnlyNewMessages(t *testing.T) {
	var out bytes.Buffer
	a := &App{out: &syncWriter{w: &out}}
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []models.Message{
		{ID: "m1", SenderID: "u1", Content: "first", CreatedAt: at},
		{ID: "m2", SenderID: "u2", Content: "second", CreatedAt: at},
	}

	a.showFeed(list, &list[1])
	assert.Contains(t, out.String(), "first")
	assert.Contains(t, out.String(), "second")

	out.Reset()
	a.showFeed(list, &list[1])
	assert.Empty(t, out.String())

	to := "u1"
	list = append(list, models.Message{ID: "m3", SenderID: "u2", RecipientID: &to, Content: "third", CreatedAt: at})
	a.showFeed(list, &list[2])
	assert.NotContains(t, out.String(), "second")
	assert.Contains(t, out.String(), "u2 -> u1: third")

	out.Reset()
	a.showFeed(nil, nil)
	assert.Empty(t, out.String())
}

func TestPrintHelp_IsRoleGated(t *testing.T) {
	a := &App{out: &syncWriter{w: io.Discard}}
	admin := models.User{Role: models.RoleAdmin}
	user := models.User{Role: models.RoleUser}

	for _, c := range a.commands() {
		switch c.name {
		case "setrent", "role":
			assert.True(t, c.available(admin, true), c.name)
			assert.False(t, c.available(user, true), c.name)
		case "users":
			assert.False(t, c.available(user, true), c.name)
			assert.True(t, c.available(models.User{Role: models.RoleMentor}, true), c.name)
		case "login":
			assert.True(t, c.available(models.User{}, false))
		default:
			assert.False(t, c.available(models.User{}, false), c.name)
		}
	}
}
