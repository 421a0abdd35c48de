package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"vx-landing/internal/config"
	"vx-landing/internal/container"
	"vx-landing/internal/domain"
	"vx-landing/internal/repository"
	"vx-landing/internal/service"
	"vx-landing/pkg/logger"
)

const (
	testAdmin         = "admin"
	testPassword      = "s3cret-pass"
	testWebhookSecret = "hook-secret"
	testChatID        = -100500
)

type summaryCall struct {
	chatID    int64
	messageID int
	summary   domain.ContactSummary
	adminURL  string
}

type markCall struct {
	chatID    int64
	messageID int
	label     string
	callback  string
}

type fakeNotifier struct {
	mu        sync.Mutex
	contacts  []domain.Contact
	adminURLs []string
	summaries []summaryCall
	marks     []markCall
}

func (n *fakeNotifier) NotifyContact(_ context.Context, contact domain.Contact, adminURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contacts = append(n.contacts, contact)
	n.adminURLs = append(n.adminURLs, adminURL)
	return nil
}

func (n *fakeNotifier) ShowContactsSummary(_ context.Context, chatID int64, messageID int, summary domain.ContactSummary, adminURL string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.summaries = append(n.summaries, summaryCall{chatID, messageID, summary, adminURL})
	return nil
}

func (n *fakeNotifier) MarkMessage(_ context.Context, chatID int64, messageID int, label, callback string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.marks = append(n.marks, markCall{chatID, messageID, label, callback})
	return nil
}

type harness struct {
	t         *testing.T
	cfg       *config.Config
	container *container.Container
	router    http.Handler
	notifier  *fakeNotifier
}

func newHarness(t *testing.T, mutate ...func(cfg *config.Config)) *harness {
	t.Helper()

	publicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "index.html"), []byte("<h1>VX School</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "script.js"), []byte("console.log('vx')"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "admin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "admin", "index.html"), []byte("<h1>Admin</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(publicDir, "empty"), 0o755))

	cfg := &config.Config{
		Port:               "3000",
		Environment:        "production",
		LogLevel:           "error",
		DataDir:            t.TempDir(),
		PublicDir:          publicDir,
		AdminUsername:      testAdmin,
		AdminPassword:      testPassword,
		JWTSecret:          "jwt-secret",
		AdminSessionSecret: "session-secret",
	}
	cfg.TelegramChatID = strconv.Itoa(testChatID)
	cfg.TelegramWebhookSecret = testWebhookSecret
	for _, m := range mutate {
		m(cfg)
	}

	c, err := container.New(cfg, logger.Nop())
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	repos := repository.NewRepositories(c.Store)
	c.Services.Notifier = notifier
	c.Services.Contact = service.NewContactService(repos.Contacts, repos.Spam, notifier, nil, logger.Nop())

	return &harness{
		t:         t,
		cfg:       cfg,
		container: c,
		router:    NewRouter(c),
		notifier:  notifier,
	}
}

type requestOption func(r *http.Request)

func withToken(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withIP(ip string) requestOption {
	return func(r *http.Request) { r.RemoteAddr = ip + ":51000" }
}

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (h *harness) do(method, target string, body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	h.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.RemoteAddr = "203.0.113.10:51000"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// webhook posts a bot update carrying the configured secret token
func (h *harness) webhook(body interface{}, opts ...requestOption) *httptest.ResponseRecorder {
	h.t.Helper()
	opts = append([]requestOption{withHeader(TelegramSecretHeader, h.cfg.TelegramWebhookSecret)}, opts...)
	return h.do(http.MethodPost, "/webhook/telegram", body, opts...)
}

func (h *harness) login() string {
	h.t.Helper()
	rec := h.do(http.MethodPost, "/admin/login", domain.LoginRequest{Username: testAdmin, Password: testPassword}, withIP("10.9.9.9"))
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.LoginResponse
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(h.t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorBody(message string) string {
	data, _ := json.Marshal(map[string]interface{}{"ok": false, "error": message})
	return string(data)
}
