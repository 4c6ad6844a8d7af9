package router

import (
	"context"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/config"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/report"
	"github.com/go-arcade/reviewhub/internal/pkg/review"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const mergeRequestBody = `{
	"object_kind": "merge_request",
	"user": {"username": "alice"},
	"project": {"id": 7, "name": "app"},
	"repository": {"homepage": "https://gitlab.example.com/group/app"},
	"object_attributes": {
		"iid": 3, "title": "Add login", "action": "update",
		"source_branch": "feat", "target_branch": "main",
		"last_commit": {"id": "abc123", "message": "add login form"}
	}
}`

type memDispatcher struct {
	mu    sync.Mutex
	tasks []*queue.Task
}

func (d *memDispatcher) Register(string, queue.Handler) {}
func (d *memDispatcher) Start() error                   { return nil }
func (d *memDispatcher) Close(context.Context) error    { return nil }
func (d *memDispatcher) Mode() string                   { return "memory" }

func (d *memDispatcher) Dispatch(_ context.Context, task *queue.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	return nil
}

type testServer struct {
	app        *fiber.App
	dispatcher *memDispatcher
}

func newTestServer(t *testing.T, authEnabled bool) *testServer {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := database.NewDatabase(database.Database{
		Driver: database.DriverSQLite,
		SQLite: database.SQLiteConfig{Path: "file:rt_" + name + "?mode=memory&cache=shared"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(gdb) })
	db := database.NewGormDB(gdb)
	require.NoError(t, repo.Migrate(db))

	httpConf := &http.Http{}
	httpConf.SetDefaults()
	authConf := &http.Auth{Enabled: authEnabled, Username: "admin", Password: "pw", SecretKey: "secret"}
	authConf.SetDefaults()
	notifyConf := notify.Config{}
	notifyConf.SetDefaults()

	d := &memDispatcher{}
	services := service.NewServices(
		repo.NewRepositories(db),
		d,
		config.WebhookConfig{IgnoredActions: []string{"close"}},
		config.ReportConfig{Source: service.ReportSourceMR},
		notifyConf,
		notify.NewFallbackTable(),
		authConf,
		review.NewDigestReviewer(),
		report.NewMarkdownReporter(),
	)
	return &testServer{app: NewRouter(httpConf, authConf, services).Router(), dispatcher: d}
}

func (s *testServer) do(t *testing.T, method, path, body string, header map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func (s *testServer) login(t *testing.T) map[string]string {
	t.Helper()
	status, b := s.do(t, fiber.MethodPost, "/api/auth/login", `{"username":"admin","password":"pw"}`, nil)
	require.Equal(t, nethttp.StatusOK, status, b)
	token := gjson.Get(b, "detail.access_token").String()
	require.NotEmpty(t, token)
	return map[string]string{fiber.HeaderAuthorization: "Bearer " + token}
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, true)
	status, b := s.do(t, fiber.MethodGet, "/api/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "healthy", gjson.Get(b, "status").String())
	assert.Equal(t, serviceName, gjson.Get(b, "service").String())

	status, _ = s.do(t, fiber.MethodGet, "/nope", "", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestRouter_Webhook(t *testing.T) {
	s := newTestServer(t, true)

	tests := []struct {
		name   string
		body   string
		header map[string]string
		status int
		msg    string
	}{
		{
			name:   "malformed",
			body:   `not json`,
			status: nethttp.StatusBadRequest,
			msg:    "Invalid JSON",
		},
		{
			name:   "missing token",
			body:   mergeRequestBody,
			status: nethttp.StatusBadRequest,
			msg:    "Missing GitLab access token",
		},
		{
			name:   "unsupported kind",
			body:   `{"object_kind":"note"}`,
			header: map[string]string{webhook.HeaderGitLabToken: "tok"},
			status: nethttp.StatusBadRequest,
		},
		{
			name:   "accepted",
			body:   mergeRequestBody,
			header: map[string]string{webhook.HeaderGitLabToken: "tok"},
			status: nethttp.StatusOK,
			msg:    "Request received(object_kind=merge_request), will process asynchronously.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, b := s.do(t, fiber.MethodPost, "/review/webhook", tt.body, tt.header)
			assert.Equal(t, tt.status, status, b)
			if tt.status == nethttp.StatusOK {
				assert.EqualValues(t, 200, gjson.Get(b, "code").Int())
				assert.Equal(t, tt.msg, gjson.Get(b, "msg").String())
				return
			}
			assert.NotEmpty(t, gjson.Get(b, "errMsg").String())
			if tt.msg != "" {
				assert.Equal(t, tt.msg, gjson.Get(b, "errMsg").String())
			}
		})
	}

	s.dispatcher.mu.Lock()
	defer s.dispatcher.mu.Unlock()
	require.Len(t, s.dispatcher.tasks, 1)
	assert.Equal(t, queue.TaskTypeMergeRequest, s.dispatcher.tasks[0].Type)
}

func TestRouter_DailyReportWithoutRecords(t *testing.T) {
	s := newTestServer(t, true)
	status, b := s.do(t, fiber.MethodGet, "/review/daily_report", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 0, gjson.Get(b, "detail.total_records").Int())
	assert.False(t, gjson.Get(b, "detail.fallback_sent").Bool())
}

func TestRouter_AuthGuard(t *testing.T) {
	s := newTestServer(t, true)

	status, _ := s.do(t, fiber.MethodGet, "/api/teams", "", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, _ = s.do(t, fiber.MethodPost, "/api/auth/login", `{"username":"admin","password":"bad"}`, nil)
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	header := s.login(t)
	status, b := s.do(t, fiber.MethodGet, "/api/auth/verify", "", header)
	assert.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "admin", gjson.Get(b, "detail.username").String())

	status, _ = s.do(t, fiber.MethodGet, "/api/teams", "", header)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestRouter_AuthDisabled(t *testing.T) {
	s := newTestServer(t, false)
	status, _ := s.do(t, fiber.MethodGet, "/api/metadata", "", nil)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestRouter_Teams(t *testing.T) {
	s := newTestServer(t, true)
	header := s.login(t)

	status, b := s.do(t, fiber.MethodPost, "/api/teams", `{"name":"core","webhook_url":"https://hook.example.com/x"}`, header)
	require.Equal(t, nethttp.StatusCreated, status, b)
	id := gjson.Get(b, "detail.id").String()
	require.NotEmpty(t, id)

	status, b = s.do(t, fiber.MethodPost, "/api/teams", `{"name":"core"}`, header)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Contains(t, gjson.Get(b, "errMsg").String(), "already exists")

	status, b = s.do(t, fiber.MethodPost, "/api/teams/"+id+"/members", `{"authors":["alice"," ","bob"]}`, header)
	require.Equal(t, nethttp.StatusOK, status, b)
	assert.EqualValues(t, 2, gjson.Get(b, "detail.added").Int())

	status, b = s.do(t, fiber.MethodGet, "/api/teams/"+id+"?include_members=false", "", header)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 2, gjson.Get(b, "detail.member_count").Int())

	status, _ = s.do(t, fiber.MethodDelete, "/api/teams/"+id+"/members/carol", "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)
	status, _ = s.do(t, fiber.MethodDelete, "/api/teams/"+id+"/members/alice", "", header)
	assert.Equal(t, nethttp.StatusOK, status)

	status, _ = s.do(t, fiber.MethodPost, "/api/teams/"+id+"/sync-from-gitlab", `{"source_type":"project","source_id":"1","strategy":"rebase"}`, header)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, _ = s.do(t, fiber.MethodGet, "/api/teams/999", "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)
	status, _ = s.do(t, fiber.MethodGet, "/api/teams/abc", "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)

	status, _ = s.do(t, fiber.MethodDelete, "/api/teams/"+id, "", header)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = s.do(t, fiber.MethodDelete, "/api/teams/"+id, "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestRouter_ProjectConfig(t *testing.T) {
	s := newTestServer(t, true)
	header := s.login(t)

	status, b := s.do(t, fiber.MethodPost, "/api/project-webhook-config",
		`{"project_name":"app","url_slug":"group/app","wecom_webhook_url":"https://wecom/x","wecom_enabled":true}`, header)
	require.Equal(t, nethttp.StatusOK, status, b)
	assert.EqualValues(t, 1, gjson.Get(b, "detail.wecom_enabled").Int())

	status, _ = s.do(t, fiber.MethodPost, "/api/project-webhook-config", `{"url_slug":"x"}`, header)
	assert.Equal(t, nethttp.StatusBadRequest, status)

	status, b = s.do(t, fiber.MethodGet, "/api/project-webhook-config?url_slug=group/app", "", header)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, gjson.Get(b, "detail").Array(), 1)

	status, b = s.do(t, fiber.MethodGet, "/api/projects?search=app", "", header)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 1, gjson.Get(b, "detail.total").Int())

	status, b = s.do(t, fiber.MethodGet, "/api/projects/app/summary", "", header)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, []any{"wecom"}, gjson.Get(b, "detail.enabled_channels").Value())

	status, _ = s.do(t, fiber.MethodDelete, "/api/project-webhook-config/app", "", header)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = s.do(t, fiber.MethodDelete, "/api/project-webhook-config/app", "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)
	status, _ = s.do(t, fiber.MethodGet, "/api/projects/app/summary", "", header)
	assert.Equal(t, nethttp.StatusNotFound, status)
}

func TestRouter_ReviewQueries(t *testing.T) {
	s := newTestServer(t, true)
	header := s.login(t)

	status, b := s.do(t, fiber.MethodGet, "/api/reviews/mr?authors=alice&authors=bob&score_min=60&page=1&page_size=5", "", header)
	require.Equal(t, nethttp.StatusOK, status)
	assert.EqualValues(t, 0, gjson.Get(b, "detail.total").Int())
	assert.EqualValues(t, 5, gjson.Get(b, "detail.page_size").Int())

	status, _ = s.do(t, fiber.MethodGet, "/api/reviews/push", "", header)
	assert.Equal(t, nethttp.StatusOK, status)
}

func TestReviewFilter(t *testing.T) {
	app := fiber.New()
	var got []byte
	app.Get("/", func(c *fiber.Ctx) error {
		got, _ = sonic.Marshal(reviewFilter(c))
		return nil
	})
	req := httptest.NewRequest(fiber.MethodGet, "/?authors=a,b&authors=c&project_names=app&score_max=80&updated_at_gte=100", nil)
	_, err := app.Test(req)
	require.NoError(t, err)

	f := gjson.ParseBytes(got)
	assert.Equal(t, []any{"a", "b", "c"}, f.Get("Authors").Value())
	assert.Equal(t, []any{"app"}, f.Get("ProjectNames").Value())
	assert.EqualValues(t, 80, f.Get("ScoreMax").Int())
	assert.Equal(t, gjson.Null, f.Get("ScoreMin").Type)
	assert.EqualValues(t, 100, f.Get("UpdatedFrom").Int())
}
