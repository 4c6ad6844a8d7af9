package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) *repo.Repositories {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := database.NewDatabase(database.Database{
		Driver: database.DriverSQLite,
		SQLite: database.SQLiteConfig{Path: "file:svc_" + name + "?mode=memory&cache=shared"},
	})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(gdb) })

	db := database.NewGormDB(gdb)
	require.NoError(t, repo.Migrate(db))
	return repo.NewRepositories(db)
}

// recordingDispatcher keeps dispatched tasks in memory
type recordingDispatcher struct {
	mu       sync.Mutex
	tasks    []*queue.Task
	handlers map[string]queue.Handler
	err      error
}

func (d *recordingDispatcher) Register(taskType string, handler queue.Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handlers == nil {
		d.handlers = make(map[string]queue.Handler)
	}
	d.handlers[taskType] = handler
}

func (d *recordingDispatcher) Dispatch(_ context.Context, task *queue.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.tasks = append(d.tasks, task)
	return nil
}

func (d *recordingDispatcher) Start() error                  { return nil }
func (d *recordingDispatcher) Close(_ context.Context) error { return nil }
func (d *recordingDispatcher) Mode() string                  { return "recording" }

func (d *recordingDispatcher) Tasks() []*queue.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*queue.Task(nil), d.tasks...)
}

// fakeSender records the URLs it was asked to deliver to
type fakeSender struct {
	mu   sync.Mutex
	name channel.Name
	fail error
	urls []string
	msgs []*channel.Message
}

func (f *fakeSender) Name() channel.Name { return f.name }

func (f *fakeSender) Send(_ context.Context, url string, msg *channel.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, url)
	f.msgs = append(f.msgs, msg)
	return f.fail
}

func (f *fakeSender) URLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

type fakeSenders struct {
	dingtalk, wecom, feishu, extra *fakeSender
}

func newFakeSenders() *fakeSenders {
	return &fakeSenders{
		dingtalk: &fakeSender{name: channel.DingTalk},
		wecom:    &fakeSender{name: channel.WeCom},
		feishu:   &fakeSender{name: channel.Feishu},
		extra:    &fakeSender{name: channel.Extra},
	}
}

func (f *fakeSenders) router() *notify.Router {
	return notify.NewRouter(f.dingtalk, f.wecom, f.feishu, f.extra)
}
