package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	name  channel.Name
	err   error
	panic bool
	calls []string
}

func (f *fakeSender) Name() channel.Name { return f.name }

func (f *fakeSender) Send(_ context.Context, url string, _ *channel.Message) error {
	f.calls = append(f.calls, url)
	if f.panic {
		panic("boom")
	}
	return f.err
}

func TestRouter_PartialFailureDoesNotStopFanOut(t *testing.T) {
	ding := &fakeSender{name: channel.DingTalk}
	wecom := &fakeSender{name: channel.WeCom, err: errors.New("errcode=93000")}
	feishu := &fakeSender{name: channel.Feishu, panic: true}
	extra := &fakeSender{name: channel.Extra}
	r := NewRouter(ding, wecom, feishu, extra)

	all := Setting{Enabled: true, URL: "http://hook"}
	results := r.Notify(context.Background(), Target{Channels: map[channel.Name]Setting{
		channel.DingTalk: all, channel.WeCom: all, channel.Feishu: all, channel.Extra: all,
	}}, &channel.Message{Content: "x"})

	require.Len(t, results, 4)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.False(t, results[2].OK)
	assert.True(t, results[3].OK)
	assert.Equal(t, []channel.Name{channel.WeCom, channel.Feishu}, results.Failures())
	assert.Len(t, extra.calls, 1)
	assert.True(t, results.Delivered())
}

func TestRouter_SkipsDisabledAndBlank(t *testing.T) {
	ding := &fakeSender{name: channel.DingTalk}
	wecom := &fakeSender{name: channel.WeCom}
	r := NewRouter(ding, wecom)

	results := r.Notify(context.Background(), Target{Channels: map[channel.Name]Setting{
		channel.DingTalk: {Enabled: false, URL: "http://hook"},
		channel.WeCom:    {Enabled: true, URL: "   "},
	}}, &channel.Message{})

	assert.Empty(t, ding.calls)
	assert.Empty(t, wecom.calls)
	assert.False(t, results[0].Attempted)
	assert.False(t, results[1].Attempted)
	assert.Empty(t, results.Failures())
	assert.False(t, results.Delivered())
}

func TestLoadFallbackTable(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"DINGTALK_WEBHOOK_URL_ZETA=http://env/zeta",
		"dingtalk_webhook_url_backend=http://env/backend",
		"WECOM_WEBHOOK_URL_GITLAB_EXAMPLE_COM=http://env/wecom-slug",
		"FEISHU_WEBHOOK_URL_EMPTY=",
		"DINGTALK_WEBHOOK_URL=http://global",
	}
	cfg := Config{DingTalk: ChannelConfig{ProjectWebhooks: map[string]string{
		"backend": "http://cfg/backend",
		"api":     "http://cfg/api",
	}}}
	table := LoadFallbackTable(environ, cfg)

	// 环境变量优先于配置文件
	url, ok := table.Lookup(channel.DingTalk, "Backend", "")
	require.True(t, ok)
	assert.Equal(t, "http://env/backend", url)

	url, ok = table.Lookup(channel.DingTalk, "api", "")
	require.True(t, ok)
	assert.Equal(t, "http://cfg/api", url)

	url, ok = table.Lookup(channel.WeCom, "unknown", "gitlab_example_com")
	require.True(t, ok)
	assert.Equal(t, "http://env/wecom-slug", url)

	_, ok = table.Lookup(channel.Feishu, "empty", "")
	assert.False(t, ok)
	_, ok = table.Lookup(channel.DingTalk, "", "")
	assert.False(t, ok)
	assert.Equal(t, 5, table.Len())
}

func TestFallbackTable_FirstMatchWins(t *testing.T) {
	table := NewFallbackTable(
		FallbackEntry{Channel: channel.DingTalk, Key: "slug_a", URL: "first"},
		FallbackEntry{Channel: channel.DingTalk, Key: "proj", URL: "second"},
	)
	url, ok := table.Lookup(channel.DingTalk, "proj", "slug_a")
	require.True(t, ok)
	assert.Equal(t, "first", url)

	var nilTable *FallbackTable
	_, ok = nilTable.Lookup(channel.DingTalk, "proj", "")
	assert.False(t, ok)
}
