package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
)

// Setting is the effective state of one channel for one notify call.
type Setting struct {
	Enabled bool
	URL     string
}

// Target is the resolved per-channel configuration for a project.
type Target struct {
	Identifier string
	Channels   map[channel.Name]Setting
}

// Result 单个渠道的发送结果
type Result struct {
	Channel   channel.Name `json:"channel"`
	Attempted bool         `json:"attempted"`
	OK        bool         `json:"ok"`
	Error     string       `json:"error,omitempty"`
}

type Results []Result

// Failures 返回失败的渠道
func (rs Results) Failures() []channel.Name {
	var out []channel.Name
	for _, r := range rs {
		if r.Attempted && !r.OK {
			out = append(out, r.Channel)
		}
	}
	return out
}

// Delivered reports whether at least one channel accepted the message.
func (rs Results) Delivered() bool {
	for _, r := range rs {
		if r.OK {
			return true
		}
	}
	return false
}

// Router fans a message out to every configured channel. Each channel is
// attempted at most once per call and a failure never stops the others.
type Router struct {
	senders []channel.Sender
}

func NewRouter(senders ...channel.Sender) *Router {
	return &Router{senders: senders}
}

// NewDefaultRouter wires the four built-in channels in their fixed order.
func NewDefaultRouter(cfg Config) *Router {
	client := channel.NewClient(cfg.TimeoutDuration())
	return NewRouter(
		channel.NewDingTalkChannel(client, cfg.DingTalk.Secret),
		channel.NewWeComChannel(client),
		channel.NewFeishuChannel(client),
		channel.NewWebhookChannel(client),
	)
}

func (r *Router) Notify(ctx context.Context, target Target, msg *channel.Message) Results {
	identifier := target.Identifier
	if identifier == "" {
		identifier = "unknown"
	}

	results := make(Results, 0, len(r.senders))
	for _, sender := range r.senders {
		name := sender.Name()
		setting := target.Channels[name]
		res := Result{Channel: name}

		if !setting.Enabled {
			log.Infow("notify channel disabled, skip", "channel", name, "project", identifier)
			results = append(results, res)
			continue
		}
		url := strings.TrimSpace(setting.URL)
		if url == "" {
			log.Warnw("notify channel enabled without webhook url, skip", "channel", name, "project", identifier)
			results = append(results, res)
			continue
		}

		res.Attempted = true
		err := r.send(ctx, sender, url, msg)
		metrics.NotifyTotal.WithLabelValues(string(name), metrics.Result(err)).Inc()
		if err != nil {
			res.Error = err.Error()
			log.Errorw("notify failed", "channel", name, "project", identifier, "error", err)
		} else {
			res.OK = true
			log.Infow("notify success", "channel", name, "project", identifier)
		}
		results = append(results, res)
	}
	return results
}

// send isolates a panicking sender so the remaining channels still run.
func (r *Router) send(ctx context.Context, sender channel.Sender, url string, msg *channel.Message) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("sender panicked: %v", p)
		}
	}()
	return sender.Send(ctx, url, msg)
}
