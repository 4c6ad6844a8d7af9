// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/pkg/log"
	"gorm.io/gorm"
)

// ConfigResolver finds the stored notification config of a project.
type ConfigResolver struct {
	configRepo repo.IProjectConfigRepository
}

func NewConfigResolver(configRepo repo.IProjectConfigRepository) *ConfigResolver {
	return &ConfigResolver{configRepo: configRepo}
}

// Resolve 先按项目名，再按 slug 查找；返回 nil 表示使用全局配置
func (r *ConfigResolver) Resolve(ctx context.Context, projectName, slug string) *model.ProjectWebhookConfig {
	if projectName = strings.TrimSpace(projectName); projectName != "" {
		cfg, err := r.configRepo.Get(ctx, projectName)
		if err == nil {
			return cfg
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("get project webhook config failed", "project", projectName, "error", err)
		}
	}
	if slug = strings.TrimSpace(slug); slug != "" {
		cfg, err := r.configRepo.GetBySlug(ctx, slug)
		if err == nil {
			return cfg
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorw("get project webhook config by slug failed", "slug", slug, "error", err)
		}
	}
	return nil
}

// NotifyService resolves per-project channel settings and fans messages out.
type NotifyService struct {
	resolver *ConfigResolver
	router   *notify.Router
	conf     notify.Config
	fallback *notify.FallbackTable
}

func NewNotifyService(resolver *ConfigResolver, router *notify.Router, conf notify.Config, fallback *notify.FallbackTable) *NotifyService {
	return &NotifyService{
		resolver: resolver,
		router:   router,
		conf:     conf,
		fallback: fallback,
	}
}

var channelOrder = []channel.Name{channel.DingTalk, channel.WeCom, channel.Feishu, channel.Extra}

// Target builds the effective channel settings. A stored project config
// replaces the global settings entirely, including disabled channels.
func (s *NotifyService) Target(ctx context.Context, projectName, slug string) notify.Target {
	identifier := projectName
	if identifier == "" {
		identifier = slug
	}
	target := notify.Target{
		Identifier: identifier,
		Channels:   make(map[channel.Name]notify.Setting, len(channelOrder)),
	}

	if cfg := s.resolver.Resolve(ctx, projectName, slug); cfg != nil {
		target.Channels[channel.DingTalk] = notify.Setting{Enabled: cfg.DingTalkEnabled == 1, URL: cfg.DingTalkWebhookURL}
		target.Channels[channel.WeCom] = notify.Setting{Enabled: cfg.WeComEnabled == 1, URL: cfg.WeComWebhookURL}
		target.Channels[channel.Feishu] = notify.Setting{Enabled: cfg.FeishuEnabled == 1, URL: cfg.FeishuWebhookURL}
		target.Channels[channel.Extra] = notify.Setting{Enabled: cfg.ExtraWebhookEnabled == 1, URL: cfg.ExtraWebhookURL}
		return target
	}

	for _, name := range channelOrder {
		global := s.conf.Channel(name)
		url, ok := s.fallback.Lookup(name, projectName, slug)
		if !ok {
			url = global.WebhookURL
		}
		target.Channels[name] = notify.Setting{Enabled: global.Enabled, URL: url}
	}
	return target
}

// Notify 发送到项目的所有已启用渠道，单个渠道失败不影响其他渠道
func (s *NotifyService) Notify(ctx context.Context, projectName, slug string, msg *channel.Message) notify.Results {
	if msg.MsgType == "" {
		msg.MsgType = channel.MsgTypeMarkdown
	}
	if msg.ProjectName == "" {
		msg.ProjectName = projectName
	}
	if msg.Slug == "" {
		msg.Slug = slug
	}
	return s.router.Notify(ctx, s.Target(ctx, projectName, slug), msg)
}
