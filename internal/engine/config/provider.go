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

package config

import (
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/pkg/cache"
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
	"github.com/google/wire"
)

// ProviderSet 提供配置层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideHttpConfig,
	ProvideLogConfig,
	ProvideDatabaseConfig,
	ProvideRedisConfig,
	ProvideQueueConfig,
	ProvideNotifyConfig,
	ProvideWebhookConfig,
	ProvideReportConfig,
	ProvideAuthConfig,
	ProvideMetricsConfig,
)

// ProvideConf 提供应用配置
func ProvideConf(configPath string) *AppConfig {
	conf := NewConf(configPath)
	return &conf
}

// ProvideHttpConfig 提供 HTTP 配置
func ProvideHttpConfig(appConf *AppConfig) *http.Http {
	httpConfig := &appConf.Http
	httpConfig.SetDefaults()
	return httpConfig
}

// ProvideLogConfig 提供日志配置
func ProvideLogConfig(appConf *AppConfig) *log.Conf {
	return &appConf.Log
}

// ProvideDatabaseConfig 提供数据库配置
func ProvideDatabaseConfig(appConf *AppConfig) database.Database {
	return appConf.Database
}

// ProvideRedisConfig 提供 Redis 配置
func ProvideRedisConfig(appConf *AppConfig) cache.Redis {
	return appConf.Redis
}

// ProvideQueueConfig 提供任务分发配置
func ProvideQueueConfig(appConf *AppConfig) queue.Config {
	queueConfig := appConf.Queue
	queueConfig.SetDefaults()
	return queueConfig
}

// ProvideNotifyConfig 提供通知配置
func ProvideNotifyConfig(appConf *AppConfig) notify.Config {
	notifyConfig := appConf.Notify
	notifyConfig.SetDefaults()
	return notifyConfig
}

func ProvideWebhookConfig(appConf *AppConfig) WebhookConfig {
	return appConf.Webhook
}

func ProvideReportConfig(appConf *AppConfig) ReportConfig {
	reportConfig := appConf.Report
	if reportConfig.Crontab == "" {
		reportConfig.Crontab = "0 18 * * 1-5"
	}
	if reportConfig.Source == "" {
		reportConfig.Source = "mr"
	}
	return reportConfig
}

func ProvideAuthConfig(appConf *AppConfig) *http.Auth {
	authConfig := &appConf.Auth
	authConfig.SetDefaults()
	return authConfig
}

// ProvideMetricsConfig 提供 Metrics 配置
func ProvideMetricsConfig(appConf *AppConfig) metrics.MetricsConfig {
	metricsConfig := appConf.Metrics
	metricsConfig.SetDefaults()
	return metricsConfig
}
