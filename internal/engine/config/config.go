package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/cache"
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
	"github.com/spf13/viper"
)

// WebhookConfig 入站 webhook 相关配置
type WebhookConfig struct {
	GitLab            webhook.ProviderConfig `mapstructure:"gitlab"`
	GitHub            webhook.ProviderConfig `mapstructure:"github"`
	PushReviewEnabled bool                   `mapstructure:"push_review_enabled"`
	IgnoredActions    []string               `mapstructure:"ignored_actions"`
}

// ReportConfig 日报配置
type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Crontab string `mapstructure:"crontab"`
	Title   string `mapstructure:"title"`
	Source  string `mapstructure:"source"` // mr | push
}

type AppConfig struct {
	Log      log.Conf
	Http     http.Http
	Database database.Database
	Redis    cache.Redis
	Queue    queue.Config
	Webhook  WebhookConfig
	Notify   notify.Config
	Report   ReportConfig
	Auth     http.Auth
	Metrics  metrics.MetricsConfig
}

var (
	cfg  AppConfig
	once sync.Once
)

func NewConf(confDir string) AppConfig {
	once.Do(func() {
		var err error
		cfg, err = LoadConfigFile(confDir)
		if err != nil {
			panic(fmt.Sprintf("load config file error: %s", err))
		}
	})
	return cfg
}

// LoadConfigFile load config file
func LoadConfigFile(confDir string) (AppConfig, error) {
	var conf AppConfig

	config := viper.New()
	config.SetConfigFile(confDir) //文件名
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()
	setDefaults(config)

	if err := config.ReadInConfig(); err != nil {
		return conf, fmt.Errorf("failed to read configuration file: %v", err)
	}

	if err := config.Unmarshal(&conf); err != nil {
		return conf, fmt.Errorf("failed to unmarshal configuration file: %v", err)
	}

	// 组件只在启动时读取配置，变更需要重启生效
	config.OnConfigChange(func(e fsnotify.Event) {
		log.Warnw("configuration file changed, restart to apply", "file", e.Name, "op", e.Op.String())
	})
	config.WatchConfig()

	log.Infow("config file loaded",
		"path", confDir,
	)
	return conf, nil
}

// setDefaults registers every key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"log.output":     "stdout",
		"log.path":       "./logs",
		"log.filename":   "reviewhub.log",
		"log.level":      "info",
		"log.keepHours":  24 * 7,
		"log.rotateSize": 100,
		"log.rotateNum":  10,

		"http.host":            "0.0.0.0",
		"http.port":            5001,
		"http.accessLog":       true,
		"http.readTimeout":     60,
		"http.writeTimeout":    60,
		"http.idleTimeout":     120,
		"http.shutdownTimeout": 30,
		"http.bodyLimit":       16,

		"database.driver":            database.DriverSQLite,
		"database.output":            false,
		"database.slowThreshold":     200,
		"database.autoMigrate":       true,
		"database.maxOpenConns":      20,
		"database.maxIdleConns":      5,
		"database.maxLifeTime":       3600,
		"database.maxIdleTime":       600,
		"database.sqlite.path":       "data/reviewhub.db",
		"database.mysql.host":        "",
		"database.mysql.port":        "3306",
		"database.mysql.user":        "",
		"database.mysql.password":    "",
		"database.mysql.dbname":      "",
		"database.postgres.host":     "",
		"database.postgres.port":     "5432",
		"database.postgres.user":     "",
		"database.postgres.password": "",
		"database.postgres.dbname":   "",
		"database.postgres.sslmode":  "disable",

		"redis.mode":     "single",
		"redis.address":  "",
		"redis.password": "",
		"redis.db":       0,
		"redis.poolSize": 10,

		"queue.mode":            queue.ModeLocal,
		"queue.concurrency":     10,
		"queue.maxPending":      64,
		"queue.queue":           "reviewhub",
		"queue.taskTimeout":     300,
		"queue.logLevel":        "info",
		"queue.shutdownTimeout": 10,

		"webhook.gitlab.url":          "",
		"webhook.gitlab.access_token": "",
		"webhook.github.url":          "",
		"webhook.github.access_token": "",
		"webhook.push_review_enabled": false,
		"webhook.ignored_actions":     []string{"close", "merge", "closed"},

		"notify.timeout":              10,
		"notify.dingtalk.enabled":     false,
		"notify.dingtalk.webhook_url": "",
		"notify.dingtalk.secret":      "",
		"notify.wecom.enabled":        false,
		"notify.wecom.webhook_url":    "",
		"notify.feishu.enabled":       false,
		"notify.feishu.webhook_url":   "",
		"notify.extra.enabled":        false,
		"notify.extra.webhook_url":    "",

		"report.enabled": false,
		"report.crontab": "0 18 * * 1-5",
		"report.title":   "代码提交日报",
		"report.source":  "mr",

		"auth.enabled":      true,
		"auth.username":     "admin",
		"auth.password":     "",
		"auth.secretKey":    "",
		"auth.accessExpire": 24 * 60,

		"metrics.enable": false,
		"metrics.host":   "0.0.0.0",
		"metrics.port":   9090,
		"metrics.path":   "/metrics",
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}
