package notify

import (
	"time"

	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
)

// ChannelConfig 单个渠道的全局配置
type ChannelConfig struct {
	Enabled         bool              `mapstructure:"enabled"`
	WebhookURL      string            `mapstructure:"webhook_url"`
	Secret          string            `mapstructure:"secret"`
	ProjectWebhooks map[string]string `mapstructure:"project_webhooks"`
}

// Config 通知全局配置
type Config struct {
	Timeout  int           `mapstructure:"timeout"` // 秒
	DingTalk ChannelConfig `mapstructure:"dingtalk"`
	WeCom    ChannelConfig `mapstructure:"wecom"`
	Feishu   ChannelConfig `mapstructure:"feishu"`
	Extra    ChannelConfig `mapstructure:"extra"`
}

func (c *Config) SetDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10
	}
}

func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return channel.DefaultTimeout
	}
	return time.Duration(c.Timeout) * time.Second
}

// Channel returns the global settings of one channel.
func (c *Config) Channel(name channel.Name) ChannelConfig {
	switch name {
	case channel.DingTalk:
		return c.DingTalk
	case channel.WeCom:
		return c.WeCom
	case channel.Feishu:
		return c.Feishu
	case channel.Extra:
		return c.Extra
	}
	return ChannelConfig{}
}
