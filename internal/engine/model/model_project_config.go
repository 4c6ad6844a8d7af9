package model

// ProjectWebhookConfig 项目级通知配置，project_name 唯一
type ProjectWebhookConfig struct {
	BaseModel
	ProjectName         string `gorm:"column:project_name;size:255;uniqueIndex;not null" json:"project_name"`
	URLSlug             string `gorm:"column:url_slug;size:255;index" json:"url_slug"`
	DingTalkWebhookURL  string `gorm:"column:dingtalk_webhook_url;size:2048" json:"dingtalk_webhook_url"`
	WeComWebhookURL     string `gorm:"column:wecom_webhook_url;size:2048" json:"wecom_webhook_url"`
	FeishuWebhookURL    string `gorm:"column:feishu_webhook_url;size:2048" json:"feishu_webhook_url"`
	ExtraWebhookURL     string `gorm:"column:extra_webhook_url;size:2048" json:"extra_webhook_url"`
	DingTalkEnabled     int    `gorm:"column:dingtalk_enabled;default:0" json:"dingtalk_enabled"`           // 0-禁用, 1-启用
	WeComEnabled        int    `gorm:"column:wecom_enabled;default:0" json:"wecom_enabled"`                 // 0-禁用, 1-启用
	FeishuEnabled       int    `gorm:"column:feishu_enabled;default:0" json:"feishu_enabled"`               // 0-禁用, 1-启用
	ExtraWebhookEnabled int    `gorm:"column:extra_webhook_enabled;default:0" json:"extra_webhook_enabled"` // 0-禁用, 1-启用
}

func (ProjectWebhookConfig) TableName() string {
	return "t_project_webhook_config"
}

// EnabledChannels 返回已启用的渠道名
func (c *ProjectWebhookConfig) EnabledChannels() []string {
	channels := make([]string, 0, 4)
	if c.DingTalkEnabled == 1 {
		channels = append(channels, "dingtalk")
	}
	if c.WeComEnabled == 1 {
		channels = append(channels, "wecom")
	}
	if c.FeishuEnabled == 1 {
		channels = append(channels, "feishu")
	}
	if c.ExtraWebhookEnabled == 1 {
		channels = append(channels, "extra")
	}
	return channels
}

// UpsertProjectConfigReq 新增或更新项目配置
type UpsertProjectConfigReq struct {
	ProjectName         string `json:"project_name" validate:"required,max=255"`
	URLSlug             string `json:"url_slug" validate:"max=255"`
	DingTalkWebhookURL  string `json:"dingtalk_webhook_url" validate:"omitempty,max=2048,http_url"`
	WeComWebhookURL     string `json:"wecom_webhook_url" validate:"omitempty,max=2048,http_url"`
	FeishuWebhookURL    string `json:"feishu_webhook_url" validate:"omitempty,max=2048,http_url"`
	ExtraWebhookURL     string `json:"extra_webhook_url" validate:"omitempty,max=2048,http_url"`
	DingTalkEnabled     Flag   `json:"dingtalk_enabled"`
	WeComEnabled        Flag   `json:"wecom_enabled"`
	FeishuEnabled       Flag   `json:"feishu_enabled"`
	ExtraWebhookEnabled Flag   `json:"extra_webhook_enabled"`
}

// ProjectOverview 项目概览
type ProjectOverview struct {
	ProjectName     string                `json:"project_name"`
	URLSlug         string                `json:"url_slug"`
	MRReviewCount   int64                 `json:"mr_review_count"`
	PushReviewCount int64                 `json:"push_review_count"`
	LastReviewAt    int64                 `json:"last_review_at"`
	WebhookConfig   *ProjectWebhookConfig `json:"webhook_config"`
	EnabledChannels []string              `json:"enabled_channels"`
}

// ProjectStat 按项目聚合的审查统计
type ProjectStat struct {
	ProjectName  string `gorm:"column:project_name"`
	Count        int64  `gorm:"column:cnt"`
	LastReviewAt int64  `gorm:"column:last_review_at"`
}

// ImportProjectsReq 从 GitLab 导入项目
type ImportProjectsReq struct {
	Projects []ImportProject `json:"projects"`
}

type ImportProject struct {
	Name              string `json:"name"`
	PathWithNamespace string `json:"path_with_namespace"`
}

// ImportResult 导入结果
type ImportResult struct {
	Imported int      `json:"imported"`
	Total    int      `json:"total"`
	Errors   []string `json:"errors"`
}

// ListGitLabProjectsReq 列出 GitLab 项目
type ListGitLabProjectsReq struct {
	SourceType  string `json:"source_type"` // user | group
	GroupID     string `json:"group_id"`
	GitLabURL   string `json:"gitlab_url"`
	GitLabToken string `json:"gitlab_token"`
}
