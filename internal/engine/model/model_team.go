package model

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: model_team.go
 * @description: 团队表模型
 */

// Team 团队表
type Team struct {
	BaseModel
	Name        string       `gorm:"column:name;size:50;uniqueIndex;not null" json:"name"` // 团队名称
	WebhookURL  string       `gorm:"column:webhook_url;size:2048" json:"webhook_url"`      // 日报推送地址
	Description string       `gorm:"column:description;size:500" json:"description"`      // 团队描述
	Members     []TeamMember `gorm:"foreignKey:TeamID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	MemberCount int64        `gorm:"-" json:"member_count"`
}

func (Team) TableName() string {
	return "t_team"
}

// TeamMember 团队成员，author 全局唯一（一人只属于一个团队）
type TeamMember struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	TeamID    uint64 `gorm:"column:team_id;not null;index" json:"team_id"`
	Author    string `gorm:"column:author;size:255;uniqueIndex;not null" json:"author"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (TeamMember) TableName() string {
	return "t_team_member"
}

// CreateTeamReq 创建团队
type CreateTeamReq struct {
	Name        string `json:"name" validate:"required,max=50,excludesall=<>\"';\\"`
	WebhookURL  string `json:"webhook_url" validate:"omitempty,max=2048,http_url"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateTeamReq 更新团队，nil 字段不修改
type UpdateTeamReq struct {
	Name        *string `json:"name"`
	WebhookURL  *string `json:"webhook_url"`
	Description *string `json:"description"`
}

// AddMembersReq 批量添加成员
type AddMembersReq struct {
	Authors []string `json:"authors" validate:"max=100"`
}

// SyncMembersReq 从 GitLab 同步成员
type SyncMembersReq struct {
	SourceType  string `json:"source_type"` // project | group
	SourceID    string `json:"source_id"`
	Strategy    string `json:"strategy"` // replace | merge
	GitLabURL   string `json:"gitlab_url"`
	GitLabToken string `json:"gitlab_token"`
}

// SyncSource 同步来源
type SyncSource struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// SyncResult 同步结果
type SyncResult struct {
	Added      int        `json:"added"`
	Removed    int        `json:"removed"`
	Total      int        `json:"total"`
	Team       *Team      `json:"team"`
	SyncSource SyncSource `json:"sync_source"`
}

// AddMembersResult 添加成员结果
type AddMembersResult struct {
	Added int   `json:"added"`
	Team  *Team `json:"team"`
}

// AuthorTeam is one row of the author to team mapping.
type AuthorTeam struct {
	Author     string `gorm:"column:author" json:"author"`
	TeamID     uint64 `gorm:"column:team_id" json:"team_id"`
	TeamName   string `gorm:"column:team_name" json:"team_name"`
	WebhookURL string `gorm:"column:webhook_url" json:"webhook_url"`
}
