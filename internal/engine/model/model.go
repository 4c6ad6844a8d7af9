package model

/**
 * @author: gagral.x@gmail.com
 * @time: 2024/9/28 21:55
 * @file: model.go
 * @description: base model
 */

// BaseModel 时间戳均为 unix 秒
type BaseModel struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CreatedAt int64  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt int64  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Page 分页参数
type Page struct {
	Page     int `json:"page" query:"page"`
	PageSize int `json:"page_size" query:"page_size"`
}

func (p *Page) Normalize() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PageResult 分页结果
type PageResult[T any] struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Items    []T   `json:"items"`
}

// AllModels 需要自动迁移的表
func AllModels() []any {
	return []any{
		&MergeRequestReview{},
		&PushReview{},
		&ProjectWebhookConfig{},
		&Team{},
		&TeamMember{},
	}
}
