package repo

import (
	"context"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IProjectConfigRepository interface {
	Upsert(ctx context.Context, cfg *model.ProjectWebhookConfig) (*model.ProjectWebhookConfig, error)
	Get(ctx context.Context, projectName string) (*model.ProjectWebhookConfig, error)
	GetBySlug(ctx context.Context, slug string) (*model.ProjectWebhookConfig, error)
	List(ctx context.Context, projectName, slug string) ([]model.ProjectWebhookConfig, error)
	Delete(ctx context.Context, projectName string) (int64, error)
}

type ProjectConfigRepo struct {
	db database.DB
}

func NewProjectConfigRepo(db database.DB) IProjectConfigRepository {
	return &ProjectConfigRepo{db: db}
}

var projectConfigColumns = []string{
	"url_slug",
	"dingtalk_webhook_url", "wecom_webhook_url", "feishu_webhook_url", "extra_webhook_url",
	"dingtalk_enabled", "wecom_enabled", "feishu_enabled", "extra_webhook_enabled",
	"updated_at",
}

// Upsert 按 project_name 插入或覆盖，返回落库后的记录
func (r *ProjectConfigRepo) Upsert(ctx context.Context, cfg *model.ProjectWebhookConfig) (*model.ProjectWebhookConfig, error) {
	var stored model.ProjectWebhookConfig
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_name"}},
			DoUpdates: clause.AssignmentColumns(projectConfigColumns),
		}).Create(cfg).Error; err != nil {
			return err
		}
		return tx.Where("project_name = ?", cfg.ProjectName).First(&stored).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Get 未找到时返回 gorm.ErrRecordNotFound
func (r *ProjectConfigRepo) Get(ctx context.Context, projectName string) (*model.ProjectWebhookConfig, error) {
	var cfg model.ProjectWebhookConfig
	if err := r.db.DB().WithContext(ctx).Where("project_name = ?", projectName).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *ProjectConfigRepo) GetBySlug(ctx context.Context, slug string) (*model.ProjectWebhookConfig, error) {
	var cfg model.ProjectWebhookConfig
	if err := r.db.DB().WithContext(ctx).Where("url_slug = ?", slug).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// List 可按项目名或 slug 过滤
func (r *ProjectConfigRepo) List(ctx context.Context, projectName, slug string) ([]model.ProjectWebhookConfig, error) {
	q := database.ReadDB(r.db.DB()).WithContext(ctx).Model(&model.ProjectWebhookConfig{})
	if projectName != "" {
		q = q.Where("project_name = ?", projectName)
	}
	if slug != "" {
		q = q.Where("url_slug = ?", slug)
	}
	var list []model.ProjectWebhookConfig
	err := q.Order("project_name ASC").Find(&list).Error
	return list, err
}

func (r *ProjectConfigRepo) Delete(ctx context.Context, projectName string) (int64, error) {
	res := r.db.DB().WithContext(ctx).Where("project_name = ?", projectName).Delete(&model.ProjectWebhookConfig{})
	return res.RowsAffected, res.Error
}
