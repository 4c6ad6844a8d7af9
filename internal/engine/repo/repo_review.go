package repo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/database"
	"gorm.io/gorm"
)

type IReviewRepository interface {
	MergeRequestExists(ctx context.Context, key model.DedupKey) (bool, error)
	CreateMergeRequest(ctx context.Context, review *model.MergeRequestReview) error
	CreatePush(ctx context.Context, review *model.PushReview) error
	ListMergeRequests(ctx context.Context, filter model.ReviewFilter) ([]model.MergeRequestReview, int64, error)
	ListPushes(ctx context.Context, filter model.ReviewFilter) ([]model.PushReview, int64, error)
	MergeRequestsBetween(ctx context.Context, from, to int64) ([]model.MergeRequestReview, error)
	PushesBetween(ctx context.Context, from, to int64) ([]model.PushReview, error)
	Metadata(ctx context.Context) (*model.Metadata, error)
	ProjectStats(ctx context.Context) (mr, push []model.ProjectStat, err error)
}

type ReviewRepo struct {
	db database.DB
}

func NewReviewRepo(db database.DB) IReviewRepository {
	return &ReviewRepo{db: db}
}

// MergeRequestExists 判断同一提交的合并请求是否已审查
func (r *ReviewRepo) MergeRequestExists(ctx context.Context, key model.DedupKey) (bool, error) {
	var row model.MergeRequestReview
	err := r.db.DB().WithContext(ctx).
		Select("id").
		Where("project_name = ? AND source_branch = ? AND target_branch = ? AND last_commit_id = ?",
			key.ProjectName, key.SourceBranch, key.TargetBranch, key.LastCommitID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check merge request review exists: %w", err)
	}
	return true, nil
}

func (r *ReviewRepo) CreateMergeRequest(ctx context.Context, review *model.MergeRequestReview) error {
	return r.db.DB().WithContext(ctx).Create(review).Error
}

func (r *ReviewRepo) CreatePush(ctx context.Context, review *model.PushReview) error {
	return r.db.DB().WithContext(ctx).Create(review).Error
}

func applyFilter(q *gorm.DB, f model.ReviewFilter) *gorm.DB {
	if len(f.Authors) > 0 {
		q = q.Where("author IN ?", f.Authors)
	}
	if len(f.ProjectNames) > 0 {
		q = q.Where("project_name IN ?", f.ProjectNames)
	}
	if f.UpdatedFrom > 0 {
		q = q.Where("updated_at >= ?", f.UpdatedFrom)
	}
	if f.UpdatedTo > 0 {
		q = q.Where("updated_at <= ?", f.UpdatedTo)
	}
	if f.ScoreMin != nil {
		q = q.Where("score >= ?", *f.ScoreMin)
	}
	if f.ScoreMax != nil {
		q = q.Where("score <= ?", *f.ScoreMax)
	}
	return q
}

// ListMergeRequests 分页查询，按 updated_at 倒序
func (r *ReviewRepo) ListMergeRequests(ctx context.Context, filter model.ReviewFilter) ([]model.MergeRequestReview, int64, error) {
	filter.Normalize()
	q := applyFilter(database.ReadDB(r.db.DB()).WithContext(ctx).Model(&model.MergeRequestReview{}), filter)
	total, err := Count(q)
	if err != nil {
		return nil, 0, err
	}
	var rows []model.MergeRequestReview
	err = q.Order("updated_at DESC").Offset(filter.Offset()).Limit(filter.PageSize).Find(&rows).Error
	return rows, total, err
}

func (r *ReviewRepo) ListPushes(ctx context.Context, filter model.ReviewFilter) ([]model.PushReview, int64, error) {
	filter.Normalize()
	q := applyFilter(database.ReadDB(r.db.DB()).WithContext(ctx).Model(&model.PushReview{}), filter)
	total, err := Count(q)
	if err != nil {
		return nil, 0, err
	}
	var rows []model.PushReview
	err = q.Order("updated_at DESC").Offset(filter.Offset()).Limit(filter.PageSize).Find(&rows).Error
	return rows, total, err
}

// MergeRequestsBetween 查询时间范围内的合并请求日志 [from, to)
func (r *ReviewRepo) MergeRequestsBetween(ctx context.Context, from, to int64) ([]model.MergeRequestReview, error) {
	var rows []model.MergeRequestReview
	err := r.db.DB().WithContext(ctx).
		Where("updated_at >= ? AND updated_at < ?", from, to).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ReviewRepo) PushesBetween(ctx context.Context, from, to int64) ([]model.PushReview, error) {
	var rows []model.PushReview
	err := r.db.DB().WithContext(ctx).
		Where("updated_at >= ? AND updated_at < ?", from, to).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}

// Metadata 合并两张日志表的作者和项目
func (r *ReviewRepo) Metadata(ctx context.Context) (*model.Metadata, error) {
	db := database.ReadDB(r.db.DB()).WithContext(ctx)
	authors := map[string]struct{}{}
	projects := map[string]struct{}{}

	for _, m := range []any{&model.MergeRequestReview{}, &model.PushReview{}} {
		var a, p []string
		if err := db.Model(m).Distinct().Pluck("author", &a).Error; err != nil {
			return nil, fmt.Errorf("pluck authors: %w", err)
		}
		if err := db.Model(m).Distinct().Pluck("project_name", &p).Error; err != nil {
			return nil, fmt.Errorf("pluck project names: %w", err)
		}
		for _, v := range a {
			authors[v] = struct{}{}
		}
		for _, v := range p {
			projects[v] = struct{}{}
		}
	}
	return &model.Metadata{Authors: sortedKeys(authors), ProjectNames: sortedKeys(projects)}, nil
}

// ProjectStats 按项目聚合两张日志表
func (r *ReviewRepo) ProjectStats(ctx context.Context) (mr, push []model.ProjectStat, err error) {
	db := database.ReadDB(r.db.DB()).WithContext(ctx)
	if err = db.Model(&model.MergeRequestReview{}).
		Select("project_name, COUNT(*) AS cnt, MAX(updated_at) AS last_review_at").
		Group("project_name").
		Scan(&mr).Error; err != nil {
		return nil, nil, fmt.Errorf("aggregate merge request reviews: %w", err)
	}
	if err = db.Model(&model.PushReview{}).
		Select("project_name, COUNT(*) AS cnt, MAX(updated_at) AS last_review_at").
		Group("project_name").
		Scan(&push).Error; err != nil {
		return nil, nil, fmt.Errorf("aggregate push reviews: %w", err)
	}
	return mr, push, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
