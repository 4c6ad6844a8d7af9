package repo

import (
	"context"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/database"
	"gorm.io/gorm"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: repo_team.go
 * @description: 团队数据访问
 */

type ITeamRepository interface {
	Create(ctx context.Context, team *model.Team) error
	Get(ctx context.Context, id uint64) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	Update(ctx context.Context, id uint64, updates map[string]any) error
	Delete(ctx context.Context, id uint64) (int64, error)
	NameExists(ctx context.Context, name string, excludeID uint64) (bool, error)
}

type TeamRepo struct {
	db database.DB
}

func NewTeamRepo(db database.DB) ITeamRepository {
	return &TeamRepo{db: db}
}

func (r *TeamRepo) Create(ctx context.Context, team *model.Team) error {
	return r.db.DB().WithContext(ctx).Omit("Members").Create(team).Error
}

// Get 带成员，成员按 author 排序
func (r *TeamRepo) Get(ctx context.Context, id uint64) (*model.Team, error) {
	var team model.Team
	err := r.db.DB().WithContext(ctx).
		Preload("Members", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("author ASC")
		}).
		Where("id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	team.MemberCount = int64(len(team.Members))
	return &team, nil
}

// List 不带成员，只填充成员数
func (r *TeamRepo) List(ctx context.Context) ([]model.Team, error) {
	db := database.ReadDB(r.db.DB()).WithContext(ctx)
	var teams []model.Team
	if err := db.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}

	var counts []struct {
		TeamID uint64 `gorm:"column:team_id"`
		Cnt    int64  `gorm:"column:cnt"`
	}
	if err := db.Model(&model.TeamMember{}).
		Select("team_id, COUNT(*) AS cnt").
		Group("team_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byTeam := make(map[uint64]int64, len(counts))
	for _, c := range counts {
		byTeam[c.TeamID] = c.Cnt
	}
	for i := range teams {
		teams[i].MemberCount = byTeam[teams[i].ID]
	}
	return teams, nil
}

func (r *TeamRepo) Update(ctx context.Context, id uint64, updates map[string]any) error {
	return r.db.DB().WithContext(ctx).Model(&model.Team{}).Where("id = ?", id).Updates(updates).Error
}

// Delete 同一事务内删除成员和团队
func (r *TeamRepo) Delete(ctx context.Context, id uint64) (int64, error) {
	var affected int64
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&model.TeamMember{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Team{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected, err
}

func (r *TeamRepo) NameExists(ctx context.Context, name string, excludeID uint64) (bool, error) {
	q := r.db.DB().WithContext(ctx).Model(&model.Team{}).Where("name = ?", name)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	count, err := Count(q)
	return count > 0, err
}
