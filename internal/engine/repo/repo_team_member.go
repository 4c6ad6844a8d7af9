package repo

import (
	"context"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ITeamMemberRepository interface {
	Upsert(ctx context.Context, teamID uint64, authors []string) (int, error)
	Replace(ctx context.Context, teamID uint64, authors []string) (removed int, err error)
	ListByTeam(ctx context.Context, teamID uint64) ([]model.TeamMember, error)
	Remove(ctx context.Context, teamID uint64, author string) (int64, error)
	Count(ctx context.Context, teamID uint64) (int64, error)
	AuthorTeamMapping(ctx context.Context) ([]model.AuthorTeam, error)
}

type TeamMemberRepo struct {
	db database.DB
}

func NewTeamMemberRepo(db database.DB) ITeamMemberRepository {
	return &TeamMemberRepo{db: db}
}

func membersOf(teamID uint64, authors []string) []model.TeamMember {
	members := make([]model.TeamMember, 0, len(authors))
	for _, a := range authors {
		members = append(members, model.TeamMember{TeamID: teamID, Author: a})
	}
	return members
}

// upsertMembers author 已属于其他团队时改为当前团队
func upsertMembers(tx *gorm.DB, teamID uint64, authors []string) error {
	if len(authors) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "author"}},
		DoUpdates: clause.AssignmentColumns([]string{"team_id"}),
	}).Create(membersOf(teamID, authors)).Error
}

// Upsert 返回写入的作者数
func (r *TeamMemberRepo) Upsert(ctx context.Context, teamID uint64, authors []string) (int, error) {
	if err := upsertMembers(r.db.DB().WithContext(ctx), teamID, authors); err != nil {
		return 0, err
	}
	return len(authors), nil
}

// Replace 清空团队成员后写入新名单，返回移除数量
func (r *TeamMemberRepo) Replace(ctx context.Context, teamID uint64, authors []string) (int, error) {
	var removed int64
	err := r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("team_id = ?", teamID).Delete(&model.TeamMember{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return upsertMembers(tx, teamID, authors)
	})
	if err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (r *TeamMemberRepo) ListByTeam(ctx context.Context, teamID uint64) ([]model.TeamMember, error) {
	var members []model.TeamMember
	err := r.db.DB().WithContext(ctx).Where("team_id = ?", teamID).Order("author ASC").Find(&members).Error
	return members, err
}

func (r *TeamMemberRepo) Remove(ctx context.Context, teamID uint64, author string) (int64, error) {
	res := r.db.DB().WithContext(ctx).
		Where("team_id = ? AND author = ?", teamID, author).
		Delete(&model.TeamMember{})
	return res.RowsAffected, res.Error
}

func (r *TeamMemberRepo) Count(ctx context.Context, teamID uint64) (int64, error) {
	return Count(r.db.DB().WithContext(ctx).Model(&model.TeamMember{}).Where("team_id = ?", teamID))
}

// AuthorTeamMapping 作者到团队的映射
func (r *TeamMemberRepo) AuthorTeamMapping(ctx context.Context) ([]model.AuthorTeam, error) {
	var rows []model.AuthorTeam
	err := database.ReadDB(r.db.DB()).WithContext(ctx).
		Table(model.TeamMember{}.TableName()+" AS m").
		Select("m.author AS author, t.id AS team_id, t.name AS team_name, t.webhook_url AS webhook_url").
		Joins("JOIN "+model.Team{}.TableName()+" AS t ON t.id = m.team_id").
		Order("m.author ASC").
		Scan(&rows).Error
	return rows, err
}
