package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/pkg/log"
	"gorm.io/gorm"
)

const (
	teamNameRule    = "required,max=50,excludesall=<>\"';\\"
	webhookURLRule  = "max=2048,http_url"
	descriptionRule = "max=500"
	maxAddMembers   = 100
)

type TeamService struct {
	teamRepo   repo.ITeamRepository
	memberRepo repo.ITeamMemberRepository
}

func NewTeamService(teamRepo repo.ITeamRepository, memberRepo repo.ITeamMemberRepository) *TeamService {
	return &TeamService{
		teamRepo:   teamRepo,
		memberRepo: memberRepo,
	}
}

// CreateTeam 创建团队
func (s *TeamService) CreateTeam(ctx context.Context, req *model.CreateTeamReq) (*model.Team, error) {
	// 1. 参数校验
	req.Name = strings.TrimSpace(req.Name)
	req.WebhookURL = strings.TrimSpace(req.WebhookURL)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	// 2. 检查团队名称是否已存在
	exists, err := s.teamRepo.NameExists(ctx, req.Name, 0)
	if err != nil {
		log.Errorw("check team name failed", "name", req.Name, "error", err)
		return nil, fmt.Errorf("check team name failed: %w", err)
	}
	if exists {
		return nil, errs.New(errs.Validation, "team name already exists")
	}

	// 3. 保存
	team := &model.Team{
		Name:        req.Name,
		WebhookURL:  req.WebhookURL,
		Description: req.Description,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errs.New(errs.Validation, "team name already exists")
		}
		log.Errorw("create team failed", "name", team.Name, "error", err)
		return nil, fmt.Errorf("create team failed: %w", err)
	}

	log.Infow("success create team", "name", team.Name, "teamId", team.ID)
	team.Members = []model.TeamMember{}
	return team, nil
}

// GetTeam 获取团队详情
func (s *TeamService) GetTeam(ctx context.Context, id uint64, includeMembers bool) (*model.Team, error) {
	team, err := s.teamRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New(errs.TeamNotFound, "team not found")
		}
		log.Errorw("get team failed", "teamId", id, "error", err)
		return nil, fmt.Errorf("get team failed: %w", err)
	}
	if !includeMembers {
		team.Members = nil
	}
	return team, nil
}

// ListTeams 团队列表
func (s *TeamService) ListTeams(ctx context.Context, includeMembers bool) ([]model.Team, error) {
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		log.Errorw("list teams failed", "error", err)
		return nil, fmt.Errorf("list teams failed: %w", err)
	}
	if !includeMembers {
		return teams, nil
	}
	for i := range teams {
		members, err := s.memberRepo.ListByTeam(ctx, teams[i].ID)
		if err != nil {
			log.Errorw("list team members failed", "teamId", teams[i].ID, "error", err)
			return nil, fmt.Errorf("list team members failed: %w", err)
		}
		teams[i].Members = members
	}
	return teams, nil
}

// UpdateTeam 部分更新，未提供的字段保持不变
func (s *TeamService) UpdateTeam(ctx context.Context, id uint64, req *model.UpdateTeamReq) (*model.Team, error) {
	// 1. 检查团队是否存在
	if _, err := s.GetTeam(ctx, id, false); err != nil {
		return nil, err
	}

	// 2. 构建更新数据
	updates := make(map[string]any)
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := validateVar("name", name, teamNameRule); err != nil {
			return nil, err
		}
		exists, err := s.teamRepo.NameExists(ctx, name, id)
		if err != nil {
			log.Errorw("check team name failed", "name", name, "error", err)
			return nil, fmt.Errorf("check team name failed: %w", err)
		}
		if exists {
			return nil, errs.New(errs.Validation, "team name already exists")
		}
		updates["name"] = name
	}
	if req.WebhookURL != nil {
		webhookURL := strings.TrimSpace(*req.WebhookURL)
		if webhookURL != "" {
			if err := validateVar("webhook_url", webhookURL, webhookURLRule); err != nil {
				return nil, err
			}
		}
		updates["webhook_url"] = webhookURL
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		if err := validateVar("description", description, descriptionRule); err != nil {
			return nil, err
		}
		updates["description"] = description
	}

	// 3. 更新
	if len(updates) > 0 {
		if err := s.teamRepo.Update(ctx, id, updates); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, errs.New(errs.Validation, "team name already exists")
			}
			log.Errorw("update team failed", "teamId", id, "error", err)
			return nil, fmt.Errorf("update team failed: %w", err)
		}
	}
	return s.GetTeam(ctx, id, true)
}

// DeleteTeam 删除团队及其成员
func (s *TeamService) DeleteTeam(ctx context.Context, id uint64) error {
	affected, err := s.teamRepo.Delete(ctx, id)
	if err != nil {
		log.Errorw("delete team failed", "teamId", id, "error", err)
		return fmt.Errorf("delete team failed: %w", err)
	}
	if affected == 0 {
		return errs.New(errs.TeamNotFound, "team not found")
	}
	log.Infow("success delete team", "teamId", id)
	return nil
}

// AddMembers 批量添加成员，已在其他团队的作者会被移入当前团队
func (s *TeamService) AddMembers(ctx context.Context, id uint64, req *model.AddMembersReq) (*model.AddMembersResult, error) {
	if req.Authors == nil {
		return nil, errs.New(errs.Validation, "authors must be an array")
	}
	if len(req.Authors) > maxAddMembers {
		return nil, errs.New(errs.Validation, "authors must be at most %d", maxAddMembers)
	}
	if _, err := s.GetTeam(ctx, id, false); err != nil {
		return nil, err
	}

	authors := uniqueAuthors(req.Authors)
	added, err := s.memberRepo.Upsert(ctx, id, authors)
	if err != nil {
		log.Errorw("add team members failed", "teamId", id, "error", err)
		return nil, fmt.Errorf("add team members failed: %w", err)
	}
	team, err := s.GetTeam(ctx, id, true)
	if err != nil {
		return nil, err
	}
	return &model.AddMembersResult{Added: added, Team: team}, nil
}

// RemoveMember 移除成员
func (s *TeamService) RemoveMember(ctx context.Context, id uint64, author string) error {
	affected, err := s.memberRepo.Remove(ctx, id, strings.TrimSpace(author))
	if err != nil {
		log.Errorw("remove team member failed", "teamId", id, "author", author, "error", err)
		return fmt.Errorf("remove team member failed: %w", err)
	}
	if affected == 0 {
		return errs.New(errs.NotFound, "member not found")
	}
	return nil
}

// uniqueAuthors 去空白、去重并保持顺序
func uniqueAuthors(authors []string) []string {
	seen := make(map[string]struct{}, len(authors))
	out := make([]string, 0, len(authors))
	for _, a := range authors {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
