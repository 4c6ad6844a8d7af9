// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/gitlab"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
)

const (
	SyncStrategyReplace = "replace"
	SyncStrategyMerge   = "merge"

	SyncSourceProject = "project"
	SyncSourceGroup   = "group"

	gitlabTimeout = 30 * time.Second
)

// RosterService reconciles a team's members against a GitLab project or group.
type RosterService struct {
	gitlabConf webhook.ProviderConfig
	team       *TeamService
	memberRepo repo.ITeamMemberRepository
}

func NewRosterService(gitlabConf webhook.ProviderConfig, team *TeamService, memberRepo repo.ITeamMemberRepository) *RosterService {
	return &RosterService{
		gitlabConf: gitlabConf,
		team:       team,
		memberRepo: memberRepo,
	}
}

// Sync 同步团队成员
//   - replace: 清空后写入拉取到的成员，removed 为原成员数
//   - merge: 只写入新增成员，removed 恒为 0
func (s *RosterService) Sync(ctx context.Context, teamID uint64, req *model.SyncMembersReq) (result *model.SyncResult, err error) {
	strategy := cmp.Or(strings.TrimSpace(req.Strategy), SyncStrategyReplace)
	defer func() {
		metrics.RosterSyncTotal.WithLabelValues(strategy, metrics.Result(err)).Inc()
	}()

	// 1. 参数校验
	if strategy != SyncStrategyReplace && strategy != SyncStrategyMerge {
		return nil, errs.New(errs.InvalidArgument, "strategy must be replace or merge")
	}
	sourceType := cmp.Or(strings.TrimSpace(req.SourceType), SyncSourceProject)
	if sourceType != SyncSourceProject && sourceType != SyncSourceGroup {
		return nil, errs.New(errs.InvalidArgument, "source_type must be project or group")
	}

	// 2. 团队必须存在
	if _, err := s.team.GetTeam(ctx, teamID, false); err != nil {
		return nil, err
	}

	sourceID := strings.TrimSpace(req.SourceID)
	if sourceID == "" {
		return nil, errs.New(errs.InvalidArgument, "source_id is required")
	}

	// 3. 拉取外部成员
	authors, err := s.fetchAuthors(ctx, req, sourceType, sourceID)
	if err != nil {
		return nil, err
	}

	// 4. 按策略写入
	var added, removed int
	switch strategy {
	case SyncStrategyReplace:
		removed, err = s.memberRepo.Replace(ctx, teamID, authors)
		if err != nil {
			log.Errorw("replace team members failed", "teamId", teamID, "error", err)
			return nil, fmt.Errorf("replace team members failed: %w", err)
		}
		added = len(authors)
	case SyncStrategyMerge:
		current, err := s.memberRepo.ListByTeam(ctx, teamID)
		if err != nil {
			log.Errorw("list team members failed", "teamId", teamID, "error", err)
			return nil, fmt.Errorf("list team members failed: %w", err)
		}
		existing := make(map[string]struct{}, len(current))
		for _, m := range current {
			existing[m.Author] = struct{}{}
		}
		fresh := make([]string, 0, len(authors))
		for _, a := range authors {
			if _, ok := existing[a]; !ok {
				fresh = append(fresh, a)
			}
		}
		if added, err = s.memberRepo.Upsert(ctx, teamID, fresh); err != nil {
			log.Errorw("merge team members failed", "teamId", teamID, "error", err)
			return nil, fmt.Errorf("merge team members failed: %w", err)
		}
	}

	// 5. 返回同步后的团队
	team, err := s.team.GetTeam(ctx, teamID, true)
	if err != nil {
		return nil, err
	}
	log.Infow("team members synced",
		"teamId", teamID,
		"strategy", strategy,
		"source_type", sourceType,
		"source_id", sourceID,
		"added", added,
		"removed", removed,
		"total", len(team.Members),
	)
	return &model.SyncResult{
		Added:      added,
		Removed:    removed,
		Total:      len(team.Members),
		Team:       team,
		SyncSource: model.SyncSource{Type: sourceType, ID: sourceID},
	}, nil
}

func (s *RosterService) fetchAuthors(ctx context.Context, req *model.SyncMembersReq, sourceType, sourceID string) ([]string, error) {
	client := gitlab.NewClient(
		cmp.Or(strings.TrimSpace(req.GitLabURL), s.gitlabConf.URL),
		cmp.Or(strings.TrimSpace(req.GitLabToken), s.gitlabConf.AccessToken),
		gitlabTimeout,
	)

	var (
		members []gitlab.Member
		err     error
	)
	if sourceType == SyncSourceGroup {
		members, err = client.GroupMembers(ctx, sourceID)
	} else {
		members, err = client.ProjectMembers(ctx, sourceID)
	}
	switch {
	case errors.Is(err, gitlab.ErrMissingToken):
		return nil, errs.New(errs.InvalidArgument, "gitlab access token is required")
	case err != nil:
		log.Errorw("fetch gitlab members failed", "source_type", sourceType, "source_id", sourceID, "error", err)
		return nil, errs.Wrap(errs.UpstreamUnavailable, err, "fetch gitlab members failed")
	case len(members) == 0:
		return nil, errs.New(errs.EmptyUpstreamRoster, "no members found in gitlab %s %s", sourceType, sourceID)
	}

	authors := make([]string, 0, len(members))
	for _, m := range members {
		if m.Active() {
			authors = append(authors, m.Username)
		}
	}
	authors = uniqueAuthors(authors)
	if len(authors) == 0 {
		return nil, errs.New(errs.EmptyUpstreamRoster, "no active members found in gitlab %s %s", sourceType, sourceID)
	}
	return authors, nil
}
