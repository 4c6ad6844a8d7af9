package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/gitlab"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/log"
)

type ProjectService struct {
	gitlabConf webhook.ProviderConfig
	configRepo repo.IProjectConfigRepository
	reviewRepo repo.IReviewRepository
}

func NewProjectService(gitlabConf webhook.ProviderConfig, configRepo repo.IProjectConfigRepository, reviewRepo repo.IReviewRepository) *ProjectService {
	return &ProjectService{
		gitlabConf: gitlabConf,
		configRepo: configRepo,
		reviewRepo: reviewRepo,
	}
}

// ListConfigs 按项目名或 slug 过滤
func (s *ProjectService) ListConfigs(ctx context.Context, projectName, slug string) ([]model.ProjectWebhookConfig, error) {
	list, err := s.configRepo.List(ctx, strings.TrimSpace(projectName), strings.TrimSpace(slug))
	if err != nil {
		log.Errorw("list project webhook configs failed", "error", err)
		return nil, fmt.Errorf("list project webhook configs failed: %w", err)
	}
	return list, nil
}

// UpsertConfig 新增或覆盖项目配置
func (s *ProjectService) UpsertConfig(ctx context.Context, req *model.UpsertProjectConfigReq) (*model.ProjectWebhookConfig, error) {
	req.ProjectName = strings.TrimSpace(req.ProjectName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	cfg, err := s.configRepo.Upsert(ctx, &model.ProjectWebhookConfig{
		ProjectName:         req.ProjectName,
		URLSlug:             strings.TrimSpace(req.URLSlug),
		DingTalkWebhookURL:  strings.TrimSpace(req.DingTalkWebhookURL),
		WeComWebhookURL:     strings.TrimSpace(req.WeComWebhookURL),
		FeishuWebhookURL:    strings.TrimSpace(req.FeishuWebhookURL),
		ExtraWebhookURL:     strings.TrimSpace(req.ExtraWebhookURL),
		DingTalkEnabled:     req.DingTalkEnabled.Int(),
		WeComEnabled:        req.WeComEnabled.Int(),
		FeishuEnabled:       req.FeishuEnabled.Int(),
		ExtraWebhookEnabled: req.ExtraWebhookEnabled.Int(),
	})
	if err != nil {
		log.Errorw("upsert project webhook config failed", "project", req.ProjectName, "error", err)
		return nil, fmt.Errorf("upsert project webhook config failed: %w", err)
	}
	log.Infow("project webhook config saved", "project", cfg.ProjectName, "channels", cfg.EnabledChannels())
	return cfg, nil
}

func (s *ProjectService) DeleteConfig(ctx context.Context, projectName string) error {
	affected, err := s.configRepo.Delete(ctx, projectName)
	if err != nil {
		log.Errorw("delete project webhook config failed", "project", projectName, "error", err)
		return fmt.Errorf("delete project webhook config failed: %w", err)
	}
	if affected == 0 {
		return errs.New(errs.NotFound, "project webhook config not found")
	}
	return nil
}

// overviews 合并两张审查日志表与配置表中的全部项目
func (s *ProjectService) overviews(ctx context.Context) ([]model.ProjectOverview, error) {
	mrStats, pushStats, err := s.reviewRepo.ProjectStats(ctx)
	if err != nil {
		return nil, err
	}
	configs, err := s.configRepo.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*model.ProjectOverview)
	get := func(name string) *model.ProjectOverview {
		o, ok := byName[name]
		if !ok {
			o = &model.ProjectOverview{ProjectName: name, EnabledChannels: []string{}}
			byName[name] = o
		}
		return o
	}
	for _, st := range mrStats {
		o := get(st.ProjectName)
		o.MRReviewCount = st.Count
		o.LastReviewAt = max(o.LastReviewAt, st.LastReviewAt)
	}
	for _, st := range pushStats {
		o := get(st.ProjectName)
		o.PushReviewCount = st.Count
		o.LastReviewAt = max(o.LastReviewAt, st.LastReviewAt)
	}
	for i := range configs {
		cfg := configs[i]
		o := get(cfg.ProjectName)
		o.URLSlug = cfg.URLSlug
		o.WebhookConfig = &cfg
		o.EnabledChannels = cfg.EnabledChannels()
	}

	list := make([]model.ProjectOverview, 0, len(byName))
	for name, o := range byName {
		if name == "" {
			continue
		}
		list = append(list, *o)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].LastReviewAt != list[j].LastReviewAt {
			return list[i].LastReviewAt > list[j].LastReviewAt
		}
		return list[i].ProjectName > list[j].ProjectName
	})
	return list, nil
}

// Overview 项目概览，支持按名称或 slug 搜索并分页
func (s *ProjectService) Overview(ctx context.Context, search string, page model.Page) (*model.PageResult[model.ProjectOverview], error) {
	page.Normalize()
	list, err := s.overviews(ctx)
	if err != nil {
		log.Errorw("load project overview failed", "error", err)
		return nil, fmt.Errorf("load project overview failed: %w", err)
	}

	if search = strings.ToLower(strings.TrimSpace(search)); search != "" {
		filtered := list[:0]
		for _, o := range list {
			if strings.Contains(strings.ToLower(o.ProjectName), search) ||
				strings.Contains(strings.ToLower(o.URLSlug), search) {
				filtered = append(filtered, o)
			}
		}
		list = filtered
	}

	total := len(list)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return &model.PageResult[model.ProjectOverview]{
		Total:    int64(total),
		Page:     page.Page,
		PageSize: page.PageSize,
		Items:    list[start:end],
	}, nil
}

// Summary 单个项目概览，既无审查记录也无配置时返回 NotFound
func (s *ProjectService) Summary(ctx context.Context, projectName string) (*model.ProjectOverview, error) {
	list, err := s.overviews(ctx)
	if err != nil {
		log.Errorw("load project summary failed", "project", projectName, "error", err)
		return nil, fmt.Errorf("load project summary failed: %w", err)
	}
	for i := range list {
		if list[i].ProjectName == projectName {
			return &list[i], nil
		}
	}
	return nil, errs.New(errs.NotFound, "project not found")
}

func (s *ProjectService) gitlabClient(url, token string) *gitlab.Client {
	return gitlab.NewClient(
		cmp.Or(strings.TrimSpace(url), s.gitlabConf.URL),
		cmp.Or(strings.TrimSpace(token), s.gitlabConf.AccessToken),
		gitlabTimeout,
	)
}

// GitLabProjects 列出当前用户参与的项目，或指定组下的项目
func (s *ProjectService) GitLabProjects(ctx context.Context, req *model.ListGitLabProjectsReq) ([]gitlab.Project, error) {
	client := s.gitlabClient(req.GitLabURL, req.GitLabToken)

	var (
		projects []gitlab.Project
		err      error
	)
	if req.SourceType == SyncSourceGroup {
		groupID := strings.TrimSpace(req.GroupID)
		if groupID == "" {
			return nil, errs.New(errs.InvalidArgument, "group_id is required")
		}
		projects, err = client.GroupProjects(ctx, groupID)
	} else {
		projects, err = client.Projects(ctx, true)
	}
	switch {
	case errors.Is(err, gitlab.ErrMissingToken):
		return nil, errs.New(errs.InvalidArgument, "gitlab access token is required")
	case err != nil:
		log.Errorw("list gitlab projects failed", "error", err)
		return nil, errs.Wrap(errs.UpstreamUnavailable, err, "list gitlab projects failed")
	}
	if projects == nil {
		projects = []gitlab.Project{}
	}
	return projects, nil
}

// ImportFromGitLab 为选中的项目写入未启用任何渠道的配置，已有配置会被覆盖
func (s *ProjectService) ImportFromGitLab(ctx context.Context, req *model.ImportProjectsReq) (*model.ImportResult, error) {
	if len(req.Projects) == 0 {
		return nil, errs.New(errs.InvalidArgument, "projects is required")
	}
	result := &model.ImportResult{Total: len(req.Projects), Errors: []string{}}
	for _, p := range req.Projects {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		if _, err := s.configRepo.Upsert(ctx, &model.ProjectWebhookConfig{
			ProjectName: name,
			URLSlug:     strings.TrimSpace(p.PathWithNamespace),
		}); err != nil {
			log.Errorw("import project failed", "project", name, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		result.Imported++
	}
	log.Infow("projects imported from gitlab", "imported", result.Imported, "total", result.Total)
	return result, nil
}
