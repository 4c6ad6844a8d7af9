package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_UpsertTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewProjectService(webhook.ProviderConfig{}, repos.ProjectConfig, repos.Review)

	var req model.UpsertProjectConfigReq
	require.NoError(t, sonic.Unmarshal([]byte(`{
		"project_name": " app ",
		"dingtalk_webhook_url": "https://ding/1",
		"dingtalk_enabled": true,
		"wecom_enabled": "0"
	}`), &req))
	first, err := svc.UpsertConfig(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, "app", first.ProjectName)
	assert.Equal(t, 1, first.DingTalkEnabled)
	assert.Equal(t, 0, first.WeComEnabled)

	second, err := svc.UpsertConfig(ctx, &model.UpsertProjectConfigReq{
		ProjectName: "app", DingTalkWebhookURL: "https://ding/2", DingTalkEnabled: 1,
	})
	require.NoError(t, err)

	list, err := svc.ListConfigs(ctx, "app", "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "https://ding/2", list[0].DingTalkWebhookURL)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.UpsertConfig(ctx, &model.UpsertProjectConfigReq{ProjectName: ""})
	assert.Equal(t, errs.Validation, errs.KindOf(err))
	_, err = svc.UpsertConfig(ctx, &model.UpsertProjectConfigReq{ProjectName: "x", FeishuWebhookURL: "not a url"})
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	require.NoError(t, svc.DeleteConfig(ctx, "app"))
	assert.Equal(t, errs.NotFound, errs.KindOf(svc.DeleteConfig(ctx, "app")))
}

func TestProjectService_OverviewAndSummary(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewProjectService(webhook.ProviderConfig{}, repos.ProjectConfig, repos.Review)

	require.NoError(t, repos.Review.CreateMergeRequest(ctx, &model.MergeRequestReview{ProjectName: "alpha", Author: "a", UpdatedAt: 100}))
	require.NoError(t, repos.Review.CreateMergeRequest(ctx, &model.MergeRequestReview{ProjectName: "alpha", Author: "a", UpdatedAt: 300}))
	require.NoError(t, repos.Review.CreatePush(ctx, &model.PushReview{ProjectName: "beta", Author: "b", UpdatedAt: 200}))
	_, err := repos.ProjectConfig.Upsert(ctx, &model.ProjectWebhookConfig{ProjectName: "gamma", URLSlug: "group/gamma", WeComEnabled: 1})
	require.NoError(t, err)
	_, err = repos.ProjectConfig.Upsert(ctx, &model.ProjectWebhookConfig{ProjectName: "delta"})
	require.NoError(t, err)

	page, err := svc.Overview(ctx, "", model.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	names := make([]string, 0, len(page.Items))
	for _, o := range page.Items {
		names = append(names, o.ProjectName)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, names)
	assert.EqualValues(t, 2, page.Items[0].MRReviewCount)
	assert.EqualValues(t, 300, page.Items[0].LastReviewAt)
	assert.Equal(t, []string{"wecom"}, page.Items[2].EnabledChannels)

	page, err = svc.Overview(ctx, "GROUP/", model.Page{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "gamma", page.Items[0].ProjectName)

	page, err = svc.Overview(ctx, "", model.Page{Page: 2, PageSize: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "delta", page.Items[0].ProjectName)

	summary, err := svc.Summary(ctx, "beta")
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.PushReviewCount)
	assert.Nil(t, summary.WebhookConfig)

	_, err = svc.Summary(ctx, "missing")
	assert.Equal(t, errs.NotFound, errs.KindOf(err))
}

func TestProjectService_GitLabImport(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	srv := gitlabMembersServer(t, http.StatusOK, `[{"id":1,"name":"app","path_with_namespace":"group/app"}]`)
	svc := NewProjectService(webhook.ProviderConfig{URL: srv.URL, AccessToken: "tok"}, repos.ProjectConfig, repos.Review)

	projects, err := svc.GitLabProjects(ctx, &model.ListGitLabProjectsReq{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "group/app", projects[0].PathWithNamespace)

	_, err = svc.GitLabProjects(ctx, &model.ListGitLabProjectsReq{SourceType: SyncSourceGroup})
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))

	_, err = repos.ProjectConfig.Upsert(ctx, &model.ProjectWebhookConfig{ProjectName: "app", DingTalkEnabled: 1})
	require.NoError(t, err)

	res, err := svc.ImportFromGitLab(ctx, &model.ImportProjectsReq{Projects: []model.ImportProject{
		{Name: "app", PathWithNamespace: "group/app"},
		{Name: "lib", PathWithNamespace: "group/lib"},
		{Name: ""},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 3, res.Total)
	assert.Empty(t, res.Errors)

	cfg, err := repos.ProjectConfig.Get(ctx, "app")
	require.NoError(t, err)
	assert.Equal(t, "group/app", cfg.URLSlug)
	assert.Empty(t, cfg.EnabledChannels(), "import resets channels")

	_, err = svc.ImportFromGitLab(ctx, &model.ImportProjectsReq{})
	assert.Equal(t, errs.InvalidArgument, errs.KindOf(err))
}
