package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestTeamService_CreateValidation(t *testing.T) {
	svc := NewTeamService(newTestRepos(t).Team, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  model.CreateTeamReq
		msg  string
	}{
		{"blank name", model.CreateTeamReq{Name: "   "}, "Name is required"},
		{"long name", model.CreateTeamReq{Name: strings.Repeat("a", 51)}, "Name must be at most 50"},
		{"bad chars", model.CreateTeamReq{Name: "a<b"}, "Name contains invalid characters"},
		{"bad url", model.CreateTeamReq{Name: "ok", WebhookURL: "ftp://x"}, "WebhookURL must be a valid http(s) url"},
		{"long description", model.CreateTeamReq{Name: "ok", Description: strings.Repeat("d", 501)}, "Description must be at most 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.CreateTeam(ctx, &req)
			require.Error(t, err)
			assert.Equal(t, errs.Validation, errs.KindOf(err))
			assert.Contains(t, errs.Message(err), tt.msg)
		})
	}
}

func TestTeamService_CRUD(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewTeamService(repos.Team, repos.TeamMember)

	team, err := svc.CreateTeam(ctx, &model.CreateTeamReq{Name: "  core ", WebhookURL: "https://hook/core"})
	require.NoError(t, err)
	assert.Equal(t, "core", team.Name)

	_, err = svc.CreateTeam(ctx, &model.CreateTeamReq{Name: "core"})
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	// 部分更新
	updated, err := svc.UpdateTeam(ctx, team.ID, &model.UpdateTeamReq{Description: ptr("backend")})
	require.NoError(t, err)
	assert.Equal(t, "backend", updated.Description)
	assert.Equal(t, "https://hook/core", updated.WebhookURL)

	updated, err = svc.UpdateTeam(ctx, team.ID, &model.UpdateTeamReq{WebhookURL: ptr(" ")})
	require.NoError(t, err)
	assert.Empty(t, updated.WebhookURL, "blank clears the field")

	_, err = svc.UpdateTeam(ctx, team.ID, &model.UpdateTeamReq{Name: ptr("")})
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	_, err = svc.UpdateTeam(ctx, 999, &model.UpdateTeamReq{})
	assert.Equal(t, errs.TeamNotFound, errs.KindOf(err))

	// 成员
	_, err = svc.AddMembers(ctx, team.ID, &model.AddMembersReq{})
	assert.Equal(t, errs.Validation, errs.KindOf(err))
	_, err = svc.AddMembers(ctx, team.ID, &model.AddMembersReq{Authors: make([]string, 101)})
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	added, err := svc.AddMembers(ctx, team.ID, &model.AddMembersReq{Authors: []string{"alice", " ", "bob", "alice"}})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Added)
	assert.Len(t, added.Team.Members, 2)

	list, err := svc.ListTeams(ctx, true)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Members, 2)
	assert.EqualValues(t, 2, list[0].MemberCount)

	got, err := svc.GetTeam(ctx, team.ID, false)
	require.NoError(t, err)
	assert.Nil(t, got.Members)
	assert.EqualValues(t, 2, got.MemberCount)

	require.NoError(t, svc.RemoveMember(ctx, team.ID, "alice"))
	assert.Equal(t, errs.NotFound, errs.KindOf(svc.RemoveMember(ctx, team.ID, "alice")))

	require.NoError(t, svc.DeleteTeam(ctx, team.ID))
	assert.Equal(t, errs.TeamNotFound, errs.KindOf(svc.DeleteTeam(ctx, team.ID)))
}

func gitlabMembersServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRosterService_Replace(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	teams := NewTeamService(repos.Team, repos.TeamMember)
	srv := gitlabMembersServer(t, http.StatusOK, `[
		{"username":"m1","state":"active"},
		{"username":"m2","state":"active"},
		{"username":"gone","state":"blocked"},
		{"username":"","state":"active"}
	]`)
	roster := NewRosterService(webhook.ProviderConfig{URL: srv.URL, AccessToken: "tok"}, teams, repos.TeamMember)

	team, err := teams.CreateTeam(ctx, &model.CreateTeamReq{Name: "core"})
	require.NoError(t, err)
	_, err = repos.TeamMember.Upsert(ctx, team.ID, []string{"p1", "p2", "p3"})
	require.NoError(t, err)

	res, err := roster.Sync(ctx, team.ID, &model.SyncMembersReq{SourceID: "42", Strategy: SyncStrategyReplace})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Removed)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, model.SyncSource{Type: SyncSourceProject, ID: "42"}, res.SyncSource)
	assert.Len(t, res.Team.Members, 2)
}

func TestRosterService_MergeMovesAuthor(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	teams := NewTeamService(repos.Team, repos.TeamMember)
	srv := gitlabMembersServer(t, http.StatusOK, `[{"username":"shared","state":"active"},{"username":"kept"}]`)
	roster := NewRosterService(webhook.ProviderConfig{URL: srv.URL, AccessToken: "tok"}, teams, repos.TeamMember)

	a, err := teams.CreateTeam(ctx, &model.CreateTeamReq{Name: "a"})
	require.NoError(t, err)
	b, err := teams.CreateTeam(ctx, &model.CreateTeamReq{Name: "b"})
	require.NoError(t, err)
	_, err = repos.TeamMember.Upsert(ctx, a.ID, []string{"shared"})
	require.NoError(t, err)
	_, err = repos.TeamMember.Upsert(ctx, b.ID, []string{"kept", "local"})
	require.NoError(t, err)

	res, err := roster.Sync(ctx, b.ID, &model.SyncMembersReq{SourceType: SyncSourceGroup, SourceID: "g", Strategy: SyncStrategyMerge})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added, "kept is already a member")
	assert.Zero(t, res.Removed)
	assert.Equal(t, 3, res.Total)

	mapping, err := repos.TeamMember.AuthorTeamMapping(ctx)
	require.NoError(t, err)
	owners := map[string][]uint64{}
	for _, m := range mapping {
		owners[m.Author] = append(owners[m.Author], m.TeamID)
	}
	assert.Equal(t, []uint64{b.ID}, owners["shared"], "author belongs to exactly one team")

	count, err := repos.TeamMember.Count(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRosterService_Errors(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	teams := NewTeamService(repos.Team, repos.TeamMember)
	team, err := teams.CreateTeam(ctx, &model.CreateTeamReq{Name: "core"})
	require.NoError(t, err)

	empty := gitlabMembersServer(t, http.StatusOK, `[]`)
	inactive := gitlabMembersServer(t, http.StatusOK, `[{"username":"x","state":"blocked"}]`)
	down := gitlabMembersServer(t, http.StatusBadGateway, `bad gateway`)

	tests := []struct {
		name   string
		teamID uint64
		conf   webhook.ProviderConfig
		req    model.SyncMembersReq
		kind   errs.Kind
	}{
		{"team not found", 999, webhook.ProviderConfig{URL: empty.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: "1"}, errs.TeamNotFound},
		{"blank source id", team.ID, webhook.ProviderConfig{URL: empty.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: " "}, errs.InvalidArgument},
		{"bad strategy", team.ID, webhook.ProviderConfig{URL: empty.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: "1", Strategy: "append"}, errs.InvalidArgument},
		{"missing token", team.ID, webhook.ProviderConfig{URL: empty.URL}, model.SyncMembersReq{SourceID: "1"}, errs.InvalidArgument},
		{"empty roster", team.ID, webhook.ProviderConfig{URL: empty.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: "1"}, errs.EmptyUpstreamRoster},
		{"no active members", team.ID, webhook.ProviderConfig{URL: inactive.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: "1"}, errs.EmptyUpstreamRoster},
		{"upstream down", team.ID, webhook.ProviderConfig{URL: down.URL, AccessToken: "t"}, model.SyncMembersReq{SourceID: "1"}, errs.UpstreamUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roster := NewRosterService(tt.conf, teams, repos.TeamMember)
			req := tt.req
			_, err := roster.Sync(ctx, tt.teamID, &req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestRosterService_RequestOverridesGitLabConfig(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	teams := NewTeamService(repos.Team, repos.TeamMember)
	srv := gitlabMembersServer(t, http.StatusOK, `[{"username":"m1"}]`)
	roster := NewRosterService(webhook.ProviderConfig{}, teams, repos.TeamMember)

	team, err := teams.CreateTeam(ctx, &model.CreateTeamReq{Name: "core"})
	require.NoError(t, err)
	res, err := roster.Sync(ctx, team.ID, &model.SyncMembersReq{SourceID: "1", GitLabURL: srv.URL, GitLabToken: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}
