package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gitlabMRBody = `{
	"object_kind": "merge_request",
	"user": {"username": "alice"},
	"project": {"id": 7, "name": "app"},
	"repository": {"homepage": "https://gitlab.example.com/group/app"},
	"object_attributes": {
		"iid": 3, "title": "Add login", "action": "update",
		"source_branch": "feat", "target_branch": "main",
		"url": "https://gitlab.example.com/group/app/-/merge_requests/3",
		"last_commit": {"id": "abc123", "message": "add login form", "author": {"name": "alice"}}
	}
}`

func gitlabHeaders(kv map[string]string) webhook.HeaderFunc {
	return func(key string) string { return kv[key] }
}

func TestWebhookService_DedupSkipsSecondDelivery(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	d := &recordingDispatcher{}
	svc := NewWebhookService(webhook.Defaults{}, repos.Review, d)
	header := gitlabHeaders(map[string]string{webhook.HeaderGitLabToken: "tok"})

	res, err := svc.Accept(ctx, header, []byte(gitlabMRBody))
	require.NoError(t, err)
	assert.Equal(t, AcceptDispatched, res.Status)
	assert.Contains(t, res.Message, "object_kind=merge_request")
	require.Len(t, d.Tasks(), 1)
	assert.Equal(t, queue.TaskTypeMergeRequest, d.Tasks()[0].Type)

	var payload EventPayload
	require.NoError(t, sonic.Unmarshal(d.Tasks()[0].Payload, &payload))
	assert.Equal(t, "tok", payload.Token)
	assert.Equal(t, "https://gitlab.example.com/", payload.OriginURL)
	assert.Equal(t, "gitlab_example_com", payload.Slug)
	assert.JSONEq(t, gitlabMRBody, string(payload.Body))

	// the worker records the review
	require.NoError(t, repos.Review.CreateMergeRequest(ctx, &model.MergeRequestReview{
		ProjectName: "app", SourceBranch: "feat", TargetBranch: "main", LastCommitID: "abc123", UpdatedAt: 1,
	}))

	res, err = svc.Accept(ctx, header, []byte(gitlabMRBody))
	require.NoError(t, err)
	assert.Equal(t, AcceptDuplicate, res.Status)
	assert.Len(t, d.Tasks(), 1, "duplicate must not be dispatched")
}

func TestWebhookService_PushIsNeverDeduplicated(t *testing.T) {
	repos := newTestRepos(t)
	d := &recordingDispatcher{}
	svc := NewWebhookService(webhook.Defaults{GitHub: webhook.ProviderConfig{AccessToken: "gh"}}, repos.Review, d)
	header := gitlabHeaders(map[string]string{webhook.HeaderGitHubEvent: "push"})
	body := []byte(`{"ref":"refs/heads/main","repository":{"name":"app"},"commits":[]}`)

	for i := 0; i < 2; i++ {
		res, err := svc.Accept(context.Background(), header, body)
		require.NoError(t, err)
		assert.Equal(t, AcceptDispatched, res.Status)
		assert.Contains(t, res.Message, "GitHub request received(event_type=push)")
	}
	tasks := d.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, queue.TaskTypePush, tasks[0].Type)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestWebhookService_RejectsWithoutDispatch(t *testing.T) {
	repos := newTestRepos(t)
	d := &recordingDispatcher{}
	svc := NewWebhookService(webhook.Defaults{GitLab: webhook.ProviderConfig{AccessToken: "tok", URL: "https://gl/"}}, repos.Review, d)

	tests := []struct {
		name string
		body string
		kind errs.Kind
	}{
		{"unsupported kind", `{"object_kind":"issue"}`, errs.UnsupportedEventKind},
		{"not an object", `[1,2]`, errs.MalformedPayload},
		{"invalid json", `{`, errs.MalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Accept(context.Background(), gitlabHeaders(nil), []byte(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.kind, errs.KindOf(err))
			assert.Equal(t, 400, errs.HTTPStatus(errs.KindOf(err)))
		})
	}
	assert.Empty(t, d.Tasks())
}

func TestWebhookService_DispatchFailure(t *testing.T) {
	repos := newTestRepos(t)
	d := &recordingDispatcher{err: queue.ErrQueueFull}
	svc := NewWebhookService(webhook.Defaults{}, repos.Review, d)

	_, err := svc.Accept(context.Background(),
		gitlabHeaders(map[string]string{webhook.HeaderGitLabToken: "tok"}), []byte(gitlabMRBody))
	require.Error(t, err)
	assert.True(t, errors.Is(err, queue.ErrQueueFull))
	assert.Equal(t, errs.Internal, errs.KindOf(err))
}
