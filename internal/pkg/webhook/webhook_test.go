package webhook

import (
	"testing"

	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func headers(kv map[string]string) HeaderFunc {
	return func(key string) string { return kv[key] }
}

const gitlabMR = `{
  "object_kind": "merge_request",
  "user": {"username": "alice", "name": "Alice"},
  "project": {"id": 42, "name": "backend"},
  "repository": {"homepage": "https://gitlab.example.com/group/backend"},
  "object_attributes": {
    "iid": 7, "title": "feat: login", "action": "update",
    "source_branch": "feature/login", "target_branch": "main",
    "url": "https://gitlab.example.com/group/backend/-/merge_requests/7",
    "last_commit": {"id": "abc123", "message": "add login\n", "author": {"name": "Alice"}}
  }
}`

func TestClassify_GitLab(t *testing.T) {
	ev, err := Classify(headers(map[string]string{HeaderGitLabToken: "hdr-token"}), []byte(gitlabMR),
		Defaults{GitLab: ProviderConfig{AccessToken: "cfg-token"}})
	require.NoError(t, err)

	assert.Equal(t, GitLab, ev.Provider)
	assert.Equal(t, KindMergeRequest, ev.Kind)
	// 请求头优先于全局配置
	assert.Equal(t, "hdr-token", ev.Token)
	assert.Equal(t, "https://gitlab.example.com/", ev.OriginURL)
	assert.Equal(t, "gitlab_example_com", ev.Slug)

	mr := ev.ParseMergeRequest()
	assert.Equal(t, "backend", mr.ProjectName)
	assert.Equal(t, int64(42), mr.ProjectID)
	assert.Equal(t, "feature/login", mr.SourceBranch)
	assert.Equal(t, "main", mr.TargetBranch)
	assert.Equal(t, "abc123", mr.LastCommitID)
	assert.Equal(t, "alice", mr.Author)
	require.Len(t, mr.Commits, 1)
	assert.Equal(t, "add login", mr.Commits[0].Message)
}

func TestClassify_GitLabOriginPriority(t *testing.T) {
	body := []byte(`{"object_kind":"push","repository":{"homepage":"http://h.example/x"}}`)

	ev, err := Classify(headers(map[string]string{HeaderGitLabInstance: "https://from-header/"}), body,
		Defaults{GitLab: ProviderConfig{URL: "https://configured.example/", AccessToken: "t"}})
	require.NoError(t, err)
	assert.Equal(t, "https://configured.example/", ev.OriginURL)

	ev, err = Classify(headers(map[string]string{HeaderGitLabInstance: "https://from-header/"}), body,
		Defaults{GitLab: ProviderConfig{AccessToken: "t"}})
	require.NoError(t, err)
	assert.Equal(t, "https://from-header/", ev.OriginURL)

	ev, err = Classify(headers(nil), body, Defaults{GitLab: ProviderConfig{AccessToken: "t"}})
	require.NoError(t, err)
	assert.Equal(t, "http://h.example/", ev.OriginURL)
}

func TestClassify_Errors(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		body     string
		defaults Defaults
		want     errs.Kind
	}{
		{"not json", nil, `not json`, Defaults{}, errs.MalformedPayload},
		{"json array", nil, `[1,2]`, Defaults{}, errs.MalformedPayload},
		{"gitlab missing token", nil, gitlabMR, Defaults{}, errs.MissingCredential},
		{"gitlab missing origin", map[string]string{HeaderGitLabToken: "t"}, `{"object_kind":"push"}`, Defaults{}, errs.MissingOriginURL},
		{"gitlab bad homepage", map[string]string{HeaderGitLabToken: "t"}, `{"object_kind":"push","repository":{"homepage":"not-a-url"}}`, Defaults{}, errs.MissingOriginURL},
		{"gitlab unsupported", map[string]string{HeaderGitLabToken: "t", HeaderGitLabInstance: "https://g/"}, `{"object_kind":"note"}`, Defaults{}, errs.UnsupportedEventKind},
		{"github missing token", map[string]string{HeaderGitHubEvent: "push"}, `{}`, Defaults{}, errs.MissingCredential},
		{"github unsupported", map[string]string{HeaderGitHubEvent: "issues", HeaderGitHubToken: "t"}, `{}`, Defaults{}, errs.UnsupportedEventKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(headers(tt.headers), []byte(tt.body), tt.defaults)
			require.Error(t, err)
			assert.Equal(t, tt.want, errs.KindOf(err))
		})
	}
}

func TestClassify_GitHub(t *testing.T) {
	body := `{
	  "action": "synchronize",
	  "repository": {"id": 9, "name": "frontend"},
	  "pull_request": {"number": 3, "title": "fix", "html_url": "https://github.com/o/frontend/pull/3",
	    "user": {"login": "bob"}, "head": {"ref": "fix", "sha": "def456"}, "base": {"ref": "main"}}
	}`
	ev, err := Classify(headers(map[string]string{HeaderGitHubEvent: "pull_request"}), []byte(body),
		Defaults{GitHub: ProviderConfig{AccessToken: "gh"}})
	require.NoError(t, err)
	assert.Equal(t, GitHub, ev.Provider)
	assert.Equal(t, "https://github.com", ev.OriginURL)
	assert.Equal(t, "github_com", ev.Slug)

	mr := ev.ParseMergeRequest()
	assert.Equal(t, "frontend", mr.ProjectName)
	assert.Equal(t, "fix", mr.SourceBranch)
	assert.Equal(t, "def456", mr.LastCommitID)
	assert.Equal(t, "bob", mr.Author)
}

func TestParsePush(t *testing.T) {
	body := `{"object_kind":"push","ref":"refs/heads/dev","user_username":"carol",
	  "project":{"id":1,"name":"api"},
	  "commits":[{"id":"1","message":"one"},{"id":"2","message":"two","author":{"name":"Carol"}}]}`
	ev, err := Classify(headers(map[string]string{HeaderGitLabToken: "t", HeaderGitLabInstance: "https://g/"}), []byte(body), Defaults{})
	require.NoError(t, err)

	p := ev.ParsePush()
	assert.Equal(t, "dev", p.Branch)
	assert.Equal(t, "carol", p.Author)
	assert.Equal(t, "api", p.ProjectName)
	require.Len(t, p.Commits, 2)
	assert.Equal(t, "Carol", p.Commits[1].Author)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"https://gitlab.example.com/":    "gitlab_example_com",
		"HTTP://GitLab.Example.com:8080": "gitlab_example_com_8080",
		"gitlab.local":                   "gitlab_local",
		"":                               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}
