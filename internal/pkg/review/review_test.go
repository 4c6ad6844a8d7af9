package review

import (
	"context"
	"testing"

	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestReviewer(t *testing.T) {
	in := Input{
		Kind:        webhook.KindMergeRequest,
		ProjectName: "app",
		Author:      "alice",
		Title:       "Add login",
		Branch:      "feat/login",
		Commits: []webhook.Commit{
			{ID: "0123456789abcdef", Message: "add login form\n\nlong body"},
			{ID: "abc", Message: "fix typo"},
		},
	}

	res, err := NewDigestReviewer().Review(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Contains(t, res.Content, "#### Add login")
	assert.Contains(t, res.Content, "- `01234567` add login form")
	assert.NotContains(t, res.Content, "long body")
	assert.Contains(t, res.Content, "- `abc` fix typo")

	assert.Equal(t, "add login form\n\nlong body; fix typo", in.CommitMessages())
}

func TestDigestReviewer_NoCommits(t *testing.T) {
	res, err := DigestReviewer{}.Review(context.Background(), Input{ProjectName: "app"})
	require.NoError(t, err)
	assert.Contains(t, res.Content, "无提交记录")
}
