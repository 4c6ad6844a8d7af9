package webhook

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Commit 提交信息
type Commit struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"`
	URL       string `json:"url"`
}

// MergeRequest holds the fields of a merge/pull request event the core reads.
type MergeRequest struct {
	ProjectID    int64
	ProjectName  string
	Number       int64 // GitLab iid / GitHub number
	Title        string
	Action       string
	Author       string
	SourceBranch string
	TargetBranch string
	LastCommitID string
	URL          string
	Commits      []Commit
}

// Push holds the fields of a push event the core reads.
type Push struct {
	ProjectID   int64
	ProjectName string
	Branch      string
	Author      string
	Before      string
	After       string
	Commits     []Commit
}

// ParseMergeRequest extracts merge request fields for either provider.
func (e *Event) ParseMergeRequest() *MergeRequest {
	doc := gjson.ParseBytes(e.Body)
	if e.Provider == GitHub {
		pr := doc.Get("pull_request")
		return &MergeRequest{
			ProjectID:    doc.Get("repository.id").Int(),
			ProjectName:  doc.Get("repository.name").String(),
			Number:       pr.Get("number").Int(),
			Title:        pr.Get("title").String(),
			Action:       doc.Get("action").String(),
			Author:       pr.Get("user.login").String(),
			SourceBranch: pr.Get("head.ref").String(),
			TargetBranch: pr.Get("base.ref").String(),
			LastCommitID: pr.Get("head.sha").String(),
			URL:          pr.Get("html_url").String(),
		}
	}

	attrs := doc.Get("object_attributes")
	author := doc.Get("user.username").String()
	if author == "" {
		author = doc.Get("user.name").String()
	}
	mr := &MergeRequest{
		ProjectID:    doc.Get("project.id").Int(),
		ProjectName:  doc.Get("project.name").String(),
		Number:       attrs.Get("iid").Int(),
		Title:        attrs.Get("title").String(),
		Action:       attrs.Get("action").String(),
		Author:       author,
		SourceBranch: attrs.Get("source_branch").String(),
		TargetBranch: attrs.Get("target_branch").String(),
		LastCommitID: attrs.Get("last_commit.id").String(),
		URL:          attrs.Get("url").String(),
	}
	if last := attrs.Get("last_commit"); last.Exists() {
		mr.Commits = []Commit{parseCommit(last)}
	}
	return mr
}

// ParsePush extracts push fields for either provider.
func (e *Event) ParsePush() *Push {
	doc := gjson.ParseBytes(e.Body)
	p := &Push{
		Branch: strings.TrimPrefix(doc.Get("ref").String(), "refs/heads/"),
		Before: doc.Get("before").String(),
		After:  doc.Get("after").String(),
	}
	if e.Provider == GitHub {
		p.ProjectID = doc.Get("repository.id").Int()
		p.ProjectName = doc.Get("repository.name").String()
		p.Author = doc.Get("pusher.name").String()
		if p.Author == "" {
			p.Author = doc.Get("sender.login").String()
		}
	} else {
		p.ProjectID = doc.Get("project.id").Int()
		p.ProjectName = doc.Get("project.name").String()
		p.Author = doc.Get("user_username").String()
		if p.Author == "" {
			p.Author = doc.Get("user_name").String()
		}
	}
	doc.Get("commits").ForEach(func(_, c gjson.Result) bool {
		p.Commits = append(p.Commits, parseCommit(c))
		return true
	})
	return p
}

func parseCommit(c gjson.Result) Commit {
	author := c.Get("author.name").String()
	if author == "" {
		author = c.Get("author.username").String()
	}
	return Commit{
		ID:        c.Get("id").String(),
		Message:   strings.TrimSpace(c.Get("message").String()),
		Author:    author,
		Timestamp: c.Get("timestamp").String(),
		URL:       c.Get("url").String(),
	}
}
