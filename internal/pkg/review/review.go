package review

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: review.go
 * @description: 代码审查接口，默认实现只生成提交摘要
 */

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
)

// Input 一次审查的输入
type Input struct {
	Kind        webhook.Kind
	ProjectName string
	Author      string
	Title       string
	Branch      string
	URL         string
	Commits     []webhook.Commit

	// 外部审查器拉取 diff 时使用
	Token     string
	OriginURL string
	ProjectID int64
	Number    int64
}

// CommitMessages joins commit messages the way they are stored in review logs.
func (in Input) CommitMessages() string {
	msgs := make([]string, 0, len(in.Commits))
	for _, c := range in.Commits {
		if m := strings.TrimSpace(c.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}

// Result 审查结果
type Result struct {
	Content   string
	Score     int
	Additions int
	Deletions int
}

// Reviewer produces review content for a merge request or push.
type Reviewer interface {
	Review(ctx context.Context, in Input) (*Result, error)
}

// DigestReviewer lists commit messages as markdown with score 0.
type DigestReviewer struct{}

func NewDigestReviewer() *DigestReviewer {
	return &DigestReviewer{}
}

func (DigestReviewer) Review(_ context.Context, in Input) (*Result, error) {
	var b strings.Builder
	if in.Title != "" {
		fmt.Fprintf(&b, "#### %s\n\n", in.Title)
	}
	fmt.Fprintf(&b, "- 项目: %s\n- 作者: %s\n", in.ProjectName, in.Author)
	if in.Branch != "" {
		fmt.Fprintf(&b, "- 分支: %s\n", in.Branch)
	}
	if in.URL != "" {
		fmt.Fprintf(&b, "- 链接: [查看](%s)\n", in.URL)
	}
	if len(in.Commits) == 0 {
		b.WriteString("\n无提交记录\n")
		return &Result{Content: b.String()}, nil
	}

	b.WriteString("\n**提交记录**\n\n")
	for _, c := range in.Commits {
		id := c.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(&b, "- `%s` %s\n", id, firstLine(c.Message))
	}
	return &Result{Content: b.String()}, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
