package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/model"
)

// Reporter turns a batch of review records into report text.
type Reporter interface {
	Generate(ctx context.Context, title string, records []model.ReviewRecord) (string, error)
}

// MarkdownReporter groups records by author and lists each commit message.
type MarkdownReporter struct {
	now func() time.Time
}

func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{now: time.Now}
}

func (r *MarkdownReporter) Generate(_ context.Context, title string, records []model.ReviewRecord) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", title)
	fmt.Fprintf(&b, "> %s 共 %d 条提交\n\n", r.now().Format("2006-01-02"), len(records))
	if len(records) == 0 {
		b.WriteString("今日无提交记录\n")
		return b.String(), nil
	}

	byAuthor := make(map[string][]model.ReviewRecord)
	authors := make([]string, 0)
	for _, rec := range records {
		if _, ok := byAuthor[rec.Author]; !ok {
			authors = append(authors, rec.Author)
		}
		byAuthor[rec.Author] = append(byAuthor[rec.Author], rec)
	}
	sort.Strings(authors)

	for _, author := range authors {
		recs := byAuthor[author]
		var additions, deletions int
		for _, rec := range recs {
			additions += rec.Additions
			deletions += rec.Deletions
		}
		fmt.Fprintf(&b, "#### %s (%d 条, +%d/-%d)\n\n", author, len(recs), additions, deletions)
		for _, rec := range recs {
			line := fmt.Sprintf("- [%s] %s", rec.ProjectName, strings.TrimSpace(rec.CommitMessages))
			if rec.Branch != "" {
				line += fmt.Sprintf(" `%s`", rec.Branch)
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}
