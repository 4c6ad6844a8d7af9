package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/internal/pkg/report"
	"github.com/go-arcade/reviewhub/pkg/log"
)

const (
	ReportSourceMR   = "mr"
	ReportSourcePush = "push"

	defaultReportTitle = "代码提交日报"
)

// ReportOptions 日报配置
type ReportOptions struct {
	Title  string
	Source string // mr | push
}

type ReportService struct {
	opts       ReportOptions
	reviewRepo repo.IReviewRepository
	memberRepo repo.ITeamMemberRepository
	reporter   report.Reporter
	team       *channel.TeamChannel
	notifier   *NotifyService
	now        func() time.Time
}

func NewReportService(
	opts ReportOptions,
	reviewRepo repo.IReviewRepository,
	memberRepo repo.ITeamMemberRepository,
	reporter report.Reporter,
	team *channel.TeamChannel,
	notifier *NotifyService,
) *ReportService {
	if opts.Title == "" {
		opts.Title = defaultReportTitle
	}
	return &ReportService{
		opts:       opts,
		reviewRepo: reviewRepo,
		memberRepo: memberRepo,
		reporter:   reporter,
		team:       team,
		notifier:   notifier,
		now:        time.Now,
	}
}

type teamBucket struct {
	team    model.AuthorTeam
	records []model.ReviewRecord
}

// DailyReport 生成当天日报：按团队推送，未归属团队的记录走全局通知渠道
func (s *ReportService) DailyReport(ctx context.Context) (*model.DailyReportResult, error) {
	// 1. 读取当天的审查记录
	records, err := s.todayRecords(ctx)
	if err != nil {
		log.Errorw("load review records failed", "source", s.opts.Source, "error", err)
		return nil, fmt.Errorf("load review records failed: %w", err)
	}
	result := &model.DailyReportResult{TotalRecords: len(records), TeamReports: []model.TeamReport{}}
	if len(records) == 0 {
		log.Info("no review records today, skip daily report")
		return result, nil
	}

	// 2. 按作者归属团队分组
	mapping, err := s.memberRepo.AuthorTeamMapping(ctx)
	if err != nil {
		// 查询失败时全部按未归属处理
		log.Errorw("load author team mapping failed", "error", err)
	}
	byAuthor := make(map[string]model.AuthorTeam, len(mapping))
	for _, m := range mapping {
		byAuthor[m.Author] = m
	}

	buckets := make(map[uint64]*teamBucket)
	var order []uint64
	var unassigned []model.ReviewRecord
	for _, rec := range records {
		m, ok := byAuthor[strings.TrimSpace(rec.Author)]
		if !ok || strings.TrimSpace(m.WebhookURL) == "" {
			unassigned = append(unassigned, rec)
			continue
		}
		b, ok := buckets[m.TeamID]
		if !ok {
			b = &teamBucket{team: m}
			buckets[m.TeamID] = b
			order = append(order, m.TeamID)
		}
		b.records = append(b.records, rec)
	}
	result.UnassignedCount = len(unassigned)

	// 3. 逐个团队生成并推送，失败只记录
	for _, teamID := range order {
		result.TeamReports = append(result.TeamReports, s.teamReport(ctx, buckets[teamID]))
	}

	// 4. 兜底日报
	fallback := unassigned
	if len(buckets) == 0 {
		fallback = records
	}
	if len(fallback) > 0 {
		content, err := s.reporter.Generate(ctx, s.opts.Title, fallback)
		if err != nil {
			log.Errorw("generate fallback report failed", "error", err)
		} else {
			result.FallbackReport = content
			results := s.notifier.Notify(ctx, "", "", &channel.Message{
				Title:   s.opts.Title,
				Content: content,
				MsgType: channel.MsgTypeMarkdown,
			})
			result.FallbackSent = results.Delivered()
		}
	}

	log.Infow("daily report finished",
		"total", result.TotalRecords,
		"teams", len(result.TeamReports),
		"unassigned", result.UnassignedCount,
		"fallback_sent", result.FallbackSent,
	)
	return result, nil
}

func (s *ReportService) teamReport(ctx context.Context, b *teamBucket) model.TeamReport {
	name := b.team.TeamName
	if name == "" {
		name = "未命名团队"
	}
	authors := make(map[string]struct{})
	for _, rec := range b.records {
		authors[rec.Author] = struct{}{}
	}
	tr := model.TeamReport{
		TeamID:      b.team.TeamID,
		TeamName:    name,
		MemberCount: len(authors),
	}

	content, err := s.reporter.Generate(ctx, name+" 工作日报", b.records)
	if err != nil {
		log.Errorw("generate team report failed", "team", name, "error", err)
		tr.Error = err.Error()
		return tr
	}
	tr.Report = content
	if err := s.team.SendMarkdown(ctx, b.team.WebhookURL, name+" 工作日报", content); err != nil {
		log.Errorw("send team report failed", "team", name, "error", err)
		tr.Error = err.Error()
		return tr
	}
	tr.Sent = true
	return tr
}

// todayRecords 当天 [00:00, 次日 00:00) 的记录，按 (author, commit_messages) 去重并按作者排序
func (s *ReportService) todayRecords(ctx context.Context) ([]model.ReviewRecord, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from, to := start.Unix(), start.AddDate(0, 0, 1).Unix()

	var records []model.ReviewRecord
	if s.opts.Source == ReportSourcePush {
		rows, err := s.reviewRepo.PushesBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			records = append(records, model.ReviewRecord{
				ProjectName: r.ProjectName, Author: r.Author, Branch: r.Branch,
				CommitMessages: r.CommitMessages, Score: r.Score, UpdatedAt: r.UpdatedAt,
				Additions: r.Additions, Deletions: r.Deletions,
			})
		}
	} else {
		rows, err := s.reviewRepo.MergeRequestsBetween(ctx, from, to)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			records = append(records, model.ReviewRecord{
				ProjectName: r.ProjectName, Author: r.Author, Branch: r.SourceBranch,
				CommitMessages: r.CommitMessages, Score: r.Score, URL: r.URL, UpdatedAt: r.UpdatedAt,
				Additions: r.Additions, Deletions: r.Deletions,
			})
		}
	}

	seen := make(map[[2]string]struct{}, len(records))
	unique := records[:0]
	for _, r := range records {
		k := [2]string{r.Author, r.CommitMessages}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, r)
	}
	sort.SliceStable(unique, func(i, j int) bool { return unique[i].Author < unique[j].Author })
	return unique, nil
}
