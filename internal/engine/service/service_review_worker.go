package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/review"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/log"
)

// WorkerOptions 审查任务的行为开关
type WorkerOptions struct {
	PushReviewEnabled bool
	IgnoredActions    []string
}

// ReviewWorker handles dispatched webhook tasks: review, persist, notify.
type ReviewWorker struct {
	opts       WorkerOptions
	reviewer   review.Reviewer
	reviewRepo repo.IReviewRepository
	notifier   *NotifyService
	now        func() time.Time
}

func NewReviewWorker(opts WorkerOptions, reviewer review.Reviewer, reviewRepo repo.IReviewRepository, notifier *NotifyService) *ReviewWorker {
	return &ReviewWorker{
		opts:       opts,
		reviewer:   reviewer,
		reviewRepo: reviewRepo,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Register binds the worker's handlers to a dispatcher.
func (w *ReviewWorker) Register(d queue.Dispatcher) {
	d.Register(queue.TaskTypeMergeRequest, queue.HandlerFunc(w.HandleMergeRequest))
	d.Register(queue.TaskTypePush, queue.HandlerFunc(w.HandlePush))
}

func decodeEvent(task *queue.Task) (*webhook.Event, error) {
	var payload EventPayload
	if err := sonic.Unmarshal(task.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	return payload.Event(), nil
}

func (w *ReviewWorker) HandleMergeRequest(ctx context.Context, task *queue.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		log.Errorw("decode merge request task failed", "task_id", task.ID, "error", err)
		return err
	}
	mr := event.ParseMergeRequest()

	// 1. 忽略的动作
	if slices.Contains(w.opts.IgnoredActions, mr.Action) {
		log.Infow("merge request action ignored", "project", mr.ProjectName, "action", mr.Action)
		return nil
	}

	// 2. 审查
	in := review.Input{
		Kind:        webhook.KindMergeRequest,
		ProjectName: mr.ProjectName,
		Author:      mr.Author,
		Title:       mr.Title,
		Branch:      mr.SourceBranch + " -> " + mr.TargetBranch,
		URL:         mr.URL,
		Commits:     mr.Commits,
		Token:       event.Token,
		OriginURL:   event.OriginURL,
		ProjectID:   mr.ProjectID,
		Number:      mr.Number,
	}
	result, err := w.reviewer.Review(ctx, in)
	if err != nil {
		log.Errorw("review merge request failed", "project", mr.ProjectName, "error", err)
		return err
	}

	// 3. 记录审查日志
	entry := &model.MergeRequestReview{
		ProjectName:    mr.ProjectName,
		Author:         mr.Author,
		SourceBranch:   mr.SourceBranch,
		TargetBranch:   mr.TargetBranch,
		LastCommitID:   mr.LastCommitID,
		UpdatedAt:      w.now().Unix(),
		CommitMessages: cmp.Or(in.CommitMessages(), mr.Title),
		Score:          result.Score,
		URL:            mr.URL,
		ReviewResult:   result.Content,
		Additions:      result.Additions,
		Deletions:      result.Deletions,
	}
	if err := w.reviewRepo.CreateMergeRequest(ctx, entry); err != nil {
		log.Errorw("save merge request review failed", "project", mr.ProjectName, "error", err)
	}

	// 4. 通知
	title := fmt.Sprintf("%s Merge Request Review", mr.ProjectName)
	w.notifier.Notify(ctx, mr.ProjectName, event.Slug, &channel.Message{
		Title:   title,
		Content: result.Content,
		MsgType: channel.MsgTypeMarkdown,
		System:  systemInfo(event, mr.ProjectName, title, result),
		Raw:     event.Body,
	})
	return nil
}

func (w *ReviewWorker) HandlePush(ctx context.Context, task *queue.Task) error {
	event, err := decodeEvent(task)
	if err != nil {
		log.Errorw("decode push task failed", "task_id", task.ID, "error", err)
		return err
	}
	push := event.ParsePush()
	if len(push.Commits) == 0 {
		log.Infow("push without commits, skip", "project", push.ProjectName, "branch", push.Branch)
		return nil
	}

	// 未开启推送审查时只生成提交摘要
	var reviewer review.Reviewer = review.DigestReviewer{}
	if w.opts.PushReviewEnabled {
		reviewer = w.reviewer
	}
	in := review.Input{
		Kind:        webhook.KindPush,
		ProjectName: push.ProjectName,
		Author:      push.Author,
		Branch:      push.Branch,
		Commits:     push.Commits,
		Token:       event.Token,
		OriginURL:   event.OriginURL,
		ProjectID:   push.ProjectID,
	}
	result, err := reviewer.Review(ctx, in)
	if err != nil {
		log.Errorw("review push failed", "project", push.ProjectName, "error", err)
		return err
	}

	entry := &model.PushReview{
		ProjectName:    push.ProjectName,
		Author:         push.Author,
		Branch:         push.Branch,
		UpdatedAt:      w.now().Unix(),
		CommitMessages: in.CommitMessages(),
		Score:          result.Score,
		ReviewResult:   result.Content,
		Additions:      result.Additions,
		Deletions:      result.Deletions,
	}
	if err := w.reviewRepo.CreatePush(ctx, entry); err != nil {
		log.Errorw("save push review failed", "project", push.ProjectName, "error", err)
	}

	title := fmt.Sprintf("%s Push Review", push.ProjectName)
	w.notifier.Notify(ctx, push.ProjectName, event.Slug, &channel.Message{
		Title:   title,
		Content: result.Content,
		MsgType: channel.MsgTypeMarkdown,
		System:  systemInfo(event, push.ProjectName, title, result),
		Raw:     event.Body,
	})
	return nil
}

// systemInfo 是额外 webhook 信封中的 ai_codereview_data 部分
func systemInfo(event *webhook.Event, projectName, title string, result *review.Result) map[string]any {
	return map[string]any{
		"provider":     string(event.Provider),
		"event_type":   string(event.Kind),
		"origin_url":   event.OriginURL,
		"url_slug":     event.Slug,
		"project_name": projectName,
		"title":        title,
		"content":      result.Content,
		"score":        result.Score,
	}
}
