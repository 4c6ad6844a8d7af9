package service

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/internal/engine/errs"
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/metrics"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/14
 * @file: service_webhook.go
 * @description: webhook 接入：校验、去重、异步分发
 */

// EventPayload is the task payload handed to the review worker.
type EventPayload struct {
	Provider  webhook.Provider `json:"provider"`
	Kind      webhook.Kind     `json:"kind"`
	RawKind   string           `json:"raw_kind"`
	Token     string           `json:"token"`
	OriginURL string           `json:"origin_url"`
	Slug      string           `json:"slug"`
	Body      []byte           `json:"body"`
}

func (p *EventPayload) Event() *webhook.Event {
	return &webhook.Event{
		Provider:  p.Provider,
		Kind:      p.Kind,
		RawKind:   p.RawKind,
		Token:     p.Token,
		OriginURL: p.OriginURL,
		Slug:      p.Slug,
		Body:      p.Body,
	}
}

const (
	AcceptDispatched = "dispatched"
	AcceptDuplicate  = "duplicate"
)

// AcceptResult 接入结果
type AcceptResult struct {
	Status  string
	TaskID  string
	Message string
}

type WebhookService struct {
	defaults   webhook.Defaults
	reviewRepo repo.IReviewRepository
	dispatcher queue.Dispatcher
}

func NewWebhookService(defaults webhook.Defaults, reviewRepo repo.IReviewRepository, dispatcher queue.Dispatcher) *WebhookService {
	return &WebhookService{
		defaults:   defaults,
		reviewRepo: reviewRepo,
		dispatcher: dispatcher,
	}
}

// Accept validates a delivery and hands it off. It returns as soon as the
// task is queued; the review itself is never awaited.
func (s *WebhookService) Accept(ctx context.Context, header webhook.HeaderFunc, body []byte) (*AcceptResult, error) {
	// 1. 识别来源与事件类型
	event, err := webhook.Classify(header, body, s.defaults)
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "unknown", "rejected").Inc()
		log.Errorw("reject webhook", "kind", errs.KindOf(err), "error", err)
		return nil, err
	}
	provider, kind := string(event.Provider), string(event.Kind)
	log.Infow("received webhook event", "provider", provider, "event", event.RawKind, "origin", event.OriginURL)

	message := fmt.Sprintf("Request received(object_kind=%s), will process asynchronously.", event.RawKind)
	if event.Provider == webhook.GitHub {
		message = fmt.Sprintf("GitHub request received(event_type=%s), will process asynchronously.", event.RawKind)
	}

	// 2. 合并请求去重
	taskType := queue.TaskTypePush
	if event.Kind == webhook.KindMergeRequest {
		taskType = queue.TaskTypeMergeRequest
		mr := event.ParseMergeRequest()
		key := model.DedupKey{
			ProjectName:  mr.ProjectName,
			SourceBranch: mr.SourceBranch,
			TargetBranch: mr.TargetBranch,
			LastCommitID: mr.LastCommitID,
		}
		if s.isDuplicate(ctx, key) {
			metrics.DedupHitsTotal.Inc()
			metrics.WebhookEventsTotal.WithLabelValues(provider, kind, AcceptDuplicate).Inc()
			log.Debugw("merge request already reviewed, skip",
				"project", key.ProjectName,
				"source_branch", key.SourceBranch,
				"target_branch", key.TargetBranch,
				"last_commit_id", key.LastCommitID,
			)
			return &AcceptResult{Status: AcceptDuplicate, Message: message}, nil
		}
	}

	// 3. 异步分发
	payload, err := sonic.Marshal(&EventPayload{
		Provider:  event.Provider,
		Kind:      event.Kind,
		RawKind:   event.RawKind,
		Token:     event.Token,
		OriginURL: event.OriginURL,
		Slug:      event.Slug,
		Body:      event.Body,
	})
	if err != nil {
		return nil, errs.Wrap(errs.Internal, err, "encode event payload failed")
	}
	task := queue.NewTask(taskType, payload, map[string]string{"provider": provider, "slug": event.Slug})
	if err := s.dispatcher.Dispatch(ctx, task); err != nil {
		metrics.DispatchTotal.WithLabelValues(s.dispatcher.Mode(), "failure").Inc()
		metrics.WebhookEventsTotal.WithLabelValues(provider, kind, "failure").Inc()
		log.Errorw("dispatch webhook task failed", "task_type", taskType, "error", err)
		return nil, errs.Wrap(errs.Internal, err, "dispatch task failed")
	}
	metrics.DispatchTotal.WithLabelValues(s.dispatcher.Mode(), "success").Inc()
	metrics.WebhookEventsTotal.WithLabelValues(provider, kind, AcceptDispatched).Inc()

	return &AcceptResult{Status: AcceptDispatched, TaskID: task.ID, Message: message}, nil
}

// isDuplicate 查询失败时按未审查处理
func (s *WebhookService) isDuplicate(ctx context.Context, key model.DedupKey) bool {
	exists, err := s.reviewRepo.MergeRequestExists(ctx, key)
	if err != nil {
		log.Errorw("check merge request review exists failed", "project", key.ProjectName, "error", err)
		return false
	}
	return exists
}
