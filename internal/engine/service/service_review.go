package service

import (
	"context"
	"fmt"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/pkg/log"
)

// ReviewService 审查日志查询
type ReviewService struct {
	reviewRepo repo.IReviewRepository
}

func NewReviewService(reviewRepo repo.IReviewRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo}
}

func (s *ReviewService) ListMergeRequests(ctx context.Context, filter model.ReviewFilter) (*model.PageResult[model.MergeRequestReview], error) {
	filter.Normalize()
	rows, total, err := s.reviewRepo.ListMergeRequests(ctx, filter)
	if err != nil {
		log.Errorw("list merge request reviews failed", "error", err)
		return nil, fmt.Errorf("list merge request reviews failed: %w", err)
	}
	if rows == nil {
		rows = []model.MergeRequestReview{}
	}
	return &model.PageResult[model.MergeRequestReview]{Total: total, Page: filter.Page.Page, PageSize: filter.PageSize, Items: rows}, nil
}

func (s *ReviewService) ListPushes(ctx context.Context, filter model.ReviewFilter) (*model.PageResult[model.PushReview], error) {
	filter.Normalize()
	rows, total, err := s.reviewRepo.ListPushes(ctx, filter)
	if err != nil {
		log.Errorw("list push reviews failed", "error", err)
		return nil, fmt.Errorf("list push reviews failed: %w", err)
	}
	if rows == nil {
		rows = []model.PushReview{}
	}
	return &model.PageResult[model.PushReview]{Total: total, Page: filter.Page.Page, PageSize: filter.PageSize, Items: rows}, nil
}

func (s *ReviewService) Metadata(ctx context.Context) (*model.Metadata, error) {
	meta, err := s.reviewRepo.Metadata(ctx)
	if err != nil {
		log.Errorw("load review metadata failed", "error", err)
		return nil, fmt.Errorf("load review metadata failed: %w", err)
	}
	return meta, nil
}
