package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

func (rt *Router) reviewRouter(r fiber.Router, auth fiber.Handler) {
	reviewGroup := r.Group("/reviews", auth)
	{
		reviewGroup.Get("/mr", rt.listMergeRequestReviews)
		reviewGroup.Get("/push", rt.listPushReviews)
	}

	r.Get("/metadata", auth, rt.metadata)
}

func (rt *Router) listMergeRequestReviews(c *fiber.Ctx) error {
	result, err := rt.Services.Review.ListMergeRequests(c.UserContext(), reviewFilter(c))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) listPushReviews(c *fiber.Ctx) error {
	result, err := rt.Services.Review.ListPushes(c.UserContext(), reviewFilter(c))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) metadata(c *fiber.Ctx) error {
	meta, err := rt.Services.Review.Metadata(c.UserContext())
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, meta)
	return nil
}

// reviewFilter 解析查询参数，authors/project_names 可重复出现
// start_date/end_date 为日期，end_date 包含当天
func reviewFilter(c *fiber.Ctx) model.ReviewFilter {
	f := model.ReviewFilter{
		Authors:      queryList(c, "authors"),
		ProjectNames: queryList(c, "project_names"),
		UpdatedFrom:  int64(queryInt(c, "updated_at_gte")),
		UpdatedTo:    int64(queryInt(c, "updated_at_lte")),
		ScoreMin:     queryIntPtr(c, "score_min"),
		ScoreMax:     queryIntPtr(c, "score_max"),
		Page:         model.Page{Page: queryInt(c, "page"), PageSize: queryInt(c, "page_size")},
	}
	if d, err := time.ParseInLocation(dateLayout, c.Query("start_date"), time.Local); err == nil {
		f.UpdatedFrom = d.Unix()
	}
	if d, err := time.ParseInLocation(dateLayout, c.Query("end_date"), time.Local); err == nil {
		f.UpdatedTo = d.AddDate(0, 0, 1).Unix() - 1
	}
	return f
}

func queryList(c *fiber.Ctx, key string) []string {
	var values []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func queryIntPtr(c *fiber.Ctx, key string) *int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return nil
	}
	return &value
}
