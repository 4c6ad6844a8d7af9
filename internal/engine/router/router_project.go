package router

import (
	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

func (rt *Router) projectRouter(r fiber.Router, auth fiber.Handler) {
	// 项目通知配置
	configGroup := r.Group("/project-webhook-config", auth)
	{
		configGroup.Get("", rt.listProjectConfigs)
		configGroup.Post("", rt.upsertProjectConfig)
		configGroup.Delete("/:projectName", rt.deleteProjectConfig)
	}

	// 项目概览与 GitLab 导入
	projectGroup := r.Group("/projects", auth)
	{
		projectGroup.Get("", rt.projectOverview)
		projectGroup.Post("/gitlab-projects", rt.gitlabProjects)
		projectGroup.Post("/import-from-gitlab", rt.importFromGitLab)
		projectGroup.Get("/:projectName/summary", rt.projectSummary)
	}
}

func (rt *Router) listProjectConfigs(c *fiber.Ctx) error {
	list, err := rt.Services.Project.ListConfigs(c.UserContext(), c.Query("project_name"), c.Query("url_slug"))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, list)
	return nil
}

func (rt *Router) upsertProjectConfig(c *fiber.Ctx) error {
	var req model.UpsertProjectConfigReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	cfg, err := rt.Services.Project.UpsertConfig(c.UserContext(), &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, cfg)
	return nil
}

func (rt *Router) deleteProjectConfig(c *fiber.Ctx) error {
	projectName := c.Params("projectName")
	if projectName == "" {
		return http.WithRepErrStatus(c, fiber.StatusBadRequest, http.ProjectNameIsEmpty.Code, http.ProjectNameIsEmpty.Msg)
	}

	if err := rt.Services.Project.DeleteConfig(c.UserContext(), projectName); err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) projectOverview(c *fiber.Ctx) error {
	page := model.Page{Page: queryInt(c, "page"), PageSize: queryInt(c, "page_size")}
	result, err := rt.Services.Project.Overview(c.UserContext(), c.Query("search"), page)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) projectSummary(c *fiber.Ctx) error {
	summary, err := rt.Services.Project.Summary(c.UserContext(), c.Params("projectName"))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, summary)
	return nil
}

func (rt *Router) gitlabProjects(c *fiber.Ctx) error {
	var req model.ListGitLabProjectsReq
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c)
		}
	}

	projects, err := rt.Services.Project.GitLabProjects(c.UserContext(), &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, projects)
	return nil
}

func (rt *Router) importFromGitLab(c *fiber.Ctx) error {
	var req model.ImportProjectsReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	result, err := rt.Services.Project.ImportFromGitLab(c.UserContext(), &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}
