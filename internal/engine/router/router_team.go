package router

import (
	"strconv"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @file: router_team.go
 * @description: Team 路由
 */

func (rt *Router) teamRouter(r fiber.Router, auth fiber.Handler) {
	teamGroup := r.Group("/teams", auth)
	{
		// 查询团队列表
		teamGroup.Get("", rt.listTeams)

		// 创建团队
		teamGroup.Post("", rt.createTeam)

		// 获取团队详情
		teamGroup.Get("/:teamId", rt.getTeam)

		// 更新团队
		teamGroup.Put("/:teamId", rt.updateTeam)

		// 删除团队
		teamGroup.Delete("/:teamId", rt.deleteTeam)

		// 成员
		teamGroup.Post("/:teamId/members", rt.addMembers)
		teamGroup.Delete("/:teamId/members/:author", rt.removeMember)

		// 从 GitLab 同步成员
		teamGroup.Post("/:teamId/sync-from-gitlab", rt.syncMembers)
	}
}

// teamID 解析路径中的团队 id，非法 id 按团队不存在处理
func teamID(c *fiber.Ctx) (uint64, bool) {
	id, err := strconv.ParseUint(c.Params("teamId"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func teamNotFound(c *fiber.Ctx) error {
	return http.WithRepErrStatus(c, fiber.StatusNotFound, http.TeamNotFound.Code, http.TeamNotFound.Msg)
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	teams, err := rt.Services.Team.ListTeams(c.UserContext(), c.QueryBool("include_members", true))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, teams)
	return nil
}

func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req model.CreateTeamReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	team, err := rt.Services.Team.CreateTeam(c.UserContext(), &req)
	if err != nil {
		return failed(c, err)
	}

	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	team, err := rt.Services.Team.GetTeam(c.UserContext(), id, c.QueryBool("include_members", true))
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) updateTeam(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	var req model.UpdateTeamReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	team, err := rt.Services.Team.UpdateTeam(c.UserContext(), id, &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	if err := rt.Services.Team.DeleteTeam(c.UserContext(), id); err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) addMembers(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	var req model.AddMembersReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	result, err := rt.Services.Team.AddMembers(c.UserContext(), id, &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}

func (rt *Router) removeMember(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	if err := rt.Services.Team.RemoveMember(c.UserContext(), id, c.Params("author")); err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.OPERATION, "")
	return nil
}

func (rt *Router) syncMembers(c *fiber.Ctx) error {
	id, ok := teamID(c)
	if !ok {
		return teamNotFound(c)
	}

	var req model.SyncMembersReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c)
	}

	result, err := rt.Services.Roster.Sync(c.UserContext(), id, &req)
	if err != nil {
		return failed(c, err)
	}

	c.Locals(middleware.DETAIL, result)
	return nil
}
