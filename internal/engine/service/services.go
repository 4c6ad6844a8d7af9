package service

import (
	"github.com/go-arcade/reviewhub/internal/engine/config"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/notify/channel"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/report"
	"github.com/go-arcade/reviewhub/internal/pkg/review"
	"github.com/go-arcade/reviewhub/internal/pkg/webhook"
	"github.com/go-arcade/reviewhub/pkg/http"
)

// Services 统一管理所有 service
type Services struct {
	Webhook *WebhookService
	Worker  *ReviewWorker
	Notify  *NotifyService
	Report  *ReportService
	Team    *TeamService
	Roster  *RosterService
	Project *ProjectService
	Review  *ReviewService
	Auth    *AuthService
}

// NewServices 初始化所有 service
func NewServices(
	repos *repo.Repositories,
	dispatcher queue.Dispatcher,
	webhookConf config.WebhookConfig,
	reportConf config.ReportConfig,
	notifyConf notify.Config,
	fallback *notify.FallbackTable,
	authConf *http.Auth,
	reviewer review.Reviewer,
	reporter report.Reporter,
) *Services {
	// 通知
	resolver := NewConfigResolver(repos.ProjectConfig)
	notifyService := NewNotifyService(resolver, notify.NewDefaultRouter(notifyConf), notifyConf, fallback)

	// webhook 接入与异步审查
	defaults := webhook.Defaults{GitLab: webhookConf.GitLab, GitHub: webhookConf.GitHub}
	webhookService := NewWebhookService(defaults, repos.Review, dispatcher)
	worker := NewReviewWorker(WorkerOptions{
		PushReviewEnabled: webhookConf.PushReviewEnabled,
		IgnoredActions:    webhookConf.IgnoredActions,
	}, reviewer, repos.Review, notifyService)

	// 团队
	teamService := NewTeamService(repos.Team, repos.TeamMember)
	rosterService := NewRosterService(webhookConf.GitLab, teamService, repos.TeamMember)

	// 日报
	teamChannel := channel.NewTeamChannel(channel.NewClient(channel.DefaultTimeout))
	reportService := NewReportService(ReportOptions{
		Title:  reportConf.Title,
		Source: reportConf.Source,
	}, repos.Review, repos.TeamMember, reporter, teamChannel, notifyService)

	return &Services{
		Webhook: webhookService,
		Worker:  worker,
		Notify:  notifyService,
		Report:  reportService,
		Team:    teamService,
		Roster:  rosterService,
		Project: NewProjectService(webhookConf.GitLab, repos.ProjectConfig, repos.Review),
		Review:  NewReviewService(repos.Review),
		Auth:    NewAuthService(authConf),
	}
}
