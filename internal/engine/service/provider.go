package service

import (
	"os"

	"github.com/go-arcade/reviewhub/internal/engine/config"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/pkg/notify"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/internal/pkg/report"
	"github.com/go-arcade/reviewhub/internal/pkg/review"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供服务层相关的依赖
var ProviderSet = wire.NewSet(
	ProvideServices,
	ProvideFallbackTable,
	ProvideReviewer,
	ProvideReporter,
)

// ProvideServices 提供统一的 Services 实例，并把审查处理器注册到 dispatcher
func ProvideServices(
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
	services := NewServices(repos, dispatcher, webhookConf, reportConf, notifyConf, fallback, authConf, reviewer, reporter)
	services.Worker.Register(dispatcher)
	return services
}

// ProvideFallbackTable 启动时读取一次环境变量
func ProvideFallbackTable(notifyConf notify.Config) *notify.FallbackTable {
	table := notify.LoadFallbackTable(os.Environ(), notifyConf)
	log.Infow("notify fallback table loaded", "entries", table.Len())
	return table
}

func ProvideReviewer() review.Reviewer {
	return review.NewDigestReviewer()
}

func ProvideReporter() report.Reporter {
	return report.NewMarkdownReporter()
}
