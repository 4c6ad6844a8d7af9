//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-arcade/reviewhub/internal/bootstrap"
	"github.com/go-arcade/reviewhub/internal/engine/config"
	"github.com/go-arcade/reviewhub/internal/engine/repo"
	"github.com/go-arcade/reviewhub/internal/engine/router"
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/internal/pkg/queue"
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/go-arcade/reviewhub/pkg/metrics"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

func initApp(configPath string, rdb redis.UniversalClient) (*bootstrap.App, func(), error) {
	panic(wire.Build(
		// 配置层
		config.ProvideConf,
		config.ProviderSet,
		// 存储层
		database.ProviderSet,
		// 仓储层
		repo.ProviderSet,
		// 任务分发
		queue.ProviderSet,
		// 服务层
		service.ProviderSet,
		// 路由层
		router.ProviderSet,
		// 指标
		metrics.ProviderSet,
		// 应用层
		bootstrap.NewApp,
	))
}
