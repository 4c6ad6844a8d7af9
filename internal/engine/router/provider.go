package router

import (
	"github.com/go-arcade/reviewhub/internal/engine/service"
	"github.com/go-arcade/reviewhub/pkg/http"
	"github.com/google/wire"
)

// ProviderSet 提供路由相关的依赖
var ProviderSet = wire.NewSet(ProvideRouter)

// ProvideRouter 提供路由实例
func ProvideRouter(httpConf *http.Http, authConf *http.Auth, services *service.Services) *Router {
	return NewRouter(httpConf, authConf, services)
}
