package queue

import (
	"fmt"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
)

var ProviderSet = wire.NewSet(ProvideDispatcher)

// ProvideDispatcher picks the dispatcher implementation from cfg.Mode.
func ProvideDispatcher(cfg Config, rdb redis.UniversalClient) (Dispatcher, error) {
	cfg.SetDefaults()
	switch cfg.Mode {
	case ModeLocal:
		return NewLocalDispatcher(cfg), nil
	case ModeAsynq:
		return NewAsynqDispatcher(cfg, rdb)
	default:
		return nil, fmt.Errorf("unsupported queue mode: %s", cfg.Mode)
	}
}
