package repo

import (
	"github.com/go-arcade/reviewhub/pkg/database"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/google/wire"
)

// ProviderSet 提供 repository 层依赖
var ProviderSet = wire.NewSet(ProvideRepositories)

// ProvideRepositories 按配置执行自动迁移后返回全部 repository
func ProvideRepositories(db database.DB, conf database.Database) (*Repositories, error) {
	if conf.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Infow("database migrated", "driver", conf.Driver)
	}
	return NewRepositories(db), nil
}
