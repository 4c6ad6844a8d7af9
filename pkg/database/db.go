// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package database

import (
	"fmt"
	"time"

	"github.com/go-arcade/reviewhub/pkg/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DB 定义数据库接口（抽象）
type DB interface {
	// DB 返回底层的 *gorm.DB
	DB() *gorm.DB
}

// GormDB GORM 数据库实现
type GormDB struct {
	db *gorm.DB
}

// NewGormDB 创建 GORM 数据库实例
func NewGormDB(db *gorm.DB) DB {
	return &GormDB{db: db}
}

// DB 返回底层的 *gorm.DB
func (g *GormDB) DB() *gorm.DB {
	return g.db
}

const defaultSlowSQL = 200 * time.Millisecond

// NewDatabase opens a gorm connection for the configured driver.
func NewDatabase(cfg Database) (*gorm.DB, error) {
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	slow := defaultSlowSQL
	if cfg.SlowThreshold > 0 {
		slow = time.Duration(cfg.SlowThreshold) * time.Millisecond
	}
	level := logger.Warn
	if cfg.OutPut {
		level = logger.Info
	}
	gormConf := &gorm.Config{
		Logger: NewGormLogger(logger.Config{
			SlowThreshold:             slow,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		TranslateError: true,
	}

	db, err := gorm.Open(dialector, gormConf)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == DriverMySQL && len(cfg.MySQL.Replicas) > 0 {
		replicas, err := buildReplicaDialectors(cfg.MySQL.Replicas)
		if err != nil {
			return nil, err
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).
			SetMaxOpenConns(cfg.MaxOpenConns).
			SetMaxIdleConns(cfg.MaxIdleConns).
			SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime)).
			SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))
		if err := db.Use(resolver); err != nil {
			return nil, fmt.Errorf("failed to register db resolver: %w", err)
		}
		log.Infow("database read replicas registered", "replicas", len(replicas))
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB handle: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// sqlite serialises writers; one connection keeps in-memory databases shared
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	sqlDB.SetConnMaxLifetime(GetConnMaxLifetime(cfg.MaxLifetime))
	sqlDB.SetConnMaxIdleTime(GetConnMaxIdleTime(cfg.MaxIdleTime))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Infow("database connected", "driver", cfg.Driver)
	return db, nil
}

func openDialector(cfg Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL:
		c := cfg.MySQL
		return mysql.Open(buildMySQLDSN(c.User, c.Password, c.Host, c.Port, c.DBName)), nil
	case DriverPostgres:
		return postgres.Open(buildPostgresDSN(cfg.Postgres)), nil
	case DriverSQLite:
		if cfg.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite path is required")
		}
		return sqlite.Open(cfg.SQLite.Path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warnw("failed to close database", "error", err)
	}
}

// ReadDB routes the query to replicas when a resolver is registered.
func ReadDB(db *gorm.DB) *gorm.DB {
	return db.Clauses(dbresolver.Read)
}
