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

package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// AsynqDispatcher 基于 asynq 的分布式任务分发
type AsynqDispatcher struct {
	cfg      Config
	client   *asynq.Client
	server   *asynq.Server
	mux      *asynq.ServeMux
	redisOpt asynq.RedisConnOpt
}

func NewAsynqDispatcher(cfg Config, rdb redis.UniversalClient) (*AsynqDispatcher, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is required for asynq mode")
	}
	cfg.SetDefaults()
	redisOpt := &redisConnOptWrapper{client: rdb}

	var logLevel asynq.LogLevel
	if err := logLevel.Set(cfg.LogLevel); err != nil {
		log.Warnw("invalid log level, using default info", "logLevel", cfg.LogLevel, "error", err)
		logLevel = asynq.InfoLevel
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Concurrency,
		Queues:          map[string]int{cfg.Queue: 1},
		Logger:          &asynqLoggerAdapter{},
		LogLevel:        logLevel,
		ShutdownTimeout: time.Duration(cfg.ShutdownTimeout) * time.Second,
	})

	log.Infow("asynq dispatcher created",
		"concurrency", cfg.Concurrency,
		"queue", cfg.Queue,
	)

	return &AsynqDispatcher{
		cfg:      cfg,
		client:   asynq.NewClient(redisOpt),
		server:   server,
		mux:      asynq.NewServeMux(),
		redisOpt: redisOpt,
	}, nil
}

func (d *AsynqDispatcher) Mode() string { return ModeAsynq }

// Register 注册到 asynq ServeMux
func (d *AsynqDispatcher) Register(taskType string, handler Handler) {
	d.mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
		task, err := decodeTask(t.Payload())
		if err != nil {
			// 负载损坏时重试无意义
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		log.Infow("processing task", "task_id", task.ID, "task_type", task.Type)
		if err := handler.HandleTask(ctx, task); err != nil {
			log.Errorw("task failed", "task_id", task.ID, "task_type", task.Type, "error", err)
			return err
		}
		return nil
	})
	log.Infow("task handler registered", "task_type", taskType, "mode", ModeAsynq)
}

// Dispatch 入队任务
func (d *AsynqDispatcher) Dispatch(ctx context.Context, task *Task) error {
	data, err := encodeTask(task)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, asynq.NewTask(task.Type, data),
		asynq.Queue(d.cfg.Queue),
		asynq.MaxRetry(0), // 不重试，由源系统重新投递 webhook
		asynq.Timeout(d.cfg.timeout()),
		asynq.TaskID(task.ID),
	)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	log.Debugw("task enqueued",
		"task_id", task.ID,
		"task_type", task.Type,
		"queue", info.Queue,
	)
	return nil
}

// Start 启动 worker，立即返回
func (d *AsynqDispatcher) Start() error {
	log.Info("starting asynq worker")
	return d.server.Start(d.mux)
}

func (d *AsynqDispatcher) Close(_ context.Context) error {
	d.server.Shutdown()
	if err := d.client.Close(); err != nil {
		log.Warnw("error closing asynq client", "error", err)
		return err
	}
	log.Info("asynq dispatcher closed")
	return nil
}

// Inspector 用于队列指标采集
func (d *AsynqDispatcher) Inspector() *asynq.Inspector {
	return asynq.NewInspector(d.redisOpt)
}

func (d *AsynqDispatcher) QueueName() string {
	return d.cfg.Queue
}

func encodeTask(task *Task) ([]byte, error) {
	data, err := sonic.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("marshal task payload: %w", err)
	}
	return data, nil
}

func decodeTask(data []byte) (*Task, error) {
	var task Task
	if err := sonic.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("unmarshal task payload: %w", err)
	}
	return &task, nil
}

// redisConnOptWrapper 包装已有的 Redis 客户端实现 RedisConnOpt 接口
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

// MakeRedisClient 实现 RedisConnOpt 接口
func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
