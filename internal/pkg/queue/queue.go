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
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	ModeLocal = "local"
	ModeAsynq = "asynq"
)

// 任务类型常量
const (
	TaskTypeMergeRequest = "review:merge_request"
	TaskTypePush         = "review:push"
	TaskTypeDailyReport  = "report:daily"
)

var (
	ErrQueueFull = errors.New("dispatcher queue is full")
	ErrClosed    = errors.New("dispatcher is closed")
	ErrNoHandler = errors.New("no handler registered for task type")
)

// Config queue 配置
type Config struct {
	Mode            string `mapstructure:"mode"`            // local | asynq
	Concurrency     int    `mapstructure:"concurrency"`     // asynq 并发处理数
	MaxPending      int    `mapstructure:"maxPending"`      // local 模式最大在途任务数
	Queue           string `mapstructure:"queue"`           // asynq 队列名称
	TaskTimeout     int    `mapstructure:"taskTimeout"`     // 单个任务超时（秒）
	LogLevel        string `mapstructure:"logLevel"`        // asynq 日志级别
	ShutdownTimeout int    `mapstructure:"shutdownTimeout"` // 关闭超时（秒）
}

func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeLocal
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 10
	}
	if c.MaxPending <= 0 {
		c.MaxPending = 64
	}
	if c.Queue == "" {
		c.Queue = "reviewhub"
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 300
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 10
	}
}

func (c *Config) timeout() time.Duration {
	return time.Duration(c.TaskTimeout) * time.Second
}

// Task is one unit of background work. Payload is opaque to the queue.
type Task struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Payload []byte            `json:"payload"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// NewTask 创建任务并分配 ID
func NewTask(taskType string, payload []byte, meta map[string]string) *Task {
	return &Task{
		ID:      uuid.NewString(),
		Type:    taskType,
		Payload: payload,
		Meta:    meta,
	}
}

// Handler 任务处理器接口
type Handler interface {
	HandleTask(ctx context.Context, task *Task) error
}

// HandlerFunc 任务处理器函数类型
type HandlerFunc func(ctx context.Context, task *Task) error

func (f HandlerFunc) HandleTask(ctx context.Context, task *Task) error {
	return f(ctx, task)
}

// Dispatcher hands tasks to a worker without waiting for them to run.
// Dispatch returns once the task is accepted; the handler's outcome is never
// reported back to the caller.
type Dispatcher interface {
	Register(taskType string, handler Handler)
	Dispatch(ctx context.Context, task *Task) error
	Start() error
	Close(ctx context.Context) error
	Mode() string
}
