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

package cron

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-arcade/reviewhub/pkg/log"
	"github.com/go-arcade/reviewhub/pkg/safe"
	"github.com/robfig/cron"
)

// Scheduler runs named jobs on standard five-field crontab expressions
// (minute hour day-of-month month day-of-week).
type Scheduler struct {
	c       *cron.Cron
	mu      sync.Mutex
	jobs    []string
	running bool
}

func New() *Scheduler {
	return &Scheduler{c: cron.New()}
}

// Parse validates a crontab expression without scheduling anything.
func Parse(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty crontab expression")
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid crontab expression %q: %w", spec, err)
	}
	return sched, nil
}

// AddFunc schedules fn under name. A panic inside fn is recovered and logged.
func (s *Scheduler) AddFunc(name, spec string, fn func()) error {
	sched, err := Parse(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Schedule(sched, cron.FuncJob(func() {
		log.Infow("cron job triggered", "job", name)
		safe.Do(name, fn)
	}))
	s.jobs = append(s.jobs, name)
	log.Infow("cron job registered", "job", name, "spec", spec)
	return nil
}

// Jobs returns the names of registered jobs.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.jobs...)
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.c.Start()
	s.running = true
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.c.Stop()
	s.running = false
}
