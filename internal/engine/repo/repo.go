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

package repo

import (
	"fmt"

	"github.com/go-arcade/reviewhub/internal/engine/model"
	"github.com/go-arcade/reviewhub/pkg/database"
	"gorm.io/gorm"
)

// Repositories 统一管理所有 repository
type Repositories struct {
	Review        IReviewRepository
	ProjectConfig IProjectConfigRepository
	Team          ITeamRepository
	TeamMember    ITeamMemberRepository
}

// NewRepositories 初始化所有 repository
func NewRepositories(db database.DB) *Repositories {
	return &Repositories{
		Review:        NewReviewRepo(db),
		ProjectConfig: NewProjectConfigRepo(db),
		Team:          NewTeamRepo(db),
		TeamMember:    NewTeamMemberRepo(db),
	}
}

// Migrate 自动迁移所有表
func Migrate(db database.DB) error {
	if err := db.DB().AutoMigrate(model.AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Count(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
