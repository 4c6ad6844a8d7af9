package model

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/13
 * @file: model_review.go
 * @description: 审查日志表模型
 */

// MergeRequestReview 合并请求审查日志，写入后不再修改
type MergeRequestReview struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectName    string `gorm:"column:project_name;size:255;index:idx_mr_dedup,priority:1" json:"project_name"`
	Author         string `gorm:"column:author;size:255;index" json:"author"`
	SourceBranch   string `gorm:"column:source_branch;size:255;index:idx_mr_dedup,priority:2" json:"source_branch"`
	TargetBranch   string `gorm:"column:target_branch;size:255;index:idx_mr_dedup,priority:3" json:"target_branch"`
	LastCommitID   string `gorm:"column:last_commit_id;size:64;default:'';index:idx_mr_dedup,priority:4" json:"last_commit_id"`
	UpdatedAt      int64  `gorm:"column:updated_at;index" json:"updated_at"` // unix 秒
	CommitMessages string `gorm:"column:commit_messages;type:text" json:"commit_messages"`
	Score          int    `gorm:"column:score" json:"score"`
	URL            string `gorm:"column:url;size:1024" json:"url"`
	ReviewResult   string `gorm:"column:review_result;type:text" json:"review_result"`
	Additions      int    `gorm:"column:additions;default:0" json:"additions"`
	Deletions      int    `gorm:"column:deletions;default:0" json:"deletions"`
}

func (MergeRequestReview) TableName() string {
	return "t_mr_review_log"
}

// PushReview 推送审查日志
type PushReview struct {
	ID             uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectName    string `gorm:"column:project_name;size:255;index" json:"project_name"`
	Author         string `gorm:"column:author;size:255;index" json:"author"`
	Branch         string `gorm:"column:branch;size:255" json:"branch"`
	UpdatedAt      int64  `gorm:"column:updated_at;index" json:"updated_at"`
	CommitMessages string `gorm:"column:commit_messages;type:text" json:"commit_messages"`
	Score          int    `gorm:"column:score" json:"score"`
	ReviewResult   string `gorm:"column:review_result;type:text" json:"review_result"`
	Additions      int    `gorm:"column:additions;default:0" json:"additions"`
	Deletions      int    `gorm:"column:deletions;default:0" json:"deletions"`
}

func (PushReview) TableName() string {
	return "t_push_review_log"
}

// DedupKey identifies a merge request at a given head commit.
type DedupKey struct {
	ProjectName  string
	SourceBranch string
	TargetBranch string
	LastCommitID string
}

// ReviewFilter 审查日志查询条件
type ReviewFilter struct {
	Authors      []string
	ProjectNames []string
	UpdatedFrom  int64
	UpdatedTo    int64
	ScoreMin     *int
	ScoreMax     *int
	Page
}

// ReviewRecord is the provider-neutral row fed to report generation.
type ReviewRecord struct {
	ProjectName    string `json:"project_name"`
	Author         string `json:"author"`
	Branch         string `json:"branch"`
	CommitMessages string `json:"commit_messages"`
	Score          int    `json:"score"`
	URL            string `json:"url,omitempty"`
	UpdatedAt      int64  `json:"updated_at"`
	Additions      int    `json:"additions"`
	Deletions      int    `json:"deletions"`
}

// Metadata 审查日志的作者与项目列表
type Metadata struct {
	Authors      []string `json:"authors"`
	ProjectNames []string `json:"project_names"`
}
