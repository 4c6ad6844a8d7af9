package model

// TeamReport 单个团队的日报结果
type TeamReport struct {
	TeamID      uint64 `json:"team_id"`
	TeamName    string `json:"team_name"`
	MemberCount int    `json:"member_count"`
	Sent        bool   `json:"sent"`
	Report      string `json:"report,omitempty"`
	Error       string `json:"error,omitempty"`
}

// DailyReportResult 日报汇总
type DailyReportResult struct {
	TotalRecords    int          `json:"total_records"`
	TeamReports     []TeamReport `json:"team_reports"`
	UnassignedCount int          `json:"unassigned_count"`
	FallbackSent    bool         `json:"fallback_sent"`
	FallbackReport  string       `json:"fallback_report,omitempty"`
}
