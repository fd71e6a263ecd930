package dto

// ── 分页请求 ──

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// PaginationRequest 通用 skip/limit 分页参数
// Limit 使用指针以区分“未传”与显式的 0（后者校验失败）
type PaginationRequest struct {
	Skip  int  `form:"skip"  binding:"omitempty,min=0"`
	Limit *int `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// GetSkip 获取偏移量
func (p *PaginationRequest) GetSkip() int {
	if p.Skip < 0 {
		return 0
	}
	return p.Skip
}

// GetLimit 获取每页数量（含默认值）
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit == nil || *p.Limit <= 0:
		return defaultLimit
	case *p.Limit > maxLimit:
		return maxLimit
	default:
		return *p.Limit
	}
}

// MessageResponse 根路径欢迎信息
type MessageResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
	Version string `json:"version"`
}

// HealthResponse 存活检查
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
