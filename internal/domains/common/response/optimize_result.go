package response

import (
	"svetofor/optimizer/internal/domains/common/job"
	"svetofor/optimizer/pkg/errorutil"
)

// 优化任务结果状态常量
const (
	OptimizeStatusSuccess = "SUCCESS"
	OptimizeStatusFailed  = "FAILED"
)

// OptimizeResult 优化任务结果（实现 ResultI 接口）
type OptimizeResult struct {
	ID     string           `json:"id"`
	Status string           `json:"status"`
	Data   interface{}      `json:"data"`
	Error  *errorutil.Error `json:"error,omitempty"`
}

// NewOptimizeResult 创建优化任务结果
func NewOptimizeResult() *OptimizeResult {
	return &OptimizeResult{}
}

// Set 实现 ResultI 接口
func (r *OptimizeResult) Set(meta *job.Meta, err error) {
	r.ID = meta.ID
	if err != nil {
		r.Status = OptimizeStatusFailed
		r.Error = errorutil.Wrap(err)
	} else {
		r.Status = OptimizeStatusSuccess
	}
}

// GetStatus 实现 ResultI 接口
func (r *OptimizeResult) GetStatus() string {
	return r.Status
}
