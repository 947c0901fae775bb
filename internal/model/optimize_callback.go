package model

import "svetofor/optimizer/internal/optimizer"

// OptimizeCallback 优化完成回调消息（标准化）
// 用于 worker → 主服务 callback consumer 的消息传递
type OptimizeCallback struct {
	RequestID   string                `json:"request_id"`        // 对应请求的 request_id（链路追踪）
	AccountID   int64                 `json:"account_id"`        // 账户 ID
	BatchID     string                `json:"batch_id"`          // 优化批次 ID
	Status      string                `json:"status"`            // 回调状态: SUCCESS / FAILED
	Stats       optimizer.ActionStats `json:"stats"`             // 批次动作统计
	Summary     string                `json:"summary"`           // 人类可读批次汇总
	Error       string                `json:"error,omitempty"`   // 错误信息（失败时返回）
	ProcessedAt int64                 `json:"processed_at"`      // 处理时间戳（Unix timestamp）
}

// 回调状态常量
const (
	CallbackStatusSuccess = "SUCCESS" // 优化成功
	CallbackStatusFailed  = "FAILED"  // 优化失败
)
