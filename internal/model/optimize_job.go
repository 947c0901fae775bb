package model

import "svetofor/optimizer/internal/optimizer"

// OptimizeBusinessData 优化任务的业务数据（job payload.data.data 部分）
// 上游 feed 已组装好批次内所有 SKU 快照，Worker 不再回查数据库
type OptimizeBusinessData struct {
	AccountID int64                   `json:"account_id"`
	BatchID   string                  `json:"batch_id"`
	Snapshots []optimizer.SKUSnapshot `json:"snapshots"`
}

// OptimizeJobData 完整任务数据（元信息 + 业务数据）
type OptimizeJobData struct {
	RequestID  string               `json:"request_id"`
	OrgID      string               `json:"org_id"`
	ActionType string               `json:"action_type"`
	ID         string               `json:"id"`
	Data       OptimizeBusinessData `json:"data"`
}
