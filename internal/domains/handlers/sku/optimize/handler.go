package optimize

import (
	"context"
	"encoding/json"
	"fmt"

	"svetofor/optimizer/internal/business"
	"svetofor/optimizer/internal/domains/common"
	"svetofor/optimizer/internal/domains/common/job"
	"svetofor/optimizer/internal/domains/common/response"
	"svetofor/optimizer/internal/framework"
	"svetofor/optimizer/internal/model"
)

// OptimizeHandler SKU 定价优化 Handler
type OptimizeHandler struct {
	meta    *job.Meta
	jobData *model.OptimizeJobData
	service *business.OptimizerService
}

// NewOptimizeHandler 创建优化 Handler
// 解析标准化 Job 消息并校验必填字段
func NewOptimizeHandler(ctx context.Context, meta *job.Meta, payload interface{}) (common.HandlerServ, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload failed: %w", err)
	}

	var bizData model.OptimizeBusinessData
	if err := json.Unmarshal(payloadBytes, &bizData); err != nil {
		return nil, fmt.Errorf("unmarshal business data failed: %w", err)
	}

	if bizData.AccountID == 0 {
		return nil, fmt.Errorf("account_id is required")
	}
	if bizData.BatchID == "" {
		return nil, fmt.Errorf("batch_id is required")
	}
	if len(bizData.Snapshots) == 0 {
		return nil, fmt.Errorf("snapshots must not be empty")
	}

	jobData := &model.OptimizeJobData{
		RequestID:  meta.RequestID,
		OrgID:      meta.OrgID,
		ActionType: meta.ActionType,
		ID:         meta.ID,
		Data:       bizData,
	}

	// 依赖从 Context 注入（GetProcess 在 domains 层注入 OptimizerService）
	service, _ := ctx.Value("optimizer_service").(*business.OptimizerService)
	if service == nil {
		return nil, fmt.Errorf("OptimizerService not found in context")
	}

	return &OptimizeHandler{
		meta:    meta,
		jobData: jobData,
		service: service,
	}, nil
}

// GetProcess 处理优化请求
func (h *OptimizeHandler) GetProcess(ctx context.Context) *response.Response {
	result := response.NewOptimizeResult()

	// PreProcess → Process 函数链，任一步失败即终止
	chain := framework.NewPreProcessor([]framework.ProcessorFunc{
		h.preProcess,
		h.process,
	})
	err := chain.Run(ctx)

	resp := &response.Response{}
	resp.WrapResponse(result, h.meta, err)

	return resp
}

// preProcess 快照级预校验（只拦截整批不可用的情况，单条脏数据交给引擎降级）
func (h *OptimizeHandler) preProcess(ctx context.Context) error {
	for i := range h.jobData.Data.Snapshots {
		if h.jobData.Data.Snapshots[i].SKU == "" {
			return fmt.Errorf("snapshot[%d]: sku is required", i)
		}
	}
	return nil
}

// process 调用优化服务执行批量优化并发送回调
func (h *OptimizeHandler) process(ctx context.Context) error {
	input := &business.OptimizeInput{
		RequestID: h.jobData.RequestID,
		AccountID: h.jobData.Data.AccountID,
		BatchID:   h.jobData.Data.BatchID,
		Snapshots: h.jobData.Data.Snapshots,
	}

	return h.service.ExecuteOptimization(ctx, input)
}
