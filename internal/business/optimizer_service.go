package business

import (
	"context"
	"encoding/json"
	"time"

	"svetofor/optimizer/internal/entity"
	"svetofor/optimizer/internal/model"
	"svetofor/optimizer/internal/optimizer"
	"svetofor/optimizer/pkg/errorutil"
	"svetofor/optimizer/pkg/infra/mysql"
	"svetofor/optimizer/pkg/infra/redis"
	"svetofor/optimizer/pkg/lmstfy"
	"svetofor/optimizer/pkg/logger"
)

// OptimizeInput 优化服务输入
type OptimizeInput struct {
	RequestID string
	AccountID int64
	BatchID   string
	Snapshots []optimizer.SKUSnapshot
}

// OptimizerService 定价优化服务
// 职责：执行批量优化 → 落库 → Redis 通知 → 发送回调
// productDAO / pubsub 为 nil 时跳过对应环节（本地快速验证模式）
type OptimizerService struct {
	engine        *optimizer.Engine
	productDAO    *mysql.ProductDAO
	pubsub        *redis.PubSub
	notifyChannel string
	lmstfyClient  *lmstfy.Client
	callbackQueue string
	logger        logger.Logger
}

// NewOptimizerService 创建优化服务实例
func NewOptimizerService(
	engine *optimizer.Engine,
	productDAO *mysql.ProductDAO,
	pubsub *redis.PubSub,
	notifyChannel string,
	lmstfyClient *lmstfy.Client,
	callbackQueue string,
	log logger.Logger,
) *OptimizerService {
	return &OptimizerService{
		engine:        engine,
		productDAO:    productDAO,
		pubsub:        pubsub,
		notifyChannel: notifyChannel,
		lmstfyClient:  lmstfyClient,
		callbackQueue: callbackQueue,
		logger:        log,
	}
}

// ExecuteOptimization 执行批量优化并发送回调
// 返回 error 表示流程级失败（回调发送失败等）；单 SKU 的问题不会让流程失败
func (s *OptimizerService) ExecuteOptimization(ctx context.Context, input *OptimizeInput) error {
	// 1. 批量执行优化（引擎保证每个输入 SKU 必有一个结果）
	results := s.engine.RunBatch(ctx, input.Snapshots)
	stats := optimizer.GetActionStats(results)

	s.logger.Infof(ctx, "[OptimizerService] Batch %s done: %s",
		input.BatchID, optimizer.FormatBatchSummary(stats))

	// 2. 逐 SKU 落库（单条失败只记日志，不中断批次）
	if s.productDAO != nil {
		for i := range results {
			res := &results[i]
			if err := s.productDAO.UpdateOptimizeResult(ctx, res.SKU, res, entity.ProductStatusOptimized, ""); err != nil {
				s.logger.Warnf(ctx, "[OptimizerService] Persist result failed for %s: %v", res.SKU, err)
			}
		}
	}

	// 3. 发布 Redis 通知
	if s.pubsub != nil {
		notification := &redis.OptimizeNotification{
			AccountID: input.AccountID,
			BatchID:   input.BatchID,
			Status:    entity.ProductStatusOptimized,
			Processed: stats.Total,
			Timestamp: time.Now().Unix(),
		}
		if err := s.pubsub.PublishOptimizeComplete(ctx, s.notifyChannel, notification); err != nil {
			s.logger.Warnf(ctx, "[OptimizerService] Publish notification failed: %v", err)
		}
	}

	// 4. 构造并发送回调消息
	callback := model.OptimizeCallback{
		RequestID:   input.RequestID,
		AccountID:   input.AccountID,
		BatchID:     input.BatchID,
		Status:      model.CallbackStatusSuccess,
		Stats:       stats,
		Summary:     optimizer.FormatBatchSummary(stats),
		ProcessedAt: time.Now().Unix(),
	}

	callbackJSON, err := json.Marshal(callback)
	if err != nil {
		return errorutil.NonRetriableWithDetails("failed to marshal callback", err.Error())
	}

	// ttl=0 表示永不过期, delay=0 表示立即可用
	// 队列抖动属于临时故障：标记可重试，消息不 ACK 等待 TTR 重投
	if err := s.lmstfyClient.Publish(s.callbackQueue, callbackJSON, 0, 0); err != nil {
		return errorutil.RetriableWithDetails("failed to publish callback", err.Error())
	}

	return nil
}
