package optimizer

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"svetofor/optimizer/internal/thresholds"
)

// Engine 批量优化引擎
// 单 SKU 处理是 (快照, 阈值) 的纯函数，SKU 之间无共享可变状态
type Engine struct {
	provider thresholds.Provider
	workers  int
}

// NewEngine 创建引擎
// workers <= 0 时按 CPU 数并发
func NewEngine(provider thresholds.Provider, workers int) *Engine {
	return &Engine{
		provider: provider,
		workers:  workers,
	}
}

// RunBatch 批量执行优化
// 每个输入 SKU 必定对应一个结果，结果顺序与输入一致
// 整个批次持有同一份配置快照，期间的 Reload 不影响本批次
func (e *Engine) RunBatch(ctx context.Context, snaps []SKUSnapshot) []Result {
	results := make([]Result, len(snaps))
	if len(snaps) == 0 {
		return results
	}

	cfg := e.provider.Snapshot()
	gold := cfg.GoldSKUs()

	workers := e.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(snaps) {
		workers = len(snaps)
	}

	jobs := make(chan int)
	done := make([]bool, len(snaps))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				snap := &snaps[i]
				results[i] = processOne(snap, cfg.Get(snap.Category), gold)
				done[i] = true
			}
		}()
	}

	// 投递下标；ctx 取消后停止投递，未处理的 SKU 补兜底结果
feed:
	for i := range snaps {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := range results {
		if !done[i] {
			results[i] = cancelledResult(&snaps[i])
		}
	}

	return results
}

// processOne 处理单个 SKU
// panic 兜底：单条脏记录不允许拖垮整个批次
func processOne(snap *SKUSnapshot, th thresholds.CategoryThresholds, gold map[string]struct{}) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = fallbackResult(snap, fmt.Sprintf("internal error: %v", r))
		}
	}()

	mode := ClassifyMode(snap, th)
	diags := Diagnose(snap, th)
	decision, guards := Decide(snap, mode, diags, th, gold)

	res = Result{
		SKU:            snap.SKU,
		Name:           snap.Name,
		Category:       snap.Category,
		Mode:           mode,
		Diagnoses:      diags,
		Guards:         guards,
		Decision:       decision,
		RevenueAtStake: snap.RevenuePerDay(),
	}
	res.Recommendation = FormatRecommendation(&res)
	res.Summary = FormatSummary(&res)
	res.Urgency = urgencyTag(decision.PriorityLevel)

	return res
}

// fallbackResult 兜底结果：hold、零置信度、理由链注明内部错误
func fallbackResult(snap *SKUSnapshot, reason string) Result {
	res := Result{
		SKU:      snap.SKU,
		Name:     snap.Name,
		Category: snap.Category,
		Mode:     ModeAssignment{Mode: ModeCow, Reason: reason},
		Decision: Decision{
			Action:        ActionHold,
			DeltaPct:      0,
			Confidence:    0,
			PriorityLevel: 1,
			ReasonChain: []ReasonEntry{
				{Kind: ReasonKindMode, Code: string(ModeCow), Message: reason},
				{Kind: ReasonKindSummary, Code: string(ActionHold), Message: "hold price, processing failed"},
			},
		},
		RevenueAtStake: snap.RevenuePerDay(),
		Urgency:        UrgencyLow,
	}
	res.Recommendation = FormatRecommendation(&res)
	res.Summary = FormatSummary(&res)
	return res
}

// cancelledResult 批次被取消时未处理 SKU 的兜底结果
func cancelledResult(snap *SKUSnapshot) Result {
	return fallbackResult(snap, "batch cancelled before processing")
}
