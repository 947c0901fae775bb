package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"svetofor/optimizer/internal/optimizer"
	"svetofor/optimizer/internal/thresholds"
)

var (
	thresholdsPath = flag.String("thresholds", "./config/thresholds.yaml", "阈值配置路径")
	testcasePath   = flag.String("testcase", "./internal/domains/handlers/sku/optimize/testcase/optimize.json", "测试用例路径")
	topN           = flag.Int("top", 5, "打印优先级最高的前 N 项")
)

func main() {
	flag.Parse()

	fmt.Println("========================================")
	fmt.Println("  FastTest - SVETOFOR Optimizer 快速测试工具")
	fmt.Println("========================================")

	// 1. 加载阈值配置
	provider, err := thresholds.NewFileProvider(*thresholdsPath)
	if err != nil {
		fmt.Printf("❌ Failed to load thresholds: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Thresholds loaded: %s\n", *thresholdsPath)

	// 2. 加载测试快照
	snaps, err := loadSnapshots(*testcasePath)
	if err != nil {
		fmt.Printf("❌ Failed to load test snapshots: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Loaded %d snapshots from %s\n", len(snaps), *testcasePath)

	// 3. 执行批量优化（不连接数据库和队列，仅跑引擎）
	engine := optimizer.NewEngine(provider, 0)

	startTime := time.Now()
	results := engine.RunBatch(context.Background(), snaps)
	duration := time.Since(startTime)

	// 4. 打印逐 SKU 结果
	fmt.Println("\n========================================")
	fmt.Println("  Results")
	fmt.Println("========================================")

	for _, res := range results {
		fmt.Printf("\n%s\n", res.Recommendation)
		fmt.Printf("  urgency=%s priority=%d revenue/day=%.0f\n",
			res.Urgency, res.Decision.PriorityLevel, res.RevenueAtStake)
		for _, d := range res.Diagnoses {
			fmt.Printf("  - [%s] %s: %s\n", d.Block, d.Code, d.Reason)
		}
		for _, g := range res.Guards {
			if g.Blocked {
				fmt.Printf("  ! blocked by %s: %s\n", g.Guard, g.Reason)
			}
		}
	}

	// 5. 汇总与 Top-N
	stats := optimizer.GetActionStats(results)

	fmt.Println("\n========================================")
	fmt.Println("  Summary")
	fmt.Println("========================================")
	fmt.Println(optimizer.FormatBatchSummary(stats))
	fmt.Printf("⏱️  Duration: %v\n", duration)

	fmt.Printf("\nTop %d by priority:\n", *topN)
	for i, res := range optimizer.TopPriorityItems(results, *topN) {
		fmt.Printf("  %d. %s\n", i+1, res.Recommendation)
	}
}

// loadSnapshots 从 JSON 文件加载 SKU 快照
func loadSnapshots(path string) ([]optimizer.SKUSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testcase file: %w", err)
	}

	var snaps []optimizer.SKUSnapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal testcase: %w", err)
	}

	return snaps, nil
}
