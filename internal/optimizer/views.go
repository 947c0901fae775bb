package optimizer

import "sort"

// GroupByMode 按运营模式分组（各组内保持批次顺序）
func GroupByMode(results []Result) map[Mode][]Result {
	groups := make(map[Mode][]Result, 4)
	for _, res := range results {
		groups[res.Mode.Mode] = append(groups[res.Mode.Mode], res)
	}
	return groups
}

// ActionStats 批次动作统计
type ActionStats struct {
	Total    int          `json:"total"`
	Increase int          `json:"increase"`
	Decrease int          `json:"decrease"`
	Hold     int          `json:"hold"`
	Blocked  int          `json:"blocked"`
	ByMode   map[Mode]int `json:"by_mode"`
}

// GetActionStats 统计各动作与各模式的数量
func GetActionStats(results []Result) ActionStats {
	stats := ActionStats{
		Total:  len(results),
		ByMode: make(map[Mode]int, 4),
	}

	for _, res := range results {
		switch res.Decision.Action {
		case ActionIncrease:
			stats.Increase++
		case ActionDecrease:
			stats.Decrease++
		default:
			stats.Hold++
		}

		if len(res.Decision.BlockedBy) > 0 {
			stats.Blocked++
		}

		stats.ByMode[res.Mode.Mode]++
	}

	return stats
}

// TopPriorityItems 取优先级最高的前 n 项
// 稳定排序：优先级降序 → 日均销售额降序 → SKU 升序，保证结果确定
func TopPriorityItems(results []Result, n int) []Result {
	if n <= 0 {
		return []Result{}
	}

	sorted := make([]Result, len(results))
	copy(sorted, results)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Decision.PriorityLevel != b.Decision.PriorityLevel {
			return a.Decision.PriorityLevel > b.Decision.PriorityLevel
		}
		if a.RevenueAtStake != b.RevenueAtStake {
			return a.RevenueAtStake > b.RevenueAtStake
		}
		return a.SKU < b.SKU
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
