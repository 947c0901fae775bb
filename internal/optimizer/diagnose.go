package optimizer

import (
	"fmt"
	"strings"

	"svetofor/optimizer/internal/thresholds"
)

// 诊断码常量（稳定标识，消费方按码路由）
const (
	CodeOutOfStockNow      = "out_of_stock_now"
	CodeStockDepletesSoon  = "stock_depletes_soon"
	CodeOverstock          = "overstock"
	CodeLowCartConversion  = "low_cart_conversion"
	CodeLowOrderConversion = "low_order_conversion"
	CodeHighAdCostShare    = "high_ad_cost_share"
	CodeLowBuyoutRate      = "low_buyout_rate"
	CodeSalesTrendFalling  = "sales_trend_falling"
	CodeAboveMarket        = "above_market_performance"
	CodeDataQuality        = "data_quality"
)

// 诊断分组常量
const (
	BlockStock  = "stock"
	BlockFunnel = "funnel"
	BlockAds    = "ads"
	BlockSales  = "sales"
	BlockData   = "data"
)

// checkFunc 单项诊断检查（条件不满足时返回 nil）
type checkFunc func(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis

// checks 全部独立检查，无相互依赖，可同时命中多项
var checks = []checkFunc{
	checkOutOfStock,
	checkStockDepletes,
	checkOverstock,
	checkLowCartConversion,
	checkLowOrderConversion,
	checkHighAdCostShare,
	checkLowBuyoutRate,
	checkSalesFalling,
	checkAboveMarket,
}

// Diagnose 执行全部诊断检查
// 数据质量问题降级为 data_quality 诊断项，不中断批次
func Diagnose(snap *SKUSnapshot, th thresholds.CategoryThresholds) []Diagnosis {
	diags := make([]Diagnosis, 0, 4)

	if dq := checkDataQuality(snap); dq != nil {
		diags = append(diags, *dq)
	}

	for _, check := range checks {
		if d := check(snap, th); d != nil {
			diags = append(diags, *d)
		}
	}

	return diags
}

// checkDataQuality 输入字段合法性检查（脏数据只降级，不报错）
func checkDataQuality(snap *SKUSnapshot) *Diagnosis {
	issues := make([]string, 0, 2)

	if snap.Price <= 0 {
		issues = append(issues, "price is missing or non-positive")
	}
	if snap.CostPrice < 0 {
		issues = append(issues, "cost_price is negative")
	}
	if snap.StockOnHand < 0 || snap.StockInTransit < 0 {
		issues = append(issues, "stock fields are negative")
	}
	if snap.OrdersPerDay < 0 {
		issues = append(issues, "orders_per_day is negative")
	}
	if snap.BuyoutPct < 0 || snap.BuyoutPct > 100 {
		issues = append(issues, fmt.Sprintf("buyout_pct %.1f outside [0, 100]", snap.BuyoutPct))
	}
	if snap.AdSharePct < 0 {
		issues = append(issues, "ad_share_pct is negative")
	}
	if snap.CartAdds > snap.Views {
		issues = append(issues, "cart_adds exceeds views")
	}
	if snap.Orders > snap.CartAdds {
		issues = append(issues, "orders exceed cart_adds")
	}

	if len(issues) == 0 {
		return nil
	}

	return &Diagnosis{
		Block:      BlockData,
		Code:       CodeDataQuality,
		ActionHint: "verify upstream feed",
		Reason:     strings.Join(issues, "; "),
	}
}

func checkOutOfStock(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.EffectiveStock() > 0 || snap.OrdersPerDay <= 0 {
		return nil
	}
	return &Diagnosis{
		Block:      BlockStock,
		Code:       CodeOutOfStockNow,
		ActionHint: "restock immediately",
		Reason:     fmt.Sprintf("zero effective stock while selling %.1f orders/day", snap.OrdersPerDay),
	}
}

func checkStockDepletes(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.EffectiveStock() <= 0 || snap.OrdersPerDay <= 0 {
		return nil
	}
	cover := snap.StockCoverDays()
	if cover >= th.StockDaysWarning {
		return nil
	}
	return &Diagnosis{
		Block:      BlockStock,
		Code:       CodeStockDepletesSoon,
		ActionHint: "plan restock",
		Reason:     fmt.Sprintf("stock covers only %.1f days, warning threshold %.0f days", cover, th.StockDaysWarning),
	}
}

func checkOverstock(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	cover := snap.StockCoverDays()
	if cover <= th.StockDaysOverstock {
		return nil
	}
	return &Diagnosis{
		Block:      BlockStock,
		Code:       CodeOverstock,
		ActionHint: "consider markdown",
		Reason:     fmt.Sprintf("stock cover exceeds overstock threshold %.0f days", th.StockDaysOverstock),
	}
}

func checkLowCartConversion(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	// 流量不足时不判定，避免小样本误报
	if snap.Views < th.MinSampleViews {
		return nil
	}
	conv := snap.CartConvPct()
	if conv >= th.CartConvLow {
		return nil
	}
	return &Diagnosis{
		Block:      BlockFunnel,
		Code:       CodeLowCartConversion,
		ActionHint: "review listing and price positioning",
		Reason:     fmt.Sprintf("cart conversion %.1f%% below %.1f%% on %d views", conv, th.CartConvLow, snap.Views),
	}
}

func checkLowOrderConversion(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.CartAdds < th.MinSampleOrders {
		return nil
	}
	conv := snap.OrderConvPct()
	if conv >= th.OrderConvLow {
		return nil
	}
	return &Diagnosis{
		Block:      BlockFunnel,
		Code:       CodeLowOrderConversion,
		ActionHint: "check checkout friction and price",
		Reason:     fmt.Sprintf("order conversion %.1f%% below %.1f%% on %d cart adds", conv, th.OrderConvLow, snap.CartAdds),
	}
}

func checkHighAdCostShare(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.Orders < th.MinSampleOrders {
		return nil
	}
	if snap.AdSharePct <= th.AdShareHigh {
		return nil
	}

	reason := fmt.Sprintf("ad cost share %.1f%% above high threshold %.1f%%", snap.AdSharePct, th.AdShareHigh)
	if snap.AdSharePct > th.AdShareCritical {
		reason = fmt.Sprintf("ad cost share %.1f%% above critical threshold %.1f%%", snap.AdSharePct, th.AdShareCritical)
	}

	return &Diagnosis{
		Block:      BlockAds,
		Code:       CodeHighAdCostShare,
		ActionHint: "cut advertising spend or raise price",
		Reason:     reason,
	}
}

func checkLowBuyoutRate(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.Orders < th.MinSampleOrders {
		return nil
	}
	if snap.BuyoutPct >= th.BuyoutLow {
		return nil
	}
	return &Diagnosis{
		Block:      BlockSales,
		Code:       CodeLowBuyoutRate,
		ActionHint: "inspect product quality and sizing info",
		Reason:     fmt.Sprintf("buyout rate %.1f%% below %.1f%% on %d orders", snap.BuyoutPct, th.BuyoutLow, snap.Orders),
	}
}

func checkSalesFalling(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.Orders < th.MinSampleOrders {
		return nil
	}
	if snap.SalesTrendPct >= -th.SalesDropPct {
		return nil
	}
	return &Diagnosis{
		Block:      BlockSales,
		Code:       CodeSalesTrendFalling,
		ActionHint: "investigate demand drop",
		Reason:     fmt.Sprintf("sales fell %.1f%% vs prior period, drop threshold %.0f%%", -snap.SalesTrendPct, th.SalesDropPct),
	}
}

func checkAboveMarket(snap *SKUSnapshot, th thresholds.CategoryThresholds) *Diagnosis {
	if snap.Views < th.MinSampleViews {
		return nil
	}
	conv := snap.CartConvPct()
	if conv <= th.CartConvHigh {
		return nil
	}
	return &Diagnosis{
		Block:      BlockFunnel,
		Code:       CodeAboveMarket,
		ActionHint: "room to raise price",
		Reason:     fmt.Sprintf("cart conversion %.1f%% above market high %.1f%% with %d views", conv, th.CartConvHigh, snap.Views),
	}
}
