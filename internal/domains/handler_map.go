package domains

import (
	"svetofor/optimizer/internal/domains/common"
	"svetofor/optimizer/internal/domains/handlers/sku/optimize"
)

// HandlerMap 路由表（ActionType → Handler 映射）
var HandlerMap = map[string]common.HandlerServProc{
	"sku_optimize": optimize.NewOptimizeHandler,
}
