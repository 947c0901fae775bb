package domains

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"svetofor/optimizer/internal/domains/common/job"
	"svetofor/optimizer/internal/domains/common/response"
	"svetofor/optimizer/pkg/errorutil"
	"svetofor/optimizer/pkg/lmstfyx"
)

// nopLogger 测试用空日志
type nopLogger struct{}

func (nopLogger) Debugf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Infof(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Warnf(ctx context.Context, format string, args ...interface{})  {}
func (nopLogger) Errorf(ctx context.Context, format string, args ...interface{}) {}
func (nopLogger) Sync() error                                                    { return nil }

// wrapResponse 按 Handler 的方式组装 Response
func wrapResponse(err error) *response.Response {
	resp := &response.Response{}
	resp.WrapResponse(response.NewOptimizeResult(), &job.Meta{ID: "job-1"}, err)
	return resp
}

func TestDoJobReportSuccessAcks(t *testing.T) {
	resp := doJobReport(context.Background(), wrapResponse(nil), nopLogger{})
	assert.Equal(t, lmstfyx.JobRespStatusSuccess, resp.Action)
}

func TestDoJobReportRetryableReleases(t *testing.T) {
	// 临时基础设施故障：不 ACK，等待 TTR 到期重投
	err := errorutil.Retriable("failed to publish callback")

	resp := doJobReport(context.Background(), wrapResponse(err), nopLogger{})
	assert.Equal(t, lmstfyx.JobRespStatusRelease, resp.Action)
}

func TestDoJobReportNonRetryableBuries(t *testing.T) {
	err := errorutil.NonRetriable("snapshots must not be empty")

	resp := doJobReport(context.Background(), wrapResponse(err), nopLogger{})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestDoJobReportUnclassifiedErrorBuries(t *testing.T) {
	// 未分类错误默认不可重试，避免未知故障无限循环
	resp := doJobReport(context.Background(), wrapResponse(fmt.Errorf("something broke")), nopLogger{})
	assert.Equal(t, lmstfyx.JobRespStatusBury, resp.Action)
}

func TestDoJobReportRetryableSurvivesWrapping(t *testing.T) {
	// 函数链会再包一层 %w，可重试标记必须穿透包装
	inner := errorutil.RetriableWithDetails("failed to publish callback", "connection refused")
	wrapped := fmt.Errorf("processor[1] failed: %w", inner)

	resp := doJobReport(context.Background(), wrapResponse(wrapped), nopLogger{})
	assert.Equal(t, lmstfyx.JobRespStatusRelease, resp.Action)
}
