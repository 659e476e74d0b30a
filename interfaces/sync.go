package interfaces

import (
	"context"

	"github.com/Janmenjay30/CodeCircle/models"
)

// SyncRunner 동기화 실행기 인터페이스입니다
type SyncRunner interface {
	RunSync(ctx context.Context, trigger string) (*models.SyncReport, error)
	IsBusy() bool
	LastReport() *models.SyncReport
}

// ReportSink 동기화가 끝날 때마다 보고서를 받는 대상입니다
type ReportSink interface {
	HandleSyncReport(ctx context.Context, report *models.SyncReport)
}

// ReportSinkFunc 함수를 ReportSink로 사용합니다
type ReportSinkFunc func(ctx context.Context, report *models.SyncReport)

func (f ReportSinkFunc) HandleSyncReport(ctx context.Context, report *models.SyncReport) {
	f(ctx, report)
}
