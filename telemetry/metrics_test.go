package telemetry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/Janmenjay30/CodeCircle/models"
)

type fakeWriter struct {
	requests []*monitoringpb.CreateTimeSeriesRequest
	err      error
	closed   bool
}

func (w *fakeWriter) CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error {
	w.requests = append(w.requests, req)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func (w *fakeWriter) metricTypes() []string {
	types := make([]string, 0, len(w.requests))
	for _, req := range w.requests {
		types = append(types, req.TimeSeries[0].Metric.Type)
	}
	return types
}

func TestDisabledWithoutProject(t *testing.T) {
	client := NewMetricsClient(context.Background(), "", "")
	if client.Enabled() {
		t.Fatal("프로젝트 ID가 없으면 비활성화되어야 합니다")
	}

	// 비활성 상태의 호출은 아무것도 하지 않습니다
	client.HandleSyncReport(context.Background(), &models.SyncReport{})
	client.RecordRegistration(context.Background(), "registered")
	if err := client.Close(); err != nil {
		t.Errorf("Close 실패: %v", err)
	}
}

func TestHandleSyncReport(t *testing.T) {
	writer := &fakeWriter{}
	client := newMetricsClient(writer, "test-project")

	start := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	report := models.NewSyncReport("scheduled", start)
	report.FinishedAt = start.Add(3 * time.Second)
	report.Outcomes = []models.SyncOutcome{
		{Handle: "a", Err: stderrors.New("boom")},
		{Handle: "b"},
		{Handle: "c"},
	}

	client.HandleSyncReport(context.Background(), report)

	want := []string{
		"custom.googleapis.com/codecircle/sync/succeeded",
		"custom.googleapis.com/codecircle/sync/failed",
		"custom.googleapis.com/codecircle/sync/duration_seconds",
		"custom.googleapis.com/codecircle/sync/aborted",
	}
	got := writer.metricTypes()
	if len(got) != len(want) {
		t.Fatalf("메트릭 %d개 예상, 실제 %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("메트릭 %d: %s 예상, 실제 %s", i, want[i], got[i])
		}
	}

	succeeded := writer.requests[0].TimeSeries[0]
	if v := succeeded.Points[0].Value.GetDoubleValue(); v != 2 {
		t.Errorf("성공 수 2 예상, 실제 %v", v)
	}
	if succeeded.Metric.Labels["trigger"] != "scheduled" {
		t.Errorf("trigger 라벨이 필요합니다: %v", succeeded.Metric.Labels)
	}
	if writer.requests[0].Name != "projects/test-project" {
		t.Errorf("프로젝트 이름이 올바르지 않습니다: %s", writer.requests[0].Name)
	}
	if d := writer.requests[2].TimeSeries[0].Points[0].Value.GetDoubleValue(); d != 3 {
		t.Errorf("실행 시간 3초 예상, 실제 %v", d)
	}
}

func TestRecordRegistration(t *testing.T) {
	writer := &fakeWriter{err: stderrors.New("quota exceeded")}
	client := newMetricsClient(writer, "test-project")

	// 전송 실패는 로그만 남기고 삼킵니다
	client.RecordRegistration(context.Background(), "duplicate")

	if len(writer.requests) != 1 {
		t.Fatalf("요청 1개 예상, 실제 %d", len(writer.requests))
	}
	if outcome := writer.requests[0].TimeSeries[0].Metric.Labels["outcome"]; outcome != "duplicate" {
		t.Errorf("outcome 라벨 duplicate 예상, 실제 %s", outcome)
	}

	client.Close()
	if !writer.closed {
		t.Error("Close가 클라이언트를 닫아야 합니다")
	}
}
