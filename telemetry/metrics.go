package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
	"google.golang.org/api/option"
	"google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// timeSeriesWriter Cloud Monitoring 쓰기 클라이언트
type timeSeriesWriter interface {
	CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error
	Close() error
}

type metricClientAdapter struct {
	client *monitoring.MetricClient
}

func (a metricClientAdapter) CreateTimeSeries(ctx context.Context, req *monitoringpb.CreateTimeSeriesRequest) error {
	return a.client.CreateTimeSeries(ctx, req)
}

func (a metricClientAdapter) Close() error {
	return a.client.Close()
}

// MetricsClient Google Cloud Monitoring 클라이언트를 래핑합니다
type MetricsClient struct {
	mu        sync.Mutex
	client    timeSeriesWriter
	projectID string
	enabled   bool
	now       func() time.Time
}

// NewMetricsClient 새로운 MetricsClient 인스턴스를 생성합니다.
// 프로젝트 ID가 없거나 클라이언트를 만들 수 없으면 조용히 비활성화됩니다.
func NewMetricsClient(ctx context.Context, projectID, credentialsJSON string) *MetricsClient {
	if projectID == "" {
		utils.Warn("Project ID not provided, telemetry disabled")
		return &MetricsClient{enabled: false}
	}

	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	client, err := monitoring.NewMetricClient(ctx, opts...)
	if err != nil {
		utils.Warn("Failed to create monitoring client: %v", err)
		utils.Warn("Telemetry disabled")
		return &MetricsClient{enabled: false}
	}

	utils.Info("Google Cloud Monitoring telemetry enabled for project: %s", projectID)
	return newMetricsClient(metricClientAdapter{client: client}, projectID)
}

func newMetricsClient(writer timeSeriesWriter, projectID string) *MetricsClient {
	return &MetricsClient{
		client:    writer,
		projectID: projectID,
		enabled:   true,
		now:       time.Now,
	}
}

// Enabled 텔레메트리 활성화 여부
func (m *MetricsClient) Enabled() bool {
	return m != nil && m.enabled
}

// HandleSyncReport 동기화 실행 결과를 메트릭으로 전송합니다
func (m *MetricsClient) HandleSyncReport(ctx context.Context, report *models.SyncReport) {
	if !m.Enabled() || report == nil {
		return
	}

	now := m.timestamp()
	labels := map[string]string{"trigger": report.Trigger}

	aborted := 0.0
	if report.Aborted != nil {
		aborted = 1.0
	}

	values := []struct {
		metricType string
		value      float64
	}{
		{"sync/succeeded", float64(report.Succeeded())},
		{"sync/failed", float64(report.Failed())},
		{"sync/duration_seconds", report.Duration().Seconds()},
		{"sync/aborted", aborted},
	}

	for _, v := range values {
		if err := m.sendLabeledMetric(ctx, v.metricType, v.value, now, labels); err != nil {
			utils.Warn("Failed to send %s metric: %v", v.metricType, err)
		}
	}

	utils.Debug("Sync metrics sent for run %s", report.RunID)
}

// RecordRegistration 등록 시도 결과를 전송합니다
func (m *MetricsClient) RecordRegistration(ctx context.Context, outcome string) {
	if !m.Enabled() {
		return
	}

	if err := m.sendLabeledMetric(ctx, "registrations", 1.0, m.timestamp(), map[string]string{
		"outcome": outcome,
	}); err != nil {
		utils.Warn("Failed to send registration metric: %v", err)
		return
	}

	utils.Debug("Registration metric sent: %s", outcome)
}

// SendCacheMetrics 캐시 메트릭을 Google Cloud Monitoring으로 전송합니다
func (m *MetricsClient) SendCacheMetrics(ctx context.Context, totalCalls, cacheHits, cacheMisses int64, hitRate float64) {
	if !m.Enabled() {
		return
	}

	now := m.timestamp()

	// 캐시 히트율 메트릭
	if err := m.sendCustomMetric(ctx, "cache/hit_rate", hitRate, now); err != nil {
		utils.Warn("Failed to send cache hit rate metric: %v", err)
	}

	// 총 API 호출 수 메트릭
	if err := m.sendCustomMetric(ctx, "cache/total_calls", float64(totalCalls), now); err != nil {
		utils.Warn("Failed to send total calls metric: %v", err)
	}

	if err := m.sendCustomMetric(ctx, "cache/hits", float64(cacheHits), now); err != nil {
		utils.Warn("Failed to send cache hits metric: %v", err)
	}

	if err := m.sendCustomMetric(ctx, "cache/misses", float64(cacheMisses), now); err != nil {
		utils.Warn("Failed to send cache misses metric: %v", err)
	}

	utils.Debug("Cache metrics sent to Google Cloud Monitoring")
}

// SendCommandMetric 봇 명령어 사용 메트릭을 전송합니다
func (m *MetricsClient) SendCommandMetric(ctx context.Context, command string) {
	if !m.Enabled() {
		return
	}

	if err := m.sendLabeledMetric(ctx, "commands/usage", 1.0, m.timestamp(), map[string]string{
		"command": command,
	}); err != nil {
		utils.Warn("Failed to send command metric: %v", err)
	}
}

func (m *MetricsClient) timestamp() *timestamppb.Timestamp {
	return timestamppb.New(m.now())
}

// sendCustomMetric 단순한 커스텀 메트릭을 전송합니다
func (m *MetricsClient) sendCustomMetric(ctx context.Context, metricType string, value float64, timestamp *timestamppb.Timestamp) error {
	return m.sendLabeledMetric(ctx, metricType, value, timestamp, nil)
}

// sendLabeledMetric 라벨이 포함된 커스텀 메트릭을 전송합니다
func (m *MetricsClient) sendLabeledMetric(ctx context.Context, metricType string, value float64, timestamp *timestamppb.Timestamp, labels map[string]string) error {
	if labels == nil {
		labels = make(map[string]string)
	}

	req := &monitoringpb.CreateTimeSeriesRequest{
		Name: fmt.Sprintf("projects/%s", m.projectID),
		TimeSeries: []*monitoringpb.TimeSeries{
			{
				Metric: &metric.Metric{
					Type:   fmt.Sprintf("custom.googleapis.com/%s/%s", constants.TelemetryNamespace, metricType),
					Labels: labels,
				},
				Resource: &monitoredres.MonitoredResource{
					Type: "generic_task",
					Labels: map[string]string{
						"project_id": m.projectID,
						"location":   "global",
						"namespace":  constants.TelemetryNamespace,
						"job":        constants.TelemetryJobName,
						"task_id":    constants.TelemetryTaskID,
					},
				},
				Points: []*monitoringpb.Point{
					{
						Interval: &monitoringpb.TimeInterval{
							EndTime: timestamp,
						},
						Value: &monitoringpb.TypedValue{
							Value: &monitoringpb.TypedValue_DoubleValue{
								DoubleValue: value,
							},
						},
					},
				},
			},
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client.CreateTimeSeries(ctx, req)
}

// Close 클라이언트를 정리합니다
func (m *MetricsClient) Close() error {
	if !m.Enabled() || m.client == nil {
		return nil
	}
	return m.client.Close()
}
