package constants

import "time"

// 시스템 관련 상수
const (
	AppVersion = "0.3.0"
	APIVersion = "1.0.0"

	DefaultHTTPPort = "5000"

	BytesToMB = 1024 * 1024

	StoreHealthCheckTimeout = 5 * time.Second
	HealthStatusHealthy     = "healthy"
	HealthStatusDegraded    = "degraded"

	ServerReadHeaderTimeout = 10 * time.Second
	ServerShutdownTimeout   = 15 * time.Second
	RosterImportTimeout     = 2 * time.Minute
	ReportSinkTimeout       = 30 * time.Second

	TestAPITimeout = 2 * time.Second
)
