package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/utils"
)

// HealthStatus 헬스체크 응답 구조체
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	GoVersion string            `json:"go_version"`
	Memory    string            `json:"memory_usage"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// CheckFunc 의존성 하나의 상태를 확인합니다
type CheckFunc func(ctx context.Context) error

// Checker 등록된 의존성 검사를 모아 헬스 상태를 만듭니다
type Checker struct {
	mu        sync.RWMutex
	checks    map[string]CheckFunc
	startTime time.Time
	timeout   time.Duration
}

// NewChecker 새로운 Checker를 생성합니다
func NewChecker() *Checker {
	return &Checker{
		checks:    make(map[string]CheckFunc),
		startTime: time.Now(),
		timeout:   constants.StoreHealthCheckTimeout,
	}
}

// AddCheck 이름으로 검사를 등록합니다
func (c *Checker) AddCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Status 모든 검사를 실행해 현재 상태를 반환합니다
func (c *Checker) Status(ctx context.Context) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := HealthStatus{
		Status:    constants.HealthStatusHealthy,
		Timestamp: time.Now(),
		Uptime:    time.Since(c.startTime).Round(time.Second).String(),
		Version:   constants.AppVersion,
		GoVersion: runtime.Version(),
		Memory:    fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/constants.BytesToMB),
	}

	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	c.mu.RUnlock()
	sort.Strings(names)

	if len(names) == 0 {
		return status
	}

	status.Checks = make(map[string]string, len(names))
	for _, name := range names {
		c.mu.RLock()
		check := c.checks[name]
		c.mu.RUnlock()

		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := check(checkCtx)
		cancel()

		if err != nil {
			status.Status = constants.HealthStatusDegraded
			status.Checks[name] = err.Error()
			utils.Warn("Health check %s failed: %v", name, err)
			continue
		}
		status.Checks[name] = "ok"
	}
	return status
}

// ServeHTTP 헬스체크 핸들러
func (c *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := c.Status(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if status.Status == constants.HealthStatusHealthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(status)
}
