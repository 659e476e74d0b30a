package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncOutcome 동기화 실행 중 핸들 하나의 처리 결과입니다
type SyncOutcome struct {
	Handle   string        `json:"username"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Succeeded 처리 성공 여부를 반환합니다
func (o SyncOutcome) Succeeded() bool {
	return o.Err == nil
}

// SyncReport 동기화 한 번의 실행 결과입니다
type SyncReport struct {
	RunID      uuid.UUID     `json:"runId"`
	Trigger    string        `json:"trigger"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Outcomes   []SyncOutcome `json:"outcomes"`
	// Aborted 핸들 목록을 가져오지 못해 실행이 중단된 경우의 원인입니다
	Aborted error `json:"-"`
}

// NewSyncReport 새 실행 ID로 보고서를 시작합니다
func NewSyncReport(trigger string, startedAt time.Time) *SyncReport {
	return &SyncReport{
		RunID:     uuid.New(),
		Trigger:   trigger,
		StartedAt: startedAt,
	}
}

// Succeeded 성공한 핸들 수를 반환합니다
func (r *SyncReport) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded() {
			n++
		}
	}
	return n
}

// Failed 실패한 핸들 수를 반환합니다
func (r *SyncReport) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// FailedHandles 실패한 핸들 목록을 반환합니다
func (r *SyncReport) FailedHandles() []string {
	var handles []string
	for _, o := range r.Outcomes {
		if !o.Succeeded() {
			handles = append(handles, o.Handle)
		}
	}
	return handles
}

// Duration 실행에 걸린 시간을 반환합니다
func (r *SyncReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// SyncReportView JSON 응답용 보고서 요약입니다
type SyncReportView struct {
	RunID         string    `json:"runId"`
	Trigger       string    `json:"trigger"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	DurationMs    int64     `json:"duration"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	FailedHandles []string  `json:"failedHandles,omitempty"`
	Aborted       string    `json:"aborted,omitempty"`
}

// View 보고서를 JSON 응답용 요약으로 변환합니다
func (r *SyncReport) View() SyncReportView {
	view := SyncReportView{
		RunID:         r.RunID.String(),
		Trigger:       r.Trigger,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		DurationMs:    r.Duration().Milliseconds(),
		Succeeded:     r.Succeeded(),
		Failed:        r.Failed(),
		FailedHandles: r.FailedHandles(),
	}
	if r.Aborted != nil {
		view.Aborted = r.Aborted.Error()
	}
	return view
}
