package constants

import "time"

// 적응형 동시성 제어 관련 상수
const (
	AdaptiveConcurrencyMinLimit = 2  // 최소 동시 요청 수
	AdaptiveConcurrencyMaxLimit = 20 // 최대 동시 요청 수

	ResponseTimeWindowSize         = 50                     // 응답 시간 윈도우 크기
	MinResponseTimeWindowSize      = 10                     // 조정을 위한 최소 윈도우 크기
	ConcurrencyAdjustmentThreshold = 500 * time.Millisecond // 동시성 감소 고려 임계값
	ConcurrencyDecreaseThreshold   = 1 * time.Second        // 즉시 감소 임계값
	ConcurrencyAdjustmentCooldown  = 5 * time.Second        // 조정 간 쿨다운 시간
	MaxSuccessiveIncreases         = 3                      // 최대 연속 증가 횟수
	P95PercentileRatio             = 0.95
)
