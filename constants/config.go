package constants

import "time"

// 캐시 설정 상수
const (
	SnapshotCacheTTL        = 5 * time.Minute       // 프로필 스냅샷 캐시 만료 시간
	CacheCleanupInterval    = 5 * time.Minute       // 캐시 정리 간격
	CacheCleanupBatchSize   = 50                    // 한 번에 정리할 캐시 항목 수
	MaxCacheCleanupDuration = 10 * time.Millisecond // 최대 캐시 정리 시간
)

// Discord API 재시도 설정
const (
	MaxDiscordRetries = 3               // 최대 재시도 횟수
	BaseRetryDelay    = 1 * time.Second // 기본 재시도 지연 시간
)

// 검증 규칙 상수
const (
	MinHandleLength = 1  // 핸들 최소 길이
	MaxHandleLength = 40 // 핸들 최대 길이
	MaxCompareUsers = 10 // 비교 화면에 허용되는 최대 사용자 수
)
