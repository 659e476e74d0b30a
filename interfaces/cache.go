package interfaces

import (
	"context"
	"time"

	"github.com/Janmenjay30/CodeCircle/cache"
	"github.com/Janmenjay30/CodeCircle/models"
)

// SnapshotCache 프로필 스냅샷 캐시 인터페이스를 정의합니다
type SnapshotCache interface {
	GetSnapshot(handle string) (*models.ProfileSnapshot, bool)
	SetSnapshot(handle string, snapshot *models.ProfileSnapshot)
	Invalidate(handle string)

	// 통계 및 관리
	GetStats() cache.CacheStats
	Clear()

	CleanupWorkerInterface
}

// CleanupWorkerInterface 정리 워커 인터페이스
type CleanupWorkerInterface interface {
	StartCleanupWorker(interval time.Duration) context.CancelFunc
}
