package api

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Janmenjay30/CodeCircle/cache"
	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/coder/quartz"
)

// CachedProfileClient 캐시 기능을 포함한 프로필 API 클라이언트입니다.
// 등록과 미리보기에서만 사용하며 동기화는 항상 원본 클라이언트로 조회합니다.
type CachedProfileClient struct {
	client        interfaces.ProfileFetcher
	cache         interfaces.SnapshotCache
	cleanupCancel context.CancelFunc

	// 성능 메트릭
	cacheHits   int64
	cacheMisses int64
	totalCalls  int64
}

// NewCachedProfileClient 새로운 CachedProfileClient 인스턴스를 생성합니다
func NewCachedProfileClient(client interfaces.ProfileFetcher, clock quartz.Clock) *CachedProfileClient {
	utils.Info("Creating cached profile API client")

	cachedClient := &CachedProfileClient{
		client: client,
		cache:  cache.NewSnapshotCache(clock, constants.SnapshotCacheTTL),
	}

	cachedClient.cleanupCancel = cachedClient.cache.StartCleanupWorker(constants.CacheCleanupInterval)
	return cachedClient
}

// Close 캐시 정리 워커를 중지시킵니다.
func (cachedClient *CachedProfileClient) Close() {
	if cachedClient.cleanupCancel != nil {
		cachedClient.cleanupCancel()
		utils.Info("Cache cleanup worker stopped.")
	}
}

// FetchProfile 캐시를 통해 프로필 스냅샷을 조회합니다
func (cachedClient *CachedProfileClient) FetchProfile(ctx context.Context, handle string) (*models.ProfileSnapshot, error) {
	atomic.AddInt64(&cachedClient.totalCalls, 1)

	// 캐시에서 먼저 조회
	if snapshot, found := cachedClient.cache.GetSnapshot(handle); found {
		atomic.AddInt64(&cachedClient.cacheHits, 1)
		utils.Debug("Cache hit for profile: %s", handle)
		return snapshot, nil
	}

	// 캐시 미스 - API 호출
	atomic.AddInt64(&cachedClient.cacheMisses, 1)
	utils.Debug("Cache miss for profile: %s, calling API", handle)

	snapshot, err := cachedClient.client.FetchProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	// 성공한 응답만 캐시에 저장
	cachedClient.cache.SetSnapshot(handle, snapshot)

	return snapshot, nil
}

// Invalidate 핸들의 캐시 항목을 제거합니다
func (cachedClient *CachedProfileClient) Invalidate(handle string) {
	cachedClient.cache.Invalidate(handle)
}

// GetCacheStats 캐시 통계를 반환합니다
func (cachedClient *CachedProfileClient) GetCacheStats() CacheMetrics {
	cacheStats := cachedClient.cache.GetStats()

	totalCalls := atomic.LoadInt64(&cachedClient.totalCalls)
	hits := atomic.LoadInt64(&cachedClient.cacheHits)
	misses := atomic.LoadInt64(&cachedClient.cacheMisses)

	var hitRate float64
	if totalCalls > 0 {
		hitRate = float64(hits) / float64(totalCalls) * 100
	}

	return CacheMetrics{
		TotalCalls:      totalCalls,
		CacheHits:       hits,
		CacheMisses:     misses,
		HitRate:         hitRate,
		SnapshotsCached: cacheStats.SnapshotCount,
	}
}

// CacheMetrics 캐시 성능 메트릭을 나타냅니다
type CacheMetrics struct {
	TotalCalls      int64   `json:"totalCalls"`
	CacheHits       int64   `json:"cacheHits"`
	CacheMisses     int64   `json:"cacheMisses"`
	HitRate         float64 `json:"hitRate"`
	SnapshotsCached int     `json:"snapshotsCached"`
}

// String CacheMetrics의 문자열 표현을 반환합니다
func (metrics CacheMetrics) String() string {
	return fmt.Sprintf("Profile Cache Stats: Calls=%d, Hits=%d, Misses=%d, Hit Rate=%.2f%%, Cached Snapshots=%d",
		metrics.TotalCalls, metrics.CacheHits, metrics.CacheMisses, metrics.HitRate, metrics.SnapshotsCached)
}

// ClearCache 모든 캐시를 삭제합니다
func (cachedClient *CachedProfileClient) ClearCache() {
	cachedClient.cache.Clear()
	atomic.StoreInt64(&cachedClient.cacheHits, 0)
	atomic.StoreInt64(&cachedClient.cacheMisses, 0)
	atomic.StoreInt64(&cachedClient.totalCalls, 0)
	utils.Info("Profile cache cleared")
}
