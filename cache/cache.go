package cache

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/coder/quartz"
)

// CacheItem 캐시에 저장되는 개별 아이템을 나타냅니다
type CacheItem struct {
	Snapshot  *models.ProfileSnapshot
	ExpiresAt time.Time
}

// IsExpired 주어진 시각 기준으로 만료되었는지 확인합니다
func (item *CacheItem) IsExpired(now time.Time) bool {
	return !now.Before(item.ExpiresAt)
}

// CacheStats 캐시 통계 정보를 나타냅니다
type CacheStats struct {
	SnapshotCount int `json:"snapshotCount"`
	QueueLength   int `json:"queueLength"`
}

// ExpirationEntry 만료 시간 기반 우선순위 큐의 항목
type ExpirationEntry struct {
	Key       string
	ExpiresAt time.Time
	Index     int // 힙에서의 인덱스
}

// ExpirationQueue 만료 시간 기반 우선순위 큐 (최소 힙)
type ExpirationQueue []*ExpirationEntry

func (priorityQueue ExpirationQueue) Len() int { return len(priorityQueue) }

func (priorityQueue ExpirationQueue) Less(i, j int) bool {
	return priorityQueue[i].ExpiresAt.Before(priorityQueue[j].ExpiresAt)
}

func (priorityQueue ExpirationQueue) Swap(i, j int) {
	priorityQueue[i], priorityQueue[j] = priorityQueue[j], priorityQueue[i]
	priorityQueue[i].Index = i
	priorityQueue[j].Index = j
}

func (priorityQueue *ExpirationQueue) Push(x interface{}) {
	n := len(*priorityQueue)
	entry := x.(*ExpirationEntry)
	entry.Index = n
	*priorityQueue = append(*priorityQueue, entry)
}

func (priorityQueue *ExpirationQueue) Pop() interface{} {
	old := *priorityQueue
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.Index = -1
	*priorityQueue = old[0 : n-1]
	return entry
}

// SnapshotCache 우선순위 큐로 만료를 관리하는 프로필 스냅샷 캐시
type SnapshotCache struct {
	snapshots map[string]*CacheItem

	// 만료 시간 추적을 위한 우선순위 큐와 인덱스
	expirationQueue *ExpirationQueue
	keyToEntry      map[string]*ExpirationEntry

	mu    sync.RWMutex
	clock quartz.Clock
	ttl   time.Duration

	// 효율적인 정리를 위한 설정
	lastCleanup        time.Time
	cleanupBatchSize   int
	maxCleanupDuration time.Duration
}

// NewSnapshotCache 새로운 SnapshotCache 인스턴스를 생성합니다
func NewSnapshotCache(clock quartz.Clock, ttl time.Duration) *SnapshotCache {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if ttl <= 0 {
		ttl = constants.SnapshotCacheTTL
	}

	priorityQueue := &ExpirationQueue{}
	heap.Init(priorityQueue)

	return &SnapshotCache{
		snapshots:          make(map[string]*CacheItem),
		expirationQueue:    priorityQueue,
		keyToEntry:         make(map[string]*ExpirationEntry),
		clock:              clock,
		ttl:                ttl,
		cleanupBatchSize:   constants.CacheCleanupBatchSize,
		maxCleanupDuration: constants.MaxCacheCleanupDuration,
		lastCleanup:        clock.Now(),
	}
}

// GetSnapshot 캐시에서 스냅샷을 조회합니다
func (cache *SnapshotCache) GetSnapshot(handle string) (*models.ProfileSnapshot, bool) {
	key := models.HandleKey(handle)

	cache.mu.RLock()
	defer cache.mu.RUnlock()

	item, exists := cache.snapshots[key]
	if !exists || item.IsExpired(cache.clock.Now()) {
		return nil, false
	}
	return item.Snapshot, true
}

// SetSnapshot 스냅샷을 캐시에 저장합니다 (우선순위 큐에도 추가)
func (cache *SnapshotCache) SetSnapshot(handle string, snapshot *models.ProfileSnapshot) {
	key := models.HandleKey(handle)

	cache.mu.Lock()
	defer cache.mu.Unlock()

	expiresAt := cache.clock.Now().Add(cache.ttl)
	cache.snapshots[key] = &CacheItem{Snapshot: snapshot, ExpiresAt: expiresAt}

	// 기존 항목은 힙에서 빼지 않고 무효화만 표시
	if existingEntry, exists := cache.keyToEntry[key]; exists {
		existingEntry.ExpiresAt = time.Time{}
		heap.Fix(cache.expirationQueue, existingEntry.Index)
	}

	entry := &ExpirationEntry{Key: key, ExpiresAt: expiresAt}
	heap.Push(cache.expirationQueue, entry)
	cache.keyToEntry[key] = entry
}

// Invalidate 핸들의 캐시 항목을 제거합니다
func (cache *SnapshotCache) Invalidate(handle string) {
	key := models.HandleKey(handle)

	cache.mu.Lock()
	defer cache.mu.Unlock()

	delete(cache.snapshots, key)
	if entry, exists := cache.keyToEntry[key]; exists {
		entry.ExpiresAt = time.Time{}
		heap.Fix(cache.expirationQueue, entry.Index)
		delete(cache.keyToEntry, key)
	}
}

// ClearExpired 우선순위 큐를 사용하여 만료된 항목을 배치 단위로 정리합니다
func (cache *SnapshotCache) ClearExpired() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	now := cache.clock.Now()
	startTime := time.Now()
	cleaned := 0

	// 시간 제한과 배치 크기 제한으로 정리
	for cleaned < cache.cleanupBatchSize && time.Since(startTime) < cache.maxCleanupDuration {
		if cache.expirationQueue.Len() == 0 {
			break
		}

		// 가장 빨리 만료되는 항목 확인 (무효화된 항목은 zero time이라 맨 앞에 옴)
		entry := (*cache.expirationQueue)[0]
		invalidated := entry.ExpiresAt.IsZero()
		if !invalidated && now.Before(entry.ExpiresAt) {
			break
		}

		heap.Pop(cache.expirationQueue)
		if current, ok := cache.keyToEntry[entry.Key]; ok && current == entry {
			delete(cache.keyToEntry, entry.Key)
			delete(cache.snapshots, entry.Key)
		}
		cleaned++
	}

	cache.lastCleanup = now
	return cleaned
}

// GetStats 캐시 통계를 반환합니다
func (cache *SnapshotCache) GetStats() CacheStats {
	cache.mu.RLock()
	defer cache.mu.RUnlock()

	return CacheStats{
		SnapshotCount: len(cache.snapshots),
		QueueLength:   cache.expirationQueue.Len(),
	}
}

// Clear 모든 캐시를 삭제합니다
func (cache *SnapshotCache) Clear() {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.snapshots = make(map[string]*CacheItem)
	cache.expirationQueue = &ExpirationQueue{}
	heap.Init(cache.expirationQueue)
	cache.keyToEntry = make(map[string]*ExpirationEntry)
}

// StartCleanupWorker 캐시 정리 워커를 시작합니다
func (cache *SnapshotCache) StartCleanupWorker(interval time.Duration) context.CancelFunc {
	if interval <= 0 {
		interval = constants.CacheCleanupInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	ticker := cache.clock.NewTicker(interval, "cache", "cleanup")

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				cache.ClearExpired()
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}
