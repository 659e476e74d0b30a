package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/coder/quartz"
)

func TestNewSnapshotCache(t *testing.T) {
	cache := NewSnapshotCache(nil, 0)

	if cache == nil {
		t.Fatal("NewSnapshotCache가 nil을 반환했습니다")
	}

	if cache.snapshots == nil {
		t.Error("snapshots가 초기화되지 않았습니다")
	}

	if cache.expirationQueue == nil {
		t.Error("expirationQueue가 초기화되지 않았습니다")
	}

	if cache.ttl <= 0 {
		t.Error("기본 TTL이 설정되지 않았습니다")
	}
}

func TestCacheItemIsExpired(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	item := &CacheItem{ExpiresAt: now.Add(time.Minute)}

	if item.IsExpired(now) {
		t.Error("아직 만료되지 않은 아이템이 만료된 것으로 판단됩니다")
	}

	if !item.IsExpired(now.Add(time.Minute)) {
		t.Error("만료 시각에 도달한 아이템이 만료되지 않은 것으로 판단됩니다")
	}
}

func TestSnapshotCache_GetSet(t *testing.T) {
	clock := quartz.NewMock(t)
	cache := NewSnapshotCache(clock, time.Minute)
	snapshot := &models.ProfileSnapshot{Username: "alice", TotalSolved: 10}

	// 캐시 미스
	if data, exists := cache.GetSnapshot("alice"); exists || data != nil {
		t.Error("존재하지 않는 데이터가 존재하는 것으로 조회됩니다")
	}

	cache.SetSnapshot("Alice", snapshot)

	// 대소문자 무시 캐시 히트
	data, exists := cache.GetSnapshot(" alice ")
	if !exists {
		t.Fatal("저장된 데이터를 찾을 수 없습니다")
	}
	if data != snapshot {
		t.Errorf("데이터가 일치하지 않습니다. 예상: %v, 실제: %v", snapshot, data)
	}

	// TTL 경과 후 미스
	clock.Advance(time.Minute)
	if _, exists := cache.GetSnapshot("alice"); exists {
		t.Error("만료된 데이터가 조회됩니다")
	}
}

func TestSnapshotCache_ClearExpired(t *testing.T) {
	clock := quartz.NewMock(t)
	cache := NewSnapshotCache(clock, time.Minute)

	cache.SetSnapshot("a", &models.ProfileSnapshot{Username: "a"})
	clock.Advance(30 * time.Second)
	cache.SetSnapshot("b", &models.ProfileSnapshot{Username: "b"})

	if cleaned := cache.ClearExpired(); cleaned != 0 {
		t.Errorf("만료되지 않은 항목이 정리되었습니다: %d", cleaned)
	}

	clock.Advance(30 * time.Second)
	if cleaned := cache.ClearExpired(); cleaned != 1 {
		t.Errorf("1개 항목이 정리되어야 합니다. 실제: %d", cleaned)
	}

	stats := cache.GetStats()
	if stats.SnapshotCount != 1 || stats.QueueLength != 1 {
		t.Errorf("정리 후 통계가 올바르지 않습니다: %+v", stats)
	}
	if _, exists := cache.GetSnapshot("b"); !exists {
		t.Error("만료되지 않은 항목 b가 사라졌습니다")
	}
}

func TestSnapshotCache_OverwriteKeepsNewEntry(t *testing.T) {
	clock := quartz.NewMock(t)
	cache := NewSnapshotCache(clock, time.Minute)

	cache.SetSnapshot("a", &models.ProfileSnapshot{TotalSolved: 1})
	cache.SetSnapshot("a", &models.ProfileSnapshot{TotalSolved: 2})

	// 무효화된 이전 항목만 제거되고 새 항목은 유지
	if cleaned := cache.ClearExpired(); cleaned != 1 {
		t.Errorf("무효화된 항목 1개가 정리되어야 합니다. 실제: %d", cleaned)
	}

	data, exists := cache.GetSnapshot("a")
	if !exists || data.TotalSolved != 2 {
		t.Errorf("새 항목이 유지되어야 합니다: %v, %v", data, exists)
	}
}

func TestSnapshotCache_InvalidateAndClear(t *testing.T) {
	cache := NewSnapshotCache(quartz.NewMock(t), time.Minute)

	cache.SetSnapshot("a", &models.ProfileSnapshot{})
	cache.SetSnapshot("b", &models.ProfileSnapshot{})

	cache.Invalidate("A")
	if _, exists := cache.GetSnapshot("a"); exists {
		t.Error("무효화된 항목이 조회됩니다")
	}

	cache.Clear()
	stats := cache.GetStats()
	if stats.SnapshotCount != 0 || stats.QueueLength != 0 {
		t.Errorf("Clear 후 캐시가 비어 있어야 합니다: %+v", stats)
	}
}

func TestSnapshotCache_CleanupWorker(t *testing.T) {
	ctx, cancelCtx := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelCtx()

	clock := quartz.NewMock(t)
	cache := NewSnapshotCache(clock, time.Minute)
	cache.SetSnapshot("a", &models.ProfileSnapshot{})

	cancel := cache.StartCleanupWorker(2 * time.Minute)
	defer cancel()

	clock.Advance(2 * time.Minute).MustWait(ctx)

	// 워커가 정리할 때까지 대기
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cache.GetStats().SnapshotCount == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("정리 워커가 만료된 항목을 제거하지 않았습니다")
}
