package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
)

// InMemoryStorage 테스트/개발용 비영구 저장소 구현
type InMemoryStorage struct {
	mu       sync.RWMutex
	profiles map[string]*models.UserProfile // key: HandleKey
}

// NewInMemoryStorage 새 인메모리 저장소 생성
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		profiles: make(map[string]*models.UserProfile),
	}
}

// ListProfiles 모든 프로필을 키 순서로 반환합니다
func (s *InMemoryStorage) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("STORE_LIST_FAILED", "failed to list profiles", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.profiles))
	for key := range s.profiles {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]*models.UserProfile, 0, len(keys))
	for _, key := range keys {
		out = append(out, s.profiles[key].Clone())
	}
	return out, nil
}

// GetProfile 키로 프로필을 조회합니다
func (s *InMemoryStorage) GetProfile(ctx context.Context, key string) (*models.UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("STORE_GET_FAILED", "failed to get profile", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[models.HandleKey(key)]
	if !ok {
		return nil, notFound(key)
	}
	return p.Clone(), nil
}

// CreateProfile 새 프로필을 추가합니다. 키가 이미 있으면 중복 오류입니다.
func (s *InMemoryStorage) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return unavailable("STORE_CREATE_FAILED", "failed to create profile", err)
	}
	if profile == nil || profile.Key() == "" {
		return fmt.Errorf("profile with empty handle")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := profile.Key()
	if _, exists := s.profiles[key]; exists {
		return duplicate(profile.Handle)
	}
	s.profiles[key] = profile.Clone()
	utils.Debug("Added profile to memory store: %s", profile.Handle)
	return nil
}

// UpsertProfile 프로필을 저장합니다. 마지막 쓰기가 이깁니다.
func (s *InMemoryStorage) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	if err := ctx.Err(); err != nil {
		return unavailable("STORE_UPSERT_FAILED", "failed to upsert profile", err)
	}
	if profile == nil || profile.Key() == "" {
		return fmt.Errorf("profile with empty handle")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.Key()] = profile.Clone()
	return nil
}

// Ping 인메모리 저장소는 항상 사용 가능합니다
func (s *InMemoryStorage) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close no-op
func (s *InMemoryStorage) Close() error {
	return nil
}
