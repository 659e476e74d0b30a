package interfaces

import (
	"context"

	"github.com/Janmenjay30/CodeCircle/models"
)

// ProfileStore 프로필 저장소 작업을 위한 인터페이스입니다.
// 키는 models.HandleKey로 정규화한 핸들입니다.
type ProfileStore interface {
	// 조회
	ListProfiles(ctx context.Context) ([]*models.UserProfile, error)
	GetProfile(ctx context.Context, key string) (*models.UserProfile, error)

	// 쓰기
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	UpsertProfile(ctx context.Context, profile *models.UserProfile) error

	// 상태 확인 및 리소스 정리
	Ping(ctx context.Context) error
	Close() error
}
