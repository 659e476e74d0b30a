package interfaces

import (
	"context"

	"github.com/Janmenjay30/CodeCircle/models"
)

// ProfileFetcher 외부 프로필 API에서 스냅샷을 가져오는 인터페이스입니다
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, handle string) (*models.ProfileSnapshot, error)
}
