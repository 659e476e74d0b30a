package interfaces

import (
	"context"

	"github.com/Janmenjay30/CodeCircle/scoring"
)

// LeaderboardProvider 리더보드 조회를 위한 인터페이스입니다
type LeaderboardProvider interface {
	Leaderboard(ctx context.Context, window scoring.Window, limit int) ([]scoring.LeaderboardEntry, error)
}
