package bot

import (
	"context"

	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
)

// Registrar 핸들 등록을 담당합니다
type Registrar interface {
	Register(ctx context.Context, handle string) (*models.UserProfile, error)
}

// SyncTrigger 수동 동기화를 실행합니다
type SyncTrigger interface {
	Trigger(ctx context.Context) (*models.SyncReport, error)
}

// CommandMetrics 명령어 사용 메트릭을 기록합니다
type CommandMetrics interface {
	SendCommandMetric(ctx context.Context, command string)
}

// CommandDependencies 명령어 핸들러가 필요로 하는 모든 의존성을 묶어서 관리합니다
type CommandDependencies struct {
	Registrar   Registrar
	Leaderboard interfaces.LeaderboardProvider
	Sync        SyncTrigger
	Metrics     CommandMetrics
}

// NewCommandDependencies 새로운 CommandDependencies 인스턴스를 생성합니다
func NewCommandDependencies(
	registrar Registrar,
	leaderboard interfaces.LeaderboardProvider,
	sync SyncTrigger,
	metrics CommandMetrics,
) *CommandDependencies {
	return &CommandDependencies{
		Registrar:   registrar,
		Leaderboard: leaderboard,
		Sync:        sync,
		Metrics:     metrics,
	}
}
