package scheduler

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/coder/quartz"
	"github.com/robfig/cron/v3"
)

// ErrSchedulerStopped Stop 이후의 수동 실행 요청에 반환됩니다
var ErrSchedulerStopped = stderrors.New("sync scheduler stopped")

// Options 스케줄러 설정
type Options struct {
	// Cron 표준 5필드 cron 표현식 (기본값: 매 정시)
	Cron string
	// Location cron 표현식을 해석할 시간대
	Location *time.Location
	// RunTimeout Stop이 진행 중인 실행을 기다리는 최대 시간
	RunTimeout   time.Duration
	RunOnStartup bool
	Clock        quartz.Clock
}

// Scheduler cron 일정에 따라 동기화를 실행합니다.
// 모든 실행은 SyncRunner의 busy 가드를 거치므로 겹치지 않습니다.
type Scheduler struct {
	runner       interfaces.SyncRunner
	schedule     cron.Schedule
	clock        quartz.Clock
	location     *time.Location
	runTimeout   time.Duration
	runOnStartup bool

	runCtx     context.Context
	cancelRuns context.CancelFunc
	inFlight   sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopChan chan struct{}
	loopDone chan struct{}
}

// NewScheduler 새로운 Scheduler를 생성합니다
func NewScheduler(runner interfaces.SyncRunner, opts Options) (*Scheduler, error) {
	if opts.Cron == "" {
		opts.Cron = constants.DefaultSyncCron
	}
	schedule, err := cron.ParseStandard(opts.Cron)
	if err != nil {
		return nil, fmt.Errorf("invalid sync cron expression %q: %w", opts.Cron, err)
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = constants.DefaultSyncRunTimeout
	}

	runCtx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		runner:       runner,
		schedule:     schedule,
		clock:        opts.Clock,
		location:     opts.Location,
		runTimeout:   opts.RunTimeout,
		runOnStartup: opts.RunOnStartup,
		runCtx:       runCtx,
		cancelRuns:   cancel,
		stopChan:     make(chan struct{}),
		loopDone:     make(chan struct{}),
	}, nil
}

// NextRun 주어진 시각 이후 다음 예정 실행 시각을 반환합니다
func (s *Scheduler) NextRun(after time.Time) time.Time {
	return s.schedule.Next(after.In(s.location))
}

// Start 예약 실행 루프를 시작합니다. 두 번째 호출은 무시됩니다.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	if s.runOnStartup {
		s.runAsync(syncer.TriggerStartup)
	}

	go s.loop()

	utils.Info("Sync scheduler started (next run at %s)",
		s.NextRun(s.clock.Now()).Format(constants.DateTimeFormat))
}

func (s *Scheduler) loop() {
	defer close(s.loopDone)

	for {
		now := s.clock.Now()
		next := s.NextRun(now)
		timer := s.clock.NewTimer(next.Sub(now), "scheduler", "tick")

		select {
		case <-timer.C:
			s.runAsync(syncer.TriggerScheduled)
		case <-s.stopChan:
			timer.Stop()
			return
		}
	}
}

func (s *Scheduler) runAsync(trigger string) {
	s.inFlight.Add(1)
	go func() {
		defer s.inFlight.Done()
		s.execute(s.runCtx, trigger)
	}()
}

func (s *Scheduler) execute(ctx context.Context, trigger string) (*models.SyncReport, error) {
	report, err := s.runner.RunSync(ctx, trigger)
	if stderrors.Is(err, syncer.ErrSyncInProgress) {
		utils.Info("Skipping %s sync: previous run still in progress", trigger)
		return nil, err
	}
	if err != nil {
		utils.Error("%s sync failed: %v", trigger, err)
	}
	return report, err
}

// Trigger 수동 동기화를 즉시 실행하고 끝날 때까지 기다립니다.
// Stop 이후에는 ErrSchedulerStopped를 반환하고, 진행 중인 수동 실행도
// Stop의 대기 시간이 지나면 취소됩니다.
func (s *Scheduler) Trigger(ctx context.Context) (*models.SyncReport, error) {
	s.mu.Lock()
	select {
	case <-s.stopChan:
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	default:
	}
	s.inFlight.Add(1)
	s.mu.Unlock()
	defer s.inFlight.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopCancel := context.AfterFunc(s.runCtx, cancel)
	defer stopCancel()

	return s.execute(ctx, syncer.TriggerManual)
}

// Stop 이후 예약 실행을 멈추고 진행 중인 실행을 RunTimeout만큼 기다립니다.
// 시간 안에 끝나지 않으면 실행 컨텍스트를 취소합니다.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	wasStarted := s.started
	select {
	case <-s.stopChan:
		s.mu.Unlock()
		return
	default:
		close(s.stopChan)
	}
	s.mu.Unlock()

	if wasStarted {
		<-s.loopDone
	}

	done := make(chan struct{})
	go func() {
		s.inFlight.Wait()
		close(done)
	}()

	timer := s.clock.NewTimer(s.runTimeout, "scheduler", "stop")
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		utils.Warn("In-flight sync did not finish within %v, cancelling", s.runTimeout)
		s.cancelRuns()
		<-done
	}
	s.cancelRuns()

	utils.Info("Sync scheduler stopped")
}
