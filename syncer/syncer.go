package syncer

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/performance"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"
)

// 동기화 트리거 종류
const (
	TriggerScheduled = "scheduled"
	TriggerStartup   = "startup"
	TriggerManual    = "manual"
)

// ErrSyncInProgress 이미 실행 중인 동기화가 있을 때 반환됩니다
var ErrSyncInProgress = stderrors.New("sync already in progress")

// Options Syncer 동작 설정
type Options struct {
	// FetchTimeout 핸들 하나를 조회하는 데 허용되는 시간
	FetchTimeout time.Duration
	// RunTimeout 실행 전체에 허용되는 시간. 0이면 제한 없음.
	RunTimeout time.Duration
	// Concurrency 시작 동시성
	Concurrency int
	Clock       quartz.Clock
}

// Syncer 등록된 모든 핸들의 프로필을 새로 가져와 저장소에 반영합니다
type Syncer struct {
	store              interfaces.ProfileStore
	fetcher            interfaces.ProfileFetcher
	concurrencyManager *performance.AdaptiveConcurrencyManager
	clock              quartz.Clock
	fetchTimeout       time.Duration
	runTimeout         time.Duration

	busy atomic.Bool

	mu         sync.RWMutex
	lastReport *models.SyncReport
	sinks      []interfaces.ReportSink
}

// NewSyncer 새로운 Syncer를 생성합니다
func NewSyncer(store interfaces.ProfileStore, fetcher interfaces.ProfileFetcher, opts Options) *Syncer {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = constants.DefaultFetchTimeout
	}

	return &Syncer{
		store:              store,
		fetcher:            fetcher,
		concurrencyManager: performance.NewAdaptiveConcurrencyManager(opts.Clock, opts.Concurrency),
		clock:              opts.Clock,
		fetchTimeout:       opts.FetchTimeout,
		runTimeout:         opts.RunTimeout,
	}
}

// AddSink 실행이 끝날 때마다 보고서를 받을 대상을 등록합니다
func (s *Syncer) AddSink(sink interfaces.ReportSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// IsBusy 동기화가 실행 중인지 반환합니다
func (s *Syncer) IsBusy() bool {
	return s.busy.Load()
}

// LastReport 마지막으로 끝난 실행의 보고서를 반환합니다. 없으면 nil입니다.
func (s *Syncer) LastReport() *models.SyncReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

// ConcurrencyStats 동시성 관리자 통계를 반환합니다
func (s *Syncer) ConcurrencyStats() performance.ConcurrencyStats {
	return s.concurrencyManager.GetStats()
}

// RunSync 동기화를 한 번 실행합니다.
// 다른 실행이 진행 중이면 아무것도 쓰지 않고 ErrSyncInProgress를 반환합니다.
// 핸들별 실패는 보고서에만 기록되고, 핸들 목록 조회 실패만 오류로 반환됩니다.
func (s *Syncer) RunSync(ctx context.Context, trigger string) (*models.SyncReport, error) {
	if !s.busy.CompareAndSwap(false, true) {
		utils.Warn("Sync (%s) rejected: another run is in progress", trigger)
		return nil, ErrSyncInProgress
	}

	report, err := s.run(ctx, trigger)
	s.busy.Store(false)

	s.mu.Lock()
	s.lastReport = report
	sinks := append([]interfaces.ReportSink(nil), s.sinks...)
	s.mu.Unlock()

	s.notifySinks(ctx, sinks, report)
	return report, err
}

// notifySinks 호출자의 취소와 분리된 컨텍스트로 sink에 보고서를 전달합니다.
// sink 전체에 ReportSinkTimeout이 적용됩니다.
func (s *Syncer) notifySinks(ctx context.Context, sinks []interfaces.ReportSink, report *models.SyncReport) {
	if len(sinks) == 0 {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ReportSinkTimeout)
	defer cancel()

	for _, sink := range sinks {
		sink.HandleSyncReport(sinkCtx, report)
	}
}

func (s *Syncer) run(ctx context.Context, trigger string) (*models.SyncReport, error) {
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	report := models.NewSyncReport(trigger, s.clock.Now())
	utils.Info("Sync run %s started (trigger: %s)", report.RunID, trigger)

	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		report.Aborted = err
		report.FinishedAt = s.clock.Now()
		utils.Error("Sync run %s aborted: cannot list profiles: %v", report.RunID, err)
		return report, err
	}

	report.Outcomes = make([]models.SyncOutcome, len(profiles))

	var g errgroup.Group
	g.SetLimit(s.concurrencyManager.GetCurrentLimit())

	for i, profile := range profiles {
		g.Go(func() error {
			report.Outcomes[i] = s.syncOne(ctx, profile)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.clock.Now()

	if failed := report.FailedHandles(); len(failed) > 0 {
		utils.Warn("Sync run %s failed for %d handles: %v", report.RunID, len(failed), failed)
	}
	utils.Info("Sync run %s finished in %v: %d succeeded, %d failed",
		report.RunID, report.Duration(), report.Succeeded(), report.Failed())
	return report, nil
}

// syncOne 핸들 하나를 조회하고 저장합니다. 오류는 결과에만 담깁니다.
func (s *Syncer) syncOne(ctx context.Context, profile *models.UserProfile) models.SyncOutcome {
	start := s.clock.Now()
	outcome := models.SyncOutcome{Handle: profile.Handle}

	if err := ctx.Err(); err != nil {
		outcome.Err = err
		utils.Warn("Skipping %s: %v", profile.Handle, err)
		return outcome
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	snapshot, err := s.fetcher.FetchProfile(fetchCtx, profile.Handle)
	cancel()

	// 응답 시간을 적응형 동시성 관리자에 기록
	s.concurrencyManager.RecordResponseTime(s.clock.Since(start))

	if err != nil {
		outcome.Err = err
		outcome.Duration = s.clock.Since(start)
		utils.Warn("Failed to fetch profile for %s: %v", profile.Handle, err)
		return outcome
	}

	profile.ApplySnapshot(snapshot)
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		outcome.Err = err
		utils.Warn("Failed to store profile for %s: %v", profile.Handle, err)
	} else {
		utils.Debug("Synced %s (total solved: %d)", profile.Handle, profile.TotalSolved)
	}

	outcome.Duration = s.clock.Since(start)
	return outcome
}
