package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Janmenjay30/CodeCircle/api"
	"github.com/Janmenjay30/CodeCircle/bot"
	"github.com/Janmenjay30/CodeCircle/config"
	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/health"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scheduler"
	"github.com/Janmenjay30/CodeCircle/server"
	"github.com/Janmenjay30/CodeCircle/service"
	"github.com/Janmenjay30/CodeCircle/sheets"
	"github.com/Janmenjay30/CodeCircle/storage"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/Janmenjay30/CodeCircle/telemetry"
	"github.com/Janmenjay30/CodeCircle/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/coder/quartz"
)

type Application struct {
	config        *config.Config
	clock         quartz.Clock
	store         interfaces.ProfileStore
	fetcher       *api.ProfileClient
	cachedFetcher *api.CachedProfileClient
	metrics       *telemetry.MetricsClient
	syncer        *syncer.Syncer
	scheduler     *scheduler.Scheduler
	profiles      *service.ProfileService
	health        *health.Checker
	server        *server.Server
	session       *discordgo.Session
	roster        *sheets.RosterClient
}

// New 환경변수에서 설정을 읽어 애플리케이션을 구성합니다
func New(ctx context.Context) (*Application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig 주어진 설정으로 애플리케이션을 구성합니다
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Application, error) {
	app := &Application{
		config: cfg,
		clock:  quartz.NewReal(),
	}

	if err := app.initializeDependencies(ctx); err != nil {
		app.closeDependencies()
		return nil, err
	}

	if err := app.initializeDiscord(); err != nil {
		app.closeDependencies()
		return nil, err
	}

	if err := app.initializeRoster(ctx); err != nil {
		app.closeDependencies()
		return nil, err
	}

	return app, nil
}

func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (app *Application) initializeDependencies(ctx context.Context) error {
	store, err := storage.Open(ctx, app.config.Store.URL, app.config.Store.FirebaseCredentials)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.store = store

	// 예약 동기화는 항상 최신 데이터를, 등록과 미리보기는 캐시를 거칩니다
	app.fetcher = api.NewProfileClient(app.config.Profile.BaseURL, app.config.Profile.FetchTimeout)
	app.cachedFetcher = api.NewCachedProfileClient(app.fetcher, app.clock)

	projectID := ""
	if app.config.Telemetry.Enabled {
		projectID = app.config.Telemetry.ProjectID
	}
	app.metrics = telemetry.NewMetricsClient(ctx, projectID, app.config.Store.FirebaseCredentials)

	app.syncer = syncer.NewSyncer(app.store, app.fetcher, syncer.Options{
		FetchTimeout: app.config.Profile.FetchTimeout,
		RunTimeout:   app.config.Sync.RunTimeout,
		Concurrency:  app.config.Sync.Concurrency,
		Clock:        app.clock,
	})
	app.syncer.AddSink(interfaces.ReportSinkFunc(app.logSyncReport))
	if app.metrics.Enabled() {
		app.syncer.AddSink(app.metrics)
		app.syncer.AddSink(interfaces.ReportSinkFunc(app.sendCacheMetrics))
	}

	sched, err := scheduler.NewScheduler(app.syncer, scheduler.Options{
		Cron:         app.config.Sync.Cron,
		Location:     app.config.Location(),
		RunTimeout:   app.config.Sync.RunTimeout,
		RunOnStartup: app.config.Sync.OnStartup,
		Clock:        app.clock,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize scheduler: %w", err)
	}
	app.scheduler = sched

	opts := service.Options{
		Clock:    app.clock,
		Location: app.config.Location(),
	}
	if app.metrics.Enabled() {
		opts.Recorder = app.metrics
	}
	app.profiles = service.NewProfileService(app.store, app.cachedFetcher, opts)

	app.health = health.NewChecker()
	app.health.AddCheck("store", app.store.Ping)

	app.server = server.NewServer(app.profiles, app.scheduler, app.syncer, app.health)
	return nil
}

func (app *Application) initializeDiscord() error {
	if !app.config.DiscordEnabled() {
		utils.Info("DISCORD_BOT_TOKEN이 설정되지 않았습니다. Discord 봇이 비활성화되었습니다.")
		return nil
	}

	session, err := discordgo.New("Bot " + app.config.Discord.Token)
	if err != nil {
		return fmt.Errorf("디스코드 세션 생성 실패: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent | discordgo.IntentsGuilds | discordgo.IntentsDirectMessages
	app.session = session

	var metrics bot.CommandMetrics
	if app.metrics.Enabled() {
		metrics = app.metrics
	}
	deps := bot.NewCommandDependencies(app.profiles, app.profiles, app.scheduler, metrics)
	commandHandler := bot.NewCommandHandler(deps)

	app.session.AddHandler(commandHandler.HandleMessage)
	app.session.AddHandler(app.handleReady)

	if app.config.Discord.ChannelID != "" {
		app.syncer.AddSink(bot.NewScoreboardPoster(session, app.profiles, app.config.Discord.ChannelID))
	} else {
		utils.Warn("DISCORD_CHANNEL_ID가 설정되지 않았습니다. 스코어보드 게시가 비활성화되었습니다.")
	}
	return nil
}

func (app *Application) initializeRoster(ctx context.Context) error {
	if app.config.Roster.SpreadsheetID == "" {
		return nil
	}

	roster, err := sheets.NewRosterClient(ctx, app.config.Roster.SpreadsheetID,
		app.config.Roster.SheetRange, app.config.Store.FirebaseCredentials)
	if err != nil {
		return fmt.Errorf("failed to initialize roster client: %w", err)
	}
	app.roster = roster
	return nil
}

// Start HTTP 서버와 Discord 연결, 스케줄러를 시작합니다
func (app *Application) Start(ctx context.Context) error {
	if err := app.server.Start(app.config.Server.Port); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if app.session != nil {
		if err := app.session.Open(); err != nil {
			return fmt.Errorf("웹소켓 연결 실패: %w", err)
		}
	}

	// 명단 핸들이 시작 동기화에 포함되도록 스케줄러보다 먼저 가져옵니다
	if app.roster != nil {
		importCtx, cancel := context.WithTimeout(ctx, constants.RosterImportTimeout)
		if _, err := app.roster.ImportRoster(importCtx, app.profiles); err != nil {
			utils.Warn("Roster import failed: %v", err)
		}
		cancel()
	}

	app.scheduler.Start()

	app.printStartupMessage()
	return nil
}

func (app *Application) printStartupMessage() {
	utils.Info("%s (v%s)", constants.MsgRootBanner, constants.AppVersion)
	utils.Info("⏰ 동기화 일정: %s (다음 실행: %s)", app.config.Sync.Cron,
		app.scheduler.NextRun(app.clock.Now()).In(app.config.Location()).Format(constants.DateTimeFormat))
	if app.session != nil {
		utils.Info("📋 사용 가능한 명령어: !help")
	}
}

// Run 애플리케이션을 시작하고 종료 신호를 기다립니다
func (app *Application) Run(ctx context.Context) error {
	if err := app.Start(ctx); err != nil {
		app.Stop()
		return err
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sc)

	select {
	case sig := <-sc:
		utils.Info("Received signal %v", sig)
	case <-ctx.Done():
	}

	return app.Stop()
}

func (app *Application) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	utils.Info("Discord bot connected successfully as %s", event.User.Username)
	utils.Info("Bot is serving %d guilds", len(event.Guilds))

	if err := s.UpdateGameStatus(0, constants.BotStatusMessage); err != nil {
		utils.Warn("Failed to set bot status: %v", err)
	}
}

// logSyncReport 실행 결과를 요약해 기록합니다
func (app *Application) logSyncReport(ctx context.Context, report *models.SyncReport) {
	if report.Aborted != nil {
		utils.Error("Sync run %s (%s) aborted: %v", report.RunID, report.Trigger, report.Aborted)
		return
	}
	utils.Info("Sync run %s (%s) finished in %v: %d succeeded, %d failed",
		report.RunID, report.Trigger, report.Duration(), report.Succeeded(), report.Failed())
	if failed := report.FailedHandles(); len(failed) > 0 {
		utils.Warn("Failed handles: %v", failed)
	}

	stats := app.syncer.ConcurrencyStats()
	utils.Debug("Concurrency limit %d/%d, avg %v, p95 %v",
		stats.CurrentLimit, stats.MaxLimit, stats.AverageResponse, stats.P95Response)
}

func (app *Application) sendCacheMetrics(ctx context.Context, report *models.SyncReport) {
	if app.cachedFetcher == nil {
		return
	}
	stats := app.cachedFetcher.GetCacheStats()
	app.metrics.SendCacheMetrics(ctx, stats.TotalCalls, stats.CacheHits, stats.CacheMisses, stats.HitRate)
}

// printCacheStats 캐시 통계를 출력합니다
func (app *Application) printCacheStats() {
	if app.cachedFetcher != nil {
		utils.Info("📊 %s", app.cachedFetcher.GetCacheStats().String())
	}
}

// Stop 요청 유입(HTTP, Discord)을 먼저 막은 뒤 스케줄러와 외부 연결을 종료합니다
func (app *Application) Stop() error {
	utils.Info("🔄 서비스를 종료하는 중...")

	app.printCacheStats()

	if app.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownTimeout)
		if err := app.server.Shutdown(ctx); err != nil {
			utils.Warn("HTTP server shutdown: %v", err)
		}
		cancel()
	}

	if app.session != nil {
		if err := app.session.Close(); err != nil {
			utils.Warn("Discord session close: %v", err)
		}
	}

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	app.closeDependencies()

	utils.Info("서비스가 정상적으로 종료되었습니다.")
	return nil
}

func (app *Application) closeDependencies() {
	if app.cachedFetcher != nil {
		app.cachedFetcher.Close()
		app.cachedFetcher = nil
	}
	if app.metrics != nil {
		if err := app.metrics.Close(); err != nil {
			utils.Warn("Telemetry client close: %v", err)
		}
		app.metrics = nil
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			utils.Warn("Store close: %v", err)
		}
		app.store = nil
	}
}
