package constants

import "time"

// 외부 프로필 API 관련 상수
const (
	DefaultProfileServiceURL = "http://localhost:3000"
	ProfileEndpointPath      = "/userProfile/%s"
	APITimeout               = 15 * time.Second
	MaxRetries               = 3
	RetryDelay               = 1 * time.Second
	APIRetryMultiplier       = 2
	MaxConcurrentRequests    = 5
)

// 동기화 및 스케줄 관련 상수
const (
	DefaultSyncCron       = "0 * * * *" // 매 정시
	DefaultSyncRunTimeout = 10 * time.Minute
	DefaultFetchTimeout   = 20 * time.Second
	SecondsPerDay         = 24 * 60 * 60
	DefaultStreakWindow   = 365
)

// 리더보드 관련 상수
const (
	LeaderboardWindowWeek  = 7
	LeaderboardWindowMonth = 30
	DefaultLeaderboardSize = 10
	HomeTopUsersCount      = 3
)

// Discord 관련 상수
const (
	CommandPrefix        = "!"
	CommandPrefixLength  = 1
	ScoreboardRankWidth  = 4
	ScoreboardNameWidth  = 16
	ScoreboardScoreWidth = 6
	ScoreboardSeparator  = "──────────────────────────────"
	ColorLeaderboard     = 0xFFA116
	BotStatusMessage     = "!help | CodeCircle"
	BotCommandTimeout    = 30 * time.Second
)

// 이모지 상수
const (
	EmojiSuccess = "✅"
	EmojiError   = "❌"
	EmojiInfo    = "ℹ️"
	EmojiWarning = "⚠️"
	EmojiTrophy  = "🏆"
	EmojiFire    = "🔥"
	EmojiSync    = "🔁"
)

// 날짜 형식
const (
	DateFormat     = "2006-01-02"
	TimeFormat     = "15:04:05"
	DateTimeFormat = "2006-01-02 15:04:05"
)

// 로그 관련 상수
const (
	LogLevelDebug = "DEBUG"
	LogLevelInfo  = "INFO"
	LogLevelWarn  = "WARN"
	LogLevelError = "ERROR"
)

// 문자열 크기 제한
const (
	TruncateIndicator = "..."
)

// 환경 변수 키
const (
	EnvProfileServiceURL  = "PROFILE_SERVICE_URL"
	EnvStoreURL           = "STORE_URL"
	EnvSyncCron           = "SYNC_CRON"
	EnvSyncRunTimeout     = "SYNC_RUN_TIMEOUT"
	EnvSyncConcurrency    = "SYNC_CONCURRENCY"
	EnvSyncOnStartup      = "SYNC_ON_STARTUP"
	EnvFetchTimeout       = "FETCH_TIMEOUT"
	EnvPort               = "PORT"
	EnvTimezone           = "TIMEZONE"
	EnvLogLevel           = "LOG_LEVEL"
	EnvDebugMode          = "DEBUG_MODE"
	EnvTelemetryEnabled   = "TELEMETRY_ENABLED"
	EnvGoogleCloudProject = "GOOGLE_CLOUD_PROJECT"
	EnvDiscordToken       = "DISCORD_BOT_TOKEN"
	EnvChannelID          = "DISCORD_CHANNEL_ID"
	EnvRosterSheetID      = "ROSTER_SPREADSHEET_ID"
	EnvRosterSheetRange   = "ROSTER_SHEET_RANGE"
	EnvFirebaseCreds      = "FIREBASE_CREDENTIALS_JSON"
)

// 텔레메트리 관련 상수
const (
	TelemetryNamespace = "codecircle"
	TelemetryJobName   = "profile-sync"
	TelemetryTaskID    = "main"
)

// Google Sheets 관련 상수
const (
	DefaultRosterSheetRange = "A:Z"
	RosterHandleColumn      = "handle"
)
