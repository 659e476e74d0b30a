package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config 애플리케이션의 전체 설정을 관리합니다
type Config struct {
	Profile   ProfileServiceConfig
	Store     StoreConfig
	Sync      SyncConfig
	Server    ServerConfig
	Discord   DiscordConfig
	Roster    RosterConfig
	Logging   LoggingConfig
	Telemetry TelemetryConfig
}

type ProfileServiceConfig struct {
	BaseURL      string
	FetchTimeout time.Duration
}

type StoreConfig struct {
	URL                 string
	FirebaseCredentials string
}

type SyncConfig struct {
	Cron        string
	RunTimeout  time.Duration
	Concurrency int
	OnStartup   bool
	Timezone    string
}

type ServerConfig struct {
	Port string
}

type DiscordConfig struct {
	Token     string
	ChannelID string
}

type RosterConfig struct {
	SpreadsheetID string
	SheetRange    string
}

type LoggingConfig struct {
	Level     string
	DebugMode bool
}

type TelemetryConfig struct {
	Enabled   bool
	ProjectID string
}

// 지원하는 저장소 URL 스킴
var supportedStoreSchemes = map[string]bool{
	"memory":     true,
	"firestore":  true,
	"postgres":   true,
	"postgresql": true,
	"sqlite":     true,
}

// LoadDotEnv 현재 디렉터리의 .env 파일이 있으면 환경변수로 읽어들입니다.
// 이미 설정된 환경변수는 덮어쓰지 않습니다.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// Load는 환경변수에서 설정을 로드합니다
func Load() *Config {
	return &Config{
		Profile: ProfileServiceConfig{
			BaseURL:      strings.TrimRight(getEnv(constants.EnvProfileServiceURL, constants.DefaultProfileServiceURL), "/"),
			FetchTimeout: getEnvDuration(constants.EnvFetchTimeout, constants.DefaultFetchTimeout),
		},
		Store: StoreConfig{
			URL:                 getEnv(constants.EnvStoreURL, "memory://"),
			FirebaseCredentials: getEnv(constants.EnvFirebaseCreds, ""),
		},
		Sync: SyncConfig{
			Cron:        getEnv(constants.EnvSyncCron, constants.DefaultSyncCron),
			RunTimeout:  getEnvDuration(constants.EnvSyncRunTimeout, constants.DefaultSyncRunTimeout),
			Concurrency: getEnvInt(constants.EnvSyncConcurrency, constants.MaxConcurrentRequests),
			OnStartup:   getEnvBool(constants.EnvSyncOnStartup, true),
			Timezone:    getEnv(constants.EnvTimezone, ""),
		},
		Server: ServerConfig{
			Port: getEnv(constants.EnvPort, constants.DefaultHTTPPort),
		},
		Discord: DiscordConfig{
			Token:     getEnv(constants.EnvDiscordToken, ""),
			ChannelID: getEnv(constants.EnvChannelID, ""),
		},
		Roster: RosterConfig{
			SpreadsheetID: getEnv(constants.EnvRosterSheetID, ""),
			SheetRange:    getEnv(constants.EnvRosterSheetRange, constants.DefaultRosterSheetRange),
		},
		Logging: LoggingConfig{
			Level:     getEnv(constants.EnvLogLevel, constants.LogLevelInfo),
			DebugMode: getEnvBool(constants.EnvDebugMode, false),
		},
		Telemetry: TelemetryConfig{
			Enabled:   getEnvBool(constants.EnvTelemetryEnabled, false),
			ProjectID: getEnv(constants.EnvGoogleCloudProject, ""),
		},
	}
}

// Validate 설정의 유효성을 검사합니다
func (c *Config) Validate() error {
	// 프로필 서비스 URL 검증
	u, err := url.Parse(c.Profile.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{
			Field:   "Profile.BaseURL",
			Message: "PROFILE_SERVICE_URL must be an absolute http(s) URL (got: " + c.Profile.BaseURL + ")",
		}
	}

	if c.Profile.FetchTimeout <= 0 {
		return &ConfigError{
			Field:   "Profile.FetchTimeout",
			Message: "FETCH_TIMEOUT must be positive",
		}
	}

	// 저장소 URL 검증
	if scheme := StoreScheme(c.Store.URL); !supportedStoreSchemes[scheme] {
		return &ConfigError{
			Field:   "Store.URL",
			Message: "STORE_URL scheme must be one of: memory, firestore, postgres, sqlite (got: " + scheme + ")",
		}
	}

	// 스케줄 표현식 검증
	if _, err := cron.ParseStandard(c.Sync.Cron); err != nil {
		return &ConfigError{
			Field:   "Sync.Cron",
			Message: "SYNC_CRON is not a valid cron expression (got: " + c.Sync.Cron + "): " + err.Error(),
		}
	}

	if c.Sync.RunTimeout <= 0 {
		return &ConfigError{
			Field:   "Sync.RunTimeout",
			Message: "SYNC_RUN_TIMEOUT must be positive",
		}
	}

	if c.Sync.Concurrency < 1 || c.Sync.Concurrency > constants.AdaptiveConcurrencyMaxLimit {
		return &ConfigError{
			Field: "Sync.Concurrency",
			Message: "SYNC_CONCURRENCY must be between 1 and " + strconv.Itoa(constants.AdaptiveConcurrencyMaxLimit) +
				" (got: " + strconv.Itoa(c.Sync.Concurrency) + ")",
		}
	}

	if c.Sync.Timezone != "" {
		if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
			return &ConfigError{
				Field:   "Sync.Timezone",
				Message: "TIMEZONE is not a known location (got: " + c.Sync.Timezone + ")",
			}
		}
	}

	// 포트 검증
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return &ConfigError{
			Field:   "Server.Port",
			Message: "PORT must be between 1 and 65535 (got: " + c.Server.Port + ")",
		}
	}

	// 로그 레벨 검증
	validLogLevels := map[string]bool{
		constants.LogLevelDebug: true,
		constants.LogLevelInfo:  true,
		constants.LogLevelWarn:  true,
		constants.LogLevelError: true,
	}
	if !validLogLevels[strings.ToUpper(c.Logging.Level)] {
		return &ConfigError{
			Field:   "Logging.Level",
			Message: "LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR (got: " + c.Logging.Level + ")",
		}
	}

	if c.Telemetry.Enabled && c.Telemetry.ProjectID == "" {
		return &ConfigError{
			Field:   "Telemetry.ProjectID",
			Message: "GOOGLE_CLOUD_PROJECT is required when TELEMETRY_ENABLED is set",
		}
	}

	return nil
}

// IsDebugMode 디버그 모드 여부를 반환합니다
func (c *Config) IsDebugMode() bool {
	return c.Logging.DebugMode || strings.ToUpper(c.Logging.Level) == constants.LogLevelDebug
}

// DiscordEnabled Discord 봇 실행 여부를 반환합니다
func (c *Config) DiscordEnabled() bool {
	return c.Discord.Token != ""
}

// Location 집계에 사용할 시간대를 반환합니다. 미설정 시 time.Local입니다.
func (c *Config) Location() *time.Location {
	if c.Sync.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StoreScheme 저장소 URL의 스킴을 반환합니다. 빈 URL은 memory입니다.
func StoreScheme(storeURL string) string {
	if storeURL == "" {
		return "memory"
	}
	idx := strings.Index(storeURL, ":")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(storeURL[:idx])
}

// ConfigError 설정 관련 오류를 나타냅니다
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in " + e.Field + ": " + e.Message
}

// 헬퍼 함수들
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
