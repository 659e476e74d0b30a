package stats

import (
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
)

// Analytics 한 사용자의 분석 화면 데이터입니다
type Analytics struct {
	Handle           string                   `json:"username"`
	DisplayName      string                   `json:"name,omitempty"`
	GlobalRank       *int                     `json:"ranking"`
	TotalSolved      int                      `json:"totalSolved"`
	Difficulty       []models.DifficultyCount `json:"difficulty"`
	TotalSubmissions int                      `json:"totalSubmissions"`
	Last7Days        int                      `json:"last7Days"`
	Last30Days       int                      `json:"last30Days"`
	Weekdays         []WeekdayCount           `json:"weekdays"`
	Hours            HourBuckets              `json:"hours"`
	Cumulative       []CumulativePoint        `json:"cumulative"`
	Streaks          StreakStats              `json:"streaks"`
}

// Summarize 프로필 하나의 분석 데이터를 한 번에 계산합니다
func Summarize(profile *models.UserProfile, now time.Time, loc *time.Location) Analytics {
	cal := profile.SubmissionCalendar
	return Analytics{
		Handle:           profile.Handle,
		DisplayName:      profile.DisplayName,
		GlobalRank:       profile.GlobalRank,
		TotalSolved:      profile.TotalSolved,
		Difficulty:       profile.SolvedByDifficulty(),
		TotalSubmissions: cal.Total(),
		Last7Days:        WindowedCount(cal, constants.LeaderboardWindowWeek, now),
		Last30Days:       WindowedCount(cal, constants.LeaderboardWindowMonth, now),
		Weekdays:         WeekdayHistogram(cal, loc),
		Hours:            HourOfDayBuckets(cal, loc),
		Cumulative:       CumulativeSeries(cal, loc),
		Streaks:          Streaks(cal, now.In(loc), constants.DefaultStreakWindow),
	}
}
