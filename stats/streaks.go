package stats

import (
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
)

// StreakStats 연속 활동 통계입니다
type StreakStats struct {
	WindowDays            int `json:"windowDays"`
	CurrentStreak         int `json:"currentStreak"`
	LongestStreak         int `json:"longestStreak"`
	DaysSinceLastActivity int `json:"daysSinceLastActivity"`
	TotalInactiveDays     int `json:"totalInactiveDays"`
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

// Streaks reference 날짜부터 windowDays일 동안 하루씩 거슬러 올라가며 연속 기록을 계산합니다.
// 날짜 경계는 reference의 시간대를 따르고, 캘린더 항목이 하나라도 있는 날이 활동일입니다.
// windowDays가 0 이하이면 365일을 사용합니다.
func Streaks(cal models.SubmissionCalendar, reference time.Time, windowDays int) StreakStats {
	if windowDays <= 0 {
		windowDays = constants.DefaultStreakWindow
	}
	loc := reference.Location()

	active := make(map[civilDate]bool)
	for _, e := range cal.Entries() {
		active[dateOf(e.Time(loc))] = true
	}

	stats := StreakStats{
		WindowDays:            windowDays,
		DaysSinceLastActivity: windowDays,
	}
	y, m, d := reference.Date()
	run := 0
	currentOpen := true
	foundActivity := false

	for offset := 0; offset < windowDays; offset++ {
		// 정오 기준으로 날짜를 만들어 DST 전환에도 하루씩 정확히 이동
		day := dateOf(time.Date(y, m, d-offset, 12, 0, 0, 0, loc))

		if active[day] {
			run++
			if currentOpen {
				stats.CurrentStreak++
			}
			if !foundActivity {
				stats.DaysSinceLastActivity = offset
				foundActivity = true
			}
			if run > stats.LongestStreak {
				stats.LongestStreak = run
			}
			continue
		}

		currentOpen = false
		run = 0
		stats.TotalInactiveDays++
	}

	return stats
}
