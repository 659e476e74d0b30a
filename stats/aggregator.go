package stats

import (
	"sort"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
)

// WeekdayCount 요일별 제출 합계입니다
type WeekdayCount struct {
	Weekday string `json:"day"`
	Count   int    `json:"count"`
}

var weekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// WindowedCount now로부터 days일 이내(ts >= now - days*86400)의 제출 수를 합산합니다
func WindowedCount(cal models.SubmissionCalendar, days int, now time.Time) int {
	cutoff := now.Unix() - int64(days)*constants.SecondsPerDay
	total := 0
	for _, e := range cal.Entries() {
		if e.Timestamp >= cutoff {
			total += e.Count
		}
	}
	return total
}

// WeekdayHistogram 요일별 제출 수를 일요일부터 7개 버킷으로 반환합니다
func WeekdayHistogram(cal models.SubmissionCalendar, loc *time.Location) []WeekdayCount {
	var sums [7]int
	for _, e := range cal.Entries() {
		sums[e.Time(loc).Weekday()] += e.Count
	}

	out := make([]WeekdayCount, len(weekdayLabels))
	for i, label := range weekdayLabels {
		out[i] = WeekdayCount{Weekday: label, Count: sums[i]}
	}
	return out
}

// CumulativePoint 날짜별 누적 제출 수입니다
type CumulativePoint struct {
	Date  string `json:"date"`
	Total int    `json:"cumulative"`
}

// dailyTotals 캘린더를 loc 기준 날짜(YYYY-MM-DD)별로 묶어 오름차순 날짜 목록과 합계를 반환합니다
func dailyTotals(cal models.SubmissionCalendar, loc *time.Location) ([]string, map[string]int) {
	totals := make(map[string]int)
	for _, e := range cal.Entries() {
		totals[e.Time(loc).Format(constants.DateFormat)] += e.Count
	}

	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)
	return days, totals
}

// CumulativeSeries 날짜별 누적 제출 곡선을 반환합니다
func CumulativeSeries(cal models.SubmissionCalendar, loc *time.Location) []CumulativePoint {
	days, totals := dailyTotals(cal, loc)

	out := make([]CumulativePoint, 0, len(days))
	running := 0
	for _, day := range days {
		running += totals[day]
		out = append(out, CumulativePoint{Date: day, Total: running})
	}
	return out
}

// MultiUserPoint 공통 날짜 축의 한 행입니다. Totals는 핸들별 누적 제출 수입니다.
type MultiUserPoint struct {
	Date   string         `json:"date"`
	Totals map[string]int `json:"totals"`
}

// MultiUserCumulativeSeries 여러 사용자의 누적 곡선을 하나의 날짜 축으로 합칩니다.
// 어떤 사용자의 캘린더에든 등장한 날짜마다 모든 사용자가 값을 가지며,
// 활동이 없는 날에는 직전 누적값을 그대로 이어갑니다.
func MultiUserCumulativeSeries(profiles []*models.UserProfile, loc *time.Location) []MultiUserPoint {
	perUser := make([]map[string]int, len(profiles))
	axis := make(map[string]struct{})

	for i, p := range profiles {
		days, totals := dailyTotals(p.SubmissionCalendar, loc)
		perUser[i] = totals
		for _, day := range days {
			axis[day] = struct{}{}
		}
	}

	dates := make([]string, 0, len(axis))
	for day := range axis {
		dates = append(dates, day)
	}
	sort.Strings(dates)

	running := make([]int, len(profiles))
	out := make([]MultiUserPoint, 0, len(dates))
	for _, day := range dates {
		row := MultiUserPoint{Date: day, Totals: make(map[string]int, len(profiles))}
		for i, p := range profiles {
			running[i] += perUser[i][day]
			row.Totals[p.Handle] = running[i]
		}
		out = append(out, row)
	}
	return out
}
