package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/stats"
)

// Window 리더보드 집계 기간입니다
type Window struct {
	Label string
	Days  int
}

var (
	WindowWeek  = Window{Label: "7d", Days: constants.LeaderboardWindowWeek}
	WindowMonth = Window{Label: "30d", Days: constants.LeaderboardWindowMonth}
)

// ParseWindow "7d" 또는 "30d"를 Window로 변환합니다. 빈 문자열은 7d입니다.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", WindowWeek.Label, "week", "7":
		return WindowWeek, nil
	case WindowMonth.Label, "month", "30":
		return WindowMonth, nil
	default:
		return Window{}, errors.NewValidationError("INVALID_WINDOW",
			"unsupported leaderboard window: "+s, constants.MsgWindowInvalid)
	}
}

// LeaderboardEntry 리더보드 한 줄입니다
type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	Handle       string `json:"username"`
	DisplayName  string `json:"name,omitempty"`
	WindowCount  int    `json:"windowCount"`
	TotalSolved  int    `json:"totalSolved"`
	GlobalRank   *int   `json:"ranking"`
	EasySolved   int    `json:"easySolved"`
	MediumSolved int    `json:"mediumSolved"`
	HardSolved   int    `json:"hardSolved"`
}

// BuildLeaderboard 기간 내 제출 수 내림차순, 총 해결 수 내림차순, 핸들 오름차순으로 정렬합니다.
// 동점은 같은 순위를 받고 다음 순위는 건너뜁니다.
func BuildLeaderboard(profiles []*models.UserProfile, window Window, now time.Time) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(profiles))
	for _, p := range profiles {
		if p == nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Handle:       p.Handle,
			DisplayName:  p.DisplayName,
			WindowCount:  stats.WindowedCount(p.SubmissionCalendar, window.Days, now),
			TotalSolved:  p.TotalSolved,
			GlobalRank:   p.GlobalRank,
			EasySolved:   p.EasySolved,
			MediumSolved: p.MediumSolved,
			HardSolved:   p.HardSolved,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.WindowCount != b.WindowCount {
			return a.WindowCount > b.WindowCount
		}
		if a.TotalSolved != b.TotalSolved {
			return a.TotalSolved > b.TotalSolved
		}
		return models.HandleKey(a.Handle) < models.HandleKey(b.Handle)
	})

	for i := range entries {
		if i > 0 && sameScore(entries[i], entries[i-1]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
	}
	return entries
}

func sameScore(a, b LeaderboardEntry) bool {
	return a.WindowCount == b.WindowCount && a.TotalSolved == b.TotalSolved
}

// TopN 상위 n개 항목을 반환합니다. n이 0 이하이면 전체를 반환합니다.
func TopN(entries []LeaderboardEntry, n int) []LeaderboardEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}
