package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UserProfile 추적 중인 사용자의 최신 프로필 스냅샷을 표현합니다
type UserProfile struct {
	Handle             string             `json:"username" firestore:"handle"`
	DisplayName        string             `json:"name,omitempty" firestore:"displayName"`
	GlobalRank         *int               `json:"ranking" firestore:"globalRank"`
	TotalSolved        int                `json:"totalSolved" firestore:"totalSolved"`
	EasySolved         int                `json:"easySolved" firestore:"easySolved"`
	MediumSolved       int                `json:"mediumSolved" firestore:"mediumSolved"`
	HardSolved         int                `json:"hardSolved" firestore:"hardSolved"`
	SubmissionCalendar SubmissionCalendar `json:"submissionCalendar" firestore:"submissionCalendar"`
	CreatedAt          time.Time          `json:"createdAt" firestore:"createdAt"`
}

// Key 저장소에서 사용하는 대소문자 무시 키를 반환합니다
func (p *UserProfile) Key() string {
	return HandleKey(p.Handle)
}

// HandleKey 핸들을 정규화한 저장소 키를 반환합니다
func HandleKey(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// NewUserProfile 스냅샷으로부터 새 프로필을 생성합니다
func NewUserProfile(handle string, snapshot *ProfileSnapshot, createdAt time.Time) *UserProfile {
	profile := &UserProfile{
		Handle:    strings.TrimSpace(handle),
		CreatedAt: createdAt,
	}
	profile.ApplySnapshot(snapshot)
	return profile
}

// ApplySnapshot 스냅샷 필드와 제출 캘린더를 통째로 교체합니다.
// Handle과 CreatedAt은 바뀌지 않습니다.
func (p *UserProfile) ApplySnapshot(snapshot *ProfileSnapshot) {
	if snapshot == nil {
		return
	}
	if snapshot.DisplayName != "" {
		p.DisplayName = snapshot.DisplayName
	}
	p.GlobalRank = copyIntPtr(snapshot.GlobalRank)
	p.TotalSolved = nonNegative(snapshot.TotalSolved)
	p.EasySolved = nonNegative(snapshot.EasySolved)
	p.MediumSolved = nonNegative(snapshot.MediumSolved)
	p.HardSolved = nonNegative(snapshot.HardSolved)
	p.SubmissionCalendar = snapshot.SubmissionCalendar.Clone()
}

// ApplyPatch 지정된 필드만 갱신합니다
func (p *UserProfile) ApplyPatch(patch *ProfilePatch) {
	if patch == nil {
		return
	}
	if patch.DisplayName != nil {
		p.DisplayName = *patch.DisplayName
	}
	if patch.GlobalRank != nil {
		p.GlobalRank = copyIntPtr(patch.GlobalRank)
	}
	if patch.TotalSolved != nil {
		p.TotalSolved = nonNegative(*patch.TotalSolved)
	}
	if patch.EasySolved != nil {
		p.EasySolved = nonNegative(*patch.EasySolved)
	}
	if patch.MediumSolved != nil {
		p.MediumSolved = nonNegative(*patch.MediumSolved)
	}
	if patch.HardSolved != nil {
		p.HardSolved = nonNegative(*patch.HardSolved)
	}
	if patch.SubmissionCalendar != nil {
		p.SubmissionCalendar = patch.SubmissionCalendar.Clone()
	}
}

// Clone 프로필의 깊은 복사본을 반환합니다
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.GlobalRank = copyIntPtr(p.GlobalRank)
	c.SubmissionCalendar = p.SubmissionCalendar.Clone()
	return &c
}

// ProfilePatch 부분 업데이트 요청입니다. nil 필드는 유지됩니다.
type ProfilePatch struct {
	DisplayName        *string            `json:"name,omitempty"`
	GlobalRank         *int               `json:"ranking,omitempty"`
	TotalSolved        *int               `json:"totalSolved,omitempty"`
	EasySolved         *int               `json:"easySolved,omitempty"`
	MediumSolved       *int               `json:"mediumSolved,omitempty"`
	HardSolved         *int               `json:"hardSolved,omitempty"`
	SubmissionCalendar SubmissionCalendar `json:"submissionCalendar,omitempty"`
}

// ProfileSnapshot 외부 프로필 API 한 번의 응답입니다
type ProfileSnapshot struct {
	Username           string             `json:"username"`
	DisplayName        string             `json:"name"`
	GlobalRank         *int               `json:"ranking"`
	TotalSolved        int                `json:"totalSolved"`
	EasySolved         int                `json:"easySolved"`
	MediumSolved       int                `json:"mediumSolved"`
	HardSolved         int                `json:"hardSolved"`
	SubmissionCalendar SubmissionCalendar `json:"submissionCalendar"`
}

// SubmissionCalendar 에포크 초(일 단위) 키와 제출 수의 희소 매핑입니다
type SubmissionCalendar map[string]int

// CalendarEntry 파싱된 캘린더 항목입니다
type CalendarEntry struct {
	Timestamp int64
	Count     int
}

// CalendarKey 시각을 캘린더 키(에포크 초 문자열)로 변환합니다
func CalendarKey(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}

// Time 항목의 시각을 loc 기준으로 반환합니다
func (e CalendarEntry) Time(loc *time.Location) time.Time {
	return time.Unix(e.Timestamp, 0).In(loc)
}

// UnmarshalJSON 객체 형태와 JSON 문자열로 인코딩된 객체 형태를 모두 받습니다
func (c *SubmissionCalendar) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "\"") {
		var encoded string
		if err := json.Unmarshal(data, &encoded); err != nil {
			return fmt.Errorf("submission calendar string: %w", err)
		}
		if strings.TrimSpace(encoded) == "" {
			*c = SubmissionCalendar{}
			return nil
		}
		data = []byte(encoded)
	}

	raw := make(map[string]json.Number)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("submission calendar: %w", err)
	}

	cal := make(SubmissionCalendar, len(raw))
	for key, value := range raw {
		n, err := value.Int64()
		if err != nil {
			return fmt.Errorf("submission calendar count for %q: %w", key, err)
		}
		cal[key] = int(n)
	}
	*c = cal
	return nil
}

// Entries 파싱 가능한 항목을 시간 오름차순으로 반환합니다.
// 파싱할 수 없는 키는 건너뛰고 음수 카운트는 0으로 보정합니다.
func (c SubmissionCalendar) Entries() []CalendarEntry {
	entries := make([]CalendarEntry, 0, len(c))
	for key, count := range c {
		ts, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, CalendarEntry{Timestamp: ts, Count: nonNegative(count)})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	return entries
}

// Total 모든 항목의 제출 수 합계를 반환합니다
func (c SubmissionCalendar) Total() int {
	total := 0
	for _, e := range c.Entries() {
		total += e.Count
	}
	return total
}

// Clone 캘린더 복사본을 반환합니다
func (c SubmissionCalendar) Clone() SubmissionCalendar {
	if c == nil {
		return SubmissionCalendar{}
	}
	out := make(SubmissionCalendar, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
