package stats

import (
	"time"

	"github.com/Janmenjay30/CodeCircle/models"
)

// HourBucket 하루 중 시간대 구분입니다
type HourBucket int

const (
	BucketMorning   HourBucket = iota // [5,12)
	BucketAfternoon                   // [12,17)
	BucketNight                       // [17,24) ∪ [0,2)
	BucketLateNight                   // [2,5)
)

func (b HourBucket) String() string {
	switch b {
	case BucketMorning:
		return "Morning"
	case BucketAfternoon:
		return "Afternoon"
	case BucketNight:
		return "Night"
	default:
		return "LateNight"
	}
}

// ClassifyHour 0-23시를 정확히 하나의 시간대로 분류합니다.
// 범위를 벗어난 값은 24로 나눈 나머지로 처리합니다.
func ClassifyHour(hour int) HourBucket {
	hour = ((hour % 24) + 24) % 24
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 2 && hour < 5:
		return BucketLateNight
	default:
		return BucketNight
	}
}

// HourBuckets 시간대별 제출 합계입니다
type HourBuckets struct {
	Morning   int `json:"morning"`
	Afternoon int `json:"afternoon"`
	Night     int `json:"night"`
	LateNight int `json:"lateNight"`
}

// Total 모든 시간대 합계를 반환합니다
func (h HourBuckets) Total() int {
	return h.Morning + h.Afternoon + h.Night + h.LateNight
}

func (h *HourBuckets) add(bucket HourBucket, count int) {
	switch bucket {
	case BucketMorning:
		h.Morning += count
	case BucketAfternoon:
		h.Afternoon += count
	case BucketNight:
		h.Night += count
	case BucketLateNight:
		h.LateNight += count
	}
}

// HourOfDayBuckets 각 항목을 loc 기준 시각으로 분류해 시간대별로 합산합니다
func HourOfDayBuckets(cal models.SubmissionCalendar, loc *time.Location) HourBuckets {
	var buckets HourBuckets
	for _, e := range cal.Entries() {
		buckets.add(ClassifyHour(e.Time(loc).Hour()), e.Count)
	}
	return buckets
}
