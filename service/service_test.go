package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scoring"
	"github.com/Janmenjay30/CodeCircle/storage"
	"github.com/coder/quartz"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubFetcher struct {
	mu        sync.Mutex
	snapshots map[string]*models.ProfileSnapshot
	calls     []string
}

func (f *stubFetcher) FetchProfile(ctx context.Context, handle string) (*models.ProfileSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, handle)
	if snapshot, ok := f.snapshots[handle]; ok {
		return snapshot, nil
	}
	return nil, errors.NewFetchError("PROFILE_FETCH_FAILED", "upstream 404", nil)
}

type recorderFunc func(outcome string)

func (r recorderFunc) RecordRegistration(ctx context.Context, outcome string) { r(outcome) }

func day(offset int) string {
	d := time.Date(testNow.Year(), testNow.Month(), testNow.Day()-offset, 0, 0, 0, 0, time.UTC)
	return models.CalendarKey(d)
}

func newTestService(t *testing.T, fetcher *stubFetcher, recorder RegistrationRecorder) (*ProfileService, *storage.InMemoryStorage) {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(testNow)
	store := storage.NewInMemoryStorage()
	return NewProfileService(store, fetcher, Options{Clock: clock, Location: time.UTC, Recorder: recorder}), store
}

func TestRegisterSuccess(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.ProfileSnapshot{
		"Foo": {Username: "Foo", TotalSolved: 12, SubmissionCalendar: models.SubmissionCalendar{day(0): 2}},
	}}
	var outcomes []string
	svc, store := newTestService(t, fetcher, recorderFunc(func(o string) { outcomes = append(outcomes, o) }))

	profile, err := svc.Register(context.Background(), "  Foo ")
	if err != nil {
		t.Fatalf("Register 실패: %v", err)
	}

	if profile.Handle != "Foo" || profile.TotalSolved != 12 {
		t.Errorf("예상치 못한 프로필: %+v", profile)
	}
	if !profile.CreatedAt.Equal(testNow) {
		t.Errorf("생성 시각은 주입된 시계를 따라야 합니다: %v", profile.CreatedAt)
	}
	if _, err := store.GetProfile(context.Background(), "foo"); err != nil {
		t.Errorf("저장소에 프로필이 있어야 합니다: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0] != OutcomeRegistered {
		t.Errorf("등록 결과 기록 %v", outcomes)
	}
}

func TestRegisterDuplicateIsCaseInsensitive(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.ProfileSnapshot{
		"Foo": {Username: "Foo", TotalSolved: 1},
		"foo": {Username: "foo", TotalSolved: 1},
	}}
	svc, _ := newTestService(t, fetcher, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Foo"); err != nil {
		t.Fatalf("첫 등록 실패: %v", err)
	}

	_, err := svc.Register(ctx, "foo")
	if !errors.IsType(err, errors.TypeDuplicate) {
		t.Fatalf("Duplicate 오류 예상, 실제 %v", err)
	}
	if len(fetcher.calls) != 1 {
		t.Errorf("중복 핸들은 외부 API를 호출하면 안 됩니다. 호출: %v", fetcher.calls)
	}
}

func TestRegisterValidation(t *testing.T) {
	fetcher := &stubFetcher{}
	svc, _ := newTestService(t, fetcher, nil)

	for _, handle := range []string{"", "   ", "no spaces", "root", "a/b"} {
		_, err := svc.Register(context.Background(), handle)
		if !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("%q: Validation 오류 예상, 실제 %v", handle, err)
		}
	}
	if len(fetcher.calls) != 0 {
		t.Errorf("잘못된 핸들은 외부 API를 호출하면 안 됩니다: %v", fetcher.calls)
	}
}

func TestRegisterFetchFailure(t *testing.T) {
	var outcomes []string
	svc, store := newTestService(t, &stubFetcher{}, recorderFunc(func(o string) { outcomes = append(outcomes, o) }))

	_, err := svc.Register(context.Background(), "ghost")
	if !errors.IsType(err, errors.TypeFetchFailed) {
		t.Fatalf("FetchFailed 오류 예상, 실제 %v", err)
	}

	profiles, _ := store.ListProfiles(context.Background())
	if len(profiles) != 0 {
		t.Errorf("실패한 등록은 레코드를 남기면 안 됩니다: %v", profiles)
	}
	if len(outcomes) != 1 || outcomes[0] != OutcomeFetchFailed {
		t.Errorf("등록 결과 기록 %v", outcomes)
	}
}

func TestUpdateProfile(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.ProfileSnapshot{
		"alice": {Username: "alice", DisplayName: "Alice", TotalSolved: 5},
	}}
	svc, _ := newTestService(t, fetcher, nil)
	ctx := context.Background()
	svc.Register(ctx, "alice")

	total := 9
	updated, err := svc.UpdateProfile(ctx, "ALICE", &models.ProfilePatch{TotalSolved: &total})
	if err != nil {
		t.Fatalf("UpdateProfile 실패: %v", err)
	}
	if updated.TotalSolved != 9 || updated.DisplayName != "Alice" {
		t.Errorf("지정한 필드만 바뀌어야 합니다: %+v", updated)
	}

	created, err := svc.UpdateProfile(ctx, "bob", &models.ProfilePatch{TotalSolved: &total})
	if err != nil {
		t.Fatalf("없는 핸들 UpdateProfile 실패: %v", err)
	}
	if created.Handle != "bob" || !created.CreatedAt.Equal(testNow) {
		t.Errorf("없는 핸들은 새로 만들어져야 합니다: %+v", created)
	}
}

func TestFilterProfiles(t *testing.T) {
	svc, store := newTestService(t, &stubFetcher{}, nil)
	ctx := context.Background()
	for _, h := range []string{"alice", "Bob", "carol"} {
		store.CreateProfile(ctx, &models.UserProfile{Handle: h})
	}

	got, err := svc.FilterProfiles(ctx, "carol, bob ,nobody,,ALICE,carol")
	if err != nil {
		t.Fatalf("FilterProfiles 실패: %v", err)
	}

	want := []string{"carol", "Bob", "alice"}
	if len(got) != len(want) {
		t.Fatalf("%d개 예상, 실제 %d개", len(want), len(got))
	}
	for i, p := range got {
		if p.Handle != want[i] {
			t.Errorf("위치 %d: %s 예상, 실제 %s", i, want[i], p.Handle)
		}
	}

	empty, _ := svc.FilterProfiles(ctx, " , ")
	if empty == nil || len(empty) != 0 {
		t.Errorf("빈 목록은 빈 슬라이스여야 합니다: %v", empty)
	}
}

func TestPreviewDoesNotStore(t *testing.T) {
	fetcher := &stubFetcher{snapshots: map[string]*models.ProfileSnapshot{
		"alice": {Username: "alice", TotalSolved: 5},
	}}
	svc, store := newTestService(t, fetcher, nil)

	snapshot, err := svc.Preview(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Preview 실패: %v", err)
	}
	if snapshot.TotalSolved != 5 {
		t.Errorf("예상치 못한 스냅샷: %+v", snapshot)
	}

	if _, err := store.GetProfile(context.Background(), "alice"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("Preview는 저장하면 안 됩니다: %v", err)
	}
}

func TestLeaderboard(t *testing.T) {
	svc, store := newTestService(t, &stubFetcher{}, nil)
	ctx := context.Background()

	store.CreateProfile(ctx, &models.UserProfile{Handle: "old", TotalSolved: 100,
		SubmissionCalendar: models.SubmissionCalendar{day(20): 50}})
	store.CreateProfile(ctx, &models.UserProfile{Handle: "recent", TotalSolved: 10,
		SubmissionCalendar: models.SubmissionCalendar{day(1): 4, day(2): 3}})

	week, err := svc.Leaderboard(ctx, scoring.WindowWeek, 0)
	if err != nil {
		t.Fatalf("Leaderboard 실패: %v", err)
	}
	if week[0].Handle != "recent" || week[0].WindowCount != 7 {
		t.Errorf("7일 기준 1위는 recent(7)이어야 합니다: %+v", week[0])
	}

	month, _ := svc.Leaderboard(ctx, scoring.WindowMonth, 1)
	if len(month) != 1 || month[0].Handle != "old" {
		t.Errorf("30일 기준 1위는 old여야 합니다: %+v", month)
	}
}

func TestAnalytics(t *testing.T) {
	svc, store := newTestService(t, &stubFetcher{}, nil)
	ctx := context.Background()
	store.CreateProfile(ctx, &models.UserProfile{Handle: "alice", TotalSolved: 3,
		SubmissionCalendar: models.SubmissionCalendar{day(0): 3, day(1): 2}})

	analytics, err := svc.Analytics(ctx, "Alice")
	if err != nil {
		t.Fatalf("Analytics 실패: %v", err)
	}
	if analytics.TotalSubmissions != 5 || analytics.Last7Days != 5 {
		t.Errorf("예상치 못한 합계: %+v", analytics)
	}
	if analytics.Streaks.CurrentStreak != 2 {
		t.Errorf("현재 연속 기록 2 예상, 실제 %d", analytics.Streaks.CurrentStreak)
	}

	if _, err := svc.Analytics(ctx, "nobody"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("NotFound 예상, 실제 %v", err)
	}
}

func TestCompare(t *testing.T) {
	svc, store := newTestService(t, &stubFetcher{}, nil)
	ctx := context.Background()
	store.CreateProfile(ctx, &models.UserProfile{Handle: "a",
		SubmissionCalendar: models.SubmissionCalendar{day(2): 1, day(0): 2}})
	store.CreateProfile(ctx, &models.UserProfile{Handle: "b",
		SubmissionCalendar: models.SubmissionCalendar{day(1): 4}})

	cmp, err := svc.Compare(ctx, "a,b,ghost")
	if err != nil {
		t.Fatalf("Compare 실패: %v", err)
	}

	if len(cmp.Users) != 2 {
		t.Errorf("등록된 사용자 2명 예상, 실제 %d", len(cmp.Users))
	}
	if len(cmp.Series) != 3 {
		t.Fatalf("3개 날짜 예상, 실제 %d", len(cmp.Series))
	}

	last := cmp.Series[2]
	if last.Totals["a"] != 3 || last.Totals["b"] != 4 {
		t.Errorf("마지막 행은 a=3, b=4여야 합니다: %v", last.Totals)
	}

	if _, err := svc.Compare(ctx, ""); !errors.IsType(err, errors.TypeValidation) {
		t.Errorf("빈 목록은 Validation 오류여야 합니다: %v", err)
	}
	if _, err := svc.Compare(ctx, "ghost"); !errors.IsType(err, errors.TypeNotFound) {
		t.Errorf("등록된 사용자가 없으면 NotFound여야 합니다: %v", err)
	}
}
