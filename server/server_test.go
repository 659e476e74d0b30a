package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/health"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scheduler"
	"github.com/Janmenjay30/CodeCircle/service"
	"github.com/Janmenjay30/CodeCircle/storage"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/coder/quartz"
)

type stubFetcher map[string]*models.ProfileSnapshot

func (f stubFetcher) FetchProfile(ctx context.Context, handle string) (*models.ProfileSnapshot, error) {
	if snapshot, ok := f[handle]; ok {
		return snapshot, nil
	}
	return nil, errors.NewFetchError("PROFILE_FETCH_FAILED", "not found upstream", nil)
}

type busyTrigger struct{}

func (busyTrigger) Trigger(ctx context.Context) (*models.SyncReport, error) {
	return nil, syncer.ErrSyncInProgress
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type syncTriggerFunc func(ctx context.Context) (*models.SyncReport, error)

func (f syncTriggerFunc) Trigger(ctx context.Context) (*models.SyncReport, error) { return f(ctx) }

func newTestServer(t *testing.T) (*Server, *storage.InMemoryStorage) {
	t.Helper()

	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC))

	store := storage.NewInMemoryStorage()
	fetcher := stubFetcher{
		"alice": {Username: "alice", TotalSolved: 10, SubmissionCalendar: models.SubmissionCalendar{"1710460800": 2}},
		"bob":   {Username: "bob", TotalSolved: 4, SubmissionCalendar: models.SubmissionCalendar{}},
	}
	svc := service.NewProfileService(store, fetcher, service.Options{Clock: clock, Location: time.UTC})
	runner := syncer.NewSyncer(store, fetcher, syncer.Options{Clock: clock})
	trigger := syncTriggerFunc(func(ctx context.Context) (*models.SyncReport, error) {
		return runner.RunSync(ctx, syncer.TriggerManual)
	})

	return NewServer(svc, trigger, runner, health.NewChecker()), store
}

func doRequest(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewReader([]byte(body))))

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("응답 디코딩 실패: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func TestRootBanner(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || rec.Body.String() != constants.MsgRootBanner {
		t.Errorf("배너 응답 예상, 실제 %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterAndList(t *testing.T) {
	s, _ := newTestServer(t)

	rec, env := doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)
	if rec.Code != http.StatusCreated || !env.Success {
		t.Fatalf("201 예상, 실제 %d %+v", rec.Code, env)
	}

	var profile models.UserProfile
	json.Unmarshal(env.Data, &profile)
	if profile.Handle != "alice" || profile.TotalSolved != 10 {
		t.Errorf("예상치 못한 프로필: %+v", profile)
	}

	rec, env = doRequest(t, s, http.MethodGet, "/api/users", "")
	var profiles []models.UserProfile
	json.Unmarshal(env.Data, &profiles)
	if rec.Code != http.StatusOK || len(profiles) != 1 {
		t.Errorf("프로필 1개 예상, 실제 %d %v", rec.Code, profiles)
	}
}

func TestRegisterErrorMapping(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"duplicate", `{"username":"ALICE"}`, http.StatusConflict, "DUPLICATE_HANDLE"},
		{"empty", `{"username":""}`, http.StatusBadRequest, "EMPTY_HANDLE"},
		{"invalid", `{"username":"not valid"}`, http.StatusBadRequest, "INVALID_HANDLE"},
		{"bad json", `{`, http.StatusBadRequest, "INVALID_BODY"},
		{"upstream missing", `{"username":"ghost"}`, http.StatusBadGateway, "PROFILE_FETCH_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := doRequest(t, s, http.MethodPost, "/api/users", tt.body)
			if rec.Code != tt.status {
				t.Errorf("상태 %d 예상, 실제 %d", tt.status, rec.Code)
			}
			if env.Success || env.Code != tt.code || env.Error == "" {
				t.Errorf("오류 응답이 올바르지 않습니다: %+v", env)
			}
		})
	}
}

func TestFilterUsers(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"bob"}`)

	_, env := doRequest(t, s, http.MethodGet, "/api/users?usernames=bob,nobody", "")
	var profiles []models.UserProfile
	json.Unmarshal(env.Data, &profiles)
	if len(profiles) != 1 || profiles[0].Handle != "bob" {
		t.Errorf("bob만 반환되어야 합니다: %+v", profiles)
	}
}

func TestUpdateUser(t *testing.T) {
	s, store := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)

	rec, _ := doRequest(t, s, http.MethodPut, "/api/users/alice", `{"totalSolved": 42}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("200 예상, 실제 %d", rec.Code)
	}

	p, _ := store.GetProfile(context.Background(), "alice")
	if p.TotalSolved != 42 || len(p.SubmissionCalendar) != 1 {
		t.Errorf("지정한 필드만 바뀌어야 합니다: %+v", p)
	}
}

func TestAnalyticsAndLeaderboard(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)

	rec, _ := doRequest(t, s, http.MethodGet, "/api/users/alice/analytics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("analytics 200 예상, 실제 %d", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/users/nobody/analytics", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("없는 사용자 404 예상, 실제 %d", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/leaderboard?window=30d&limit=5", "")
	if rec.Code != http.StatusOK {
		t.Errorf("leaderboard 200 예상, 실제 %d", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/leaderboard?window=1y", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("잘못된 기간 400 예상, 실제 %d", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/leaderboard?limit=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("잘못된 limit 400 예상, 실제 %d", rec.Code)
	}
}

func TestCompareAndPreview(t *testing.T) {
	s, store := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"bob"}`)

	rec, _ := doRequest(t, s, http.MethodGet, "/api/compare?usernames=alice,bob", "")
	if rec.Code != http.StatusOK {
		t.Errorf("compare 200 예상, 실제 %d", rec.Code)
	}

	rec, _ = doRequest(t, s, http.MethodGet, "/api/users/alice/preview", "")
	if rec.Code != http.StatusOK {
		t.Errorf("preview 200 예상, 실제 %d", rec.Code)
	}

	profiles, _ := store.ListProfiles(context.Background())
	if len(profiles) != 2 {
		t.Errorf("preview는 저장하면 안 됩니다: %d", len(profiles))
	}
}

func TestManualSync(t *testing.T) {
	s, _ := newTestServer(t)
	doRequest(t, s, http.MethodPost, "/api/users", `{"username":"alice"}`)

	rec, env := doRequest(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("200 예상, 실제 %d", rec.Code)
	}

	var view models.SyncReportView
	json.Unmarshal(env.Data, &view)
	if view.Succeeded != 1 || view.Failed != 0 || view.Trigger != syncer.TriggerManual {
		t.Errorf("예상치 못한 보고서: %+v", view)
	}

	_, env = doRequest(t, s, http.MethodGet, "/api/sync/status", "")
	var status SyncStatus
	json.Unmarshal(env.Data, &status)
	if status.Busy || status.LastReport == nil || status.LastReport.RunID != view.RunID {
		t.Errorf("상태에 마지막 보고서가 있어야 합니다: %+v", status)
	}
}

func TestManualSyncWhileBusy(t *testing.T) {
	s, _ := newTestServer(t)
	s.trigger = busyTrigger{}

	rec, env := doRequest(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusConflict || env.Code != "SYNC_IN_PROGRESS" {
		t.Errorf("409 예상, 실제 %d %+v", rec.Code, env)
	}
}

func TestManualSyncAfterSchedulerStopped(t *testing.T) {
	s, _ := newTestServer(t)
	s.trigger = syncTriggerFunc(func(ctx context.Context) (*models.SyncReport, error) {
		return nil, scheduler.ErrSchedulerStopped
	})

	rec, env := doRequest(t, s, http.MethodPost, "/api/sync", "")
	if rec.Code != http.StatusServiceUnavailable || env.Code != "SCHEDULER_STOPPED" {
		t.Errorf("503 예상, 실제 %d %+v", rec.Code, env)
	}
	if env.Success {
		t.Error("종료 중 요청은 실패 응답이어야 합니다")
	}
}

func TestHealthRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec, _ := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("health 200 예상, 실제 %d", rec.Code)
	}
}
