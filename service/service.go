package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scoring"
	"github.com/Janmenjay30/CodeCircle/stats"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/coder/quartz"
)

// 등록 결과 (메트릭 라벨)
const (
	OutcomeRegistered  = "registered"
	OutcomeDuplicate   = "duplicate"
	OutcomeInvalid     = "invalid"
	OutcomeFetchFailed = "fetch_failed"
	OutcomeStoreFailed = "store_failed"
)

// RegistrationRecorder 등록 결과를 기록하는 대상입니다
type RegistrationRecorder interface {
	RecordRegistration(ctx context.Context, outcome string)
}

// Options ProfileService 설정
type Options struct {
	Clock    quartz.Clock
	Location *time.Location
	Recorder RegistrationRecorder
}

// ProfileService 등록과 프로필 조회, 분석 화면 데이터를 제공합니다
type ProfileService struct {
	store    interfaces.ProfileStore
	fetcher  interfaces.ProfileFetcher
	clock    quartz.Clock
	location *time.Location
	recorder RegistrationRecorder
}

// Comparison 여러 사용자 비교 화면 데이터
type Comparison struct {
	Series []stats.MultiUserPoint `json:"series"`
	Users  []stats.Analytics      `json:"users"`
}

// NewProfileService 새로운 ProfileService를 생성합니다
func NewProfileService(store interfaces.ProfileStore, fetcher interfaces.ProfileFetcher, opts Options) *ProfileService {
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &ProfileService{
		store:    store,
		fetcher:  fetcher,
		clock:    opts.Clock,
		location: opts.Location,
		recorder: opts.Recorder,
	}
}

// Location 날짜 경계에 사용하는 시간대를 반환합니다
func (s *ProfileService) Location() *time.Location {
	return s.location
}

// Register 핸들을 등록합니다. 이미 있는 핸들은 네트워크 호출 없이 거부됩니다.
func (s *ProfileService) Register(ctx context.Context, handle string) (*models.UserProfile, error) {
	profile, err := s.register(ctx, handle)
	s.record(ctx, registrationOutcome(err))
	return profile, err
}

func (s *ProfileService) register(ctx context.Context, handle string) (*models.UserProfile, error) {
	handle, err := validateHandle(handle)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetProfile(ctx, models.HandleKey(handle))
	switch {
	case err == nil && existing != nil:
		return nil, errors.NewDuplicateError("DUPLICATE_HANDLE",
			fmt.Sprintf("handle %s already registered as %s", handle, existing.Handle), constants.MsgHandleDuplicate)
	case err != nil && !errors.IsType(err, errors.TypeNotFound):
		return nil, err
	}

	snapshot, err := s.fetcher.FetchProfile(ctx, handle)
	if err != nil {
		return nil, asFetchError(handle, err)
	}

	profile := models.NewUserProfile(handle, snapshot, s.clock.Now())
	if err := s.store.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	utils.Info("Registered %s (total solved: %d)", profile.Handle, profile.TotalSolved)
	return profile, nil
}

// UpdateProfile 지정된 필드만 바꿔 저장합니다. 없는 핸들이면 새로 만듭니다.
func (s *ProfileService) UpdateProfile(ctx context.Context, handle string, patch *models.ProfilePatch) (*models.UserProfile, error) {
	handle, err := validateHandle(handle)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, models.HandleKey(handle))
	if errors.IsType(err, errors.TypeNotFound) {
		profile = &models.UserProfile{
			Handle:             handle,
			SubmissionCalendar: models.SubmissionCalendar{},
			CreatedAt:          s.clock.Now(),
		}
	} else if err != nil {
		return nil, err
	}

	profile.ApplyPatch(patch)
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfiles 모든 프로필을 반환합니다
func (s *ProfileService) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	return s.store.ListProfiles(ctx)
}

// FilterProfiles 쉼표로 구분된 핸들 목록에 해당하는 프로필을 입력 순서대로 반환합니다.
// 등록되지 않은 핸들은 무시합니다.
func (s *ProfileService) FilterProfiles(ctx context.Context, csv string) ([]*models.UserProfile, error) {
	handles := utils.SplitHandles(csv)
	if len(handles) == 0 {
		return []*models.UserProfile{}, nil
	}

	all, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.UserProfile, len(all))
	for _, p := range all {
		byKey[p.Key()] = p
	}

	out := make([]*models.UserProfile, 0, len(handles))
	for _, handle := range handles {
		if p, ok := byKey[models.HandleKey(handle)]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Preview 저장하지 않고 외부 API의 현재 프로필을 조회합니다
func (s *ProfileService) Preview(ctx context.Context, handle string) (*models.ProfileSnapshot, error) {
	handle, err := validateHandle(handle)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.fetcher.FetchProfile(ctx, handle)
	if err != nil {
		return nil, asFetchError(handle, err)
	}
	return snapshot, nil
}

// Leaderboard 기간 내 제출 수 기준 순위표를 반환합니다
func (s *ProfileService) Leaderboard(ctx context.Context, window scoring.Window, limit int) ([]scoring.LeaderboardEntry, error) {
	profiles, err := s.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultLeaderboardSize
	}
	entries := scoring.BuildLeaderboard(profiles, window, s.clock.Now())
	return scoring.TopN(entries, limit), nil
}

// Analytics 한 사용자의 분석 화면 데이터를 계산합니다
func (s *ProfileService) Analytics(ctx context.Context, handle string) (*stats.Analytics, error) {
	handle, err := validateHandle(handle)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, models.HandleKey(handle))
	if err != nil {
		return nil, err
	}

	analytics := stats.Summarize(profile, s.clock.Now(), s.location)
	return &analytics, nil
}

// Compare 여러 사용자의 누적 곡선과 개별 분석을 함께 계산합니다
func (s *ProfileService) Compare(ctx context.Context, csv string) (*Comparison, error) {
	handles := utils.SplitHandles(csv)
	if len(handles) == 0 {
		return nil, errors.NewValidationError("EMPTY_COMPARE",
			"no handles to compare", "비교할 핸들을 하나 이상 입력해주세요.")
	}
	if len(handles) > constants.MaxCompareUsers {
		return nil, errors.NewValidationError("TOO_MANY_HANDLES",
			fmt.Sprintf("%d handles exceeds limit %d", len(handles), constants.MaxCompareUsers),
			fmt.Sprintf("최대 %d명까지 비교할 수 있습니다.", constants.MaxCompareUsers))
	}

	profiles, err := s.FilterProfiles(ctx, csv)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.NewNotFoundError("PROFILE_NOT_FOUND",
			fmt.Sprintf("none of %v are registered", handles), constants.MsgProfileNotFound)
	}

	now := s.clock.Now()
	users := make([]stats.Analytics, 0, len(profiles))
	for _, p := range profiles {
		users = append(users, stats.Summarize(p, now, s.location))
	}

	return &Comparison{
		Series: stats.MultiUserCumulativeSeries(profiles, s.location),
		Users:  users,
	}, nil
}

func (s *ProfileService) record(ctx context.Context, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordRegistration(ctx, outcome)
	}
}

func validateHandle(handle string) (string, error) {
	handle = utils.NormalizeHandle(handle)
	if handle == "" {
		return "", errors.NewValidationError("EMPTY_HANDLE", "handle is empty", constants.MsgRegisterUsage)
	}
	if !utils.IsValidHandle(handle) {
		return "", errors.NewValidationError("INVALID_HANDLE",
			fmt.Sprintf("invalid handle format: %q", handle), constants.MsgHandleInvalid)
	}
	return handle, nil
}

// asFetchError 조회 오류를 FetchFailed로 맞춥니다. 이미 분류된 오류는 그대로 둡니다.
func asFetchError(handle string, err error) error {
	if errors.IsType(err, errors.TypeFetchFailed) || errors.IsType(err, errors.TypeValidation) {
		return err
	}
	return errors.NewFetchError("PROFILE_FETCH_FAILED", fmt.Sprintf("failed to fetch profile for %s", handle), err)
}

func registrationOutcome(err error) string {
	if err == nil {
		return OutcomeRegistered
	}
	switch errors.TypeOf(err) {
	case errors.TypeDuplicate:
		return OutcomeDuplicate
	case errors.TypeValidation:
		return OutcomeInvalid
	case errors.TypeFetchFailed:
		return OutcomeFetchFailed
	default:
		return OutcomeStoreFailed
	}
}
