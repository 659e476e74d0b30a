package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scheduler"
	"github.com/Janmenjay30/CodeCircle/scoring"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/gorilla/mux"
)

// maxRequestBytes 요청 본문 최대 크기
const maxRequestBytes = 1 << 20

type registerRequest struct {
	Username string `json:"username"`
}

// SyncStatus 동기화 상태 응답
type SyncStatus struct {
	Busy       bool                   `json:"busy"`
	LastReport *models.SyncReportView `json:"lastReport,omitempty"`
}

func asAppError(err error) (*errors.AppError, bool) {
	var appErr *errors.AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

func decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return errors.NewValidationError("INVALID_BODY", "failed to read body", "요청 본문을 읽을 수 없습니다.")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.NewValidationError("INVALID_BODY",
			fmt.Sprintf("invalid JSON body: %v", err), "요청 본문이 올바른 JSON이 아닙니다.")
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, constants.MsgRootBanner)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		profiles []*models.UserProfile
		err      error
	)
	if csv := r.URL.Query().Get("usernames"); csv != "" {
		profiles, err = s.profiles.FilterProfiles(r.Context(), csv)
	} else {
		profiles, err = s.profiles.ListProfiles(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, profiles)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := s.profiles.Register(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusCreated, profile)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.ProfilePatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, err)
		return
	}

	profile, err := s.profiles.UpdateProfile(r.Context(), mux.Vars(r)["handle"], &patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, profile)
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.profiles.Analytics(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, analytics)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.profiles.Preview(r.Context(), mux.Vars(r)["handle"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, snapshot)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	window, err := scoring.ParseWindow(query.Get("window"))
	if err != nil {
		writeError(w, err)
		return
	}

	limit := constants.DefaultLeaderboardSize
	if raw := query.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			writeError(w, errors.NewValidationError("INVALID_LIMIT",
				fmt.Sprintf("invalid limit %q", raw), "limit은 양의 정수여야 합니다."))
			return
		}
	}

	entries, err := s.profiles.Leaderboard(r.Context(), window, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, entries)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	comparison, err := s.profiles.Compare(r.Context(), r.URL.Query().Get("usernames"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, comparison)
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	report, err := s.trigger.Trigger(r.Context())
	if stderrors.Is(err, syncer.ErrSyncInProgress) {
		writeJSON(w, http.StatusConflict, APIResponse{
			Success: false,
			Error:   constants.MsgSyncInProgress,
			Code:    "SYNC_IN_PROGRESS",
		})
		return
	}
	if stderrors.Is(err, scheduler.ErrSchedulerStopped) {
		writeJSON(w, http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Error:   constants.MsgSyncUnavailable,
			Code:    "SCHEDULER_STOPPED",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, http.StatusOK, report.View())
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	status := SyncStatus{Busy: s.runner.IsBusy()}
	if report := s.runner.LastReport(); report != nil {
		view := report.View()
		status.LastReport = &view
	}
	writeData(w, http.StatusOK, status)
}
