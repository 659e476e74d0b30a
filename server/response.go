package server

import (
	"encoding/json"
	"net/http"

	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/utils"
)

// APIResponse 모든 JSON 응답의 공통 형식
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		utils.Warn("Failed to encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, APIResponse{Success: true, Data: data})
}

// writeError 오류 종류에 맞는 상태 코드와 사용자 메시지로 응답합니다
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		utils.Error("Request failed (%d): %v", status, err)
	} else {
		utils.Debug("Request rejected (%d): %v", status, err)
	}

	resp := APIResponse{Success: false, Error: errors.UserMessage(err)}
	if appErr, ok := asAppError(err); ok {
		resp.Code = appErr.Code
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	if _, ok := asAppError(err); !ok {
		return http.StatusInternalServerError
	}
	switch errors.TypeOf(err) {
	case errors.TypeValidation:
		return http.StatusBadRequest
	case errors.TypeDuplicate:
		return http.StatusConflict
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeFetchFailed:
		return http.StatusBadGateway
	case errors.TypeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
