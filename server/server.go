package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/service"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/gorilla/mux"
)

// SyncTrigger 수동 동기화를 동기적으로 실행합니다
type SyncTrigger interface {
	Trigger(ctx context.Context) (*models.SyncReport, error)
}

// Server 프로필 조회와 등록, 수동 동기화를 위한 HTTP API 서버입니다
type Server struct {
	profiles   *service.ProfileService
	trigger    SyncTrigger
	runner     interfaces.SyncRunner
	health     http.Handler
	router     *mux.Router
	httpServer *http.Server
}

// NewServer 라우터를 구성한 새 Server를 생성합니다
func NewServer(profiles *service.ProfileService, trigger SyncTrigger, runner interfaces.SyncRunner, health http.Handler) *Server {
	s := &Server{
		profiles: profiles,
		trigger:  trigger,
		runner:   runner,
		health:   health,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(loggerMiddleware)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	if s.health != nil {
		r.Handle("/health", s.health).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	// Users
	api.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	api.HandleFunc("/users", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/users/{handle}", s.handleUpdateUser).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/users/{handle}/analytics", s.handleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/users/{handle}/preview", s.handlePreview).Methods(http.MethodGet)

	// Leaderboard & compare
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/compare", s.handleCompare).Methods(http.MethodGet)

	// Sync
	api.HandleFunc("/sync", s.handleTriggerSync).Methods(http.MethodPost)
	api.HandleFunc("/sync/status", s.handleSyncStatus).Methods(http.MethodGet)

	return r
}

// Handler 라우터를 반환합니다
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 지정된 포트에서 서버를 시작합니다. 리슨 실패는 즉시 반환됩니다.
func (s *Server) Start(port string) error {
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return err
	}

	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
	}

	go func() {
		utils.Info("HTTP server listening on port %s", port)
		if err := s.httpServer.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			utils.Error("HTTP server error: %v", err)
		}
	}()
	return nil
}

// Shutdown 진행 중인 요청을 기다린 뒤 서버를 종료합니다
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// loggerMiddleware 모든 요청을 기록합니다
func loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// 상태 코드 기록용 래퍼
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		utils.LogRequest(r.Method, r.URL.Path, r.RemoteAddr, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter 상태 코드를 기록하는 래퍼
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
