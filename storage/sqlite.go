package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"

	// sqlite 드라이버 등록
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	handle_key TEXT PRIMARY KEY,
	handle TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	global_rank INTEGER,
	total_solved INTEGER NOT NULL DEFAULT 0,
	easy_solved INTEGER NOT NULL DEFAULT 0,
	medium_solved INTEGER NOT NULL DEFAULT 0,
	hard_solved INTEGER NOT NULL DEFAULT 0,
	submission_calendar TEXT NOT NULL DEFAULT '{}',
	created_at TEXT NOT NULL
)`

const sqliteColumns = `handle, display_name, global_rank, total_solved, easy_solved,
	medium_solved, hard_solved, submission_calendar, created_at`

// SQLiteStorage 단일 파일 SQLite 저장소입니다
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage 데이터베이스를 열고 스키마를 준비합니다.
// path가 ":memory:"이면 프로세스 수명 동안만 유지됩니다.
func NewSQLiteStorage(ctx context.Context, path string) (*SQLiteStorage, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, unavailable("STORE_INIT_FAILED", "failed to create database directory", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, unavailable("STORE_INIT_FAILED", "failed to open database", err)
	}
	// 커넥션마다 별도의 :memory: 데이터베이스가 생기지 않도록 하나만 사용합니다
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("STORE_INIT_FAILED", "failed to connect to database", err)
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.configure(ctx); err != nil {
		_ = db.Close()
		return nil, unavailable("STORE_INIT_FAILED", "failed to configure database", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, unavailable("STORE_INIT_FAILED", "failed to create schema", err)
	}

	utils.Info("SQLite profile store ready at %s", path)
	return s, nil
}

// configure 데이터베이스 pragma를 설정합니다
func (s *SQLiteStorage) configure(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Path 데이터베이스 파일 경로를 반환합니다
func (s *SQLiteStorage) Path() string {
	return s.path
}

// ListProfiles 모든 프로필을 키 순서로 조회합니다
func (s *SQLiteStorage) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM profiles ORDER BY handle_key`)
	if err != nil {
		return nil, unavailable("STORE_LIST_FAILED", "failed to list profiles", err)
	}
	defer rows.Close()

	profiles := []*models.UserProfile{}
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, unavailable("STORE_LIST_FAILED", "failed to scan profile", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("STORE_LIST_FAILED", "failed to iterate profiles", err)
	}
	return profiles, nil
}

// GetProfile 키로 프로필을 조회합니다
func (s *SQLiteStorage) GetProfile(ctx context.Context, key string) (*models.UserProfile, error) {
	key = models.HandleKey(key)
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM profiles WHERE handle_key = ?`, key)

	p, err := scanSQLiteProfile(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, unavailable("STORE_GET_FAILED", "failed to get profile", err)
	}
	return p, nil
}

// CreateProfile 키가 없을 때만 프로필을 추가합니다
func (s *SQLiteStorage) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	args, err := sqliteArgs(profile)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (handle_key, `+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (handle_key) DO NOTHING`, args...)
	if err != nil {
		return unavailable("STORE_CREATE_FAILED", "failed to create profile", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("STORE_CREATE_FAILED", "failed to read affected rows", err)
	}
	if affected == 0 {
		return duplicate(profile.Handle)
	}
	return nil
}

// UpsertProfile 프로필을 저장합니다. 최초 생성 시각은 유지됩니다.
func (s *SQLiteStorage) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	args, err := sqliteArgs(profile)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (handle_key, `+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (handle_key) DO UPDATE SET
			handle = excluded.handle,
			display_name = excluded.display_name,
			global_rank = excluded.global_rank,
			total_solved = excluded.total_solved,
			easy_solved = excluded.easy_solved,
			medium_solved = excluded.medium_solved,
			hard_solved = excluded.hard_solved,
			submission_calendar = excluded.submission_calendar`, args...)
	if err != nil {
		return unavailable("STORE_UPSERT_FAILED", "failed to upsert profile", err)
	}
	return nil
}

// Ping 데이터베이스 연결을 확인합니다
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return unavailable("STORE_PING_FAILED", "database ping failed", err)
	}
	return nil
}

// Close 데이터베이스를 닫습니다
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func sqliteArgs(profile *models.UserProfile) ([]any, error) {
	calendar, err := marshalCalendar(profile.SubmissionCalendar)
	if err != nil {
		return nil, err
	}

	var rank sql.NullInt64
	if profile.GlobalRank != nil {
		rank = sql.NullInt64{Int64: int64(*profile.GlobalRank), Valid: true}
	}

	return []any{
		profile.Key(), profile.Handle, profile.DisplayName, rank,
		profile.TotalSolved, profile.EasySolved, profile.MediumSolved, profile.HardSolved,
		calendar, profile.CreatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteProfile(row rowScanner) (*models.UserProfile, error) {
	var (
		p         models.UserProfile
		rank      sql.NullInt64
		calendar  string
		createdAt string
	)
	err := row.Scan(&p.Handle, &p.DisplayName, &rank, &p.TotalSolved, &p.EasySolved,
		&p.MediumSolved, &p.HardSolved, &calendar, &createdAt)
	if err != nil {
		return nil, err
	}

	if rank.Valid {
		r := int(rank.Int64)
		p.GlobalRank = &r
	}
	if err := json.Unmarshal([]byte(calendar), &p.SubmissionCalendar); err != nil {
		return nil, fmt.Errorf("corrupt submission calendar for %s: %w", p.Handle, err)
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at for %s: %w", p.Handle, err)
	}
	return &p, nil
}
