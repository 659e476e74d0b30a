package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS profiles (
	handle_key TEXT PRIMARY KEY,
	handle TEXT NOT NULL,
	display_name TEXT NOT NULL DEFAULT '',
	global_rank INTEGER,
	total_solved INTEGER NOT NULL DEFAULT 0,
	easy_solved INTEGER NOT NULL DEFAULT 0,
	medium_solved INTEGER NOT NULL DEFAULT 0,
	hard_solved INTEGER NOT NULL DEFAULT 0,
	submission_calendar JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const postgresColumns = `handle, display_name, global_rank, total_solved, easy_solved,
	medium_solved, hard_solved, submission_calendar, created_at`

// PostgresStorage pgx 커넥션 풀을 사용하는 PostgreSQL 저장소입니다
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage 커넥션 풀을 만들고 스키마를 준비합니다
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	connectCtx, cancel := context.WithTimeout(ctx, constants.StoreHealthCheckTimeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, unavailable("STORE_INIT_FAILED", "unable to create connection pool", err)
	}

	if err = pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, unavailable("STORE_INIT_FAILED", "unable to ping database", err)
	}

	if _, err = pool.Exec(connectCtx, postgresSchema); err != nil {
		pool.Close()
		return nil, unavailable("STORE_INIT_FAILED", "failed to create profiles table", err)
	}

	utils.Info("Connected to PostgreSQL successfully")
	return &PostgresStorage{pool: pool}, nil
}

// ListProfiles 모든 프로필을 키 순서로 조회합니다
func (s *PostgresStorage) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+postgresColumns+` FROM profiles ORDER BY handle_key`)
	if err != nil {
		return nil, unavailable("STORE_LIST_FAILED", "failed to list profiles", err)
	}
	defer rows.Close()

	profiles := []*models.UserProfile{}
	for rows.Next() {
		p, err := scanPostgresProfile(rows)
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
func (s *PostgresStorage) GetProfile(ctx context.Context, key string) (*models.UserProfile, error) {
	key = models.HandleKey(key)
	row := s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM profiles WHERE handle_key = $1`, key)

	p, err := scanPostgresProfile(row)
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, unavailable("STORE_GET_FAILED", "failed to get profile", err)
	}
	return p, nil
}

// CreateProfile 키가 없을 때만 프로필을 추가합니다
func (s *PostgresStorage) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	args, err := postgresArgs(profile)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (handle_key, `+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
		ON CONFLICT (handle_key) DO NOTHING`, args...)
	if err != nil {
		return unavailable("STORE_CREATE_FAILED", "failed to create profile", err)
	}
	if tag.RowsAffected() == 0 {
		return duplicate(profile.Handle)
	}
	return nil
}

// UpsertProfile 프로필을 저장합니다. 최초 생성 시각은 유지됩니다.
func (s *PostgresStorage) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	args, err := postgresArgs(profile)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO profiles (handle_key, `+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10)
		ON CONFLICT (handle_key) DO UPDATE SET
			handle = EXCLUDED.handle,
			display_name = EXCLUDED.display_name,
			global_rank = EXCLUDED.global_rank,
			total_solved = EXCLUDED.total_solved,
			easy_solved = EXCLUDED.easy_solved,
			medium_solved = EXCLUDED.medium_solved,
			hard_solved = EXCLUDED.hard_solved,
			submission_calendar = EXCLUDED.submission_calendar`, args...)
	if err != nil {
		return unavailable("STORE_UPSERT_FAILED", "failed to upsert profile", err)
	}
	return nil
}

// Ping 데이터베이스 연결을 확인합니다
func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable("STORE_PING_FAILED", "database ping failed", err)
	}
	return nil
}

// Close 커넥션 풀을 닫습니다
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

func postgresArgs(profile *models.UserProfile) ([]any, error) {
	calendar, err := marshalCalendar(profile.SubmissionCalendar)
	if err != nil {
		return nil, err
	}
	return []any{
		profile.Key(), profile.Handle, profile.DisplayName, profile.GlobalRank,
		profile.TotalSolved, profile.EasySolved, profile.MediumSolved, profile.HardSolved,
		calendar, profile.CreatedAt,
	}, nil
}

func scanPostgresProfile(row pgx.Row) (*models.UserProfile, error) {
	var (
		p        models.UserProfile
		calendar []byte
	)
	err := row.Scan(&p.Handle, &p.DisplayName, &p.GlobalRank, &p.TotalSolved, &p.EasySolved,
		&p.MediumSolved, &p.HardSolved, &calendar, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(calendar, &p.SubmissionCalendar); err != nil {
		return nil, fmt.Errorf("corrupt submission calendar for %s: %w", p.Handle, err)
	}
	return &p, nil
}

// marshalCalendar 캘린더를 JSON 문자열로 직렬화합니다. nil은 빈 객체입니다.
func marshalCalendar(calendar models.SubmissionCalendar) (string, error) {
	if calendar == nil {
		return "{}", nil
	}
	data, err := json.Marshal(calendar)
	if err != nil {
		return "", fmt.Errorf("failed to encode submission calendar: %w", err)
	}
	return string(data), nil
}
