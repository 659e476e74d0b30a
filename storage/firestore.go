package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// profilesCollection 프로필 문서 컬렉션 이름
const profilesCollection = "profiles"

// FirestoreStorage Firestore를 사용하여 프로필을 관리하는 저장소입니다.
// 문서 ID는 HandleKey입니다.
type FirestoreStorage struct {
	client         *firestore.Client
	app            *firebase.App
	reconnectMutex sync.RWMutex
}

// 에러 복구 관련 상수
const (
	maxReconnectAttempts = 3
	reconnectDelay       = 2 * time.Second
)

// NewFirestoreStorage 새로운 FirestoreStorage 인스턴스를 생성하고 Firestore에 연결합니다.
// credentialsJSON이 비어 있으면 기본 자격 증명을 사용합니다.
func NewFirestoreStorage(ctx context.Context, projectID, credentialsJSON string) (*FirestoreStorage, error) {
	utils.Info("Initializing Firestore storage for project %q", projectID)

	var opts []option.ClientOption
	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, unavailable("STORE_INIT_FAILED", "error initializing firebase app", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, unavailable("STORE_INIT_FAILED", "error initializing Firestore client", err)
	}

	utils.Info("Firestore storage initialized successfully")
	return &FirestoreStorage{client: client, app: app}, nil
}

func (s *FirestoreStorage) profiles() *firestore.CollectionRef {
	s.reconnectMutex.RLock()
	defer s.reconnectMutex.RUnlock()
	return s.client.Collection(profilesCollection)
}

// reconnectFirestore Firestore 클라이언트를 재연결합니다
func (s *FirestoreStorage) reconnectFirestore(ctx context.Context) error {
	s.reconnectMutex.Lock()
	defer s.reconnectMutex.Unlock()

	utils.Warn("Attempting to reconnect to Firestore")

	for attempt := 1; attempt <= maxReconnectAttempts; attempt++ {
		newClient, err := s.app.Firestore(ctx)
		if err != nil {
			utils.Warn("Firestore reconnection attempt %d/%d failed: %v", attempt, maxReconnectAttempts, err)
			if attempt < maxReconnectAttempts {
				select {
				case <-time.After(reconnectDelay * time.Duration(attempt)): // 점진적 지연
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			continue
		}

		if s.client != nil {
			s.client.Close()
		}
		s.client = newClient
		utils.Info("Successfully reconnected to Firestore on attempt %d", attempt)
		return nil
	}

	return fmt.Errorf("failed to reconnect to Firestore after %d attempts", maxReconnectAttempts)
}

// executeWithRetry Firestore 작업을 재연결 후 한 번 더 시도합니다
func (s *FirestoreStorage) executeWithRetry(ctx context.Context, operation func() error) error {
	err := operation()
	if err != nil && isFirestoreConnectionError(err) {
		utils.Warn("Detected Firestore connection error, attempting reconnection: %v", err)
		if reconnectErr := s.reconnectFirestore(ctx); reconnectErr != nil {
			return fmt.Errorf("operation failed and reconnection failed: %v (original: %w)", reconnectErr, err)
		}
		return operation()
	}
	return err
}

// isFirestoreConnectionError Firestore 연결 관련 에러인지 확인합니다
func isFirestoreConnectionError(err error) bool {
	if err == nil {
		return false
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection", "network", "unavailable"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// ListProfiles 모든 프로필 문서를 조회합니다
func (s *FirestoreStorage) ListProfiles(ctx context.Context) ([]*models.UserProfile, error) {
	var profiles []*models.UserProfile

	err := s.executeWithRetry(ctx, func() error {
		profiles = profiles[:0]
		iter := s.profiles().OrderBy(firestore.DocumentID, firestore.Asc).Documents(ctx)
		defer iter.Stop()

		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				return nil
			}
			if err != nil {
				return err
			}

			var p models.UserProfile
			if err := doc.DataTo(&p); err != nil {
				utils.Warn("Skipping unreadable profile document %s: %v", doc.Ref.ID, err)
				continue
			}
			profiles = append(profiles, &p)
		}
	})
	if err != nil {
		return nil, unavailable("STORE_LIST_FAILED", "failed to list profiles from Firestore", err)
	}

	if profiles == nil {
		profiles = []*models.UserProfile{}
	}
	return profiles, nil
}

// GetProfile 키로 프로필 문서를 조회합니다
func (s *FirestoreStorage) GetProfile(ctx context.Context, key string) (*models.UserProfile, error) {
	key = models.HandleKey(key)

	var profile models.UserProfile
	err := s.executeWithRetry(ctx, func() error {
		doc, err := s.profiles().Doc(key).Get(ctx)
		if err != nil {
			return err
		}
		return doc.DataTo(&profile)
	})
	if status.Code(err) == codes.NotFound {
		return nil, notFound(key)
	}
	if err != nil {
		return nil, unavailable("STORE_GET_FAILED", "failed to get profile from Firestore", err)
	}
	return &profile, nil
}

// CreateProfile 문서가 없을 때만 새 프로필을 생성합니다
func (s *FirestoreStorage) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	err := s.executeWithRetry(ctx, func() error {
		_, err := s.profiles().Doc(profile.Key()).Create(ctx, profile)
		return err
	})
	if status.Code(err) == codes.AlreadyExists {
		return duplicate(profile.Handle)
	}
	if err != nil {
		return unavailable("STORE_CREATE_FAILED", "failed to create profile in Firestore", err)
	}

	utils.Info("Added new profile to Firestore: %s", profile.Handle)
	return nil
}

// UpsertProfile 프로필 문서를 덮어씁니다
func (s *FirestoreStorage) UpsertProfile(ctx context.Context, profile *models.UserProfile) error {
	err := s.executeWithRetry(ctx, func() error {
		_, err := s.profiles().Doc(profile.Key()).Set(ctx, profile)
		return err
	})
	if err != nil {
		return unavailable("STORE_UPSERT_FAILED", "failed to upsert profile in Firestore", err)
	}
	return nil
}

// Ping 컬렉션을 한 건 조회해 연결을 확인합니다
func (s *FirestoreStorage) Ping(ctx context.Context) error {
	iter := s.profiles().Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return unavailable("STORE_PING_FAILED", "Firestore ping failed", err)
	}
	return nil
}

// Close Firestore 클라이언트를 닫습니다
func (s *FirestoreStorage) Close() error {
	s.reconnectMutex.Lock()
	defer s.reconnectMutex.Unlock()
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
