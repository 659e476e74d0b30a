package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"
)

// maxResponseBytes 프로필 응답 본문 최대 크기
const maxResponseBytes = 8 << 20

// ProfileClient 외부 프로필 API와 통신하는 클라이언트입니다
type ProfileClient struct {
	client     *http.Client
	baseURL    string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
}

// ClientOption ProfileClient 설정 옵션
type ClientOption func(*ProfileClient)

// WithHTTPClient 사용할 http.Client를 지정합니다
func WithHTTPClient(c *http.Client) ClientOption {
	return func(pc *ProfileClient) { pc.client = c }
}

// WithRetry 재시도 횟수와 기본 지연 시간을 지정합니다
func WithRetry(maxRetries int, delay time.Duration) ClientOption {
	return func(pc *ProfileClient) {
		if maxRetries > 0 {
			pc.maxRetries = maxRetries
		}
		pc.retryDelay = delay
	}
}

// NewProfileClient 새로운 ProfileClient 인스턴스를 생성합니다.
// timeout은 재시도를 포함한 호출 한 번 전체에 적용됩니다.
func NewProfileClient(baseURL string, timeout time.Duration, opts ...ClientOption) *ProfileClient {
	if timeout <= 0 {
		timeout = constants.DefaultFetchTimeout
	}
	utils.Debug("Creating new profile API client for %s", baseURL)

	pc := &ProfileClient{
		client: &http.Client{
			Timeout: constants.APITimeout,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		maxRetries: constants.MaxRetries,
		retryDelay: constants.RetryDelay,
	}
	for _, opt := range opts {
		opt(pc)
	}
	return pc
}

// FetchProfile 지정된 핸들의 프로필 스냅샷을 가져옵니다
func (client *ProfileClient) FetchProfile(ctx context.Context, handle string) (*models.ProfileSnapshot, error) {
	handle = utils.NormalizeHandle(handle)
	if !utils.IsValidHandle(handle) {
		return nil, errors.NewValidationError("INVALID_HANDLE",
			fmt.Sprintf("invalid handle format: %q", handle), constants.MsgHandleInvalid)
	}

	ctx, cancel := context.WithTimeout(ctx, client.timeout)
	defer cancel()

	endpoint := client.baseURL + fmt.Sprintf(constants.ProfileEndpointPath, url.PathEscape(handle))
	body, err := client.doRequest(ctx, endpoint, handle)
	if err != nil {
		return nil, errors.NewFetchError("PROFILE_FETCH_FAILED",
			fmt.Sprintf("failed to fetch profile for %s", handle), err)
	}

	snapshot, err := decodeSnapshot(body)
	if err != nil {
		utils.Error("Failed to parse profile for %s: %v", handle, err)
		return nil, errors.NewFetchError("PROFILE_MALFORMED",
			fmt.Sprintf("malformed profile payload for %s", handle), err)
	}

	utils.Debug("Successfully fetched profile for %s (total solved: %d, calendar days: %d)",
		handle, snapshot.TotalSolved, len(snapshot.SubmissionCalendar))
	return snapshot, nil
}

// upstreamError 외부 API가 200으로 돌려주는 오류 본문
type upstreamError struct {
	Errors  json.RawMessage `json:"errors"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeSnapshot(body []byte) (*models.ProfileSnapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("expected JSON object")
	}

	var upstream upstreamError
	if err := json.Unmarshal(trimmed, &upstream); err == nil {
		if len(upstream.Errors) > 0 && string(upstream.Errors) != "null" {
			return nil, fmt.Errorf("upstream reported errors: %s", string(upstream.Errors))
		}
		if upstream.Error != "" {
			return nil, fmt.Errorf("upstream reported error: %s", upstream.Error)
		}
	}

	var snapshot models.ProfileSnapshot
	if err := json.Unmarshal(trimmed, &snapshot); err != nil {
		return nil, err
	}
	if snapshot.Username == "" {
		return nil, fmt.Errorf("missing username in payload")
	}
	if snapshot.SubmissionCalendar == nil {
		snapshot.SubmissionCalendar = models.SubmissionCalendar{}
	}
	return &snapshot, nil
}

// doRequest 공통 HTTP 요청 및 재시도 로직
func (client *ProfileClient) doRequest(ctx context.Context, endpoint, handle string) ([]byte, error) {
	var lastErr error
	rateLimited := false

	for attempt := 0; attempt < client.maxRetries; attempt++ {
		if attempt > 0 {
			utils.Debug("Retrying profile fetch for %s (attempt %d/%d)", handle, attempt+1, client.maxRetries)
			if err := sleepContext(ctx, client.retryBackoff(attempt, rateLimited)); err != nil {
				break
			}
		}
		rateLimited = false

		utils.Debug("Fetching profile from: %s", endpoint)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		body, status, err := client.do(req)
		if err != nil {
			lastErr = fmt.Errorf("profile request failed: %w", err)
			utils.Warn("Attempt %d failed for %s: %v", attempt+1, handle, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if status == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited by profile API")
			utils.Warn("Rate limited for %s, attempt %d", handle, attempt+1)
			rateLimited = true
			continue
		}

		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("profile API returned status %d", status)
			utils.Warn("Profile API returned non-2xx status for %s: %d", handle, status)
			if status >= constants.HTTPServerErrorThreshold {
				continue // 서버 에러는 재시도
			}
			break // 클라이언트 에러는 즉시 반환
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = ctx.Err()
	} else if ctxErr := ctx.Err(); ctxErr != nil {
		lastErr = fmt.Errorf("%w (%v)", lastErr, ctxErr)
	}
	utils.Error("Failed to fetch profile for %s after retries: %v", handle, lastErr)
	return nil, lastErr
}

func (client *ProfileClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := client.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// retryBackoff attempt번째 재시도 전 대기 시간. 직전 응답이 429였으면 APIRetryMultiplier배로 늘립니다.
func (client *ProfileClient) retryBackoff(attempt int, rateLimited bool) time.Duration {
	delay := client.retryDelay * time.Duration(attempt)
	if rateLimited {
		delay *= constants.APIRetryMultiplier
	}
	return delay
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
