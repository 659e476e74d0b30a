package sheets

import (
	"context"
	"fmt"
	"strings"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/utils"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Registrar 명단의 핸들을 등록하는 대상입니다
type Registrar interface {
	Register(ctx context.Context, handle string) (*models.UserProfile, error)
}

// RosterClient Google Sheets에 있는 등록 명단을 읽습니다
type RosterClient struct {
	service       *sheets.Service
	spreadsheetID string
	sheetRange    string
}

// ImportResult 명단 가져오기 결과
type ImportResult struct {
	Registered int
	Skipped    int
	Failed     int
}

// NewRosterClient 새로운 Google Sheets 명단 클라이언트를 생성합니다
func NewRosterClient(ctx context.Context, spreadsheetID, sheetRange, credentialsJSON string, opts ...option.ClientOption) (*RosterClient, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if sheetRange == "" {
		sheetRange = constants.DefaultRosterSheetRange
	}

	if credentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	utils.Info("Google Sheets roster client initialized")
	return &RosterClient{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetRange:    sheetRange,
	}, nil
}

// FetchHandles 명단 시트에서 핸들 목록을 읽어옵니다
func (c *RosterClient) FetchHandles(ctx context.Context) ([]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	if len(resp.Values) == 0 {
		utils.Warn("Roster spreadsheet is empty")
		return []string{}, nil
	}

	return extractHandles(resp.Values)
}

// ImportRoster 아직 저장되지 않은 명단 핸들을 등록합니다.
// 이미 등록된 핸들은 건너뛰고 그 밖의 실패는 기록만 합니다.
func (c *RosterClient) ImportRoster(ctx context.Context, registrar Registrar) (ImportResult, error) {
	handles, err := c.FetchHandles(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	return importHandles(ctx, registrar, handles), nil
}

func importHandles(ctx context.Context, registrar Registrar, handles []string) ImportResult {
	var result ImportResult
	for _, handle := range handles {
		if ctx.Err() != nil {
			break
		}

		_, err := registrar.Register(ctx, handle)
		switch {
		case err == nil:
			result.Registered++
		case errors.IsType(err, errors.TypeDuplicate):
			result.Skipped++
		default:
			result.Failed++
			utils.Warn("Failed to import roster handle %s: %v", handle, err)
		}
	}

	utils.Info("Roster import finished: %d registered, %d skipped, %d failed",
		result.Registered, result.Skipped, result.Failed)
	return result
}

// extractHandles 헤더 행에서 핸들 컬럼을 찾아 값을 모읍니다.
// 빈 칸과 대소문자만 다른 중복은 제외합니다.
func extractHandles(values [][]interface{}) ([]string, error) {
	headers := values[0]
	handleColumnIndex := -1
	for i, header := range headers {
		if headerStr, ok := header.(string); ok {
			if strings.EqualFold(strings.TrimSpace(headerStr), constants.RosterHandleColumn) {
				handleColumnIndex = i
				break
			}
		}
	}

	if handleColumnIndex == -1 {
		return nil, fmt.Errorf("handle column '%s' not found in spreadsheet", constants.RosterHandleColumn)
	}

	seen := make(map[string]bool)
	handles := make([]string, 0, len(values)-1)
	for i := 1; i < len(values); i++ { // 헤더 행 제외
		row := values[i]
		if handleColumnIndex >= len(row) {
			continue
		}
		cellValue, ok := row[handleColumnIndex].(string)
		if !ok {
			continue
		}
		handle := strings.TrimSpace(cellValue)
		key := models.HandleKey(handle)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		handles = append(handles, handle)
	}

	return handles, nil
}
