package errors

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/utils"
	"github.com/bwmarrin/discordgo"
)

// ErrorType 오류의 종류를 나타냅니다
type ErrorType int

const (
	TypeValidation ErrorType = iota
	TypeFetchFailed
	TypeNotFound
	TypeDuplicate
	TypeStoreUnavailable
	TypeSystem
)

func (t ErrorType) String() string {
	switch t {
	case TypeValidation:
		return "validation"
	case TypeFetchFailed:
		return "fetch_failed"
	case TypeNotFound:
		return "not_found"
	case TypeDuplicate:
		return "duplicate"
	case TypeStoreUnavailable:
		return "store_unavailable"
	case TypeSystem:
		return "system"
	default:
		return "unknown"
	}
}

// AppError 애플리케이션에서 발생하는 구조화된 오류를 표현합니다
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	UserMsg  string
	Internal error
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Internal)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// GetUserMessage 사용자에게 표시할 메시지를 반환합니다
func (e *AppError) GetUserMessage() string {
	if e.UserMsg != "" {
		return e.UserMsg
	}
	return e.Message
}

// 오류 생성 함수들

// NewValidationError 입력값 검증 오류를 생성합니다
func NewValidationError(code, message, userMsg string) *AppError {
	return &AppError{
		Type:    TypeValidation,
		Code:    code,
		Message: message,
		UserMsg: userMsg,
	}
}

// NewFetchError 외부 프로필 API 조회 실패 오류를 생성합니다
func NewFetchError(code, message string, err error) *AppError {
	return &AppError{
		Type:     TypeFetchFailed,
		Code:     code,
		Message:  message,
		UserMsg:  constants.MsgProfileFetchFailed,
		Internal: err,
	}
}

// NewNotFoundError 리소스를 찾을 수 없는 오류를 생성합니다
func NewNotFoundError(code, message, userMsg string) *AppError {
	return &AppError{
		Type:    TypeNotFound,
		Code:    code,
		Message: message,
		UserMsg: userMsg,
	}
}

// NewDuplicateError 중복 리소스 오류를 생성합니다
func NewDuplicateError(code, message, userMsg string) *AppError {
	return &AppError{
		Type:    TypeDuplicate,
		Code:    code,
		Message: message,
		UserMsg: userMsg,
	}
}

// NewStoreError 저장소 접근 불가 오류를 생성합니다
func NewStoreError(code, message string, err error) *AppError {
	return &AppError{
		Type:     TypeStoreUnavailable,
		Code:     code,
		Message:  message,
		UserMsg:  constants.MsgStoreUnavailable,
		Internal: err,
	}
}

// NewSystemError 시스템 내부 오류를 생성합니다
func NewSystemError(code, message string, err error) *AppError {
	return &AppError{
		Type:     TypeSystem,
		Code:     code,
		Message:  message,
		UserMsg:  constants.MsgSystemError,
		Internal: err,
	}
}

// IsType 오류 체인에 주어진 종류의 AppError가 있는지 확인합니다
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// TypeOf 오류 체인의 첫 AppError 종류를 반환합니다. 없으면 TypeSystem입니다.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeSystem
}

// UserMessage 오류에서 사용자에게 보여줄 메시지를 뽑아냅니다
func UserMessage(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.GetUserMessage()
	}
	return constants.MsgSystemError
}

// Discord 메시지 관련 헬퍼 함수들

// HandleDiscordError 오류를 처리하고 Discord 채널에 메시지를 전송합니다
func HandleDiscordError(s *discordgo.Session, channelID string, err error) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		if appErr.Internal != nil {
			utils.Error("%s - %s: %v", appErr.Code, appErr.Message, appErr.Internal)
		} else {
			utils.Warn("%s - %s", appErr.Code, appErr.Message)
		}

		if discordErr := SendDiscordMessageWithRetry(s, channelID, constants.EmojiError+" "+appErr.GetUserMessage()); discordErr != nil {
			utils.Error("DISCORD API ERROR: Failed to send error message after retries: %v", discordErr)
		}
		return
	}

	utils.Error("UNEXPECTED ERROR: %v", err)
	if discordErr := SendDiscordMessageWithRetry(s, channelID, constants.EmojiError+" "+constants.MsgSystemError); discordErr != nil {
		utils.Error("DISCORD API ERROR: Failed to send error message after retries: %v", discordErr)
	}
}

// SendDiscordSuccess 성공 메시지를 Discord 채널에 전송합니다
func SendDiscordSuccess(s *discordgo.Session, channelID, message string) error {
	return SendDiscordMessageWithRetry(s, channelID, constants.EmojiSuccess+" "+message)
}

// SendDiscordInfo 정보 메시지를 Discord 채널에 전송합니다
func SendDiscordInfo(s *discordgo.Session, channelID, message string) error {
	return SendDiscordMessageWithRetry(s, channelID, constants.EmojiInfo+" "+message)
}

// SendDiscordWarning 경고 메시지를 Discord 채널에 전송합니다
func SendDiscordWarning(s *discordgo.Session, channelID, message string) error {
	return SendDiscordMessageWithRetry(s, channelID, constants.EmojiWarning+" "+message)
}

// SendDiscordMessageWithRetry Discord 메시지 전송을 재시도 로직과 함께 수행합니다
func SendDiscordMessageWithRetry(s *discordgo.Session, channelID, message string) error {
	return retryDiscord(func() error {
		_, err := s.ChannelMessageSend(channelID, message)
		return err
	})
}

// SendDiscordEmbedWithRetry Discord embed 전송을 재시도 로직과 함께 수행합니다
func SendDiscordEmbedWithRetry(s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed) error {
	return retryDiscord(func() error {
		_, err := s.ChannelMessageSendEmbed(channelID, embed)
		return err
	})
}

func retryDiscord(send func() error) error {
	const maxRetries = constants.MaxDiscordRetries
	const baseDelay = constants.BaseRetryDelay

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := send()
		if err == nil {
			if attempt > 0 {
				utils.Info("Discord message sent successfully after %d retries", attempt)
			}
			return nil
		}

		lastErr = err
		if attempt < maxRetries-1 {
			delay := time.Duration(1<<attempt) * baseDelay // 1s, 2s, 4s
			utils.Warn("Discord API call failed (attempt %d/%d): %v. Retrying in %v...",
				attempt+1, maxRetries, err, delay)
			time.Sleep(delay)
		}
	}

	utils.Error("DISCORD API ERROR: All retry attempts failed: %v", lastErr)
	return lastErr
}
