package utils

import (
	"regexp"
	"strings"

	"github.com/Janmenjay30/CodeCircle/constants"
)

var handlePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// NormalizeHandle 핸들 앞뒤 공백을 제거합니다
func NormalizeHandle(handle string) string {
	return strings.TrimSpace(handle)
}

// IsValidHandle 외부 서비스 핸들 형식을 검사합니다. 입력은 NormalizeHandle을 거친 값이어야 합니다.
func IsValidHandle(handle string) bool {
	if len(handle) < constants.MinHandleLength || len(handle) > constants.MaxHandleLength {
		return false
	}

	if handle != strings.TrimSpace(handle) {
		return false
	}

	// 영문, 숫자, '_', '-', '.'만 허용하며 영문/숫자로 시작
	if !handlePattern.MatchString(handle) {
		return false
	}

	// 과도한 반복 문자 방지
	if hasExcessiveRepeats(handle, constants.MaxCharacterRepeats) {
		return false
	}

	return !isReservedHandle(handle)
}

// isReservedHandle 예약어인지 확인합니다
func isReservedHandle(handle string) bool {
	lower := strings.ToLower(handle)
	for _, reserved := range constants.ReservedHandles {
		if lower == reserved {
			return true
		}
	}
	return false
}

// hasExcessiveRepeats 과도한 문자 반복을 감지합니다
func hasExcessiveRepeats(input string, maxRepeats int) bool {
	if len(input) == 0 {
		return false
	}

	count := 1
	prev := rune(0)

	for _, char := range input {
		if char == prev {
			count++
			if count > maxRepeats {
				return true
			}
		} else {
			count = 1
			prev = char
		}
	}

	return false
}

// SplitHandles 쉼표로 구분된 핸들 목록을 분리합니다.
// 빈 항목은 버리고 대소문자 무시 중복은 처음 것만 남깁니다.
func SplitHandles(csv string) []string {
	parts := strings.Split(csv, ",")
	seen := make(map[string]struct{}, len(parts))
	handles := make([]string, 0, len(parts))

	for _, part := range parts {
		handle := NormalizeHandle(part)
		if handle == "" {
			continue
		}
		key := strings.ToLower(handle)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		handles = append(handles, handle)
	}
	return handles
}

// TruncateString 문자열 처리
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(constants.TruncateIndicator) {
		return constants.TruncateIndicator[:maxLen]
	}
	return s[:maxLen-len(constants.TruncateIndicator)] + constants.TruncateIndicator
}

// GetDisplayWidth 한글과 영어 문자 폭을 고려한 문자열 길이 계산
func GetDisplayWidth(s string) int {
	width := 0
	for _, r := range s {
		if r >= constants.UnicodeHangulJamoStart && r <= constants.UnicodeHangulJamoEnd || // 한글 자모
			r >= constants.UnicodeHangulCompatStart && r <= constants.UnicodeHangulCompatEnd || // 한글 호환 자모
			r >= constants.UnicodeHangulSyllableStart && r <= constants.UnicodeHangulSyllableEnd || // 한글 완성형
			r >= constants.UnicodeCJKStart && r <= constants.UnicodeCJKEnd || // CJK 한자
			r >= constants.UnicodeFullwidthPrintableStart && r <= constants.UnicodeFullwidthPrintableEnd { // 전각 인쇄 가능 문자
			width += 2 // 한글, 한자 등 전각 문자는 2칸
		} else {
			width += 1 // 영어, 숫자 등 반각 문자는 1칸
		}
	}
	return width
}

// PadToWidth 표시 폭 기준으로 오른쪽을 공백으로 채웁니다
func PadToWidth(s string, width int) string {
	w := GetDisplayWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func SanitizeString(s string) string {
	// Discord 메시지에서 문제가 될 수 있는 특수문자 제거/변경
	s = strings.ReplaceAll(s, "`", "'")          // 코드 블록 방지
	s = strings.ReplaceAll(s, "<@", "(at)")      // 사용자 멘션 방지 (@ 보다 먼저)
	s = strings.ReplaceAll(s, "<#", "(channel)") // 채널 멘션 방지
	s = strings.ReplaceAll(s, "<:", "(emoji)")   // 커스텀 이모지 방지
	s = strings.ReplaceAll(s, "@", "(at)")       // 일반 @ 멘션 방지
	s = strings.ReplaceAll(s, "||", "")          // 스포일러 태그 방지
	s = strings.ReplaceAll(s, "**", "")          // 볼드 마크다운 방지
	s = strings.ReplaceAll(s, "~~", "")          // 취소선 마크다운 방지

	// 제어 문자 제거
	var cleaned strings.Builder
	for _, r := range s {
		if r >= constants.ControlCharMin || r == constants.ControlCharLF || r == constants.ControlCharTab {
			cleaned.WriteRune(r)
		}
	}

	return strings.TrimSpace(cleaned.String())
}
