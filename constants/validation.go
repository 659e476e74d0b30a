package constants

// 검증 관련 상수
const (
	MaxCharacterRepeats = 8 // 허용되는 최대 문자 반복 횟수

	// HTTP 관련
	HTTPServerErrorThreshold = 500 // 서버 오류 임계값 (5xx)
	HTTPTooManyRequests      = 429

	// 제어 문자 관련
	ControlCharTab = 9  // 탭 문자
	ControlCharLF  = 10 // 줄 바꿈
	ControlCharMin = 32 // 허용되는 최소 제어 문자

	// 유니코드 범위 - 한글 문자 너비 계산용
	UnicodeHangulJamoStart         = 0x1100
	UnicodeHangulJamoEnd           = 0x11FF
	UnicodeHangulCompatStart       = 0x3130
	UnicodeHangulCompatEnd         = 0x318F
	UnicodeHangulSyllableStart     = 0xAC00
	UnicodeHangulSyllableEnd       = 0xD7AF
	UnicodeCJKStart                = 0x4E00
	UnicodeCJKEnd                  = 0x9FFF
	UnicodeFullwidthPrintableStart = 0xFF01 // 전각 인쇄 가능 문자 시작
	UnicodeFullwidthPrintableEnd   = 0xFF5E // 전각 인쇄 가능 문자 끝
)

// 예약어 목록 - 핸들 검증용
var ReservedHandles = []string{
	"admin", "administrator", "root", "system", "null", "undefined",
	"api", "health", "sync", "leaderboard",
}
