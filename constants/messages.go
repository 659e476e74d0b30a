package constants

// 사용자 인터페이스 메시지
const (
	MsgRegisterSuccess    = "%s 님이 등록되었습니다! (총 %d문제 해결)"
	MsgRegisterUsage      = "사용법: `!register <핸들>`"
	MsgHandleInvalid      = "유효하지 않은 핸들 형식입니다."
	MsgHandleDuplicate    = "이미 등록된 핸들입니다."
	MsgProfileFetchFailed = "프로필 정보를 가져올 수 없습니다. 핸들을 확인하거나 잠시 후 다시 시도해주세요."
	MsgProfileNotFound    = "등록되지 않은 핸들입니다."
	MsgStoreUnavailable   = "저장소에 연결할 수 없습니다. 잠시 후 다시 시도해주세요."
	MsgSyncInProgress     = "이미 동기화가 진행 중입니다."
	MsgSyncUnavailable    = "서버가 종료 중이라 동기화를 실행할 수 없습니다."
	MsgSyncDone           = "동기화 완료: 성공 %d명, 실패 %d명"
	MsgSyncStarted        = "동기화를 시작합니다..."
	MsgLeaderboardTitle   = "🏆 최근 %d일 리더보드"
	MsgLeaderboardEmpty   = "등록된 사용자가 없습니다."
	MsgLeaderboardUsage   = "사용법: `!leaderboard [7d|30d]`"
	MsgWindowInvalid      = "기간은 7d 또는 30d 중 하나여야 합니다."
	MsgSystemError        = "시스템 오류가 발생했습니다. 관리자에게 문의해주세요."
	MsgPong               = "Pong! 🏓"
	MsgRootBanner         = "CodeCircle backend is live 🚀"
)

// 도움말 메시지
const HelpMessage = `🤖 **CodeCircle 봇 명령어**

• ` + "`!register <핸들>`" + ` - 프로필 등록
• ` + "`!leaderboard [7d|30d]`" + ` - 최근 제출 리더보드
• ` + "`!sync`" + ` - 지금 바로 동기화
• ` + "`!ping`" + ` - 봇 응답 확인
• ` + "`!help`" + ` - 도움말 표시`
