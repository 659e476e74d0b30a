package bot

import (
	"testing"

	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/scoring"

	"github.com/bwmarrin/discordgo"
)

func TestNewCommandHandler(t *testing.T) {
	deps := NewCommandDependencies(nil, nil, nil, nil)

	ch := NewCommandHandler(deps)
	if ch == nil {
		t.Fatal("NewCommandHandler가 nil을 반환했습니다")
	}

	if ch.deps != deps {
		t.Error("CommandHandler 의존성이 올바르게 설정되지 않았습니다")
	}
}

func TestParseMessage(t *testing.T) {
	ch := &CommandHandler{}

	tests := []struct {
		content        string
		expectedCmd    string
		expectedParams []string
	}{
		{content: "!help", expectedCmd: "help", expectedParams: []string{}},
		{content: "!register alice", expectedCmd: "register", expectedParams: []string{"alice"}},
		{content: "  !Leaderboard   30d ", expectedCmd: "leaderboard", expectedParams: []string{"30d"}},
		{content: "hello world", expectedCmd: "", expectedParams: nil},
		{content: "!", expectedCmd: "", expectedParams: nil},
		{content: "", expectedCmd: "", expectedParams: nil},
	}

	for _, test := range tests {
		m := &discordgo.MessageCreate{
			Message: &discordgo.Message{
				Content: test.content,
				GuildID: "guild123",
			},
		}

		command, params, isDM := ch.parseMessage(m)

		if command != test.expectedCmd {
			t.Errorf("parseMessage(%q) 명령어 = %q, 예상값 %q",
				test.content, command, test.expectedCmd)
		}

		if len(params) != len(test.expectedParams) {
			t.Errorf("parseMessage(%q) 매개변수 길이 = %d, 예상값 %d",
				test.content, len(params), len(test.expectedParams))
			continue
		}

		for i, param := range params {
			if param != test.expectedParams[i] {
				t.Errorf("parseMessage(%q) params[%d] = %q, 예상값 %q",
					test.content, i, param, test.expectedParams[i])
			}
		}

		if isDM {
			t.Errorf("parseMessage(%q) 길드 메시지를 DM으로 판단했습니다", test.content)
		}
	}

	dmMessage := &discordgo.MessageCreate{
		Message: &discordgo.Message{
			Content: "!help",
			GuildID: "",
		},
	}

	_, _, isDM := ch.parseMessage(dmMessage)
	if !isDM {
		t.Error("GuildID가 비어 있으면 DM으로 판단해야 합니다")
	}
}

func TestShouldIgnoreMessage(t *testing.T) {
	ch := &CommandHandler{}

	session := &discordgo.Session{
		State: discordgo.NewState(),
	}
	session.State.User = &discordgo.User{ID: "bot123"}

	tests := []struct {
		name   string
		author *discordgo.User
		ignore bool
	}{
		{"봇 자신의 메시지", &discordgo.User{ID: "bot123"}, true},
		{"다른 봇의 메시지", &discordgo.User{ID: "other", Bot: true}, true},
		{"작성자 없음", nil, true},
		{"일반 사용자", &discordgo.User{ID: "user123"}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := &discordgo.MessageCreate{
				Message: &discordgo.Message{Author: test.author, GuildID: "guild123"},
			}
			if got := ch.shouldIgnoreMessage(session, m); got != test.ignore {
				t.Errorf("shouldIgnoreMessage = %v, 예상값 %v", got, test.ignore)
			}
		})
	}
}

func TestValidateRegisterParams(t *testing.T) {
	handle, err := validateRegisterParams([]string{"alice"})
	if err != nil || handle != "alice" {
		t.Errorf("올바른 매개변수를 거부했습니다: %q, %v", handle, err)
	}

	for _, params := range [][]string{{}, {"a", "b"}} {
		if _, err := validateRegisterParams(params); !errors.IsType(err, errors.TypeValidation) {
			t.Errorf("validateRegisterParams(%v) 검증 오류가 필요합니다: %v", params, err)
		}
	}
}

func TestParseLeaderboardParams(t *testing.T) {
	tests := []struct {
		params  []string
		want    scoring.Window
		wantErr bool
	}{
		{params: nil, want: scoring.WindowWeek},
		{params: []string{"7d"}, want: scoring.WindowWeek},
		{params: []string{"30d"}, want: scoring.WindowMonth},
		{params: []string{"1y"}, wantErr: true},
		{params: []string{"7d", "extra"}, wantErr: true},
	}

	for _, test := range tests {
		got, err := parseLeaderboardParams(test.params)
		if test.wantErr {
			if !errors.IsType(err, errors.TypeValidation) {
				t.Errorf("parseLeaderboardParams(%v) 검증 오류가 필요합니다: %v", test.params, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseLeaderboardParams(%v) 오류: %v", test.params, err)
			continue
		}
		if got != test.want {
			t.Errorf("parseLeaderboardParams(%v) = %+v, 예상값 %+v", test.params, got, test.want)
		}
	}
}

func TestFormatSyncResult(t *testing.T) {
	if got := formatSyncResult(3, 1); got != "동기화 완료: 성공 3명, 실패 1명" {
		t.Errorf("formatSyncResult = %q", got)
	}
}
