package bot

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/scheduler"
	"github.com/Janmenjay30/CodeCircle/scoring"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/Janmenjay30/CodeCircle/utils"

	"github.com/bwmarrin/discordgo"
)

type CommandHandler struct {
	deps *CommandDependencies
}

func NewCommandHandler(deps *CommandDependencies) *CommandHandler {
	return &CommandHandler{deps: deps}
}

// HandleMessage Discord 메시지를 처리합니다
func (ch *CommandHandler) HandleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if ch.shouldIgnoreMessage(s, m) {
		return
	}

	command, params, isDM := ch.parseMessage(m)
	if command == "" {
		return
	}

	ch.routeCommand(s, m, command, params, isDM)
}

// shouldIgnoreMessage 메시지를 무시해야 하는지 확인합니다
func (ch *CommandHandler) shouldIgnoreMessage(s *discordgo.Session, m *discordgo.MessageCreate) bool {
	if m.Author == nil || m.Author.Bot {
		return true
	}

	// 봇 자신의 메시지는 무시
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return true
	}

	if m.GuildID == "" {
		utils.Debug("DM received from %s", m.Author.Username)
	}

	return false
}

// parseMessage 메시지를 파싱하여 명령어와 매개변수를 추출합니다
func (ch *CommandHandler) parseMessage(m *discordgo.MessageCreate) (command string, params []string, isDM bool) {
	content := strings.TrimSpace(m.Content)
	if !strings.HasPrefix(content, constants.CommandPrefix) {
		return "", nil, false
	}

	args := strings.Fields(content)
	if len(args) == 0 {
		return "", nil, false
	}

	command = strings.ToLower(args[0][constants.CommandPrefixLength:])
	if command == "" {
		return "", nil, false
	}
	params = args[1:]
	isDM = m.GuildID == ""

	return command, params, isDM
}

// routeCommand 명령어를 해당 핸들러로 라우팅합니다
func (ch *CommandHandler) routeCommand(s *discordgo.Session, m *discordgo.MessageCreate, command string, params []string, isDM bool) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.BotCommandTimeout)
	defer cancel()

	if ch.deps.Metrics != nil {
		ch.deps.Metrics.SendCommandMetric(ctx, command)
	}

	switch command {
	case "help", "도움말":
		ch.handleHelp(s, m)
	case "register", "등록":
		ch.handleRegister(ctx, s, m, params)
	case "leaderboard", "리더보드":
		ch.handleLeaderboard(ctx, s, m, params)
	case "sync", "동기화":
		if isDM {
			utils.Info("Manual sync requested via DM by %s", m.Author.Username)
		}
		ch.handleSync(s, m)
	case "ping":
		ch.handlePing(s, m)
	}
}

// handlePing ping 명령어를 처리합니다
func (ch *CommandHandler) handlePing(s *discordgo.Session, m *discordgo.MessageCreate) {
	if err := errors.SendDiscordInfo(s, m.ChannelID, constants.MsgPong); err != nil {
		utils.Error("Failed to send ping response: %v", err)
	}
}

func (ch *CommandHandler) handleHelp(s *discordgo.Session, m *discordgo.MessageCreate) {
	if _, err := s.ChannelMessageSend(m.ChannelID, constants.HelpMessage); err != nil {
		utils.Error("DISCORD API ERROR: Failed to send help message: %v", err)
	}
}

func (ch *CommandHandler) handleRegister(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, params []string) {
	handle, err := validateRegisterParams(params)
	if err != nil {
		errors.HandleDiscordError(s, m.ChannelID, err)
		return
	}

	profile, err := ch.deps.Registrar.Register(ctx, handle)
	if err != nil {
		errors.HandleDiscordError(s, m.ChannelID, err)
		return
	}

	utils.Info("Handle %s registered by %s", profile.Handle, m.Author.Username)
	response := fmt.Sprintf(constants.MsgRegisterSuccess, profile.Handle, profile.TotalSolved)
	if err := errors.SendDiscordSuccess(s, m.ChannelID, response); err != nil {
		utils.Error("Failed to send registration response: %v", err)
	}
}

// validateRegisterParams 등록 매개변수를 검증합니다
func validateRegisterParams(params []string) (string, error) {
	if len(params) != 1 {
		return "", errors.NewValidationError("REGISTER_INVALID_PARAMS",
			"Invalid register parameters", constants.MsgRegisterUsage)
	}
	return params[0], nil
}

func (ch *CommandHandler) handleLeaderboard(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, params []string) {
	window, err := parseLeaderboardParams(params)
	if err != nil {
		errors.HandleDiscordError(s, m.ChannelID, err)
		return
	}

	entries, err := ch.deps.Leaderboard.Leaderboard(ctx, window, constants.DefaultLeaderboardSize)
	if err != nil {
		errors.HandleDiscordError(s, m.ChannelID, err)
		return
	}

	if err := errors.SendDiscordEmbedWithRetry(s, m.ChannelID, FormatLeaderboard(window, entries)); err != nil {
		utils.Error("DISCORD API ERROR: Failed to send leaderboard embed: %v", err)
	}
}

// parseLeaderboardParams 리더보드 기간 매개변수를 해석합니다
func parseLeaderboardParams(params []string) (scoring.Window, error) {
	switch len(params) {
	case 0:
		return scoring.WindowWeek, nil
	case 1:
		return scoring.ParseWindow(params[0])
	default:
		return scoring.Window{}, errors.NewValidationError("LEADERBOARD_INVALID_PARAMS",
			"Invalid leaderboard parameters", constants.MsgLeaderboardUsage)
	}
}

func (ch *CommandHandler) handleSync(s *discordgo.Session, m *discordgo.MessageCreate) {
	if err := errors.SendDiscordInfo(s, m.ChannelID, constants.MsgSyncStarted); err != nil {
		utils.Error("Failed to send sync start message: %v", err)
	}

	// 실행 시간 제한은 동기화 쪽에서 적용됩니다
	report, err := ch.deps.Sync.Trigger(context.Background())
	if err != nil {
		if stderrors.Is(err, syncer.ErrSyncInProgress) {
			if sendErr := errors.SendDiscordWarning(s, m.ChannelID, constants.MsgSyncInProgress); sendErr != nil {
				utils.Error("Failed to send sync busy warning: %v", sendErr)
			}
			return
		}
		if stderrors.Is(err, scheduler.ErrSchedulerStopped) {
			if sendErr := errors.SendDiscordWarning(s, m.ChannelID, constants.MsgSyncUnavailable); sendErr != nil {
				utils.Error("Failed to send sync unavailable warning: %v", sendErr)
			}
			return
		}
		errors.HandleDiscordError(s, m.ChannelID, err)
		return
	}

	if err := errors.SendDiscordSuccess(s, m.ChannelID, formatSyncResult(report.Succeeded(), report.Failed())); err != nil {
		utils.Error("Failed to send sync result: %v", err)
	}
}

func formatSyncResult(succeeded, failed int) string {
	return fmt.Sprintf(constants.MsgSyncDone, succeeded, failed)
}
