package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Janmenjay30/CodeCircle/constants"
	"github.com/Janmenjay30/CodeCircle/errors"
	"github.com/Janmenjay30/CodeCircle/interfaces"
	"github.com/Janmenjay30/CodeCircle/models"
	"github.com/Janmenjay30/CodeCircle/scoring"
	"github.com/Janmenjay30/CodeCircle/syncer"
	"github.com/Janmenjay30/CodeCircle/utils"

	"github.com/bwmarrin/discordgo"
)

// ScoreboardPoster 예약 동기화가 끝날 때마다 리더보드를 채널에 게시합니다
type ScoreboardPoster struct {
	provider  interfaces.LeaderboardProvider
	channelID string
	window    scoring.Window
	send      func(channelID string, embed *discordgo.MessageEmbed) error
}

func NewScoreboardPoster(session *discordgo.Session, provider interfaces.LeaderboardProvider, channelID string) *ScoreboardPoster {
	return &ScoreboardPoster{
		provider:  provider,
		channelID: channelID,
		window:    scoring.WindowWeek,
		send: func(channelID string, embed *discordgo.MessageEmbed) error {
			return errors.SendDiscordEmbedWithRetry(session, channelID, embed)
		},
	}
}

// HandleSyncReport 예약 실행 보고서에만 반응합니다
func (poster *ScoreboardPoster) HandleSyncReport(ctx context.Context, report *models.SyncReport) {
	if report == nil || report.Trigger != syncer.TriggerScheduled || report.Aborted != nil {
		return
	}

	if err := poster.Post(ctx); err != nil {
		utils.Error("DISCORD API ERROR: Failed to post scoreboard: %v", err)
	}
}

// Post 현재 리더보드를 채널에 게시합니다
func (poster *ScoreboardPoster) Post(ctx context.Context) error {
	entries, err := poster.provider.Leaderboard(ctx, poster.window, constants.DefaultLeaderboardSize)
	if err != nil {
		return err
	}

	if err := poster.send(poster.channelID, FormatLeaderboard(poster.window, entries)); err != nil {
		return err
	}

	utils.Info("Scoreboard posted to channel %s (%d entries)", poster.channelID, len(entries))
	return nil
}

// FormatLeaderboard 리더보드를 Discord 임베드로 만듭니다
func FormatLeaderboard(window scoring.Window, entries []scoring.LeaderboardEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf(constants.MsgLeaderboardTitle, window.Days),
		Color: constants.ColorLeaderboard,
	}

	if len(entries) == 0 {
		embed.Description = constants.MsgLeaderboardEmpty
		return embed
	}

	var builder strings.Builder
	builder.WriteString("```\n")
	builder.WriteString(fmt.Sprintf("%s %s %*s\n",
		utils.PadToWidth("순위", constants.ScoreboardRankWidth),
		utils.PadToWidth("핸들", constants.ScoreboardNameWidth),
		constants.ScoreboardScoreWidth, "제출"))
	builder.WriteString(constants.ScoreboardSeparator + "\n")

	for _, entry := range entries {
		name := utils.SanitizeString(utils.TruncateString(entry.Handle, constants.ScoreboardNameWidth))
		builder.WriteString(fmt.Sprintf("%-*d %s %*d\n",
			constants.ScoreboardRankWidth, entry.Rank,
			utils.PadToWidth(name, constants.ScoreboardNameWidth),
			constants.ScoreboardScoreWidth, entry.WindowCount))
	}
	builder.WriteString("```")

	embed.Description = builder.String()
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: fmt.Sprintf("%s %s 기준", constants.EmojiFire, window.Label),
	}
	return embed
}
