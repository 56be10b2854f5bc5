package discord

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/dice"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/repositories/state"
	"github.com/KirkDiggler/jackpotdice/internal/scoring"
	"github.com/KirkDiggler/jackpotdice/internal/services/game"
	"github.com/bwmarrin/discordgo"
)

const (
	colorSuccess = 0x00ff00
	colorInfo    = 0x3498db
	colorJackpot = 0xf1c40f
	colorError   = 0xff0000
)

var diceFaces = [...]string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

// formatDice renders a roll as die glyphs followed by the face values
func formatDice(roll dice.Roll) string {
	glyphs := make([]string, 0, dice.Count)
	values := make([]string, 0, dice.Count)
	for _, face := range roll {
		if face < 1 || int(face) > len(diceFaces) {
			glyphs = append(glyphs, "?")
		} else {
			glyphs = append(glyphs, diceFaces[face-1])
		}
		values = append(values, fmt.Sprintf("%d", face))
	}

	return fmt.Sprintf("%s  (%s)", strings.Join(glyphs, " "), strings.Join(values, ", "))
}

// scoreButtons offers one button per distinct face on the table
func scoreButtons(roll dice.Roll) []discordgo.MessageComponent {
	var buttons []discordgo.MessageComponent
	for category := uint8(scoring.MinCategory); category <= scoring.MaxCategory; category++ {
		points, err := scoring.Score(roll, category)
		if err != nil || points == 0 {
			continue
		}
		buttons = append(buttons, discordgo.Button{
			Label:    fmt.Sprintf("%ds for %d", category, points),
			Style:    discordgo.SuccessButton,
			CustomID: scoreButtonID(category),
		})
	}

	return buttons
}

func actionRow(buttons ...discordgo.MessageComponent) []discordgo.MessageComponent {
	if len(buttons) == 0 {
		return nil
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

func rollButton() discordgo.Button {
	return discordgo.Button{
		Label:    "Roll Dice",
		Style:    discordgo.PrimaryButton,
		CustomID: ButtonRollDice,
		Emoji:    &discordgo.ComponentEmoji{Name: "🎲"},
	}
}

func endButton() discordgo.Button {
	return discordgo.Button{
		Label:    "End Game",
		Style:    discordgo.SecondaryButton,
		CustomID: ButtonEndGame,
	}
}

func payButton(price uint64) discordgo.Button {
	return discordgo.Button{
		Label:    fmt.Sprintf("Pay %d", price),
		Style:    discordgo.PrimaryButton,
		CustomID: ButtonPay,
	}
}

// renderPay renders a successful payment
func renderPay(output *game.PayOutput) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Title:       "You're in!",
		Description: "Roll the dice and score as many times as you like, then end your game.",
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Jackpot share", Value: fmt.Sprintf("%d", output.JackpotShare), Inline: true},
			{Name: "Jackpot", Value: fmt.Sprintf("%d", output.Jackpot), Inline: true},
		},
	}

	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: actionRow(rollButton()),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

// renderRoll renders freshly rolled dice with the scoring choices
func renderRoll(output *game.RollDiceOutput) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Title:       "Dice rolled",
		Description: formatDice(output.Dice),
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score so far", Value: fmt.Sprintf("%d", output.Session.FinalScore()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Pick a face to score"},
	}

	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: actionRow(scoreButtons(output.Dice)...),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

// renderScore renders a scored roll
func renderScore(output *game.ScoreRollOutput, category uint8) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Scored %d points on %ds", output.Points, category),
		Description: formatDice(output.Dice),
		Color:       colorSuccess,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score so far", Value: fmt.Sprintf("%d", output.Session.FinalScore()), Inline: true},
		},
	}

	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: actionRow(rollButton(), endButton()),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

// renderEndGame renders the public announcement of a finished game
func renderEndGame(output *game.EndGameOutput, name string) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s finished with %d", name, output.FinalScore),
		Description: "Better luck next time.",
		Color:       colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Round", Value: fmt.Sprintf("%d", output.Ledger.Round), Inline: true},
			{Name: "High score", Value: fmt.Sprintf("%d", output.Ledger.HighestScore), Inline: true},
			{Name: "Jackpot", Value: fmt.Sprintf("%d", output.Ledger.CurrentJackpot), Inline: true},
		},
	}

	if output.NewHighScore {
		embed.Description = "New high score! The jackpot is yours to claim with `/dice withdraw` until someone beats it."
		embed.Color = colorJackpot
	}
	if output.Rank >= 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Leaderboard",
			Value: fmt.Sprintf("Placed #%d", output.Rank+1),
		})
	}
	if output.RoundAdvanced {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Round %d started before this game was recorded", output.Ledger.Round),
		}
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}

// renderWithdraw renders a jackpot payout
func renderWithdraw(output *game.WithdrawJackpotOutput, name string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       fmt.Sprintf("%s claimed the jackpot!", name),
				Description: fmt.Sprintf("%d paid out. New balance: %d", output.Amount, output.Balance),
				Color:       colorJackpot,
			},
		},
	}
}

// renderStatus renders a player's session and balance
func renderStatus(session *game.GetSessionOutput, balance uint64, now time.Time) *discordgo.InteractionResponseData {
	state := session.Session.State()
	embed := &discordgo.MessageEmbed{
		Title: "Your game",
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "State", Value: string(state), Inline: true},
			{Name: "Score", Value: fmt.Sprintf("%d", session.Session.FinalScore()), Inline: true},
			{Name: "Balance", Value: fmt.Sprintf("%d", balance), Inline: true},
		},
	}

	var buttons []discordgo.MessageComponent
	switch state {
	case models.SessionStateRolled:
		embed.Description = formatDice(session.Dice)
		buttons = scoreButtons(session.Dice)
	case models.SessionStatePaid:
		if wait := session.NextRollAt - now.Unix(); wait > 0 {
			embed.Description = fmt.Sprintf("Next roll in %ds", wait)
		}
		buttons = []discordgo.MessageComponent{rollButton(), endButton()}
	}

	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: actionRow(buttons...),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

// renderLeaderboard renders the all-time top scores
func renderLeaderboard(entries []models.LeaderboardEntry, names func(models.Address) string) *discordgo.InteractionResponseData {
	embed := &discordgo.MessageEmbed{
		Title: "🏆 Leaderboard",
		Color: colorJackpot,
	}

	if len(entries) == 0 {
		embed.Description = "No scores yet."
	} else {
		var sb strings.Builder
		for i, entry := range entries {
			fmt.Fprintf(&sb, "%d. %s: %d\n", i+1, names(entry.Player), entry.Score)
		}
		embed.Description = sb.String()
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
}

// renderJackpot renders the ledger and pool
func renderJackpot(output *game.GetLedgerOutput, winner string) *discordgo.InteractionResponseData {
	ledger := output.Ledger
	if !ledger.HasWinner() {
		winner = "nobody yet"
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Jackpot", Value: fmt.Sprintf("%d", output.Jackpot), Inline: true},
		{Name: "High score", Value: fmt.Sprintf("%d", ledger.HighestScore), Inline: true},
		{Name: "Winner", Value: winner, Inline: true},
		{Name: "Round", Value: fmt.Sprintf("%d", ledger.Round), Inline: true},
		{Name: "Price", Value: fmt.Sprintf("%d", ledger.PriceToPlay), Inline: true},
	}
	if ledger.GamesTillJackpot > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Games left in round",
			Value:  fmt.Sprintf("%d", gamesLeft(ledger)),
			Inline: true,
		})
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:  "💰 Jackpot",
				Color:  colorJackpot,
				Fields: fields,
			},
		},
		Components: actionRow(payButton(ledger.PriceToPlay)),
	}
}

func gamesLeft(ledger *models.GlobalLedger) uint64 {
	if ledger.GamesPlayed >= ledger.GamesTillJackpot {
		return 0
	}
	return ledger.GamesTillJackpot - ledger.GamesPlayed
}

// errorMessage turns a service error into something a player can act on
func errorMessage(err error) string {
	switch {
	case game.IsPrecondition(err), game.IsResource(err), game.IsInput(err):
		return hintFor(err)
	case game.IsNotFound(err):
		if errors.Is(err, game.ErrSessionNotFound) {
			return "You haven't joined yet. Use `/dice join` first."
		}
		return "The game hasn't been set up yet."
	case errors.Is(err, state.ErrConflict):
		return "The table is busy right now, try again in a moment."
	default:
		return "Something went wrong, please try again."
	}
}

func hintFor(err error) string {
	var gameErr game.GameError
	if !errors.As(err, &gameErr) {
		return err.Error()
	}

	switch gameErr {
	case game.ErrAlreadyInGame:
		return "You already have a game in progress."
	case game.ErrNotPaid:
		return "You need to pay first. Use `/dice pay`."
	case game.ErrAlreadyRolled:
		return "Score the dice on the table before rolling again."
	case game.ErrNotRolled:
		return "Roll the dice first."
	case game.ErrCooldownActive:
		return "Slow down! Wait a few seconds before rolling again."
	case game.ErrNotWinner:
		return "Only the current high scorer can claim the jackpot."
	case game.ErrInsufficientFunds:
		return "Your balance doesn't cover that."
	case game.ErrNoJackpot:
		return "The jackpot is empty."
	case game.ErrSessionExists:
		return "You've already joined."
	}

	// Remaining game errors read fine on their own
	return capitalize(gameErr.Error()) + "."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderError(err error) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Error",
				Description: errorMessage(err),
				Color:       colorError,
			},
		},
		Flags: discordgo.MessageFlagsEphemeral,
	}
}
