package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/KirkDiggler/jackpotdice/internal/common/clock"
	"github.com/KirkDiggler/jackpotdice/internal/models"
	"github.com/KirkDiggler/jackpotdice/internal/scoring"
	"github.com/KirkDiggler/jackpotdice/internal/services/game"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// AddressDomain namespaces addresses derived from Discord user IDs
const AddressDomain = "discord"

// actionTimeout bounds one action, replays on contention included
const actionTimeout = 10 * time.Second

// Button IDs
const (
	ButtonPay         = "dice_pay"
	ButtonRollDice    = "dice_roll"
	ButtonEndGame     = "dice_end"
	buttonScorePrefix = "dice_score:"
)

func scoreButtonID(category uint8) string {
	return buttonScorePrefix + strconv.Itoa(int(category))
}

// PlayerAddress maps a Discord user onto a game address
func PlayerAddress(userID string) models.Address {
	return models.DeriveAddress(AddressDomain, userID)
}

// player is the caller of an interaction
type player struct {
	Address models.Address
	Name    string
}

// playerFromInteraction identifies the caller in guilds and in DMs
func playerFromInteraction(i *discordgo.InteractionCreate) (player, bool) {
	user := i.User
	name := ""
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
		name = i.Member.Nick
	}
	if user == nil {
		return player{}, false
	}
	if name == "" {
		name = user.Username
	}

	return player{Address: PlayerAddress(user.ID), Name: name}, true
}

// DiceCommandConfig holds the dependencies of the /dice command
type DiceCommandConfig struct {
	GameService game.Service
	Clock       clock.Clock

	// StartingCredits are deposited for a player the first time they join
	StartingCredits uint64
}

// DiceCommand handles the /dice command and its buttons
type DiceCommand struct {
	BaseCommand
	gameService     game.Service
	clock           clock.Clock
	startingCredits uint64
}

// NewDiceCommand creates a new dice command handler
func NewDiceCommand(cfg *DiceCommandConfig) (*DiceCommand, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.GameService == nil {
		return nil, errors.New("game service cannot be nil")
	}

	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}

	minCategory := float64(scoring.MinCategory)

	return &DiceCommand{
		BaseCommand: BaseCommand{
			Name:        "dice",
			Description: "Pay to play, roll five dice and chase the jackpot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "join",
					Description: "Create your player session",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "pay",
					Description: "Pay the price to start a game",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "roll",
					Description: "Roll five dice",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "score",
					Description: "Score the dice on the table",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "face",
							Description: "The face to count (1-6)",
							Required:    true,
							MinValue:    &minCategory,
							MaxValue:    scoring.MaxCategory,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "end",
					Description: "Finish your game and submit the score",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "withdraw",
					Description: "Claim the jackpot if you hold the high score",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "status",
					Description: "Show your game and balance",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leaderboard",
					Description: "Show the all-time top scores",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "jackpot",
					Description: "Show the jackpot and the current leader",
				},
			},
		},
		gameService:     cfg.GameService,
		clock:           cfg.Clock,
		startingCredits: cfg.StartingCredits,
	}, nil
}

// Handle processes a Discord interaction for the dice command
func (c *DiceCommand) Handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name || len(data.Options) == 0 {
		return nil
	}

	p, ok := playerFromInteraction(i)
	if !ok {
		return RespondWithError(s, i, "Could not work out who you are.")
	}

	sub := data.Options[0]
	var category uint8
	if sub.Name == "score" && len(sub.Options) > 0 {
		category = uint8(sub.Options[0].IntValue())
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	resp, err := c.dispatch(ctx, sub.Name, p, category)
	if err != nil {
		return err
	}

	return RespondWithData(s, i, resp)
}

// HandleComponent processes the buttons attached to dice messages
func (c *DiceCommand) HandleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	p, ok := playerFromInteraction(i)
	if !ok {
		return RespondWithError(s, i, "Could not work out who you are.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	customID := i.MessageComponentData().CustomID

	switch {
	case customID == ButtonPay:
		return RespondWithData(s, i, c.pay(ctx, p))
	case customID == ButtonRollDice:
		return UpdateWithData(s, i, c.roll(ctx, p))
	case customID == ButtonEndGame:
		return RespondWithData(s, i, c.end(ctx, p))
	case strings.HasPrefix(customID, buttonScorePrefix):
		category, err := strconv.Atoi(strings.TrimPrefix(customID, buttonScorePrefix))
		if err != nil || category < scoring.MinCategory || category > scoring.MaxCategory {
			return RespondWithError(s, i, fmt.Sprintf("Unknown button: %s", customID))
		}
		return UpdateWithData(s, i, c.score(ctx, p, uint8(category)))
	default:
		return RespondWithError(s, i, fmt.Sprintf("Unknown button: %s", customID))
	}
}

func (c *DiceCommand) dispatch(ctx context.Context, subcommand string, p player, category uint8) (*discordgo.InteractionResponseData, error) {
	switch subcommand {
	case "join":
		return c.join(ctx, p), nil
	case "pay":
		return c.pay(ctx, p), nil
	case "roll":
		return c.roll(ctx, p), nil
	case "score":
		return c.score(ctx, p, category), nil
	case "end":
		return c.end(ctx, p), nil
	case "withdraw":
		return c.withdraw(ctx, p), nil
	case "status":
		return c.status(ctx, p), nil
	case "leaderboard":
		return c.leaderboard(ctx), nil
	case "jackpot":
		return c.jackpot(ctx), nil
	default:
		return nil, fmt.Errorf("unknown subcommand: %s", subcommand)
	}
}

func (c *DiceCommand) join(ctx context.Context, p player) *discordgo.InteractionResponseData {
	joined, err := c.gameService.CreateSession(ctx, &game.CreateSessionInput{
		Player:          p.Address,
		StartingBalance: c.startingCredits,
	})
	if err != nil {
		return c.failure(err, "join")
	}

	description := fmt.Sprintf("Welcome %s! Your address is `%s`.", p.Name, p.Address)
	if c.startingCredits > 0 {
		description += fmt.Sprintf("\nYou start with %d credits.", joined.Balance)
	}

	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       "Joined",
				Description: description,
				Color:       colorSuccess,
			},
		},
		Components: actionRow(payButton(c.price(ctx))),
		Flags:      discordgo.MessageFlagsEphemeral,
	}
}

// price is best effort; the pay button still works without a label
func (c *DiceCommand) price(ctx context.Context) uint64 {
	output, err := c.gameService.GetLedger(ctx, &game.GetLedgerInput{})
	if err != nil {
		return 0
	}
	return output.Ledger.PriceToPlay
}

func (c *DiceCommand) pay(ctx context.Context, p player) *discordgo.InteractionResponseData {
	output, err := c.gameService.Pay(ctx, &game.PayInput{
		Player: p.Address,
	})
	if err != nil {
		return c.failure(err, "pay")
	}

	return renderPay(output)
}

func (c *DiceCommand) roll(ctx context.Context, p player) *discordgo.InteractionResponseData {
	output, err := c.gameService.RollDice(ctx, &game.RollDiceInput{
		Player: p.Address,
	})
	if err != nil {
		return c.failure(err, "roll")
	}

	return renderRoll(output)
}

func (c *DiceCommand) score(ctx context.Context, p player, category uint8) *discordgo.InteractionResponseData {
	output, err := c.gameService.ScoreRoll(ctx, &game.ScoreRollInput{
		Player:   p.Address,
		Category: category,
	})
	if err != nil {
		return c.failure(err, "score")
	}

	return renderScore(output, category)
}

func (c *DiceCommand) end(ctx context.Context, p player) *discordgo.InteractionResponseData {
	output, err := c.gameService.EndGame(ctx, &game.EndGameInput{
		Player: p.Address,
	})
	if err != nil {
		return c.failure(err, "end")
	}

	return renderEndGame(output, p.Name)
}

func (c *DiceCommand) withdraw(ctx context.Context, p player) *discordgo.InteractionResponseData {
	output, err := c.gameService.WithdrawJackpot(ctx, &game.WithdrawJackpotInput{
		Caller: p.Address,
	})
	if err != nil {
		return c.failure(err, "withdraw")
	}

	return renderWithdraw(output, p.Name)
}

func (c *DiceCommand) status(ctx context.Context, p player) *discordgo.InteractionResponseData {
	session, err := c.gameService.GetSession(ctx, &game.GetSessionInput{
		Player: p.Address,
	})
	if err != nil {
		return c.failure(err, "status")
	}

	balance, err := c.gameService.GetBalance(ctx, &game.GetBalanceInput{
		Account: p.Address,
	})
	if err != nil {
		return c.failure(err, "status")
	}

	return renderStatus(session, balance.Balance, c.clock.Now())
}

func (c *DiceCommand) leaderboard(ctx context.Context) *discordgo.InteractionResponseData {
	output, err := c.gameService.GetLeaderboard(ctx, &game.GetLeaderboardInput{})
	if err != nil {
		return c.failure(err, "leaderboard")
	}

	return renderLeaderboard(output.Entries, models.Address.Short)
}

func (c *DiceCommand) jackpot(ctx context.Context) *discordgo.InteractionResponseData {
	output, err := c.gameService.GetLedger(ctx, &game.GetLedgerInput{})
	if err != nil {
		return c.failure(err, "jackpot")
	}

	return renderJackpot(output, output.Ledger.CurrentWinner.Short())
}

// failure logs unexpected errors and renders a reply for the player
func (c *DiceCommand) failure(err error, action string) *discordgo.InteractionResponseData {
	var gameErr game.GameError
	if errors.As(err, &gameErr) {
		log.Debug().Err(err).Str("action", action).Msg("rejected dice action")
	} else {
		log.Error().Err(err).Str("action", action).Msg("dice action failed")
	}

	return renderError(err)
}
