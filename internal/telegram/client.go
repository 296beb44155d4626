// Package telegram provides the outbound message channel: signal alerts,
// resolution notices, and operational error/recovery messages.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/zuenet070/livebets/internal/models"
)

// Reporter supplies the /report command's text. Satisfied by the storage
// layer.
type Reporter interface {
	Report() (string, error)
}

// Client handles Telegram notifications.
type Client struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client.
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ListenForCommands starts a goroutine that polls for Telegram updates and
// handles bot commands. It returns immediately; the goroutine stops when
// ctx is cancelled.
func (c *Client) ListenForCommands(ctx context.Context, reporter Reporter) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := c.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.bot.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message != nil && update.Message.IsCommand() {
					c.handleCommand(update.Message, reporter)
				}
			}
		}
	}()
}

func (c *Client) handleCommand(msg *tgbotapi.Message, reporter Reporter) {
	switch msg.Command() {
	case "ping":
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pong")
		c.bot.Send(reply) //nolint:errcheck
	case "report":
		text := "No report available"
		if reporter != nil {
			if report, err := reporter.Report(); err == nil {
				text = report
			} else {
				text = fmt.Sprintf("Report failed: %v", err)
			}
		}
		reply := tgbotapi.NewMessage(msg.Chat.ID, text)
		c.bot.Send(reply) //nolint:errcheck
	}
}

// sendMarkdownV2 sends a MarkdownV2 message with linear-backoff retry.
func (c *Client) sendMarkdownV2(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = "MarkdownV2"

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if _, err := c.bot.Send(msg); err == nil {
			return nil
		} else {
			lastErr = err
		}
		time.Sleep(c.retryDelayBase * time.Duration(i+1))
	}
	return fmt.Errorf("failed after %d retries: %w", c.maxRetries, lastErr)
}

// SendStartup announces that the monitor came online.
func (c *Client) SendStartup() error {
	return c.sendMarkdownV2("🟢 *Live fixture monitor started*")
}

// SendError sends a monitoring error notification.
// Call this only on the first occurrence of a consecutive error sequence.
func (c *Client) SendError(cycleErr error) error {
	text := fmt.Sprintf("⚠️ *Monitoring error*\n`%s`", escapeMarkdownV2(cycleErr.Error()))
	return c.sendMarkdownV2(text)
}

// SendRecovery sends a recovery notification after consecutive failures.
func (c *Client) SendRecovery(failureCount int) error {
	text := fmt.Sprintf("✅ *Monitoring recovered* after %d consecutive failure\\(s\\)", failureCount)
	return c.sendMarkdownV2(text)
}

// SendSignal delivers one classified alert.
func (c *Client) SendSignal(sig models.Signal) error {
	return c.sendMarkdownV2(formatSignal(sig))
}

// SendResolution delivers one HIT/MISS result.
func (c *Client) SendResolution(res models.Resolution) error {
	return c.sendMarkdownV2(formatResolution(res))
}

func tierEmoji(t models.Tier) string {
	switch t {
	case models.TierExtreme:
		return "🔥"
	case models.TierPremium:
		return "⭐"
	default:
		return "⚽"
	}
}

func formatSignal(sig models.Signal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s SIGNAL*\n", tierEmoji(sig.Tier), sig.Tier)
	fmt.Fprintf(&b, "%s vs %s\n", escapeMarkdownV2(sig.Team), escapeMarkdownV2(sig.Opponent))
	fmt.Fprintf(&b, "Next goal: *%s*\n", escapeMarkdownV2(sig.Team))
	fmt.Fprintf(&b, "Minute %d, score %d\\-%d\n", sig.Minute, sig.GoalsHome, sig.GoalsAway)
	fmt.Fprintf(&b, "Score %s \\| Gap %s \\| Conf %s\n",
		escapeMarkdownV2(fmt.Sprintf("%.1f", sig.DominantScore)),
		escapeMarkdownV2(fmt.Sprintf("%.1f", sig.Gap)),
		escapeMarkdownV2(fmt.Sprintf("%.0f", sig.Confidence)))
	fmt.Fprintf(&b, "SOT %d\\-%d \\| Shots %d\\-%d",
		sig.SOTHalf, sig.OppSOTHalf, sig.ShotsHalf, sig.OppShotsHalf)
	if sig.Odds > 0 {
		fmt.Fprintf(&b, "\nWin odds %s", escapeMarkdownV2(fmt.Sprintf("%.2f", sig.Odds)))
	}
	return b.String()
}

func formatResolution(res models.Resolution) string {
	emoji := "✅"
	if res.Outcome == models.OutcomeMiss {
		emoji = "❌"
	}
	return fmt.Sprintf("%s *%s* \\(%s\\)\n%s\nMinute %d, %d\\-%d → %d\\-%d",
		emoji, res.Outcome, res.Tier,
		escapeMarkdownV2(res.Team),
		res.Minute,
		res.GoalsHomeBefore, res.GoalsAwayBefore,
		res.GoalsHomeAfter, res.GoalsAwayAfter)
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4) // pre-allocate with room for escapes
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
