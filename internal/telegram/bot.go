package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"go-karriere-scraper/internal/scraper"
)

// maxDescription keeps messages well under Telegram's 4096 character limit.
const maxDescription = 600

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return "N/A"
	}
	return *s
}

// FormatJob renders a job as a MarkdownV2 message.
func FormatJob(job scraper.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 *%s*\n", escapeMarkdown(orNA(job.Title)))
	fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(orNA(job.Company)))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(orNA(job.Location)))
	if job.PostedAt != nil {
		fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(*job.PostedAt))
	}
	if job.Description != nil {
		desc := []rune(*job.Description)
		if len(desc) > maxDescription {
			desc = append(desc[:maxDescription], '…')
		}
		fmt.Fprintf(&b, "📄 %s\n", escapeMarkdown(string(desc)))
	}
	// inside the link target only ) and \ need escaping
	link := strings.NewReplacer(`\`, `\\`, ")", `\)`).Replace(job.Link)
	fmt.Fprintf(&b, "🔗 [View Job](%s)\n", link)
	return b.String()
}

func (b *Bot) SendJob(job scraper.Job) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.Link),
		),
	)

	msg := tgbotapi.NewMessage(b.chatID, FormatJob(job))
	msg.ParseMode = "MarkdownV2"
	msg.ReplyMarkup = keyboard

	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

// NotifyResult sends a summary followed by one message per job. It stops at
// the first failed send.
func (b *Bot) NotifyResult(result *scraper.Result) error {
	summary := fmt.Sprintf("karriere.at: %d jobs for %q in %q", result.Count, result.Field, result.Region)
	if err := b.SendStatus(summary); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}
	for i, job := range result.Jobs {
		if err := b.SendJob(job); err != nil {
			return fmt.Errorf("send job %d (%s): %w", i+1, job.Link, err)
		}
	}
	return nil
}
