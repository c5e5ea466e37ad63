// Package notify pushes enforcement alerts to the moderation team over the
// Telegram Bot API and lets allow-listed admins resolve appeals from the
// chat.
package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weddinggo/backend/internal/appeal"
	"weddinggo/backend/internal/models"
	"weddinggo/backend/internal/storage"
)

// BotService consumes enforcement events and routes admin commands.
type BotService struct {
	BotAPI      *tgbotapi.BotAPI
	Storage     *storage.Service
	Appeals     *appeal.Service
	AdminChatID int64
}

// NewBotService creates a new BotService instance.
func NewBotService(token string, s *storage.Service, appeals *appeal.Service, adminChatID int64) (*BotService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &BotService{
		BotAPI:      bot,
		Storage:     s,
		Appeals:     appeals,
		AdminChatID: adminChatID,
	}, nil
}

// Run starts the event listener and the command loop.
func (s *BotService) Run() {
	go s.listenEvents()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := s.BotAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}
		if update.Message.Chat.ID != s.AdminChatID {
			log.Printf("Ignoring command from non-admin chat %d", update.Message.Chat.ID)
			continue
		}
		s.handleCommand(update.Message)
	}
}

// listenEvents forwards suspension and appeal events to the admin chat.
func (s *BotService) listenEvents() {
	pubsub := s.Storage.SubscribeEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var event models.EnforcementEvent
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("ERROR: Failed to decode event in notifier: %v", err)
			continue
		}

		var text string
		switch event.Kind {
		case models.EventAccountSuspended:
			text = fmt.Sprintf("🚫 Account %s suspended (reason: %s, score: %.1f)",
				event.AccountID, event.Reason, event.Score)
		case models.EventAppealSubmitted:
			text = fmt.Sprintf("📝 New appeal %s from account %s.\nUse /appeals to list, /approve %s or /reject %s to resolve.",
				event.AppealID, event.AccountID, event.AppealID, event.AppealID)
		case models.EventAccountReinstated:
			text = fmt.Sprintf("✅ Account %s reinstated (score stays at %.1f)", event.AccountID, event.Score)
		default:
			continue
		}
		s.send(text)
	}
}

func (s *BotService) handleCommand(msg *tgbotapi.Message) {
	adminID := fmt.Sprintf("tg:%d", msg.From.ID)

	switch msg.Command() {
	case "appeals":
		appeals, err := s.Storage.ListAppealsByStatus(models.AppealPending)
		if err != nil {
			s.send(fmt.Sprintf("Failed to list appeals: %v", err))
			return
		}
		if len(appeals) == 0 {
			s.send("No pending appeals.")
			return
		}
		var b strings.Builder
		b.WriteString("Pending appeals:\n")
		for _, a := range appeals {
			fmt.Fprintf(&b, "• %s — account %s, submitted %s\n  %q\n",
				a.ID, a.AccountID, a.SubmittedAt.Format("2006-01-02 15:04"), truncate(a.Message, 120))
		}
		s.send(b.String())

	case "approve":
		s.resolveFromCommand(msg, models.AppealApproved, adminID)

	case "reject":
		s.resolveFromCommand(msg, models.AppealRejected, adminID)

	default:
		s.send("Commands: /appeals, /approve <appeal_id> [notes], /reject <appeal_id> [notes]")
	}
}

func (s *BotService) resolveFromCommand(msg *tgbotapi.Message, decision models.AppealStatus, adminID string) {
	args := strings.Fields(msg.CommandArguments())
	if len(args) == 0 {
		s.send(fmt.Sprintf("Usage: /%s <appeal_id> [notes]", msg.Command()))
		return
	}
	appealID := args[0]
	notes := strings.Join(args[1:], " ")

	resolved, err := s.Appeals.Resolve(appealID, decision, adminID, notes)
	if err != nil {
		s.send(fmt.Sprintf("Failed to resolve appeal %s: %v", appealID, err))
		return
	}
	s.send(fmt.Sprintf("Appeal %s %s (account %s).", resolved.ID, resolved.Status, resolved.AccountID))
}

func (s *BotService) send(text string) {
	reply := tgbotapi.NewMessage(s.AdminChatID, text)
	if _, err := s.BotAPI.Send(reply); err != nil {
		log.Printf("Error sending notifier message: %v", err)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
