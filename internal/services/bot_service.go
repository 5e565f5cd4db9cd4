package services

import (
	"errors"
	"fmt"
	"strings"

	"aguipuntos_backend/internal/models"
	"aguipuntos_backend/internal/repositories"
	"aguipuntos_backend/pkg/utils"
)

// Settings keys for Telegram chat registration. The singular key is the
// legacy format, migrated to the comma-separated list on first read.
const (
	settingKeyChat  = "telegram_chat_id"
	settingKeyChats = "telegram_chat_ids"
)

// maxRegisteredChats caps how many chats the bot will broadcast to.
const maxRegisteredChats = 2

var (
	ErrBotNotConfigured = errors.New("telegram bot token not configured")
	ErrMissingChatID    = errors.New("missing telegram chat id")
	ErrChatLimitReached = errors.New("chat registration limit reached")
)

// TelegramSender is the outbound messaging capability the bot service needs.
type TelegramSender interface {
	Configured() bool
	SendMessage(chatID, text string) error
}

// --- BotService Interface ---

type BotService interface {
	RegisterChat(chatID string) ([]string, error)
	SendDailySummary(opts ReportOptions) (*models.DailySummary, error)
}

// --- botService Implementation ---

type botService struct {
	settingRepo repositories.SettingRepository
	summaries   DailySummaryService
	telegram    TelegramSender
}

// NewBotService creates a new instance of BotService.
func NewBotService(settingRepo repositories.SettingRepository, summaries DailySummaryService, telegram TelegramSender) BotService {
	return &botService{settingRepo: settingRepo, summaries: summaries, telegram: telegram}
}

func parseChatIDs(value string) []string {
	seen := map[string]bool{}
	ids := []string{}
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" || seen[entry] {
			continue
		}
		seen[entry] = true
		ids = append(ids, entry)
	}
	return ids
}

// chatIDs returns the registered chat list, migrating the legacy single-id
// key when the list key is empty.
func (s *botService) chatIDs() ([]string, error) {
	stored, err := s.settingRepo.Get(settingKeyChats)
	if err == nil && stored != "" {
		return parseChatIDs(stored), nil
	}
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	legacy, err := s.settingRepo.Get(settingKeyChat)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	migrated := parseChatIDs(legacy)
	if len(migrated) > 0 {
		if err := s.settingRepo.Upsert(settingKeyChats, strings.Join(migrated, ",")); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
		}
	}
	return migrated, nil
}

// RegisterChat adds a chat to the broadcast list, returning the full list.
// Registration is idempotent per chat id.
func (s *botService) RegisterChat(chatID string) ([]string, error) {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return nil, ErrMissingChatID
	}

	existing, err := s.chatIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range existing {
		if id == chatID {
			return existing, nil
		}
	}
	if len(existing) >= maxRegisteredChats {
		return nil, ErrChatLimitReached
	}

	next := append(existing, chatID)
	if err := s.settingRepo.Upsert(settingKeyChats, strings.Join(next, ",")); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return next, nil
}

// SendDailySummary builds the digest and broadcasts it to every registered
// chat. Individual delivery failures are logged and skipped so one dead chat
// doesn't block the rest.
func (s *botService) SendDailySummary(opts ReportOptions) (*models.DailySummary, error) {
	if !s.telegram.Configured() {
		return nil, ErrBotNotConfigured
	}
	recipients, err := s.chatIDs()
	if err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, ErrMissingChatID
	}

	summary, err := s.summaries.BuildDailySummary(opts)
	if err != nil {
		return nil, err
	}

	message := strings.Join([]string{
		fmt.Sprintf("📊 Aguipuntos — Resumen (%s)", summary.FormattedDate),
		fmt.Sprintf("✅ Puntos cargados hoy: %d", summary.TotalPoints),
		fmt.Sprintf("🏆 Usuario que más cargó: %s (%d pts)", summary.TopUserName, summary.TopUserPoints),
	}, "\n")

	for _, chatID := range recipients {
		if err := s.telegram.SendMessage(chatID, message); err != nil {
			utils.LogError(err, "daily summary delivery failed for chat "+chatID)
		}
	}
	return summary, nil
}
