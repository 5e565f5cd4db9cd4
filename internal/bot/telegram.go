package bot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// TelegramAPIBase is the production Telegram Bot API endpoint.
const TelegramAPIBase = "https://api.telegram.org"

// Chat is the part of a Telegram chat object we care about.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is an incoming Telegram message.
type Message struct {
	Chat *Chat  `json:"chat"`
	Text string `json:"text"`
}

// Update is a Telegram webhook update. Only the fields used for chat
// registration are mapped.
type Update struct {
	Message      *Message `json:"message"`
	MyChatMember *struct {
		Chat *Chat `json:"chat"`
	} `json:"my_chat_member"`
}

// ChatIDFromUpdate extracts the originating chat id from an update, or ""
// when none is present.
func ChatIDFromUpdate(update Update) string {
	if update.Message != nil && update.Message.Chat != nil {
		return strconv.FormatInt(update.Message.Chat.ID, 10)
	}
	if update.MyChatMember != nil && update.MyChatMember.Chat != nil {
		return strconv.FormatInt(update.MyChatMember.Chat.ID, 10)
	}
	return ""
}

// IsStartCommand reports whether the update is a /start message.
func IsStartCommand(update Update) bool {
	if update.Message == nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(update.Message.Text), "/start")
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Client talks to the Telegram Bot API.
type Client struct {
	rest    *resty.Client
	baseURL string
	token   string
}

// NewClient creates a Telegram client. baseURL is TelegramAPIBase in
// production and an httptest server in tests.
func NewClient(baseURL, token string) *Client {
	return &Client{
		rest:    resty.New(),
		baseURL: baseURL,
		token:   token,
	}
}

// Configured reports whether a bot token is available.
func (c *Client) Configured() bool {
	return c.token != ""
}

// SendMessage delivers a plain-text message to the given chat.
func (c *Client) SendMessage(chatID, text string) error {
	if c.token == "" {
		return fmt.Errorf("missing telegram bot token")
	}
	if chatID == "" {
		return fmt.Errorf("missing telegram chat id")
	}

	resp, err := c.rest.R().
		SetHeader("Content-Type", "application/json").
		SetBody(sendMessageRequest{ChatID: chatID, Text: text}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token))
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}

	var answer apiResponse
	if err := json.Unmarshal(resp.Body(), &answer); err != nil {
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("telegram api status: %d", resp.StatusCode())
		}
		return fmt.Errorf("decoding telegram response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK || !answer.OK {
		description := answer.Description
		if description == "" {
			description = resp.Status()
		}
		return fmt.Errorf("telegram api error: %s", description)
	}
	return nil
}
