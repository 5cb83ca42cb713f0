package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Structura/internal/logger"
)

const (
	DefaultAPI  = "https://api.telegram.org"
	pollTimeout = 20
	retryDelay  = 2 * time.Second
)

type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int       `json:"message_id"`
	Chat      Chat      `json:"chat"`
	Text      string    `json:"text"`
	Caption   string    `json:"caption"`
	Document  *Document `json:"document"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Document struct {
	FileName string `json:"file_name"`
}

type UpdateResponse struct {
	OK          bool     `json:"ok"`
	Description string   `json:"description"`
	Result      []Update `json:"result"`
}

type Client struct {
	API   string
	Token string
	HTTP  *http.Client
}

func NewClient(token string) *Client {
	return &Client{
		API:   DefaultAPI,
		Token: token,
		HTTP:  &http.Client{Timeout: (pollTimeout + 10) * time.Second},
	}
}

func (c *Client) method(name string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.API, c.Token, name)
}

func (c *Client) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	q := url.Values{
		"timeout": {strconv.Itoa(pollTimeout)},
		"offset":  {strconv.Itoa(offset)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.method("getUpdates")+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out UpdateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !out.OK {
		return nil, fmt.Errorf("getUpdates: %s", out.Description)
	}
	return out.Result, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, replyTo int, text string) error {
	payload := map[string]any{
		"chat_id":             chatID,
		"text":                text,
		"reply_to_message_id": replyTo,
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.method("sendMessage"), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("sendMessage: status %d", res.StatusCode)
	}
	return nil
}

// Responder turns a message (and an optional attached file name) into a reply.
type Responder interface {
	Respond(message, filename string) string
}

type Bot struct {
	Client    *Client
	Responder Responder
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	offset := 0
	for {
		updates, err := b.Client.GetUpdates(ctx, offset)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			logger.Warn("getUpdates failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateID + 1
			b.Handle(ctx, u)
		}
	}
}

func (b *Bot) Handle(ctx context.Context, u Update) {
	m := u.Message
	if m == nil {
		return
	}
	text, filename := m.Text, ""
	if m.Document != nil {
		text, filename = m.Caption, m.Document.FileName
	}
	if text == "" && filename == "" {
		return
	}
	reply := b.Responder.Respond(text, filename)
	if err := b.Client.SendMessage(ctx, m.Chat.ID, m.MessageID, reply); err != nil {
		logger.Warn("sendMessage failed", "chat_id", m.Chat.ID, "error", err)
	}
}
