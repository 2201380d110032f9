package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	pollTimeout    = 60
	pollRetryDelay = 3 * time.Second
)

// Update is the part of a Bot API update the bot reads.
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message adds the service fields Telegram introduced after the client's
// Bot API version. Bot API 6.0 renamed voice_chat_started to
// video_chat_started; both are accepted.
type Message struct {
	tgbotapi.Message
	VideoChatStarted *struct{} `json:"video_chat_started,omitempty"`
}

func (m *Message) videoChatStarted() bool {
	return m.VideoChatStarted != nil || m.VoiceChatStarted != nil
}

// DecodeUpdates parses a getUpdates result. An update that fails to decode
// is logged and returned with only its id, so the offset still moves past it.
func DecodeUpdates(result json.RawMessage) ([]Update, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	updates := make([]Update, 0, len(raw))
	for _, r := range raw {
		var upd Update
		if err := json.Unmarshal(r, &upd); err != nil {
			var id struct {
				UpdateID int `json:"update_id"`
			}
			if idErr := json.Unmarshal(r, &id); idErr != nil {
				return nil, fmt.Errorf("decode update: %w", err)
			}
			log.Printf("skipping update %d: %v", id.UpdateID, err)
			upd = Update{UpdateID: id.UpdateID}
		}
		updates = append(updates, upd)
	}
	return updates, nil
}

func (a *BotApp) getUpdates(offset int) ([]Update, error) {
	params := tgbotapi.Params{}
	params.AddNonZero("offset", offset)
	params.AddNonZero("timeout", pollTimeout)
	resp, err := a.tg.MakeRequest("getUpdates", params)
	if err != nil {
		return nil, err
	}
	return DecodeUpdates(resp.Result)
}

// pollUpdates long-polls getUpdates until ctx is done, then closes the
// returned channel. Request errors are retried after retryDelay.
func (a *BotApp) pollUpdates(ctx context.Context) <-chan Update {
	ch := make(chan Update)
	go func() {
		defer close(ch)
		offset := 0
		for ctx.Err() == nil {
			updates, err := a.getUpdates(offset)
			if err != nil {
				log.Printf("get updates error: %v, retrying in %s", err, a.retryDelay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(a.retryDelay):
				}
				continue
			}
			for _, upd := range updates {
				if upd.UpdateID < offset {
					continue
				}
				offset = upd.UpdateID + 1
				select {
				case ch <- upd:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch
}
