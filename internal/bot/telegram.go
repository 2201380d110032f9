package bot

import (
	"context"
	"log"
	"time"

	"speakpoints-bot/pkg/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const unavailableText = "⚠️ SpeakPoints are unavailable right now. Please try again later."

type TelegramBotInterface interface {
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

var newTelegramBot = func(token string, debug bool) (TelegramBotInterface, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	log.Printf("authorized on account %s", api.Self.UserName)
	return api, nil
}

type BotApp struct {
	tg         TelegramBotInterface
	cfg        *Config
	policy     *Policy
	retryDelay time.Duration
}

func NewBotApp(cfg *Config, keeper *store.Keeper) (*BotApp, error) {
	bot, err := newTelegramBot(cfg.TelegramToken, cfg.TelegramDebug)
	if err != nil {
		return nil, err
	}
	checker := NewChatAdminChecker(bot, cfg.AdminIDs)
	return &BotApp{
		tg:         bot,
		cfg:        cfg,
		policy:     NewPolicy(cfg, keeper, checker),
		retryDelay: pollRetryDelay,
	}, nil
}

// StartPolling handles updates one at a time until ctx is cancelled.
func (a *BotApp) StartPolling(ctx context.Context) error {
	updates := a.pollUpdates(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a.handleUpdate(ctx, upd)
		}
	}
}

func (a *BotApp) handleUpdate(ctx context.Context, upd Update) {
	msg := upd.Message
	if msg == nil {
		return
	}
	ev := Classify(msg)
	if ev.Kind == EventIgnored {
		return
	}

	resp, err := a.policy.Handle(ctx, ev)
	if err != nil {
		log.Printf("%s handling error for user %d: %v", ev.Kind, ev.UserID, err)
		a.reply(msg, unavailableText)
		return
	}
	if resp.Text != "" {
		a.reply(msg, resp.Text)
	}
	if resp.Announce != "" {
		a.send(tgbotapi.NewMessage(resp.AnnounceChatID, resp.Announce))
	}
}

func (a *BotApp) reply(msg *Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	a.send(out)
}

// send does not retry; failures are only logged.
func (a *BotApp) send(c tgbotapi.MessageConfig) {
	if _, err := a.tg.Send(c); err != nil {
		log.Printf("send message to chat %d error: %v", c.ChatID, err)
	}
}
