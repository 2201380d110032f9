package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PrivilegeChecker reports whether a user holds an elevated role in a chat.
type PrivilegeChecker interface {
	IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error)
}

type ChatMemberGetter interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// ChatAdminChecker treats chat administrators, the chat creator and the
// configured admin ids as privileged.
type ChatAdminChecker struct {
	tg       ChatMemberGetter
	adminIDs map[int64]bool
}

func NewChatAdminChecker(tg ChatMemberGetter, adminIDs map[int64]bool) *ChatAdminChecker {
	return &ChatAdminChecker{tg: tg, adminIDs: adminIDs}
}

func (c *ChatAdminChecker) IsPrivileged(ctx context.Context, chatID, userID int64) (bool, error) {
	if c.adminIDs[userID] {
		return true, nil
	}
	if c.tg == nil {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	member, err := c.tg.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}
	return member.IsAdministrator() || member.IsCreator(), nil
}
