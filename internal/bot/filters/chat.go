// Package filters решает, какие чаты бот обслуживает.
package filters

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// GroupNotice — ответ на команду из группы или канала.
const GroupNotice = "NeedBook works in private chats only. Open a direct chat with me to exchange books."

// Notifier отправляет сообщение в чат вне сессии.
type Notifier func(ctx context.Context, chatID int64, text string)

type ChatFilter struct {
	notify Notifier
}

func NewChatFilter(notify Notifier) *ChatFilter {
	return &ChatFilter{notify: notify}
}

// CheckAccess пропускает только личные сообщения от пользователя.
// На команды из групп отвечает подсказкой, остальное молча игнорирует.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *telego.Message) bool {
	if message == nil {
		log.WithField("component", "ChatFilter").Warn("nil message")
		return false
	}

	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   message.Chat.ID,
		"chat_type": message.Chat.Type,
	})

	if message.From == nil {
		logger.Warn("nil message.From (service/channel message?)")
		return false
	}

	if message.Chat.Type == telego.ChatTypePrivate {
		return true
	}

	logger = logger.WithField("user_id", message.From.ID)
	if strings.HasPrefix(message.Text, "/") && f.notify != nil {
		logger.Info("deny: group command, sent notice")
		f.notify(ctx, message.Chat.ID, GroupNotice)
		return false
	}

	logger.Debug("deny: not a private chat")
	return false
}
