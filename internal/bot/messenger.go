package bot

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Messenger отправляет исходящие сообщения.
// В проде — telego, в тестах — запись в память.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error
	SendPhoto(ctx context.Context, chatID int64, photo, caption string, markup telego.ReplyMarkup) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

type telegoMessenger struct {
	api *telego.Bot
}

// NewMessenger оборачивает telego.Bot.
func NewMessenger(api *telego.Bot) Messenger {
	return &telegoMessenger{api: api}
}

func (m *telegoMessenger) SendText(ctx context.Context, chatID int64, text string, markup telego.ReplyMarkup) error {
	params := tu.Message(tu.ID(chatID), text).WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	_, err := m.api.SendMessage(ctx, params)
	return err
}

func (m *telegoMessenger) SendPhoto(ctx context.Context, chatID int64, photo, caption string, markup telego.ReplyMarkup) error {
	params := tu.Photo(tu.ID(chatID), inputFile(photo)).
		WithCaption(caption).
		WithParseMode(telego.ModeHTML)
	if markup != nil {
		params = params.WithReplyMarkup(markup)
	}
	_, err := m.api.SendPhoto(ctx, params)
	return err
}

func (m *telegoMessenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	params := tu.CallbackQuery(callbackID)
	if text != "" {
		params = params.WithText(text)
	}
	return m.api.AnswerCallbackQuery(ctx, params)
}

// inputFile: ссылки из seed отправляем как URL, фото пользователя — как file_id.
func inputFile(photo string) telego.InputFile {
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") {
		return tu.FileFromURL(photo)
	}
	return tu.FileFromID(photo)
}
