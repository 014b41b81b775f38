package filters

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
)

type notice struct {
	chatID int64
	text   string
}

func newFilter() (*ChatFilter, *[]notice) {
	var sent []notice
	f := NewChatFilter(func(_ context.Context, chatID int64, text string) {
		sent = append(sent, notice{chatID, text})
	})
	return f, &sent
}

func TestCheckAccess(t *testing.T) {
	user := &telego.User{ID: 42, Username: "rahul"}

	tests := []struct {
		name      string
		msg       *telego.Message
		allow     bool
		notifyCnt int
	}{
		{"nil message", nil, false, 0},
		{"private", &telego.Message{Chat: telego.Chat{ID: 42, Type: telego.ChatTypePrivate}, From: user, Text: "hi"}, true, 0},
		{"private without sender", &telego.Message{Chat: telego.Chat{ID: 42, Type: telego.ChatTypePrivate}}, false, 0},
		{"group text", &telego.Message{Chat: telego.Chat{ID: -100, Type: telego.ChatTypeGroup}, From: user, Text: "hello"}, false, 0},
		{"group command", &telego.Message{Chat: telego.Chat{ID: -100, Type: telego.ChatTypeSupergroup}, From: user, Text: "/start"}, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, sent := newFilter()
			assert.Equal(t, tt.allow, f.CheckAccess(context.Background(), tt.msg))
			assert.Len(t, *sent, tt.notifyCnt)
			if tt.notifyCnt > 0 {
				assert.Equal(t, int64(-100), (*sent)[0].chatID)
				assert.Equal(t, GroupNotice, (*sent)[0].text)
			}
		})
	}
}
