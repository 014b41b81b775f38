package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"needbook.app/telegram-bot/internal/common"
)

type sample struct {
	Name    string   `label:"name" validate:"notblank"`
	Comment string   `label:"comment" validate:"max=5"`
	Mode    string   `label:"mode" validate:"omitempty,oneof=Buy Donate"`
	Tags    []string `label:"tags" validate:"dive,oneof=a b"`
}

func TestValidate(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		in       sample
		wantKind error
		wantMsg  string
	}{
		{"ok", sample{Name: "x", Mode: "Buy", Tags: []string{"a"}}, nil, ""},
		{"blank name", sample{Name: "   "}, common.ErrFieldRequired, "name is required"},
		{"long comment", sample{Name: "x", Comment: "toolong"}, common.ErrFieldTooLong, "comment must not exceed 5 characters"},
		{"bad mode", sample{Name: "x", Mode: "Rent"}, common.ErrFieldInvalid, "mode must be one of: Buy Donate"},
		{"bad tag", sample{Name: "x", Tags: []string{"c"}}, common.ErrFieldInvalid, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantKind == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
			}
		})
	}
}
