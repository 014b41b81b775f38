package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	p := NewCommandParser()

	tests := []struct {
		in    string
		cmd   string
		args  []string
		isCmd bool
	}{
		{"/start", "start", nil, true},
		{"  /Rewards  ", "rewards", nil, true},
		{"/matches@NeedBookBot", "matches", nil, true},
		{"/history 5", "history", []string{"5"}, true},
		{"hello", "", nil, false},
		{"/", "", nil, false},
		{"/@bot", "", nil, false},
		{"", "", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			cmd, args, ok := p.ParseCommand(tt.in)
			assert.Equal(t, tt.isCmd, ok)
			assert.Equal(t, tt.cmd, cmd)
			assert.Equal(t, tt.args, args)
		})
	}
}
