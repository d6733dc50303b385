package prompt

import (
	"testing"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestFormatPromptError(t *testing.T) {
	other := errors.New("terminal gone")
	tests := []struct {
		err  error
		want string
	}{
		{err: promptui.ErrAbort, want: "prompt aborted, closing"},
		{err: promptui.ErrInterrupt, want: "keyboard interrupt, closing"},
		{err: promptui.ErrEOF, want: "no input received, closing"},
		{err: other, want: "terminal gone"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.EqualError(t, FormatPromptError(tt.err), tt.want)
		})
	}
}
