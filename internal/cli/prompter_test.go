package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr error
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "long yes with case", input: "  YES \n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty means no", input: "\n", want: false},
		{name: "retry after invalid", input: "maybe\ny\n", want: true},
		{name: "eof", input: "", wantErr: ErrInputTerminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Delete project?")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Delete project? [y/N]")
		})
	}
}

func TestPrompter_ChooseInvalidMessage(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("x\nb\n"), &out)

	got, err := p.Choose(context.Background(), "Pick", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", got)
	assert.Equal(t, 1, strings.Count(out.String(), "Invalid choice"))
}

func TestPrompter_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{})
	_, err := p.Confirm(ctx, "Continue?")
	assert.ErrorIs(t, err, context.Canceled)
}
