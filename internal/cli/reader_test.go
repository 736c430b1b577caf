package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "plain line", input: "RIV\n", want: []string{"RIV"}},
		{name: "surrounding whitespace", input: "  300  \n", want: []string{"300"}},
		{name: "empty line", input: "\n", want: []string{""}},
		{name: "last line without newline", input: "A\nC", want: []string{"A", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))
			for _, want := range tt.want {
				got, err := r.ReadLine(context.Background())
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
			_, err := r.ReadLine(context.Background())
			assert.ErrorIs(t, err, io.EOF)
		})
	}
}

func TestLineReader_CancelKeepsLine(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()

	r := NewLineReader(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)

	go func() {
		_, _ = io.WriteString(pw, "yes\n")
		_ = pw.Close()
	}()
	got, err := r.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "yes", got)
}
