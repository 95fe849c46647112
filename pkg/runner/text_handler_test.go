package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Emit(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out, WithTextHandlerProfile(termenv.Ascii))

	ctx := context.Background()
	require.NoError(t, handler.Emit(ctx, domain.Loading("generating 2 texts")))
	require.NoError(t, handler.Emit(ctx, domain.Failed("not enough texts generated: requested 2, got 1")))
	require.NoError(t, handler.Emit(ctx, domain.Succeeded("filled 2 text layers")))

	assert.Equal(t,
		"… generating 2 texts\n"+
			"✗ not enough texts generated: requested 2, got 1\n"+
			"✓ filled 2 text layers\n",
		out.String())
}

func TestTextHandler_InputWrapsDescription(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("\n  coffee taglines \nquit\nignored\n"), out)

	data, err := handler.Input(context.Background())
	require.NoError(t, err)

	cmd, err := domain.DecodeCommand(data)
	require.NoError(t, err)
	assert.True(t, cmd.IsSubmit())
	assert.Equal(t, "coffee taglines", cmd.Text)

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.True(t, strings.HasPrefix(out.String(), "> "))
}

func TestTextHandler_InputRejectsOversized(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "4")
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("too long\nok\n"), out)

	data, err := handler.Input(context.Background())
	require.NoError(t, err)
	cmd, _ := domain.DecodeCommand(data)
	assert.Equal(t, "ok", cmd.Text)
	assert.Contains(t, out.String(), "[System] input exceeds maximum allowed size")
}

func TestTextHandler_InputEOF(t *testing.T) {
	handler := NewTextHandler(strings.NewReader(""), io.Discard)
	_, err := handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}
