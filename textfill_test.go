package textfill_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/textfill"
	"github.com/aretw0/textfill/pkg/adapters/memory"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/selection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog []domain.StatusEvent

func (l *eventLog) Emit(ctx context.Context, ev domain.StatusEvent) error {
	*l = append(*l, ev)
	return nil
}

func twoLayerDoc() *memory.Document {
	doc := memory.NewDocument("doc-1")
	doc.AddText("title", "old title")
	doc.AddSetter("subtitle", "old subtitle")
	doc.Select("title", "subtitle")
	return doc
}

func TestFiller_SubmitAgainstService(t *testing.T) {
	var got struct {
		Description string `json:"description"`
		Count       int    `json:"count"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"texts":["Fresh Roast","Slow Mornings","extra"]}`))
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	filler := textfill.New(
		textfill.WithEndpoint(srv.URL),
		textfill.WithTimeout(time.Second),
		textfill.WithMetrics(reg),
	)

	doc := twoLayerDoc()
	var events eventLog
	final := filler.Submit(context.Background(), doc.Host(), "coffee headlines", &events)

	assert.Equal(t, domain.Succeeded(domain.FilledMessage(2)), final)
	assert.Equal(t, "coffee headlines", got.Description)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "Fresh Roast", doc.Text("title"))
	assert.Equal(t, "Slow Mornings", doc.Text("subtitle"))
	assert.Equal(t, []domain.StatusEvent{
		domain.Loading(domain.MsgProcessing),
		domain.Loading(domain.GeneratingMessage(2)),
		final,
	}, []domain.StatusEvent(events))

	count, err := testutil.GatherAndCount(reg, "textfill_invocations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFiller_RetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32
	gen := ports.GeneratorFunc(func(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
		if calls.Add(1) < 3 {
			return nil, &domain.TransportError{Err: errors.New("connection reset")}
		}
		return domain.GenerationResult{"a", "b"}, nil
	})

	filler := textfill.New(textfill.WithGenerator(gen), textfill.WithRetry(3, 0))
	doc := twoLayerDoc()
	var events eventLog
	final := filler.Submit(context.Background(), doc.Host(), "x", &events)

	assert.Equal(t, domain.StatusSuccess, final.Type)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, "a", doc.Text("title"))
}

func TestFiller_HandleMessageEnvelope(t *testing.T) {
	gen := ports.GeneratorFunc(func(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
		return domain.GenerationResult{"one", "two"}, nil
	})
	filler := textfill.New(textfill.WithGenerator(gen))
	doc := twoLayerDoc()

	var events eventLog
	handled, err := filler.HandleMessage(context.Background(), doc.Host(),
		[]byte(`{"pluginMessage":{"type":"submit","text":"hi"}}`), &events)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "two", doc.Text("subtitle"))

	handled, err = filler.HandleMessage(context.Background(), doc.Host(), []byte(`{"type":"close"}`), &events)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.False(t, filler.Busy())
}

func TestFiller_SelectionAndEnvelopeOptions(t *testing.T) {
	gen := ports.GeneratorFunc(func(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
		return domain.GenerationResult{"from document"}, nil
	})
	filler := textfill.New(
		textfill.WithGenerator(gen),
		textfill.WithSelectionAccessor(selection.Document),
		textfill.WithEnvelopeKeys("payload"),
	)
	doc := twoLayerDoc()
	doc.Selection = []string{"subtitle"}

	var events eventLog
	handled, err := filler.HandleMessage(context.Background(), doc.Host(),
		[]byte(`{"pluginMessage":{"type":"submit","text":"hi"}}`), &events)
	require.NoError(t, err)
	assert.False(t, handled)
	assert.Empty(t, events)

	handled, err = filler.HandleMessage(context.Background(), doc.Host(),
		[]byte(`{"payload":{"type":"submit","text":"hi"}}`), &events)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "from document", doc.Text("subtitle"))
	assert.Equal(t, "old title", doc.Text("title"))
}

func TestFiller_Generate(t *testing.T) {
	gen := ports.GeneratorFunc(func(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
		return domain.GenerationResult{description}, nil
	})
	filler := textfill.New(textfill.WithGenerator(gen))
	texts, err := filler.Generate(context.Background(), "solo", 1)
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationResult{"solo"}, texts)
	assert.NotNil(t, filler.Orchestrator())
	assert.NotNil(t, filler.Generator())
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, textfill.Version)
}
