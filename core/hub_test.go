package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubCreatesOwners(t *testing.T) {
	h := NewHub(nil, nil)

	// Asking about an unknown owner does not register it.
	assert.Equal(t, schema.CalculatedIndicatorValues{}, h.Current("ghost"))
	assert.Empty(t, h.Owners())

	res, recomputed := h.FormulaChanged(context.Background(), "b", "c - p")
	assert.False(t, recomputed)
	assert.Equal(t, schema.CalculatedIndicatorValues{UsesFormula: true}, res)

	h.ValuesChanged(context.Background(), "a", schema.IndicatorValues{Loaded: true, Current: ptr(1)})
	assert.Equal(t, []string{"a", "b"}, h.Owners())
	assert.Equal(t, schema.CalculatedIndicatorValues{UsesFormula: true}, h.Current("b"))
}

func TestHubResultsAreCopies(t *testing.T) {
	var events []schema.ScoreComputed
	h := NewHub(nil, func(sc schema.ScoreComputed) { events = append(events, sc) })
	ctx := context.Background()

	res := h.ValuesChanged(ctx, "a", schema.IndicatorValues{Loaded: true, Current: ptr(5), Previous: ptr(4)})
	require.NotNil(t, res.Current)
	res.Current.Value = 999
	res.Ratio.Formatted = "tampered"

	asked := h.Current("a")
	assert.Equal(t, 5.0, asked.Current.Value)
	assert.Equal(t, "25.00", asked.Ratio.Formatted)

	asked.Current.Value = 111
	require.Len(t, events, 1)
	assert.Equal(t, 5.0, events[0].Values.Current.Value)
	assert.Equal(t, 5.0, h.Current("a").Current.Value)
}

func TestHubSink(t *testing.T) {
	var events []schema.ScoreComputed
	h := NewHub(nil, func(sc schema.ScoreComputed) { events = append(events, sc) })
	ctx := context.Background()

	h.FormulaChanged(ctx, "a", "c * 2")
	h.ValuesChanged(ctx, "a", schema.IndicatorValues{Loaded: true, Current: ptr(21)})
	h.FormulaChanged(ctx, "a", "c * 3")
	h.Current("a")

	require.Len(t, events, 2)
	assert.Equal(t, 42.0, events[0].Values.Score.Value)
	assert.Equal(t, 63.0, events[1].Values.Score.Value)
	assert.Equal(t, events[1].Values, h.Current("a"))
}

func TestHubHandleInvalid(t *testing.T) {
	h := NewHub(nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  schema.Message
	}{
		{"missing owner", schema.Message{Type: schema.AskMessage}},
		{"missing values", schema.Message{Type: schema.ValuesMessage, Owner: "a"}},
		{"unknown type", schema.Message{Type: "delete", Owner: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, emit, err := h.Handle(ctx, tt.msg)
			assert.ErrorIs(t, err, ErrInvalidMessage)
			assert.False(t, emit)
		})
	}
}

func TestHubRun(t *testing.T) {
	h := NewHub(nil, nil)
	in := make(chan schema.Message)
	out := make(chan schema.ScoreComputed, 8)
	errCh := make(chan error, 1)

	go func() {
		errCh <- h.Run(context.Background(), in, out)
	}()

	in <- schema.Message{Type: schema.FormulaMessage, Owner: "a", Formula: "return c - p"}
	in <- schema.Message{Type: schema.ValuesMessage, Owner: "a", Values: &schema.IndicatorValues{Loaded: true, Current: ptr(10), Previous: ptr(4)}}
	in <- schema.Message{Type: schema.FormulaMessage, Owner: "a", Formula: "c * 2"}
	in <- schema.Message{Type: schema.AskMessage, Owner: "a"}
	in <- schema.Message{Type: schema.FormulaMessage, Owner: "b", Formula: "p"}
	in <- schema.Message{Type: schema.AskMessage, Owner: "b"}
	close(in)

	require.NoError(t, <-errCh)
	close(out)

	var got []schema.ScoreComputed
	for sc := range out {
		got = append(got, sc)
	}
	require.Len(t, got, 4)
	assert.Equal(t, 6.0, got[0].Values.Score.Value)
	assert.Equal(t, 20.0, got[1].Values.Score.Value)
	assert.Equal(t, got[1], got[2])
	assert.Equal(t, schema.ScoreComputed{Owner: "b", Values: schema.CalculatedIndicatorValues{UsesFormula: true}}, got[3])
}

func TestHubRunInvalidMessage(t *testing.T) {
	h := NewHub(nil, nil)
	in := make(chan schema.Message, 1)
	in <- schema.Message{Type: "bogus", Owner: "a"}

	err := h.Run(context.Background(), in, make(chan schema.ScoreComputed))
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestHubRunCanceled(t *testing.T) {
	h := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan schema.Message, 1)
	out := make(chan schema.ScoreComputed) // never read
	errCh := make(chan error, 1)

	go func() {
		errCh <- h.Run(ctx, in, out)
	}()
	in <- schema.Message{Type: schema.AskMessage, Owner: "a"}
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestHubConcurrentOwners(t *testing.T) {
	h := NewHub(nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		owner := fmt.Sprintf("kpi-%02d", i)
		wg.Go(func() {
			h.FormulaChanged(ctx, owner, "c + 1")
			h.ValuesChanged(ctx, owner, schema.IndicatorValues{Loaded: true, Current: ptr(float64(i))})
		})
	}
	wg.Wait()

	owners := h.Owners()
	require.Len(t, owners, 50)
	for i, owner := range owners {
		res := h.Current(owner)
		require.NotNil(t, res.Score, owner)
		assert.Equal(t, float64(i)+1, res.Score.Value)
	}
}
