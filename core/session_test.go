package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, out string) []schema.ScoreComputed {
	t.Helper()
	var results []schema.ScoreComputed
	dec := json.NewDecoder(strings.NewReader(out))
	for dec.More() {
		var sc schema.ScoreComputed
		require.NoError(t, dec.Decode(&sc))
		results = append(results, sc)
	}
	return results
}

func TestExecuteSession(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"formula","owner":"kpi","formula":"return c * 2"}`,
		`{"type":"ask","owner":"kpi"}`,
		``,
		`{"type":"values","owner":"kpi","values":{"loaded":true,"current":"21","previous":20}}`,
		`not json`,
		`{"type":"formula","owner":"kpi","formula":"return c + p"}`,
		`{"type":"values","owner":"other","values":{"loaded":true,"failed":true}}`,
	}, "\n")

	var out bytes.Buffer
	cfg := testConfig(t, schema.JSONOut)
	require.NoError(t, ExecuteSession(context.Background(), cfg, strings.NewReader(input), &out))

	results := decodeLines(t, out.String())
	require.Len(t, results, 4)

	// ask before any values
	assert.Equal(t, "kpi", results[0].Owner)
	assert.Equal(t, schema.NotLoadedState, results[0].Values.State())
	assert.True(t, results[0].Values.UsesFormula)

	require.NotNil(t, results[1].Values.Score)
	assert.Equal(t, 42.0, results[1].Values.Score.Value)

	require.NotNil(t, results[2].Values.Score)
	assert.Equal(t, 41.0, results[2].Values.Score.Value)

	assert.Equal(t, "other", results[3].Owner)
	assert.Equal(t, schema.LoadFailedState, results[3].Values.State())
}

func TestExecuteSessionInvalidMessage(t *testing.T) {
	input := `{"type":"ask","owner":"kpi"}` + "\n" + `{"type":"bogus","owner":"kpi"}` + "\n" + `{"type":"ask","owner":"kpi"}`

	var out bytes.Buffer
	err := ExecuteSession(context.Background(), testConfig(t, schema.JSONOut), strings.NewReader(input), &out)
	require.ErrorIs(t, err, ErrInvalidMessage)
	assert.Len(t, decodeLines(t, out.String()), 1)
}

func TestExecuteSessionCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := ExecuteSession(ctx, testConfig(t, schema.JSONOut), strings.NewReader(`{"type":"ask","owner":"kpi"}`), &out)
	require.ErrorIs(t, err, context.Canceled)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExecuteSessionWriteError(t *testing.T) {
	input := strings.Repeat(`{"type":"ask","owner":"kpi"}`+"\n", 5)
	err := ExecuteSession(context.Background(), testConfig(t, schema.JSONOut), strings.NewReader(input), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
