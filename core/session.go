package core

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
)

// maxMessageSize bounds one JSON line read by a session.
const maxMessageSize = 1 << 20

// ExecuteSession drives a Hub with JSON-lines messages read from r and writes
// one JSON-encoded ScoreComputed per line to w. Malformed lines are skipped
// with a warning. The session ends when r is exhausted, when ctx is done or on
// the first message the hub rejects.
func ExecuteSession(ctx context.Context, cfg *contract.Config, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sink Sink
	if cfg.Verbose {
		sink = func(sc schema.ScoreComputed) {
			contract.LogInfo("recomputed %s: %s", sc.Owner, sc.Values.State())
		}
	}
	hub := NewHub(NewScorerFromConfig(cfg), sink)

	in := make(chan schema.Message)
	out := make(chan schema.ScoreComputed)

	// The reader is not waited on: it may be blocked on r after the hub stops.
	go readMessages(ctx, r, in)

	var writeErr error
	var wg sync.WaitGroup
	wg.Go(func() {
		enc := json.NewEncoder(w)
		for sc := range out {
			if writeErr != nil {
				continue
			}
			if err := enc.Encode(sc); err != nil {
				writeErr = err
				cancel()
			}
		}
	})

	runErr := hub.Run(ctx, in, out)
	close(out)
	wg.Wait()
	if cfg.Verbose {
		owners := hub.Owners()
		contract.LogInfo("session ended with %d owners: %s", len(owners), strings.Join(owners, ", "))
	}

	if writeErr != nil {
		return fmt.Errorf("error writing session output: %w", writeErr)
	}
	if runErr != nil {
		return fmt.Errorf("session stopped: %w", runErr)
	}
	return nil
}

// readMessages decodes one Message per non-blank line and closes in when r is
// exhausted or ctx is done.
func readMessages(ctx context.Context, r io.Reader, in chan<- schema.Message) {
	defer close(in)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var msg schema.Message
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			contract.LogWarn("Skipping malformed message", fmt.Errorf("line %d: %w", line, err))
			continue
		}
		select {
		case in <- msg:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		contract.LogWarn("Error reading session input", err)
	}
}
