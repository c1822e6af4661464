package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/huangsam/indiscore/schema"
)

// ErrInvalidMessage is returned for messages the hub cannot route.
var ErrInvalidMessage = errors.New("invalid message")

// Hub routes notifications to one Calculator per formula owner. Owners are
// created on their first notification. All methods are safe for concurrent use.
type Hub struct {
	mu     sync.Mutex
	scorer *Scorer
	sink   Sink
	calcs  map[string]*Calculator
}

// NewHub returns an empty Hub. sink receives every recompute and is called
// with the hub locked, so it must not call back into the Hub. sink may be nil.
func NewHub(scorer *Scorer, sink Sink) *Hub {
	if scorer == nil {
		scorer = defaultScorer
	}
	return &Hub{scorer: scorer, sink: sink, calcs: make(map[string]*Calculator)}
}

// calculator returns the owner's calculator, creating it with script if missing.
func (h *Hub) calculator(owner, script string) (*Calculator, bool) {
	if c, ok := h.calcs[owner]; ok {
		return c, false
	}
	c := NewCalculator(owner, script, h.scorer, h.sink)
	h.calcs[owner] = c
	return c, true
}

// ValuesChanged recomputes owner's result from new raw values.
func (h *Hub) ValuesChanged(ctx context.Context, owner string, values schema.IndicatorValues) schema.CalculatedIndicatorValues {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, _ := h.calculator(owner, "")
	return c.ValuesChanged(ctx, values)
}

// FormulaChanged stores owner's formula and recomputes when possible.
// A new owner starts NotLoaded with script as its formula.
func (h *Hub) FormulaChanged(ctx context.Context, owner, script string) (schema.CalculatedIndicatorValues, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, created := h.calculator(owner, script)
	if created {
		return c.Current(), false
	}
	return c.FormulaChanged(ctx, script)
}

// Current answers the "ask current result" query. An unknown owner reads as
// NotLoaded and is not added to the hub.
func (h *Hub) Current(owner string) schema.CalculatedIndicatorValues {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.calcs[owner]
	if !ok {
		return schema.CalculatedIndicatorValues{}
	}
	return c.Current()
}

// Owners returns the known owner ids in sorted order.
func (h *Hub) Owners() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	owners := make([]string, 0, len(h.calcs))
	for owner := range h.calcs {
		owners = append(owners, owner)
	}
	sort.Strings(owners)
	return owners
}

// Handle applies one message. The returned ScoreComputed is meaningful when
// the bool is true: after a recompute, or for an ask.
func (h *Hub) Handle(ctx context.Context, msg schema.Message) (schema.ScoreComputed, bool, error) {
	if msg.Owner == "" {
		return schema.ScoreComputed{}, false, fmt.Errorf("%w: owner is required", ErrInvalidMessage)
	}
	switch msg.Type {
	case schema.ValuesMessage:
		if msg.Values == nil {
			return schema.ScoreComputed{}, false, fmt.Errorf("%w: values message for %q has no values", ErrInvalidMessage, msg.Owner)
		}
		res := h.ValuesChanged(ctx, msg.Owner, *msg.Values)
		return schema.ScoreComputed{Owner: msg.Owner, Values: res}, true, nil
	case schema.FormulaMessage:
		res, ok := h.FormulaChanged(ctx, msg.Owner, msg.Formula)
		return schema.ScoreComputed{Owner: msg.Owner, Values: res}, ok, nil
	case schema.AskMessage:
		return schema.ScoreComputed{Owner: msg.Owner, Values: h.Current(msg.Owner)}, true, nil
	default:
		return schema.ScoreComputed{}, false, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, msg.Type)
	}
}

// Run handles messages from in until it is closed or ctx is done, sending a
// ScoreComputed to out after every recompute and for every ask. Run returns
// nil when in is closed and the first invalid message error otherwise.
func (h *Hub) Run(ctx context.Context, in <-chan schema.Message, out chan<- schema.ScoreComputed) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			sc, emit, err := h.Handle(ctx, msg)
			if err != nil {
				return err
			}
			if !emit {
				continue
			}
			select {
			case out <- sc:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
