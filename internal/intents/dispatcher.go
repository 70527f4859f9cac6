// Package intents turns Dialogflow intents and their parameters into the
// French replies GreenBot sends back.
package intents

import (
	"context"
	"fmt"
	"time"

	"github.com/greenbot-eco/greenbot/internal/events"
	"github.com/greenbot-eco/greenbot/internal/types"
)

const (
	// UnknownIntentText answers intents with no handler.
	UnknownIntentText = "Désolé, je n'ai pas encore de réponse spécifique pour cet intent."
	// ApologyText replaces the reply when a request cannot be processed.
	ApologyText = "Désolé, une erreur s'est produite lors du traitement de votre demande."
)

// HandlerFunc produces the reply for one intent.
type HandlerFunc func(ctx context.Context, p types.Parameters) (string, error)

// Dispatcher routes an IntentRequest to its handler.
type Dispatcher struct {
	handlers map[types.Intent]HandlerFunc
}

// NewDispatcher wires the five intent handlers. clock and loc fix "now" for
// event dates; nil means time.Now and the local time zone.
func NewDispatcher(catalog events.Catalog, clock func() time.Time, loc *time.Location) *Dispatcher {
	if clock == nil {
		clock = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	ev := &ecoEvents{catalog: catalog, now: clock, loc: loc}

	return &Dispatcher{
		handlers: map[types.Intent]HandlerFunc{
			types.IntentCarbonFootprint: carbonFootprint,
			types.IntentEcoAdvice:       ecoAdvice,
			types.IntentRecycling:       recycling,
			types.IntentEcoEvents:       ev.handle,
			types.IntentAlternative:     alternative,
		},
	}
}

// Dispatch returns the reply for req. Unknown intents get UnknownIntentText;
// a handler error is returned as is and the caller decides what to send.
func (d *Dispatcher) Dispatch(ctx context.Context, req types.IntentRequest) (types.FulfillmentResponse, error) {
	intent, ok := types.ParseIntent(req.Intent)
	if !ok {
		return types.FulfillmentResponse{Text: UnknownIntentText}, nil
	}
	text, err := d.handlers[intent](ctx, req.Parameters)
	if err != nil {
		return types.FulfillmentResponse{}, fmt.Errorf("intent %s: %w", intent, err)
	}
	return types.FulfillmentResponse{Text: text}, nil
}
