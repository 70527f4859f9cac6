package intents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/greenbot-eco/greenbot/internal/events"
	"github.com/greenbot-eco/greenbot/internal/types"
)

const defaultCity = "Paris"

type ecoEvents struct {
	catalog events.Catalog
	now     func() time.Time
	loc     *time.Location
}

func (h *ecoEvents) handle(ctx context.Context, p types.Parameters) (string, error) {
	city := cityParam(p)

	evts, err := h.catalog.ForCity(ctx, city)
	if err != nil {
		return "", fmt.Errorf("lookup events for %s: %w", city, err)
	}
	if len(evts) == 0 {
		return fmt.Sprintf("Je n'ai pas trouvé d'événements écologiques spécifiques pour %s. "+
			"Je vous recommande de consulter le site de votre mairie ou les réseaux sociaux "+
			"des associations environnementales locales.", city), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Voici les prochains événements écologiques à %s :\n", city)
	for _, o := range events.Schedule(evts, h.now().In(h.loc)) {
		fmt.Fprintf(&b, "• %s: %s à %s\n", events.FormatDateFR(o.Date), o.Title, o.Location)
	}
	return b.String(), nil
}

// cityParam reads "location" either as a plain city name or as a
// Dialogflow @sys.location object carrying a "city" field.
func cityParam(p types.Parameters) string {
	if obj, ok := p.Raw("location").(map[string]any); ok {
		return types.Parameters(obj).String("city", defaultCity)
	}
	return p.String("location", defaultCity)
}
