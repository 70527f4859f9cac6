package types

// Intent is the display name Dialogflow assigns to a classified user request.
type Intent string

const (
	IntentCarbonFootprint Intent = "calcul_empreinte_carbone"
	IntentEcoAdvice       Intent = "eco_conseil_personnalise"
	IntentRecycling       Intent = "info_recyclage"
	IntentEcoEvents       Intent = "evenements_eco"
	IntentAlternative     Intent = "alternative_eco"
)

// ParseIntent reports whether s names an intent the webhook answers.
func ParseIntent(s string) (Intent, bool) {
	switch Intent(s) {
	case IntentCarbonFootprint, IntentEcoAdvice, IntentRecycling, IntentEcoEvents, IntentAlternative:
		return Intent(s), true
	default:
		return "", false
	}
}
