package intents

import (
	"context"
	"fmt"
	"strings"

	"github.com/greenbot-eco/greenbot/internal/types"
)

type Activity string

const (
	ActivityTransport Activity = "transport"
	ActivityFood      Activity = "alimentation"
)

type TransportMode string

const (
	TransportCar   TransportMode = "voiture"
	TransportBus   TransportMode = "bus"
	TransportTrain TransportMode = "train"
	TransportPlane TransportMode = "avion"
)

// transportRates is the footprint multiplier per hour of travel.
var transportRates = map[TransportMode]float64{
	TransportCar:   120,
	TransportBus:   68,
	TransportTrain: 14,
	TransportPlane: 285,
}

type FoodType string

const (
	FoodMeat       FoodType = "viande"
	FoodFish       FoodType = "poisson"
	FoodVegetarian FoodType = "vegetarien"
	FoodVegan      FoodType = "vegan"
)

// mealFootprints is kg of CO2 per meal.
var mealFootprints = map[FoodType]float64{
	FoodMeat:       13.3,
	FoodFish:       3.9,
	FoodVegetarian: 1.7,
	FoodVegan:      1.1,
}

const trainTip = "Saviez-vous qu'en prenant le train pour ce même trajet, " +
	"vous réduiriez votre empreinte carbone de près de 90% ?"

// TransportRate returns the hourly multiplier for mode. Unknown modes are not ok.
func TransportRate(mode TransportMode) (float64, bool) {
	r, ok := transportRates[mode]
	return r, ok
}

// MealFootprint returns the per-meal footprint for food. Unknown types are not ok.
func MealFootprint(food FoodType) (float64, bool) {
	f, ok := mealFootprints[food]
	return f, ok
}

func carbonFootprint(_ context.Context, p types.Parameters) (string, error) {
	activity := Activity(p.String("activity", string(ActivityTransport)))

	switch activity {
	case ActivityTransport:
		mode := TransportMode(p.String("transport_type", string(TransportCar)))
		duration := durationMinutes(p.Raw("duration"))
		rate, _ := TransportRate(mode)
		footprint := rate * (duration / 60)

		text := fmt.Sprintf("Pour votre trajet en %s de %s minutes, "+
			"l'empreinte carbone estimée est de %s kg de CO2. ",
			mode, formatInt(roundHalfUp(duration)), toFixed(footprint, 2))
		if mode == TransportCar {
			text += trainTip
		}
		return text, nil

	case ActivityFood:
		food := FoodType(p.String("food_type", string(FoodMeat)))
		perMeal, _ := MealFootprint(food)
		return fmt.Sprintf("Un repas à base de %s génère environ %s kg de CO2. "+
			"Sur une semaine, cela représente %s kg de CO2.",
			food, toFixed(perMeal, 1), toFixed(perMeal*7, 1)), nil

	default:
		return fmt.Sprintf("Je ne sais pas encore estimer l'empreinte carbone de l'activité « %s ». "+
			"Essayez « transport » ou « alimentation ».", activity), nil
	}
}

// durationMinutes accepts a plain number of minutes, a numeric string, or a
// Dialogflow duration object such as {"amount": 2, "unit": "h"}.
func durationMinutes(raw any) float64 {
	amount := types.Parameters{"d": raw}.Number("d", 0)
	obj, ok := raw.(map[string]any)
	if !ok {
		return amount
	}
	unit, _ := obj["unit"].(string)
	switch strings.ToLower(unit) {
	case "s", "sec", "second":
		return amount / 60
	case "h", "hour":
		return amount * 60
	case "day":
		return amount * 24 * 60
	default:
		return amount
	}
}
