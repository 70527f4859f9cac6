package intents

import (
	"context"

	"github.com/greenbot-eco/greenbot/internal/types"
)

type Material string

const (
	MaterialPlastic Material = "plastique"
	MaterialGlass   Material = "verre"
)

var recyclingByMaterial = map[Material]string{
	MaterialPlastic: "Le plastique se recycle différemment selon son type. Recherchez le numéro dans le triangle ♻️ sous l'objet : " +
		"Les types 1 (PET) et 2 (HDPE) sont les plus facilement recyclables et vont dans la poubelle jaune. " +
		"Les types 3 (PVC) et 6 (PS) sont rarement recyclés. " +
		"Important : les bouteilles doivent être vidées mais pas écrasées, et les bouchons vissés dessus.",
	MaterialGlass: "Le verre est recyclable à 100% et indéfiniment sans perdre ses propriétés ! " +
		"Déposez bouteilles, pots et bocaux en verre dans les conteneurs à verre, sans les bouchons ni couvercles. " +
		"Attention : la vaisselle, les miroirs et les ampoules ne sont pas recyclables avec le verre d'emballage " +
		"car ils ont une composition différente.",
}

const recyclingFallback = "Pour savoir comment recycler correctement ce matériau, consultez le guide local de tri de votre commune " +
	"ou utilisez l'application mobile Guide du Tri de CITEO qui vous donnera les consignes spécifiques pour votre localité."

// RecyclingInfo returns the sorting guidance for m; ok is false for
// materials without dedicated guidance.
func RecyclingInfo(m Material) (string, bool) {
	if text, ok := recyclingByMaterial[m]; ok {
		return text, true
	}
	return recyclingFallback, false
}

func recycling(_ context.Context, p types.Parameters) (string, error) {
	text, _ := RecyclingInfo(Material(p.String("material", string(MaterialPlastic))))
	return text, nil
}
