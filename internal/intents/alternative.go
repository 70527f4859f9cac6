package intents

import (
	"context"

	"github.com/greenbot-eco/greenbot/internal/types"
)

type Product string

const (
	ProductPlasticBottle Product = "bouteille plastique"
	ProductPlasticBag    Product = "sac plastique"
)

var alternativeByProduct = map[Product]string{
	ProductPlasticBottle: "Pour remplacer les bouteilles en plastique, optez pour une gourde réutilisable en inox. " +
		"Durable et sans BPA, elle conservera votre eau fraîche plus longtemps. " +
		"Une gourde de qualité coûte entre 15€ et 30€, mais s'amortit en quelques mois : " +
		"une famille de 4 personnes économise environ 800€ par an en arrêtant l'eau en bouteille.",
	ProductPlasticBag: "Pour remplacer les sacs plastiques, utilisez des sacs en tissu réutilisables. " +
		"Les modèles pliables tiennent facilement dans une poche ou un sac à main. " +
		"Pour vos fruits et légumes, privilégiez les sacs à vrac lavables en coton bio. " +
		"Un Français utilise en moyenne 80 sacs plastiques par an, alors que votre sac en tissu " +
		"peut durer plus de 10 ans !",
}

const alternativeFallback = "Pour trouver une alternative écologique à ce produit, demandez conseil dans une boutique " +
	"zéro déchet près de chez vous. Ces commerces proposent généralement des solutions durables " +
	"et vous aideront à choisir le produit adapté à vos besoins."

// SustainableAlternative returns the suggestion for p; ok is false for
// products without a dedicated suggestion.
func SustainableAlternative(p Product) (string, bool) {
	if text, ok := alternativeByProduct[p]; ok {
		return text, true
	}
	return alternativeFallback, false
}

func alternative(_ context.Context, p types.Parameters) (string, error) {
	text, _ := SustainableAlternative(Product(p.String("product", string(ProductPlasticBottle))))
	return text, nil
}
