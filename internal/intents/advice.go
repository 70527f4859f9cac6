package intents

import (
	"context"

	"github.com/greenbot-eco/greenbot/internal/types"
)

type Domain string

const (
	DomainGeneral Domain = "général"
	DomainEnergy  Domain = "énergie"
	DomainWaste   Domain = "déchets"
)

// Level is the user's self-declared expertise. Anything other than
// LevelBeginner gets the advanced advice.
type Level string

const LevelBeginner Level = "débutant"

type advice struct {
	beginner string
	advanced string
}

var adviceByDomain = map[Domain]advice{
	DomainEnergy: {
		beginner: "Pour réduire votre consommation d'énergie, commencez par remplacer vos ampoules par des LED, " +
			"qui consomment jusqu'à 90% d'électricité en moins que les ampoules incandescentes et durent 15 fois plus longtemps. " +
			"Éteignez également les appareils en veille, qui peuvent représenter jusqu'à 10% de votre facture d'électricité.",
		advanced: "Pour optimiser votre consommation énergétique, envisagez d'installer des panneaux solaires " +
			"qui pourraient couvrir 30 à 50% de vos besoins. Complétez avec un système de domotique pour gérer intelligemment " +
			"le chauffage et l'éclairage, réduisant ainsi votre consommation totale de 15 à 30%. " +
			"Vous pourriez également rejoindre une coopérative d'énergie citoyenne locale.",
	},
	DomainWaste: {
		beginner: "Pour réduire vos déchets, adoptez les 3R : Réduire, Réutiliser, Recycler. " +
			"Commencez par utiliser un sac réutilisable pour vos courses, évitez les produits à usage unique, " +
			"et assurez-vous de bien trier vos déchets recyclables. Ces gestes simples peuvent réduire vos déchets de 30%.",
		advanced: "Pour une démarche zéro déchet avancée, créez votre compost (même en appartement avec un lombricomposteur), " +
			"achetez en vrac avec vos propres contenants, fabriquez vos produits ménagers et d'hygiène. " +
			"Vous pouvez également pratiquer l'upcycling pour transformer vos déchets en objets utiles ou décoratifs. " +
			"Ces pratiques peuvent réduire vos déchets de plus de 80%.",
	},
}

const generalAdvice = "Pour commencer votre démarche écologique, concentrez-vous sur un aspect qui vous tient à cœur : " +
	"alimentation, transport, énergie, déchets... Fixez-vous des objectifs réalistes et progressifs. " +
	"Souvenez-vous que chaque petit geste compte et que l'impact collectif de nos actions individuelles est significatif."

// Advice returns the paragraph for domain and level; ok is false when the
// domain has no dedicated advice.
func Advice(domain Domain, level Level) (string, bool) {
	a, ok := adviceByDomain[domain]
	if !ok {
		return generalAdvice, false
	}
	if level == LevelBeginner {
		return a.beginner, true
	}
	return a.advanced, true
}

func ecoAdvice(_ context.Context, p types.Parameters) (string, error) {
	domain := Domain(p.String("eco_domain", string(DomainGeneral)))
	level := Level(p.String("expertise_level", string(LevelBeginner)))
	text, _ := Advice(domain, level)
	return text, nil
}
