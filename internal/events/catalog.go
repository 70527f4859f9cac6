package events

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog looks up the events of a city. Lookup is by exact city name;
// an unknown city yields no events and no error.
type Catalog interface {
	ForCity(ctx context.Context, city string) ([]Event, error)
}

// StaticCatalog is an in-memory Catalog. Its contents can be swapped
// wholesale while requests are being served.
type StaticCatalog struct {
	mu     sync.RWMutex
	cities map[string][]Event
}

func NewStaticCatalog(cities map[string][]Event) *StaticCatalog {
	c := &StaticCatalog{}
	c.Replace(cities)
	return c
}

func (c *StaticCatalog) ForCity(_ context.Context, city string) ([]Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	evts := c.cities[city]
	return append([]Event(nil), evts...), nil
}

// Replace installs a new city table.
func (c *StaticCatalog) Replace(cities map[string][]Event) {
	cp := make(map[string][]Event, len(cities))
	for city, evts := range cities {
		cp[city] = append([]Event(nil), evts...)
	}
	c.mu.Lock()
	c.cities = cp
	c.mu.Unlock()
}

// Cities returns the known city names in sorted order.
func (c *StaticCatalog) Cities() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.cities))
	for city := range c.cities {
		names = append(names, city)
	}
	sort.Strings(names)
	return names
}

// DefaultCities is the built-in event table.
func DefaultCities() map[string][]Event {
	return map[string][]Event{
		"Paris": {
			{
				Title:       "Atelier de réparation Repair Café",
				Location:    "Ground Control (12e arr.)",
				Weekday:     time.Saturday,
				Description: "Apportez vos objets cassés et apprenez à les réparer avec l'aide de bénévoles experts.",
			},
			{
				Title:       "Balade urbaine 'Biodiversité en ville'",
				Location:    "Parc de Belleville (20e arr.)",
				Weekday:     time.Sunday,
				Description: "Découvrez la faune et la flore cachées dans nos parcs urbains.",
			},
			{
				Title:       "Conférence 'Agriculture urbaine'",
				Location:    "La REcyclerie (18e arr.)",
				Weekday:     time.Tuesday,
				Description: "Explorez le potentiel de l'agriculture urbaine pour une ville plus résiliente.",
			},
			{
				Title:       "Festival Zéro Déchet",
				Location:    "Halle des Blancs Manteaux (4e arr.)",
				Weekday:     time.Saturday,
				Description: "Ateliers, conférences et exposants autour du mode de vie zéro déchet.",
			},
		},
		"Lyon": {
			{
				Title:       "Atelier compostage",
				Location:    "Jardin partagé des Pentes (1er arr.)",
				Weekday:     time.Saturday,
				Description: "Initiation au compostage urbain et distribution de composteurs individuels.",
			},
			{
				Title:       "Projection-débat 'Demain'",
				Location:    "MJC Jean Macé (7e arr.)",
				Weekday:     time.Wednesday,
				Description: "Projection du documentaire 'Demain' suivie d'un débat sur les initiatives locales.",
			},
			{
				Title:       "Marché des producteurs locaux",
				Location:    "Place Carnot (2e arr.)",
				Weekday:     time.Saturday,
				Description: "Rencontrez les producteurs locaux et achetez des produits de saison en circuit court.",
			},
		},
		"Marseille": {
			{
				Title:       "Nettoyage des plages",
				Location:    "Plage du Prado",
				Weekday:     time.Saturday,
				Description: "Action collective de nettoyage des plages pour lutter contre la pollution marine.",
			},
			{
				Title:       "Conférence 'Méditerranée en danger'",
				Location:    "MuCEM",
				Weekday:     time.Thursday,
				Description: "État des lieux de la biodiversité méditerranéenne et solutions de préservation.",
			},
		},
	}
}

type fileEvent struct {
	Title       string `yaml:"title"`
	Location    string `yaml:"location"`
	Weekday     string `yaml:"weekday"`
	Description string `yaml:"description"`
}

type catalogFile struct {
	Cities map[string][]fileEvent `yaml:"cities"`
}

// LoadFile reads a YAML city table:
//
//	cities:
//	  Paris:
//	    - title: Atelier compostage
//	      location: Jardin partagé
//	      weekday: samedi
//	      description: ...
func LoadFile(path string) (map[string][]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read events file %s: %w", path, err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", path, err)
	}

	cities := make(map[string][]Event, len(f.Cities))
	for city, list := range f.Cities {
		for i, fe := range list {
			wd, err := ParseWeekday(fe.Weekday)
			if err != nil {
				return nil, fmt.Errorf("events file %s: %s[%d]: %w", path, city, i, err)
			}
			if fe.Title == "" {
				return nil, fmt.Errorf("events file %s: %s[%d]: title is required", path, city, i)
			}
			cities[city] = append(cities[city], Event{
				Title:       fe.Title,
				Location:    fe.Location,
				Weekday:     wd,
				Description: fe.Description,
			})
		}
	}
	return cities, nil
}
