package events

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paris(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	return loc
}

func TestNextWeekday(t *testing.T) {
	loc := paris(t)
	// Wednesday 22 October 2025, mid-morning.
	now := time.Date(2025, time.October, 22, 10, 30, 0, 0, loc)

	tests := []struct {
		wd   time.Weekday
		want time.Time
	}{
		{time.Thursday, time.Date(2025, time.October, 23, 0, 0, 0, 0, loc)},
		{time.Saturday, time.Date(2025, time.October, 25, 0, 0, 0, 0, loc)},
		{time.Sunday, time.Date(2025, time.October, 26, 0, 0, 0, 0, loc)},
		{time.Tuesday, time.Date(2025, time.October, 28, 0, 0, 0, 0, loc)},
		// Same weekday as today moves to next week.
		{time.Wednesday, time.Date(2025, time.October, 29, 0, 0, 0, 0, loc)},
	}

	for _, tt := range tests {
		got := NextWeekday(now, tt.wd)
		assert.True(t, got.Equal(tt.want), "NextWeekday(%s) = %s, want %s", tt.wd, got, tt.want)
		assert.Equal(t, tt.wd, got.Weekday())
	}
}

func TestNextWeekday_AlwaysInFuture(t *testing.T) {
	loc := paris(t)
	start := time.Date(2025, time.December, 25, 23, 59, 0, 0, loc)
	for i := 0; i < 14; i++ {
		now := start.AddDate(0, 0, i)
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			got := NextWeekday(now, wd)
			days := got.Sub(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)).Hours() / 24
			assert.GreaterOrEqual(t, days, 1.0, "now=%s wd=%s", now, wd)
			assert.LessOrEqual(t, days, 7.0, "now=%s wd=%s", now, wd)
		}
	}
}

func TestNextWeekday_CrossesYear(t *testing.T) {
	loc := paris(t)
	now := time.Date(2025, time.December, 31, 8, 0, 0, 0, loc) // Wednesday
	got := NextWeekday(now, time.Wednesday)
	assert.Equal(t, time.Date(2026, time.January, 7, 0, 0, 0, 0, loc), got)
}

func TestFormatDateFR(t *testing.T) {
	loc := paris(t)
	tests := []struct {
		date time.Time
		want string
	}{
		{time.Date(2025, time.October, 25, 0, 0, 0, 0, loc), "samedi 25 octobre"},
		{time.Date(2025, time.October, 29, 0, 0, 0, 0, loc), "mercredi 29 octobre"},
		{time.Date(2025, time.November, 1, 0, 0, 0, 0, loc), "samedi 1 novembre"},
		{time.Date(2026, time.February, 3, 0, 0, 0, 0, loc), "mardi 3 février"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDateFR(tt.date))
	}
}

func TestSchedule_KeepsOrder(t *testing.T) {
	loc := paris(t)
	now := time.Date(2025, time.October, 22, 10, 0, 0, 0, loc)

	occ := Schedule(DefaultCities()["Lyon"], now)
	require.Len(t, occ, 3)
	assert.Equal(t, "Atelier compostage", occ[0].Title)
	assert.Equal(t, "samedi 25 octobre", FormatDateFR(occ[0].Date))
	assert.Equal(t, "Projection-débat 'Demain'", occ[1].Title)
	assert.Equal(t, "mercredi 29 octobre", FormatDateFR(occ[1].Date))
	assert.Equal(t, "Marché des producteurs locaux", occ[2].Title)
}

func TestParseWeekday(t *testing.T) {
	tests := map[string]time.Weekday{
		"samedi":   time.Saturday,
		"Samedi":   time.Saturday,
		"SATURDAY": time.Saturday,
		"mercredi": time.Wednesday,
		" jeudi ":  time.Thursday,
		"0":        time.Sunday,
		"6":        time.Saturday,
	}
	for in, want := range tests {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "7", "-1", "funday"} {
		_, err := ParseWeekday(bad)
		assert.Error(t, err, bad)
	}
}

func TestStaticCatalog_ExactMatch(t *testing.T) {
	c := NewStaticCatalog(DefaultCities())
	ctx := context.Background()

	lyon, err := c.ForCity(ctx, "Lyon")
	require.NoError(t, err)
	assert.Len(t, lyon, 3)

	for _, city := range []string{"lyon", "Atlantide", "", " Paris"} {
		evts, err := c.ForCity(ctx, city)
		require.NoError(t, err)
		assert.Empty(t, evts, "city %q must not match", city)
	}

	assert.Equal(t, []string{"Lyon", "Marseille", "Paris"}, c.Cities())
}

func TestStaticCatalog_ReturnsCopies(t *testing.T) {
	c := NewStaticCatalog(DefaultCities())
	evts, _ := c.ForCity(context.Background(), "Marseille")
	evts[0].Title = "changed"

	again, _ := c.ForCity(context.Background(), "Marseille")
	assert.Equal(t, "Nettoyage des plages", again[0].Title)
}

func TestStaticCatalog_Replace(t *testing.T) {
	c := NewStaticCatalog(DefaultCities())
	c.Replace(map[string][]Event{
		"Nantes": {{Title: "Vélorution", Location: "Place Royale", Weekday: time.Friday}},
	})

	paris, _ := c.ForCity(context.Background(), "Paris")
	assert.Empty(t, paris)
	nantes, _ := c.ForCity(context.Background(), "Nantes")
	require.Len(t, nantes, 1)
	assert.Equal(t, time.Friday, nantes[0].Weekday)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.yaml")
	content := `
cities:
  Bordeaux:
    - title: Atelier vélo
      location: Darwin
      weekday: samedi
      description: Réparez votre vélo.
    - title: Conférence climat
      location: Cap Sciences
      weekday: tuesday
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cities, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cities["Bordeaux"], 2)
	assert.Equal(t, "Atelier vélo", cities["Bordeaux"][0].Title)
	assert.Equal(t, time.Saturday, cities["Bordeaux"][0].Weekday)
	assert.Equal(t, time.Tuesday, cities["Bordeaux"][1].Weekday)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	badDay := filepath.Join(dir, "bad-day.yaml")
	require.NoError(t, os.WriteFile(badDay, []byte("cities:\n  Paris:\n    - title: x\n      weekday: someday\n"), 0o644))
	_, err = LoadFile(badDay)
	assert.ErrorContains(t, err, "someday")

	noTitle := filepath.Join(dir, "no-title.yaml")
	require.NoError(t, os.WriteFile(noTitle, []byte("cities:\n  Paris:\n    - weekday: lundi\n"), 0o644))
	_, err = LoadFile(noTitle)
	assert.ErrorContains(t, err, "title is required")
}

func TestShippedEventsFileMatchesDefaults(t *testing.T) {
	cities, err := LoadFile(filepath.Join("..", "..", "configs", "events.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultCities(), cities)
}
