package city

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"streakcity/internal/engine"
)

func TestClassifyBuilding(t *testing.T) {
	cases := map[string]BuildingType{
		"Morning RUN":       BuildingGym,
		"Workout":           BuildingGym,
		"Read 20 pages":     BuildingLibrary,
		"Cook dinner":       BuildingHome,
		"Code review":       BuildingOffice,
		"Coffee with Sam":   BuildingCafe,
		"Meditate":          BuildingDefault,
		"Write book review": BuildingLibrary,
	}
	for name, want := range cases {
		assert.Equal(t, want, ClassifyBuilding(name), name)
	}
}

func TestBuildingLevel(t *testing.T) {
	cases := map[int]int{0: 1, 6: 1, 7: 2, 13: 2, 14: 3, 29: 3, 30: 4, 59: 4, 60: 5, 365: 5}
	for streak, want := range cases {
		assert.Equal(t, want, BuildingLevel(streak), "streak=%d", streak)
	}
}

func TestStateFor(t *testing.T) {
	cases := []struct {
		streak int
		done   bool
		want   BuildingState
	}{
		{0, false, StateDark},
		{3, false, StateNew},
		{3, true, StateNew},
		{7, true, StateActive},
		{13, true, StateActive},
		{14, true, StateThriving},
		{30, true, StateLandmark},
		{20, false, StateDark},
	}
	for _, tc := range cases {
		got := StateFor(engine.Habit{Streak: tc.streak, CompletedToday: tc.done})
		assert.Equal(t, tc.want, got, "streak=%d done=%v", tc.streak, tc.done)
	}
}

func TestPopulation(t *testing.T) {
	assert.Equal(t, 0, Population(9))
	assert.Equal(t, 12, Population(129))

	hs := []engine.Habit{{CompletedToday: true}, {}, {}}
	assert.Equal(t, 12+5-4, DisplayPopulation(129, hs))
	assert.Equal(t, 0, DisplayPopulation(0, hs))
}

func TestWeather(t *testing.T) {
	assert.Equal(t, WeatherSunny, WeatherFor(75))
	assert.Equal(t, WeatherCloudy, WeatherFor(74))
	assert.Equal(t, WeatherCloudy, WeatherFor(50))
	assert.Equal(t, WeatherOvercast, WeatherFor(25))
	assert.Equal(t, WeatherRain, WeatherFor(24))
}

func TestNeighborhoods(t *testing.T) {
	got := Neighborhoods([]engine.Habit{{BestStreak: 12}, {BestStreak: 61}})
	assert.True(t, got[0].Unlocked)
	assert.True(t, got[1].Unlocked)
	assert.False(t, got[2].Unlocked)
}

func TestDailyEventStable(t *testing.T) {
	// FNV-1a reference vectors.
	assert.Equal(t, uint32(0x811c9dc5), HashDay(""))
	assert.Equal(t, uint32(0xe40c292c), HashDay("a"))

	a := DailyEvent("2024-05-10")
	assert.Equal(t, a, DailyEvent("2024-05-10"))
	assert.Equal(t, Events[HashDay("2024-05-10")%uint32(len(Events))], a)
}

func TestDerive(t *testing.T) {
	hs := []engine.Habit{
		{ID: "a", Name: "Gym", Streak: 15, BestStreak: 31, CompletedToday: true},
		{ID: "b", Name: "Read"},
	}
	c := Derive(hs, 250, engine.Score{Total: 80}, "2024-05-10")
	assert.Len(t, c.Buildings, 2)
	assert.Equal(t, Building{HabitID: "a", Name: "Gym", Type: BuildingGym, Level: 3, State: StateThriving}, c.Buildings[0])
	assert.Equal(t, StateDark, c.Buildings[1].State)
	assert.Equal(t, 25, c.Population)
	assert.Equal(t, 28, c.DisplayPopulation)
	assert.Equal(t, WeatherSunny, c.Weather)
	assert.True(t, c.Neighborhoods[0].Unlocked)
}
