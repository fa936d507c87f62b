// Package city derives the city view from habit and progression state.
// Nothing here is persisted.
package city

import (
	"hash/fnv"
	"strings"

	"streakcity/internal/engine"
)

type BuildingType string

const (
	BuildingGym     BuildingType = "gym"
	BuildingLibrary BuildingType = "library"
	BuildingHome    BuildingType = "home"
	BuildingOffice  BuildingType = "office"
	BuildingCafe    BuildingType = "cafe"
	BuildingDefault BuildingType = "default"
)

type keywordSet struct {
	Type     BuildingType
	Keywords []string
}

// buildingKeywords is matched in order; the first hit wins.
var buildingKeywords = []keywordSet{
	{BuildingGym, []string{"gym", "workout", "exercise", "run", "lift", "yoga", "fitness", "walk", "swim", "push-up", "stretch"}},
	{BuildingLibrary, []string{"read", "book", "study", "learn", "course", "library"}},
	{BuildingHome, []string{"clean", "cook", "home", "laundry", "sleep", "tidy", "dishes"}},
	{BuildingOffice, []string{"work", "code", "email", "office", "project", "write"}},
	{BuildingCafe, []string{"coffee", "tea", "friend", "social", "cafe", "call"}},
}

// ClassifyBuilding picks a building type from a habit name.
func ClassifyBuilding(name string) BuildingType {
	n := strings.ToLower(name)
	for _, set := range buildingKeywords {
		for _, kw := range set.Keywords {
			if strings.Contains(n, kw) {
				return set.Type
			}
		}
	}
	return BuildingDefault
}

// levelThresholds are the streak lengths of building levels 1-5.
var levelThresholds = []int{0, 7, 14, 30, 60}

func BuildingLevel(streak int) int {
	level := 1
	for i, threshold := range levelThresholds {
		if streak >= threshold {
			level = i + 1
		}
	}
	return level
}

type BuildingState string

const (
	StateDark     BuildingState = "dark"
	StateNew      BuildingState = "new"
	StateActive   BuildingState = "active"
	StateThriving BuildingState = "thriving"
	StateLandmark BuildingState = "landmark"
)

func StateFor(h engine.Habit) BuildingState {
	switch {
	case !h.CompletedToday && h.Streak == 0:
		return StateDark
	case h.CompletedToday && h.Streak >= 30:
		return StateLandmark
	case h.CompletedToday && h.Streak >= 14:
		return StateThriving
	case h.CompletedToday && h.Streak >= 7:
		return StateActive
	case h.Streak >= 1 && h.Streak <= 6:
		return StateNew
	default:
		return StateDark
	}
}

type Building struct {
	HabitID string
	Name    string
	Emoji   string
	Type    BuildingType
	Level   int
	State   BuildingState
}

func BuildingFor(h engine.Habit) Building {
	return Building{
		HabitID: h.ID,
		Name:    h.Name,
		Emoji:   h.Emoji,
		Type:    ClassifyBuilding(h.Name),
		Level:   BuildingLevel(h.Streak),
		State:   StateFor(h),
	}
}

// Population is one resident per 10 XP.
func Population(xp int) int {
	if xp <= 0 {
		return 0
	}
	return xp / 10
}

// DisplayPopulation adjusts Population by today's activity.
func DisplayPopulation(xp int, habits []engine.Habit) int {
	p := Population(xp)
	for _, h := range habits {
		if h.CompletedToday {
			p += 5
		} else {
			p -= 2
		}
	}
	return max(p, 0)
}

type Weather string

const (
	WeatherSunny    Weather = "sunny"
	WeatherCloudy   Weather = "cloudy"
	WeatherOvercast Weather = "overcast"
	WeatherRain     Weather = "rain"
)

func WeatherFor(score int) Weather {
	switch {
	case score >= 75:
		return WeatherSunny
	case score >= 50:
		return WeatherCloudy
	case score >= 25:
		return WeatherOvercast
	default:
		return WeatherRain
	}
}

type Neighborhood struct {
	ID             string
	Name           string
	RequiredStreak int
	Unlocked       bool
}

var neighborhoods = []Neighborhood{
	{ID: "riverside", Name: "Riverside", RequiredStreak: 30},
	{ID: "old-town", Name: "Old Town", RequiredStreak: 60},
	{ID: "skyline", Name: "Skyline Heights", RequiredStreak: 100},
}

// Neighborhoods unlock on the best streak of any habit.
func Neighborhoods(habits []engine.Habit) []Neighborhood {
	best := 0
	for _, h := range habits {
		best = max(best, h.BestStreak)
	}
	out := make([]Neighborhood, len(neighborhoods))
	for i, n := range neighborhoods {
		n.Unlocked = best >= n.RequiredStreak
		out[i] = n
	}
	return out
}

type Event struct {
	ID          string
	Title       string
	Description string
}

// Events is the daily event table. Reordering it changes every user's event.
var Events = []Event{
	{ID: "farmers-market", Title: "Farmers Market", Description: "Stalls line the main square."},
	{ID: "street-festival", Title: "Street Festival", Description: "Music drifts between the buildings."},
	{ID: "marathon", Title: "City Marathon", Description: "Runners pour through every district."},
	{ID: "book-fair", Title: "Book Fair", Description: "The library spills onto the sidewalk."},
	{ID: "night-lights", Title: "Night of Lights", Description: "Lanterns glow on every rooftop."},
	{ID: "parade", Title: "Founders Parade", Description: "Residents celebrate how far the city has come."},
	{ID: "quiet-day", Title: "Quiet Sunday", Description: "A slow day. Good for catching up."},
	{ID: "food-trucks", Title: "Food Truck Rally", Description: "Something smells great downtown."},
}

// HashDay is 32-bit FNV-1a over the day string.
func HashDay(day string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(day))
	return h.Sum32()
}

func DailyEvent(day string) Event {
	return Events[HashDay(day)%uint32(len(Events))]
}

type City struct {
	Date              string
	Buildings         []Building
	Population        int
	DisplayPopulation int
	Weather           Weather
	Neighborhoods     []Neighborhood
	Event             Event
}

// Derive builds the city for one day.
func Derive(habits []engine.Habit, xp int, score engine.Score, day string) City {
	bs := make([]Building, 0, len(habits))
	for _, h := range habits {
		bs = append(bs, BuildingFor(h))
	}
	return City{
		Date:              day,
		Buildings:         bs,
		Population:        Population(xp),
		DisplayPopulation: DisplayPopulation(xp, habits),
		Weather:           WeatherFor(score.Total),
		Neighborhoods:     Neighborhoods(habits),
		Event:             DailyEvent(day),
	}
}

// FromOverview derives the city from an engine overview.
func FromOverview(ov engine.Overview) City {
	return Derive(ov.Habits, ov.Progress.XP, ov.Score, ov.Today)
}
