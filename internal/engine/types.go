package engine

// HistoryLen is the number of trailing days kept per habit, oldest first.
const HistoryLen = 7

// Slots of History. TodaySlot is the newest entry.
const (
	TodaySlot     = HistoryLen - 1
	YesterdaySlot = HistoryLen - 2
)

// History is the fixed 7-day completion window. A JSON array of any other
// length decodes into it truncated or zero-padded.
type History [HistoryLen]bool

// Count returns the number of completed days in the window.
func (h History) Count() int {
	n := 0
	for _, ok := range h {
		if ok {
			n++
		}
	}
	return n
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// DefaultDifficulty is used when user input is missing/invalid.
const DefaultDifficulty Difficulty = DifficultyEasy

type DifficultyTier struct {
	Label       string `json:"label"`
	Points      int    `json:"points"`
	CustomLabel string `json:"customLabel,omitempty"`
}

// DefaultDifficultyTiers returns the tier set given to new habits.
func DefaultDifficultyTiers() map[Difficulty]DifficultyTier {
	return map[Difficulty]DifficultyTier{
		DifficultyEasy:   {Label: "Easy", Points: 10},
		DifficultyMedium: {Label: "Medium", Points: 20},
		DifficultyHard:   {Label: "Hard", Points: 30},
	}
}

type Habit struct {
	ID                 string                        `json:"id"`
	Name               string                        `json:"name"`
	Emoji              string                        `json:"emoji"`
	Streak             int                           `json:"streak"`
	BestStreak         int                           `json:"bestStreak"`
	CompletedToday     bool                          `json:"completedToday"`
	LastCompletedDate  *string                       `json:"lastCompletedDate"`
	CompletionHistory  History                       `json:"completionHistory"`
	FreezeProtected    bool                          `json:"freezeProtected"`
	Pinned             bool                          `json:"pinned"`
	Difficulties       map[Difficulty]DifficultyTier `json:"difficulties,omitempty"`
	SelectedDifficulty Difficulty                    `json:"selectedDifficulty,omitempty"`
	CreatedAt          string                        `json:"createdAt,omitempty"`
}

// Source tags an XP award.
type Source string

const (
	SourceTask       Source = "task"
	SourceEarlyBonus Source = "earlyBonus"
	SourceAllTasks   Source = "allTasks"
	SourceForge      Source = "forge"
	SourceMission    Source = "mission"
	SourceMilestone  Source = "milestone"
	SourceCombo      Source = "combo"
	// SourceStreak lands in the milestone bucket.
	SourceStreak Source = "streak"
	SourceOther  Source = "other"
)

// Settings are user preferences that change XP rules.
type Settings struct {
	MinimalMode bool `json:"minimalMode"`
	FlatTaskXP  int  `json:"flatTaskXP"`
}

// DefaultFlatTaskXP is awarded per completion in minimal mode.
const DefaultFlatTaskXP = 10

func DefaultSettings() Settings {
	return Settings{MinimalMode: false, FlatTaskXP: DefaultFlatTaskXP}
}

// Progress is the progression state of one user.
type Progress struct {
	XP               int
	Level            LevelInfo
	FreezeTokens     int
	TotalCompletions int
	Today            XPToday
}
