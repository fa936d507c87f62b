package engine

import (
	"errors"
	"strings"
)

// ParseDifficulty parses user input to a Difficulty.
// Empty or unrecognized input returns DefaultDifficulty.
func ParseDifficulty(input string) Difficulty {
	switch strings.TrimSpace(strings.ToLower(input)) {
	case "easy", "e", "1":
		return DifficultyEasy
	case "medium", "med", "m", "2":
		return DifficultyMedium
	case "hard", "h", "3":
		return DifficultyHard
	default:
		return DefaultDifficulty
	}
}

func normalizeName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errors.New("name is required")
	}
	return n, nil
}
