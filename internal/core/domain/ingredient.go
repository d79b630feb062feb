package domain

import "time"

// Ingredient is one reservoir of the machine. CurrentLevel is kept in
// [0, MaxLevel] by deduction; an administrative set may overshoot on purpose.
type Ingredient struct {
	ID           string    `json:"ingredientId"`
	Name         string    `json:"name"`
	CurrentLevel int       `json:"currentLevel"`
	MaxLevel     int       `json:"maxLevel"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// Shortfall describes one ingredient that cannot cover a requested volume.
type Shortfall struct {
	Ingredient string `json:"ingredient"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
	Missing    bool   `json:"missing"`
}
