package domain

import "time"

type Review struct {
	ID        string    `json:"reviewId"`
	RecipeID  string    `json:"mocktailId"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}
