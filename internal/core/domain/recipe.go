package domain

// RecipeIngredient is one pour of a recipe: ingredient display name and the
// volume to dispense.
type RecipeIngredient struct {
	Name   string `json:"name"`
	Volume int    `json:"volume"`
}

// Recipe is a mocktail definition. Rating and ReviewCount are derived from
// the recipe's reviews and owned by the review aggregator.
type Recipe struct {
	ID          string             `json:"mocktailId"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	ImageURL    string             `json:"imageUrl"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	Tags        []string           `json:"tags"`
	Rating      float64            `json:"rating"`
	ReviewCount int                `json:"reviewCount"`
}
