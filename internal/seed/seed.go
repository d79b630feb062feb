// Package seed holds the demo dataset the machine ships with: four
// reservoir ingredients and eight mocktail recipes.
package seed

import "github.com/lberthe/mocktail-machine/internal/core/domain"

// Ingredients returns the default reservoir configuration.
func Ingredients() []domain.Ingredient {
	return []domain.Ingredient{
		{ID: "cranberry", Name: "Jus de Cranberry", CurrentLevel: 800, MaxLevel: 1000},
		{ID: "grenadine", Name: "Sirop de Grenadine", CurrentLevel: 700, MaxLevel: 1000},
		{ID: "citron", Name: "Jus de Citron", CurrentLevel: 600, MaxLevel: 1000},
		{ID: "sprite", Name: "Sprite", CurrentLevel: 900, MaxLevel: 1000},
	}
}

// Recipes returns the fixed mocktail catalogue.
func Recipes() []domain.Recipe {
	return []domain.Recipe{
		{
			ID:          "sunrise_rouge",
			Name:        "Sunrise Rouge",
			Description: "Un mocktail rafraîchissant aux fruits rouges avec des bulles",
			ImageURL:    "assets/images/sunrise.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Cranberry", Volume: 70},
				{Name: "Sirop de Grenadine", Volume: 20},
				{Name: "Sprite", Volume: 60},
			},
			Tags: []string{"Fruité", "Pétillant", "Rouge"},
		},
		{
			ID:          "citrus_fizz",
			Name:        "Citrus Fizz",
			Description: "Une boisson pétillante et acidulée",
			ImageURL:    "assets/images/citrus.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Citron", Volume: 30},
				{Name: "Sprite", Volume: 100},
				{Name: "Sirop de Grenadine", Volume: 20},
			},
			Tags: []string{"Agrumes", "Pétillant", "Rafraîchissant"},
		},
		{
			ID:          "berry_splash",
			Name:        "Berry Splash",
			Description: "Un mélange parfait de fruits rouges et d'agrumes",
			ImageURL:    "assets/images/berry.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Cranberry", Volume: 90},
				{Name: "Jus de Citron", Volume: 30},
				{Name: "Sprite", Volume: 30},
			},
			Tags: []string{"Fruité", "Rafraîchissant", "Rouge"},
		},
		{
			ID:          "bleu_lagoon",
			Name:        "Bleu Lagoon",
			Description: "Un mocktail rafraîchissant avec une belle couleur bleutée",
			ImageURL:    "assets/images/blue.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Sprite", Volume: 100},
				{Name: "Jus de Citron", Volume: 40},
				{Name: "Sirop de Grenadine", Volume: 10},
			},
			Tags: []string{"Doux", "Pétillant", "Rafraîchissant"},
		},
		{
			ID:          "sunset_dream",
			Name:        "Sunset Dream",
			Description: "Un mocktail élégant avec des saveurs douces de fruits rouges",
			ImageURL:    "assets/images/sunset.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Cranberry", Volume: 60},
				{Name: "Sprite", Volume: 70},
				{Name: "Sirop de Grenadine", Volume: 20},
			},
			Tags: []string{"Doux", "Élégant", "Fruité"},
		},
		{
			ID:          "zesty_lemon",
			Name:        "Zesty Lemon",
			Description: "Une explosion d'agrumes pour un rafraîchissement maximal",
			ImageURL:    "assets/images/lemon.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Citron", Volume: 50},
				{Name: "Sprite", Volume: 90},
				{Name: "Sirop de Grenadine", Volume: 10},
			},
			Tags: []string{"Agrumes", "Acidulé", "Rafraîchissant"},
		},
		{
			ID:          "ruby_sparkle",
			Name:        "Ruby Sparkle",
			Description: "Un mocktail festif avec une belle couleur rubis profonde",
			ImageURL:    "assets/images/ruby.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Cranberry", Volume: 80},
				{Name: "Sirop de Grenadine", Volume: 30},
				{Name: "Sprite", Volume: 40},
			},
			Tags: []string{"Fruité", "Festif", "Rouge"},
		},
		{
			ID:          "fresh_breeze",
			Name:        "Fresh Breeze",
			Description: "Un mélange léger et aérien qui évoque la fraîcheur d'une brise d'été",
			ImageURL:    "assets/images/breeze.png",
			Ingredients: []domain.RecipeIngredient{
				{Name: "Jus de Citron", Volume: 35},
				{Name: "Sprite", Volume: 95},
				{Name: "Jus de Cranberry", Volume: 20},
			},
			Tags: []string{"Léger", "Rafraîchissant", "Estival"},
		},
	}
}
