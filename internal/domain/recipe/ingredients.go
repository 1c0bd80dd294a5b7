package recipe

import (
	"strings"
	"unicode"
)

// Verdict is the outcome of classifying a user-supplied ingredient.
type Verdict int

const (
	VerdictUncertain Verdict = iota
	VerdictFood
	VerdictNonFood
)

func (v Verdict) String() string {
	switch v {
	case VerdictFood:
		return "food"
	case VerdictNonFood:
		return "non_food"
	default:
		return "uncertain"
	}
}

var commonIngredients = []string{
	// Proteins
	"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "eggs", "tofu", "beans", "lentils", "chickpeas",
	// Vegetables
	"tomato", "tomatoes", "onion", "onions", "garlic", "potato", "potatoes", "carrot", "carrots", "bell pepper", "peppers",
	"broccoli", "spinach", "lettuce", "cucumber", "zucchini", "eggplant", "mushrooms", "celery", "corn",
	// Fruits
	"apple", "apples", "banana", "bananas", "orange", "oranges", "lemon", "lemons", "lime", "limes", "berries", "strawberries",
	// Grains & starches
	"rice", "pasta", "bread", "flour", "oats", "quinoa", "noodles", "wheat", "barley",
	// Dairy
	"milk", "cheese", "butter", "yogurt", "cream", "mozzarella", "parmesan", "cheddar",
	// Pantry
	"oil", "olive oil", "salt", "pepper", "sugar", "honey", "vinegar", "soy sauce", "herbs", "spices",
	"basil", "oregano", "thyme", "rosemary", "paprika", "cumin", "ginger", "cinnamon",
	// Nuts & seeds
	"almonds", "walnuts", "peanuts", "cashews", "sesame seeds", "sunflower seeds",
	// Canned & preserved
	"canned tomatoes", "coconut milk", "stock", "broth", "olive", "olives",
}

var nonFoodKeywords = []string{
	"human", "person", "people", "man", "woman", "child", "baby", "animal", "cat", "dog",
	"plastic", "metal", "wood", "paper", "glass", "stone", "rock", "dirt", "soil",
	"phone", "computer", "car", "house", "building", "furniture", "clothes", "shoe",
}

var foodHintKeywords = []string{
	"sauce", "powder", "extract", "leaf", "leaves", "seed", "seeds",
	"oil", "vinegar", "juice", "fresh", "dried", "ground", "chopped",
	"berry", "berries", "root", "herb", "spice",
}

// ClassifyIngredient decides from word lists alone whether s is food.
// Items it cannot place come back as VerdictUncertain.
func ClassifyIngredient(s string) Verdict {
	clean := strings.ToLower(strings.TrimSpace(s))
	if clean == "" {
		return VerdictNonFood
	}

	words := tokenize(clean)
	for _, kw := range nonFoodKeywords {
		if hasTerm(words, kw) {
			return VerdictNonFood
		}
	}

	for _, common := range commonIngredients {
		if strings.Contains(clean, common) {
			return VerdictFood
		}
		if len(clean) >= 3 && strings.Contains(common, clean) {
			return VerdictFood
		}
	}

	for _, kw := range foodHintKeywords {
		if strings.Contains(clean, kw) {
			return VerdictFood
		}
	}
	return VerdictUncertain
}

var (
	animalFlesh = []string{
		"chicken", "beef", "pork", "fish", "salmon", "tuna", "shrimp", "bacon", "ham", "lamb", "turkey",
		"sausage", "anchovy", "anchovies", "prawn", "crab", "lobster", "gelatin", "veal", "duck", "steak",
	}
	dairy = []string{
		"milk", "cheese", "butter", "buttermilk", "yogurt", "cream", "sour cream", "mozzarella", "parmesan",
		"cheddar", "ghee",
	}
	glutenSources = []string{
		"wheat", "flour", "bread", "breadcrumbs", "pasta", "spaghetti", "noodles", "barley", "rye",
		"couscous", "soy sauce",
	}
	treeNuts = []string{"almonds", "walnuts", "peanuts", "cashews", "pecans", "hazelnuts", "pistachios"}

	plantDairyAlternatives = []string{
		"coconut milk", "almond milk", "oat milk", "soy milk", "rice milk", "peanut butter",
		"almond butter", "vegan cheese", "vegan butter",
	}
	glutenFreeAlternatives = []string{
		"rice flour", "almond flour", "coconut flour", "rice noodles", "gluten-free", "gluten free", "tamari",
	}

	dietaryExclusions = map[string]func(words []string, clean string) bool{
		"vegetarian": func(w []string, _ string) bool { return hasAny(w, animalFlesh) },
		"vegan": func(w []string, c string) bool {
			if hasAny(w, animalFlesh) || hasAny(w, []string{"egg", "eggs", "honey"}) {
				return true
			}
			return hasAny(w, dairy) && !containsAny(c, plantDairyAlternatives)
		},
		"gluten-free": func(w []string, c string) bool {
			return hasAny(w, glutenSources) && !containsAny(c, glutenFreeAlternatives)
		},
		"dairy-free": func(w []string, c string) bool {
			return hasAny(w, dairy) && !containsAny(c, plantDairyAlternatives)
		},
		"nut-free": func(w []string, _ string) bool {
			return hasAny(w, treeNuts) || hasAny(w, []string{"peanut butter", "almond milk", "almond flour"})
		},
	}
)

// DietaryConflict reports the first restriction the ingredient violates.
func DietaryConflict(ingredient string, restrictions []string) (string, bool) {
	clean := strings.ToLower(strings.TrimSpace(ingredient))
	words := tokenize(clean)
	for _, r := range restrictions {
		if excluded, ok := dietaryExclusions[strings.ToLower(r)]; ok && excluded(words, clean) {
			return r, true
		}
	}
	return "", false
}

// MentionsIngredient reports whether a free-text ingredient line refers to
// the named ingredient, tolerating simple plurals.
func MentionsIngredient(line, ingredient string) bool {
	return hasTerm(tokenize(strings.ToLower(line)), strings.ToLower(strings.TrimSpace(ingredient)))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
}

// hasTerm matches a single word or a multi-word phrase against tokens.
func hasTerm(words []string, term string) bool {
	parts := tokenize(term)
	if len(parts) == 0 || len(parts) > len(words) {
		return false
	}
	for i := 0; i+len(parts) <= len(words); i++ {
		matched := true
		for j, p := range parts {
			if !sameWord(words[i+j], p) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func sameWord(a, b string) bool {
	return a == b || a+"s" == b || a == b+"s" || a+"es" == b || a == b+"es"
}

func hasAny(words []string, terms []string) bool {
	for _, t := range terms {
		if hasTerm(words, t) {
			return true
		}
	}
	return false
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
