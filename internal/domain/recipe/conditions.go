package recipe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultCookingMinutes applies when a time string carries no number.
const DefaultCookingMinutes = 30

var (
	servingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`serves?\s+(\d+)`),
		regexp.MustCompile(`for\s+(\d+)\s+(?:people|person)`),
		regexp.MustCompile(`(\d+)\s+(?:servings?|people|persons?)`),
		regexp.MustCompile(`feeds?\s+(\d+)`),
	}
	numberPattern = regexp.MustCompile(`\d+`)

	servingWords = strings.NewReplacer("people", "", "person", "", "servings", "", "serves", "", "serving", "")

	knownDiets    = []string{"vegetarian", "vegan", "gluten-free", "dairy-free", "nut-free"}
	knownCuisines = []string{"italian", "mexican", "chinese", "indian", "thai", "japanese", "french", "mediterranean", "american", "greek", "korean"}
	knownFlavors  = []string{"spicy", "sweet", "savory", "tangy", "smoky", "mild", "herby"}
)

// ParseConditions turns a free-text conditions line such as
// "serves 2 vegetarian under 20 mins" into a Query for the given ingredients.
// Servings default to 1.
func ParseConditions(ingredients []string, conditions string) Query {
	q := Query{Ingredients: ingredients, Servings: 1}
	text := strings.ToLower(strings.TrimSpace(conditions))
	if text == "" {
		return q
	}

	q.CookingTime = parseTimeLimit(text)

	switch {
	case strings.Contains(text, "easy"):
		q.Difficulty = DifficultyEasy
	case strings.Contains(text, "medium"):
		q.Difficulty = DifficultyMedium
	case strings.Contains(text, "hard"), strings.Contains(text, "difficult"):
		q.Difficulty = DifficultyHard
	}

	for _, diet := range knownDiets {
		if strings.Contains(text, diet) {
			q.DietaryRestrictions = append(q.DietaryRestrictions, diet)
		}
	}

	words := strings.Fields(strings.ReplaceAll(text, ",", " "))
	for _, cuisine := range knownCuisines {
		if containsWord(words, cuisine) {
			q.Cuisine = cuisine
			break
		}
	}
	var flavors []string
	for _, flavor := range knownFlavors {
		if containsWord(words, flavor) {
			flavors = append(flavors, flavor)
		}
	}
	q.FlavorProfile = strings.Join(flavors, ", ")

	if n, ok := parseServings(words, text); ok {
		q.Servings = n
	}
	if q.Servings < 1 {
		q.Servings = 1
	}
	return q
}

// parseTimeLimit reads the first number after "under" or "less than". A
// number followed by a serving word such as "people" is skipped.
func parseTimeLimit(text string) string {
	words := strings.Fields(strings.ReplaceAll(text, ",", " "))
	for i, w := range words {
		from := -1
		switch {
		case w == "under":
			from = i + 1
		case w == "less" && i+1 < len(words) && words[i+1] == "than":
			from = i + 2
		}
		if from < 0 {
			continue
		}
		for j := from; j < len(words); j++ {
			n, unit := splitNumber(words[j])
			if n == "" {
				continue
			}
			if unit == "" && j+1 < len(words) {
				unit = words[j+1]
			}
			if isServingWord(unit) {
				continue
			}
			switch {
			case strings.HasPrefix(unit, "min"):
				return fmt.Sprintf("under %s minutes", n)
			case strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
				return hoursLimit(n)
			case strings.Contains(text, "min"):
				return fmt.Sprintf("under %s minutes", n)
			case strings.Contains(text, "hour"), strings.Contains(text, "hr"):
				return hoursLimit(n)
			}
			return ""
		}
	}
	return ""
}

func hoursLimit(n string) string {
	if n == "1" {
		return "under 1 hour"
	}
	return fmt.Sprintf("under %s hours", n)
}

// splitNumber splits "25mins" into "25" and "mins". Words that do not
// start with a digit give an empty number.
func splitNumber(w string) (string, string) {
	i := 0
	for i < len(w) && w[i] >= '0' && w[i] <= '9' {
		i++
	}
	return w[:i], w[i:]
}

func isServingWord(w string) bool {
	w = strings.Trim(w, ".!?;:")
	return strings.HasPrefix(w, "people") || strings.HasPrefix(w, "person") ||
		strings.HasPrefix(w, "serving") || strings.HasPrefix(w, "guest")
}

// parseServings looks for a bare count first, then for phrases such as
// "for 6 people". A number directly followed by a time unit is a cooking
// time and never a serving count.
func parseServings(words []string, text string) (int, bool) {
	for i, w := range words {
		clean := servingWords.Replace(w)
		if !isDigits(clean) {
			continue
		}
		if i+1 < len(words) && isTimeUnit(words[i+1]) {
			continue
		}
		if n, err := strconv.Atoi(clean); err == nil {
			return n, true
		}
	}

	for _, p := range servingPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// ParseCookingMinutes extracts a duration in minutes from text such as
// "25 minutes" or "under 1 hour".
func ParseCookingMinutes(s string) int {
	s = strings.ToLower(s)
	first := numberPattern.FindString(s)
	if first == "" {
		return DefaultCookingMinutes
	}
	minutes, err := strconv.Atoi(first)
	if err != nil {
		return DefaultCookingMinutes
	}
	if strings.Contains(s, "hour") || strings.Contains(s, "hr") {
		minutes *= 60
	}
	return minutes
}

func isTimeUnit(w string) bool {
	return strings.HasPrefix(w, "min") || strings.HasPrefix(w, "hour") || strings.HasPrefix(w, "hr")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if strings.Trim(w, ".!?;:") == target {
			return true
		}
	}
	return false
}
