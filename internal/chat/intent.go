package chat

import (
	"regexp"
	"strings"
)

var (
	actionVerb = regexp.MustCompile(`\b(add|put|order|get|want|buy)\b`)
	cartTarget = regexp.MustCompile(`\b(cart|order)\b`)
)

// serviceKeywords mark questions about the restaurant rather than requests for a dish
var serviceKeywords = []string{"hours", "location", "reservation", "delivery", "parking"}

// IsAddToCart reports whether text asks to put something in the cart: an
// action verb plus "cart" or "order" as a separate word, outside a service question.
func IsAddToCart(text string) bool {
	text = strings.ToLower(text)
	if isServiceQuestion(text) {
		return false
	}

	verbs := actionVerb.FindAllStringIndex(text, -1)
	if len(verbs) == 0 {
		return false
	}
	for _, target := range cartTarget.FindAllStringIndex(text, -1) {
		for _, verb := range verbs {
			if verb[0] != target[0] {
				return true
			}
		}
	}
	return false
}

// wantsItem reports whether text carries an action verb outside a service
// question. Combined with a known dish name it is an add request even
// without a separate cart or order word, as in "order the tiramisu".
func wantsItem(text string) bool {
	text = strings.ToLower(text)
	return !isServiceQuestion(text) && actionVerb.MatchString(text)
}

func isServiceQuestion(text string) bool {
	for _, keyword := range serviceKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
