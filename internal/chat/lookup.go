package chat

import (
	"regexp"
	"strings"
)

const (
	WelcomeMessage   = "Hi! I'm your SmartBite assistant. How can I help you today?"
	GreetingAnswer   = "Hello! Welcome to SmartBite. How can I assist you today?"
	RecommendAnswer  = "Based on our popular items, I'd recommend our Truffle Burger or Mediterranean Bowl. Both are customer favorites!"
	HelpAnswer       = "I'd be happy to help! You can ask me about our hours, location, menu, reservations, delivery, or specials. What would you like to know?"
	ClarifyAnswer    = "I couldn't find that dish on our menu. Which item would you like me to add to your cart?"
	addedAnswerFmt   = "Added %s to your cart! You now have %d item(s) in your cart."
	restaurantPrompt = "You are the friendly assistant of SmartBite, a restaurant. " +
		"We're open Monday-Thursday 11am-10pm, Friday-Saturday 11am-11pm, and Sunday 12pm-9pm. " +
		"We're located at 123 Main Street, Downtown, with free parking behind the restaurant. " +
		"Reservations can be made on our Reservations page or at (555) 123-4567. " +
		"We deliver within 5 miles. Answer guests' questions briefly and warmly."
)

type keywordAnswer struct {
	keyword string
	answer  string
}

// keywordTable is checked in order; the first keyword contained in the message wins
var keywordTable = []keywordAnswer{
	{"hours", "We're open Monday-Thursday 11am-10pm, Friday-Saturday 11am-11pm, and Sunday 12pm-9pm."},
	{"location", "We're located at 123 Main Street, Downtown. You can find us easily with GPS!"},
	{"reservation", "You can make a reservation through our Reservations page or call us at (555) 123-4567."},
	{"menu", "Our menu features a variety of dishes including vegetarian, vegan, and gluten-free options. Check out our Menu page!"},
	{"delivery", "Yes, we offer delivery through our Orders page. Delivery is available within 5 miles of our location."},
	{"parking", "We have free parking available in our lot behind the restaurant and street parking nearby."},
	{"specials", "Today's special is our Truffle Burger with sweet potato fries for $24.99. Check our menu for more!"},
}

var greeting = regexp.MustCompile(`\b(hello|hi|hey)\b`)

// Lookup answers from the fixed keyword table, then greetings and the
// recommendation hint, and finally the generic help prompt.
func Lookup(text string) (string, Source) {
	message := strings.ToLower(text)

	for _, entry := range keywordTable {
		if strings.Contains(message, entry.keyword) {
			return entry.answer, SourceKeyword
		}
	}

	if greeting.MatchString(message) {
		return GreetingAnswer, SourceGreeting
	}

	if strings.Contains(message, "recommend") {
		return RecommendAnswer, SourceRecommend
	}

	return HelpAnswer, SourceHelp
}
