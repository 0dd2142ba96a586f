package classify

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Slot identifies which lead field a message is filling.
type Slot string

const (
	SlotName    Slot = "name"
	SlotMobile  Slot = "mobile"
	SlotAddress Slot = "address"
	SlotUnknown Slot = "unknown"
)

func (s Slot) String() string {
	return string(s)
}

// Greeting/filler patterns. WhatsApp leads open with short pleasantries in a mix
// of English and Hinglish before sending anything useful; these never carry lead
// data and must not open a session.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:hi+|hey+|hello+|helo+)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:ok+|okay+|okie+|k)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:hm+|haa*n?|han?ji|ji)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:yes+|yup|yaa+|ya|no+|nope)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:thanks+|thank you+|thanku+|thnx|thx|ty)[\s!.,?]*$`),
	regexp.MustCompile(`^good\s*(?:morning|afternoon|evening|night)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:namaste+|namaskar+|namaskaram)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:a?chh?a+|accha+|th(?:ee|i)k(?:\s*hai)?)[\s!.,?]*$`),
	regexp.MustCompile(`^(?:bye+|tata|tc|gm|gn)[\s!.,?]*$`),
}

// Indian mobile: 10 digits starting 6-9, optionally prefixed with +91 / 91 / 0.
var mobileShape = regexp.MustCompile(`^(?:\+?91|0)?[6-9][0-9]{9}$`)

// Strict proper-noun shape: two or three capitalized words, nothing else.
var nameShape = regexp.MustCompile(`^[A-Z][a-z]+(?: [A-Z][a-z]+){1,2}$`)

var mobileSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// Tokens that only ever show up when someone is typing out where they live.
var addressKeywords = map[string]bool{
	"road": true, "street": true, "nagar": true, "colony": true, "sector": true,
	"house": true, "flat": true, "apartment": true, "floor": true, "block": true,
	"lane": true, "gali": true, "chowk": true, "pincode": true, "pin": true,
	"district": true, "village": true, "city": true, "near": true, "opposite": true,
	"opp": true, "behind": true, "landmark": true, "market": true, "plot": true,
	"phase": true, "society": true, "marg": true, "cross": true,
}

// IsNoise reports whether a message is a throwaway greeting or filler.
// Anything shorter than 2 characters is noise outright; short messages
// (under 15 characters) are noise when they match a greeting pattern.
func IsNoise(text string) bool {
	trimmed := strings.TrimSpace(text)

	length := utf8.RuneCountInString(trimmed)
	if length < 2 {
		return true
	}
	if length >= 15 {
		return false
	}

	lowered := strings.ToLower(trimmed)
	for _, pattern := range noisePatterns {
		if pattern.MatchString(lowered) {
			return true
		}
	}
	return false
}

// IdentifySlot classifies a message into at most one lead slot.
// Priority is fixed: a mobile-shaped message wins over everything, then a strict
// name shape, then address hints (keyword or length). Everything else is unknown.
func IdentifySlot(text string) Slot {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return SlotUnknown
	}

	// 1. Phone number shape (separators stripped first: "+91 98765 43210")
	if mobileShape.MatchString(mobileSeparators.Replace(trimmed)) {
		return SlotMobile
	}

	// 2. Proper-noun name shape
	if nameShape.MatchString(trimmed) {
		return SlotName
	}

	// 3. Address: a known keyword, or a long free-form message
	tokens := strings.Fields(trimmed)
	for _, token := range tokens {
		cleaned := strings.ToLower(strings.Trim(token, ".,;:!?"))
		if addressKeywords[cleaned] {
			return SlotAddress
		}
	}
	if len(tokens) > 5 {
		return SlotAddress
	}

	return SlotUnknown
}
