package dialogue

import (
	"regexp"
	"strings"
)

// Shared lexical helpers for the rule-based extractor and the ethical
// filter. Everything here is pure string work; no I/O.

var (
	clockRe    = regexp.MustCompile(`\b(\d{1,2})(?::([0-5]\d))?\s*(am|pm)\b`)
	clock24Re  = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)
	partyRe    = regexp.MustCompile(`\b(\d+)\s*(?:people|persons|person|guests|guest|pax|ppl|of us)\b`)
	partyOfRe  = regexp.MustCompile(`\b(?:party|group|table) (?:of|for) (\d+)\b`)
	forNRe     = regexp.MustCompile(`\bfor (\d+)\b`)
	bareNumRe  = regexp.MustCompile(`^\d+$`)
	monthDayRe = regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december) (\d{1,2})\b`)
)

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// dayparts expand vague times of day into candidate sets.
var dayparts = map[string][]string{
	"morning":   {"9am", "10am", "11am"},
	"noon":      {"12pm"},
	"afternoon": {"1pm", "2pm", "3pm"},
	"evening":   {"6pm", "7pm", "8pm"},
	"tonight":   {"6pm", "7pm", "8pm"},
	"midnight":  {"12am"},
	"lunch":     {"12pm", "1pm"},
	"dinner":    {"7pm", "8pm"},
}

// normalizeText lowercases and strips punctuation so that matching is
// case- and punctuation-insensitive. Colons survive for clock times.
func normalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ':':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenize(s string) []string {
	return strings.Fields(normalizeText(s))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// parseDates returns candidate date values found in normalized text.
// Vague expressions ("this weekend") expand into multiple candidates.
func parseDates(norm string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	if strings.Contains(norm, "weekend") {
		add("Saturday")
		add("Sunday")
	}
	tokens := strings.Fields(norm)
	for _, tok := range tokens {
		for _, day := range weekdays {
			if tok == day {
				add(titleCase(day))
			}
		}
		switch tok {
		case "today":
			add("today")
		case "tomorrow":
			add("tomorrow")
		}
	}
	for _, m := range monthDayRe.FindAllStringSubmatch(norm, -1) {
		add(titleCase(m[1]) + " " + m[2])
	}
	return out
}

// parseTimes returns candidate time values and the spans they occupied,
// so callers can blank clock digits out before party-size matching.
func parseTimes(norm string) (out []string, spans [][2]int) {
	seen := map[string]bool{}
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	for _, idx := range clockRe.FindAllStringSubmatchIndex(norm, -1) {
		hour := norm[idx[2]:idx[3]]
		minutes := ""
		if idx[4] >= 0 {
			minutes = ":" + norm[idx[4]:idx[5]]
		}
		meridiem := norm[idx[6]:idx[7]]
		add(hour + minutes + meridiem)
		spans = append(spans, [2]int{idx[0], idx[1]})
	}
	for _, idx := range clock24Re.FindAllStringSubmatchIndex(norm, -1) {
		covered := false
		for _, sp := range spans {
			if idx[0] >= sp[0] && idx[1] <= sp[1] {
				covered = true
				break
			}
		}
		if !covered {
			add(norm[idx[0]:idx[1]])
			spans = append(spans, [2]int{idx[0], idx[1]})
		}
	}
	for word, candidates := range dayparts {
		if containsWord(norm, word) {
			for _, c := range candidates {
				add(c)
			}
		}
	}
	return out, spans
}

// parsePartySizes returns candidate party sizes. Clock spans are blanked
// first so "for 4pm" never reads as four guests.
func parsePartySizes(norm string, clockSpans [][2]int) []string {
	masked := []byte(norm)
	for _, sp := range clockSpans {
		for i := sp[0]; i < sp[1] && i < len(masked); i++ {
			masked[i] = ' '
		}
	}
	text := string(masked)

	var out []string
	seen := map[string]bool{}
	add := func(v string) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, m := range partyRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	for _, m := range partyOfRe.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	// "for N" only counts when nothing stronger matched; "book for 6" is a
	// party size, while "for 6pm" was already blanked above.
	if len(out) == 0 {
		for _, m := range forNRe.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	return out
}

func containsWord(norm, word string) bool {
	for _, tok := range strings.Fields(norm) {
		if tok == word {
			return true
		}
	}
	return false
}

func containsAnyWord(norm string, words ...string) bool {
	for _, w := range words {
		if containsWord(norm, w) {
			return true
		}
	}
	return false
}

// correctionCues signal a user-initiated correction of an earlier value.
var correctionCues = []string{
	"actually", "instead", "rather", "change", "changed", "correction",
	"sorry", "wait", "update", "switch", "make",
}

func hasCorrectionCue(norm string) bool {
	return containsAnyWord(norm, correctionCues...)
}

var questionLeads = []string{
	"what", "whats", "where", "wheres", "who", "whos", "when", "why",
	"how", "which", "is", "are", "does", "do", "did", "can", "tell",
}

// looksLikeQuestion reports whether the raw utterance reads as a factual
// question rather than booking input.
func looksLikeQuestion(raw, norm string) bool {
	if strings.Contains(raw, "?") {
		return true
	}
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return false
	}
	for _, lead := range questionLeads {
		if tokens[0] == lead {
			return true
		}
	}
	return false
}

var bookingWords = []string{
	"book", "booking", "booked", "reserve", "reservation", "table",
	"date", "time", "dine", "dinner", "lunch", "seat", "seats",
}

func mentionsBooking(norm string) bool {
	return containsAnyWord(norm, bookingWords...)
}

var greetingWords = []string{"hello", "hi", "hey", "greetings", "thanks", "thank"}

func isGreeting(norm string) bool {
	return containsAnyWord(norm, greetingWords...)
}

var affirmativeWords = []string{"yes", "yeah", "yep", "sure", "confirm", "confirmed", "correct", "right", "ok", "okay", "absolutely", "please"}

var negativeWords = []string{"no", "nope", "nah", "wrong", "cancel", "dont", "not"}

func hasAffirmative(norm string) bool {
	return containsAnyWord(norm, affirmativeWords...)
}

func hasNegative(norm string) bool {
	return containsAnyWord(norm, negativeWords...)
}
