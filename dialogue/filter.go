package dialogue

import (
	"regexp"
	"strings"
)

// VerdictClass classifies a single utterance for the safety gate.
type VerdictClass string

const (
	VerdictClean         VerdictClass = "clean"
	VerdictGibberish     VerdictClass = "gibberish"
	VerdictProfane       VerdictClass = "profane"
	VerdictContradictory VerdictClass = "contradictory"
)

// Verdict is the ethical filter's output. It is never persisted beyond
// the turn; the engine only increments the violation count on it.
type Verdict struct {
	Class      VerdictClass `json:"class"`
	Confidence float64      `json:"confidence"`
}

func (v Verdict) IsClean() bool { return v.Class == VerdictClean }

// Filter scores one utterance against the session so far. Implementations
// must not mutate the record.
type Filter interface {
	Evaluate(utterance string, rec *Record) Verdict
}

// profanityPatterns are matched against the lowercased raw utterance so
// that masked spellings ("what the f..") still trip the gate.
var profanityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bf+u+c*k+\w*`),
	regexp.MustCompile(`\bf[.*#@!$]{1,}`),
	regexp.MustCompile(`\bs+h+i+t+\w*`),
	regexp.MustCompile(`\bb+i+t+c+h+\w*`),
	regexp.MustCompile(`\bbastard\b`),
	regexp.MustCompile(`\basshole\b`),
	regexp.MustCompile(`\bdamn\b`),
	regexp.MustCompile(`\bstupid\b`),
	regexp.MustCompile(`\bidiot\b`),
	regexp.MustCompile(`\bmoron\b`),
	regexp.MustCompile(`\bwtf\b`),
	regexp.MustCompile(`\bstfu\b`),
}

// lexicon is the recognized-token set for gibberish scoring. It covers
// common conversational English plus the booking domain vocabulary, so
// legitimate short replies ("Sunday", "4pm", "20") always pass.
var lexicon = buildLexicon()

func buildLexicon() map[string]bool {
	words := []string{
		"a", "about", "after", "all", "am", "an", "and", "any", "are",
		"around", "as", "at", "available", "be", "before", "best", "big",
		"but", "by", "can", "capital", "change", "check", "come", "could",
		"day", "days", "do", "does", "eat", "evening", "fast", "fine",
		"first", "food", "for", "four", "friends", "from", "get", "go",
		"going", "good", "great", "guest", "guests", "have", "he", "hello",
		"help", "her", "here", "hi", "him", "his", "hope", "hour", "hours",
		"how", "i", "if", "in", "is", "it", "its", "just", "know", "large",
		"largest", "last", "late", "later", "let", "light", "like", "long",
		"longest", "love", "make", "many", "maybe", "me", "menu", "might",
		"month", "more", "most", "mountain", "much", "my", "name", "need",
		"next", "nice", "night", "now", "number", "ocean", "of", "on",
		"one", "open", "or", "order", "our", "out", "people", "person",
		"persons", "planet", "please", "pm", "prefer", "question", "river",
		"room", "see", "she", "small", "smallest", "so", "some", "soon",
		"speed", "tall", "tallest", "than", "that", "the", "their", "them",
		"then", "there", "they", "think", "this", "three", "to", "two",
		"us", "want", "was", "we", "week", "weekend", "were", "what",
		"when", "where", "which", "who", "why", "will", "with", "world",
		"would", "you", "your",
	}
	set := make(map[string]bool, len(words)+64)
	for _, w := range words {
		set[w] = true
	}
	for _, w := range weekdays {
		set[w] = true
	}
	for _, group := range [][]string{
		bookingWords, greetingWords, affirmativeWords, negativeWords,
		correctionCues, questionLeads,
	} {
		for _, w := range group {
			set[w] = true
		}
	}
	for w := range dayparts {
		set[w] = true
	}
	for _, m := range []string{
		"january", "february", "march", "april", "may", "june", "july",
		"august", "september", "october", "november", "december",
	} {
		set[m] = true
	}
	return set
}

// LexiconFilter is the default ethical filter: lexicon and pattern based,
// no model calls, fully deterministic.
type LexiconFilter struct{}

func NewLexiconFilter() *LexiconFilter { return &LexiconFilter{} }

// Evaluate gates one utterance. Order matters: profanity beats gibberish
// ("what the f.." contains no dictionary hit beyond stopwords), and the
// contradiction check only runs on otherwise clean input.
func (f *LexiconFilter) Evaluate(utterance string, rec *Record) Verdict {
	lower := strings.ToLower(utterance)
	for _, pat := range profanityPatterns {
		if pat.MatchString(lower) {
			return Verdict{Class: VerdictProfane, Confidence: 0.95}
		}
	}

	norm := normalizeText(utterance)
	if gibberishScore(norm) {
		return Verdict{Class: VerdictGibberish, Confidence: 0.9}
	}

	if rec != nil && contradictsSession(norm, rec) {
		return Verdict{Class: VerdictContradictory, Confidence: 0.8}
	}

	return Verdict{Class: VerdictClean, Confidence: 1.0}
}

// gibberishScore flags input with no recognizable lexical structure: a
// low ratio of known tokens plus at least one long consonant run.
func gibberishScore(norm string) bool {
	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return true
	}
	recognized := 0
	junk := false
	for _, tok := range tokens {
		if recognizedToken(tok) {
			recognized++
			continue
		}
		if len(tok) >= 5 && maxConsonantRun(tok) >= 4 {
			junk = true
		}
	}
	ratio := float64(recognized) / float64(len(tokens))
	return junk && ratio < 0.5
}

func recognizedToken(tok string) bool {
	if len(tok) <= 2 {
		return true
	}
	if bareNumRe.MatchString(tok) {
		return true
	}
	if clockRe.MatchString(tok) || clock24Re.MatchString(tok) {
		return true
	}
	return lexicon[tok]
}

func maxConsonantRun(tok string) int {
	run, best := 0, 0
	for _, r := range tok {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			run = 0
		default:
			if r >= 'a' && r <= 'z' {
				run++
				if run > best {
					best = run
				}
			} else {
				run = 0
			}
		}
	}
	return best
}

// contradictsSession compares definite restatements against already
// resolved slots. A correction cue ("actually", "change it to ...")
// makes the restatement legitimate.
func contradictsSession(norm string, rec *Record) bool {
	// The confirmation summary invites changes; a restated value there is
	// a correction, not a contradiction.
	if rec.Stage == StageAwaitingConfirmation {
		return false
	}
	if hasCorrectionCue(norm) {
		return false
	}

	times, spans := parseTimes(norm)
	dates := parseDates(norm)
	parties := parsePartySizes(norm, spans)

	if rec.Slots.PartySize.IsResolved() && len(parties) == 1 &&
		parties[0] != rec.Slots.PartySize.Value {
		return true
	}
	if rec.Slots.Date.IsResolved() && len(dates) == 1 &&
		!strings.EqualFold(dates[0], rec.Slots.Date.Value) {
		return true
	}
	if rec.Slots.Time.IsResolved() && len(times) == 1 &&
		!strings.EqualFold(times[0], rec.Slots.Time.Value) {
		return true
	}
	return false
}
