// Package knowledge is a static read-only base of factual question/answer
// pairs, used to answer digressions without derailing the booking flow.
package knowledge

import "strings"

// Entry is one immutable fact. Keywords drive lookup scoring; a question
// must hit at least two of them to count as a match.
type Entry struct {
	Topic    string   `json:"topic"`
	Keywords []string `json:"keywords"`
	Answer   string   `json:"answer"`
}

// Base holds the fact set. It is never mutated after construction.
type Base struct {
	entries []Entry
}

// NewBase returns the built-in general-knowledge fact set.
func NewBase() *Base {
	return &Base{entries: builtinEntries}
}

// Entries returns the full fact set for the observability endpoint.
func (b *Base) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Lookup scores the question against every entry's keywords and returns
// the best answer. A miss returns ok=false; it is the caller's job to
// turn that into a deflection, not an error.
func (b *Base) Lookup(question string) (string, bool) {
	tokens := map[string]bool{}
	for _, tok := range strings.Fields(normalize(question)) {
		tokens[tok] = true
	}

	best, bestScore := -1, 0
	for i, entry := range b.entries {
		score := 0
		for _, kw := range entry.Keywords {
			if tokens[kw] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore < 2 {
		return "", false
	}
	return b.entries[best].Answer, true
}

func normalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}
	return sb.String()
}

var builtinEntries = []Entry{
	{
		Topic:    "capital_australia",
		Keywords: []string{"capital", "australia", "canberra"},
		Answer:   "The capital of Australia is Canberra.",
	},
	{
		Topic:    "largest_ocean",
		Keywords: []string{"largest", "biggest", "ocean", "pacific"},
		Answer:   "The Pacific Ocean is the largest ocean in the world, covering about one-third of Earth's surface.",
	},
	{
		Topic:    "speed_of_light",
		Keywords: []string{"speed", "fast", "light"},
		Answer:   "The speed of light in a vacuum is approximately 299,792,458 meters per second (about 300,000 km/s).",
	},
	{
		Topic:    "tallest_mountain",
		Keywords: []string{"tallest", "highest", "mountain", "everest"},
		Answer:   "Mount Everest is the tallest mountain in the world, standing at 8,848.86 meters (29,031.7 feet) above sea level.",
	},
	{
		Topic:    "human_bones",
		Keywords: []string{"bones", "human", "body", "skeleton"},
		Answer:   "An adult human body has 206 bones, while babies are born with about 270 bones that fuse together as they grow.",
	},
	{
		Topic:    "largest_planet",
		Keywords: []string{"largest", "biggest", "planet", "jupiter"},
		Answer:   "Jupiter is the largest planet in our solar system, with a mass greater than all other planets combined.",
	},
	{
		Topic:    "water_formula",
		Keywords: []string{"chemical", "formula", "water", "h2o"},
		Answer:   "The chemical formula for water is H2O, meaning it consists of two hydrogen atoms and one oxygen atom.",
	},
	{
		Topic:    "longest_river",
		Keywords: []string{"longest", "river", "nile"},
		Answer:   "The Nile River is traditionally considered the longest river in the world at approximately 6,650 kilometers (4,130 miles).",
	},
	{
		Topic:    "fastest_animal",
		Keywords: []string{"fastest", "animal", "falcon"},
		Answer:   "The peregrine falcon is the fastest animal, capable of reaching speeds over 240 mph (386 km/h) when diving.",
	},
	{
		Topic:    "smallest_country",
		Keywords: []string{"smallest", "country", "vatican"},
		Answer:   "Vatican City is the smallest country in the world, with an area of just 0.17 square miles (0.44 square kilometers).",
	},
	{
		Topic:    "deepest_ocean",
		Keywords: []string{"deepest", "deep", "trench", "mariana", "ocean"},
		Answer:   "The Mariana Trench in the Pacific Ocean is the deepest part of Earth's oceans, reaching depths of about 36,200 feet (11,000 meters).",
	},
	{
		Topic:    "photosynthesis",
		Keywords: []string{"photosynthesis", "plants", "sunlight", "glucose"},
		Answer:   "Photosynthesis is the process by which plants convert sunlight, carbon dioxide, and water into glucose and oxygen.",
	},
	{
		Topic:    "gravity_earth",
		Keywords: []string{"gravity", "earth", "acceleration", "falls"},
		Answer:   "Earth's gravity accelerates objects at approximately 9.8 meters per second squared (9.8 m/s2) at sea level.",
	},
	{
		Topic:    "dna_structure",
		Keywords: []string{"dna", "helix", "structure", "watson"},
		Answer:   "DNA has a double helix structure, discovered by Watson and Crick, consisting of two complementary strands of nucleotides.",
	},
	{
		Topic:    "boiling_water",
		Keywords: []string{"boil", "boils", "boiling", "water", "celsius"},
		Answer:   "Water boils at 100 degrees Celsius (212 degrees Fahrenheit) at standard atmospheric pressure at sea level.",
	},
	{
		Topic:    "moon_landing",
		Keywords: []string{"moon", "landing", "apollo", "armstrong"},
		Answer:   "The first successful manned moon landing was by NASA's Apollo 11 mission in 1969, with Neil Armstrong and Buzz Aldrin.",
	},
	{
		Topic:    "human_body_water",
		Keywords: []string{"percent", "percentage", "human", "body", "water"},
		Answer:   "About 60 percent of the adult human body is composed of water, which is essential for all bodily functions.",
	},
	{
		Topic:    "earth_orbit",
		Keywords: []string{"earth", "orbit", "sun", "leap", "days"},
		Answer:   "Earth takes approximately 365.25 days to complete one orbit around the Sun, which is why we have a leap year every 4 years.",
	},
	{
		Topic:    "invention_internet",
		Keywords: []string{"internet", "arpanet", "invented", "invention"},
		Answer:   "The modern internet evolved from ARPANET, developed in the late 1960s and early 1970s in the United States.",
	},
	{
		Topic:    "volcano_active",
		Keywords: []string{"volcano", "active", "etna", "eruptions"},
		Answer:   "Mount Etna in Italy is one of the most active volcanoes in the world and has frequent eruptions.",
	},
}
