package content

import (
	"math/rand"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxExcerptLen caps the amount of document text sent to the model.
	MaxExcerptLen = 8000

	minSentenceLen       = 20
	minSectionLen        = 50
	maxTopicSentences    = 100
	maxFallbackSentences = 120
	maxSections          = 15
	maxShuffledSentences = 100
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]+`)
	sectionSplit  = regexp.MustCompile(`\n\s*\n`)
)

// skipPatterns matches boilerplate that should never reach the model: page
// numbers, figure/table captions, reference sections, publication metadata,
// copyright notices, headers/footers, chapter numerals, date lines and bare
// numeric or dash lines. The filter is advisory; sentences are lower-cased
// before matching.
var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`page\s+\d+`),
	regexp.MustCompile(`^(figure|table|chart|diagram)\s+\d+`),
	regexp.MustCompile(`^(references?|bibliography|citations?|acknowledgments?)`),
	regexp.MustCompile(`^\s*(author|editor|publisher|isbn|doi|url)`),
	regexp.MustCompile(`^(copyright|©|\(c\))`),
	regexp.MustCompile(`^(header|footer)`),
	regexp.MustCompile(`^(chapter|section)\s+\d+`),
	regexp.MustCompile(`^(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d+`),
	regexp.MustCompile(`^\d{1,3}\s*$`),
	regexp.MustCompile(`^\s*[-–—]\s*$`),
}

// substantiveKeywords marks sentences likely to carry teachable content when
// the topic filter comes up short.
var substantiveKeywords = []string{
	"define", "definition", "concept", "theory", "principle", "method", "process",
	"analysis", "result", "conclusion", "research", "study", "experiment",
	"significant", "important", "key", "main", "primary", "essential",
	"cause", "effect", "relationship", "correlation", "factor", "influence",
	"example", "case", "instance", "application", "implementation",
	"characteristic", "feature", "property", "attribute", "function",
}

// Selector reduces raw extracted document text to a bounded, topic-relevant
// excerpt. The random source drives section shuffling and is injectable so
// tests can fix the permutation.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a Selector seeded from the current time.
func NewSelector() *Selector {
	return NewSelectorWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewSelectorWithRand creates a Selector with the given random source.
func NewSelectorWithRand(rng *rand.Rand) *Selector {
	return &Selector{rng: rng}
}

// splitSentences splits text into sentence-like units on terminal
// punctuation, discarding short fragments.
func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplit.Split(text, -1) {
		if len(strings.TrimSpace(s)) > minSentenceLen {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isBoilerplate(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, pattern := range skipPatterns {
		if pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// ExtractImportantContent filters the document text down to sentences worth
// prompting with. Sentences matching boilerplate patterns are dropped, then
// sentences mentioning any token of the topic are preferred. When too few
// topic-relevant sentences exist it falls back to a substantive-keyword and
// sentence-length heuristic. The result is capped at MaxExcerptLen and is
// best-effort: no topical precision is guaranteed.
func (s *Selector) ExtractImportantContent(text, topic string) string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		// Nothing sentence-like to work with; hand back the raw text capped
		// rather than an empty excerpt.
		return truncate(strings.TrimSpace(text), MaxExcerptLen)
	}

	var filtered []string
	for _, sentence := range sentences {
		if !isBoilerplate(sentence) {
			filtered = append(filtered, sentence)
		}
	}

	topicKeywords := strings.Fields(strings.ToLower(topic))
	var topicRelevant []string
	for _, sentence := range filtered {
		lower := strings.ToLower(sentence)
		for _, keyword := range topicKeywords {
			if strings.Contains(lower, keyword) {
				topicRelevant = append(topicRelevant, sentence)
				break
			}
		}
	}

	if len(topicRelevant) > 10 {
		if len(topicRelevant) > maxTopicSentences {
			topicRelevant = topicRelevant[:maxTopicSentences]
		}
		return truncate(strings.Join(topicRelevant, ". "), MaxExcerptLen)
	}

	var important []string
	for _, sentence := range filtered {
		lower := strings.ToLower(sentence)
		keep := len(sentence) > 50 && len(sentence) < 300
		if !keep {
			for _, keyword := range substantiveKeywords {
				if strings.Contains(lower, keyword) {
					keep = true
					break
				}
			}
		}
		if keep {
			important = append(important, sentence)
		}
	}

	selected := important
	if len(selected) == 0 {
		selected = filtered
	}
	if len(selected) > maxFallbackSentences {
		selected = selected[:maxFallbackSentences]
	}
	return truncate(strings.Join(selected, ". "), MaxExcerptLen)
}

// RandomizedContentSections shuffles which portion of a filtered excerpt is
// shown to the model so repeated calls over the same document see different
// content. Large texts are shuffled at the paragraph level, small ones at the
// sentence level. Non-determinism here is intentional anti-repetition, not a
// bug.
func (s *Selector) RandomizedContentSections(text string) string {
	var sections []string
	for _, section := range sectionSplit.Split(text, -1) {
		if len(strings.TrimSpace(section)) > minSectionLen {
			sections = append(sections, section)
		}
	}

	if len(sections) > 10 {
		shuffled := make([]string, len(sections))
		copy(shuffled, sections)
		s.rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if len(shuffled) > maxSections {
			shuffled = shuffled[:maxSections]
		}
		return strings.Join(shuffled, "\n\n")
	}

	sentences := splitSentences(text)
	shuffled := make([]string, len(sentences))
	copy(shuffled, sentences)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > maxShuffledSentences {
		shuffled = shuffled[:maxShuffledSentences]
	}
	return truncate(strings.Join(shuffled, ". "), MaxExcerptLen)
}
