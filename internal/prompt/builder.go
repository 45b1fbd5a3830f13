package prompt

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

const (
	// ModelName is the Groq model used for quiz generation.
	ModelName = "llama-3.1-8b-instant"
	// MaxTokens bounds the completion size.
	MaxTokens = 4000

	baseTemperature   = 0.7
	temperatureJitter = 0.3
	baseTopP          = 0.9
	topPJitter        = 0.1
	presencePenalty   = 0.3
	frequencyPenalty  = 0.5
)

// systemPromptTemplate instructs the model on content analysis, question
// diversity and the exact JSON output contract. The SESSION ID nonce signals
// that each call is a new session so previously generated questions should
// not be repeated; only the response validator enforces structure.
const systemPromptTemplate = `You are an expert quiz generator that creates high-quality, focused questions from academic or professional documents.

SESSION ID: %s (Generate completely NEW and DIFFERENT questions each time - never repeat previous questions)

IMPORTANT: Return ONLY a valid JSON object with this exact structure (no additional text, markdown, or formatting):

{
  "questions": [
    {
      "question": "question text here",
      "options": ["option1", "option2", "option3", "option4"],
      "correctAnswer": 0,
      "explanation": "explanation text here"
    }
  ]
}

CONTENT ANALYSIS RULES:
1. First, identify the most important concepts, theories, facts, and key information from the text
2. Focus on substantive content like definitions, processes, relationships, causes/effects, and significant details
3. Ignore: headers, footers, page numbers, references, author names, publication details, table of contents
4. Prioritize: core concepts, technical terms, important facts, processes, examples, and case studies
5. Skip trivial details like formatting, citation styles, or non-essential background information

QUESTION DIVERSITY REQUIREMENTS:
- Generate exactly %d UNIQUE and VARIED multiple choice questions
- Each question must approach the content from a DIFFERENT ANGLE
- Use different question types: definition, application, analysis, comparison, cause-effect, example-based
- Each question must have exactly 4 options with one clearly correct answer
- correctAnswer is the index (0-3) of the correct option
- Focus on testing understanding, not memorization of trivial details
- Create questions that assess comprehension, analysis, and application of key concepts
- Avoid questions about formatting, page numbers, author names, or publication details
- Make distractors (wrong answers) plausible but clearly incorrect to someone who understands the material
- Provide clear, educational explanations that reinforce learning
- NEVER repeat questions from previous generations - always create fresh, original questions

TOPIC FOCUS: Create questions specifically related to "%s". Only generate questions that are directly relevant to this topic based on the content in the document. If the document doesn't contain sufficient information about "%s", focus on the most relevant content available and try to relate it to the topic. Use different aspects and subtopics within "%s" for variety.`

const userPromptTemplate = `Generate %d high-quality, DIVERSE quiz questions from this content. Make each question unique and focus on different aspects:

%s`

// Sampling holds the per-call sampling parameters sent alongside the prompt.
// Temperature and TopP are jittered within a band on every call to increase
// output diversity across repeated generations of the same document.
type Sampling struct {
	Temperature      float64
	TopP             float64
	MaxTokens        int
	PresencePenalty  float64
	FrequencyPenalty float64
}

// Prompt carries everything the generation client needs for a single call.
type Prompt struct {
	System   string
	User     string
	Sampling Sampling
}

// Builder assembles prompts for quiz generation. The random source drives
// sampling jitter and is injectable for tests.
type Builder struct {
	rng *rand.Rand
}

// NewBuilder creates a Builder seeded from the current time.
func NewBuilder() *Builder {
	return NewBuilderWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBuilderWithRand creates a Builder with the given random source.
func NewBuilderWithRand(rng *rand.Rand) *Builder {
	return &Builder{rng: rng}
}

// Build assembles the system and user prompts for the given excerpt, topic
// and question count, with a fresh session nonce and jittered sampling
// parameters.
func (b *Builder) Build(excerpt, topic string, count int) Prompt {
	nonce := fmt.Sprintf("%s-%d", uuid.New().String(), time.Now().UnixMilli())

	return Prompt{
		System: fmt.Sprintf(systemPromptTemplate, nonce, count, topic, topic, topic),
		User:   fmt.Sprintf(userPromptTemplate, count, excerpt),
		Sampling: Sampling{
			Temperature:      baseTemperature + b.rng.Float64()*temperatureJitter,
			TopP:             baseTopP + b.rng.Float64()*topPJitter,
			MaxTokens:        MaxTokens,
			PresencePenalty:  presencePenalty,
			FrequencyPenalty: frequencyPenalty,
		},
	}
}
