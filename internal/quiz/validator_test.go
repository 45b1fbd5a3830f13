package quiz

import (
	"strconv"
	"testing"

	"quizdrop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(correctAnswer int) string {
	return `{"question":"What does the cell nucleus store?","options":["DNA","ATP","Lipids","Water"],"correctAnswer":` +
		strconv.Itoa(correctAnswer) + `,"explanation":"The nucleus houses the genetic material."}`
}

func TestParseResponse(t *testing.T) {
	t.Run("PlainJSON", func(t *testing.T) {
		qs, err := ParseResponse(`{"questions":[`+question(0)+`]}`, 5)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, "What does the cell nucleus store?", qs[0].Question)
		assert.Equal(t, 0, qs[0].CorrectAnswer)
	})

	t.Run("StripsCodeFences", func(t *testing.T) {
		raw := "```json\n{\"questions\":[" + question(2) + "]}\n```"
		qs, err := ParseResponse(raw, 5)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, 2, qs[0].CorrectAnswer)
	})

	t.Run("StripsBareFences", func(t *testing.T) {
		raw := "```\n{\"questions\":[" + question(1) + "]}\n```"
		qs, err := ParseResponse(raw, 5)
		require.NoError(t, err)
		assert.Len(t, qs, 1)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		_, err := ParseResponse(`{"questions": [oops`, 5)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("TopLevelArray", func(t *testing.T) {
		_, err := ParseResponse(`[`+question(0)+`]`, 5)
		assert.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("MissingQuestionsField", func(t *testing.T) {
		_, err := ParseResponse(`{"items":[]}`, 5)
		assert.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("QuestionsNotArray", func(t *testing.T) {
		_, err := ParseResponse(`{"questions":"none"}`, 5)
		assert.ErrorIs(t, err, ErrInvalidStructure)
	})

	t.Run("DropsInvalidElements", func(t *testing.T) {
		raw := `{"questions":[` +
			question(0) + `,` +
			`{"question":"Three options only","options":["A","B","C"],"correctAnswer":0,"explanation":"x"},` +
			`{"question":"Index out of range","options":["A","B","C","D"],"correctAnswer":4,"explanation":"x"},` +
			`{"question":"","options":["A","B","C","D"],"correctAnswer":0,"explanation":"x"},` +
			question(3) +
			`]}`
		qs, err := ParseResponse(raw, 10)
		require.NoError(t, err)
		require.Len(t, qs, 2)
		assert.Equal(t, 0, qs[0].CorrectAnswer)
		assert.Equal(t, 3, qs[1].CorrectAnswer)
	})

	t.Run("AllInvalid", func(t *testing.T) {
		raw := `{"questions":[{"question":"","options":[],"correctAnswer":-1,"explanation":""}]}`
		_, err := ParseResponse(raw, 5)
		assert.ErrorIs(t, err, ErrNoValidQuestions)
	})

	t.Run("EmptyArray", func(t *testing.T) {
		_, err := ParseResponse(`{"questions":[]}`, 5)
		assert.ErrorIs(t, err, ErrNoValidQuestions)
	})

	t.Run("TruncatesToRequestedCount", func(t *testing.T) {
		raw := `{"questions":[` + question(0) + `,` + question(1) + `,` + question(2) + `]}`
		qs, err := ParseResponse(raw, 2)
		require.NoError(t, err)
		assert.Len(t, qs, 2)
	})

	t.Run("NeverPads", func(t *testing.T) {
		qs, err := ParseResponse(`{"questions":[`+question(0)+`]}`, 10)
		require.NoError(t, err)
		assert.Len(t, qs, 1)
	})
}

func TestValidQuestion(t *testing.T) {
	base := models.QuizQuestion{
		Question:      "Which organelle performs photosynthesis?",
		Options:       []string{"Chloroplast", "Mitochondrion", "Ribosome", "Vacuole"},
		CorrectAnswer: 0,
		Explanation:   "Chloroplasts contain the chlorophyll that captures light.",
	}

	tests := []struct {
		name   string
		mutate func(*models.QuizQuestion)
		want   bool
	}{
		{"Valid", func(q *models.QuizQuestion) {}, true},
		{"LastIndex", func(q *models.QuizQuestion) { q.CorrectAnswer = 3 }, true},
		{"EmptyQuestion", func(q *models.QuizQuestion) { q.Question = "" }, false},
		{"EmptyExplanation", func(q *models.QuizQuestion) { q.Explanation = "" }, false},
		{"TooFewOptions", func(q *models.QuizQuestion) { q.Options = q.Options[:3] }, false},
		{"TooManyOptions", func(q *models.QuizQuestion) { q.Options = append(q.Options, "Extra") }, false},
		{"NegativeAnswer", func(q *models.QuizQuestion) { q.CorrectAnswer = -1 }, false},
		{"AnswerOutOfRange", func(q *models.QuizQuestion) { q.CorrectAnswer = 4 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			q.Options = append([]string(nil), base.Options...)
			tt.mutate(&q)
			assert.Equal(t, tt.want, ValidQuestion(q))
		})
	}
}
