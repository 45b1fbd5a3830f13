package models

// QuizQuestion represents a single validated multiple-choice question.
// Instances are only ever created by the response validator from model
// output that passed the schema check.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// GenerateQuizRequest is the payload the frontend sends to the generate endpoint
type GenerateQuizRequest struct {
	Text              string `json:"text"`
	NumberOfQuestions int    `json:"numberOfQuestions"`
	Topic             string `json:"topic"`
}

// GenerateQuizResponse is the success payload for quiz generation
type GenerateQuizResponse struct {
	Questions      []QuizQuestion `json:"questions"`
	TotalGenerated int            `json:"totalGenerated"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
