package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"quizdrop/internal/groq"
	"quizdrop/internal/models"
	"quizdrop/internal/quiz"
	"quizdrop/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

const (
	// minTextLength is the minimum trimmed input length worth prompting with.
	minTextLength = 100
	// defaultQuestionCount is used when the caller does not specify a count.
	defaultQuestionCount = 10
)

// setRateLimitHeaders exposes the caller's quota state. Set on every response
// that made it past authentication so the caller always knows its remaining
// allowance.
func (h *Handler) setRateLimitHeaders(c *gin.Context, status ratelimit.Status) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(h.Limiter.Limit()))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(status.ResetAt.Unix(), 10))
}

// HandleGenerateQuiz turns extracted document text into a validated
// multiple-choice quiz. Quota is charged only after the caller actually
// receives questions; upstream failures and unusable responses leave the
// allowance untouched.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	identityValue, exists := c.Get("identity")
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}
	identity, ok := identityValue.(string)
	if !ok || identity == "" {
		log.Printf("ERROR: Identity in context is not a string for quiz generation")
		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Invalid identity in context"})
		return
	}

	var req models.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	if len(strings.TrimSpace(req.Text)) < minTextLength {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Text too short for quiz generation"})
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Topic is required to generate focused quiz questions"})
		return
	}

	count := req.NumberOfQuestions
	if count <= 0 {
		count = defaultQuestionCount
	}

	status, err := h.Limiter.Check(identity)
	if err != nil {
		log.Printf("ERROR: Rate limit check failed for %s: %v", identity, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to check rate limit"})
		return
	}
	h.setRateLimitHeaders(c, status)

	if !status.Allowed {
		log.Printf("INFO: Rate limit exceeded for %s, resets at %s", identity, status.ResetAt.Format(time.RFC3339))
		c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
			Error:   "Rate limit exceeded",
			Details: "Quota resets at " + status.ResetAt.Format(time.RFC1123),
		})
		return
	}

	excerpt := h.Selector.ExtractImportantContent(req.Text, req.Topic)
	sections := h.Selector.RandomizedContentSections(excerpt)
	p := h.Prompts.Build(sections, req.Topic, count)

	raw, err := h.Groq.Complete(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, groq.ErrNotConfigured) {
			log.Printf("ERROR: Quiz generation attempted without upstream credential")
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Quiz generation service is not configured"})
			return
		}
		var apiErr *groq.APIError
		if errors.As(err, &apiErr) {
			log.Printf("ERROR: Groq API returned status %d for %s: %s", apiErr.StatusCode, identity, apiErr.Body)
		} else {
			log.Printf("ERROR: Groq API call failed for %s: %v", identity, err)
		}
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation service temporarily unavailable"})
		return
	}

	questions, err := quiz.ParseResponse(raw, count)
	if err != nil {
		log.Printf("ERROR: Failed to process Groq response for %s: %v", identity, err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "Failed to process generated questions"})
		return
	}

	// The caller received usable questions, so the quota is charged now and
	// only now. A partial set still counts as a charged generation.
	if err := h.Limiter.Increment(identity); err != nil {
		log.Printf("WARN: Failed to record quota usage for %s: %v", identity, err)
	}

	log.Printf("INFO: Generated %d questions for %s (requested %d)", len(questions), identity, count)
	c.JSON(http.StatusOK, models.GenerateQuizResponse{
		Questions:      questions,
		TotalGenerated: len(questions),
	})
}
