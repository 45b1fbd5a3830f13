package handlers

import (
	"quizdrop/internal/content"
	"quizdrop/internal/groq"
	"quizdrop/internal/prompt"
	"quizdrop/internal/ratelimit"

	"golang.org/x/oauth2"
)

// UserProfile stores information about the authenticated user. The GoogleID
// doubles as the opaque rate-limit identity.
type UserProfile struct {
	GoogleID      string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Locale        string `json:"locale"`
}

// Constants for session keys - keep these consistent
const (
	OauthStateSessionKey = "oauthstate"
	ProfileSessionKey    = "profile"
)

// Handler contains the API handlers dependencies
type Handler struct {
	OauthConfig *oauth2.Config
	StoreName   string
	Selector    *content.Selector
	Prompts     *prompt.Builder
	Groq        *groq.Client
	Limiter     *ratelimit.Limiter
}

// NewHandler creates a new Handler
func NewHandler(oauth *oauth2.Config, store string, groqClient *groq.Client, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		OauthConfig: oauth,
		StoreName:   store,
		Selector:    content.NewSelector(),
		Prompts:     prompt.NewBuilder(),
		Groq:        groqClient,
		Limiter:     limiter,
	}
}
