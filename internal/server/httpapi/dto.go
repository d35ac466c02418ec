package httpapi

import "github.com/dmitrijs2005/notesum/internal/server/models"

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type createSummaryRequest struct {
	Note    string   `json:"note" binding:"required"`
	Summary string   `json:"summary" binding:"required"`
	Tags    []string `json:"tags"`
}

type updateSummaryRequest struct {
	Note    *string   `json:"note"`
	Summary *string   `json:"summary"`
	Tags    *[]string `json:"tags"`
	Starred *bool     `json:"starred"`
}

func (r updateSummaryRequest) patch() models.SummaryPatch {
	return models.SummaryPatch{Note: r.Note, Summary: r.Summary, Tags: r.Tags, Starred: r.Starred}
}

type starRequest struct {
	Starred *bool `json:"starred"`
}

type shareResponse struct {
	Slug string `json:"slug"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type listQuery struct {
	Q     string `form:"q"`
	Page  string `form:"page"`
	Limit string `form:"limit"`
	Sort  string `form:"sort"`
	Owner string `form:"owner"`
}

type summarizeRequest struct {
	Text     string `json:"text" binding:"required"`
	MaxWords int    `json:"maxWords" binding:"omitempty,min=0"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}
