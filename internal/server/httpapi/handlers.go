package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/notesum/internal/common"
	"github.com/dmitrijs2005/notesum/internal/logging"
	"github.com/dmitrijs2005/notesum/internal/server/auth"
	"github.com/dmitrijs2005/notesum/internal/server/export"
	"github.com/dmitrijs2005/notesum/internal/server/models"
	"github.com/dmitrijs2005/notesum/internal/server/services"
	"github.com/gin-gonic/gin"
)

const msgSummaryNotFound = "Summary not found"

// UserService is the account side of the API. *services.UserService
// implements it.
type UserService interface {
	TokenVerifier
	Register(ctx context.Context, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Me(ctx context.Context, userID string) (*models.User, error)
}

// SummaryService is the summary side of the API. *services.SummaryService
// implements it.
type SummaryService interface {
	Create(ctx context.Context, ownerID string, in services.SummaryInput) (*models.Summary, error)
	List(ctx context.Context, p services.ListParams) (*models.SummaryPage, error)
	Update(ctx context.Context, id, ownerID string, patch models.SummaryPatch) (*models.Summary, error)
	Delete(ctx context.Context, id, ownerID string) error
	SetStarred(ctx context.Context, id string, starred *bool) (*models.Summary, error)
	Share(ctx context.Context, id string) (string, error)
	GetBySlug(ctx context.Context, slug string) (*models.PublicSummary, error)
	Export(ctx context.Context, id, ownerID string, format export.Format) (*export.Document, error)
	Archive(ctx context.Context, id, ownerID string, format export.Format) (*export.Archived, error)
}

// Summarizer produces summaries of free text. *summarizer.Summarizer
// implements it.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxWords int) (string, error)
}

type handlers struct {
	users      UserService
	summaries  SummaryService
	summarizer Summarizer
	log        logging.Logger
}

// bindJSON decodes the body into obj. With allowEmpty an absent body leaves
// obj untouched.
func (h *handlers) bindJSON(c *gin.Context, obj any, allowEmpty bool) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		if allowEmpty {
			return true
		}
		h.fail(c, common.ValidationErrorf("request body is required"), "")
		return false
	}

	verr := services.AsValidationError(err)
	if !errors.Is(verr, common.ErrorValidation) {
		verr = common.ValidationErrorf("malformed JSON body")
	}
	h.fail(c, verr, "")
	return false
}

// identity returns the caller of a route behind AuthMiddleware.
func (h *handlers) identity(c *gin.Context) (*auth.Identity, bool) {
	id, ok := IdentityFrom(c)
	if !ok {
		abortWithMessage(c, http.StatusUnauthorized, msgUnauthorized)
	}
	return id, ok
}

func newAuthResponse(r *services.AuthResult) authResponse {
	return authResponse{
		Token: r.Token,
		User:  userResponse{ID: r.User.ID, Email: r.User.Email},
	}
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if !h.bindJSON(c, &req, false) {
		return
	}

	res, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	h.log.Info(c.Request.Context(), "user registered", "user_id", res.User.ID)
	c.JSON(http.StatusCreated, newAuthResponse(res))
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req, false) {
		return
	}

	res, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			abortWithMessage(c, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(res))
}

func (h *handlers) me(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	user, err := h.users.Me(c.Request.Context(), id.UserID)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}

// positiveInt reads a query number; anything but a positive integer is 0.
func positiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *handlers) listSummaries(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, common.ValidationErrorf("malformed query"), "")
		return
	}

	params := services.ListParams{
		Query: q.Q,
		Page:  positiveInt(q.Page),
		Limit: positiveInt(q.Limit),
		Sort:  q.Sort,
	}

	switch q.Owner {
	case "":
	case "me":
		id, ok := IdentityFrom(c)
		if !ok {
			abortWithMessage(c, http.StatusUnauthorized, "Authorization token required")
			return
		}
		params.OwnerID = id.UserID
	default:
		h.fail(c, common.ValidationErrorf(`owner must be "me"`), "")
		return
	}

	page, err := h.summaries.List(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err, "")
		return
	}
	if page.Items == nil {
		page.Items = []*models.Summary{}
	}

	if !params.Paginated() {
		c.JSON(http.StatusOK, page.Items)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handlers) createSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	var req createSummaryRequest
	if !h.bindJSON(c, &req, false) {
		return
	}

	summary, err := h.summaries.Create(c.Request.Context(), id.UserID, services.SummaryInput{
		Note:    req.Note,
		Summary: req.Summary,
		Tags:    req.Tags,
	})
	if err != nil {
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, summary)
}

func (h *handlers) updateSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	var req updateSummaryRequest
	if !h.bindJSON(c, &req, true) {
		return
	}

	summary, err := h.summaries.Update(c.Request.Context(), c.Param("id"), id.UserID, req.patch())
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlers) deleteSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	if err := h.summaries.Delete(c.Request.Context(), c.Param("id"), id.UserID); err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Summary deleted"})
}

func (h *handlers) starSummary(c *gin.Context) {
	var req starRequest
	if !h.bindJSON(c, &req, true) {
		return
	}

	summary, err := h.summaries.SetStarred(c.Request.Context(), c.Param("id"), req.Starred)
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlers) shareSummary(c *gin.Context) {
	slug, err := h.summaries.Share(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.JSON(http.StatusOK, shareResponse{Slug: slug})
}

func (h *handlers) sharedSummary(c *gin.Context) {
	summary, err := h.summaries.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlers) exportSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err, "")
		return
	}

	doc, err := h.summaries.Export(c.Request.Context(), c.Param("id"), id.UserID, format)
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

func (h *handlers) archiveSummary(c *gin.Context) {
	id, ok := h.identity(c)
	if !ok {
		return
	}

	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err, "")
		return
	}

	archived, err := h.summaries.Archive(c.Request.Context(), c.Param("id"), id.UserID, format)
	if err != nil {
		h.fail(c, err, msgSummaryNotFound)
		return
	}

	h.log.Info(c.Request.Context(), "summary archived", "id", c.Param("id"), "key", archived.Key)
	c.JSON(http.StatusOK, archived)
}

func (h *handlers) summarize(c *gin.Context) {
	if h.summarizer == nil {
		h.fail(c, fmt.Errorf("%w: summarizer is not configured", common.ErrorUnavailable), "")
		return
	}

	var req summarizeRequest
	if !h.bindJSON(c, &req, false) {
		return
	}

	summary, err := h.summarizer.Summarize(c.Request.Context(), req.Text, req.MaxWords)
	if err != nil {
		h.fail(c, err, "")
		return
	}

	c.JSON(http.StatusOK, summarizeResponse{Summary: summary})
}
