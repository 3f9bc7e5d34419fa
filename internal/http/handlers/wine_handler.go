// Cellar HTTP handlers.
//
//   - GET    /wines              (current cellar, newest first)
//   - GET    /wines/search       (ranked free-text search)
//   - GET    /dashboard          (totals, bottles per type, top varietals)
//   - POST   /wines              (register a wine)
//   - PATCH  /wines/{id}         (partial update)
//   - DELETE /wines/{id}         (remove; requires ?confirm=true)
//   - POST   /wines/{id}/adjust  (+/- bottles; keep-or-discard at zero)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
	"github.com/tbourn/go-cellar-backend/internal/services"
	"github.com/tbourn/go-cellar-backend/internal/sysutil"
	"github.com/tbourn/go-cellar-backend/internal/utils"
)

//
// DTOs
//

// WinesResponse wraps a cellar snapshot.
type WinesResponse struct {
	Wines []domain.Wine `json:"wines"`
}

// SearchResponse lists wines by descending relevance.
type SearchResponse struct {
	Query   string               `json:"query"`
	Results []services.SearchHit `json:"results"`
}

// CreateWineResponse returns the store-assigned id.
type CreateWineResponse struct {
	ID string `json:"id" example:"0b0f5c1e-3c53-4bd4-9f0e-6c2f7f6bf3a1"`
}

// AdjustRequest changes the bottle count by Delta. OnZero answers the
// keep-or-discard question when the count reaches zero.
type AdjustRequest struct {
	Delta  *int   `json:"delta"   binding:"required" example:"-1"`
	OnZero string `json:"on_zero" example:"keep" enums:"keep,discard"`
}

// AdjustResponse reports the resulting count.
type AdjustResponse struct {
	Quantity int  `json:"quantity"`
	Removed  bool `json:"removed"`
}

// AcceptedResponse is returned when a removal could not be confirmed by the
// store; the live stream shows the final state.
type AcceptedResponse struct {
	Status string `json:"status" example:"accepted"`
}

const (
	defaultSearchK = 10
	maxSearchK     = 50
	defaultTopN    = 5
	maxTopN        = 20
)

//
// Handlers
//

// ListWines godoc
// @ID          listWines
// @Summary     List the cellar
// @Description One-shot snapshot of the user's wines ordered by date added, newest first.
// @Tags        Wines
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.WinesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Login required"
// @Router      /wines [get]
func (h *Handlers) ListWines(c *gin.Context) {
	ws, err := h.cfg.Cellar.List(c.Request.Context(), userID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, WinesResponse{Wines: ws})
}

// SearchWines godoc
// @ID          searchWines
// @Summary     Search the cellar
// @Tags        Wines
// @Produce     json
// @Security    BearerAuth
// @Param       q  query  string  true   "Free-text query"  example(barolo 2016)
// @Param       k  query  int     false  "Max results"      minimum(1) maximum(50) default(10)
// @Success     200  {object}  handlers.SearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Router      /wines/search [get]
func (h *Handlers) SearchWines(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	k := utils.Clamp(utils.AtoiDefault(c.Query("k"), defaultSearchK), 1, maxSearchK)

	hits, err := h.cfg.Cellar.Search(c.Request.Context(), userID(c), q, k)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, SearchResponse{Query: q, Results: hits})
}

// Dashboard godoc
// @ID          dashboard
// @Summary     Cellar dashboard
// @Tags        Wines
// @Produce     json
// @Security    BearerAuth
// @Param       top  query  int  false  "Number of varietals"  minimum(1) maximum(20) default(5)
// @Success     200  {object}  domain.CellarSummary
// @Router      /dashboard [get]
func (h *Handlers) Dashboard(c *gin.Context) {
	top := utils.Clamp(utils.AtoiDefault(c.Query("top"), defaultTopN), 1, maxTopN)
	sum, err := h.cfg.Cellar.Summary(c.Request.Context(), userID(c), top)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, sum)
}

// CreateWine godoc
// @ID          createWine
// @Summary     Register a wine
// @Tags        Wines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      domain.WineFields  true  "Wine"
// @Success     201   {object}  handlers.CreateWineResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     502   {object}  handlers.ErrorResponse  "Write failed"
// @Router      /wines [post]
func (h *Handlers) CreateWine(c *gin.Context) {
	var f domain.WineFields
	if err := c.ShouldBindJSON(&f); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	id, err := h.cfg.Cellar.Create(c.Request.Context(), userID(c), f)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, CreateWineResponse{ID: id})
}

// UpdateWine godoc
// @ID          updateWine
// @Summary     Update a wine
// @Description Merges the supplied fields; omitted fields are left unchanged.
// @Tags        Wines
// @Accept      json
// @Security    BearerAuth
// @Param       id    path  string            true  "Wine ID"
// @Param       body  body  domain.WinePatch  true  "Fields to change"
// @Success     204   {string}  string  "No Content"
// @Failure     404   {object}  handlers.ErrorResponse  "Wine not found"
// @Failure     422   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     502   {object}  handlers.ErrorResponse  "Write failed"
// @Router      /wines/{id} [patch]
func (h *Handlers) UpdateWine(c *gin.Context) {
	var p domain.WinePatch
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if err := h.cfg.Cellar.Update(c.Request.Context(), userID(c), c.Param("id"), p); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// DeleteWine godoc
// @ID          deleteWine
// @Summary     Remove a wine
// @Description Without confirm=true the server answers 428 with the confirmation prompt.
// @Tags        Wines
// @Security    BearerAuth
// @Param       id       path   string  true   "Wine ID"
// @Param       confirm  query  bool    false  "User confirmed the removal"
// @Success     204  {string}  string  "No Content"
// @Success     202  {object}  handlers.AcceptedResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Wine not found"
// @Failure     428  {object}  handlers.ErrorResponse  "Confirmation required"
// @Router      /wines/{id} [delete]
func (h *Handlers) DeleteWine(c *gin.Context) {
	id := c.Param("id")
	err := h.cfg.Cellar.Delete(c.Request.Context(), userID(c), id, sysutil.IsTruthy(c.Query("confirm")))

	var we *services.WriteError
	switch {
	case err == nil:
		noContent(c)
	case errors.As(err, &we):
		middleware.LoggerFrom(c).Warn().Err(err).Str("wine_id", id).Msg("delete not confirmed by store")
		ok(c, http.StatusAccepted, AcceptedResponse{Status: "accepted"})
	default:
		failErr(c, err)
	}
}

// AdjustWine godoc
// @ID          adjustWine
// @Summary     Add or remove bottles
// @Description Reaching zero bottles requires on_zero (keep or discard); without it the server answers 409 with the prompt.
// @Tags        Wines
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                  true  "Wine ID"
// @Param       body  body      handlers.AdjustRequest  true  "Adjustment"
// @Success     200   {object}  handlers.AdjustResponse
// @Failure     404   {object}  handlers.ErrorResponse  "Wine not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Choice required"
// @Router      /wines/{id}/adjust [post]
func (h *Handlers) AdjustWine(c *gin.Context) {
	var req AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "delta is required")
		return
	}
	choice, err := services.ParseZeroChoice(req.OnZero)
	if err != nil {
		failErr(c, err)
		return
	}
	adj, err := h.cfg.Cellar.AdjustQuantity(c.Request.Context(), userID(c), c.Param("id"), *req.Delta, choice)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, AdjustResponse{
		Quantity: adj.Quantity,
		Removed:  adj.NeedsChoice && choice == services.ZeroDiscard,
	})
}
