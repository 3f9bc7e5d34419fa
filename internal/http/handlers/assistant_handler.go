// Assistant HTTP handlers.
//
//   - GET  /assistant/chat   (session transcript)
//   - POST /assistant/chat   (ask the sommelier)
//   - POST /assistant/label  (read a label photo into form values)
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cellar-backend/internal/assistant"
	"github.com/tbourn/go-cellar-backend/internal/domain"
	"github.com/tbourn/go-cellar-backend/internal/http/middleware"
)

// labelImageTypes are the photo formats accepted for label scans.
var labelImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/heic", "image/heif", "image/gif"}

//
// DTOs
//

// ChatRequest is one user question.
type ChatRequest struct {
	Query string `json:"query" binding:"required" example:"What should I open with roast lamb?"`
}

// ChatResponse carries the sommelier's reply.
type ChatResponse struct {
	Reply domain.ChatMessage `json:"reply"`
}

// TranscriptResponse lists the session's conversation in order.
type TranscriptResponse struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// LabelResponse carries the raw extraction and a ready-to-edit form prefill.
// Found is false when the photo was read but no wine details were on it.
type LabelResponse struct {
	Found   bool                  `json:"found"`
	Label   assistant.LabelFields `json:"label"`
	Prefill domain.WineFields     `json:"prefill"`
}

//
// Handlers
//

// GetTranscript godoc
// @ID          getTranscript
// @Summary     Conversation so far
// @Tags        Assistant
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.TranscriptResponse
// @Router      /assistant/chat [get]
func (h *Handlers) GetTranscript(c *gin.Context) {
	msgs := []domain.ChatMessage{}
	if s := middleware.SessionFrom(c); s != nil {
		msgs = append(msgs, s.History()...)
	}
	ok(c, http.StatusOK, TranscriptResponse{Messages: msgs})
}

// Chat godoc
// @ID          chat
// @Summary     Ask the sommelier
// @Description Sends the question with the current cellar and the transcript. Provider failures come back as an in-chat reply, not an error.
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.ChatRequest  true  "Question"
// @Success     200   {object}  handlers.ChatResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Router      /assistant/chat [post]
func (h *Handlers) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query is required")
		return
	}
	s := middleware.SessionFrom(c)
	if s == nil {
		fail(c, http.StatusUnauthorized, ErrCodeLoginRequired, "sign in with LINE to continue")
		return
	}
	reply, err := h.cfg.Sommelier.Chat(c.Request.Context(), s, req.Query)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ChatResponse{Reply: reply})
}

// ScanLabel godoc
// @ID          scanLabel
// @Summary     Read a wine label
// @Description Extracts name, producer, varietal, vintage, region and type from a label photo.
// @Tags        Assistant
// @Accept      multipart/form-data
// @Produce     json
// @Security    BearerAuth
// @Param       image  formData  file  true  "Label photo"
// @Success     200  {object}  handlers.LabelResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     413  {object}  handlers.ErrorResponse  "Image too large"
// @Failure     415  {object}  handlers.ErrorResponse  "Not an image"
// @Failure     422  {object}  handlers.ErrorResponse  "Label not readable"
// @Failure     502  {object}  handlers.ErrorResponse  "Assistant unreachable"
// @Failure     503  {object}  handlers.ErrorResponse  "Assistant not configured"
// @Router      /assistant/label [post]
func (h *Handlers) ScanLabel(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "image is too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"image\" is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read image")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "cannot read image")
		return
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), labelImageTypes...) {
		fail(c, http.StatusUnsupportedMediaType, ErrCodeUnsupportedMedia, "upload a JPEG, PNG, WebP, HEIC or GIF photo")
		return
	}

	lf, err := h.cfg.Sommelier.ScanLabel(c.Request.Context(), userID(c), data, mt.String())
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, LabelResponse{Found: !lf.Empty(), Label: *lf, Prefill: lf.WineFields()})
}
