package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"kindled-backend/internal/domains/entry/model"
	"kindled-backend/internal/domains/entry/service"
	"kindled-backend/internal/shared/response"
)

// =====================================================
// ENTRY HANDLER
// =====================================================

// EntryHandler serves one entry route family. A non-empty scope pins
// every operation to that entry type.
type EntryHandler struct {
	entryService service.ServiceInterface
	scope        model.EntryType
}

// NewNoteHandler serves /notes, where the type comes from the request
func NewNoteHandler(entryService service.ServiceInterface) *EntryHandler {
	return &EntryHandler{entryService: entryService}
}

// NewPrayerRequestHandler serves /prayer-requests
func NewPrayerRequestHandler(entryService service.ServiceInterface) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		scope:        model.EntryTypePrayerRequest,
	}
}

// List lists entries
// GET /notes/?type=&q=&limit=&skip=&sort_by=&sort_order=&date_from=&date_to=
func (h *EntryHandler) List(c *gin.Context) {
	var req model.ListEntriesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, "invalid query parameters")
		return
	}

	result, err := h.entryService.ListEntries(c.Request.Context(), h.scope, req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// Get gets an entry by unique name
// GET /notes/:unique_name
func (h *EntryHandler) Get(c *gin.Context) {
	entry, err := h.entryService.GetEntry(c.Request.Context(), h.scope, c.Param("unique_name"))
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// Create creates an entry
// POST /notes/
func (h *EntryHandler) Create(c *gin.Context) {
	var req model.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body")
		return
	}
	if h.scope != "" {
		req.Type = h.scope
	}

	entry, err := h.entryService.CreateEntry(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// Edit replaces title and content
// PATCH /notes/:unique_name
func (h *EntryHandler) Edit(c *gin.Context) {
	var req model.EditEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body")
		return
	}

	entry, err := h.entryService.EditEntry(c.Request.Context(), h.scope, c.Param("unique_name"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, entry)
}

// Delete deletes an entry
// DELETE /notes/:unique_name
func (h *EntryHandler) Delete(c *gin.Context) {
	var req model.DeleteEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, model.ErrCodeValidation, "invalid request body")
		return
	}

	result, err := h.entryService.DeleteEntry(c.Request.Context(), h.scope, c.Param("unique_name"), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// =====================================================
// HELPER FUNCTIONS
// =====================================================

func (h *EntryHandler) fail(c *gin.Context, err error) {
	statusCode, errCode, message := mapEntryError(err)
	if statusCode >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("path", c.Request.URL.Path).
			Msg("entry request failed")
	}
	respondError(c, statusCode, errCode, message)
}

// respondError sends error response
func respondError(c *gin.Context, statusCode int, code, message string) {
	response.ErrorResponse(c, statusCode, code, message)
}

// mapEntryError maps entry error to HTTP status code, code and public message
func mapEntryError(err error) (int, string, string) {
	var entryErr *model.EntryError
	if errors.As(err, &entryErr) {
		switch entryErr.Code {
		case model.ErrCodeValidation,
			model.ErrCodeContentRejected,
			model.ErrCodeAuthOrNotFound:
			return http.StatusBadRequest, entryErr.Code, entryErr.Message
		case model.ErrCodeNotFound:
			return http.StatusNotFound, entryErr.Code, entryErr.Message
		case model.ErrCodeModerationUnavailable:
			return http.StatusServiceUnavailable, entryErr.Code, entryErr.Message
		case model.ErrCodeUniqueNameExhausted:
			return http.StatusInternalServerError, entryErr.Code, entryErr.Message
		}
	}
	return http.StatusInternalServerError, response.CodeInternal, "internal server error"
}
