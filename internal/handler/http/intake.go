package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httputil"
)

// maxDraftBody caps JSON request bodies on the wizard endpoints.
const maxDraftBody = 1 << 20

// IntakeHandler serves the product intake wizard.
type IntakeHandler struct {
	service       *service.IntakeService
	maxUploadSize int64
	logger        *slog.Logger
}

// NewIntakeHandler creates a new intake HTTP handler.
func NewIntakeHandler(svc *service.IntakeService, maxUploadSize int64, logger *slog.Logger) *IntakeHandler {
	return &IntakeHandler{
		service:       svc,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// GetState handles GET /api/v1/intake/state
func (h *IntakeHandler) GetState(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	sess, err := h.service.State(r.Context(), actorFrom(r), scope)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, sess)
}

// GetDraft handles GET /api/v1/intake/draft
func (h *IntakeHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.GetDraft(r.Context(), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if d == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httputil.WriteData(w, http.StatusOK, d)
}

// UpdateDraft handles PATCH /api/v1/intake/draft
func (h *IntakeHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	partial, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	upd, err := h.service.UpdateDraft(r.Context(), actorFrom(r), partial)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, upd)
}

// ClearDraft handles DELETE /api/v1/intake/draft
func (h *IntakeHandler) ClearDraft(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	if err := h.service.Clear(r.Context(), actorFrom(r), scope); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StageMedia handles POST /api/v1/intake/media/{slot}
func (h *IntakeHandler) StageMedia(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}

	// Allow for multipart framing on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "file is required: " + err.Error()},
		})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	handle, err := h.service.StageMedia(r.Context(), actorFrom(r), &service.StageMediaInput{
		Scope:       scope,
		Slot:        chi.URLParam(r, "slot"),
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, handle)
}

// RemoveMedia handles DELETE /api/v1/intake/media/{slot}
func (h *IntakeHandler) RemoveMedia(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	if err := h.service.RemoveMedia(r.Context(), actorFrom(r), scope, chi.URLParam(r, "slot")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Next handles POST /api/v1/intake/next
func (h *IntakeHandler) Next(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Next(r.Context(), actorFrom(r))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// EditNext handles POST /api/v1/products/{id}/next
func (h *IntakeHandler) EditNext(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseResourceID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	base, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	res, err := h.service.EditNext(r.Context(), actorFrom(r), id, base)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Metadata handles GET /api/v1/intake/metadata
func (h *IntakeHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	d, err := h.service.Metadata(r.Context(), actorFrom(r), scope)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, d)
}

// Previous handles POST /api/v1/intake/previous
func (h *IntakeHandler) Previous(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	res, err := h.service.Previous(r.Context(), actorFrom(r), scope)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, res)
}

// Submit handles POST /api/v1/intake/submit
func (h *IntakeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	h.submit(w, r, scope)
}

// EditSubmit handles POST /api/v1/products/{id}/submit
func (h *IntakeHandler) EditSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseResourceID(w, "id", chi.URLParam(r, "id"))
	if !ok {
		return
	}
	h.submit(w, r, id)
}

func (h *IntakeHandler) submit(w http.ResponseWriter, r *http.Request, scope string) {
	meta, ok := h.decodeDraft(w, r)
	if !ok {
		return
	}
	res, err := h.service.Submit(r.Context(), actorFrom(r), scope, meta)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, res)
}

// Activity handles GET /api/v1/activity?limit=
func (h *IntakeHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	entries, err := h.service.Activity(r.Context(), actorFrom(r), limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, entries)
}

// decodeDraft reads a JSON object body. An empty body is an empty draft.
func (h *IntakeHandler) decodeDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDraftBody)

	d := domain.Draft{}
	if r.ContentLength == 0 {
		return d, true
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return nil, false
	}
	if d == nil {
		d = domain.Draft{}
	}
	return d, true
}
