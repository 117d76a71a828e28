package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/http/response"
	"github.com/meumosaico/backend/internal/platform/logger"
	"github.com/meumosaico/backend/internal/services"
)

type SessionHandler struct {
	log       *logger.Logger
	sessions  services.SessionService
	artifacts services.ArtifactService
	wizard    services.WizardService
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionService, artifacts services.ArtifactService, wizard services.WizardService) *SessionHandler {
	return &SessionHandler{
		log:       log.With("handler", "SessionHandler"),
		sessions:  sessions,
		artifacts: artifacts,
		wizard:    wizard,
	}
}

type createSessionRequest struct {
	ItemType string    `json:"itemType" binding:"required"`
	ItemID   uuid.UUID `json:"itemId" binding:"required"`
}

// putAnswerRequest deliberately has no ruleId field: the path segment
// is authoritative, and a ruleId in the body is ignored.
type putAnswerRequest struct {
	Type             domain.RuleType `json:"customizationType" binding:"required"`
	SelectedLayoutID string          `json:"selectedLayoutId"`
	Data             json.RawMessage `json:"data"`
}

func (r putAnswerRequest) toInput(ruleID string) (domain.CustomizationInput, error) {
	data, err := domain.DecodeAnswer(r.Type, r.Data)
	if err != nil {
		return domain.CustomizationInput{}, err
	}
	return domain.CustomizationInput{
		RuleID:           ruleID,
		Type:             r.Type,
		SelectedLayoutID: r.SelectedLayoutID,
		Data:             data,
	}, nil
}

type sessionView struct {
	ID       uuid.UUID                   `json:"id"`
	ItemType domain.ItemType             `json:"itemType"`
	ItemID   uuid.UUID                   `json:"itemId"`
	Rules    []domain.RuleView           `json:"rules"`
	Answers  []domain.CustomizationInput `json:"answers"`
}

func viewOf(session *services.Session) sessionView {
	return sessionView{
		ID:       session.ID(),
		ItemType: session.ItemType(),
		ItemID:   session.ItemID(),
		Rules:    session.Rules(),
		Answers:  session.Answers(),
	}
}

// POST /api/customizations/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	itemType, err := parseItemType(req.ItemType)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_item_type", err)
		return
	}

	session, err := h.sessions.Initialize(c.Request.Context(), itemType, req.ItemID)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "create_session_failed")
		return
	}
	response.RespondCreated(c, viewOf(session))
}

// GET /api/customizations/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	response.RespondOK(c, viewOf(session))
}

// DELETE /api/customizations/sessions/:id
func (h *SessionHandler) Clear(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	if err := h.sessions.Clear(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "clear_session_failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/customizations/sessions/:id/answers/:ruleId
func (h *SessionHandler) PutAnswer(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req putAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	input, err := req.toInput(c.Param("ruleId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.artifacts.SaveAnswer(c.Request.Context(), session, input); err != nil {
		response.RespondError(c, http.StatusConflict, "session_cleared", err)
		return
	}
	h.persist(c, session)
	response.RespondOK(c, gin.H{"answer": input})
}

// DELETE /api/customizations/sessions/:id/answers/:ruleId
func (h *SessionHandler) RemoveAnswer(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	session.Remove(c.Param("ruleId"))
	h.persist(c, session)
	c.Status(http.StatusNoContent)
}

// POST /api/customizations/sessions/:id/photos/:ruleId  (multipart)
func (h *SessionHandler) UploadPhotos(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	ruleID := c.Param("ruleId")

	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_multipart", err)
		return
	}
	fileHeaders := form.File["photos"]
	if len(fileHeaders) == 0 {
		fileHeaders = form.File["files"]
	}
	if len(fileHeaders) == 0 {
		response.RespondError(c, http.StatusBadRequest, "no_files", fmt.Errorf("no photo files in request"))
		return
	}

	files := make([]services.UploadFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			h.log.Warn("Skipping unreadable upload", "file", fh.Filename, "error", err)
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.log.Warn("Skipping unreadable upload", "file", fh.Filename, "error", err)
			continue
		}
		files = append(files, services.UploadFile{Name: fh.Filename, Data: data})
	}

	answer, err := h.artifacts.AttachPhotos(c.Request.Context(), session, ruleID, h.maxItemsFor(session, ruleID), files)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusConflict, "attach_photos_failed")
		return
	}
	h.persist(c, session)
	response.RespondOK(c, answer)
}

// DELETE /api/customizations/sessions/:id/photos/:ruleId/:position
func (h *SessionHandler) RemovePhoto(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_position", err)
		return
	}

	answer, err := h.artifacts.RemovePhoto(c.Request.Context(), session, c.Param("ruleId"), position)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "remove_photo_failed")
		return
	}
	h.persist(c, session)
	response.RespondOK(c, answer)
}

// POST /api/customizations/sessions/:id/complete
func (h *SessionHandler) Complete(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	payloads, err := h.wizard.Complete(c.Request.Context(), session)
	if err != nil {
		response.RespondServiceError(c, err, http.StatusBadRequest, "complete_failed")
		return
	}
	response.RespondOK(c, gin.H{"customizations": payloads})
}

func (h *SessionHandler) lookup(c *gin.Context) (*services.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return nil, false
	}
	session, ok := h.sessions.Get(c.Request.Context(), id)
	if !ok {
		response.RespondError(c, http.StatusNotFound, "session_not_found", fmt.Errorf("session %s not found", id))
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) maxItemsFor(session *services.Session, ruleID string) int {
	for _, rule := range session.Rules() {
		if rule.ID == ruleID {
			return rule.MaxItems
		}
	}
	return 0
}

func (h *SessionHandler) persist(c *gin.Context, session *services.Session) {
	if err := h.sessions.Persist(c.Request.Context(), session); err != nil {
		h.log.Warn("Failed to persist session snapshot", "session_id", session.ID(), "error", err)
	}
}
