package cvs

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cv-backend/internal/cvform"
	"cv-backend/internal/extract"
	"cv-backend/internal/generation"
	"cv-backend/internal/shared/server/middleware"
	"cv-backend/internal/shared/server/respond"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/shared/util"
)

const maxUploadBytes = 10 << 20

// Handler exposes the orchestrator over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires CV routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/cvs", h.list)
	rg.POST("/cvs", h.create)
	rg.GET("/cvs/stream", h.streamList)
	rg.GET("/cvs/:id", h.get)
	rg.PUT("/cvs/:id", h.update)
	rg.DELETE("/cvs/:id", h.delete)
	rg.GET("/cvs/:id/stream", h.streamOne)
	rg.POST("/cvs/:id/documents/:docType", h.generate)

	rg.GET("/skills/options", h.skillOptions)
	rg.POST("/skills/suggest", h.suggestSkills)
	rg.POST("/experience/summarize", h.summarize)
}

func (h *Handler) list(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	recs, err := h.svc.ListCvs(c.Request.Context(), ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "CVs loaded", "", ListResponse{Items: recs})
}

func (h *Handler) create(c *gin.Context) {
	h.save(c, "")
}

func (h *Handler) update(c *gin.Context) {
	h.save(c, c.Param("id"))
}

func (h *Handler) save(c *gin.Context, existingID string) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	if existingID != "" {
		c.Set(middleware.ResumeIDKey, existingID)
	}

	var in cvform.FormInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return
	}

	id, err := h.svc.SaveCv(c.Request.Context(), ownerID, in, existingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.ResumeIDKey, id)
	if existingID == "" {
		respond.Success(c, http.StatusCreated, "CV saved", id, nil)
		return
	}
	respond.Success(c, http.StatusOK, "CV updated", id, nil)
}

func (h *Handler) get(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	rec, found, err := h.svc.GetCv(c.Request.Context(), id, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		respond.Error(c, http.StatusNotFound, "not_found", "CV not found", nil)
		return
	}
	respond.Success(c, http.StatusOK, "CV loaded", rec.ID, rec)
}

func (h *Handler) delete(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	if err := h.svc.DeleteCv(c.Request.Context(), id, ownerID); err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "CV deleted", id, nil)
}

func (h *Handler) generate(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)

	docType, err := generation.ParseDocType(c.Param("docType"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(middleware.DocTypeKey, string(docType))

	if err := h.svc.GenerateDocument(c.Request.Context(), id, ownerID, docType); err != nil {
		writeError(c, err)
		return
	}
	rec, found, err := h.svc.GetCv(c.Request.Context(), id, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	if !found {
		respond.Error(c, http.StatusNotFound, "not_found", "CV not found", nil)
		return
	}
	respond.Success(c, http.StatusOK, "Document generated", id, rec)
}

func (h *Handler) skillOptions(c *gin.Context) {
	respond.Success(c, http.StatusOK, "Skill options", "", SkillsResponse{Skills: skillOptions()})
}

func (h *Handler) suggestSkills(c *gin.Context) {
	var req SuggestSkillsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Invalid JSON body", nil)
		return
	}
	skills, err := h.svc.SuggestSkills(c.Request.Context(), req.JobTitle)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Skills suggested", "", SkillsResponse{Skills: skills})
}

func (h *Handler) summarize(c *gin.Context) {
	text, err := summarySource(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}
	summary, err := h.svc.SummarizeExperience(c.Request.Context(), text)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.Success(c, http.StatusOK, "Experience summarized", "", SummaryResponse{Summary: summary})
}

// summarySource reads the text to summarize from a JSON body or an uploaded
// PDF, DOCX or text file in the "file" form field.
func summarySource(c *gin.Context) (string, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", errors.New("Invalid JSON body")
		}
		return req.WorkExperience, nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		return "", errors.New("file is required")
	}
	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		return "", errors.New("invalid file name")
	}
	f, err := fh.Open()
	if err != nil {
		return "", errors.New("unable to read file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return "", errors.New("unable to read file")
	}
	text, err := extract.ExtractTextFromBytes(c.Request.Context(), data, fh.Header.Get("Content-Type"), name)
	if err != nil {
		telemetry.Warn("cvs.upload.extract_failed", map[string]any{"file_name": name, "size": len(data), "error": err.Error()})
		if errors.Is(err, extract.ErrUnsupported) {
			return "", errors.New("unsupported file type")
		}
		return "", errors.New("unable to extract text from file")
	}
	return text, nil
}

func requireOwner(c *gin.Context) (string, bool) {
	ownerID := middleware.UserIDFromContext(c)
	if ownerID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return "", false
	}
	return ownerID, true
}

// writeError maps orchestrator errors to HTTP responses.
func writeError(c *gin.Context, err error) {
	var validationErr *cvform.ValidationError
	var storeErr *StoreError
	var genErr *generation.Error

	switch {
	case errors.As(err, &validationErr):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid CV form", validationErr.Fields)
	case errors.Is(err, generation.ErrUnknownDocType):
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Unknown document type", nil)
	case errors.Is(err, generation.ErrEmptyInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", "Input must not be empty", nil)
	case errors.Is(err, ErrPermission):
		respond.Error(c, http.StatusForbidden, "forbidden", "Permission denied", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "CV not found", nil)
	case errors.As(err, &genErr):
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusBadGateway, "generation_failed", "Generation failed", gin.H{"cause": genErr.Cause.Error()})
	case errors.As(err, &storeErr):
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusServiceUnavailable, "store_unavailable", "Store unavailable", nil)
	default:
		c.Set("errorCause", err.Error())
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	}
}
