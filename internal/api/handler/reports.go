package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"grievancedesk/backend/internal/dashboard"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"
	"grievancedesk/backend/internal/submission"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const evidenceField = "evidence_files"

// ListGrievances returns the caller's own grievance list.
func (h *Handler) ListGrievances(c *gin.Context) {
	grievances, err := h.client(c).ListGrievanceReports(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	state := reports.State{GrievanceReports: grievances}
	c.JSON(http.StatusOK, submission.NewListView(state, h.Localizer, h.lang(c)))
}

// ListReports returns both report kinds merged, newest first.
func (h *Handler) ListReports(c *gin.Context) {
	ctx := c.Request.Context()
	client := h.client(c)

	grievances, err := client.ListGrievanceReports(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	suspicious, err := client.ListSuspiciousReports(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard.Build(reports.State{
		GrievanceReports:  grievances,
		SuspiciousReports: suspicious,
	}))
}

// SubmitGrievance accepts the grievance form as multipart/form-data, with
// evidence files under "evidence_files".
func (h *Handler) SubmitGrievance(c *gin.Context) {
	var form submission.Form
	if err := c.ShouldBind(&form); err != nil {
		respondBindError(c, err)
		return
	}

	files, closeAll, err := openEvidence(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer closeAll()
	form.Files = files

	lang := h.lang(c)
	result, err := submission.NewSubmitter(h.client(c), h.Localizer).Submit(c.Request.Context(), lang, form)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "notice": result.Notice})
		return
	}

	h.Notifier.GrievanceCreated(result.Report)
	c.JSON(http.StatusCreated, result)
}

type suspiciousRequest struct {
	EntityType    string   `json:"entity_type" binding:"required"`
	EntityValue   string   `json:"entity_value" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	EvidenceFiles []string `json:"evidence_files"`
	ThreatLevel   *string  `json:"threat_level"`
}

// CreateSuspicious records a suspicious entity report from a JSON body.
func (h *Handler) CreateSuspicious(c *gin.Context) {
	var req suspiciousRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.client(c).CreateSuspiciousReport(c.Request.Context(), reports.SuspiciousInput{
		EntityType:    req.EntityType,
		EntityValue:   req.EntityValue,
		Description:   req.Description,
		EvidenceFiles: req.EvidenceFiles,
		ThreatLevel:   req.ThreatLevel,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.Notifier.SuspiciousCreated(report)
	lang := h.lang(c)
	c.JSON(http.StatusCreated, gin.H{
		"report": report,
		"notice": submission.Notice{
			Title:       h.Localizer.GetString(lang, "notice.suspicious_submitted.title"),
			Description: h.Localizer.GetString(lang, "notice.suspicious_submitted.description"),
			Variant:     submission.VariantDefault,
		},
	})
}

// UploadEvidence stores a single "file" under the optional "scope_id" form
// value, or a fresh one, and returns its public URL.
func (h *Handler) UploadEvidence(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, err)
		return
	}
	scopeID := c.PostForm("scope_id")
	if scopeID == "" {
		scopeID = uuid.New().String()
	}

	upload, f, err := openUpload(header)
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	url, err := h.client(c).UploadFile(c.Request.Context(), upload, scopeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url, "scope_id": scopeID})
}

// openEvidence opens every evidence file of the multipart form. The returned
// func closes them all.
func openEvidence(c *gin.Context) ([]models.FileUpload, func(), error) {
	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	var (
		uploads []models.FileUpload
		opened  []multipart.File
	)
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, header := range mf.File[evidenceField] {
		upload, f, err := openUpload(header)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, upload)
	}
	return uploads, closeAll, nil
}

func openUpload(header *multipart.FileHeader) (models.FileUpload, multipart.File, error) {
	f, err := header.Open()
	if err != nil {
		log.Warn().Err(err).Str("file", header.Filename).Msg("failed to open uploaded file")
		return models.FileUpload{}, nil, fmt.Errorf("open %s: %w", header.Filename, err)
	}
	return models.FileUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	}, f, nil
}
