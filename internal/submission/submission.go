// Package submission drives the grievance submission view: it uploads the
// selected evidence files, creates the report and renders the user's own list.
package submission

import (
	"context"
	"errors"
	"path"
	"slices"
	"strings"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/localization"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Notice variants.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Reporter is the part of the data-access layer the submission view needs.
// Both *reports.Client and *reports.Session implement it.
type Reporter interface {
	CreateGrievanceReport(ctx context.Context, in reports.GrievanceInput) (*models.GrievanceReport, error)
	UploadFile(ctx context.Context, file models.FileUpload, scopeID string) (string, error)
}

// Form is the grievance form as filled in by the user.
type Form struct {
	Title       string              `form:"title" json:"title" binding:"required"`
	Category    string              `form:"complaint_category" json:"complaint_category" binding:"required"`
	Subcategory string              `form:"subcategory" json:"subcategory"`
	Location    string              `form:"location" json:"location" binding:"required"`
	Description string              `form:"description" json:"description" binding:"required"`
	Priority    string              `form:"priority_level" json:"priority_level"`
	Files       []models.FileUpload `form:"-" json:"-"`
}

// Notice is the toast shown after a submission attempt.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant"`
}

// Result is the outcome of Submit. On success Report is set and Form is
// cleared; on failure Form keeps what the user entered.
type Result struct {
	Report *models.GrievanceReport `json:"report,omitempty"`
	Notice Notice                  `json:"notice"`
	Form   Form                    `json:"form"`
}

type Submitter struct {
	reporter  Reporter
	localizer *localization.Localizer
	newScope  func() string
}

func NewSubmitter(reporter Reporter, localizer *localization.Localizer) *Submitter {
	return &Submitter{
		reporter:  reporter,
		localizer: localizer,
		newScope:  func() string { return uuid.New().String() },
	}
}

// Submit uploads every file of the form in parallel under one scope id,
// keeps the references of the uploads that succeeded, in file order, and
// creates the grievance. Failed uploads are logged and left out.
func (s *Submitter) Submit(ctx context.Context, lang string, form Form) (Result, error) {
	refs := s.uploadAll(ctx, form.Files)

	input := reports.GrievanceInput{
		Title:             form.Title,
		ComplaintCategory: form.Category,
		Description:       form.Description,
		Location:          form.Location,
		EvidenceFiles:     refs,
	}
	if form.Subcategory != "" {
		sub := form.Subcategory
		input.Subcategory = &sub
	}
	priority := form.Priority
	if priority == "" {
		priority = config.DefaultPriority
	}
	input.PriorityLevel = &priority

	report, err := s.reporter.CreateGrievanceReport(ctx, input)
	if err != nil {
		log.Error().Err(err).Str("title", form.Title).Msg("grievance submission failed")
		return Result{Notice: s.errorNotice(lang, err), Form: form}, err
	}

	log.Info().Str("report_id", report.ID).Int("evidence", len(refs)).Msg("grievance submitted")
	return Result{
		Report: report,
		Notice: Notice{
			Title:       s.localizer.GetString(lang, "notice.submitted.title"),
			Description: s.localizer.GetString(lang, "notice.submitted.description"),
			Variant:     VariantDefault,
		},
	}, nil
}

func (s *Submitter) uploadAll(ctx context.Context, files []models.FileUpload) []string {
	if len(files) == 0 {
		return nil
	}

	scopeID := s.newScope()
	urls := make([]string, len(files))

	var g errgroup.Group
	for i, file := range files {
		g.Go(func() error {
			url, err := s.reporter.UploadFile(ctx, file, scopeID)
			if err != nil {
				log.Warn().Err(err).Str("file", file.Filename).Msg("dropping evidence file")
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	_ = g.Wait()

	refs := slices.DeleteFunc(urls, func(u string) bool { return u == "" })
	if len(refs) == 0 {
		return nil
	}
	return refs
}

func (s *Submitter) errorNotice(lang string, err error) Notice {
	desc := err.Error()
	if errors.Is(err, reports.ErrUnauthenticated) {
		desc = s.localizer.GetString(lang, "notice.unauthenticated")
	} else if desc == "" {
		desc = s.localizer.GetString(lang, "notice.error.fallback")
	}
	return Notice{
		Title:       s.localizer.GetString(lang, "notice.error.title"),
		Description: desc,
		Variant:     VariantDestructive,
	}
}

// Accepts reports whether filename has one of the advertised evidence extensions.
func Accepts(filename string) bool {
	return slices.Contains(config.AcceptedUploadExtensions, strings.ToLower(path.Ext(filename)))
}
