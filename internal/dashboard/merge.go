// Package dashboard builds the read-only "my reports" view: both report kinds
// merged into one list, newest first, each carrying a common display projection.
package dashboard

import (
	"encoding/json"
	"slices"
	"time"

	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"
)

// Kind discriminates the two report kinds in a merged list.
type Kind string

const (
	KindGrievance  Kind = "grievance"
	KindSuspicious Kind = "suspicious"
)

// Display is the projection shared by both report kinds.
type Display struct {
	Kind        Kind      `json:"type"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Severity    string    `json:"severity,omitempty"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Badge       Badge     `json:"badge"`
	Attachments int       `json:"attachments"`
	Submitted   string    `json:"submitted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item is one entry of the merged list: a *GrievanceItem or a *SuspiciousItem.
type Item interface {
	Display() Display
	isItem()
}

type GrievanceItem struct {
	Report  models.GrievanceReport
	display Display
}

func (i *GrievanceItem) Display() Display { return i.display }
func (*GrievanceItem) isItem()            {}

func (i *GrievanceItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Display
		Report models.GrievanceReport `json:"report"`
	}{i.display, i.Report})
}

type SuspiciousItem struct {
	Report  models.SuspiciousReport
	display Display
}

func (i *SuspiciousItem) Display() Display { return i.display }
func (*SuspiciousItem) isItem()            {}

func (i *SuspiciousItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Display
		Report models.SuspiciousReport `json:"report"`
	}{i.display, i.Report})
}

func NewGrievanceItem(r models.GrievanceReport) *GrievanceItem {
	return &GrievanceItem{
		Report: r,
		display: Display{
			Kind:        KindGrievance,
			ID:          r.ID,
			Title:       r.Title,
			Category:    r.ComplaintCategory,
			Severity:    deref(r.PriorityLevel),
			Description: r.Description,
			Status:      string(r.Status),
			Badge:       StatusBadge(string(r.Status)),
			Attachments: len(r.EvidenceFiles),
			Submitted:   FormatDate(r.CreatedAt),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		},
	}
}

func NewSuspiciousItem(r models.SuspiciousReport) *SuspiciousItem {
	return &SuspiciousItem{
		Report: r,
		display: Display{
			Kind:        KindSuspicious,
			ID:          r.ID,
			Title:       humanize(r.EntityType) + " - " + r.EntityValue,
			Category:    r.EntityType,
			Severity:    deref(r.ThreatLevel),
			Description: r.Description,
			Status:      string(r.Status),
			Badge:       StatusBadge(string(r.Status)),
			Attachments: len(r.EvidenceFiles),
			Submitted:   FormatDate(r.CreatedAt),
			CreatedAt:   r.CreatedAt,
			UpdatedAt:   r.UpdatedAt,
		},
	}
}

// Merge concatenates grievances then suspicious reports and sorts the result
// by creation time, newest first. Equal timestamps keep concatenation order.
func Merge(grievances []models.GrievanceReport, suspicious []models.SuspiciousReport) []Item {
	items := make([]Item, 0, len(grievances)+len(suspicious))
	for _, r := range grievances {
		items = append(items, NewGrievanceItem(r))
	}
	for _, r := range suspicious {
		items = append(items, NewSuspiciousItem(r))
	}

	slices.SortStableFunc(items, func(a, b Item) int {
		return b.Display().CreatedAt.Compare(a.Display().CreatedAt)
	})
	return items
}

// View is the aggregate view model.
type View struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Build derives the aggregate view from a session snapshot.
func Build(state reports.State) View {
	items := Merge(state.GrievanceReports, state.SuspiciousReports)
	return View{
		Items:   items,
		Total:   len(items),
		Loading: state.Loading,
		Error:   state.Error,
	}
}

// FormatDate renders a submission time like "Mar 4, 2025, 02:30 PM".
func FormatDate(t time.Time) string {
	return t.Format(config.SubmittedDateFmt)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
