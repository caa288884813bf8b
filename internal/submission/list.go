package submission

import (
	"grievancedesk/backend/internal/config"
	"grievancedesk/backend/internal/localization"
	"grievancedesk/backend/internal/models"
	"grievancedesk/backend/internal/reports"
)

var statusLabels = map[string]string{
	"pending":       "Pending",
	"investigating": "Investigating",
	"resolved":      "Resolved",
	"rejected":      "Rejected",
	"under_review":  "Under Review",
}

var statusColors = map[string]string{
	"resolved":      "green",
	"under_review":  "blue",
	"investigating": "orange",
	"pending":       "yellow",
	"rejected":      "red",
}

var priorityColors = map[string]string{
	"critical": "red",
	"high":     "orange",
	"medium":   "yellow",
	"low":      "green",
}

var statusProgress = map[models.GrievanceStatus]int{
	models.GrievancePending:     25,
	models.GrievanceUnderReview: 60,
	models.GrievanceResolved:    100,
	models.GrievanceRejected:    100,
}

const colorOther = "gray"

// ListItem is one row of the user's own grievance list.
type ListItem struct {
	Report        models.GrievanceReport `json:"report"`
	ShortID       string                 `json:"short_id"`
	StatusLabel   string                 `json:"status_label"`
	StatusColor   string                 `json:"status_color"`
	Priority      string                 `json:"priority"`
	PriorityColor string                 `json:"priority_color"`
	Progress      int                    `json:"progress"`
	Submitted     string                 `json:"submitted"`
	Updated       string                 `json:"updated"`
	Attachments   int                    `json:"attachments"`
}

func NewListItem(r models.GrievanceReport) ListItem {
	priority := config.DefaultPriority
	if r.PriorityLevel != nil && *r.PriorityLevel != "" {
		priority = *r.PriorityLevel
	}

	return ListItem{
		Report:        r,
		ShortID:       shortID(r.ID),
		StatusLabel:   lookup(statusLabels, string(r.Status), string(r.Status)),
		StatusColor:   lookup(statusColors, string(r.Status), colorOther),
		Priority:      priority,
		PriorityColor: lookup(priorityColors, priority, colorOther),
		Progress:      statusProgress[r.Status],
		Submitted:     r.CreatedAt.Format(config.SubmittedDateFmt),
		Updated:       r.UpdatedAt.Format(config.SubmittedDateFmt),
		Attachments:   len(r.EvidenceFiles),
	}
}

// BuildList renders the list in the order given, which the session keeps newest first.
func BuildList(grievances []models.GrievanceReport) []ListItem {
	items := make([]ListItem, 0, len(grievances))
	for _, r := range grievances {
		items = append(items, NewListItem(r))
	}
	return items
}

// ListView is the own-list section of the submission view.
type ListView struct {
	Items   []ListItem `json:"items"`
	Loading bool       `json:"loading"`
	Error   string     `json:"error,omitempty"`
	Empty   string     `json:"empty,omitempty"`
}

func NewListView(state reports.State, localizer *localization.Localizer, lang string) ListView {
	view := ListView{
		Items:   BuildList(state.GrievanceReports),
		Loading: state.Loading,
		Error:   state.Error,
	}
	if len(view.Items) == 0 && !view.Loading {
		view.Empty = localizer.GetString(lang, "list.empty")
	}
	return view
}

func shortID(id string) string {
	if len(id) <= config.ShortIDLength {
		return id
	}
	return id[:config.ShortIDLength]
}

func lookup(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}
