package dashboard

import "strings"

// Icon names follow the lucide icon set used by the web client.
const (
	IconClock         = "clock"
	IconAlertTriangle = "alert-triangle"
	IconCheckCircle   = "check-circle"
	IconXCircle       = "x-circle"
	IconFileText      = "file-text"
)

// Badge variants.
const (
	VariantDefault     = "default"
	VariantSecondary   = "secondary"
	VariantDestructive = "destructive"
)

// Badge is how a status is shown next to a report.
type Badge struct {
	Icon    string `json:"icon"`
	Variant string `json:"variant"`
	Label   string `json:"label"`
}

var statusBadges = map[string]Badge{
	"pending":        {IconClock, VariantSecondary, "Pending"},
	"reported":       {IconClock, VariantSecondary, "Reported"},
	"under_review":   {IconAlertTriangle, VariantDefault, "Under Review"},
	"investigating":  {IconAlertTriangle, VariantDefault, "Investigating"},
	"resolved":       {IconCheckCircle, VariantDefault, "Resolved"},
	"verified":       {IconCheckCircle, VariantDefault, "Verified"},
	"rejected":       {IconXCircle, VariantDestructive, "Rejected"},
	"false_positive": {IconXCircle, VariantDestructive, "False Positive"},
}

// StatusBadge maps a status of either report kind to its badge. Unknown
// statuses get the generic icon, the secondary variant and the raw value with
// underscores shown as spaces.
func StatusBadge(status string) Badge {
	if b, ok := statusBadges[status]; ok {
		return b
	}
	return Badge{
		Icon:    IconFileText,
		Variant: VariantSecondary,
		Label:   humanize(status),
	}
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}
