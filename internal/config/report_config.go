package config

import "time"

const (
	// Evidence storage
	EvidenceBucket   = "evidence-files"
	MaxUploadSize    = 10 << 20
	MultipartMemory  = 32 << 20
	ShortIDLength    = 8
	DefaultPriority  = "medium"
	SubmittedDateFmt = "Jan 2, 2006, 03:04 PM"

	// Realtime
	ChangeChannelPrefix = "changes"
	ChangeBufferSize    = 64

	// Websocket
	WSWriteWait      = 10 * time.Second
	WSPongWait       = 60 * time.Second
	WSPingPeriod     = (WSPongWait * 9) / 10
	WSMaxMessageSize = 512
)

// AcceptedUploadExtensions is the client-side accept hint for evidence files.
var AcceptedUploadExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".jpg", ".png"}

// GrievanceCategories are the categories offered by the submission form.
var GrievanceCategories = map[string]string{
	"cybercrime": "Cybercrime",
	"fraud":      "Fraud",
	"harassment": "Online Harassment",
	"privacy":    "Privacy Violation",
	"technical":  "Technical Issue",
	"other":      "Other",
}

// PriorityLevels are the priority values offered by the submission form.
var PriorityLevels = []string{"low", "medium", "high", "critical"}
