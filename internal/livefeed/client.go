package livefeed

import (
	"grievancedesk/backend/internal/dashboard"
	"grievancedesk/backend/internal/reports"
	"grievancedesk/backend/internal/submission"
)

// FrameState is the only frame type pushed today: the user's full report state.
const FrameState = "state"

// Frame is one message pushed to a connected client.
type Frame struct {
	Type       string                `json:"type"`
	Reports    dashboard.View        `json:"reports"`
	Grievances []submission.ListItem `json:"grievances"`
}

// NewFrame renders both views from a session snapshot.
func NewFrame(state reports.State) Frame {
	return Frame{
		Type:       FrameState,
		Reports:    dashboard.Build(state),
		Grievances: submission.BuildList(state.GrievanceReports),
	}
}

// Client is a connection that receives frames for one user.
type Client interface {
	// GetUserID returns the user the connection was authenticated as.
	GetUserID() string
	// GetSendChannel returns the channel the hub pushes frames into.
	GetSendChannel() chan<- Frame
	// Run starts the connection's pumps.
	Run()
	// Close stops delivery. It must be safe to call more than once.
	Close()
}
