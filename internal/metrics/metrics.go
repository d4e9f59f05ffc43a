// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Login outcomes.
const (
	LoginSuccess       = "success"
	LoginUnknownUser   = "unknown_user"
	LoginWrongPassword = "wrong_password"
)

// Image sources.
const (
	ImageFromLink   = "link"
	ImageFromUpload = "upload"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Session metrics
	IncUserRegistered()
	IncLogin(status string)
	IncTokenRotated()
	IncAuthFailure(reason string)

	// Listing and booking metrics
	IncPlaceCreated()
	IncPlaceUpdated()
	IncPlaceDeleted()
	IncBookingCreated()

	// Image metrics
	IncImageStored(source string)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
