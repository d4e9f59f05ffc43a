package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncUserRegistered()    {}
func (n *NoopRecorder) IncLogin(string)       {}
func (n *NoopRecorder) IncTokenRotated()      {}
func (n *NoopRecorder) IncAuthFailure(string) {}
func (n *NoopRecorder) IncPlaceCreated()      {}
func (n *NoopRecorder) IncPlaceUpdated()      {}
func (n *NoopRecorder) IncPlaceDeleted()      {}
func (n *NoopRecorder) IncBookingCreated()    {}
func (n *NoopRecorder) IncImageStored(string) {}
