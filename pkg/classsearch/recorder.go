package classsearch

// Recorder receives the outcome of class-search requests and table cache lookups
type Recorder interface {
	ObserveRequest(kind string, ok bool)
	ObserveTableLookup(hit bool)
}

// NopRecorder drops every observation
type NopRecorder struct{}

func (NopRecorder) ObserveRequest(string, bool) {}

func (NopRecorder) ObserveTableLookup(bool) {}
