package ports

// Reporter renders a lint report as a side effect (printing, writing a file,
// handing it to another process).
type Reporter interface {
	Publish(report *Report) error
}

// ReportCache persists lint reports across runs. Keys are opaque digests
// computed by the caller; a stored report is only valid for the exact
// inputs that produced its key.
type ReportCache interface {
	// Get returns the cached report for key. Returns nil, false, nil on a miss.
	Get(key string) (*Report, bool, error)

	// Put stores a report under key, overwriting any prior entry.
	Put(key string, report *Report) error
}
