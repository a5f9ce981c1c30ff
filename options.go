package pagetable

// Options configure a Table.
type Options[P Page[P]] struct {
	// MemoryLimitBytes caps the memory the table may hold in node storage.
	// 0 means unlimited. Pages themselves are owned by the caller and are
	// not accounted.
	MemoryLimitBytes int64

	// ReleaseFunc is invoked exactly once for every page the table lets go
	// of: a page displaced by an update is released once its retirement
	// epoch passes, and every page still installed is released by Close.
	// nil disables release callbacks.
	ReleaseFunc func(page *P)

	// MetricsCollector receives operation metrics. nil disables collection.
	MetricsCollector MetricsCollector

	// Logger receives structured operation logs. nil disables logging.
	Logger *Logger
}

func applyOptions[P Page[P]](optFns []func(*Options[P])) Options[P] {
	o := Options[P]{
		MetricsCollector: NoopMetricsCollector{},
		Logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.MetricsCollector == nil {
		o.MetricsCollector = NoopMetricsCollector{}
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	return o
}
