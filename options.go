package holdemtable

type TableEngineCallbacks struct {
	OnTableUpdated      func(t *Table)
	OnTableErrorUpdated func(t *Table, err error)
	OnTableEventEmitted func(e TableEvent)
}

func NewTableEngineCallbacks() *TableEngineCallbacks {
	return &TableEngineCallbacks{
		OnTableUpdated:      func(*Table) {},
		OnTableErrorUpdated: func(*Table, error) {},
		OnTableEventEmitted: func(TableEvent) {},
	}
}

type TableEngineOptions struct {
	// AutoScheduleTimeouts arms internal timers that invoke HandleTimeout when
	// a phase deadline passes. Disable it when an external scheduler (a chain
	// block callback, a cron) drives HandleTimeout instead.
	AutoScheduleTimeouts bool
}

func NewTableEngineOptions() *TableEngineOptions {
	return &TableEngineOptions{
		AutoScheduleTimeouts: true,
	}
}
