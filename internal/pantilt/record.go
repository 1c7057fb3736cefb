package pantilt

// Record is one row of run diagnostics, captured at the end of a tick.
type Record struct {
	Tick      int     `json:"tick"`
	Time      float64 `json:"time"`
	Mode      string  `json:"mode"`
	Kind      string  `json:"kind"`
	Cmd       Pair    `json:"cmd"`
	Act       Pair    `json:"act"`
	Object    Pose    `json:"object"`
	HasObject bool    `json:"has_object"`
	Tracked   int     `json:"tracked"`
}

// Observer receives every Record as it is produced.
type Observer interface {
	OnTick(r Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Record)

func (f ObserverFunc) OnTick(r Record) { f(r) }
