package driver

// Stage identifies a pipeline phase for progress reporting.
type Stage uint8

const (
	StageLex Stage = iota
	StageParse
	StageCheck
)

func (s Stage) String() string {
	switch s {
	case StageLex:
		return "lexing"
	case StageParse:
		return "parsing"
	case StageCheck:
		return "checking"
	}
	return "unknown"
}

// Status is the lifecycle state of one file inside a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event — сообщение о прогрессе для UI; File пустой для событий стадии.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

func emit(ch chan<- Event, ev Event) {
	if ch == nil {
		return
	}
	ch <- ev
}
