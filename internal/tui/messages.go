package tui

// savedMsg reports the outcome of a save.
type savedMsg struct {
	err     error
	changed int
}

// statusLevel is the severity of the status line.
type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)
