package outcome

// Error reports a failed bind attempt of one listener.
type Error struct {
	Code Code
	Msg  string
	Addr string
}

func (e *Error) Error() string {
	s := e.Msg
	if s == "" {
		s = e.Code.String()
	}
	if e.Addr != "" {
		s += " [" + e.Addr + "]"
	}
	return s
}
