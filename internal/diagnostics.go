package internal

// Diagnostics forwards comparator events to the debug log. Errors are logged
// with their cause. It satisfies version.Diagnostics.
type Diagnostics struct {
	// Prefix is prepended to every message, e.g. the profile name.
	Prefix string
}

func (d Diagnostics) Info(msg string) {
	DebugPrint("%s%s", d.prefix(), msg)
}

func (d Diagnostics) Error(msg string, err error) {
	if err == nil {
		DebugPrint("%s%s", d.prefix(), msg)
		return
	}
	DebugPrint("%s%s: %v", d.prefix(), msg, err)
}

func (d Diagnostics) prefix() string {
	if d.Prefix == "" {
		return ""
	}
	return "[" + d.Prefix + "] "
}
