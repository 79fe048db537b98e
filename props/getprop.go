package props

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"ota-checker-go/internal"
)

const defaultGetpropTimeout = 2 * time.Second

// Getprop reads Android system properties by running the getprop tool.
type Getprop struct {
	// Binary is the getprop executable. Defaults to "getprop" on PATH.
	Binary string
	// Timeout bounds a single lookup. Defaults to 2s.
	Timeout time.Duration

	run func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Lookup returns the first line of `getprop <name>`, trimmed.
func (g *Getprop) Lookup(name string) string {
	if name == "" {
		return ""
	}

	binary := g.Binary
	if binary == "" {
		binary = "getprop"
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultGetpropTimeout
	}
	run := g.run
	if run == nil {
		run = runCommand
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := run(ctx, binary, name)
	if err != nil {
		internal.DebugPrint("getprop %s failed: %v", name, err)
		return ""
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text())
	}
	return ""
}
