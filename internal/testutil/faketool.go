package testutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// FakeToolEnv selects the fake tool's behavior when the test binary is
// re-executed as the tool under test.
const FakeToolEnv = "LINECHECK_FAKE_TOOL"

// Fake tool modes.
const (
	// FakeEmit prints each argument on its own line. "stderr:X" prints X to
	// stderr, "exit=N" sets the exit status, "@file" prints the file.
	FakeEmit = "emit"
	// FakeSleep blocks for a minute.
	FakeSleep = "sleep"
	// FakeKill kills itself.
	FakeKill = "kill"
)

// FakeTool returns the tool path and environment that make the current test
// binary behave as a fake tool in the given mode. The package's TestMain must
// call RunFakeTool first.
func FakeTool(mode string) (tool string, env []string) {
	return os.Args[0], []string{FakeToolEnv + "=" + mode}
}

// RunFakeTool acts as the fake tool and exits if FakeToolEnv is set. It
// returns normally otherwise.
func RunFakeTool() {
	mode := os.Getenv(FakeToolEnv)
	if mode == "" {
		return
	}
	os.Exit(fakeTool(mode, os.Args[1:]))
}

func fakeTool(mode string, args []string) int {
	switch mode {
	case FakeSleep:
		time.Sleep(time.Minute)
		return 0
	case FakeKill:
		p, err := os.FindProcess(os.Getpid())
		if err == nil {
			_ = p.Kill()
		}
		time.Sleep(time.Minute)
		return 0
	}

	code := 0
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "exit="):
			n, err := strconv.Atoi(strings.TrimPrefix(a, "exit="))
			if err == nil {
				code = n
			}
		case strings.HasPrefix(a, "stderr:"):
			fmt.Fprintln(os.Stderr, strings.TrimPrefix(a, "stderr:"))
		case strings.HasPrefix(a, "@"):
			data, err := os.ReadFile(strings.TrimPrefix(a, "@"))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 127
			}
			os.Stdout.Write(data)
		default:
			fmt.Fprintln(os.Stdout, a)
		}
	}
	return code
}
