package harness

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	appErr "judgemicro/pkg/errors"
)

// outcome captures one child process run: captured streams, exit status,
// whether the deadline killed it, and resource accounting.
type outcome struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Wall     time.Duration
	UserCPU  float64
	SysCPU   float64
	MaxRSSKB int64
}

// killMargin bounds how far past its deadline a killed child's reported wall
// time may reach. SIGKILL lands as soon as the timer fires; reaping can lag,
// so the measurement is clamped.
const killMargin = 500 * time.Millisecond

// runCommand runs one child under a wall deadline. The child gets its own
// process group so a deadline kill takes its descendants with it.
func runCommand(ctx context.Context, dir string, timeout time.Duration, name string, args ...string) (outcome, error) {
	var out outcome
	var stdout, stderr bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return out, appErr.Wrapf(err, appErr.HarnessInternal, "start %s", name)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		out.TimedOut = true
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-done
	case <-ctx.Done():
		_ = unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		<-done
		return out, ctx.Err()
	}

	out.Wall = time.Since(start)
	if out.TimedOut && out.Wall > timeout+killMargin {
		out.Wall = timeout + killMargin
	}
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()
	out.ExitCode = cmd.ProcessState.ExitCode()

	if ru, ok := cmd.ProcessState.SysUsage().(*syscall.Rusage); ok && ru != nil {
		out.UserCPU = timevalSeconds(ru.Utime)
		out.SysCPU = timevalSeconds(ru.Stime)
		out.MaxRSSKB = int64(ru.Maxrss)
	}
	return out, nil
}

func timevalSeconds(tv syscall.Timeval) float64 {
	return float64(tv.Sec) + float64(tv.Usec)/1e6
}
