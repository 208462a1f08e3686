// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

//go:build windows

package platform

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v4/process"

	"github.com/tomtom215/msmd/internal/logging"
)

// createNewProcessGroup (CREATE_NEW_PROCESS_GROUP) gives the child its own
// console process group, so a taskkill /T against the child's pid fans out
// to everything it spawned without also killing the supervisor — the
// closest POSIX process-group equivalent available without a full
// job-object wrapper.
const createNewProcessGroup = 0x00000200

type windowsBackend struct{}

func newWindowsBackend() Backend { return &windowsBackend{} }

func (b *windowsBackend) Spawn(ctx context.Context, req SpawnRequest) (*Child, error) {
	if len(req.Argv) == 0 {
		return nil, fmt.Errorf("platform: empty argv")
	}

	cmd := exec.Command(req.Argv[0], req.Argv[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Env = mergedEnviron(req.Env)
	cmd.SysProcAttr = &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stderr pipe: %w", err)
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("platform: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("platform: start: %w", err)
	}

	exited := make(chan struct{})
	var exitCode int
	var exitOK bool
	go func() {
		err := cmd.Wait()
		if err == nil {
			exitCode, exitOK = 0, true
		} else if ee, ok := err.(*exec.ExitError); ok {
			exitCode, exitOK = ee.ExitCode(), true
		} else {
			logging.Warn().Err(err).Msg("platform: wait failed, exit code unknown")
		}
		close(exited)
	}()

	return &Child{
		PID:    cmd.Process.Pid,
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  stdin,
		Exited: exited,
		ExitCode: func() (int, bool) {
			return exitCode, exitOK
		},
	}, nil
}

// SignalGraceful on Windows has no SIGTERM equivalent for a console
// process; the spec's contract here is that the lifecycle engine writes
// "stop\n" to the child's stdin first and only reaches this path for the
// grace-window fallback, so this sends a CTRL_BREAK_EVENT to the child's
// process group.
func (b *windowsBackend) SignalGraceful(pid int) error {
	d, err := syscall.LoadDLL("kernel32.dll")
	if err != nil {
		return fmt.Errorf("platform: load kernel32: %w", err)
	}
	p, err := d.FindProc("GenerateConsoleCtrlEvent")
	if err != nil {
		return fmt.Errorf("platform: find GenerateConsoleCtrlEvent: %w", err)
	}
	const ctrlBreakEvent = 1
	r, _, err := p.Call(uintptr(ctrlBreakEvent), uintptr(pid))
	if r == 0 {
		return fmt.Errorf("platform: GenerateConsoleCtrlEvent: %w", err)
	}
	return nil
}

func (b *windowsBackend) SignalForce(pid int) error {
	out, err := exec.Command("taskkill", "/PID", strconv.Itoa(pid), "/T", "/F").CombinedOutput()
	if err != nil {
		return fmt.Errorf("platform: taskkill: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// IsAlive shells out to tasklist filtered by PID: FindProcess always
// succeeds on Windows regardless of whether the pid is live, so it cannot
// be used as a liveness probe on its own.
func (b *windowsBackend) IsAlive(pid int) bool {
	out, err := exec.Command("tasklist", "/FI", fmt.Sprintf("PID eq %d", pid), "/NH").Output()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), strconv.Itoa(pid))
}

func (b *windowsBackend) ProcessStats(pid int) (float64, uint64, error) {
	p, err := gopsprocess.NewProcess(int32(pid))
	if err != nil {
		return 0, 0, fmt.Errorf("platform: process lookup: %w", err)
	}
	cpuPct, err := p.CPUPercent()
	if err != nil {
		return 0, 0, fmt.Errorf("platform: cpu percent: %w", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return cpuPct, 0, fmt.Errorf("platform: memory info: %w", err)
	}
	return cpuPct, mem.RSS, nil
}

var versionBannerRE = regexp.MustCompile(`version\s+"?(\d+)(?:\.(\d+))?(?:\.(\d+))?[^"]*"?`)

func (b *windowsBackend) DiscoverRuntimes(ctx context.Context) ([]Runtime, error) {
	candidates := map[string]struct{}{}

	if p, err := exec.LookPath("java.exe"); err == nil {
		candidates[p] = struct{}{}
	}

	matches, _ := filepath.Glob(`C:\Program Files\*\*\bin\java.exe`)
	for _, m := range matches {
		candidates[m] = struct{}{}
	}

	dataRoot, err := b.DataRoot()
	if err == nil {
		rtMatches, _ := filepath.Glob(filepath.Join(dataRoot, "runtimes", "*", "bin", "java.exe"))
		for _, m := range rtMatches {
			candidates[m] = struct{}{}
		}
	}

	var out []Runtime
	for path := range candidates {
		rt, err := probeRuntime(ctx, path)
		if err != nil {
			logging.Debug().Str("path", path).Err(err).Msg("platform: runtime probe failed")
			continue
		}
		out = append(out, rt)
	}
	return out, nil
}

func probeRuntime(ctx context.Context, path string) (Runtime, error) {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cctx, path, "-version")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	_ = cmd.Run()

	banner := stderr.String()
	m := versionBannerRE.FindStringSubmatch(banner)
	if m == nil {
		return Runtime{}, fmt.Errorf("no version token in banner: %q", banner)
	}
	major, _ := strconv.Atoi(m[1])
	if major == 1 && m[2] != "" {
		if v, err := strconv.Atoi(m[2]); err == nil {
			major = v
		}
	}

	vendor := "unknown"
	lower := strings.ToLower(banner)
	switch {
	case strings.Contains(lower, "openjdk"):
		vendor = "openjdk"
	case strings.Contains(lower, "temurin"):
		vendor = "temurin"
	case strings.Contains(lower, "hotspot"):
		vendor = "oracle"
	}

	isJDK := false
	if _, err := exec.LookPath(filepath.Join(filepath.Dir(path), "javac.exe")); err == nil {
		isJDK = true
	}

	return Runtime{Path: path, MajorVersion: major, Vendor: vendor, IsDevelopmentKit: isJDK}, nil
}

func (b *windowsBackend) FreePort(port int) (PortCheck, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err == nil {
		_ = ln.Close()
		return PortCheck{Free: true}, nil
	}

	holder := findPortHolder(port)
	return PortCheck{Free: false, HolderPID: holder}, nil
}

// findPortHolder shells out to netstat, the idiomatic Windows tool for
// this, parsing the PID column of the LISTENING line for the port.
func findPortHolder(port int) int {
	out, err := exec.Command("netstat", "-ano", "-p", "TCP").Output()
	if err != nil {
		return 0
	}
	needle := fmt.Sprintf(":%d ", port)
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, needle) || !strings.Contains(line, "LISTENING") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if pid, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			return pid
		}
	}
	return 0
}

func (b *windowsBackend) DataRoot() (string, error) {
	appdata := os.Getenv("APPDATA")
	if appdata == "" {
		return "", fmt.Errorf("platform: APPDATA is not set")
	}
	return filepath.Join(appdata, "msm"), nil
}

// IsElevated shells out to `net session`, which only succeeds for an
// elevated administrator — the standard cmd.exe idiom for this check
// without taking a dependency on golang.org/x/sys/windows token APIs.
func (b *windowsBackend) IsElevated() bool {
	err := exec.Command("net", "session").Run()
	return err == nil
}

func mergedEnviron(extra map[string]string) []string {
	base := os.Environ()
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	for k, v := range extra {
		out = append(out, k+"="+v)
	}
	return out
}
