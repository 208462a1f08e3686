// msmd - a local supervisor for long-running Minecraft server processes
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/msmd

//go:build !windows

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
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	gopsprocess "github.com/shirou/gopsutil/v4/process"

	"github.com/tomtom215/msmd/internal/logging"
)

type unixBackend struct{}

func newUnixBackend() Backend { return &unixBackend{} }

func (b *unixBackend) Spawn(ctx context.Context, req SpawnRequest) (*Child, error) {
	if len(req.Argv) == 0 {
		return nil, fmt.Errorf("platform: empty argv")
	}

	cmd := exec.Command(req.Argv[0], req.Argv[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Env = mergedEnviron(req.Env)

	// New process group so a single signal-graceful/signal-force reaches
	// the child and anything it forked, and so the child is detached from
	// our controlling terminal.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

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

func (b *unixBackend) SignalGraceful(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}

func (b *unixBackend) SignalForce(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}

func (b *unixBackend) IsAlive(pid int) bool {
	// Signal 0 performs no-op error checking without delivering a signal;
	// it must not block.
	err := syscall.Kill(pid, 0)
	return err == nil
}

func (b *unixBackend) ProcessStats(pid int) (float64, uint64, error) {
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

func (b *unixBackend) DiscoverRuntimes(ctx context.Context) ([]Runtime, error) {
	candidates := map[string]struct{}{}

	if p, err := exec.LookPath("java"); err == nil {
		candidates[p] = struct{}{}
	}

	globs := []string{
		"/usr/lib/jvm/*/bin/java",
		"/Library/Java/JavaVirtualMachines/*/Contents/Home/bin/java",
		"/opt/java/*/bin/java",
	}
	for _, g := range globs {
		matches, _ := filepath.Glob(g)
		for _, m := range matches {
			candidates[m] = struct{}{}
		}
	}

	dataRoot, err := b.DataRoot()
	if err == nil {
		matches, _ := filepath.Glob(filepath.Join(dataRoot, "runtimes", "*", "bin", "java"))
		for _, m := range matches {
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
	_ = cmd.Run() // java -version prints to stderr and exits 0; ignore run error, parse below

	banner := stderr.String()
	m := versionBannerRE.FindStringSubmatch(banner)
	if m == nil {
		return Runtime{}, fmt.Errorf("no version token in banner: %q", banner)
	}
	major, _ := strconv.Atoi(m[1])
	// Legacy "1.8.0" style banners report the real major version in the
	// second component.
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
	case strings.Contains(lower, "hotspot"), strings.Contains(lower, "java(tm)"):
		vendor = "oracle"
	}

	isJDK := false
	if _, err := exec.LookPath(filepath.Join(filepath.Dir(path), "javac")); err == nil {
		isJDK = true
	}

	return Runtime{Path: path, MajorVersion: major, Vendor: vendor, IsDevelopmentKit: isJDK}, nil
}

func (b *unixBackend) FreePort(port int) (PortCheck, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err == nil {
		_ = ln.Close()
		return PortCheck{Free: true}, nil
	}

	holder := findPortHolder(port)
	return PortCheck{Free: false, HolderPID: holder}, nil
}

// findPortHolder asks `lsof` for the PID listening on port and returns 0
// when lsof is missing or names no holder; absence of a holder is not an
// error — the port may simply be held by a process owned by another user.
func findPortHolder(port int) int {
	out, err := exec.Command("lsof", "-t", "-i", fmt.Sprintf("TCP:%d", port), "-sTCP:LISTEN").Output()
	if err != nil {
		return 0
	}
	sc := bufio.NewScanner(strings.NewReader(string(out)))
	if sc.Scan() {
		if pid, err := strconv.Atoi(strings.TrimSpace(sc.Text())); err == nil {
			return pid
		}
	}
	return 0
}

func (b *unixBackend) DataRoot() (string, error) {
	if runtime.GOOS == "darwin" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("platform: home dir: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "msm"), nil
	}

	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "msm"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("platform: home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "msm"), nil
}

func (b *unixBackend) IsElevated() bool {
	return os.Geteuid() == 0
}

// mergedEnviron returns the supervisor's own environment with extra
// overlaid on top. An empty or nil extra must never strip PATH/JAVA_HOME:
// this always starts from os.Environ().
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
