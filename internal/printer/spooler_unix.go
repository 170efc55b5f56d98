//go:build !windows

package printer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// listSystemDevices enumerates CUPS destinations via lpstat -e.
func listSystemDevices() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "lpstat", "-e").Output()
	if err != nil {
		// lpstat exits non-zero when no destinations exist; treat as empty.
		if _, ok := err.(*exec.ExitError); ok {
			return nil, nil
		}
		return nil, fmt.Errorf("lpstat -e: %w", err)
	}

	var devices []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			devices = append(devices, line)
		}
	}
	return devices, nil
}

// systemDefaultDevice asks CUPS for the default destination.
func systemDefaultDevice() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "lpstat", "-d").Output()
	if err != nil {
		return "", nil // no default configured
	}

	// Output: "system default destination: <name>" or "no system default destination"
	line := strings.TrimSpace(string(out))
	if idx := strings.LastIndex(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:]), nil
	}
	return "", nil
}

// sendRawToDevice pipes the payload to lp in raw mode. The context bounds the
// whole submit; lp returns once the job is handed to the scheduler.
func sendRawToDevice(deviceName string, payload []byte, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "lp", "-d", deviceName, "-o", "raw", "-s", "-")
	cmd.Stdin = bytes.NewReader(payload)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("lp submit timed out after %s", timeout)
		}
		return fmt.Errorf("lp: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// spoolViaFile stages the payload in a temp file and hands the file to lp.
// Best-effort secondary path, attempted once.
func spoolViaFile(deviceName string, payload []byte, timeout time.Duration) error {
	tmp, err := os.CreateTemp("", "labelrun-*.prn")
	if err != nil {
		return fmt.Errorf("creating spool file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("writing spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing spool file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "lp", "-d", deviceName, "-o", "raw", tmpName)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("spool submit timed out after %s", timeout)
		}
		return fmt.Errorf("lp (file): %w (%s)", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
