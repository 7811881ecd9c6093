package app

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
)

// micCapture opens the default microphone through a platform capture command
// and returns its raw PCM stdout: 16 kHz mono signed 16-bit little-endian.
// Closing the returned reader stops the capture process.
func micCapture(ctx context.Context, device string) (io.ReadCloser, error) {
	name, args := captureCommand(device)
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("app: capture command %q not found: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("app: capture stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("app: start capture command %q: %w", name, err)
	}

	return &captureProcess{ReadCloser: stdout, cmd: cmd}, nil
}

// captureCommand picks the capture tool for the current platform: sox's rec
// on macOS, arecord elsewhere.
func captureCommand(device string) (name string, args []string) {
	rate := strconv.Itoa(captureSampleRate)
	if runtime.GOOS == "darwin" {
		return "rec", []string{"-q", "-r", rate, "-c", "1", "-b", "16", "-e", "signed-integer", "-t", "raw", "-"}
	}
	args = []string{"-q", "-f", "S16_LE", "-r", rate, "-c", "1", "-t", "raw"}
	if device != "" {
		args = append(args, "-D", device)
	}
	return "arecord", args
}

// captureProcess couples the capture stdout with its process so Close also
// reaps the child.
type captureProcess struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (c *captureProcess) Close() error {
	err := c.ReadCloser.Close()
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
	}
	c.cmd.Wait()
	return err
}

// SilentSource returns an [AudioSource] that produces no audio and blocks
// until the context is cancelled. Used for mock runs where transcripts come
// from a scripted provider instead of the microphone.
func SilentSource() AudioSource {
	return func(ctx context.Context, _ string) (io.ReadCloser, error) {
		return &silentReader{done: ctx.Done(), closed: make(chan struct{})}, nil
	}
}

type silentReader struct {
	done      <-chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

func (r *silentReader) Read([]byte) (int, error) {
	select {
	case <-r.done:
		return 0, io.EOF
	case <-r.closed:
		return 0, io.EOF
	}
}

func (r *silentReader) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}
