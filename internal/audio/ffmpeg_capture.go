// Package audio captures encoded microphone audio through ffmpeg. It owns
// the device for the process lifetime once activated: a warm-hold process
// keeps the input open between recordings so the platform cannot suspend it,
// mirroring what the capture hardware expects from a long-lived client.
package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"voxstock/internal/ports"
)

// encodingPreferences is the descending-preference list of container/codec
// pairs. The first one the local ffmpeg build supports wins for the whole
// process lifetime.
var encodingPreferences = []ports.EncodingProfile{
	{MimeType: "audio/webm;codecs=opus", Container: "webm", Codec: "libopus", FileExt: ".webm"},
	{MimeType: "audio/ogg;codecs=vorbis", Container: "ogg", Codec: "libvorbis", FileExt: ".ogg"},
	{MimeType: "audio/wav", Container: "wav", Codec: "pcm_s16le", FileExt: ".wav"},
}

const (
	probeDuration  = "0.25"
	startupGrace   = 250 * time.Millisecond
	shutdownGrace  = 1200 * time.Millisecond
	stderrSnipLen  = 400
	encoderColumns = 2
)

// FFMPEGCapture implements ports.AudioCapture on top of an ffmpeg binary.
type FFMPEGCapture struct {
	command string

	negotiateOnce sync.Once
	negotiated    ports.EncodingProfile
	negotiateErr  error
}

func NewFFMPEGCapture(command string) *FFMPEGCapture {
	if command == "" {
		command = "ffmpeg"
	}
	return &FFMPEGCapture{command: command}
}

// Activate verifies the capture device can be opened, then leaves a muted
// hold process running so the device stays warm. The returned handle must be
// closed on teardown to release the hardware.
func (c *FFMPEGCapture) Activate(ctx context.Context, cfg ports.AudioConfig) (ports.KeepAlive, error) {
	cfg = withDefaults(cfg)

	if _, err := exec.LookPath(c.command); err != nil {
		return nil, fmt.Errorf("%w: %q not found", ports.ErrRecorderUnavailable, c.command)
	}

	probe := exec.CommandContext(ctx, c.command,
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-t", probeDuration,
		"-f", "null", "-",
	)
	var stderr bytes.Buffer
	probe.Stderr = &stderr
	if err := probe.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrMicAccessDenied, snip(stderr.String()))
	}

	hold := exec.Command(c.command,
		"-nostdin", "-hide_banner", "-loglevel", "error",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-f", "null", "-",
	)
	if err := hold.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrMicAccessDenied, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- hold.Wait()
		close(waitErr)
	}()

	return &holdSession{process: hold.Process, waitErr: waitErr}, nil
}

// NegotiateEncoding probes the available encoders once and picks the first
// supported preference.
func (c *FFMPEGCapture) NegotiateEncoding() (ports.EncodingProfile, error) {
	c.negotiateOnce.Do(func() {
		out, err := exec.Command(c.command, "-hide_banner", "-encoders").Output()
		if err != nil {
			c.negotiateErr = fmt.Errorf("%w: encoder probe failed: %v", ports.ErrNoSupportedFormat, err)
			return
		}
		available := parseEncoders(out)
		for _, profile := range encodingPreferences {
			if available[profile.Codec] {
				c.negotiated = profile
				return
			}
		}
		c.negotiateErr = fmt.Errorf("%w: none of the preferred codecs is installed", ports.ErrNoSupportedFormat)
	})
	return c.negotiated, c.negotiateErr
}

// Start begins one encoded capture session writing the negotiated container
// to stdout.
func (c *FFMPEGCapture) Start(ctx context.Context, cfg ports.AudioConfig, enc ports.EncodingProfile) (ports.AudioSession, error) {
	cfg = withDefaults(cfg)

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-f", cfg.InputFormat,
		"-i", cfg.InputDevice,
		"-ac", strconv.Itoa(cfg.Channels),
		"-ar", strconv.Itoa(cfg.SampleRate),
	}
	if enc.Codec != "" {
		args = append(args, "-c:a", enc.Codec)
	}
	if enc.Container != "" {
		args = append(args, "-f", enc.Container)
	}
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, c.command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create recorder stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start recorder: %w", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
		close(waitErr)
	}()

	// The recorder failing within the grace window means the device could
	// not be opened rather than a mid-session failure.
	select {
	case err := <-waitErr:
		if err != nil {
			return nil, fmt.Errorf("recorder exited before capture started: %w: %s", err, snip(stderr.String()))
		}
		return nil, errors.New("recorder exited before capture started")
	case <-time.After(startupGrace):
	}

	return &captureSession{
		stdout:  stdout,
		stderr:  &stderr,
		process: cmd.Process,
		waitErr: waitErr,
	}, nil
}

type holdSession struct {
	process *os.Process
	waitErr <-chan error

	closeOnce sync.Once
}

func (h *holdSession) Close() error {
	h.closeOnce.Do(func() {
		if h.process != nil {
			_ = h.process.Signal(os.Interrupt)
		}
		select {
		case <-h.waitErr:
		case <-time.After(shutdownGrace):
			if h.process != nil {
				_ = h.process.Kill()
			}
			<-h.waitErr
		}
	})
	return nil
}

type captureSession struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer

	process *os.Process
	waitErr <-chan error

	stopOnce sync.Once
	stopErr  error
}

func (s *captureSession) Read(p []byte) (int, error) {
	return s.stdout.Read(p)
}

func (s *captureSession) Close() error {
	return s.Stop()
}

// Stop interrupts the recorder so it flushes and finalizes the container,
// then drains the process. An interrupt-driven exit is not an error.
func (s *captureSession) Stop() error {
	s.stopOnce.Do(func() {
		if s.process != nil {
			_ = s.process.Signal(os.Interrupt)
		}

		select {
		case err, ok := <-s.waitErr:
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		case <-time.After(shutdownGrace):
			if s.process != nil {
				_ = s.process.Kill()
			}
			err, ok := <-s.waitErr
			if ok {
				s.stopErr = normalizeStopErr(err)
			}
		}

		if closeErr := s.stdout.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) && s.stopErr == nil {
			s.stopErr = closeErr
		}

		if s.stopErr != nil && s.stderr != nil && s.stderr.Len() > 0 {
			s.stopErr = fmt.Errorf("%w: %s", s.stopErr, snip(s.stderr.String()))
		}
	})

	return s.stopErr
}

func normalizeStopErr(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return nil
	}
	return err
}

func withDefaults(cfg ports.AudioConfig) ports.AudioConfig {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	return cfg
}

// parseEncoders extracts encoder names from `ffmpeg -encoders` output.
func parseEncoders(out []byte) map[string]bool {
	available := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < encoderColumns {
			continue
		}
		// Capability flags column, then the encoder name.
		if strings.HasPrefix(fields[0], "A") {
			available[fields[1]] = true
		}
	}
	return available
}

func snip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrSnipLen {
		s = s[:stderrSnipLen]
	}
	return s
}
