package usecase

import (
	"errors"
	"fmt"
	"io"
	"time"

	"voxstock/internal/domain"
	"voxstock/internal/ports"
)

// collectAudioChunks drains the capture session into the collector so that
// partial data exists even if the session ends abnormally. It exits when the
// recorder reports EOF after being stopped.
func collectAudioChunks(
	session ports.AudioSession,
	collector *chunkCollector,
	bufSize int,
	events ports.EventSink,
	done chan struct{},
) {
	defer close(done)

	if bufSize < 256 {
		bufSize = 4096
	}

	buf := make([]byte, bufSize)
	for {
		n, err := session.Read(buf)
		if n > 0 {
			collector.Append(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				events.SessionError(domain.ErrorCodeCapture, fmt.Sprintf("audio capture error: %v", err))
			}
			return
		}
	}
}

// emitRecordingTicks reports elapsed recording time at the chunk cadence so
// the UI can show a live counter.
func emitRecordingTicks(
	startedAt time.Time,
	interval time.Duration,
	events ports.EventSink,
	stop <-chan struct{},
	done chan struct{},
) {
	defer close(done)

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			events.RecordingTick(now.Sub(startedAt))
		}
	}
}
