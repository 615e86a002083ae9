package usecase

import (
	"sync"
	"time"

	"voxstock/internal/domain"
	"voxstock/internal/ports"
)

// captureSession is the transient state of one recording attempt. It is
// created per attempt and never reused.
type captureSession struct {
	session   ports.AudioSession
	encoding  ports.EncodingProfile
	chunks    *chunkCollector
	startedAt time.Time

	readDone  chan struct{}
	tickStop  chan struct{}
	ticksDone chan struct{}
}

func newCaptureSession(session ports.AudioSession, encoding ports.EncodingProfile) *captureSession {
	return &captureSession{
		session:   session,
		encoding:  encoding,
		chunks:    newChunkCollector(),
		startedAt: time.Now(),
		readDone:  make(chan struct{}),
		tickStop:  make(chan struct{}),
		ticksDone: make(chan struct{}),
	}
}

// drain stops the tick emitter, finalizes the recorder and waits for the
// chunk pump to flush the last fragment.
func (s *captureSession) drain() error {
	close(s.tickStop)
	err := s.session.Stop()
	<-s.readDone
	<-s.ticksDone
	return err
}

// chunkCollector accumulates the ordered audio fragments of one recording.
type chunkCollector struct {
	mu     sync.Mutex
	chunks [][]byte
	size   int
}

func newChunkCollector() *chunkCollector {
	return &chunkCollector{}
}

func (c *chunkCollector) Append(fragment []byte) {
	if len(fragment) == 0 {
		return
	}
	copied := append([]byte(nil), fragment...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.chunks = append(c.chunks, copied)
	c.size += len(copied)
}

func (c *chunkCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks)
}

func (c *chunkCollector) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Assemble concatenates all fragments, in order, into one upload-ready blob
// tagged with the session's negotiated encoding.
func (c *chunkCollector) Assemble(enc ports.EncodingProfile) domain.AudioBlob {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := make([]byte, 0, c.size)
	for _, chunk := range c.chunks {
		data = append(data, chunk...)
	}
	return domain.AudioBlob{
		Data:     data,
		MimeType: enc.MimeType,
		FileName: "command" + enc.FileExt,
	}
}
