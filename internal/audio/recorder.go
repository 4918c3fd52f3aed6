// Package audio captures microphone input through PortAudio.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is what the speech models expect.
	SampleRate = 16000
	// Channels is mono.
	Channels = 1
	// FramesPerBuffer is the PortAudio read size.
	FramesPerBuffer = 1024
	// MinSamples pads very short captures to 200ms so the decoder has
	// something to work with.
	MinSamples = SampleRate / 5
	// MaxSeconds bounds the capture buffer.
	MaxSeconds = 30
)

// ErrNoInputDevice is returned when the host has no microphone.
var ErrNoInputDevice = errors.New("no audio input device")

// Recorder captures 16 kHz mono float32 samples.
type Recorder struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	buffer  []float32
	samples []float32
	running bool
	done    chan struct{}
}

// New initializes PortAudio. Close must be called to release it.
func New() (*Recorder, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("init portaudio: %w", err)
	}
	return &Recorder{buffer: make([]float32, FramesPerBuffer)}, nil
}

// HasInputDevice reports whether a default input device exists.
func (r *Recorder) HasInputDevice() bool {
	dev, err := portaudio.DefaultInputDevice()
	return err == nil && dev != nil && dev.MaxInputChannels > 0
}

// Start opens the default input stream. Calling Start while recording is a no-op.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	if !r.HasInputDevice() {
		return ErrNoInputDevice
	}

	stream, err := portaudio.OpenDefaultStream(Channels, 0, SampleRate, FramesPerBuffer, r.buffer)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("start stream: %w", err)
	}

	r.samples = make([]float32, 0, SampleRate*MaxSeconds)
	r.done = make(chan struct{})
	r.stream = stream
	r.running = true

	go r.readLoop(stream, r.done)
	return nil
}

func (r *Recorder) readLoop(stream *portaudio.Stream, done chan struct{}) {
	defer close(done)

	for r.IsRecording() {
		available, err := stream.AvailableToRead()
		if err != nil || available == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if err := stream.Read(); err != nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		r.mu.Lock()
		if r.running && len(r.samples) < SampleRate*MaxSeconds {
			r.samples = append(r.samples, r.buffer...)
		}
		r.mu.Unlock()
	}
}

// Stop ends the capture and returns everything recorded, padded with
// silence up to MinSamples. Returns nil when not recording.
func (r *Recorder) Stop() []float32 {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	stream := r.stream
	r.stream = nil
	samples := r.samples
	r.samples = nil
	done := r.done
	r.mu.Unlock()

	// readLoop checks running every 10ms.
	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
	}

	if stream != nil {
		stream.Stop()
		stream.Close()
	}

	return Pad(samples, MinSamples)
}

// Samples returns a copy of the samples captured so far.
func (r *Recorder) Samples() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || len(r.samples) == 0 {
		return nil
	}
	out := make([]float32, len(r.samples))
	copy(out, r.samples)
	return out
}

// IsRecording reports whether a capture is in progress.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Close stops any capture and terminates PortAudio.
func (r *Recorder) Close() {
	r.Stop()
	portaudio.Terminate()
}
