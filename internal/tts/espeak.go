package tts

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"vapajomi/internal/ui"
)

// commander runs external programs.
type commander interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	Run(ctx context.Context, name string, args ...string) error
}

type execCommander struct{}

func (execCommander) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (execCommander) Run(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// Espeak speaks through the espeak-ng command line, one process per utterance.
type Espeak struct {
	binary string
	cmd    commander

	mu       sync.Mutex
	voices   map[string]bool
	voice    string
	queue    []string
	cancel   context.CancelFunc // current utterance
	wake     chan struct{}
	shutdown bool
	ctx      context.Context
	stopAll  context.CancelFunc
}

// NewEspeak starts the synthesizer. The voice list is read in the
// background; onInit reports whether that worked.
func NewEspeak(binary string, d ui.Dispatcher, onInit func(ok bool)) *Espeak {
	return newEspeak(binary, execCommander{}, d, onInit)
}

func newEspeak(binary string, cmd commander, d ui.Dispatcher, onInit func(ok bool)) *Espeak {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Espeak{
		binary:  binary,
		cmd:     cmd,
		wake:    make(chan struct{}, 1),
		ctx:     ctx,
		stopAll: cancel,
	}

	go func() {
		ok := e.loadVoices()
		if onInit != nil {
			d.Post(func() { onInit(ok) })
		}
		e.worker()
	}()
	return e
}

func (e *Espeak) loadVoices() bool {
	out, err := e.cmd.Output(e.ctx, e.binary, "--voices")
	if err != nil {
		log.Warn("espeak voices unavailable", "binary", e.binary, "err", err)
		return false
	}
	voices := parseVoices(out)

	e.mu.Lock()
	e.voices = voices
	e.mu.Unlock()

	log.Debug("espeak ready", "binary", e.binary, "voices", len(voices))
	return true
}

// parseVoices reads the language column of `espeak-ng --voices`.
func parseVoices(out []byte) map[string]bool {
	voices := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		voices[strings.ToLower(fields[1])] = true
	}
	return voices
}

// SetLanguage selects the voice for locale ("es-ES"), accepting the bare
// language ("es") when the regional voice is absent.
func (e *Espeak) SetLanguage(locale string) LanguageStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.voices) == 0 {
		return LanguageMissingData
	}

	tag := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
	candidates := []string{tag}
	if i := strings.Index(tag, "-"); i > 0 {
		candidates = append(candidates, tag[:i])
	}
	for _, v := range candidates {
		if e.voices[v] {
			e.voice = v
			return LanguageOK
		}
	}
	return LanguageNotSupported
}

// Speak queues text. No-op after Shutdown.
func (e *Espeak) Speak(text string, mode QueueMode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.shutdown || strings.TrimSpace(text) == "" {
		return
	}
	if mode == QueueFlush {
		e.stopLocked()
	}
	e.queue = append(e.queue, text)

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Stop interrupts the current utterance and drops pending ones.
func (e *Espeak) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

func (e *Espeak) stopLocked() {
	e.queue = nil
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Shutdown stops speaking and ends the worker.
func (e *Espeak) Shutdown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown {
		return
	}
	e.shutdown = true
	e.stopLocked()
	e.stopAll()
}

func (e *Espeak) next() (string, string, context.Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.shutdown || len(e.queue) == 0 {
		return "", "", nil, false
	}
	text := e.queue[0]
	e.queue = e.queue[1:]

	ctx, cancel := context.WithCancel(e.ctx)
	e.cancel = cancel
	return text, e.voice, ctx, true
}

func (e *Espeak) worker() {
	for {
		text, voice, ctx, ok := e.next()
		if !ok {
			select {
			case <-e.wake:
				continue
			case <-e.ctx.Done():
				return
			}
		}

		args := []string{}
		if voice != "" {
			args = append(args, "-v", voice)
		}
		args = append(args, "--", text)

		if err := e.cmd.Run(ctx, e.binary, args...); err != nil && ctx.Err() == nil {
			log.Warn("espeak failed", "err", err)
		}

		e.mu.Lock()
		if ctx.Err() == nil && e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
		e.mu.Unlock()
	}
}
