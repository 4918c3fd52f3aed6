package speech

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"

	"vapajomi/internal/audio"
)

// VoskEngine implements Engine with a Vosk model.
type VoskEngine struct {
	mu           sync.Mutex
	model        *vosk.VoskModel
	recognizer   *vosk.VoskRecognizer
	alternatives int
}

// voskResult covers both output shapes: plain text, or alternatives when
// SetMaxAlternatives is in effect.
type voskResult struct {
	Text         string `json:"text"`
	Alternatives []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"alternatives"`
}

// NewVoskEngine loads the model directory.
func NewVoskEngine(modelPath string) (*VoskEngine, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("vosk model %s: %w", modelPath, err)
	}

	vosk.SetLogLevel(-1)
	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load vosk model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, audio.SampleRate)
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("create vosk recognizer: %w", err)
	}

	return &VoskEngine{model: model, recognizer: rec}, nil
}

// Name identifies the engine in logs.
func (v *VoskEngine) Name() string {
	return "vosk"
}

// Transcribe decodes samples in one pass. The model fixes the language,
// so lang is ignored.
func (v *VoskEngine) Transcribe(samples []float32, lang string, maxResults int) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer == nil {
		return nil, fmt.Errorf("vosk engine closed")
	}

	alternatives := 0
	if maxResults > 1 {
		alternatives = maxResults
	}
	if alternatives != v.alternatives {
		v.recognizer.SetMaxAlternatives(alternatives)
		v.alternatives = alternatives
	}

	v.recognizer.AcceptWaveform(toPCM16(samples))
	raw := v.recognizer.FinalResult()
	v.recognizer.Reset()

	return parseVoskResult([]byte(raw), maxResults)
}

func toPCM16(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(s*math.MaxInt16)))
	}
	return pcm
}

func parseVoskResult(raw []byte, maxResults int) ([]string, error) {
	var res voskResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("parse vosk result: %w", err)
	}

	var out []string
	add := func(text string) {
		if text = strings.TrimSpace(text); text != "" {
			out = append(out, text)
		}
	}
	if len(res.Alternatives) > 0 {
		for _, alt := range res.Alternatives {
			add(alt.Text)
		}
	} else {
		add(res.Text)
	}

	if maxResults > 0 && len(out) > maxResults {
		out = out[:maxResults]
	}
	return out, nil
}

// Close frees the recognizer and model.
func (v *VoskEngine) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.recognizer != nil {
		v.recognizer.Free()
		v.recognizer = nil
	}
	if v.model != nil {
		v.model.Free()
		v.model = nil
	}
}
