package speech_test

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"briefly/internal/gemini"
	"briefly/internal/speech"
)

type blockingSynth struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func newBlockingSynth() *blockingSynth {
	return &blockingSynth{
		started: make(chan struct{}, 4),
		release: make(chan struct{}),
	}
}

func (s *blockingSynth) Synthesize(ctx context.Context, _ string, text string) ([]byte, error) {
	s.calls.Add(1)
	s.started <- struct{}{}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.release:
		return []byte(text), nil
	}
}

func TestControllerToggleIgnoresBlankText(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())

	state := c.Toggle(context.Background(), 1, "key", "  \n", func(context.Context, []byte) error {
		t.Fatalf("deliver must not be called")
		return nil
	})
	if state != speech.StateIdle || c.State(1) != speech.StateIdle {
		t.Fatalf("expected idle, got %s", state)
	}
	if synth.calls.Load() != 0 {
		t.Fatalf("expected no synthesis")
	}
}

func TestControllerToggleStopsSpeaking(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())

	var delivered atomic.Bool
	deliver := func(context.Context, []byte) error {
		delivered.Store(true)
		return nil
	}

	if state := c.Toggle(context.Background(), 1, "key", "Summary", deliver); state != speech.StateSpeaking {
		t.Fatalf("expected speaking, got %s", state)
	}
	<-synth.started

	if state := c.Toggle(context.Background(), 1, "key", "Summary", deliver); state != speech.StateIdle {
		t.Fatalf("expected idle after second toggle, got %s", state)
	}

	c.Wait()

	if delivered.Load() {
		t.Fatalf("stopped speech must not be delivered")
	}
	if synth.calls.Load() != 1 {
		t.Fatalf("expected one synthesis, got %d", synth.calls.Load())
	}
}

func TestControllerCompletionReturnsToIdle(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())

	got := make(chan []byte, 1)
	c.Toggle(context.Background(), 1, "key", "Summary", func(_ context.Context, audio []byte) error {
		got <- audio
		return nil
	})
	<-synth.started

	if c.State(1) != speech.StateSpeaking {
		t.Fatalf("expected speaking while synthesizing")
	}

	close(synth.release)
	c.Wait()

	select {
	case audio := <-got:
		if string(audio) != "Summary" {
			t.Fatalf("unexpected audio %q", audio)
		}
	case <-time.After(time.Second):
		t.Fatalf("audio was not delivered")
	}

	if c.State(1) != speech.StateIdle {
		t.Fatalf("expected idle after completion")
	}
}

func TestControllerStopIsIdempotent(t *testing.T) {
	c := speech.NewController(newBlockingSynth(), slog.Default())

	if c.Stop(1) {
		t.Fatalf("expected nothing to stop")
	}
	if c.Stop(1) {
		t.Fatalf("expected nothing to stop on repeat")
	}
}

func TestControllerChatsAreIndependent(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())
	noop := func(context.Context, []byte) error { return nil }

	c.Toggle(context.Background(), 1, "key", "One", noop)
	c.Toggle(context.Background(), 2, "key", "Two", noop)
	<-synth.started
	<-synth.started

	if !c.Stop(1) {
		t.Fatalf("expected chat 1 to be stopped")
	}
	if c.State(2) != speech.StateSpeaking {
		t.Fatalf("expected chat 2 to keep speaking")
	}

	c.Stop(2)
	c.Wait()
}

func TestWAVHeader(t *testing.T) {
	pcm := []byte{1, 2, 3, 4}
	wav := speech.WAV(pcm, speech.SampleRate, speech.Channels, speech.BitsPerSample)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("unexpected length %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("unexpected chunk ids")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != speech.SampleRate {
		t.Fatalf("unexpected sample rate %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[28:32]); got != speech.SampleRate*2 {
		t.Fatalf("unexpected byte rate %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Fatalf("unexpected data size %d", got)
	}
}

func TestGeminiSynthesizer(t *testing.T) {
	pcm := []byte{0, 1, 0, 2}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/tts-model:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)

		var req gemini.GenerateContentRequest
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.GenerationConfig == nil || len(req.GenerationConfig.ResponseModalities) != 1 ||
			req.GenerationConfig.ResponseModalities[0] != "AUDIO" {
			t.Errorf("expected audio modality, got %s", body)
		}
		if req.GenerationConfig != nil && req.GenerationConfig.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != "Puck" {
			t.Errorf("unexpected voice in %s", body)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{
					"inlineData": map[string]any{
						"mimeType": "audio/L16;codec=pcm;rate=24000",
						"data":     base64.StdEncoding.EncodeToString(pcm),
					},
				}}},
			}},
		})
	}))
	defer srv.Close()

	client := gemini.NewClient(srv.URL, srv.Client(), slog.Default())
	s := speech.NewGeminiSynthesizer(client, "tts-model", "Puck", slog.Default())

	wav, err := s.Synthesize(context.Background(), "key", "Hello")
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if string(wav[:4]) != "RIFF" || string(wav[44:]) != string(pcm) {
		t.Fatalf("unexpected wav %v", wav)
	}
}

func TestGeminiSynthesizerNoAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	}))
	defer srv.Close()

	client := gemini.NewClient(srv.URL, srv.Client(), slog.Default())
	s := speech.NewGeminiSynthesizer(client, "", "", slog.Default())

	if _, err := s.Synthesize(context.Background(), "key", "Hello"); !errors.Is(err, speech.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}

func TestControllerOnIdleOnlyAfterNaturalEnd(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())

	idle := make(chan int64, 2)
	c.OnIdle(func(_ context.Context, chatID int64) {
		idle <- chatID
	})

	noop := func(context.Context, []byte) error { return nil }

	c.Toggle(context.Background(), 1, "key", "Stopped", noop)
	<-synth.started
	c.Stop(1)
	c.Wait()

	c.Toggle(context.Background(), 2, "key", "Finished", noop)
	<-synth.started
	close(synth.release)
	c.Wait()

	if len(idle) != 1 {
		t.Fatalf("expected one idle notification, got %d", len(idle))
	}
	if chatID := <-idle; chatID != 2 {
		t.Fatalf("unexpected idle chat %d", chatID)
	}
}

func TestControllerStopAll(t *testing.T) {
	synth := newBlockingSynth()
	c := speech.NewController(synth, slog.Default())
	noop := func(context.Context, []byte) error { return nil }

	c.Toggle(context.Background(), 1, "key", "One", noop)
	c.Toggle(context.Background(), 2, "key", "Two", noop)
	<-synth.started
	<-synth.started

	c.StopAll()

	if c.State(1) != speech.StateIdle || c.State(2) != speech.StateIdle {
		t.Fatalf("expected all chats idle")
	}
}
