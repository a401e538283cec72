package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"briefly/internal/gemini"
)

const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Kore"

	SampleRate    = 24000
	BitsPerSample = 16
	Channels      = 1
)

var ErrNoAudio = errors.New("no audio in response")

type Synthesizer interface {
	Synthesize(ctx context.Context, apiKey string, text string) ([]byte, error)
}

// GeminiSynthesizer asks the generative endpoint for an audio answer and
// returns it as a playable WAV file.
type GeminiSynthesizer struct {
	client *gemini.Client
	model  string
	voice  string
	log    *slog.Logger
}

func NewGeminiSynthesizer(client *gemini.Client, model string, voice string, log *slog.Logger) *GeminiSynthesizer {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	voice = strings.TrimSpace(voice)
	if voice == "" {
		voice = DefaultVoice
	}

	return &GeminiSynthesizer{
		client: client,
		model:  model,
		voice:  voice,
		log:    log,
	}
}

func (s *GeminiSynthesizer) Synthesize(ctx context.Context, apiKey string, text string) ([]byte, error) {
	request := gemini.TextRequest(text)
	request.GenerationConfig = &gemini.GenerationConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &gemini.SpeechConfig{
			VoiceConfig: &gemini.VoiceConfig{
				PrebuiltVoiceConfig: &gemini.PrebuiltVoiceConfig{VoiceName: s.voice},
			},
		},
	}

	resp, err := s.client.GenerateContent(ctx, s.model, apiKey, request)
	if err != nil {
		return nil, fmt.Errorf("generate speech: %w", err)
	}

	blob := resp.FirstInlineData()
	if blob == nil || blob.Data == "" {
		return nil, ErrNoAudio
	}

	pcm, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("decode audio: %w", err)
	}

	s.log.DebugContext(ctx, "Speech is synthesized",
		"model", s.model,
		"voice", s.voice,
		"mimeType", blob.MimeType,
		"pcmBytes", len(pcm))

	return WAV(pcm, SampleRate, Channels, BitsPerSample), nil
}

// WAV prepends a canonical 44-byte RIFF header to raw little-endian PCM.
func WAV(pcm []byte, sampleRate int, channels int, bitsPerSample int) []byte {
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm))) //nolint:gosec // Bounded by audio size.
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))      //nolint:gosec // Small constant.
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))    //nolint:gosec // Small constant.
	_ = binary.Write(&buf, binary.LittleEndian, uint32(byteRate))      //nolint:gosec // Small constant.
	_ = binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))    //nolint:gosec // Small constant.
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample)) //nolint:gosec // Small constant.

	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm))) //nolint:gosec // Bounded by audio size.
	buf.Write(pcm)

	return buf.Bytes()
}
