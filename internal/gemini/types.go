package gemini

type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob carries base64-encoded binary output such as synthesized audio.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type PrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type VoiceConfig struct {
	PrebuiltVoiceConfig *PrebuiltVoiceConfig `json:"prebuiltVoiceConfig,omitempty"`
}

type SpeechConfig struct {
	VoiceConfig *VoiceConfig `json:"voiceConfig,omitempty"`
}

type GenerationConfig struct {
	Temperature        *float64      `json:"temperature,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *SpeechConfig `json:"speechConfig,omitempty"`
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content Content `json:"content"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TextRequest wraps a single prompt into the nested contents/parts schema.
func TextRequest(prompt string) *GenerateContentRequest {
	return &GenerateContentRequest{
		Contents: []Content{
			{Parts: []Part{{Text: prompt}}},
		},
	}
}

func Float(v float64) *float64 {
	return &v
}

// FirstText returns the first candidate's first text part or "".
func (r *GenerateContentResponse) FirstText() string {
	part := r.firstPart()
	if part == nil {
		return ""
	}

	return part.Text
}

func (r *GenerateContentResponse) FirstInlineData() *Blob {
	part := r.firstPart()
	if part == nil {
		return nil
	}

	return part.InlineData
}

func (r *GenerateContentResponse) firstPart() *Part {
	if r == nil || len(r.Candidates) == 0 {
		return nil
	}

	parts := r.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return nil
	}

	return &parts[0]
}
