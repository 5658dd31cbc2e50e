package generator

// Part is one piece of the user-content payload sent to the model: either
// text or inlined binary data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries binary content as base64 with its mime type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// TextPart builds a text-only part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// Request is one generation call.
type Request struct {
	Instruction string  `json:"instruction"`
	Parts       []Part  `json:"parts"`
	Temperature float64 `json:"temperature"`
	// JSONSchema, when set, asks the service to constrain output to the
	// declared schema. The service may ignore it; callers must still parse
	// defensively.
	JSONSchema string `json:"jsonSchema,omitempty"`
}

type generateRequest struct {
	Model string `json:"model"`
	Request
}

type generateResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}
