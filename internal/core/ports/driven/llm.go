package driven

import "context"

// LLMService conducts chat completions. It backs both OCR (vision models
// with image attachments) and answer synthesis.
type LLMService interface {
	// Chat sends the conversation and returns the assistant reply.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string

	// Images are encoded image attachments, PNG unless MIMEType says otherwise.
	Images []ImageAttachment
}

// ImageAttachment is one encoded image sent with a chat message.
type ImageAttachment struct {
	// MIMEType is the media type, e.g. "image/png".
	MIMEType string

	// Data is the encoded image bytes.
	Data []byte
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
