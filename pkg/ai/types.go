package ai

import "context"

// CaptionInput contains the metadata available for caption generation.
type CaptionInput struct {
	Title        string
	MimeType     string
	CategoryName string
	Tags         []string
}

// CaptionResult is the structured suggestion returned by the model.
type CaptionResult struct {
	Caption string `json:"caption"`
	Model   string `json:"model"`
}

// Captioner describes a model capable of proposing image captions.
type Captioner interface {
	Suggest(ctx context.Context, input CaptionInput) (CaptionResult, error)
}
