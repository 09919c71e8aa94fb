package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/localloop/classifieds-service/internal/platform/logger"
)

// PlaceholderImageURL is returned when image generation fails or produces no
// image; the listing flow proceeds with it instead of failing.
const PlaceholderImageURL = "https://placehold.co/600x400.png"

const suggestTagsPrompt = `You are a helpful assistant that suggests relevant tags for a classifieds post based on its title and description.

The tags should be relevant to the content of the post and should help users find the post when searching for similar items.

Title: %s
Description: %s

Suggest at least 5 tags, but no more than 10. The tags should be general, not specific (e.g. "electronics" instead of "used iPhone 12"). Do not include tags that are the same as words in the title.
Do not include hashtags or any special characters. Return only a JSON array of strings.`

const generateImagePrompt = `Generate a realistic, high-quality, professional photograph of the following item or concept for a local classifieds website: %s. The image should be well-lit, in focus, and look appealing to potential buyers. Do not include any text or logos in the image.`

// Gemini calls Vertex AI for tag suggestion and listing photo generation.
// Both are best-effort at every call site.
type Gemini struct {
	client     *genai.Client
	model      string
	imageModel string
	logger     *logger.Logger
}

func NewGemini(ctx context.Context, projectID, location, model string, log *logger.Logger) (*Gemini, error) {
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is empty")
	}
	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient creation failed: %w", err)
	}
	return &Gemini{
		client:     client,
		model:      model,
		imageModel: "gemini-2.0-flash-preview-image-generation",
		logger:     log,
	}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// SuggestTags asks the model for 5-10 general, punctuation-free tags that do
// not repeat words from the title.
func (g *Gemini) SuggestTags(ctx context.Context, title, description string) ([]string, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(suggestTagsPrompt, title, description)))
	if err != nil {
		return nil, fmt.Errorf("tag suggestion failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("tag suggestion returned no candidates")
	}

	tags := parseTags(text, title)
	if len(tags) == 0 {
		return nil, fmt.Errorf("tag suggestion returned no usable tags")
	}
	g.logger.Debug("Gemini.SuggestTags: suggested tags", "title", title, "count", len(tags))
	return tags, nil
}

// GenerateImage produces a placeholder product photo for a title and returns
// it as a data URI. Any failure degrades to a fixed placeholder URL.
func (g *Gemini) GenerateImage(ctx context.Context, title string) (string, error) {
	model := g.client.GenerativeModel(g.imageModel)
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf(generateImagePrompt, title)))
	if err != nil {
		g.logger.Warn("Gemini.GenerateImage: generation failed, using placeholder", "title", title, "error", err.Error())
		return PlaceholderImageURL, nil
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
				return fmt.Sprintf("data:%s;base64,%s", blob.MIMEType, base64.StdEncoding.EncodeToString(blob.Data)), nil
			}
		}
	}

	g.logger.Warn("Gemini.GenerateImage: response carried no image, using placeholder", "title", title)
	return PlaceholderImageURL, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// parseTags extracts tags from the model output. It prefers a JSON array and
// falls back to line/comma splitting, then strips hashes, drops duplicates
// and tags that repeat a title word, and caps the result at ten.
func parseTags(text, title string) []string {
	var raw []string
	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
			raw = nil
		}
	}
	if raw == nil {
		raw = strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == ',' })
	}

	titleWords := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		titleWords[w] = struct{}{}
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, t := range raw {
		t = strings.TrimSpace(strings.Trim(strings.TrimSpace(t), `"#-*`))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		if _, inTitle := titleWords[key]; inTitle {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, t)
		if len(tags) == 10 {
			break
		}
	}
	return tags
}
