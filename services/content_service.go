package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"PostGenius/models"
	"PostGenius/utils"

	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.5-flash"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// ContentGenerator drafts post text and images from a topic.
type ContentGenerator interface {
	GenerateText(ctx context.Context, topic string, tone models.PostTone, cta, apiKey string) (string, error)
	GenerateImage(ctx context.Context, prompt, apiKey string) (string, error)
}

type contentModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type modelFactory func(ctx context.Context, apiKey string) (contentModel, error)

type GeminiGenerator struct {
	textModel  string
	imageModel string
	language   string
	newModel   modelFactory
}

func NewGeminiGenerator(textModel, imageModel, language string) *GeminiGenerator {
	if textModel == "" {
		textModel = DefaultTextModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	if language == "" {
		language = "Spanish"
	}
	return &GeminiGenerator{
		textModel:  textModel,
		imageModel: imageModel,
		language:   language,
		newModel:   newGeminiModel,
	}
}

func newGeminiModel(ctx context.Context, apiKey string) (contentModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (g *GeminiGenerator) GenerateText(ctx context.Context, topic string, tone models.PostTone, cta, apiKey string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(topic) == "" {
		return "", &ValidationError{Fields: map[string]error{"topic": fmt.Errorf("cannot be blank")}}
	}
	if tone == "" {
		tone = models.ToneFriendly
	}

	model, err := g.newModel(ctx, apiKey)
	if err != nil {
		return "", g.wrap("text", err)
	}
	result, err := model.GenerateContent(ctx, g.textModel, genai.Text(g.textPrompt(topic, tone, cta)), nil)
	if err != nil {
		return "", g.wrap("text", err)
	}
	if result == nil {
		return "", g.wrap("text", fmt.Errorf("empty response"))
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", g.wrap("text", fmt.Errorf("empty response"))
	}
	return text, nil
}

// GenerateImage returns the first image of the response as a data URI.
func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt, apiKey string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(prompt) == "" {
		return "", &ValidationError{Fields: map[string]error{"prompt": fmt.Errorf("cannot be blank")}}
	}

	model, err := g.newModel(ctx, apiKey)
	if err != nil {
		return "", g.wrap("image", err)
	}
	text := "A high-quality, cinematic and visually striking image for a social media post about: " + prompt
	result, err := model.GenerateContent(ctx, g.imageModel, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	})
	if err != nil {
		return "", g.wrap("image", err)
	}
	if result != nil {
		for _, cand := range result.Candidates {
			if cand == nil || cand.Content == nil {
				continue
			}
			for _, part := range cand.Content.Parts {
				if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
					return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MIMEType,
						base64.StdEncoding.EncodeToString(part.InlineData.Data)), nil
				}
			}
		}
	}
	return "", g.wrap("image", fmt.Errorf("no image in response"))
}

func (g *GeminiGenerator) textPrompt(topic string, tone models.PostTone, cta string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Act as a social media manager for a Facebook fan page that posts in %s.\n", g.language)
	b.WriteString("Write an engaging, effective post.\n\n")
	fmt.Fprintf(&b, "1. Topic: %s\n", topic)
	fmt.Fprintf(&b, "2. Tone: %s\n", tone)
	if cta = strings.TrimSpace(cta); cta != "" {
		fmt.Fprintf(&b, "3. Call to action: naturally include '%s'.\n", cta)
	}
	b.WriteString("4. Format: concise text with line breaks for readability.\n")
	fmt.Fprintf(&b, "5. Hashtags: end with 3 to 5 relevant, popular hashtags in %s.\n\n", g.language)
	b.WriteString("Return only the post text and hashtags, with no preamble or explanation.")
	return b.String()
}

func (g *GeminiGenerator) wrap(kind string, err error) error {
	utils.Errorf("[Gemini] %s generation failed: %v", kind, err)
	return fmt.Errorf("%w: could not generate %s, check the API key or try again", ErrGenerationFailed, kind)
}
