package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainContent "github.com/imbizlab/groomflo-app/domains/content"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTextModel  = "gpt-4o"
	DefaultImageModel = "dall-e-3"
	temperature       = 0.8
	maxTokens         = 200
)

type Config struct {
	APIKey         string
	BaseURL        string
	TextModel      string
	ImageModel     string
	GenerateImages bool
	Concurrency    int
}

// Generator writes post text with a chat model and illustrates it with an image model.
type Generator struct {
	client openai.Client
	cfg    Config
}

var _ domainContent.IContentGenerator = (*Generator)(nil)

func NewGenerator(cfg Config, opts ...option.RequestOption) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai api key is not configured")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &Generator{client: openai.NewClient(clientOpts...), cfg: cfg}, nil
}

func (g *Generator) GenerateWeeklyContent(ctx context.Context, business domainBusiness.Business) ([]domainContent.GeneratedPost, error) {
	items, err := domainContent.Fill(ctx, g.cfg.Concurrency, func(ctx context.Context, postType domainPost.Type) (domainContent.GeneratedPost, error) {
		return g.generateOne(ctx, business, postType)
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"business_id": business.ID,
		"model":       g.cfg.TextModel,
		"images":      g.cfg.GenerateImages,
	}).Info("[GENERATOR] Weekly content generated with OpenAI")
	return items, nil
}

func (g *Generator) generateOne(ctx context.Context, business domainBusiness.Business, postType domainPost.Type) (domainContent.GeneratedPost, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.cfg.TextModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(domainContent.SystemPrompt(business)),
			openai.UserMessage(domainContent.UserPrompt(business, postType)),
		},
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return domainContent.GeneratedPost{}, fmt.Errorf("text generation failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return domainContent.GeneratedPost{}, errors.New("no response from openai")
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return domainContent.GeneratedPost{}, errors.New("openai returned empty content")
	}

	item := domainContent.GeneratedPost{PostType: postType, Content: text}
	if !g.cfg.GenerateImages {
		return item, nil
	}

	images, err := g.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt: domainContent.ImagePrompt(postType, text),
		Model:  openai.ImageModel(g.cfg.ImageModel),
		N:      openai.Int(1),
		Size:   openai.ImageGenerateParamsSize1024x1024,
	})
	if err != nil {
		return domainContent.GeneratedPost{}, fmt.Errorf("image generation failed: %w", err)
	}
	if len(images.Data) > 0 {
		item.ImageURL = images.Data[0].URL
	}
	return item, nil
}
