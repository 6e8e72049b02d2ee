package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainContent "github.com/imbizlab/groomflo-app/domains/content"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	DefaultTextModel  = "gemini-2.0-flash"
	DefaultImageModel = "imagen-3.0-generate-002"
)

type Config struct {
	APIKey         string
	TextModel      string
	ImageModel     string
	GenerateImages bool
	Concurrency    int
}

// models is the part of genai.Models the generator uses.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Generator is the Gemini/Imagen content provider. Imagen returns raw bytes,
// which are stored locally and referenced by public URL.
type Generator struct {
	models models
	store  ImageStore
	cfg    Config
}

var _ domainContent.IContentGenerator = (*Generator)(nil)

func NewGenerator(ctx context.Context, cfg Config, store ImageStore) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return newGenerator(client.Models, cfg, store), nil
}

func newGenerator(m models, cfg Config, store ImageStore) *Generator {
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	return &Generator{models: m, store: store, cfg: cfg}
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
	}).Info("[GENERATOR] Weekly content generated with Gemini")
	return items, nil
}

func (g *Generator) generateOne(ctx context.Context, business domainBusiness.Business, postType domainPost.Type) (domainContent.GeneratedPost, error) {
	resp, err := g.models.GenerateContent(ctx, g.cfg.TextModel,
		genai.Text(domainContent.UserPrompt(business, postType)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(domainContent.SystemPrompt(business), genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.8),
			MaxOutputTokens:   200,
		})
	if err != nil {
		return domainContent.GeneratedPost{}, fmt.Errorf("text generation failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return domainContent.GeneratedPost{}, errors.New("gemini returned empty content")
	}

	item := domainContent.GeneratedPost{PostType: postType, Content: text}
	if !g.cfg.GenerateImages {
		return item, nil
	}

	imgResp, err := g.models.GenerateImages(ctx, g.cfg.ImageModel, domainContent.ImagePrompt(postType, text), &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
	})
	if err != nil {
		return domainContent.GeneratedPost{}, fmt.Errorf("image generation failed: %w", err)
	}
	if len(imgResp.GeneratedImages) == 0 || imgResp.GeneratedImages[0].Image == nil {
		return item, nil
	}
	url, err := g.store.Save(imgResp.GeneratedImages[0].Image.ImageBytes)
	if err != nil {
		return domainContent.GeneratedPost{}, err
	}
	item.ImageURL = url
	return item, nil
}
