package gemini

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/disintegration/imaging"
	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainContent "github.com/imbizlab/groomflo-app/domains/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	mu        sync.Mutex
	prompts   []string
	imageData []byte
	textErr   error
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.textErr != nil {
		return nil, f.textErr
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, contents[0].Parts[0].Text)
	f.mu.Unlock()
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: " A groomed pup is a happy pup. "}}},
		}},
	}, nil
}

func (f *fakeModels) GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: f.imageData}}},
	}, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestGenerateWeeklyContent_StoresImages(t *testing.T) {
	dir := t.TempDir()
	fake := &fakeModels{imageData: pngBytes(t, 64, 64)}
	g := newGenerator(fake, Config{GenerateImages: true, Concurrency: 2}, ImageStore{Dir: dir, PublicURL: "https://app.example/statics/images/"})

	b := domainBusiness.Business{BusinessName: "Pampered Paws", CustomPromptPromotional: "Book a bath this week"}
	items, err := g.GenerateWeeklyContent(context.Background(), b)
	require.NoError(t, err)
	require.NoError(t, domainContent.ValidateMix(items))

	for _, it := range items {
		assert.Equal(t, "A groomed pup is a happy pup.", it.Content)
		require.True(t, strings.HasPrefix(it.ImageURL, "https://app.example/statics/images/"))
		name := strings.TrimPrefix(it.ImageURL, "https://app.example/statics/images/")
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
	assert.Contains(t, fake.prompts, "Book a bath this week")
}

func TestGenerateWeeklyContent_TextErrorAborts(t *testing.T) {
	fake := &fakeModels{textErr: errors.New("quota")}
	g := newGenerator(fake, Config{}, ImageStore{Dir: t.TempDir()})

	_, err := g.GenerateWeeklyContent(context.Background(), domainBusiness.Business{BusinessName: "A"})
	assert.Error(t, err)
}

func TestImageStore_FitsLargeImages(t *testing.T) {
	dir := t.TempDir()
	url, err := ImageStore{Dir: dir, PublicURL: "http://x"}.Save(pngBytes(t, 2000, 1000))
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(dir, strings.TrimPrefix(url, "http://x/")))
	require.NoError(t, err)
	assert.Equal(t, 1080, img.Bounds().Dx())
	assert.Equal(t, 540, img.Bounds().Dy())
}

func TestImageStore_RejectsGarbage(t *testing.T) {
	_, err := ImageStore{Dir: t.TempDir()}.Save([]byte("not an image"))
	assert.Error(t, err)
}

func TestNewGenerator_RequiresKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), Config{}, ImageStore{})
	assert.Error(t, err)
}
