// Package imagegen fetches generated images from Pollinations and stores
// them in the database under short public IDs.
package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/models"
)

const (
	defaultBaseURL = "https://image.pollinations.ai/prompt/"

	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 6
)

// NewImageID mints a short alphanumeric image ID.
func NewImageID() (string, error) {
	id, errGen := gonanoid.Generate(idAlphabet, idLength)
	if errGen != nil {
		return "", fmt.Errorf("imagegen: generate id: %w", errGen)
	}
	return id, nil
}

// Generator fetches and stores generated images.
type Generator struct {
	db         *gorm.DB
	httpClient *http.Client
	baseURL    string
}

// NewGenerator constructs a Generator. A nil httpClient gets a 60 second
// timeout default, image generation is slow.
func NewGenerator(db *gorm.DB, httpClient *http.Client) *Generator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Generator{db: db, httpClient: httpClient, baseURL: defaultBaseURL}
}

// Generate renders the prompt and stores the image under the given ID.
func (g *Generator) Generate(ctx context.Context, prompt, id string) error {
	imageURL := g.baseURL + url.PathEscape(prompt) + "?style=realistic&size=1024x1024&nologo=true"

	req, errReq := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if errReq != nil {
		return errReq
	}
	resp, errDo := g.httpClient.Do(req)
	if errDo != nil {
		return fmt.Errorf("imagegen: fetch: %w", errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("imagegen: fetch: status %s", resp.Status)
	}
	data, errRead := io.ReadAll(resp.Body)
	if errRead != nil {
		return fmt.Errorf("imagegen: read: %w", errRead)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	row := models.GeneratedImage{
		ID:          id,
		Prompt:      prompt,
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now().UTC(),
	}
	return g.db.WithContext(ctx).Create(&row).Error
}

// Load returns a stored image by ID.
func (g *Generator) Load(ctx context.Context, id string) (*models.GeneratedImage, error) {
	var row models.GeneratedImage
	if errLoad := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; errLoad != nil {
		return nil, errLoad
	}
	return &row, nil
}
