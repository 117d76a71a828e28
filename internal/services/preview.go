package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/localmedia"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// LayoutRenderer produces a composed preview image for a configured
// product. The production renderer (3D texture projection) is an
// external collaborator; the local renderer composes a flat grid of
// the configured photos.
type LayoutRenderer interface {
	Render(ctx context.Context, inputs []domain.CustomizationInput) (image.Image, error)
}

type PreviewResult struct {
	PreviewURL string `json:"previewUrl"`
	Model3D    string `json:"model3d,omitempty"`
}

type PreviewService interface {
	Compose(ctx context.Context, productID uuid.UUID, inputs []domain.CustomizationInput) (PreviewResult, error)
}

type previewService struct {
	log      *logger.Logger
	itemRepo catalog.ItemRepo
	renderer LayoutRenderer
	previews localmedia.PreviewStore
}

func NewPreviewService(log *logger.Logger, itemRepo catalog.ItemRepo, renderer LayoutRenderer, previews localmedia.PreviewStore) PreviewService {
	return &previewService{
		log:      log.With("service", "PreviewService"),
		itemRepo: itemRepo,
		renderer: renderer,
		previews: previews,
	}
}

func (ps *previewService) Compose(ctx context.Context, productID uuid.UUID, inputs []domain.CustomizationInput) (PreviewResult, error) {
	products, err := ps.itemRepo.GetProductsByIDs(ctx, nil, []uuid.UUID{productID})
	if err != nil {
		return PreviewResult{}, fmt.Errorf("load product: %w", err)
	}
	if len(products) == 0 {
		return PreviewResult{}, fmt.Errorf("product %s not found", productID)
	}
	product := products[0]

	img, err := ps.renderer.Render(ctx, inputs)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("render preview: %w", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return PreviewResult{}, fmt.Errorf("encode preview: %w", err)
	}
	key, err := ps.previews.Create(ctx, buf.Bytes())
	if err != nil {
		return PreviewResult{}, fmt.Errorf("store preview: %w", err)
	}

	return PreviewResult{
		PreviewURL: ps.previews.URL(key),
		Model3D:    product.Model3DURL,
	}, nil
}

// gridRenderer is the local LayoutRenderer: it decodes every photo
// artifact in the inputs and lays them out in a square-ish grid.
type gridRenderer struct {
	log  *logger.Logger
	cell int
}

func NewGridRenderer(log *logger.Logger) LayoutRenderer {
	return &gridRenderer{log: log.With("service", "GridRenderer"), cell: 320}
}

func (gr *gridRenderer) Render(ctx context.Context, inputs []domain.CustomizationInput) (image.Image, error) {
	var photos []image.Image
	for _, input := range inputs {
		for _, artifact := range collectArtifacts(input.Data) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			raw, err := base64.StdEncoding.DecodeString(artifact.Base64Data)
			if err != nil {
				gr.log.Warn("Skipping artifact with invalid base64", "file", artifact.FileName, "error", err)
				continue
			}
			img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
			if err != nil {
				gr.log.Warn("Skipping undecodable artifact", "file", artifact.FileName, "error", err)
				continue
			}
			photos = append(photos, img)
		}
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("nothing to render")
	}

	cols := 1
	for cols*cols < len(photos) {
		cols++
	}
	rows := (len(photos) + cols - 1) / cols

	canvas := imaging.New(cols*gr.cell, rows*gr.cell, image.White)
	for i, photo := range photos {
		cell := imaging.Fill(photo, gr.cell, gr.cell, imaging.Center, imaging.Lanczos)
		x := (i % cols) * gr.cell
		y := (i / cols) * gr.cell
		canvas = imaging.Paste(canvas, cell, image.Pt(x, y))
	}
	return canvas, nil
}

func collectArtifacts(data domain.AnswerData) []domain.Artifact {
	switch a := data.(type) {
	case domain.PhotoAnswer:
		return a.Photos
	case domain.LayoutAnswer:
		return a.Images
	default:
		return nil
	}
}
