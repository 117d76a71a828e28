package services

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"

	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/localmedia"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// UploadFile is one raw uploaded image as received from the transport
// layer.
type UploadFile struct {
	Name string
	Data []byte
}

// ArtifactService converts raw image files into persisted artifact
// descriptors and maintains photo lists: clamping to a rule's
// maxItems, re-indexing positions and keeping every artifact's
// base64/preview pair consistent with its position.
type ArtifactService interface {
	ToArtifact(ctx context.Context, file UploadFile) (domain.Artifact, error)
	// AttachPhotos unions incoming files into the session's photo
	// answer for the rule, clamped to maxItems (overflow silently
	// dropped), and applies the result only if the session is still
	// on the generation the call started under.
	AttachPhotos(ctx context.Context, session *Session, ruleID string, maxItems int, incoming []UploadFile) (domain.PhotoAnswer, error)
	// RemovePhoto drops the photo at the given position and
	// re-indexes the remainder.
	RemovePhoto(ctx context.Context, session *Session, ruleID string, position int) (domain.PhotoAnswer, error)
	// SaveAnswer replaces the answer for the input's rule, keeping
	// ownership of every preview the payload still references. Only
	// previews absent from the new answer are released.
	SaveAnswer(ctx context.Context, session *Session, input domain.CustomizationInput) error
}

type artifactService struct {
	log      *logger.Logger
	previews localmedia.PreviewStore

	maxBytes int64
}

func NewArtifactService(log *logger.Logger, previews localmedia.PreviewStore, maxBytes int64) ArtifactService {
	return &artifactService{
		log:      log.With("service", "ArtifactService"),
		previews: previews,
		maxBytes: maxBytes,
	}
}

func (as *artifactService) ToArtifact(ctx context.Context, file UploadFile) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, err
	}
	if len(file.Data) == 0 {
		return domain.Artifact{}, fmt.Errorf("file %q is empty", file.Name)
	}
	if as.maxBytes > 0 && int64(len(file.Data)) > as.maxBytes {
		return domain.Artifact{}, fmt.Errorf("file %q exceeds %d bytes", file.Name, as.maxBytes)
	}

	mime := mimetype.Detect(file.Data)
	if !isImageMime(mime.String()) {
		return domain.Artifact{}, fmt.Errorf("file %q is not an image (%s)", file.Name, mime.String())
	}

	return domain.Artifact{
		FileName:   file.Name,
		MimeType:   mime.String(),
		Base64Data: base64.StdEncoding.EncodeToString(file.Data),
		Size:       int64(len(file.Data)),
	}, nil
}

func (as *artifactService) AttachPhotos(ctx context.Context, session *Session, ruleID string, maxItems int, incoming []UploadFile) (domain.PhotoAnswer, error) {
	generation := session.Generation()

	current := currentPhotos(session, ruleID)

	type newEntry struct {
		artifact domain.Artifact
		key      string
		ok       bool
	}
	created := make([]newEntry, len(incoming))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, file := range incoming {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			artifact, err := as.ToArtifact(gctx, file)
			if err != nil {
				// One bad file never fails the batch.
				as.log.Warn("Skipping artifact", "file", file.Name, "error", err)
				return nil
			}
			key, err := as.previews.Create(gctx, file.Data)
			if err != nil {
				as.log.Warn("Skipping artifact, preview failed", "file", file.Name, "error", err)
				return nil
			}
			artifact.PreviewURL = as.previews.URL(key)
			created[i] = newEntry{artifact: artifact, key: key, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, e := range created {
			if e.ok {
				_ = as.previews.Release(e.key)
			}
		}
		return domain.PhotoAnswer{}, err
	}

	working := make([]domain.Artifact, 0, len(current)+len(created))
	working = append(working, current...)
	for _, e := range created {
		if e.ok {
			working = append(working, e.artifact)
		}
	}

	// Clamp: excess is ignored, never an error. Previews already
	// created for clamped-off entries are released right away.
	if maxItems > 0 && len(working) > maxItems {
		for _, dropped := range working[maxItems:] {
			if key := as.previews.KeyFromURL(dropped.PreviewURL); key != "" {
				_ = as.previews.Release(key)
			}
		}
		working = working[:maxItems]
	}

	for i := range working {
		working[i].Position = i
	}

	answer := domain.PhotoAnswer{Photos: working}
	ownedKeys := make([]string, 0, len(working))
	for _, a := range working {
		if key := as.previews.KeyFromURL(a.PreviewURL); key != "" {
			ownedKeys = append(ownedKeys, key)
		}
	}

	applied := session.ApplyIfCurrent(generation, func(s *Session) {
		s.setAnswerLocked(domain.CustomizationInput{
			RuleID: ruleID,
			Type:   domain.RuleTypePhotoUpload,
			Data:   answer,
		}, ownedKeys)
	})
	if !applied {
		// Session was cleared or replaced mid-flight; drop the stale
		// result and free everything it acquired.
		for _, e := range created {
			if e.ok {
				_ = as.previews.Release(e.key)
			}
		}
		return domain.PhotoAnswer{}, fmt.Errorf("session %s changed while processing photos", session.ID())
	}

	return answer, nil
}

func (as *artifactService) RemovePhoto(ctx context.Context, session *Session, ruleID string, position int) (domain.PhotoAnswer, error) {
	if err := ctx.Err(); err != nil {
		return domain.PhotoAnswer{}, err
	}
	generation := session.Generation()

	current := currentPhotos(session, ruleID)
	if position < 0 || position >= len(current) {
		return domain.PhotoAnswer{}, fmt.Errorf("no photo at position %d", position)
	}

	remaining := make([]domain.Artifact, 0, len(current)-1)
	remaining = append(remaining, current[:position]...)
	remaining = append(remaining, current[position+1:]...)
	for i := range remaining {
		remaining[i].Position = i
	}

	answer := domain.PhotoAnswer{Photos: remaining}
	ownedKeys := make([]string, 0, len(remaining))
	for _, a := range remaining {
		if key := as.previews.KeyFromURL(a.PreviewURL); key != "" {
			ownedKeys = append(ownedKeys, key)
		}
	}

	applied := session.ApplyIfCurrent(generation, func(s *Session) {
		s.setAnswerLocked(domain.CustomizationInput{
			RuleID: ruleID,
			Type:   domain.RuleTypePhotoUpload,
			Data:   answer,
		}, ownedKeys)
	})
	if !applied {
		return domain.PhotoAnswer{}, fmt.Errorf("session %s changed while removing photo", session.ID())
	}

	return answer, nil
}

func (as *artifactService) SaveAnswer(ctx context.Context, session *Session, input domain.CustomizationInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return session.Update(input, as.ownedKeys(input.Data)...)
}

// ownedKeys resolves the preview keys an answer payload still
// references, so replacing the answer transfers rather than revokes
// their ownership.
func (as *artifactService) ownedKeys(data domain.AnswerData) []string {
	var artifacts []domain.Artifact
	switch a := data.(type) {
	case domain.PhotoAnswer:
		artifacts = a.Photos
	case domain.LayoutAnswer:
		artifacts = a.Images
	default:
		return nil
	}
	keys := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		if key := as.previews.KeyFromURL(artifact.PreviewURL); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func currentPhotos(session *Session, ruleID string) []domain.Artifact {
	input, ok := session.Get(ruleID)
	if !ok {
		return nil
	}
	photos, ok := input.Data.(domain.PhotoAnswer)
	if !ok {
		return nil
	}
	out := make([]domain.Artifact, len(photos.Photos))
	copy(out, photos.Photos)
	return out
}

func isImageMime(mime string) bool {
	switch mime {
	case "image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp", "image/tiff":
		return true
	default:
		return false
	}
}
