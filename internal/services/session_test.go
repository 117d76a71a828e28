package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/meumosaico/backend/internal/clients/redis"
	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
)

// Clearing a session with three attached photos releases exactly three
// preview keys, no more, no less.
func TestClearReleasesEveryOwnedPreview(t *testing.T) {
	previews := newFakePreviewStore()
	svc := NewArtifactService(testLogger(t), previews, 0)
	session := newTestSession(previews)

	files := []UploadFile{pngFile(t, "a.png"), pngFile(t, "b.png"), pngFile(t, "c.png")}
	_, err := svc.AttachPhotos(t.Context(), session, "rule-fotos", 10, files)
	require.NoError(t, err)
	require.Equal(t, 3, previews.liveCount())

	session.Clear()

	assert.Equal(t, 3, previews.releasedCount())
	assert.Equal(t, 0, previews.liveCount())
}

func TestUpdateReleasesOnlyDroppedKeys(t *testing.T) {
	previews := newFakePreviewStore()
	session := newTestSession(previews)
	ctx := t.Context()

	keyA, err := previews.Create(ctx, []byte("a"))
	require.NoError(t, err)
	keyB, err := previews.Create(ctx, []byte("b"))
	require.NoError(t, err)

	input := domain.CustomizationInput{RuleID: "rule-fotos", Type: domain.RuleTypePhotoUpload}
	require.NoError(t, session.Update(input, keyA, keyB))
	require.Equal(t, 0, previews.releasedCount())

	// Re-saving with only keyA retained frees keyB alone.
	require.NoError(t, session.Update(input, keyA))
	assert.Equal(t, 1, previews.releasedCount())
	assert.Equal(t, 1, previews.liveCount())
}

func TestRemoveReleasesOwnedPreviews(t *testing.T) {
	previews := newFakePreviewStore()
	session := newTestSession(previews)

	key, err := previews.Create(t.Context(), []byte("a"))
	require.NoError(t, err)
	require.NoError(t, session.Update(domain.CustomizationInput{
		RuleID: "rule-fotos",
		Type:   domain.RuleTypePhotoUpload,
	}, key))

	session.Remove("rule-fotos")

	assert.Equal(t, 1, previews.releasedCount())
	_, ok := session.Get("rule-fotos")
	assert.False(t, ok)
}

func TestUpdateAfterClearFails(t *testing.T) {
	session := newTestSession(newFakePreviewStore())
	session.Clear()

	err := session.Update(domain.CustomizationInput{RuleID: "rule-texto", Type: domain.RuleTypeTextInput})
	require.Error(t, err)
}

func TestAnswersFollowCatalogOrder(t *testing.T) {
	previews := newFakePreviewStore()
	session := newTestSession(previews,
		domain.RuleView{ID: "rule-1", RuleType: domain.RuleTypeTextInput},
		domain.RuleView{ID: "rule-2", RuleType: domain.RuleTypeOptionSelect},
		domain.RuleView{ID: "rule-3", RuleType: domain.RuleTypeTextInput},
	)

	// Answered out of order; unanswered rule-2 is skipped.
	require.NoError(t, session.Update(domain.CustomizationInput{
		RuleID: "rule-3",
		Type:   domain.RuleTypeTextInput,
		Data:   domain.TextAnswer{Text: "depois"},
	}))
	require.NoError(t, session.Update(domain.CustomizationInput{
		RuleID: "rule-1",
		Type:   domain.RuleTypeTextInput,
		Data:   domain.TextAnswer{Text: "antes"},
	}))

	answers := session.Answers()
	require.Len(t, answers, 2)
	assert.Equal(t, "rule-1", answers[0].RuleID)
	assert.Equal(t, "rule-3", answers[1].RuleID)
}

// Snapshots carry artifact metadata but never the raw image bytes.
func TestSnapshotStripsBase64Payloads(t *testing.T) {
	stripped := stripAnswerData(domain.PhotoAnswer{Photos: []domain.Artifact{{
		FileName:   "foto.png",
		MimeType:   "image/png",
		Base64Data: "aGVhdnkgcGF5bG9hZA==",
		Size:       1234,
		PreviewURL: "/media/previews/preview-1.jpg",
	}}})

	photos, ok := stripped.(domain.PhotoAnswer)
	require.True(t, ok)
	require.Len(t, photos.Photos, 1)
	assert.Empty(t, photos.Photos[0].Base64Data)
	assert.Equal(t, "foto.png", photos.Photos[0].FileName)
	assert.Equal(t, int64(1234), photos.Photos[0].Size)

	raw, err := json.Marshal(stripped)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "aGVhdnkgcGF5bG9hZA")
}

func TestSnapshotStripsLayoutImages(t *testing.T) {
	stripped := stripAnswerData(domain.LayoutAnswer{
		LayoutID: "layout-9",
		Images: []domain.Artifact{
			{FileName: "x.png", Base64Data: "eA=="},
			{FileName: "y.png", Base64Data: "eQ=="},
		},
	})

	layout, ok := stripped.(domain.LayoutAnswer)
	require.True(t, ok)
	assert.Equal(t, "layout-9", layout.LayoutID)
	for _, img := range layout.Images {
		assert.Empty(t, img.Base64Data)
	}
}

type fakeRuleRepo struct {
	rules []*domain.CustomizationRule
}

var _ catalog.RuleRepo = (*fakeRuleRepo)(nil)

func (f *fakeRuleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*domain.CustomizationRule) ([]*domain.CustomizationRule, error) {
	f.rules = append(f.rules, rules...)
	return rules, nil
}

func (f *fakeRuleRepo) GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.CustomizationRule, error) {
	return f.rules, nil
}

func (f *fakeRuleRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*domain.CustomizationRule, error) {
	return nil, nil
}

type fakeLegacyRuleRepo struct{}

var _ catalog.LegacyRuleRepo = (*fakeLegacyRuleRepo)(nil)

func (f *fakeLegacyRuleRepo) Create(ctx context.Context, tx *gorm.DB, rules []*domain.LegacyCustomizationRule) ([]*domain.LegacyCustomizationRule, error) {
	return rules, nil
}

func (f *fakeLegacyRuleRepo) GetByItem(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, itemType domain.ItemType) ([]*domain.LegacyCustomizationRule, error) {
	return nil, nil
}

type fakeSnapshotStore struct {
	mu    sync.Mutex
	saved map[string][]byte
}

var _ redis.SessionStore = (*fakeSnapshotStore)(nil)

func newFakeSnapshotStore() *fakeSnapshotStore {
	return &fakeSnapshotStore{saved: make(map[string][]byte)}
}

func (f *fakeSnapshotStore) Save(ctx context.Context, key string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[key] = append([]byte(nil), snapshot...)
	return nil
}

func (f *fakeSnapshotStore) Load(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[key], nil
}

func (f *fakeSnapshotStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.saved, key)
	return nil
}

func (f *fakeSnapshotStore) Close() error { return nil }

// After a restart the in-memory session map is empty, but Get falls
// back to the persisted snapshot: answers, preview ownership and item
// identity all come back.
func TestGetRehydratesFromSnapshot(t *testing.T) {
	previews := newFakePreviewStore()
	snapshots := newFakeSnapshotStore()
	photoRule := &domain.CustomizationRule{ID: uuid.New(), Title: "Fotos do mosaico", RuleType: domain.RuleTypePhotoUpload, DisplayOrder: 1}
	textRule := &domain.CustomizationRule{ID: uuid.New(), Title: "Dedicatória", RuleType: domain.RuleTypeTextInput, DisplayOrder: 2}
	repo := &fakeRuleRepo{rules: []*domain.CustomizationRule{photoRule, textRule}}

	ctx := t.Context()
	svc := NewSessionService(testLogger(t), repo, &fakeLegacyRuleRepo{}, previews, snapshots)
	session, err := svc.Initialize(ctx, domain.ItemTypeProduct, uuid.New())
	require.NoError(t, err)

	key, err := previews.Create(ctx, []byte("img"))
	require.NoError(t, err)
	require.NoError(t, session.Update(photoInput(photoRule.ID.String(), previews.URL(key)), key))
	require.NoError(t, session.Update(textInput(textRule.ID.String(), "feliz aniversário")))
	require.NoError(t, svc.Persist(ctx, session))

	// A restart loses the in-memory map but not the snapshot.
	restarted := NewSessionService(testLogger(t), repo, &fakeLegacyRuleRepo{}, previews, snapshots)
	recovered, ok := restarted.Get(ctx, session.ID())
	require.True(t, ok)
	assert.Equal(t, session.ItemID(), recovered.ItemID())
	assert.Equal(t, domain.ItemTypeProduct, recovered.ItemType())

	answers := recovered.Answers()
	require.Len(t, answers, 2)
	photos, isPhotos := answers[0].Data.(domain.PhotoAnswer)
	require.True(t, isPhotos)
	require.Len(t, photos.Photos, 1)
	assert.Equal(t, previews.URL(key), photos.Photos[0].PreviewURL)
	assert.Empty(t, photos.Photos[0].Base64Data, "snapshots never carry raw bytes")
	assert.Equal(t, domain.TextAnswer{Text: "feliz aniversário"}, answers[1].Data)

	// Preview ownership survives the reload: clearing the recovered
	// session releases the key acquired before the restart.
	recovered.Clear()
	assert.Equal(t, 1, previews.releasedCount())
}

func TestGetMissesWhenNoSnapshotExists(t *testing.T) {
	svc := NewSessionService(testLogger(t), &fakeRuleRepo{}, &fakeLegacyRuleRepo{}, newFakePreviewStore(), newFakeSnapshotStore())

	_, ok := svc.Get(t.Context(), uuid.New())
	assert.False(t, ok)
}
