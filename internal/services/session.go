package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/meumosaico/backend/internal/clients/redis"
	"github.com/meumosaico/backend/internal/data/repos/catalog"
	"github.com/meumosaico/backend/internal/domain"
	"github.com/meumosaico/backend/internal/platform/localmedia"
	"github.com/meumosaico/backend/internal/platform/logger"
)

// Session is the working memory for configuring exactly one item
// instance. Each session is exclusively owned by the wizard flow that
// created it; the manager hands out independent sessions so multiple
// wizards never share mutable state.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	itemType domain.ItemType
	itemID   uuid.UUID
	rules    []domain.RuleView

	answers     map[string]domain.CustomizationInput
	previewKeys map[string][]string

	finalArtwork  *domain.Artifact
	finalArtworks []domain.Artifact

	// generation invalidates in-flight async work: results started
	// under an older generation are discarded instead of applied.
	generation uint64
	cleared    bool

	previews localmedia.PreviewStore
}

func (s *Session) ID() uuid.UUID             { return s.id }
func (s *Session) ItemID() uuid.UUID         { return s.itemID }
func (s *Session) ItemType() domain.ItemType { return s.itemType }

// Rules returns the merged catalog in wizard order.
func (s *Session) Rules() []domain.RuleView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RuleView, len(s.rules))
	copy(out, s.rules)
	return out
}

// Generation returns the token an async caller must hold to apply its
// result later.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// ApplyIfCurrent runs fn under the session lock only if the session is
// still alive and on the same generation the async work started under.
// It reports whether fn ran.
func (s *Session) ApplyIfCurrent(generation uint64, fn func(s *Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared || s.generation != generation {
		return false
	}
	fn(s)
	return true
}

// Update replaces the answer for a rule id. Total replacement, not a
// merge: list-valued payloads must already be unioned by the caller.
// Preview keys owned by the previous answer and absent from ownedKeys
// are released; ownedKeys become owned by the new answer.
func (s *Session) Update(input domain.CustomizationInput, ownedKeys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cleared {
		return fmt.Errorf("session %s already cleared", s.id)
	}
	s.setAnswerLocked(input, ownedKeys)
	return nil
}

func (s *Session) setAnswerLocked(input domain.CustomizationInput, ownedKeys []string) {
	kept := make(map[string]struct{}, len(ownedKeys))
	for _, key := range ownedKeys {
		kept[key] = struct{}{}
	}
	for _, key := range s.previewKeys[input.RuleID] {
		if _, ok := kept[key]; !ok {
			_ = s.previews.Release(key)
		}
	}
	delete(s.previewKeys, input.RuleID)

	s.answers[input.RuleID] = input
	if len(ownedKeys) > 0 {
		s.previewKeys[input.RuleID] = append([]string(nil), ownedKeys...)
	}
}

// Get returns the current answer for a rule id, if any.
func (s *Session) Get(ruleID string) (domain.CustomizationInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	input, ok := s.answers[ruleID]
	return input, ok
}

// Remove deletes the answer for a rule id and releases any preview
// keys it owned.
func (s *Session) Remove(ruleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releasePreviewsLocked(ruleID)
	delete(s.answers, ruleID)
}

// Clear releases every owned preview key across all answers and
// discards the session content. Any in-flight async work becomes
// stale.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Session) clearLocked() {
	for ruleID := range s.previewKeys {
		s.releasePreviewsLocked(ruleID)
	}
	s.answers = make(map[string]domain.CustomizationInput)
	s.previewKeys = make(map[string][]string)
	s.finalArtwork = nil
	s.finalArtworks = nil
	s.generation++
	s.cleared = true
}

func (s *Session) releasePreviewsLocked(ruleID string) {
	for _, key := range s.previewKeys[ruleID] {
		_ = s.previews.Release(key)
	}
	delete(s.previewKeys, ruleID)
}

// AttachFinalArtwork records rendered output produced by the external
// layout editor once available.
func (s *Session) AttachFinalArtwork(single *domain.Artifact, many []domain.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalArtwork = single
	s.finalArtworks = many
}

// Answers returns the recorded inputs ordered by the catalog's wizard
// order; unanswered rules are skipped.
func (s *Session) Answers() []domain.CustomizationInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answersLocked()
}

func (s *Session) answersLocked() []domain.CustomizationInput {
	out := make([]domain.CustomizationInput, 0, len(s.answers))
	for _, rule := range s.rules {
		if input, ok := s.answers[rule.ID]; ok {
			out = append(out, input)
		}
	}
	return out
}

// sessionSnapshot is the persisted form of a session. Raw image bytes
// are never serialized: artifacts are stored metadata-only, so a
// reload recovers previews and selections but not original uploads.
type sessionSnapshot struct {
	ID            uuid.UUID           `json:"id"`
	ItemType      domain.ItemType     `json:"itemType"`
	ItemID        uuid.UUID           `json:"itemId"`
	Answers       []snapshotAnswer    `json:"answers"`
	PreviewKeys   map[string][]string `json:"previewKeys,omitempty"`
	FinalArtwork  *domain.Artifact    `json:"finalArtwork,omitempty"`
	FinalArtworks []domain.Artifact   `json:"finalArtworks,omitempty"`
}

type snapshotAnswer struct {
	RuleID           string          `json:"ruleId"`
	Type             domain.RuleType `json:"customizationType"`
	SelectedLayoutID string          `json:"selectedLayoutId,omitempty"`
	Data             json.RawMessage `json:"data"`
}

// SessionService manages session lifecycle: creation against the rule
// catalog, lookup, snapshot persistence and teardown.
type SessionService interface {
	Initialize(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) (*Session, error)
	// Get resolves a live session, falling back to the persisted
	// snapshot when the in-memory map lost it (process restart).
	Get(ctx context.Context, id uuid.UUID) (*Session, bool)
	Persist(ctx context.Context, session *Session) error
	Clear(ctx context.Context, id uuid.UUID) error
	Catalog(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) ([]domain.RuleView, error)
}

type sessionService struct {
	log        *logger.Logger
	ruleRepo   catalog.RuleRepo
	legacyRepo catalog.LegacyRuleRepo
	previews   localmedia.PreviewStore
	snapshots  redis.SessionStore

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionService(log *logger.Logger, ruleRepo catalog.RuleRepo, legacyRepo catalog.LegacyRuleRepo, previews localmedia.PreviewStore, snapshots redis.SessionStore) SessionService {
	return &sessionService{
		log:        log.With("service", "SessionService"),
		ruleRepo:   ruleRepo,
		legacyRepo: legacyRepo,
		previews:   previews,
		snapshots:  snapshots,
		sessions:   make(map[uuid.UUID]*Session),
	}
}

func (ss *sessionService) Catalog(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) ([]domain.RuleView, error) {
	rules, err := ss.ruleRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	legacy, err := ss.legacyRepo.GetByItem(ctx, nil, itemID, itemType)
	if err != nil {
		return nil, fmt.Errorf("load legacy rules: %w", err)
	}
	return domain.MergeCatalog(rules, legacy), nil
}

func (ss *sessionService) Initialize(ctx context.Context, itemType domain.ItemType, itemID uuid.UUID) (*Session, error) {
	if !itemType.Valid() {
		return nil, fmt.Errorf("invalid item type %q", itemType)
	}

	merged, err := ss.Catalog(ctx, itemType, itemID)
	if err != nil {
		return nil, err
	}

	session := &Session{
		id:          uuid.New(),
		itemType:    itemType,
		itemID:      itemID,
		rules:       merged,
		answers:     make(map[string]domain.CustomizationInput),
		previewKeys: make(map[string][]string),
		previews:    ss.previews,
	}

	ss.mu.Lock()
	ss.sessions[session.id] = session
	ss.mu.Unlock()

	ss.log.Debug("Session initialized", "session_id", session.id, "item_id", itemID, "item_type", itemType, "rules", len(merged))
	return session, nil
}

func (ss *sessionService) Get(ctx context.Context, id uuid.UUID) (*Session, bool) {
	ss.mu.RLock()
	session, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if ok {
		return session, true
	}
	return ss.rehydrate(ctx, id)
}

// rehydrate rebuilds a session from its snapshot. Preview keys and
// artifact metadata come back; raw upload bytes do not, as snapshots
// never carry them.
func (ss *sessionService) rehydrate(ctx context.Context, id uuid.UUID) (*Session, bool) {
	if ss.snapshots == nil {
		return nil, false
	}
	raw, err := ss.snapshots.Load(ctx, id.String())
	if err != nil {
		ss.log.Warn("Failed to load session snapshot", "session_id", id, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var snap sessionSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		ss.log.Warn("Discarding unreadable session snapshot", "session_id", id, "error", err)
		return nil, false
	}

	merged, err := ss.Catalog(ctx, snap.ItemType, snap.ItemID)
	if err != nil {
		ss.log.Warn("Failed to reload catalog for snapshot", "session_id", id, "error", err)
		return nil, false
	}

	session := &Session{
		id:            snap.ID,
		itemType:      snap.ItemType,
		itemID:        snap.ItemID,
		rules:         merged,
		answers:       make(map[string]domain.CustomizationInput, len(snap.Answers)),
		previewKeys:   make(map[string][]string, len(snap.PreviewKeys)),
		finalArtwork:  snap.FinalArtwork,
		finalArtworks: snap.FinalArtworks,
		previews:      ss.previews,
	}
	for _, ans := range snap.Answers {
		data, err := domain.DecodeAnswer(ans.Type, ans.Data)
		if err != nil {
			ss.log.Warn("Skipping undecodable snapshot answer", "session_id", id, "rule_id", ans.RuleID, "error", err)
			continue
		}
		session.answers[ans.RuleID] = domain.CustomizationInput{
			RuleID:           ans.RuleID,
			Type:             ans.Type,
			SelectedLayoutID: ans.SelectedLayoutID,
			Data:             data,
		}
	}
	for ruleID, keys := range snap.PreviewKeys {
		session.previewKeys[ruleID] = append([]string(nil), keys...)
	}

	ss.mu.Lock()
	if existing, ok := ss.sessions[id]; ok {
		// A concurrent request rehydrated first; keep its session.
		ss.mu.Unlock()
		return existing, true
	}
	ss.sessions[id] = session
	ss.mu.Unlock()

	ss.log.Info("Session rehydrated from snapshot", "session_id", id, "answers", len(session.answers))
	return session, true
}

// Persist snapshots the session to the key-value store under its
// opaque id.
func (ss *sessionService) Persist(ctx context.Context, session *Session) error {
	if ss.snapshots == nil {
		return nil
	}

	session.mu.Lock()
	snap := sessionSnapshot{
		ID:            session.id,
		ItemType:      session.itemType,
		ItemID:        session.itemID,
		PreviewKeys:   session.previewKeys,
		FinalArtwork:  stripArtifactData(session.finalArtwork),
		FinalArtworks: stripArtifactsData(session.finalArtworks),
	}
	for _, input := range session.answersLocked() {
		raw, err := json.Marshal(stripAnswerData(input.Data))
		if err != nil {
			session.mu.Unlock()
			return fmt.Errorf("snapshot answer %s: %w", input.RuleID, err)
		}
		snap.Answers = append(snap.Answers, snapshotAnswer{
			RuleID:           input.RuleID,
			Type:             input.Type,
			SelectedLayoutID: input.SelectedLayoutID,
			Data:             raw,
		})
	}
	session.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	return ss.snapshots.Save(ctx, session.id.String(), payload)
}

func (ss *sessionService) Clear(ctx context.Context, id uuid.UUID) error {
	ss.mu.Lock()
	session, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()

	if ok {
		session.Clear()
	}
	if ss.snapshots != nil {
		if err := ss.snapshots.Delete(ctx, id.String()); err != nil {
			ss.log.Warn("Failed to delete session snapshot", "session_id", id, "error", err)
		}
	}
	return nil
}

// stripAnswerData blanks raw image bytes out of an answer before
// persistence. Only photo-bearing variants carry base64 payloads.
func stripAnswerData(data domain.AnswerData) domain.AnswerData {
	switch a := data.(type) {
	case domain.PhotoAnswer:
		return domain.PhotoAnswer{Photos: stripArtifactsData(a.Photos)}
	case domain.LayoutAnswer:
		return domain.LayoutAnswer{
			LayoutID:    a.LayoutID,
			Images:      stripArtifactsData(a.Images),
			EditorState: a.EditorState,
		}
	default:
		return data
	}
}

func stripArtifactData(a *domain.Artifact) *domain.Artifact {
	if a == nil {
		return nil
	}
	out := *a
	out.Base64Data = ""
	return &out
}

func stripArtifactsData(artifacts []domain.Artifact) []domain.Artifact {
	if artifacts == nil {
		return nil
	}
	out := make([]domain.Artifact, len(artifacts))
	for i, a := range artifacts {
		out[i] = a
		out[i].Base64Data = ""
	}
	return out
}
