package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prooflab/backend/internal/config"
	"github.com/prooflab/backend/internal/proofing"
	"github.com/redis/go-redis/v9"
)

// ProofingService keeps each client's proofing workspace (active filter,
// selection, mode, current index, slideshow play state) in Redis so the
// session survives page loads and device switches. State is created empty
// on first touch and expires with the session TTL.
type ProofingService struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewProofingService(redisClient *redis.Client, cfg *config.Config) *ProofingService {
	return &ProofingService{redis: redisClient, cfg: cfg}
}

// SessionState is the persisted workspace snapshot.
type SessionState struct {
	Filter    proofing.FilterTag `json:"filter"`
	Selection []string           `json:"selection"`
	Workspace proofing.Workspace `json:"workspace"`
}

func defaultState() *SessionState {
	return &SessionState{
		Filter:    proofing.FilterAll,
		Workspace: *proofing.NewWorkspace(),
	}
}

func (s *ProofingService) key(galleryID, clientID string) string {
	return fmt.Sprintf("proofing:%s:%s", galleryID, clientID)
}

func (s *ProofingService) load(ctx context.Context, galleryID, clientID string) (*SessionState, error) {
	raw, err := s.redis.Get(ctx, s.key(galleryID, clientID)).Result()
	if errors.Is(err, redis.Nil) {
		return defaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load proofing session: %w", err)
	}
	var state SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		// Corrupt session state: start over rather than failing the request
		return defaultState(), nil
	}
	return &state, nil
}

func (s *ProofingService) save(ctx context.Context, galleryID, clientID string, state *SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(galleryID, clientID), raw, s.cfg.ProofingSessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save proofing session: %w", err)
	}
	return nil
}

// GetSession returns the current state without mutating it.
func (s *ProofingService) GetSession(ctx context.Context, galleryID, clientID string) (*SessionState, error) {
	return s.load(ctx, galleryID, clientID)
}

// SelectModifier names the click gesture applied to an image.
type SelectModifier string

const (
	SelectSingle SelectModifier = "single" // plain click: replace
	SelectToggle SelectModifier = "toggle" // ctrl-click: toggle membership
	SelectRange  SelectModifier = "range"  // shift-click: extend range
)

// Select applies a selection gesture. images is the gallery's full ordered
// sequence; the range span is computed over the currently visible subset.
func (s *ProofingService) Select(ctx context.Context, galleryID, clientID string, images []proofing.ImageRef, imageID string, modifier SelectModifier) (*SessionState, error) {
	state, err := s.load(ctx, galleryID, clientID)
	if err != nil {
		return nil, err
	}

	sel := proofing.NewSelectionFrom(state.Selection, s.cfg.CompareLimit)
	switch modifier {
	case SelectSingle:
		sel.ToggleSingle(imageID)
	case SelectToggle:
		sel.ToggleMember(imageID)
	case SelectRange:
		visible := proofing.Filter(images, state.Filter)
		order := make([]string, len(visible))
		for i, ref := range visible {
			order[i] = ref.ID
		}
		sel.ExtendRange(order, imageID)
	default:
		return nil, fmt.Errorf("invalid selection modifier %q", modifier)
	}
	state.Selection = sel.IDs()

	// A shrinking selection can disqualify compare mode
	if state.Workspace.Mode == proofing.ModeCompare && !proofing.CompareEnabled(sel.Len()) {
		state.Workspace.SetMode(proofing.ModeGallery, len(proofing.Filter(images, state.Filter)), sel.Len())
	}

	if err := s.save(ctx, galleryID, clientID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// ClearSelection empties the selection. The confirmation step before
// destructive bulk actions lives in the UI; the API clears unconditionally.
func (s *ProofingService) ClearSelection(ctx context.Context, galleryID, clientID string) (*SessionState, error) {
	state, err := s.load(ctx, galleryID, clientID)
	if err != nil {
		return nil, err
	}
	state.Selection = nil
	if state.Workspace.Mode == proofing.ModeCompare {
		state.Workspace.Mode = proofing.ModeGallery
	}
	if err := s.save(ctx, galleryID, clientID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetFilter switches the active filter and clamps the current index to the
// new visible sequence.
func (s *ProofingService) SetFilter(ctx context.Context, galleryID, clientID string, images []proofing.ImageRef, tag proofing.FilterTag) (*SessionState, error) {
	state, err := s.load(ctx, galleryID, clientID)
	if err != nil {
		return nil, err
	}
	state.Filter = tag
	state.Workspace.ClampIndex(len(proofing.Filter(images, tag)))
	if err := s.save(ctx, galleryID, clientID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// SetMode switches the workspace presentation mode.
func (s *ProofingService) SetMode(ctx context.Context, galleryID, clientID string, images []proofing.ImageRef, mode proofing.Mode) (*SessionState, error) {
	state, err := s.load(ctx, galleryID, clientID)
	if err != nil {
		return nil, err
	}
	count := len(proofing.Filter(images, state.Filter))
	if !state.Workspace.SetMode(mode, count, len(state.Selection)) {
		return nil, fmt.Errorf("compare requires between %d and %d selected images", proofing.CompareMin, proofing.CompareMax)
	}
	if err := s.save(ctx, galleryID, clientID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// NavAction names a workspace navigation request.
type NavAction string

const (
	NavNext    NavAction = "next"    // bounded, gallery mode
	NavPrev    NavAction = "prev"    // bounded, gallery mode
	NavForward NavAction = "forward" // wrapping, slideshow
	NavBack    NavAction = "back"    // wrapping, slideshow
	NavPlay    NavAction = "play"
	NavPause   NavAction = "pause"
)

// Navigate applies a navigation action against the visible sequence.
func (s *ProofingService) Navigate(ctx context.Context, galleryID, clientID string, images []proofing.ImageRef, action NavAction) (*SessionState, error) {
	state, err := s.load(ctx, galleryID, clientID)
	if err != nil {
		return nil, err
	}
	count := len(proofing.Filter(images, state.Filter))

	switch action {
	case NavNext:
		state.Workspace.Next(count)
	case NavPrev:
		state.Workspace.Prev(count)
	case NavForward:
		state.Workspace.Advance(count, 1)
	case NavBack:
		state.Workspace.Advance(count, -1)
	case NavPlay:
		state.Workspace.Play(count)
	case NavPause:
		state.Workspace.Pause()
	default:
		return nil, fmt.Errorf("invalid navigation action %q", action)
	}

	if err := s.save(ctx, galleryID, clientID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// Reset drops the session entirely (used when a gallery is deleted).
func (s *ProofingService) Reset(ctx context.Context, galleryID, clientID string) error {
	return s.redis.Del(ctx, s.key(galleryID, clientID)).Err()
}
