package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quizora/quizora-backend/internal/events"
	"github.com/quizora/quizora-backend/internal/model"
	"github.com/quizora/quizora-backend/internal/repository"
	"github.com/quizora/quizora-backend/internal/secret"
)

// ErrEmptyCredential is returned when an override credential is blank.
var ErrEmptyCredential = errors.New("override credential must not be empty")

// CreditService tracks each client's generation quota and optional override
// credential. The server-side record is authoritative; clients cache the
// balance for display only. Credentials are sealed before persisting and
// UsingOverride always mirrors their presence: both fields are written in
// the same save.
type CreditService struct {
	repo    repository.CreditRepository
	box     *secret.Box
	events  *events.Publisher
	log     zerolog.Logger
	initial int

	// mu serializes check-and-decrement so two concurrent generations
	// cannot both spend the last credit.
	mu sync.Mutex
}

// CreditState is the display view of a client's quota.
type CreditState struct {
	CreditsRemaining int  `json:"credits_remaining"`
	UsingOverride    bool `json:"using_override"`
}

// NewCreditService creates a new CreditService. pub may be nil (tests).
func NewCreditService(repo repository.CreditRepository, box *secret.Box, pub *events.Publisher, initial int, log zerolog.Logger) *CreditService {
	if initial <= 0 {
		initial = model.DefaultInitialCredits
	}
	return &CreditService{
		repo:    repo,
		box:     box,
		events:  pub,
		log:     log.With().Str("component", "credit_service").Logger(),
		initial: initial,
	}
}

func (s *CreditService) load(ctx context.Context, clientID string) (*model.CreditRecord, error) {
	rec, err := s.repo.Load(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("hydrate credits for client %s: %w", clientID, err)
	}
	if rec == nil {
		rec = &model.CreditRecord{CreditsRemaining: s.initial}
	}
	return rec, nil
}

// TryConsumeCredit is the sole quota-enforcement gate. With an override set
// it returns true without mutating state; otherwise it decrements and
// persists, or returns false once the balance reaches zero.
func (s *CreditService) TryConsumeCredit(ctx context.Context, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, clientID)
	if err != nil {
		return false, err
	}

	if rec.UsingOverride {
		return true, nil
	}
	if rec.CreditsRemaining <= 0 {
		return false, nil
	}

	rec.CreditsRemaining--
	if err := s.repo.Save(ctx, clientID, rec); err != nil {
		return false, fmt.Errorf("persist credits for client %s: %w", clientID, err)
	}

	s.publish(ctx, clientID)
	return true, nil
}

// ResetCredits restores the initial allotment. This is an ops escape hatch;
// the HTTP layer restricts it to non-production deployments.
func (s *CreditService) ResetCredits(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, clientID)
	if err != nil {
		return err
	}
	rec.CreditsRemaining = s.initial
	if err := s.repo.Save(ctx, clientID, rec); err != nil {
		return fmt.Errorf("persist credits for client %s: %w", clientID, err)
	}

	s.publish(ctx, clientID)
	s.log.Info().Str("client_id", clientID).Int("credits", s.initial).Msg("Credits reset")
	return nil
}

// SetOverrideCredential seals and stores the user-supplied credential and
// flips UsingOverride in the same save.
func (s *CreditService) SetOverrideCredential(ctx context.Context, clientID, credential string) error {
	if strings.TrimSpace(credential) == "" {
		return ErrEmptyCredential
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, clientID)
	if err != nil {
		return err
	}

	sealed, err := s.box.Seal(credential)
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	rec.OverrideCredential = sealed
	rec.UsingOverride = true
	if err := s.repo.Save(ctx, clientID, rec); err != nil {
		return fmt.Errorf("persist credits for client %s: %w", clientID, err)
	}

	s.publish(ctx, clientID)
	return nil
}

// ClearOverrideCredential removes the override. Consumed credits are not
// restored.
func (s *CreditService) ClearOverrideCredential(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ctx, clientID)
	if err != nil {
		return err
	}
	rec.OverrideCredential = ""
	rec.UsingOverride = false
	if err := s.repo.Save(ctx, clientID, rec); err != nil {
		return fmt.Errorf("persist credits for client %s: %w", clientID, err)
	}

	s.publish(ctx, clientID)
	return nil
}

// OverrideCredential returns the plaintext override credential, or ok=false
// when none is set.
func (s *CreditService) OverrideCredential(ctx context.Context, clientID string) (string, bool, error) {
	rec, err := s.load(ctx, clientID)
	if err != nil {
		return "", false, err
	}
	if !rec.UsingOverride || rec.OverrideCredential == "" {
		return "", false, nil
	}

	plain, err := s.box.Open(rec.OverrideCredential)
	if err != nil {
		return "", false, fmt.Errorf("open sealed credential: %w", err)
	}
	return plain, true, nil
}

// State returns the display view of the client's quota.
func (s *CreditService) State(ctx context.Context, clientID string) (CreditState, error) {
	rec, err := s.load(ctx, clientID)
	if err != nil {
		return CreditState{}, err
	}
	return CreditState{
		CreditsRemaining: rec.CreditsRemaining,
		UsingOverride:    rec.UsingOverride,
	}, nil
}

func (s *CreditService) publish(ctx context.Context, clientID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, clientID, events.Event{Type: events.TypeCreditsChanged})
}
