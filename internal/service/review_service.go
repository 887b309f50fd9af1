package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"suprigest/internal/models"
	"suprigest/internal/repository"
	"suprigest/internal/webhook"
)

var (
	// ErrAlreadyDecided marks an approve/reject attempt on a record
	// that already carries a terminal status.
	ErrAlreadyDecided = errors.New("record already decided")
	// ErrEmptyReason marks a rejection without a usable reason.
	ErrEmptyReason = errors.New("rejection reason is required")
	// ErrDownloadUnavailable marks a record whose attachment must not
	// be handed out.
	ErrDownloadUnavailable = errors.New("record has no downloadable evidence")
)

// ReviewService drives the approve/reject workflow over justification
// records.
type ReviewService struct {
	justificationRepo *repository.JustificationRepository
	dispatcher        *webhook.Dispatcher
}

// NewReviewService creates a new review service
func NewReviewService(justificationRepo *repository.JustificationRepository, dispatcher *webhook.Dispatcher) *ReviewService {
	return &ReviewService{
		justificationRepo: justificationRepo,
		dispatcher:        dispatcher,
	}
}

// isTerminal reports whether a stored status refuses further review
func isTerminal(status *string) bool {
	if status == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*status)) {
	case models.StatusAprovado, "approved", models.StatusReprovado, "rejected":
		return true
	default:
		return false
	}
}

// Approve marks a pending record as approved and fires the approval
// webhook with the updated snapshot.
func (s *ReviewService) Approve(id uuid.UUID, reviewer string) (*models.JustificationRecord, error) {
	record, err := s.justificationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if isTerminal(record.Status) {
		return nil, ErrAlreadyDecided
	}

	updated, err := s.justificationRepo.SetDecision(id, models.StatusAprovado, reviewer, nil, time.Now())
	if err != nil {
		// The row existed a moment ago; losing it here means a
		// concurrent reviewer decided first.
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to approve record: %w", err)
	}

	slog.Info("Record approved", "record_id", id, "reviewer", reviewer)
	s.dispatcher.NotifyApproval(updated, reviewer)

	return updated, nil
}

// Reject marks a pending record as rejected with the given reason and
// fires the rejection webhook.
func (s *ReviewService) Reject(id uuid.UUID, reviewer, reason string) (*models.JustificationRecord, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrEmptyReason
	}

	record, err := s.justificationRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if isTerminal(record.Status) {
		return nil, ErrAlreadyDecided
	}

	updated, err := s.justificationRepo.SetDecision(id, models.StatusReprovado, reviewer, &reason, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrAlreadyDecided
		}
		return nil, fmt.Errorf("failed to reject record: %w", err)
	}

	slog.Info("Record rejected", "record_id", id, "reviewer", reviewer)
	s.dispatcher.NotifyRejection(updated, reviewer, reason)

	return updated, nil
}

// DownloadInfo returns the evidence reference for a record, refusing
// records without a download reference or submitted without evidence.
func (s *ReviewService) DownloadInfo(id uuid.UUID) (download, filename string, err error) {
	record, err := s.justificationRepo.GetByID(id)
	if err != nil {
		return "", "", err
	}

	if record.Download == nil || strings.TrimSpace(*record.Download) == "" {
		return "", "", ErrDownloadUnavailable
	}
	if record.Justify != nil && strings.TrimSpace(*record.Justify) == models.NoEvidenceJustify {
		return "", "", ErrDownloadUnavailable
	}

	if record.Filename != nil {
		filename = *record.Filename
	}
	return *record.Download, filename, nil
}
