package proposal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/domain/proposal"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/validator"
)

type ProposalServiceImpl struct {
	tx database.Transactor
	proposal.ProposalRepository
	notifications notification.Queuer
	metrics       *metrics.Metrics
}

func NewProposalService(tx database.Transactor, repo proposal.ProposalRepository, notifications notification.Queuer, m *metrics.Metrics) proposal.ProposalService {
	return &ProposalServiceImpl{tx: tx, ProposalRepository: repo, notifications: notifications, metrics: m}
}

// Create implements proposal.ProposalService.
func (s *ProposalServiceImpl) Create(ctx context.Context, req proposal.CreateProposalRequest) (proposal.Proposal, error) {
	p, err := req.Proposal()
	if err != nil {
		return proposal.Proposal{}, err
	}
	created, err := s.ProposalRepository.Create(ctx, p)
	if err != nil {
		s.metrics.ObserveFailure("proposal_create", err)
		return proposal.Proposal{}, fmt.Errorf("failed to create proposal: %w", err)
	}
	slog.Info("proposal created", "proposal_id", created.ID, "employee_id", created.EmployeeID, "type", created.Type)
	return created, nil
}

// Get implements proposal.ProposalService.
func (s *ProposalServiceImpl) Get(ctx context.Context, id string) (proposal.Proposal, error) {
	if !validator.IsValidUUID(id) {
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}
	return s.ProposalRepository.GetByID(ctx, id)
}

// Filter implements proposal.ProposalService.
func (s *ProposalServiceImpl) Filter(ctx context.Context, req proposal.FilterProposalRequest) ([]proposal.Proposal, error) {
	filter, err := req.Filter()
	if err != nil {
		return nil, err
	}
	return s.ProposalRepository.List(ctx, filter)
}

// SetStatus implements proposal.ProposalService.
func (s *ProposalServiceImpl) SetStatus(ctx context.Context, req proposal.SetStatusRequest) (proposal.Proposal, error) {
	status, err := proposal.ParseStatus(req.Status)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if !validator.IsValidUUID(req.ID) {
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}

	var (
		updated proposal.Proposal
		decided bool
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.ProposalRepository.LockByID(ctx, req.ID)
		if err != nil {
			return err
		}
		was := p.Status
		changed, err := p.Decide(status, req.DecisionNote)
		if err != nil {
			return err
		}
		updated = p
		if !changed {
			return nil
		}
		decided = was != p.Status
		updated, err = s.ProposalRepository.UpdateDecision(ctx, p)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("proposal_set_status", err)
		return proposal.Proposal{}, fmt.Errorf("set proposal %s status: %w", req.ID, err)
	}

	if decided {
		slog.Info("proposal decided", "proposal_id", updated.ID, "status", updated.Status)
		s.notifyDecided(ctx, updated)
	}
	return updated, nil
}

// UpdateDecisionNote implements proposal.ProposalService.
func (s *ProposalServiceImpl) UpdateDecisionNote(ctx context.Context, id string, note string) (proposal.Proposal, error) {
	if !validator.IsValidUUID(id) {
		return proposal.Proposal{}, proposal.ErrProposalNotFound
	}
	var updated proposal.Proposal
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		p, err := s.ProposalRepository.LockByID(ctx, id)
		if err != nil {
			return err
		}
		p.DecisionNote = &note
		updated, err = s.ProposalRepository.UpdateDecision(ctx, p)
		return err
	})
	if err != nil {
		s.metrics.ObserveFailure("proposal_update_note", err)
		return proposal.Proposal{}, fmt.Errorf("update proposal %s note: %w", id, err)
	}
	return updated, nil
}

func (s *ProposalServiceImpl) notifyDecided(ctx context.Context, p proposal.Proposal) {
	if s.notifications == nil {
		return
	}
	err := s.notifications.QueueNotification(ctx, notification.CreateNotificationRequest{
		RecipientID: p.EmployeeID,
		SenderID:    p.ManagerID,
		Type:        notification.TypeProposalDecided,
		Title:       fmt.Sprintf("Proposal %s", p.Status),
		Message:     p.Title,
		Data:        map[string]any{"proposal_id": p.ID, "status": string(p.Status)},
	})
	if err != nil {
		slog.Warn("failed to queue notification", "type", notification.TypeProposalDecided, "proposal_id", p.ID, "error", err)
	}
}
