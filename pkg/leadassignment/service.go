package leadassignment

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Notifier tells an agent they received a lead. Implemented by pkg/email;
// a nil notifier disables notifications.
type Notifier interface {
	NotifyAssignment(ctx context.Context, agent models.User, lead models.Lead) error
}

// Service handles assigning leads to agents.
type Service struct {
	db       *database.Client
	cache    *cache.Client
	notifier Notifier
	log      logger.Logger
}

// NewService creates a new lead assignment service. cache may be nil.
func NewService(db *database.Client, cacheClient *cache.Client, notifier Notifier, log logger.Logger) *Service {
	return &Service{db: db, cache: cacheClient, notifier: notifier, log: log}
}

// AssignRequest is the payload for a manual assignment.
type AssignRequest struct {
	AgentID uint   `json:"agentId" validate:"required"`
	Reason  string `json:"reason,omitempty"`
}

// Assign hands a lead to an agent. Admin only. The target must be an
// active user holding an assignable role.
func (s *Service) Assign(ctx context.Context, leadID uint, actor domain.Actor, req AssignRequest) (*models.Lead, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can assign leads")
	}

	var agent models.User
	if err := s.db.DB.WithContext(ctx).First(&agent, req.AgentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewAgentNotEligibleError(fmt.Sprintf("agent %d does not exist", req.AgentID))
		}
		return nil, domain.NewInternalError(err)
	}
	if !agent.IsAssignable() {
		return nil, domain.NewAgentNotEligibleError(fmt.Sprintf("agent %d is not eligible for assignment", req.AgentID))
	}

	lead, err := s.assign(ctx, leadID, agent.ID, actor.UserID, "manual", req.Reason)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAssignment(ctx, agent, *lead); err != nil {
			s.log.Warn("failed notifying agent of assignment",
				"lead_id", lead.ID, "agent_id", agent.ID, "error", err)
		}
	}

	return lead, nil
}

// Unassign removes the owning agent from a lead. Admin only.
func (s *Service) Unassign(ctx context.Context, leadID uint, actor domain.Actor) (*models.Lead, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can unassign leads")
	}

	var lead models.Lead
	err := s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lead, leadID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LeadAssignment{}).
			Where("lead_id = ? AND active = ?", leadID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		lead.System.AssignedAgentID = nil
		return tx.Model(&models.Lead{}).Where("id = ?", leadID).
			Update("assigned_agent_id", nil).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	leads.InvalidateCache(ctx, s.cache, s.log, leadID)

	s.log.Info("lead unassigned", "lead_id", leadID, "by", actor.UserID)
	return &lead, nil
}

// AutoAssign distributes a lead to the active sales agent currently
// carrying the fewest leads. Ties break on the lower agent id, which
// makes the rotation deterministic.
func (s *Service) AutoAssign(ctx context.Context, leadID uint, actor domain.Actor) (*models.Lead, error) {
	if !actor.IsAdmin() {
		return nil, domain.NewForbiddenError("only admins can auto-assign leads")
	}

	agent, err := s.pickAgent(ctx)
	if err != nil {
		return nil, err
	}

	lead, err := s.assign(ctx, leadID, agent.ID, actor.UserID, "auto", "round robin")
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyAssignment(ctx, *agent, *lead); err != nil {
			s.log.Warn("failed notifying agent of assignment",
				"lead_id", lead.ID, "agent_id", agent.ID, "error", err)
		}
	}

	return lead, nil
}

// GetHistory returns the assignment trail of a lead, newest first.
func (s *Service) GetHistory(ctx context.Context, leadID uint, actor domain.Actor) ([]models.LeadAssignment, error) {
	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}
	if !actor.IsAdmin() {
		if lead.System.AssignedAgentID == nil || *lead.System.AssignedAgentID != actor.UserID {
			return nil, domain.NewForbiddenError("you do not have access to this lead")
		}
	}

	var history []models.LeadAssignment
	err := s.db.DB.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("assigned_at DESC, id DESC").
		Find(&history).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if history == nil {
		history = []models.LeadAssignment{}
	}
	return history, nil
}

// GetAgentLeads lists the leads currently assigned to an agent. Agents
// may only ask for their own list.
func (s *Service) GetAgentLeads(ctx context.Context, agentID uint, actor domain.Actor) ([]models.Lead, error) {
	if !actor.IsAdmin() && actor.UserID != agentID {
		return nil, domain.NewForbiddenError("you can only list your own leads")
	}

	var assigned []models.Lead
	err := s.db.DB.WithContext(ctx).
		Where("assigned_agent_id = ?", agentID).
		Order("id ASC").
		Find(&assigned).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if assigned == nil {
		assigned = []models.Lead{}
	}
	return assigned, nil
}

// assign performs the shared assignment write: lead column, active flag
// rotation and the history row, in one transaction.
func (s *Service) assign(ctx context.Context, leadID, agentID, byID uint, assignType, reason string) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&lead, leadID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LeadAssignment{}).
			Where("lead_id = ? AND active = ?", leadID, true).
			Update("active", false).Error; err != nil {
			return err
		}
		assignment := models.LeadAssignment{
			LeadID:       leadID,
			AgentID:      agentID,
			AssignedByID: byID,
			Type:         assignType,
			Reason:       reason,
			Active:       true,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		lead.System.AssignedAgentID = &agentID
		return tx.Model(&models.Lead{}).Where("id = ?", leadID).
			Update("assigned_agent_id", agentID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	leads.InvalidateCache(ctx, s.cache, s.log, leadID)

	s.log.Info("lead assigned",
		"lead_id", leadID, "agent_id", agentID, "type", assignType, "by", byID)

	return &lead, nil
}

// pickAgent selects the least loaded active sales agent.
func (s *Service) pickAgent(ctx context.Context) (*models.User, error) {
	var agents []models.User
	err := s.db.DB.WithContext(ctx).
		Where("role = ? AND active = ?", models.RoleSalesAgent, true).
		Order("id ASC").
		Find(&agents).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if len(agents) == 0 {
		return nil, domain.NewAgentNotEligibleError("no active sales agents available")
	}

	type row struct {
		AssignedAgentID uint
		Count           int64
	}
	var rows []row
	err = s.db.DB.WithContext(ctx).Model(&models.Lead{}).
		Select("assigned_agent_id, COUNT(*) as count").
		Where("assigned_agent_id IS NOT NULL").
		Group("assigned_agent_id").
		Scan(&rows).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	loads := make(map[uint]int64, len(rows))
	for _, r := range rows {
		loads[r.AssignedAgentID] = r.Count
	}

	best := agents[0]
	for _, a := range agents[1:] {
		if loads[a.ID] < loads[best.ID] {
			best = a
		}
	}
	return &best, nil
}
