package leads

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

const (
	listCacheTTL = 2 * time.Minute
	leadCacheTTL = 5 * time.Minute
)

// Service handles lead business logic.
type Service struct {
	db    *database.Client
	cache *cache.Client
	log   logger.Logger
}

// NewService creates a new lead service. cache may be nil, in which case
// every read goes to the database.
func NewService(db *database.Client, cacheClient *cache.Client, log logger.Logger) *Service {
	return &Service{
		db:    db,
		cache: cacheClient,
		log:   log,
	}
}

// ListFilter narrows and pages a lead listing.
type ListFilter struct {
	Page            int        `query:"page"`
	Limit           int        `query:"limit"`
	Status          string     `query:"status"`
	AssignedAgentID *uint      `query:"assignedAgent"`
	Search          string     `query:"search"`
	CreatedFrom     *time.Time `query:"createdFrom"`
	CreatedTo       *time.Time `query:"createdTo"`
	Sort            string     `query:"sort"`
}

// ListResponse is one page of leads.
type ListResponse struct {
	Leads      []models.Lead         `json:"leads"`
	Pagination models.PaginationInfo `json:"pagination"`
}

// BulkItemResult reports the outcome for one item of a bulk create.
type BulkItemResult struct {
	Index  int                 `json:"index"`
	ID     uint                `json:"id,omitempty"`
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Fields []domain.FieldError `json:"fields,omitempty"`
}

// BulkResult summarizes a best-effort bulk create.
type BulkResult struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Results []BulkItemResult `json:"results"`
}

// Create validates the intake payload and stores a new lead. A sales agent
// creating a lead becomes its assigned agent; admins create unassigned
// leads unless they assign one later.
func (s *Service) Create(ctx context.Context, payload []byte, actor domain.Actor) (*models.Lead, error) {
	lead := &models.Lead{}
	if err := ApplyPayload(lead, payload, ModeCreate); err != nil {
		return nil, err
	}

	if actor.Role == models.RoleSalesAgent {
		agentID := actor.UserID
		lead.System.AssignedAgentID = &agentID
	}

	err := s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		if lead.System.AssignedAgentID != nil {
			assignment := models.LeadAssignment{
				LeadID:       lead.ID,
				AgentID:      *lead.System.AssignedAgentID,
				AssignedByID: actor.UserID,
				Type:         "auto",
				Reason:       "assigned to creator",
				Active:       true,
			}
			return tx.Create(&assignment).Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewDuplicatePhoneError(lead.Phone)
		}
		return nil, domain.NewInternalError(err)
	}

	s.invalidate(ctx, lead.ID)
	s.log.Info("lead created", "lead_id", lead.ID, "created_by", actor.UserID)

	return lead, nil
}

// BulkCreate stores every valid item and reports a per-item result. One
// bad item never aborts the batch.
func (s *Service) BulkCreate(ctx context.Context, items []json.RawMessage, actor domain.Actor) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, domain.NewBadRequestError("leads list must not be empty")
	}

	result := &BulkResult{Results: make([]BulkItemResult, 0, len(items))}

	for i, item := range items {
		lead, err := s.Create(ctx, item, actor)
		if err != nil {
			item := BulkItemResult{Index: i, Status: "failed"}
			if ve, ok := domain.AsValidationError(err); ok {
				item.Error = "validation failed"
				item.Fields = ve.Fields
			} else {
				var de *domain.DomainError
				if errors.As(err, &de) {
					item.Error = de.Message
				} else {
					item.Error = "internal error"
				}
			}
			result.Failed++
			result.Results = append(result.Results, item)
			continue
		}
		result.Created++
		result.Results = append(result.Results, BulkItemResult{Index: i, ID: lead.ID, Status: "created"})
	}

	return result, nil
}

// GetByID returns one lead. Sales agents can only read leads assigned to
// them.
func (s *Service) GetByID(ctx context.Context, id uint, actor domain.Actor) (*models.Lead, error) {
	cacheKey := fmt.Sprintf("leads:id:%d", id)

	var lead models.Lead
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &lead); err == nil && hit {
			if err := s.authorize(&lead, actor); err != nil {
				return nil, err
			}
			return &lead, nil
		}
	}

	if err := s.db.DB.WithContext(ctx).First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	if err := s.authorize(&lead, actor); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, &lead, leadCacheTTL); err != nil {
			s.log.Warn("failed caching lead", "lead_id", id, "error", err)
		}
	}

	return &lead, nil
}

// List returns a filtered, paginated page of leads. Results come back in
// storage order unless sort asks for created_at.
func (s *Service) List(ctx context.Context, filter ListFilter, actor domain.Actor) (*ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Status != "" && !models.IsValidLeadStatus(filter.Status) {
		return nil, domain.NewValidationError(fmt.Sprintf("unknown lead status %q", filter.Status))
	}

	cacheKey := s.listCacheKey(filter, actor)
	if s.cache != nil {
		var cached ListResponse
		if hit, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	query := s.scope(s.db.DB.WithContext(ctx).Model(&models.Lead{}), actor)

	if filter.Status != "" {
		query = query.Where("lead_status = ?", filter.Status)
	}
	if filter.AssignedAgentID != nil {
		query = query.Where("assigned_agent_id = ?", *filter.AssignedAgentID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}

	switch filter.Sort {
	case "created_at:desc":
		query = query.Order("created_at DESC, id DESC")
	case "created_at:asc":
		query = query.Order("created_at ASC, id ASC")
	default:
		query = query.Order("id ASC")
	}

	var results []models.Lead
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Offset(offset).Limit(filter.Limit).Find(&results).Error; err != nil {
		return nil, domain.NewInternalError(err)
	}
	if results == nil {
		results = []models.Lead{}
	}

	response := &ListResponse{
		Leads:      results,
		Pagination: models.NewPaginationInfo(filter.Page, filter.Limit, total),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cacheKey, response, listCacheTTL); err != nil {
			s.log.Warn("failed caching lead list", "error", err)
		}
	}

	return response, nil
}

// Update merges the patch payload field-wise onto the stored lead.
// Sections absent from the payload are untouched; sections present merge
// one field at a time, so a patch never wipes sibling answers.
func (s *Service) Update(ctx context.Context, id uint, payload []byte, actor domain.Actor) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	if err := s.authorize(&lead, actor); err != nil {
		return nil, err
	}

	if err := ApplyPayload(&lead, payload, ModeUpdate); err != nil {
		return nil, err
	}

	if err := s.db.DB.WithContext(ctx).Save(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.NewDuplicatePhoneError(lead.Phone)
		}
		return nil, domain.NewInternalError(err)
	}

	s.invalidate(ctx, lead.ID)
	s.log.Info("lead updated", "lead_id", lead.ID, "updated_by", actor.UserID)

	return &lead, nil
}

// Delete removes a lead and its dependent rows. Admin only; the handler
// enforces the role, the service enforces it again.
func (s *Service) Delete(ctx context.Context, id uint, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.NewForbiddenError("only admins can delete leads")
	}

	err := s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Lead{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadStatusHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lead_id = ?", id).Delete(&models.LeadAssignment{}).Error; err != nil {
			return err
		}
		return tx.Where("lead_id = ?", id).Delete(&models.LeadNote{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.NewNotFoundError("lead")
		}
		return domain.NewInternalError(err)
	}

	s.invalidate(ctx, id)
	s.log.Info("lead deleted", "lead_id", id, "deleted_by", actor.UserID)

	return nil
}

// ExistsByPhone reports whether a lead already holds the phone number.
func (s *Service) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var count int64
	err := s.db.DB.WithContext(ctx).Model(&models.Lead{}).Where("phone = ?", phone).Count(&count).Error
	if err != nil {
		return false, domain.NewInternalError(err)
	}
	return count > 0, nil
}

// authorize applies the read policy: admins see every lead, sales agents
// only the leads assigned to them.
func (s *Service) authorize(lead *models.Lead, actor domain.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	if lead.System.AssignedAgentID != nil && *lead.System.AssignedAgentID == actor.UserID {
		return nil
	}
	return domain.NewForbiddenError("you do not have access to this lead")
}

// scope narrows a listing query to the rows the actor may see.
func (s *Service) scope(query *gorm.DB, actor domain.Actor) *gorm.DB {
	if actor.IsAdmin() {
		return query
	}
	return query.Where("assigned_agent_id = ?", actor.UserID)
}

func (s *Service) listCacheKey(filter ListFilter, actor domain.Actor) string {
	raw, _ := json.Marshal(struct {
		Filter ListFilter
		Actor  domain.Actor
	}{filter, actor})
	sum := sha256.Sum256(raw)
	return "leads:list:" + hex.EncodeToString(sum[:8])
}

// invalidate drops the written lead and every cached listing.
func (s *Service) invalidate(ctx context.Context, leadID uint) {
	InvalidateCache(ctx, s.cache, s.log, leadID)
}

// InvalidateCache drops one lead's cached copy plus every cached listing.
// Every service that writes lead rows calls this, so a status change,
// assignment or rescore is visible on the next read. Listings are dropped
// wholesale because their keys hash the filter and actor.
func InvalidateCache(ctx context.Context, cacheClient *cache.Client, log logger.Logger, leadID uint) {
	if cacheClient == nil {
		return
	}
	if err := cacheClient.Delete(ctx, fmt.Sprintf("leads:id:%d", leadID)); err != nil {
		log.Warn("failed invalidating cached lead", "lead_id", leadID, "error", err)
	}
	if err := cacheClient.DeletePattern(ctx, "leads:list:*"); err != nil {
		log.Warn("failed invalidating cached lead listings", "error", err)
	}
}
