package leadscoring

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles lead scoring operations.
type Service struct {
	db    *database.Client
	cache *cache.Client
	log   logger.Logger
}

// NewService creates a new lead scoring service. cache may be nil.
func NewService(db *database.Client, cacheClient *cache.Client, log logger.Logger) *Service {
	return &Service{db: db, cache: cacheClient, log: log}
}

// ScoreResponse is a lead's calculated scores with their breakdowns.
type ScoreResponse struct {
	LeadID              uint           `json:"leadId"`
	PriorityScore       int            `json:"priorityScore"`
	InvestmentScore     int            `json:"investmentScore"`
	PriorityBreakdown   map[string]int `json:"priorityBreakdown"`
	InvestmentBreakdown map[string]int `json:"investmentBreakdown"`
	CalculatedAt        time.Time      `json:"calculatedAt"`
}

// Priority score weights. Priority measures how soon the lead is likely
// to transact (100 max).
const (
	ScoreJourneyReadyToBuy    = 30
	ScoreJourneyComparing     = 20
	ScoreJourneyResearching   = 10
	ScoreTimelineImmediate    = 30
	ScoreTimelineWithinThree  = 25
	ScoreTimelineThreeToSix   = 15
	ScoreTimelineSixToTwelve  = 5
	ScoreContactComplete      = 20
	ScoreVisionFilled         = 20
)

// Investment score weights. Investment measures deal size and funding
// certainty (100 max).
const (
	ScoreBudgetTopTier    = 40
	ScoreBudgetUpperMid   = 30
	ScoreBudgetMid        = 20
	ScoreBudgetEntry      = 10
	ScoreFundingSelf      = 30
	ScoreFundingLoan      = 20
	ScoreRepeatBuyer      = 15
	ScoreInvestmentIntent = 15
)

// CalculateScore computes both scores for a lead and persists them on the
// lead row.
func (s *Service) CalculateScore(ctx context.Context, leadID uint) (*ScoreResponse, error) {
	var lead models.Lead
	if err := s.db.DB.WithContext(ctx).First(&lead, leadID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("lead")
		}
		return nil, domain.NewInternalError(err)
	}

	response := Score(&lead)

	err := s.db.DB.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ?", leadID).
		Updates(map[string]interface{}{
			"priority_score":   response.PriorityScore,
			"investment_score": response.InvestmentScore,
		}).Error
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	// The scores live on the lead row, so its cached copy is now stale.
	leads.InvalidateCache(ctx, s.cache, s.log, leadID)

	return response, nil
}

// RecalculateAll recomputes scores for every lead. The nightly job calls
// this; it returns how many leads were updated.
func (s *Service) RecalculateAll(ctx context.Context) (int, error) {
	var all []models.Lead
	if err := s.db.DB.WithContext(ctx).Find(&all).Error; err != nil {
		return 0, domain.NewInternalError(err)
	}

	updated := 0
	for i := range all {
		response := Score(&all[i])
		if response.PriorityScore == all[i].System.PriorityScore &&
			response.InvestmentScore == all[i].System.InvestmentScore {
			continue
		}
		err := s.db.DB.WithContext(ctx).Model(&models.Lead{}).
			Where("id = ?", all[i].ID).
			Updates(map[string]interface{}{
				"priority_score":   response.PriorityScore,
				"investment_score": response.InvestmentScore,
			}).Error
		if err != nil {
			s.log.Error("failed updating lead score", "lead_id", all[i].ID, "error", err)
			continue
		}
		leads.InvalidateCache(ctx, s.cache, s.log, all[i].ID)
		updated++
	}

	return updated, nil
}

// Score computes both scores from the intake answers alone. Pure so the
// bulk recompute and tests never touch the database.
func Score(lead *models.Lead) *ScoreResponse {
	priority := make(map[string]int)
	investment := make(map[string]int)

	switch lead.PropertyVision.JourneyStage {
	case "Ready to Buy":
		priority["journey_stage"] = ScoreJourneyReadyToBuy
	case "Comparing Options":
		priority["journey_stage"] = ScoreJourneyComparing
	case "Actively Researching":
		priority["journey_stage"] = ScoreJourneyResearching
	}

	switch lead.PropertyVision.PurchaseTimeline {
	case "Immediate":
		priority["purchase_timeline"] = ScoreTimelineImmediate
	case "Within 3 months":
		priority["purchase_timeline"] = ScoreTimelineWithinThree
	case "3-6 months":
		priority["purchase_timeline"] = ScoreTimelineThreeToSix
	case "6-12 months":
		priority["purchase_timeline"] = ScoreTimelineSixToTwelve
	}

	if lead.Identity.Email != "" && lead.Identity.Phone != "" {
		priority["contact_complete"] = ScoreContactComplete
	}

	if len(lead.PropertyVision.AssetTypes) > 0 && lead.PropertyVision.BudgetRange != "" {
		priority["vision_filled"] = ScoreVisionFilled
	}

	switch lead.PropertyVision.BudgetRange {
	case "5Cr+":
		investment["budget_range"] = ScoreBudgetTopTier
	case "2Cr-5Cr":
		investment["budget_range"] = ScoreBudgetUpperMid
	case "1Cr-2Cr":
		investment["budget_range"] = ScoreBudgetMid
	case "50L-1Cr":
		investment["budget_range"] = ScoreBudgetEntry
	}

	switch lead.InvestmentPreferences.FundingType {
	case "Self-funded", "NRI Remittance":
		investment["funding_type"] = ScoreFundingSelf
	case "Home Loan", "Loan Against Property":
		investment["funding_type"] = ScoreFundingLoan
	}

	if lead.PropertyVision.PriorPurchaseCount > 0 {
		investment["repeat_buyer"] = ScoreRepeatBuyer
	}

	for _, purpose := range lead.PropertyVision.Purposes {
		if purpose == "Investment" {
			investment["investment_intent"] = ScoreInvestmentIntent
			break
		}
	}

	return &ScoreResponse{
		LeadID:              lead.ID,
		PriorityScore:       sum(priority),
		InvestmentScore:     sum(investment),
		PriorityBreakdown:   priority,
		InvestmentBreakdown: investment,
		CalculatedAt:        time.Now(),
	}
}

func sum(breakdown map[string]int) int {
	total := 0
	for _, v := range breakdown {
		total += v
	}
	return total
}
