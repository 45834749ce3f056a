package leadscoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	return NewService(&database.Client{DB: db}, nil, logger.Default())
}

func hotLead(phone string) *models.Lead {
	lead := &models.Lead{
		Identity: models.LeadIdentity{
			FullName: "Hot Lead",
			Email:    "hot@example.com",
			Phone:    phone,
		},
		PropertyVision: models.LeadPropertyVision{
			JourneyStage:       "Ready to Buy",
			PurchaseTimeline:   "Immediate",
			BudgetRange:        "5Cr+",
			AssetTypes:         []string{"Farmland + Villa"},
			Purposes:           []string{"Investment"},
			PriorPurchaseCount: 2,
		},
		InvestmentPreferences: models.LeadInvestmentPreferences{
			FundingType: "Self-funded",
		},
	}
	lead.SyncDenormalized()
	return lead
}

func TestScoreHotLead(t *testing.T) {
	response := Score(hotLead("+911111111111"))

	assert.Equal(t, 100, response.PriorityScore)
	assert.Equal(t, 100, response.InvestmentScore)

	assert.Equal(t, ScoreJourneyReadyToBuy, response.PriorityBreakdown["journey_stage"])
	assert.Equal(t, ScoreTimelineImmediate, response.PriorityBreakdown["purchase_timeline"])
	assert.Equal(t, ScoreContactComplete, response.PriorityBreakdown["contact_complete"])
	assert.Equal(t, ScoreVisionFilled, response.PriorityBreakdown["vision_filled"])

	assert.Equal(t, ScoreBudgetTopTier, response.InvestmentBreakdown["budget_range"])
	assert.Equal(t, ScoreFundingSelf, response.InvestmentBreakdown["funding_type"])
	assert.Equal(t, ScoreRepeatBuyer, response.InvestmentBreakdown["repeat_buyer"])
	assert.Equal(t, ScoreInvestmentIntent, response.InvestmentBreakdown["investment_intent"])
}

func TestScoreEmptyLead(t *testing.T) {
	lead := &models.Lead{
		Identity: models.LeadIdentity{FullName: "Bare", Phone: "+912222222222"},
	}
	response := Score(lead)

	// Phone without email earns no contact points.
	assert.Equal(t, 0, response.PriorityScore)
	assert.Equal(t, 0, response.InvestmentScore)
	assert.Empty(t, response.PriorityBreakdown)
	assert.Empty(t, response.InvestmentBreakdown)
}

func TestScorePartialAnswers(t *testing.T) {
	lead := &models.Lead{
		Identity: models.LeadIdentity{
			FullName: "Partial",
			Email:    "p@example.com",
			Phone:    "+913333333333",
		},
		PropertyVision: models.LeadPropertyVision{
			JourneyStage:     "Comparing Options",
			PurchaseTimeline: "3-6 months",
			BudgetRange:      "50L-1Cr",
		},
		InvestmentPreferences: models.LeadInvestmentPreferences{
			FundingType: "Home Loan",
		},
	}

	response := Score(lead)
	assert.Equal(t, ScoreJourneyComparing+ScoreTimelineThreeToSix+ScoreContactComplete, response.PriorityScore)
	assert.Equal(t, ScoreBudgetEntry+ScoreFundingLoan, response.InvestmentScore)
}

func TestCalculateScorePersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	lead := hotLead("+914444444444")
	require.NoError(t, svc.db.DB.Create(lead).Error)

	response, err := svc.CalculateScore(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, response.PriorityScore)

	var stored models.Lead
	require.NoError(t, svc.db.DB.First(&stored, lead.ID).Error)
	assert.Equal(t, 100, stored.System.PriorityScore)
	assert.Equal(t, 100, stored.System.InvestmentScore)
}

func TestCalculateScoreNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.CalculateScore(context.Background(), 9999)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRecalculateAll(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	a := hotLead("+915555555551")
	require.NoError(t, svc.db.DB.Create(a).Error)

	b := &models.Lead{Identity: models.LeadIdentity{FullName: "Cold", Phone: "+915555555552"}}
	b.SyncDenormalized()
	require.NoError(t, svc.db.DB.Create(b).Error)

	updated, err := svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	// Second run is a no-op.
	updated, err = svc.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
