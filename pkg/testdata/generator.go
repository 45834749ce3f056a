package testdata

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/leadscoring"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Generator seeds the database with plausible fake records for local
// development and demos. Never wire it into production paths.
type Generator struct {
	db *database.Client
}

// NewGenerator creates a test data generator.
func NewGenerator(db *database.Client) *Generator {
	return &Generator{db: db}
}

func pick(key string) string {
	options := leads.Options(key)
	value := options[gofakeit.Number(0, len(options)-1)]
	if value == leads.OptionOther {
		// Keep generated records valid without details fields.
		value = options[0]
	}
	return value
}

func pickMany(key string, max int) []string {
	count := gofakeit.Number(1, max)
	seen := map[string]bool{}
	var out []string
	for i := 0; i < count; i++ {
		v := pick(key)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Lead builds one fake lead with a unique phone number.
func (g *Generator) Lead(seq int) *models.Lead {
	lead := &models.Lead{
		Identity: models.LeadIdentity{
			FullName:        gofakeit.Name(),
			Email:           gofakeit.Email(),
			Phone:           fmt.Sprintf("+9198%08d", seq),
			ResidencyStatus: pick("residencyStatus"),
			DiscoverySource: pick("discoverySource"),
		},
		Demographics: models.LeadDemographics{
			AgeGroup:          pick("ageGroup"),
			Professions:       pickMany("profession", 2),
			HouseholdSize:     pick("householdSize"),
			AnnualIncomeRange: pick("annualIncomeRange"),
		},
		PropertyVision: models.LeadPropertyVision{
			PriorPurchaseCount: gofakeit.Number(0, 4),
			Purposes:           pickMany("purpose", 2),
			AssetTypes:         pickMany("assetType", 3),
			JourneyStage:       pick("journeyStage"),
			PurchaseTimeline:   pick("purchaseTimeline"),
			BudgetRange:        pick("budgetRange"),
		},
		InvestmentPreferences: models.LeadInvestmentPreferences{
			OwnershipStructure: pick("ownershipStructure"),
			FundingType:        pick("fundingType"),
		},
		LocationPreferences: models.LeadLocationPreferences{
			CurrentLocation: models.CurrentLocation{
				City:    gofakeit.City(),
				State:   gofakeit.State(),
				Country: "India",
			},
			BuyingRegions: pickMany("buyingRegion", 2),
		},
		System: models.LeadSystem{LeadStatus: models.LeadStatusNew},
	}
	leads.Normalize(lead)
	lead.SyncDenormalized()

	score := leadscoring.Score(lead)
	lead.System.PriorityScore = score.PriorityScore
	lead.System.InvestmentScore = score.InvestmentScore

	return lead
}

// SeedLeads inserts count fake leads.
func (g *Generator) SeedLeads(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		if err := g.db.DB.WithContext(ctx).Create(g.Lead(i)).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAgents inserts count fake active sales agents with the given
// password hash.
func (g *Generator) SeedAgents(ctx context.Context, count int, passwordHash string) error {
	for i := 0; i < count; i++ {
		agent := &models.User{
			Name:         gofakeit.Name(),
			Email:        fmt.Sprintf("agent%d@example.com", i),
			PasswordHash: passwordHash,
			Role:         models.RoleSalesAgent,
			Active:       true,
		}
		if err := g.db.DB.WithContext(ctx).Create(agent).Error; err != nil {
			return err
		}
	}
	return nil
}
