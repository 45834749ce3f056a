package leadscoring

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estatedesk/backoffice/pkg/cache"
	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

var adminActor = domain.Actor{UserID: 1, Role: models.RoleAdmin}

// newCachedServices builds a scoring service and a lead service sharing
// one database and one Redis.
func newCachedServices(t *testing.T) (*Service, *leads.Service) {
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

	mr := miniredis.RunT(t)
	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}

	client := &database.Client{DB: db}
	return NewService(client, cacheClient, logger.Default()),
		leads.NewService(client, cacheClient, logger.Default())
}

func TestCalculateScoreEvictsCachedLead(t *testing.T) {
	svc, leadSvc := newCachedServices(t)
	ctx := context.Background()

	lead := hotLead("+916060606061")
	require.NoError(t, svc.db.DB.Create(lead).Error)

	// Warm the cache before any score exists.
	cached, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.Zero(t, cached.System.PriorityScore)

	response, err := svc.CalculateScore(ctx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, 100, response.PriorityScore)

	fresh, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 100, fresh.System.PriorityScore)
	assert.Equal(t, 100, fresh.System.InvestmentScore)
}
