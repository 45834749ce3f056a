package leadlifecycle

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
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// newCachedServices builds a lifecycle service and a lead service sharing
// one database and one Redis, so a status write in one must be visible
// through a cached read in the other.
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

func TestUpdateStatusEvictsCachedLead(t *testing.T) {
	svc, leadSvc := newCachedServices(t)
	ctx := context.Background()
	lead := seedLead(t, svc, "+918888888881", nil)

	// Warm the cache with the stored status.
	cached, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.Equal(t, models.LeadStatusNew, cached.System.LeadStatus)

	_, err = svc.UpdateStatus(ctx, lead.ID, adminActor, UpdateStatusRequest{Status: models.LeadStatusQualified})
	require.NoError(t, err)

	fresh, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusQualified, fresh.System.LeadStatus)
}

func TestUpdateStatusEvictsCachedListings(t *testing.T) {
	svc, leadSvc := newCachedServices(t)
	ctx := context.Background()
	lead := seedLead(t, svc, "+918888888882", nil)

	filter := leads.ListFilter{Status: models.LeadStatusNew}
	page, err := leadSvc.List(ctx, filter, adminActor)
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)

	_, err = svc.UpdateStatus(ctx, lead.ID, adminActor, UpdateStatusRequest{Status: models.LeadStatusLost})
	require.NoError(t, err)

	page, err = leadSvc.List(ctx, filter, adminActor)
	require.NoError(t, err)
	assert.Empty(t, page.Leads)
}
