package leadassignment

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

// newCachedServices builds an assignment service and a lead service
// sharing one database and one Redis.
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
	return NewService(client, cacheClient, nil, logger.Default()),
		leads.NewService(client, cacheClient, logger.Default())
}

func TestAssignEvictsCachedLead(t *testing.T) {
	svc, leadSvc := newCachedServices(t)
	ctx := context.Background()

	agent := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+917070707071")

	cached, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.Nil(t, cached.System.AssignedAgentID)

	_, err = svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: agent.ID})
	require.NoError(t, err)

	fresh, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.NotNil(t, fresh.System.AssignedAgentID)
	assert.Equal(t, agent.ID, *fresh.System.AssignedAgentID)
}

func TestUnassignEvictsCachedLead(t *testing.T) {
	svc, leadSvc := newCachedServices(t)
	ctx := context.Background()

	agent := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+917070707072")

	_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: agent.ID})
	require.NoError(t, err)

	cached, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.NotNil(t, cached.System.AssignedAgentID)

	_, err = svc.Unassign(ctx, lead.ID, adminActor)
	require.NoError(t, err)

	fresh, err := leadSvc.GetByID(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	assert.Nil(t, fresh.System.AssignedAgentID)
}
