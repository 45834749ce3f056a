package leadassignment

import (
	"context"
	"fmt"
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

type fakeNotifier struct {
	calls []uint // agent ids notified
}

func (f *fakeNotifier) NotifyAssignment(_ context.Context, agent models.User, _ models.Lead) error {
	f.calls = append(f.calls, agent.ID)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeNotifier) {
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

	notifier := &fakeNotifier{}
	return NewService(&database.Client{DB: db}, nil, notifier, logger.Default()), notifier
}

var seedSeq int

func seedUser(t *testing.T, svc *Service, role string, active bool) *models.User {
	t.Helper()
	seedSeq++
	user := &models.User{
		Name:   fmt.Sprintf("user-%s", role),
		Email:  fmt.Sprintf("u%d@example.com", seedSeq),
		Role:   role,
		Active: active,
	}
	require.NoError(t, svc.db.DB.Create(user).Error)
	return user
}

func seedLead(t *testing.T, svc *Service, phone string) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		Identity: models.LeadIdentity{FullName: "Seed", Email: "seed@example.com", Phone: phone},
		System:   models.LeadSystem{LeadStatus: models.LeadStatusNew},
	}
	lead.SyncDenormalized()
	require.NoError(t, svc.db.DB.Create(lead).Error)
	return lead
}

var adminActor = domain.Actor{UserID: 100, Role: models.RoleAdmin}

func TestAssignHappyPath(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	agent := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+911111111111")

	got, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: agent.ID, Reason: "territory"})
	require.NoError(t, err)
	require.NotNil(t, got.System.AssignedAgentID)
	assert.Equal(t, agent.ID, *got.System.AssignedAgentID)

	history, err := svc.GetHistory(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "manual", history[0].Type)
	assert.True(t, history[0].Active)
	assert.Equal(t, "territory", history[0].Reason)

	assert.Equal(t, []uint{agent.ID}, notifier.calls)
}

func TestAssignRotatesActiveFlag(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := seedUser(t, svc, models.RoleSalesAgent, true)
	second := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+912222222222")

	_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: first.ID})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: second.ID})
	require.NoError(t, err)

	history, err := svc.GetHistory(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	require.Len(t, history, 2)

	var activeCount int
	for _, h := range history {
		if h.Active {
			activeCount++
			assert.Equal(t, second.ID, h.AgentID)
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestAssignEligibility(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	lead := seedLead(t, svc, "+913333333333")

	t.Run("unknown agent", func(t *testing.T) {
		_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: 9999})
		require.Error(t, err)
		assert.True(t, domain.IsAgentNotEligible(err))
	})

	t.Run("inactive agent", func(t *testing.T) {
		inactive := seedUser(t, svc, models.RoleSalesAgent, false)
		_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: inactive.ID})
		require.Error(t, err)
		assert.True(t, domain.IsAgentNotEligible(err))
	})

	t.Run("non-admin caller", func(t *testing.T) {
		agent := seedUser(t, svc, models.RoleSalesAgent, true)
		actor := domain.Actor{UserID: agent.ID, Role: models.RoleSalesAgent}
		_, err := svc.Assign(ctx, lead.ID, actor, AssignRequest{AgentID: agent.ID})
		require.Error(t, err)
		assert.True(t, domain.IsForbidden(err))
	})
}

func TestUnassign(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	agent := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+914444444444")

	_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: agent.ID})
	require.NoError(t, err)

	got, err := svc.Unassign(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	assert.Nil(t, got.System.AssignedAgentID)

	history, err := svc.GetHistory(ctx, lead.ID, adminActor)
	require.NoError(t, err)
	for _, h := range history {
		assert.False(t, h.Active)
	}
}

func TestAutoAssignPicksLeastLoaded(t *testing.T) {
	svc, notifier := newTestService(t)
	ctx := context.Background()

	busy := seedUser(t, svc, models.RoleSalesAgent, true)
	idle := seedUser(t, svc, models.RoleSalesAgent, true)

	l1 := seedLead(t, svc, "+915555555551")
	l2 := seedLead(t, svc, "+915555555552")
	l3 := seedLead(t, svc, "+915555555553")

	_, err := svc.Assign(ctx, l1.ID, adminActor, AssignRequest{AgentID: busy.ID})
	require.NoError(t, err)
	_, err = svc.Assign(ctx, l2.ID, adminActor, AssignRequest{AgentID: busy.ID})
	require.NoError(t, err)

	got, err := svc.AutoAssign(ctx, l3.ID, adminActor)
	require.NoError(t, err)
	require.NotNil(t, got.System.AssignedAgentID)
	assert.Equal(t, idle.ID, *got.System.AssignedAgentID)

	assert.Contains(t, notifier.calls, idle.ID)
}

func TestAutoAssignNoAgents(t *testing.T) {
	svc, _ := newTestService(t)
	lead := seedLead(t, svc, "+916666666666")

	_, err := svc.AutoAssign(context.Background(), lead.ID, adminActor)
	require.Error(t, err)
	assert.True(t, domain.IsAgentNotEligible(err))
}

func TestGetAgentLeadsScoping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	agent := seedUser(t, svc, models.RoleSalesAgent, true)
	other := seedUser(t, svc, models.RoleSalesAgent, true)
	lead := seedLead(t, svc, "+917777777777")

	_, err := svc.Assign(ctx, lead.ID, adminActor, AssignRequest{AgentID: agent.ID})
	require.NoError(t, err)

	own, err := svc.GetAgentLeads(ctx, agent.ID, domain.Actor{UserID: agent.ID, Role: models.RoleSalesAgent})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = svc.GetAgentLeads(ctx, agent.ID, domain.Actor{UserID: other.ID, Role: models.RoleSalesAgent})
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	all, err := svc.GetAgentLeads(ctx, agent.ID, adminActor)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
