package leadnote

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

var (
	adminActor = domain.Actor{UserID: 1, Role: models.RoleAdmin}
	agentActor = domain.Actor{UserID: 2, Role: models.RoleSalesAgent}
	otherAgent = domain.Actor{UserID: 3, Role: models.RoleSalesAgent}
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

	return NewService(&database.Client{DB: db}, logger.Default())
}

func seedLead(t *testing.T, svc *Service, agentID *uint) *models.Lead {
	t.Helper()
	lead := &models.Lead{
		Identity: models.LeadIdentity{FullName: "Seed", Email: "seed@example.com", Phone: "+911234567890"},
		System:   models.LeadSystem{LeadStatus: models.LeadStatusNew, AssignedAgentID: agentID},
	}
	lead.SyncDenormalized()
	require.NoError(t, svc.db.DB.Create(lead).Error)
	return lead
}

func TestCreateAndListNotes(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agentID := agentActor.UserID
	lead := seedLead(t, svc, &agentID)

	_, err := svc.Create(ctx, lead.ID, agentActor, NoteRequest{Body: "first call went well"})
	require.NoError(t, err)
	pinned, err := svc.Create(ctx, lead.ID, agentActor, NoteRequest{Body: "wants farmland", Pinned: true})
	require.NoError(t, err)

	notes, err := svc.List(ctx, lead.ID, agentActor)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, pinned.ID, notes[0].ID, "pinned note sorts first")
}

func TestCreateNoteValidation(t *testing.T) {
	svc := newTestService(t)
	lead := seedLead(t, svc, nil)

	_, err := svc.Create(context.Background(), lead.ID, adminActor, NoteRequest{Body: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestNoteAccessPolicy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agentID := agentActor.UserID
	lead := seedLead(t, svc, &agentID)

	_, err := svc.Create(ctx, lead.ID, otherAgent, NoteRequest{Body: "sneaky"})
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.List(ctx, lead.ID, otherAgent)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.List(ctx, lead.ID, adminActor)
	require.NoError(t, err)
}

func TestUpdateNoteOwnership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agentID := agentActor.UserID
	lead := seedLead(t, svc, &agentID)

	note, err := svc.Create(ctx, lead.ID, agentActor, NoteRequest{Body: "draft"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, note.ID, otherAgent, NoteRequest{Body: "hijacked"})
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	updated, err := svc.Update(ctx, note.ID, agentActor, NoteRequest{Body: "final", Pinned: true})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Body)
	assert.True(t, updated.Pinned)

	// Admin may edit anyone's note.
	_, err = svc.Update(ctx, note.ID, adminActor, NoteRequest{Body: "admin edit"})
	require.NoError(t, err)
}

func TestDeleteNote(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agentID := agentActor.UserID
	lead := seedLead(t, svc, &agentID)

	note, err := svc.Create(ctx, lead.ID, agentActor, NoteRequest{Body: "temp"})
	require.NoError(t, err)

	require.Error(t, svc.Delete(ctx, note.ID, otherAgent))
	require.NoError(t, svc.Delete(ctx, note.ID, agentActor))

	err = svc.Delete(ctx, note.ID, agentActor)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestNotesOnMissingLead(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.List(context.Background(), 9999, adminActor)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
