package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/estatedesk/backoffice/pkg/database"
	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

var adminActor = domain.Actor{UserID: 1, Role: models.RoleAdmin}

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

	client := &database.Client{DB: db}
	leadSvc := leads.NewService(client, nil, logger.Default())

	for i := 0; i < 3; i++ {
		payload := fmt.Sprintf(`{
			"identity": {"fullName": "Lead %d", "email": "l%d@example.com", "phone": "+9198765432%02d"}
		}`, i, i, i)
		_, err := leadSvc.Create(context.Background(), []byte(payload), adminActor)
		require.NoError(t, err)
	}

	return NewService(leadSvc, t.TempDir(), logger.Default())
}

func TestExportCSV(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Export(context.Background(), Request{Format: "csv"}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.LeadCount)

	path, err := svc.FilePath(resp.Filename)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus three rows")
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "Lead 0", records[1][1])
}

func TestExportExcel(t *testing.T) {
	svc := newTestService(t)

	resp, err := svc.Export(context.Background(), Request{Format: "excel"}, adminActor)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.LeadCount)
	assert.Equal(t, ".xlsx", filepath.Ext(resp.Filename))

	_, err = svc.FilePath(resp.Filename)
	require.NoError(t, err)
}

func TestExportInvalidFormat(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Export(context.Background(), Request{Format: "pdf"}, adminActor)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestFilePathRejectsTraversal(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.FilePath("../../etc/passwd")
	require.Error(t, err)

	_, err = svc.FilePath("missing.csv")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}
