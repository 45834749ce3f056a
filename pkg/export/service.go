package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/estatedesk/backoffice/pkg/domain"
	"github.com/estatedesk/backoffice/pkg/leads"
	"github.com/estatedesk/backoffice/pkg/logger"
	"github.com/estatedesk/backoffice/pkg/models"
)

// Service handles lead exports to downloadable files.
type Service struct {
	leadService *leads.Service
	storagePath string
	log         logger.Logger
}

// NewService creates a new export service.
func NewService(leadService *leads.Service, storagePath string, log logger.Logger) *Service {
	os.MkdirAll(storagePath, 0o755)

	return &Service{
		leadService: leadService,
		storagePath: storagePath,
		log:         log,
	}
}

// Request selects what to export and in which format.
type Request struct {
	Format string           `json:"format" validate:"required,oneof=csv excel"`
	Filter leads.ListFilter `json:"filter"`
}

// Response describes the generated file.
type Response struct {
	Filename  string    `json:"filename"`
	LeadCount int       `json:"leadCount"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"createdAt"`
}

const exportPageSize = 100

// Export writes the selected leads to a file under the storage path and
// returns its name. The actor's access policy applies, so agents export
// only their own book.
func (s *Service) Export(ctx context.Context, req Request, actor domain.Actor) (*Response, error) {
	if req.Format != "csv" && req.Format != "excel" {
		return nil, domain.NewValidationError("format must be csv or excel")
	}

	var all []models.Lead
	filter := req.Filter
	filter.Limit = exportPageSize
	for page := 1; ; page++ {
		filter.Page = page
		result, err := s.leadService.List(ctx, filter, actor)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Leads...)
		if !result.Pagination.HasNext {
			break
		}
	}

	ext := "csv"
	if req.Format == "excel" {
		ext = "xlsx"
	}
	filename := fmt.Sprintf("leads-%s.%s", time.Now().Format("20060102-150405"), ext)
	path := filepath.Join(s.storagePath, filename)

	var err error
	if req.Format == "csv" {
		err = s.generateCSV(path, all)
	} else {
		err = s.generateExcel(path, all)
	}
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.log.Info("export created", "file", filename, "leads", len(all), "by", actor.UserID)

	return &Response{
		Filename:  filename,
		LeadCount: len(all),
		Format:    req.Format,
		CreatedAt: time.Now(),
	}, nil
}

// FilePath resolves an export filename to its path on disk, rejecting
// anything that escapes the storage directory.
func (s *Service) FilePath(filename string) (string, error) {
	if filename != filepath.Base(filename) {
		return "", domain.NewBadRequestError("invalid export filename")
	}
	path := filepath.Join(s.storagePath, filename)
	if _, err := os.Stat(path); err != nil {
		return "", domain.NewNotFoundError("export file")
	}
	return path, nil
}

var exportHeader = []string{
	"ID", "Name", "Email", "Phone", "Status", "Assigned Agent ID",
	"Priority Score", "Investment Score", "Budget Range",
	"Purchase Timeline", "Journey Stage", "Asset Types",
	"Buying Regions", "Created At",
}

func exportRow(lead *models.Lead) []string {
	agent := ""
	if lead.System.AssignedAgentID != nil {
		agent = strconv.FormatUint(uint64(*lead.System.AssignedAgentID), 10)
	}
	return []string{
		strconv.FormatUint(uint64(lead.ID), 10),
		lead.Identity.FullName,
		lead.Identity.Email,
		lead.Identity.Phone,
		lead.System.LeadStatus,
		agent,
		strconv.Itoa(lead.System.PriorityScore),
		strconv.Itoa(lead.System.InvestmentScore),
		lead.PropertyVision.BudgetRange,
		lead.PropertyVision.PurchaseTimeline,
		lead.PropertyVision.JourneyStage,
		strings.Join(lead.PropertyVision.AssetTypes, "; "),
		strings.Join(lead.LocationPreferences.BuyingRegions, "; "),
		lead.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Service) generateCSV(path string, rows []models.Lead) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := writer.Write(exportRow(&rows[i])); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) generateExcel(path string, rows []models.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Leads"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, title)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i := range rows {
		for col, value := range exportRow(&rows[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	return f.SaveAs(path)
}
