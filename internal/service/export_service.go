package service

import (
	"bytes"
	"context"
	"fmt"

	"bouw-backoffice/internal/repository"
	"bouw-backoffice/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

const stockSheet = "Voorraad"

type ExportService interface {
	// StockWorkbook renders the stock of every location as an XLSX file.
	StockWorkbook(ctx context.Context) ([]byte, error)
}

type exportService struct {
	stockRepo repository.StockRepository
}

func NewExportService(sRepo repository.StockRepository) ExportService {
	return &exportService{stockRepo: sRepo}
}

func (s *exportService) StockWorkbook(ctx context.Context) ([]byte, error) {
	rows, err := s.stockRepo.ListAll(ctx)
	if err != nil {
		return nil, apperror.Store(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", stockSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Locatie", "Artikelnummer", "Product", "Materiaalgroep", "Eenheid", "Voorraad", "Minimum"}
	if err := f.SetSheetRow(stockSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		qty, _ := r.Quantity.Float64()
		minStock, _ := r.MinStock.Float64()
		values := []interface{}{r.LocationName, r.SKU, r.ProductName, r.Category, r.Unit, qty, minStock}
		if err := f.SetSheetRow(stockSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(stockSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
