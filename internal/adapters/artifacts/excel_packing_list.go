package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/platform/obs"
	"order-fulfillment-service/internal/ports"
)

// ExcelPackingList implements the ArtifactGenerator port by writing a
// packing-list workbook to a local directory. The file name doubles as the
// artifact reference stored on the approved order.
type ExcelPackingList struct {
	Dir string
}

func NewExcelPackingList(dir string) (*ExcelPackingList, error) {
	if dir == "" {
		return nil, errors.New("packing list generator: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("packing list generator: create dir %q: %w", dir, err)
	}
	return &ExcelPackingList{Dir: dir}, nil
}

var _ ports.ArtifactGenerator = (*ExcelPackingList)(nil)

const sheetName = "Packing List"

func (g *ExcelPackingList) GenerateAndStore(ctx context.Context, req ports.ArtifactRequest) (_ string, err error) {
	defer obs.Time(ctx, "artifacts.GenerateAndStore")(&err)

	if req.State == nil {
		return "", errors.New("generate packing list: state is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("generate packing list: new sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return "", fmt.Errorf("generate packing list: header style: %w", err)
	}

	f.SetCellValue(sheetName, "A1", "Order")
	f.SetCellValue(sheetName, "B1", req.State.OrderKey)
	row := 2
	if req.Content != nil {
		f.SetCellValue(sheetName, "A2", "Client")
		f.SetCellValue(sheetName, "B2", req.Content.Client.Name)
		f.SetCellValue(sheetName, "A3", "Ship to")
		f.SetCellValue(sheetName, "B3", formatAddress(req.Content.ShipTo))
		row = 4
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Boxes declared")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), req.State.DeclaredBoxCount)
	row += 2

	headers := []string{"Box", "Article", "Description", "Picked", "Target"}
	for i, h := range headers {
		cell := fmt.Sprintf("%s%d", string(rune('A'+i)), row)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}
	row++

	for _, box := range req.State.PackingList {
		codes := make([]string, 0, len(box.Items))
		for code := range box.Items {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		for _, code := range codes {
			desc := ""
			target := 0
			if req.Content != nil {
				if line, ok := req.Content.Line(code); ok {
					desc = line.Description
					target = line.TargetQuantity()
				}
			}

			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), box.ID)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), code)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), desc)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), box.Items[code])
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), target)
			row++
		}
	}

	for i := range headers {
		col := string(rune('A' + i))
		f.SetColWidth(sheetName, col, col, 18)
	}
	f.DeleteSheet("Sheet1")

	name := fmt.Sprintf("packinglist_%s_%d.xlsx", sanitizeKey(req.State.OrderKey), time.Now().UTC().Unix())
	path := filepath.Join(g.Dir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("generate packing list: save %q: %w: %w", path, domain.ErrUpstreamUnavailable, err)
	}

	return name, nil
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, key)
}

func formatAddress(a domain.Address) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Street, a.PostalCode, a.Locality, a.Province} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
