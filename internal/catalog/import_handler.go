package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SebasIsd/SistemaTech/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// POST /api/products/:id/lots/import
// Bulk lot intake from an uploaded .xlsx. Expected columns per row:
// quantity | entry date | unit cost | expiry date (optional). A header row
// is detected and skipped. All lots are created in one transaction; a bad
// row aborts the whole import so inventory never half-loads.
func ImportLotsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := c.ParamsInt("id")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "product not found")
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "file upload failed: "+err.Error())
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "only .xlsx files are accepted")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not open file")
		}
		defer file.Close()

		excelFile, err := excelize.OpenReader(file)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read Excel file: "+err.Error())
		}
		defer excelFile.Close()

		sheetList := excelFile.GetSheetList()
		if len(sheetList) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file has no sheets")
		}

		rows, err := excelFile.GetRows(sheetList[0])
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not read sheet")
		}
		if len(rows) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Excel file is empty")
		}

		startIndex := 0
		if len(rows[0]) > 0 {
			if _, ok := parseCellInt(rows[0][0]); !ok {
				// First row is a header.
				startIndex = 1
			}
		}

		lots := make([]models.Lot, 0, len(rows))
		for i := startIndex; i < len(rows); i++ {
			row := rows[i]
			if len(row) == 0 || trimCell(rowCell(row, 0)) == "" {
				continue
			}

			quantity, ok := parseCellInt(rowCell(row, 0))
			if !ok || quantity <= 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("row %d: quantity must be a positive whole number", i+1))
			}
			entryDate, ok := parseCellDate(rowCell(row, 1))
			if !ok {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("row %d: entry date must be 'YYYY-MM-DD'", i+1))
			}
			unitCost, ok := parseCellFloat(rowCell(row, 2))
			if !ok || unitCost < 0 {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("row %d: unit cost must be a non-negative number", i+1))
			}

			lot := models.Lot{
				ProductID:         uint(productID),
				EntryDate:         entryDate,
				Quantity:          quantity,
				AvailableQuantity: quantity,
				UnitCost:          unitCost,
			}
			if expiryStr := trimCell(rowCell(row, 3)); expiryStr != "" {
				expiry, ok := parseCellDate(expiryStr)
				if !ok {
					return fiber.NewError(fiber.StatusBadRequest,
						fmt.Sprintf("row %d: expiry date must be 'YYYY-MM-DD'", i+1))
				}
				lot.ExpiryDate = &expiry
			}
			lots = append(lots, lot)
		}

		if len(lots) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "no lot rows found in file")
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&lots).Error; err != nil {
				return err
			}
			return recomputeStockTotal(tx, uint(productID))
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not import lots")
		}

		recordActivity(c, db, "%d lots imported for product '%s'", len(lots), product.Name)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"product_id": productID,
			"imported":   len(lots),
		})
	}
}

func rowCell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}

func parseCellInt(s string) (int, bool) {
	s = trimCell(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	// Tolerate decimal-formatted whole numbers ("5.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int(f)) {
		return int(f), true
	}
	return 0, false
}

func parseCellFloat(s string) (float64, bool) {
	s = trimCell(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func parseCellDate(s string) (time.Time, bool) {
	s = trimCell(s)
	// Excel formats date cells differently depending on the cell style.
	for _, layout := range []string{"2006-01-02", "01-02-06", "1/2/06"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
