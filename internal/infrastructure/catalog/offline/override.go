package offline

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kmorita/repair-guide-engine/internal/core/domain"
)

// Override spreadsheet layout: first sheet, header row, then one guide per
// row with columns ID, Title, Device, Category, Difficulty, TimeRequired,
// Summary, Tools, Parts. Tools and Parts are semicolon-separated. Rows with
// an ID already in the embedded set replace that guide (steps kept from the
// embedded version); new IDs append.
func (c *Catalog) applyOverride(path string) error {
	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open override workbook: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	if sheet == "" {
		return fmt.Errorf("override workbook has no sheets")
	}
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read override sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil
	}

	replaced, appended := 0, 0
	for i, row := range rows[1:] {
		guide, err := parseOverrideRow(row)
		if err != nil {
			c.logger.Warn("override row skipped",
				slog.Int("row", i+2),
				slog.String("error", err.Error()))
			continue
		}

		if idx := c.indexOf(guide.ID); idx >= 0 {
			guide.Steps = c.guides[idx].Steps
			c.guides[idx] = guide
			replaced++
		} else {
			c.guides = append(c.guides, guide)
			appended++
		}
	}

	c.logger.Info("offline catalog override applied",
		slog.Int("replaced", replaced),
		slog.Int("appended", appended))
	return nil
}

func (c *Catalog) indexOf(guideID int) int {
	for i, guide := range c.guides {
		if guide.ID == guideID {
			return i
		}
	}
	return -1
}

func parseOverrideRow(row []string) (domain.Guide, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	id, err := strconv.Atoi(cell(0))
	if err != nil || id <= 0 {
		return domain.Guide{}, fmt.Errorf("invalid guide id %q", cell(0))
	}
	title := cell(1)
	if title == "" {
		return domain.Guide{}, fmt.Errorf("guide %d has empty title", id)
	}

	return domain.Guide{
		ID:           id,
		Title:        title,
		Device:       cell(2),
		Category:     cell(3),
		Difficulty:   cell(4),
		TimeRequired: cell(5),
		Summary:      cell(6),
		Tools:        splitList(cell(7)),
		Parts:        splitList(cell(8)),
	}, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
