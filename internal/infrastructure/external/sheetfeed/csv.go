package sheetfeed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/crickarena/fantasy-cricket/internal/usecase"
)

// csvTable is a parsed tab: the original header row plus data rows, with
// column lookup by normalized header name.
type csvTable struct {
	headers []string
	index   map[string]int
	rows    [][]string
}

func parseCSVTable(body []byte) (csvTable, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err == io.EOF {
		return csvTable{}, fmt.Errorf("sheet tab is empty")
	}
	if err != nil {
		return csvTable{}, fmt.Errorf("read header row: %w", err)
	}

	table := csvTable{
		headers: make([]string, len(headers)),
		index:   make(map[string]int, len(headers)),
	}
	for i, header := range headers {
		header = strings.TrimSpace(header)
		table.headers[i] = header
		key := normalizeHeader(header)
		if key == "" {
			continue
		}
		if _, exists := table.index[key]; !exists {
			table.index[key] = i
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return csvTable{}, fmt.Errorf("read data row: %w", err)
		}
		if isBlankRow(record) {
			continue
		}
		table.rows = append(table.rows, record)
	}

	return table, nil
}

// column resolves the first header whose normalized name matches one of the
// aliases. The sheet has drifted between "Player" and "Player Name" over
// seasons, so every lookup carries its historical spellings.
func (t csvTable) column(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := t.index[normalizeHeader(alias)]; ok {
			return idx, true
		}
	}
	return 0, false
}

func (t csvTable) cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func mapPerformanceRows(table csvTable, week int) ([]usecase.SheetPerformanceRow, error) {
	weekIdx, ok := table.column("Week")
	if !ok {
		return nil, fmt.Errorf("missing Week column")
	}
	playerIdx, ok := table.column("Player", "Player Name")
	if !ok {
		return nil, fmt.Errorf("missing Player column")
	}
	pointsIdx, ok := table.column("Total Points", "Points")
	if !ok {
		return nil, fmt.Errorf("missing Total Points column")
	}
	matchIdx, hasMatch := table.column("Match ID", "Match")

	rows := make([]usecase.SheetPerformanceRow, 0, len(table.rows))
	for i, record := range table.rows {
		rowWeek, err := strconv.Atoi(table.cell(record, weekIdx))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse week %q: %w", i+2, table.cell(record, weekIdx), err)
		}
		if rowWeek != week {
			continue
		}

		playerName := table.cell(record, playerIdx)
		if playerName == "" {
			continue
		}

		points, err := strconv.ParseFloat(table.cell(record, pointsIdx), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: parse total points %q: %w", i+2, table.cell(record, pointsIdx), err)
		}

		row := usecase.SheetPerformanceRow{
			Week:        rowWeek,
			PlayerName:  playerName,
			TotalPoints: points,
			Raw:         make(map[string]string, len(table.headers)),
		}
		if hasMatch {
			row.MatchID = table.cell(record, matchIdx)
		}
		for col, header := range table.headers {
			if header == "" {
				continue
			}
			row.Raw[header] = table.cell(record, col)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func mapCapHolders(table csvTable, week int) (usecase.SheetCapHolders, error) {
	weekIdx, ok := table.column("Week")
	if !ok {
		return usecase.SheetCapHolders{}, fmt.Errorf("missing Week column")
	}
	orangeIdx, hasOrange := table.column("Orange Cap", "Orange")
	purpleIdx, hasPurple := table.column("Purple Cap", "Purple")
	if !hasOrange && !hasPurple {
		return usecase.SheetCapHolders{}, fmt.Errorf("missing Orange Cap and Purple Cap columns")
	}

	holders := usecase.SheetCapHolders{Week: week}
	for i, record := range table.rows {
		rowWeek, err := strconv.Atoi(table.cell(record, weekIdx))
		if err != nil {
			return usecase.SheetCapHolders{}, fmt.Errorf("row %d: parse week %q: %w", i+2, table.cell(record, weekIdx), err)
		}
		if rowWeek != week {
			continue
		}
		if hasOrange {
			holders.OrangeCap = appendNames(holders.OrangeCap, table.cell(record, orangeIdx))
		}
		if hasPurple {
			holders.PurpleCap = appendNames(holders.PurpleCap, table.cell(record, purpleIdx))
		}
	}

	return holders, nil
}

// appendNames splits a cell on commas and semicolons, keeping each distinct
// non-empty name once.
func appendNames(existing []string, cell string) []string {
	for _, part := range strings.FieldsFunc(cell, func(r rune) bool { return r == ',' || r == ';' }) {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		duplicate := false
		for _, have := range existing {
			if strings.EqualFold(have, name) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			existing = append(existing, name)
		}
	}
	return existing
}

func normalizeHeader(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isBlankRow(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
