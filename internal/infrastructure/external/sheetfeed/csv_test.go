package sheetfeed

import (
	"testing"
)

const performanceCSV = `Week,Match ID,Player,Role,Total Points
1,m-101,Virat Kohli,Batsman,82.5
1,m-101,Jasprit Bumrah,Bowler,55
2,m-102,Virat Kohli,Batsman,12
1,m-101,,Batsman,10
`

const capPointsCSV = `Week,Orange Cap,Purple Cap
1,Virat Kohli,"Jasprit Bumrah, Rashid Khan"
1,Virat Kohli,
2,Travis Head,Adam Zampa
`

func TestMapPerformanceRows_FiltersWeekAndKeepsRaw(t *testing.T) {
	t.Parallel()

	table, err := parseCSVTable([]byte(performanceCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	rows, err := mapPerformanceRows(table, 1)
	if err != nil {
		t.Fatalf("map rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 week-1 rows, got %d", len(rows))
	}
	if rows[0].PlayerName != "Virat Kohli" || rows[0].TotalPoints != 82.5 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[0].MatchID != "m-101" {
		t.Fatalf("unexpected match id: %q", rows[0].MatchID)
	}
	if rows[0].Raw["Role"] != "Batsman" {
		t.Fatalf("expected extra columns kept in Raw, got %v", rows[0].Raw)
	}
}

func TestMapPerformanceRows_HeaderAliases(t *testing.T) {
	t.Parallel()

	table, err := parseCSVTable([]byte("week,player_name,points\n1,Rohit Sharma,44\n"))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	rows, err := mapPerformanceRows(table, 1)
	if err != nil {
		t.Fatalf("map rows: %v", err)
	}
	if len(rows) != 1 || rows[0].PlayerName != "Rohit Sharma" || rows[0].TotalPoints != 44 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestMapPerformanceRows_MissingColumn(t *testing.T) {
	t.Parallel()

	table, err := parseCSVTable([]byte("Week,Player\n1,Someone\n"))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if _, err := mapPerformanceRows(table, 1); err == nil {
		t.Fatalf("expected error for missing Total Points column")
	}
}

func TestMapCapHolders_SplitsAndDeduplicates(t *testing.T) {
	t.Parallel()

	table, err := parseCSVTable([]byte(capPointsCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}

	holders, err := mapCapHolders(table, 1)
	if err != nil {
		t.Fatalf("map cap holders: %v", err)
	}
	if len(holders.OrangeCap) != 1 || holders.OrangeCap[0] != "Virat Kohli" {
		t.Fatalf("unexpected orange cap holders: %v", holders.OrangeCap)
	}
	if len(holders.PurpleCap) != 2 || holders.PurpleCap[1] != "Rashid Khan" {
		t.Fatalf("unexpected purple cap holders: %v", holders.PurpleCap)
	}
}

func TestParseCSVTable_EmptyBody(t *testing.T) {
	t.Parallel()

	if _, err := parseCSVTable(nil); err == nil {
		t.Fatalf("expected error for empty tab")
	}
}
