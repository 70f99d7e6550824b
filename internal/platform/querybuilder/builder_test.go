package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("user_id", "total_points").
		From("weekly_stats").
		Where(Eq("tournament_id", "t1"), Eq("week", 3)).
		OrderBy("total_points DESC").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT user_id, total_points FROM weekly_stats WHERE tournament_id = $1 AND week = $2 ORDER BY total_points DESC LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderInCondition(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(In("id", []any{"p1", "p2"})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE id IN ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "p2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("players").
		Where(In("id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM players WHERE 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("tournaments").
		Columns("id", "name").
		Values("t1", "Premier Cup").
		Suffix("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO tournaments (id, name) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "Premier Cup" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderMultiRow(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("id", "name").
		Values("p1", "V Kohli").
		Values("p2", "R Sharma").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (id, name) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("weekly_stats").
		Set("rank", 1).
		SetExpr("calculated_at", "NOW()").
		Where(Eq("stat_key", "u1_t1_3")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE weekly_stats SET rank = $1, calculated_at = NOW() WHERE stat_key = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 1 || args[1] != "u1_t1_3" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderSetExprArgs(t *testing.T) {
	query, args, err := Update("weekly_stats").
		SetExpr("total_points", "total_points + ?", 50.0).
		Where(Eq("stat_key", "u1_t1_3"), Expr("NOT cap_points_awarded")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE weekly_stats SET total_points = total_points + $1 WHERE stat_key = $2 AND NOT cap_points_awarded"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != 50.0 || args[1] != "u1_t1_3" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("player_performances").
		Where(Eq("tournament_id", "t1"), Eq("week", 2)).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}

	wantQuery := "DELETE FROM player_performances WHERE tournament_id = $1 AND week = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := DeleteFrom("player_performances").ToSQL(); err == nil {
		t.Fatalf("expected error for delete without where clause")
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID     string `db:"id"`
		Name   string `db:"name"`
		Points float64
	}

	query, args, err := InsertModel("players", row{ID: "p1", Name: "V Kohli"}, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (id, name) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "V Kohli" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
