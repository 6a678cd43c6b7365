package querybuilder

import (
	"reflect"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("*").From("fixtures").
		Where(
			Gte("date_key", "2025-06-15"),
			Eq("competition", "Senior Hurling League"),
			Like("venue", "%park%"),
		).
		OrderBy("date_key ASC", "time_text ASC").
		Limit(50).
		Offset(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT * FROM fixtures WHERE date_key >= ? AND competition = ? AND venue LIKE ? ORDER BY date_key ASC, time_text ASC LIMIT ? OFFSET ?"
	if query != want {
		t.Fatalf("unexpected query:\n got %q\nwant %q", query, want)
	}
	wantArgs := []any{"2025-06-15", "Senior Hurling League", "%park%", 50, 10}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelectBuilderRequiresTable(t *testing.T) {
	if _, _, err := Select("*").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsertModelWithSuffix(t *testing.T) {
	type row struct {
		DateText string `db:"date_text"`
		Venue    string `db:"venue"`
		Note     string
	}

	query, args, err := InsertModel("fixtures", row{DateText: "Sunday 15th Jun 2025", Venue: "Tullogher Park"},
		"ON CONFLICT (date_text) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO fixtures (date_text, venue) VALUES (?, ?) ON CONFLICT (date_text) DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\n got %q\nwant %q", query, want)
	}
	if len(args) != 2 || args[0] != "Sunday 15th Jun 2025" {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("fixtures").
		Set("venue", "City Grounds").
		Set("referee", "J. Murphy").
		Where(Eq("id", int64(7))).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE fixtures SET venue = ?, referee = ? WHERE id = ?"
	if query != want {
		t.Fatalf("unexpected query: %q", query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %#v", args)
	}
}
