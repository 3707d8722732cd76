package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNamedQueries_Sorted(t *testing.T) {
	qs := NamedQueries()
	if len(qs) != 6 {
		t.Fatalf("expected 6 queries, got %d", len(qs))
	}
	for i := 1; i < len(qs); i++ {
		if qs[i-1].Name >= qs[i].Name {
			t.Fatalf("queries not sorted: %s before %s", qs[i-1].Name, qs[i].Name)
		}
	}
	if got := namedQueries["by_stage"].Usage(); got != "by_stage <stage>" {
		t.Fatalf("unexpected usage %q", got)
	}
}

func TestFetchCustom_UnknownQuery(t *testing.T) {
	db := sampleTable()
	_, err := newTestRepo(db).FetchCustom(context.Background(), "DELETE FROM x")
	if !errors.Is(err, ErrUnknownQuery) {
		t.Fatalf("expected ErrUnknownQuery, got %v", err)
	}
	if len(db.calls) != 0 {
		t.Fatalf("unknown query reached the database")
	}
}

func TestFetchCustom_Arity(t *testing.T) {
	repo := newTestRepo(sampleTable())

	if _, err := repo.FetchCustom(context.Background(), "by_stage"); !errors.Is(err, ErrQueryArity) {
		t.Fatalf("expected ErrQueryArity, got %v", err)
	}
	if _, err := repo.FetchCustom(context.Background(), "count", "extra"); !errors.Is(err, ErrQueryArity) {
		t.Fatalf("expected ErrQueryArity, got %v", err)
	}
}

func TestFetchCustom_BindsArguments(t *testing.T) {
	db := sampleTable()
	res, err := newTestRepo(db).FetchCustom(context.Background(), "by_stage", "Identified")
	if err != nil {
		t.Fatalf("FetchCustom: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(res.Rows))
	}
	if len(res.Columns) != 43 || res.Columns[0] != "Bridge_Name" {
		t.Fatalf("unexpected columns %v", res.Columns)
	}

	call := db.calls[0]
	if !strings.Contains(call.sql, `WHERE "Stage" = $1`) || strings.Contains(call.sql, "Identified") {
		t.Fatalf("unexpected SQL: %s", call.sql)
	}
	if len(call.args) != 1 || call.args[0] != "Identified" {
		t.Fatalf("argument not bound: %v", call.args)
	}
	if !call.hasDeadline {
		t.Fatalf("query ran without a deadline")
	}
}

func TestFetchCustom_Statements(t *testing.T) {
	table := `"public"."B2P_oct_2018"`
	for name, want := range map[string]string{
		"count":          `SELECT count(*) AS total FROM ` + table,
		"count_by_stage": `GROUP BY "Stage"`,
		"project_codes":  `SELECT DISTINCT "Project_Code"`,
		"rejected":       `WHERE "Rejection_Reason" IS NOT NULL`,
	} {
		got := namedQueries[name].build(table, "")
		if !strings.Contains(got, want) {
			t.Fatalf("%s: expected %q in %q", name, want, got)
		}
	}
}

func TestFetchCustom_EmptyResultKeepsColumns(t *testing.T) {
	db := sampleTable()
	db.reusedFields = []string{"column_name"}

	res, err := newTestRepo(db).FetchCustom(context.Background(), "by_stage", "Abandoned")
	if err != nil {
		t.Fatalf("FetchCustom: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(res.Rows))
	}
	if len(res.Columns) != 43 || res.Columns[0] != "Bridge_Name" {
		t.Fatalf("columns taken from a reused connection: %v", res.Columns)
	}
}
