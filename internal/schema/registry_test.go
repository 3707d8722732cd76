package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestDefault_Layout(t *testing.T) {
	r := Default()

	if r.Len() != 43 {
		t.Fatalf("expected 43 columns, got %d", r.Len())
	}
	cols := r.Columns()
	if cols[0] != "Bridge_Name" || cols[1] != "Project_Code" {
		t.Fatalf("unexpected leading columns: %v", cols[:2])
	}
	if cols[len(cols)-1] != "Senior_Engineering_Review_Conducted" {
		t.Fatalf("unexpected last column: %s", cols[len(cols)-1])
	}
	if i, ok := r.Index("Project_Code"); !ok || i != 1 {
		t.Fatalf("Project_Code index: got %d, %v", i, ok)
	}
}

func TestColumns_ReturnsCopy(t *testing.T) {
	r := Default()
	cols := r.Columns()
	cols[0] = "mutated"

	if r.Columns()[0] != "Bridge_Name" {
		t.Fatalf("registry mutated through Columns()")
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("expected error for empty registry")
	}
	if _, err := New([]string{"a", " "}); err == nil {
		t.Fatalf("expected error for blank column")
	}
	if _, err := New([]string{"a", "b", "a"}); err == nil {
		t.Fatalf("expected error for duplicate column")
	}
}

func TestSelectList_QuotesIdentifiers(t *testing.T) {
	r, err := New([]string{"Project_Code", `odd"name`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	want := `"Project_Code", "odd""name"`
	if got := r.SelectList(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if !strings.Contains(Default().SelectList(), `"year_2013_2014_Data"`) {
		t.Fatalf("default select list missing quoted column")
	}
}

func TestLabel_RoundTrip(t *testing.T) {
	r := Default()
	values := make([]any, r.Len())
	for i := range values {
		values[i] = i * 10
	}
	values[1] = "1007374"
	values[6] = -1.2345
	values[35] = nil

	rec, err := r.Label(values)
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if rec.Len() != r.Len() {
		t.Fatalf("expected %d fields, got %d", r.Len(), rec.Len())
	}

	for i, name := range r.Columns() {
		got, ok := rec.Get(name)
		if !ok {
			t.Fatalf("missing attribute %s", name)
		}
		if got != values[i] {
			t.Fatalf("attribute %s: expected %v, got %v", name, values[i], got)
		}
	}

	for i, f := range rec.Fields() {
		if f.Name != r.Columns()[i] {
			t.Fatalf("field %d out of order: %s", i, f.Name)
		}
	}
	if rec.ProjectCode() != "1007374" {
		t.Fatalf("unexpected project code %q", rec.ProjectCode())
	}
}

func TestLabel_WrongLengthIsDrift(t *testing.T) {
	r := Default()

	// A leading synthetic index column would make the row one value too long.
	values := make([]any, r.Len()+1)
	if _, err := r.Label(values); !errors.Is(err, ErrSchemaDrift) {
		t.Fatalf("expected ErrSchemaDrift, got %v", err)
	}
}

func TestCheckFields(t *testing.T) {
	r, _ := New([]string{"a", "b", "c"})

	if err := r.CheckFields([]string{"a", "b", "c"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.CheckFields([]string{"a", "c", "b"}); !errors.Is(err, ErrSchemaDrift) {
		t.Fatalf("expected drift for reordered columns, got %v", err)
	}
	if err := r.CheckFields([]string{"index", "a", "b", "c"}); !errors.Is(err, ErrSchemaDrift) {
		t.Fatalf("expected drift for extra column, got %v", err)
	}
}

func TestMissing(t *testing.T) {
	r, _ := New([]string{"a", "b", "c"})

	missing := r.Missing([]string{"c", "a", "extra"})
	if len(missing) != 1 || missing[0] != "b" {
		t.Fatalf("expected [b], got %v", missing)
	}
	if m := r.Missing([]string{"a", "b", "c"}); len(m) != 0 {
		t.Fatalf("expected nothing missing, got %v", m)
	}
}
