package model

import (
	"encoding/json"
	"math"
	"testing"
	"time"
)

func TestBridgeRecord_MarshalKeepsOrder(t *testing.T) {
	rec := NewBridgeRecord(
		[]string{"Zeta", "Project_Code", "Alpha", "Flag_for_Rejection"},
		[]any{"z", "1007374", 1.5, false},
	)

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `{"Zeta":"z","Project_Code":"1007374","Alpha":1.5,"Flag_for_Rejection":false}`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestBridgeRecord_MarshalScalars(t *testing.T) {
	ts := time.Date(2018, 10, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	rec := NewBridgeRecord(
		[]string{"null", "nan", "inf", "big", "ts", "bytes"},
		[]any{nil, math.NaN(), math.Inf(1), int64(9007199254740993), ts, []byte("raw")},
	)

	out, err := json.Marshal([]BridgeRecord{rec})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	want := `[{"null":null,"nan":null,"inf":null,"big":9007199254740993,"ts":"2018-10-01T11:00:00Z","bytes":"raw"}]`
	if string(out) != want {
		t.Fatalf("expected %s, got %s", want, out)
	}
}

func TestBridgeRecord_Accessors(t *testing.T) {
	rec := NewBridgeRecord([]string{"Bridge_Name", "Project_Code"}, []any{"Kigali", nil})

	if rec.Len() != 2 {
		t.Fatalf("expected 2 fields, got %d", rec.Len())
	}
	if v, ok := rec.Get("Bridge_Name"); !ok || v != "Kigali" {
		t.Fatalf("unexpected Bridge_Name: %v, %v", v, ok)
	}
	if _, ok := rec.Get("missing"); ok {
		t.Fatalf("missing attribute reported present")
	}
	if rec.ProjectCode() != "" {
		t.Fatalf("null project code should read as empty")
	}

	fields := rec.Fields()
	fields[0].Value = "changed"
	if v, _ := rec.Get("Bridge_Name"); v != "Kigali" {
		t.Fatalf("record mutated through Fields()")
	}
}

func TestBridgeRecord_ProjectCodeNonString(t *testing.T) {
	rec := NewBridgeRecord([]string{ProjectCodeColumn}, []any{int64(1007374)})
	if rec.ProjectCode() != "1007374" {
		t.Fatalf("unexpected project code %q", rec.ProjectCode())
	}
}
