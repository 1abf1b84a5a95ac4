package source

import (
	"io"
	"strings"
	"testing"

	"github.com/drewmad/claimguardian-platform-sub005/normalize"
)

func TestCSVReader(t *testing.T) {
	data := "PARCEL_ID,CO_NO,JV,OWN_NAME\n" +
		"00123,15,150000.00,SMITH JOHN\n" +
		"00456,15,98000.00,DOE JANE\n"

	r, err := NewCSVReader("dor-2024", strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}

	first, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if first.Source != "dor-2024" {
		t.Errorf("Source = %q, want dor-2024", first.Source)
	}
	if first.SourceID != "00123" {
		t.Errorf("SourceID = %q, want 00123", first.SourceID)
	}
	if first.Attributes["JV"] != "150000.00" {
		t.Errorf("JV = %q, want 150000.00", first.Attributes["JV"])
	}
	if first.ContentHash == "" {
		t.Error("ContentHash is empty")
	}

	second, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if second.SourceID != "00456" {
		t.Errorf("SourceID = %q, want 00456", second.SourceID)
	}
	if second.ContentHash == first.ContentHash {
		t.Error("distinct rows produced the same content hash")
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("Next at end = %v, want io.EOF", err)
	}
}

func TestCSVReaderRaggedRow(t *testing.T) {
	data := "PARCEL_ID,CO_NO,JV\n" +
		"00123,15\n"

	r, err := NewCSVReader("dor-2024", strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}

	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if _, ok := rec.Attributes["JV"]; ok {
		t.Error("short row should not carry a value for the missing column")
	}
	if rec.Attributes["CO_NO"] != "15" {
		t.Errorf("CO_NO = %q, want 15", rec.Attributes["CO_NO"])
	}
}

func TestCSVReaderHeaderNormalization(t *testing.T) {
	data := " parcel_id ,co_no\nA1,44\n"

	r, err := NewCSVReader("gis", strings.NewReader(data))
	if err != nil {
		t.Fatalf("NewCSVReader: %v", err)
	}
	rec, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if rec.SourceID != "A1" {
		t.Errorf("SourceID = %q, want A1", rec.SourceID)
	}
	if rec.Attributes["CO_NO"] != "44" {
		t.Errorf("CO_NO = %q, want 44", rec.Attributes["CO_NO"])
	}
}

func TestHashAttributesStable(t *testing.T) {
	a := normalize.StagingRecord{"PARCEL_ID": "00123", "CO_NO": "15", "JV": "150000.00"}
	b := normalize.StagingRecord{"JV": "150000.00", "CO_NO": "15", "PARCEL_ID": "00123"}

	if HashAttributes(a) != HashAttributes(b) {
		t.Error("hash depends on map construction order")
	}

	c := normalize.StagingRecord{"PARCEL_ID": "00123", "CO_NO": "15", "JV": "150000.01"}
	if HashAttributes(a) == HashAttributes(c) {
		t.Error("hash did not change with the content")
	}
}

func TestHashAttributesKeyValueBoundary(t *testing.T) {
	// "AB"->"C" and "A"->"BC" must not hash identically.
	a := normalize.StagingRecord{"AB": "C"}
	b := normalize.StagingRecord{"A": "BC"}
	if HashAttributes(a) == HashAttributes(b) {
		t.Error("key/value boundary is not encoded in the hash")
	}
}
