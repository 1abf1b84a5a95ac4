package normalize

import (
	"errors"
	"testing"
	"time"
)

func baseRow() StagingRecord {
	return StagingRecord{
		"PARCEL_ID": "00123",
		"CO_NO":     "15",
	}
}

func TestNormalize_TypedCoercion(t *testing.T) {
	row := baseRow()
	row["JV"] = "150000.00"
	row["ACT_YR_BLT"] = "1998 "
	row["NO_BULDNG"] = "2.0"
	row["OWN_ZIPCD"] = "00123"
	row["SALE_DATE1"] = "2021-03-15"
	row["OWN_NAME"] = "  SMITH,   JOHN  "
	row["S_LEGAL"] = "LOT 4  BLK 2\nPUNTA GORDA ISLES"

	c, err := Normalize(row)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if c.ParcelID != "00123" {
		t.Errorf("expected parcel id %q, got %q", "00123", c.ParcelID)
	}
	if c.CountyNumber != 15 {
		t.Errorf("expected county number 15, got %d", c.CountyNumber)
	}
	if c.JustValue == nil || *c.JustValue != 150000.00 {
		t.Errorf("expected just value 150000.00, got %v", c.JustValue)
	}
	if c.ActualYearBuilt == nil || *c.ActualYearBuilt != 1998 {
		t.Errorf("expected year built 1998, got %v", c.ActualYearBuilt)
	}
	if c.NumBuildings == nil || *c.NumBuildings != 2 {
		t.Errorf("expected 2 buildings from float form, got %v", c.NumBuildings)
	}
	if c.OwnerZip == nil || *c.OwnerZip != "00123" {
		t.Errorf("expected ZIP leading zeros preserved, got %v", c.OwnerZip)
	}
	want := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)
	if c.SaleDate1 == nil || !c.SaleDate1.Equal(want) {
		t.Errorf("expected sale date %v, got %v", want, c.SaleDate1)
	}
	if c.OwnerName == nil || *c.OwnerName != "SMITH, JOHN" {
		t.Errorf("expected trimmed collapsed owner name, got %v", c.OwnerName)
	}
	// Long text keeps internal whitespace.
	if c.LegalDescription == nil || *c.LegalDescription != "LOT 4  BLK 2\nPUNTA GORDA ISLES" {
		t.Errorf("unexpected legal description: %v", c.LegalDescription)
	}
}

func TestNormalize_EmptyToNull(t *testing.T) {
	row := baseRow()
	row["JV"] = ""
	row["AV_SD"] = " "
	row["TV_SD"] = "   "
	row["OWN_NAME"] = ""

	c, err := Normalize(row)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c.JustValue != nil {
		t.Errorf("expected null just value, got %v", *c.JustValue)
	}
	if c.AssessedValueSD != nil {
		t.Errorf("expected null for single space, got %v", *c.AssessedValueSD)
	}
	if c.TaxableValueSD != nil {
		t.Errorf("expected null for whitespace-only, got %v", *c.TaxableValueSD)
	}
	if c.OwnerName != nil {
		t.Errorf("expected null owner name, got %q", *c.OwnerName)
	}
}

func TestNormalize_ExtendedSentinels(t *testing.T) {
	for _, v := range []string{"NULL", "null", "N/A", "na", "NaN", "#N/A", ".", "..."} {
		row := baseRow()
		row["JV"] = v

		c, err := Normalize(row)
		if err != nil {
			t.Fatalf("value %q: expected no error, got: %v", v, err)
		}
		if c.JustValue != nil {
			t.Errorf("value %q: expected null under extended rule, got %v", v, *c.JustValue)
		}
	}
}

func TestNullify_StrictRule(t *testing.T) {
	// The strict rule nulls only the literal '' and ' ', the exact
	// quirk of the upstream staging transfer. Everything else passes
	// through and must fail typed parsing instead of silently nulling.
	if _, null := nullify("", RuleStrict); !null {
		t.Error("strict rule should null the empty string")
	}
	if _, null := nullify(" ", RuleStrict); !null {
		t.Error("strict rule should null the single space")
	}
	if _, null := nullify("NULL", RuleStrict); null {
		t.Error("strict rule should not null the NULL sentinel")
	}
	for _, v := range []string{"\t", "  ", " \t "} {
		if _, null := nullify(v, RuleStrict); null {
			t.Errorf("strict rule nulled %q; only %q and %q are null under it", v, "", " ")
		}
	}
}

func TestNormalize_NumericCleaning(t *testing.T) {
	row := baseRow()
	row["SALE_PRC1"] = "1,250,000.50"
	row["LND_VAL"] = "(4500)"

	c, err := Normalize(row)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c.SalePrice1 == nil || *c.SalePrice1 != 1250000.50 {
		t.Errorf("expected comma-stripped 1250000.50, got %v", c.SalePrice1)
	}
	if c.LandValue == nil || *c.LandValue != -4500 {
		t.Errorf("expected parenthesised negative -4500, got %v", c.LandValue)
	}
}

func TestNormalize_FieldFailureRejectsRecord(t *testing.T) {
	row := baseRow()
	row["JV"] = "not-a-number"
	row["ACT_YR_BLT"] = "19.98"

	_, err := Normalize(row)
	if err == nil {
		t.Fatal("expected a normalization error")
	}

	var nerr *Error
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *normalize.Error, got %T", err)
	}
	if nerr.ParcelID != "00123" {
		t.Errorf("expected failing parcel id 00123, got %q", nerr.ParcelID)
	}
	if len(nerr.Fields) != 2 {
		t.Errorf("expected 2 field errors, got %d: %v", len(nerr.Fields), nerr.Fields)
	}
}

func TestNormalize_MissingRequiredField(t *testing.T) {
	for _, missing := range []string{"PARCEL_ID", "CO_NO"} {
		row := baseRow()
		row[missing] = "  "

		_, err := Normalize(row)
		if err == nil {
			t.Errorf("expected error when %s is null", missing)
		}
	}
}

func TestNormalize_RoundTripScenario(t *testing.T) {
	// Concrete scenario: typed fields equal the raw fields after the
	// declared coercion.
	row := StagingRecord{
		"PARCEL_ID":  "00123",
		"CO_NO":      "15",
		"JV":         "150000.00",
		"ACT_YR_BLT": "1998 ",
	}

	c, err := Normalize(row)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if c.ParcelID != "00123" || c.CountyNumber != 15 {
		t.Errorf("unexpected key: %q/%d", c.ParcelID, c.CountyNumber)
	}
	if c.JustValue == nil || *c.JustValue != 150000.00 {
		t.Errorf("expected 150000.00, got %v", c.JustValue)
	}
	if c.ActualYearBuilt == nil || *c.ActualYearBuilt != 1998 {
		t.Errorf("expected 1998, got %v", c.ActualYearBuilt)
	}
	if c.OwnerName != nil {
		t.Errorf("expected absent text field to be null, got %q", *c.OwnerName)
	}
}

func TestCandidateEqual(t *testing.T) {
	row := baseRow()
	row["JV"] = "150000.00"
	row["OWN_NAME"] = "SMITH JOHN"

	a, err := Normalize(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := Normalize(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if !a.Equal(b) {
		t.Error("expected identical candidates to be equal")
	}

	row["JV"] = "160000.00"
	changed, err := Normalize(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if a.Equal(changed) {
		t.Error("expected changed just value to break equality")
	}

	row["JV"] = "150000.00"
	delete(row, "OWN_NAME")
	nulled, err := Normalize(row)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if a.Equal(nulled) {
		t.Error("expected null vs set owner name to break equality")
	}
}

func TestParseDateFormats(t *testing.T) {
	want := time.Date(2019, 7, 4, 0, 0, 0, 0, time.UTC)
	for _, v := range []string{"2019-07-04", "07/04/2019", "20190704"} {
		got, err := parseDate(v)
		if err != nil {
			t.Errorf("%q: unexpected error: %v", v, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("%q: expected %v, got %v", v, want, got)
		}
	}

	if _, err := parseDate("4th of July 2019"); err == nil {
		t.Error("expected error for unrecognized date format")
	}
}
