package county

import "testing"

// goldenFIPS is the full DOR-number -> FIPS table as published on the
// Florida DOR county layout, used to verify the linear derivation.
var goldenFIPS = map[int]int{
	1: 12001, 2: 12003, 3: 12005, 4: 12007, 5: 12009, 6: 12011,
	7: 12013, 8: 12015, 9: 12017, 10: 12019, 11: 12021, 12: 12023,
	13: 12025, 14: 12027, 15: 12029, 16: 12031, 17: 12033, 18: 12035,
	19: 12037, 20: 12039, 21: 12041, 22: 12043, 23: 12045, 24: 12047,
	25: 12049, 26: 12051, 27: 12053, 28: 12055, 29: 12057, 30: 12059,
	31: 12061, 32: 12063, 33: 12065, 34: 12067, 35: 12069, 36: 12071,
	37: 12073, 38: 12075, 39: 12077, 40: 12079, 41: 12081, 42: 12083,
	43: 12085, 44: 12087, 45: 12089, 46: 12091, 47: 12093, 48: 12095,
	49: 12097, 50: 12099, 51: 12101, 52: 12103, 53: 12105, 54: 12107,
	55: 12109, 56: 12111, 57: 12113, 58: 12115, 59: 12117, 60: 12119,
	61: 12121, 62: 12123, 63: 12125, 64: 12127, 65: 12129, 66: 12131,
	67: 12133,
}

func TestFIPSFromNumber_GoldenTable(t *testing.T) {
	for n := MinCountyNumber; n <= MaxCountyNumber; n++ {
		got := FIPSFromNumber(n)
		if got != goldenFIPS[n] {
			t.Errorf("county %d: expected FIPS %d, got %d", n, goldenFIPS[n], got)
		}
	}
}

func TestFIPSFromNumber_OutOfRange(t *testing.T) {
	for _, n := range []int{0, -1, 68, 99} {
		if got := FIPSFromNumber(n); got != 0 {
			t.Errorf("county %d: expected 0 for out-of-range number, got %d", n, got)
		}
	}
}

func TestByNumber(t *testing.T) {
	tests := []struct {
		number int
		name   string
		fips   int
	}{
		{1, "Alachua", 12001},
		{8, "Charlotte", 12015},
		{13, "Miami-Dade", 12025},
		{16, "Duval", 12031},
		{36, "Lee", 12071},
		{44, "Monroe", 12087},
		{67, "Washington", 12133},
	}

	for _, tc := range tests {
		ref, ok := ByNumber(tc.number)
		if !ok {
			t.Fatalf("county %d: expected lookup to succeed", tc.number)
		}
		if ref.Name != tc.name {
			t.Errorf("county %d: expected name %q, got %q", tc.number, tc.name, ref.Name)
		}
		if ref.FIPS != tc.fips {
			t.Errorf("county %d: expected FIPS %d, got %d", tc.number, tc.fips, ref.FIPS)
		}
	}

	if _, ok := ByNumber(0); ok {
		t.Error("expected lookup of county 0 to fail")
	}
	if _, ok := ByNumber(99); ok {
		t.Error("expected lookup of county 99 to fail")
	}
}

func TestByName(t *testing.T) {
	ref, ok := ByName("miami-dade")
	if !ok {
		t.Fatal("expected case-insensitive lookup of Miami-Dade to succeed")
	}
	if ref.Number != 13 {
		t.Errorf("expected county number 13, got %d", ref.Number)
	}

	if _, ok := ByName("Atlantis"); ok {
		t.Error("expected lookup of unknown county to fail")
	}
}

func TestAll(t *testing.T) {
	refs := All()
	if len(refs) != 67 {
		t.Fatalf("expected 67 counties, got %d", len(refs))
	}
	if refs[0].Name != "Alachua" || refs[66].Name != "Washington" {
		t.Errorf("expected alphabetical DOR order, got first=%q last=%q", refs[0].Name, refs[66].Name)
	}
}
