// Package normalize converts loosely-typed staging records, as sourced
// from county GIS and DOR CSV exports where every value arrives as a
// string, into typed parcel candidates ready for merge. All text→typed
// coercion happens here; nothing downstream re-parses text.
package normalize

// Kind is the declared target type of a staging field.
type Kind int

const (
	// KindText is a short trimmed string.
	KindText Kind = iota
	// KindLongText is free text (legal descriptions); trimmed only,
	// internal whitespace preserved.
	KindLongText
	// KindCode is a code kept as text to preserve leading zeros
	// (ZIP codes, use codes, sale months).
	KindCode
	// KindInt is an integer count.
	KindInt
	// KindYear is a four-digit year; upstream files store these as
	// floats ("1998.0"), so they parse through float then truncate.
	KindYear
	// KindNumeric is a monetary or area value.
	KindNumeric
	// KindDate is a calendar date in one of the known export formats.
	KindDate
)

// EmptinessRule selects which raw values count as null.
type EmptinessRule int

const (
	// RuleExtended nulls trimmed-empty values, whitespace-only values,
	// bare dot runs and the usual NULL/N-A sentinels. Default, matching
	// the upstream CSV cleaning job.
	RuleExtended EmptinessRule = iota
	// RuleStrict nulls only the literal '' and ' ' values, the exact
	// quirk of the original staging transfer. Selectable per field for
	// sources verified to match that export.
	RuleStrict
)

// FieldSpec declares how one staging column normalizes.
type FieldSpec struct {
	Column   string // column name in the export, uppercase
	Kind     Kind
	Rule     EmptinessRule
	Required bool // a null here rejects the record
}

// ParcelFields is the staging-column table for Florida DOR/GIS parcel
// exports. Column names follow the DOR NAL layout.
var ParcelFields = []FieldSpec{
	{Column: "PARCEL_ID", Kind: KindText, Required: true},
	{Column: "CO_NO", Kind: KindInt, Required: true},
	{Column: "ASMNT_YR", Kind: KindYear},
	{Column: "DOR_UC", Kind: KindCode},
	{Column: "JV", Kind: KindNumeric},
	{Column: "AV_SD", Kind: KindNumeric},
	{Column: "AV_NSD", Kind: KindNumeric},
	{Column: "TV_SD", Kind: KindNumeric},
	{Column: "TV_NSD", Kind: KindNumeric},
	{Column: "LND_VAL", Kind: KindNumeric},
	{Column: "BLDG_VAL", Kind: KindNumeric},
	{Column: "TOT_VAL", Kind: KindNumeric},
	{Column: "ACT_YR_BLT", Kind: KindYear},
	{Column: "EFF_YR_BLT", Kind: KindYear},
	{Column: "TOT_LVG_AR", Kind: KindNumeric},
	{Column: "LND_SQFOOT", Kind: KindNumeric},
	{Column: "NO_BULDNG", Kind: KindInt},
	{Column: "NO_RES_UNT", Kind: KindInt},
	{Column: "SALE_PRC1", Kind: KindNumeric},
	{Column: "SALE_YR1", Kind: KindYear},
	{Column: "SALE_MO1", Kind: KindCode},
	{Column: "SALE_DATE1", Kind: KindDate},
	{Column: "SALE_PRC2", Kind: KindNumeric},
	{Column: "SALE_YR2", Kind: KindYear},
	{Column: "SALE_MO2", Kind: KindCode},
	{Column: "OWN_NAME", Kind: KindText},
	{Column: "OWN_ADDR1", Kind: KindText},
	{Column: "OWN_ADDR2", Kind: KindText},
	{Column: "OWN_CITY", Kind: KindText},
	{Column: "OWN_STATE", Kind: KindText},
	{Column: "OWN_ZIPCD", Kind: KindCode},
	{Column: "PHY_ADDR1", Kind: KindText},
	{Column: "PHY_ADDR2", Kind: KindText},
	{Column: "PHY_CITY", Kind: KindText},
	{Column: "PHY_ZIPCD", Kind: KindCode},
	{Column: "S_LEGAL", Kind: KindLongText},
	{Column: "TWN", Kind: KindCode},
	{Column: "RNG", Kind: KindCode},
	{Column: "SEC", Kind: KindCode},
}
