package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StagingRecord is one flattened, all-text row from a staging source,
// keyed by export column name.
type StagingRecord map[string]string

// Candidate is a fully typed parcel record ready for merge. Nil
// pointers are nulls.
type Candidate struct {
	ParcelID     string
	CountyNumber int

	AssessmentYear      *int
	DORUseCode          *string
	JustValue           *float64
	AssessedValueSD     *float64
	AssessedValueNSD    *float64
	TaxableValueSD      *float64
	TaxableValueNSD     *float64
	LandValue           *float64
	BuildingValue       *float64
	TotalValue          *float64
	ActualYearBuilt     *int
	EffectiveYearBuilt  *int
	TotalLivingArea     *float64
	LandSqFoot          *float64
	NumBuildings        *int
	NumResidentialUnits *int

	SalePrice1 *float64
	SaleYear1  *int
	SaleMonth1 *string
	SaleDate1  *time.Time
	SalePrice2 *float64
	SaleYear2  *int
	SaleMonth2 *string

	OwnerName     *string
	OwnerAddress1 *string
	OwnerAddress2 *string
	OwnerCity     *string
	OwnerState    *string
	OwnerZip      *string

	PhysicalAddress1 *string
	PhysicalAddress2 *string
	PhysicalCity     *string
	PhysicalZip      *string

	LegalDescription *string
	Township         *string
	Range            *string
	Section          *string
}

// FieldError is one field that failed to parse for its declared type.
type FieldError struct {
	Column string
	Value  string
	Err    error
}

func (e FieldError) Error() string {
	return fmt.Sprintf("field %s: %v (value %q)", e.Column, e.Err, e.Value)
}

// Error rejects a whole record: one or more fields failed. The record
// is skipped and the batch continues.
type Error struct {
	ParcelID string
	Fields   []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("parcel %q: %v", e.ParcelID, e.Fields[0])
	}
	return fmt.Sprintf("parcel %q: %d fields failed to normalize (first: %v)",
		e.ParcelID, len(e.Fields), e.Fields[0])
}

// Normalize converts a staging row into a typed candidate. Every field
// in ParcelFields is trimmed, null-checked under its emptiness rule and
// parsed for its declared type. Any field failure rejects the record;
// partially typed candidates are never produced.
func Normalize(row StagingRecord) (*Candidate, error) {
	p := newParser(row)

	c := &Candidate{}
	c.ParcelID = p.requiredText("PARCEL_ID")
	c.CountyNumber = p.requiredInt("CO_NO")

	c.AssessmentYear = p.year("ASMNT_YR")
	c.DORUseCode = p.code("DOR_UC")
	c.JustValue = p.numeric("JV")
	c.AssessedValueSD = p.numeric("AV_SD")
	c.AssessedValueNSD = p.numeric("AV_NSD")
	c.TaxableValueSD = p.numeric("TV_SD")
	c.TaxableValueNSD = p.numeric("TV_NSD")
	c.LandValue = p.numeric("LND_VAL")
	c.BuildingValue = p.numeric("BLDG_VAL")
	c.TotalValue = p.numeric("TOT_VAL")
	c.ActualYearBuilt = p.year("ACT_YR_BLT")
	c.EffectiveYearBuilt = p.year("EFF_YR_BLT")
	c.TotalLivingArea = p.numeric("TOT_LVG_AR")
	c.LandSqFoot = p.numeric("LND_SQFOOT")
	c.NumBuildings = p.integer("NO_BULDNG")
	c.NumResidentialUnits = p.integer("NO_RES_UNT")

	c.SalePrice1 = p.numeric("SALE_PRC1")
	c.SaleYear1 = p.year("SALE_YR1")
	c.SaleMonth1 = p.code("SALE_MO1")
	c.SaleDate1 = p.date("SALE_DATE1")
	c.SalePrice2 = p.numeric("SALE_PRC2")
	c.SaleYear2 = p.year("SALE_YR2")
	c.SaleMonth2 = p.code("SALE_MO2")

	c.OwnerName = p.text("OWN_NAME")
	c.OwnerAddress1 = p.text("OWN_ADDR1")
	c.OwnerAddress2 = p.text("OWN_ADDR2")
	c.OwnerCity = p.text("OWN_CITY")
	c.OwnerState = p.text("OWN_STATE")
	c.OwnerZip = p.code("OWN_ZIPCD")

	c.PhysicalAddress1 = p.text("PHY_ADDR1")
	c.PhysicalAddress2 = p.text("PHY_ADDR2")
	c.PhysicalCity = p.text("PHY_CITY")
	c.PhysicalZip = p.code("PHY_ZIPCD")

	c.LegalDescription = p.longText("S_LEGAL")
	c.Township = p.code("TWN")
	c.Range = p.code("RNG")
	c.Section = p.code("SEC")

	if len(p.errs) > 0 {
		return nil, &Error{ParcelID: strings.TrimSpace(row["PARCEL_ID"]), Fields: p.errs}
	}
	return c, nil
}

// specIndex maps column name to its FieldSpec.
var specIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(ParcelFields))
	for _, s := range ParcelFields {
		m[s.Column] = s
	}
	return m
}()

type parser struct {
	row  StagingRecord
	errs []FieldError
}

func newParser(row StagingRecord) *parser {
	return &parser{row: row}
}

func (p *parser) fail(column, value string, err error) {
	p.errs = append(p.errs, FieldError{Column: column, Value: value, Err: err})
}

// raw returns the cleaned value and whether it is null under the
// field's emptiness rule.
func (p *parser) raw(column string) (string, bool) {
	raw := p.row[column]
	rule := specIndex[column].Rule
	return nullify(raw, rule)
}

func (p *parser) requiredText(column string) string {
	v, null := p.raw(column)
	if null {
		p.fail(column, p.row[column], fmt.Errorf("required field is null"))
		return ""
	}
	return collapseWhitespace(v)
}

func (p *parser) requiredInt(column string) int {
	v, null := p.raw(column)
	if null {
		p.fail(column, p.row[column], fmt.Errorf("required field is null"))
		return 0
	}
	n, err := parseInteger(v)
	if err != nil {
		p.fail(column, p.row[column], err)
		return 0
	}
	return n
}

func (p *parser) text(column string) *string {
	v, null := p.raw(column)
	if null {
		return nil
	}
	s := collapseWhitespace(v)
	return &s
}

func (p *parser) longText(column string) *string {
	v, null := p.raw(column)
	if null {
		return nil
	}
	return &v
}

func (p *parser) code(column string) *string {
	v, null := p.raw(column)
	if null {
		return nil
	}
	s := collapseWhitespace(v)
	return &s
}

func (p *parser) integer(column string) *int {
	v, null := p.raw(column)
	if null {
		return nil
	}
	n, err := parseInteger(v)
	if err != nil {
		p.fail(column, p.row[column], err)
		return nil
	}
	return &n
}

// year parses like integer; upstream files store years as floats
// ("1998.0"), which parseInteger already accepts.
func (p *parser) year(column string) *int {
	return p.integer(column)
}

func (p *parser) numeric(column string) *float64 {
	v, null := p.raw(column)
	if null {
		return nil
	}
	f, err := parseNumeric(v)
	if err != nil {
		p.fail(column, p.row[column], err)
		return nil
	}
	return &f
}

func (p *parser) date(column string) *time.Time {
	v, null := p.raw(column)
	if null {
		return nil
	}
	t, err := parseDate(v)
	if err != nil {
		p.fail(column, p.row[column], err)
		return nil
	}
	return &t
}

// numericSentinels are string forms that mean "no value" in the
// upstream exports, beyond plain emptiness.
var numericSentinels = map[string]bool{
	"NULL": true, "NONE": true, "N/A": true, "NA": true,
	"NAN": true, "#N/A": true,
}

// nullify decides nullness under the given rule and returns the
// trimmed value, NUL bytes removed. The strict rule checks the raw
// untrimmed value against the literal '' and ' ' only; other
// whitespace-only values pass through and fail typed parsing instead
// of silently nulling.
func nullify(raw string, rule EmptinessRule) (string, bool) {
	clean := strings.ReplaceAll(raw, "\x00", "")
	if rule == RuleStrict {
		if clean == "" || clean == " " {
			return "", true
		}
		return strings.TrimSpace(clean), false
	}

	v := strings.TrimSpace(clean)
	if v == "" {
		return "", true
	}
	if strings.Trim(v, ".") == "" {
		return "", true
	}
	if numericSentinels[strings.ToUpper(v)] {
		return "", true
	}
	return v, false
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return whitespaceRun.ReplaceAllString(s, " ")
}

// parseNumeric parses a monetary/area value: thousands separators are
// stripped and parenthesised values are negative, both of which occur
// in county CSV exports.
func parseNumeric(v string) (float64, error) {
	v = strings.ReplaceAll(v, ",", "")
	if strings.HasPrefix(v, "(") && strings.HasSuffix(v, ")") {
		v = "-" + v[1:len(v)-1]
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	return f, nil
}

// parseInteger parses counts, years and county numbers, accepting the
// floating forms ("15.0") some exports emit for integer columns.
func parseInteger(v string) (int, error) {
	f, err := parseNumeric(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer")
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("integer out of range")
	}
	return int(f), nil
}

// dateFormats are the layouts seen across county GIS exports.
var dateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"20060102",
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}
