// Package county resolves Florida county identity for parcels, either
// from the DOR county number carried on state parcel rolls or, as a
// best-effort fallback, from free-text addresses.
package county

import "strings"

// Reference identifies one Florida county.
type Reference struct {
	Number int    // DOR county number, 1-67 alphabetical
	Name   string
	FIPS   int // 5-digit state+county FIPS derived from the DOR number
}

// Florida DOR numbers counties 1-67 in alphabetical order. County FIPS
// codes are the odd numbers 12001-12133 in the same order, so the DOR
// number maps to FIPS as 12000 + n*2 - 1.
const (
	stateFIPSBase   = 12000
	MinCountyNumber = 1
	MaxCountyNumber = 67
)

// countyNames lists the 67 counties in DOR order (index 0 = county 1).
// The ordering is the historical alphabetical list with Miami-Dade in
// its pre-1997 "Dade" position at 13, which is what makes the linear
// FIPS derivation line up for every later county.
var countyNames = [MaxCountyNumber]string{
	"Alachua", "Baker", "Bay", "Bradford", "Brevard", "Broward",
	"Calhoun", "Charlotte", "Citrus", "Clay", "Collier", "Columbia",
	"Miami-Dade", "DeSoto", "Dixie", "Duval", "Escambia", "Flagler",
	"Franklin", "Gadsden", "Gilchrist", "Glades", "Gulf", "Hamilton",
	"Hardee", "Hendry", "Hernando", "Highlands", "Hillsborough",
	"Holmes", "Indian River", "Jackson", "Jefferson", "Lafayette",
	"Lake", "Lee", "Leon", "Levy", "Liberty", "Madison", "Manatee",
	"Marion", "Martin", "Monroe", "Nassau", "Okaloosa", "Okeechobee",
	"Orange", "Osceola", "Palm Beach", "Pasco", "Pinellas", "Polk",
	"Putnam", "St. Johns", "St. Lucie", "Santa Rosa", "Sarasota",
	"Seminole", "Sumter", "Suwannee", "Taylor", "Union", "Volusia",
	"Wakulla", "Walton", "Washington",
}

// FIPSFromNumber derives the county FIPS identifier from a DOR county
// number. Returns 0 for numbers outside 1-67.
func FIPSFromNumber(n int) int {
	if n < MinCountyNumber || n > MaxCountyNumber {
		return 0
	}
	return stateFIPSBase + n*2 - 1
}

// ByNumber looks up the county for a DOR county number.
func ByNumber(n int) (Reference, bool) {
	if n < MinCountyNumber || n > MaxCountyNumber {
		return Reference{}, false
	}
	return Reference{
		Number: n,
		Name:   countyNames[n-1],
		FIPS:   FIPSFromNumber(n),
	}, true
}

// ByName looks up a county by exact name, case-insensitive.
func ByName(name string) (Reference, bool) {
	for i, n := range countyNames {
		if strings.EqualFold(n, name) {
			return Reference{Number: i + 1, Name: n, FIPS: FIPSFromNumber(i + 1)}, true
		}
	}
	return Reference{}, false
}

// All returns the full county reference table in DOR order.
func All() []Reference {
	refs := make([]Reference, MaxCountyNumber)
	for i := range countyNames {
		refs[i] = Reference{Number: i + 1, Name: countyNames[i], FIPS: FIPSFromNumber(i + 1)}
	}
	return refs
}
