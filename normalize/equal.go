package normalize

import "time"

// Equal reports whether two candidates carry identical tracked values.
// The merge engine uses this for change detection: equal candidates are
// a no-op, unequal ones archive the prior row and overwrite.
func (c *Candidate) Equal(o *Candidate) bool {
	if c.ParcelID != o.ParcelID || c.CountyNumber != o.CountyNumber {
		return false
	}
	return eqInt(c.AssessmentYear, o.AssessmentYear) &&
		eqStr(c.DORUseCode, o.DORUseCode) &&
		eqFloat(c.JustValue, o.JustValue) &&
		eqFloat(c.AssessedValueSD, o.AssessedValueSD) &&
		eqFloat(c.AssessedValueNSD, o.AssessedValueNSD) &&
		eqFloat(c.TaxableValueSD, o.TaxableValueSD) &&
		eqFloat(c.TaxableValueNSD, o.TaxableValueNSD) &&
		eqFloat(c.LandValue, o.LandValue) &&
		eqFloat(c.BuildingValue, o.BuildingValue) &&
		eqFloat(c.TotalValue, o.TotalValue) &&
		eqInt(c.ActualYearBuilt, o.ActualYearBuilt) &&
		eqInt(c.EffectiveYearBuilt, o.EffectiveYearBuilt) &&
		eqFloat(c.TotalLivingArea, o.TotalLivingArea) &&
		eqFloat(c.LandSqFoot, o.LandSqFoot) &&
		eqInt(c.NumBuildings, o.NumBuildings) &&
		eqInt(c.NumResidentialUnits, o.NumResidentialUnits) &&
		eqFloat(c.SalePrice1, o.SalePrice1) &&
		eqInt(c.SaleYear1, o.SaleYear1) &&
		eqStr(c.SaleMonth1, o.SaleMonth1) &&
		eqTime(c.SaleDate1, o.SaleDate1) &&
		eqFloat(c.SalePrice2, o.SalePrice2) &&
		eqInt(c.SaleYear2, o.SaleYear2) &&
		eqStr(c.SaleMonth2, o.SaleMonth2) &&
		eqStr(c.OwnerName, o.OwnerName) &&
		eqStr(c.OwnerAddress1, o.OwnerAddress1) &&
		eqStr(c.OwnerAddress2, o.OwnerAddress2) &&
		eqStr(c.OwnerCity, o.OwnerCity) &&
		eqStr(c.OwnerState, o.OwnerState) &&
		eqStr(c.OwnerZip, o.OwnerZip) &&
		eqStr(c.PhysicalAddress1, o.PhysicalAddress1) &&
		eqStr(c.PhysicalAddress2, o.PhysicalAddress2) &&
		eqStr(c.PhysicalCity, o.PhysicalCity) &&
		eqStr(c.PhysicalZip, o.PhysicalZip) &&
		eqStr(c.LegalDescription, o.LegalDescription) &&
		eqStr(c.Township, o.Township) &&
		eqStr(c.Range, o.Range) &&
		eqStr(c.Section, o.Section)
}

func eqStr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqFloat(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func eqTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
