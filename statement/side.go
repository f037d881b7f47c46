package statement

import (
	"strings"

	"finsight/models"
)

var assetPatterns = []string{
	"asset", "receivable", "inventor", "prepayment", "cash", "bank", "securit",
	"investment", "equipment", "plant", "property", "intangible", "goodwill",
	"deferred_tax_asset", "derivative_financial_asset", "marketable_security",
}

var liabilityPatterns = []string{
	"liabilit", "payable", "borrowing", "debt", "deferred_tax_liability",
	"provision", "obligation", "derivative_financial_liability",
}

var equityPatterns = []string{
	"equity", "share_capital", "treasury_share", "retained_earnings", "reserve",
	"stockholders_equity", "noncontrolling_interest",
}

var explicitAssetTotals = map[string]bool{"total_assets": true}
var explicitLiabEquityTotals = map[string]bool{
	"total_liabilities": true, "total_equity": true, "equity_and_liabilities": true,
	"liabilities_and_stockholders_equity": true,
}

// AssignSide computes the balance-sheet side for a main item from its
// concept name and normalized label. Returns ok=false when neither or both
// of the asset and liability/equity pattern sets match, meaning the item is
// excluded as a main balance-sheet item.
func AssignSide(conceptName, normalizedLabel string) (side models.BalanceSheetSide, ok bool) {
	lowerConcept := strings.ToLower(conceptName)
	lowerLabel := strings.ToLower(normalizedLabel)

	if explicitAssetTotals[lowerLabel] {
		return models.SideAssets, true
	}
	if explicitLiabEquityTotals[lowerLabel] {
		return models.SideLiabilitiesEquity, true
	}

	// "Investments in associates" uses the equity method and mentions
	// "equity" but is an asset.
	if strings.Contains(lowerLabel, "investment") && strings.Contains(lowerLabel, "associate") {
		return models.SideAssets, true
	}

	isAsset := containsAny(lowerConcept, assetPatterns) || containsAny(lowerLabel, assetPatterns)
	isLiabOrEquity := containsAny(lowerConcept, liabilityPatterns) || containsAny(lowerLabel, liabilityPatterns) ||
		containsAny(lowerConcept, equityPatterns) || containsAny(lowerLabel, equityPatterns)

	switch {
	case isAsset && !isLiabOrEquity:
		return models.SideAssets, true
	case isLiabOrEquity && !isAsset:
		return models.SideLiabilitiesEquity, true
	default:
		return "", false
	}
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
