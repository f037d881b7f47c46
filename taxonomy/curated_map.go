package taxonomy

// CuratedMap is the hand-maintained normalized_label -> accepted concept
// names table transcribed from the predecessor
// system's CONCEPT_MAPPINGS table and trimmed to the concepts the core
// pipeline's statements and validator actually reference. Order within each
// slice matters only as documentation of intent; resolution order among
// entries is handled by the Normalizer, not by this table's iteration order.
var CuratedMap = map[string][]string{
	// Income statement.
	"revenue": {
		"Revenues", "Revenue",
		"RevenueFromContractWithCustomerIncludingAssessedTax",
		"SalesRevenueNet", "SalesRevenueGoodsNet", "SalesRevenueServicesNet",
	},
	"revenue_from_sale_of_goods": {"RevenueFromSaleOfGoods"},
	"other_revenue":              {"OtherRevenue"},
	"cost_of_sales":               {"CostOfSales", "CostOfGoodsSold"},
	"cost_of_revenue":             {"CostOfRevenue"},
	"gross_profit":                {"GrossProfit", "GrossProfitLoss"},
	"operating_expenses":          {"OperatingExpenses", "OperatingCostsAndExpenses"},
	"research_development":        {"ResearchAndDevelopmentExpense"},
	"selling_general_admin":       {"SellingGeneralAndAdministrativeExpense"},
	"selling_and_marketing_expense": {"SellingAndMarketingExpense"},
	"general_and_administrative_expense": {"GeneralAndAdministrativeExpense"},
	"operating_income": {
		"OperatingIncomeLoss",
		"ProfitLossFromOperatingActivities",
		"ProfitLossFromOperatingActivitiesContinuingOperations",
	},
	"finance_income":         {"FinanceIncome"},
	"finance_costs":          {"FinanceCosts", "FinanceExpense"},
	"interest_expense":       {"InterestExpense", "InterestExpenseDebt"},
	"interest_income":        {"InterestIncome"},
	"income_before_tax": {
		"IncomeLossFromContinuingOperationsBeforeIncomeTaxesExtraordinaryItemsNoncontrollingInterest",
		"ProfitLossBeforeTax",
	},
	"income_tax_expense": {"IncomeTaxExpenseBenefit", "IncomeTaxExpenseContinuingOperations"},
	"net_income": {
		"NetIncomeLoss", "ProfitLoss",
		"ProfitLossAttributableToOwnersOfParent",
	},
	"net_income_including_noncontrolling_interest": {"ProfitLoss"},
	"eps_basic":    {"EarningsPerShareBasic"},
	"eps_diluted":  {"EarningsPerShareDiluted"},
	"shares_basic":   {"WeightedAverageNumberOfSharesOutstandingBasic"},
	"shares_diluted": {"WeightedAverageNumberOfDilutedSharesOutstanding"},

	// Balance sheet.
	"cash_and_equivalents": {
		"CashAndCashEquivalentsAtCarryingValue", "CashAndCashEquivalents",
		"CashCashEquivalentsRestrictedCashAndRestrictedCashEquivalents",
	},
	"accounts_receivable": {
		"AccountsReceivableNetCurrent", "TradeAndOtherReceivables", "TradeReceivables",
	},
	"inventory":        {"InventoryNet", "Inventories"},
	"current_assets":   {"AssetsCurrent", "CurrentAssets"},
	"property_plant_equipment": {"PropertyPlantAndEquipmentNet", "PropertyPlantAndEquipment"},
	"goodwill":         {"Goodwill"},
	"intangible_assets": {"IntangibleAssetsNetExcludingGoodwill", "IntangibleAssetsOtherThanGoodwill"},
	"noncurrent_assets": {"AssetsNoncurrent"},
	"total_assets":      {"Assets"},
	"accounts_payable": {
		"AccountsPayableCurrent", "AccountsPayableAndAccruedLiabilitiesCurrent", "TradeAndOtherPayables",
	},
	"accrued_liabilities_current": {"AccruedLiabilitiesCurrent"},
	"accrued_liabilities_and_other_liabilities": {"AccruedLiabilitiesAndOtherLiabilities"},
	"short_term_debt":  {"ShortTermBorrowings", "DebtCurrent"},
	"current_liabilities": {"LiabilitiesCurrent"},
	"current_liabilities_ifrs_variant": {"CurrentLiabilities"},
	"total_liabilities":   {"Liabilities"},
	"long_term_debt":      {"LongTermDebtNoncurrent", "LongtermBorrowings"},
	"noncurrent_liabilities": {"LiabilitiesNoncurrent"},
	"common_stock_value":  {"CommonStockValue", "IssuedCapital"},
	"retained_earnings":   {"RetainedEarningsAccumulatedDeficit", "RetainedEarnings"},
	"accumulated_other_comprehensive_income": {"AccumulatedOtherComprehensiveIncomeLossNetOfTax"},
	"stockholders_equity": {"StockholdersEquity", "Equity"},
	"stockholders_equity_including_noncontrolling_interest": {"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest"},
	"noncontrolling_interest": {"MinorityInterest"},
	"total_equity":         {"EquityAndLiabilities"},

	// Cash flow.
	"operating_cash_flow": {"NetCashProvidedByUsedInOperatingActivities", "CashFlowsFromUsedInOperatingActivities"},
	"investing_cash_flow": {"NetCashProvidedByUsedInInvestingActivities", "CashFlowsFromUsedInInvestingActivities"},
	"financing_cash_flow": {"NetCashProvidedByUsedInFinancingActivities", "CashFlowsFromUsedInFinancingActivities"},
	"capex":               {"PaymentsToAcquirePropertyPlantAndEquipment"},
	"dividends_paid":      {"PaymentsOfDividends", "DividendsPaid"},
	"depreciation_and_amortization": {"DepreciationDepletionAndAmortization", "DepreciationAmortisationExpense"},
	"stock_based_compensation": {"ShareBasedCompensation"},

	// Bank-specific universal metrics (banks substitute different line items).
	"financing_receivables": {"FinancingReceivableExcludingAccruedInterestBeforeAllowanceForCreditLoss"},
	"cash_and_due_from_banks": {"CashAndDueFromBanks"},

	// Equity statement.
	"hedge_reserve_transfer": {"AmountRemovedFromReserveOfCashFlowHedges"},
}
