package statement

// StandardOrder holds the fixed canonical display_order for a normalized
// label within comprehensive_income, cash_flow, or equity_statement, where
// the raw XBRL presentation order is ignored entirely.
var StandardOrder = map[string]int{
	// Comprehensive income.
	"net_income_including_noncontrolling_interest":        0,
	"other_comprehensive_income_header":                   1,
	"remeasurements_of_retirement_benefit_obligations":     2,
	"items_that_will_not_be_reclassified_subtotal":         3,
	"exchange_rate_adjustments":                            4,
	"cash_flow_hedges_header":                              5,
	"realisation_of_previously_deferred_gains_losses":       6,
	"deferred_gains_losses_related_to_acquisitions":         7,
	"deferred_gains_losses_on_hedges_open_at_year_end":      8,
	"tax_and_other_items":                                  9,
	"items_that_will_be_reclassified_subtotal":              10,
	"oci_total":                                            15,
	"total_comprehensive_income":                           16,

	// Cash flow.
	"net_profit_cash_flow":                         0,
	"adjustment_of_non_cash_items_header":           1,
	"cash_flow_adjustment_1":                        2,
	"cash_flow_adjustment_2":                        3,
	"cash_flow_adjustment_3":                        4,
	"working_capital_changes":                       5,
	"interest_received":                             6,
	"interest_paid":                                 7,
	"income_tax_paid":                               8,
	"operating_cash_flow":                           9,
	"investing_detail_1":                            10,
	"investing_detail_2":                            11,
	"investing_detail_3":                            12,
	"investing_detail_4":                            13,
	"investing_detail_5":                            14,
	"investing_detail_6":                            15,
	"investing_detail_7":                            16,
	"investing_cash_flow":                           17,
	"financing_detail_1":                            18,
	"financing_detail_2":                            19,
	"financing_detail_3":                            20,
	"financing_detail_4":                            21,
	"financing_cash_flow":                           22,
	"net_change_in_cash":                            23,
	"cash_and_cash_equivalents_at_the_beginning_of_the_year": 24,
	"effect_of_exchange_rate_changes_on_cash":       25,
	"cash_and_cash_equivalents_at_the_end_of_the_year":       26,

	// Equity statement.
	"balance_at_the_beginning_of_the_year_equity": 0,
	"net_profit_equity":                           1,
	"other_comprehensive_income_equity":           2,
	"total_comprehensive_income_equity":           3,
	"hedge_reserve_transfer":                      4,
	"transactions_with_owners_header":             5,
	"dividends_paid":                              6,
	"share_based_payments":                        7,
	"purchase_of_treasury_shares":                 8,
	"reduction_of_issued_capital":                 9,
	"tax_on_sharebased_payment":                   10,
	"balance_at_the_end_of_the_year_equity":       11,
}

// synthetic display orders for rows that have no underlying fact. The
// materializer references OrderBeginningCash, OrderBeginningEquity and
// OrderEndingEquity for the balance rows it synthesizes; it creates no
// header rows, and the header constants are not referenced by it.
const (
	OrderBalanceSheetAssetsHeader   = 0
	OrderEPSHeader                  = epsHeaderOrder
	OrderOCIHeader                  = 1
	OrderCashFlowHedgesHeader       = 4
	OrderAdjustmentNonCashHeader    = 1
	OrderTransactionsWithOwnersHeader = 5
	OrderBeginningCash              = 24
	OrderBeginningEquity            = 0
	OrderEndingEquity               = 11
)
