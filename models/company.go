package models

import "time"

// AccountingStandard is the reporting framework a company files under.
type AccountingStandard string

const (
	StandardUSGAAP AccountingStandard = "US-GAAP"
	StandardIFRS   AccountingStandard = "IFRS"
)

// Company is the dim_companies row. Created on first filing; Standard may
// upgrade from StandardUSGAAP to StandardIFRS when a 20-F/ESEF filing arrives,
// never the reverse.
type Company struct {
	ID          int                `db:"id"`
	Ticker      string             `db:"ticker"`
	DisplayName string             `db:"display_name"`
	Standard    AccountingStandard `db:"accounting_standard"`
	CreatedAt   time.Time          `db:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at"`
}
