package models

// Account is the stored chart-of-accounts row.
type Account struct {
	AccountID   string `db:"account_id" json:"accountID"`
	Code        string `db:"code" json:"code"`
	Name        string `db:"name" json:"name"`
	AccountType string `db:"account_type" json:"accountType"`
	IsActive    bool   `db:"is_active" json:"isActive"`
	AuditFields
}
