package dto

import "github.com/shopspring/decimal"

type DashboardStatsResponse struct {
	TotalCompanies int64           `json:"totalCompanies"`
	ActiveServices int64           `json:"activeServices"`
	TotalQuotes    int64           `json:"totalQuotes"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
}
