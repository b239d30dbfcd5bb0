package config

// LowStockAlertSchedule is the cron spec for the low-stock/expiry digest mail.
func LowStockAlertSchedule() string {
	return GetEnv("LOW_STOCK_CRON", "0 8 * * *")
}
