package types

import "strconv"

// BalanceReportKey builds the persisted key "<year>_<month>_balance" (spec §6).
// month is the raw integer value with no zero-padding.
func BalanceReportKey(year int, month Month) string {
	return strconv.Itoa(year) + "_" + strconv.Itoa(int(month)) + "_balance"
}
