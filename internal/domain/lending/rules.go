package lending

// WithinStandardLoanPeriod reports whether a loan period stays within
// 14 days of the standard period. Stricter than ValidateLoanPeriod, it
// is an opt-in screen for callers that want to flag unusual periods
// without rejecting them.
func WithinStandardLoanPeriod(loanPeriodDays int) bool {
	variation := loanPeriodDays - StandardLoanPeriodDays
	if variation < 0 {
		variation = -variation
	}
	return loanPeriodDays > 0 && variation <= StandardLoanPeriodDays
}
