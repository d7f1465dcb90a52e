package credit

import "fmt"

// InsufficientFundsError reports a debit that would exceed the
// participant's available balance. Distinct from validation so callers can
// prompt differently.
type InsufficientFundsError struct {
	UserID    string
	Required  int
	Available int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: need %d, have %d", e.UserID, e.Required, e.Available)
}
