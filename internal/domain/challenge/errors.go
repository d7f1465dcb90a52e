package challenge

import "fmt"

// InvalidTransitionError reports a status pair absent from the transition
// table. It carries both statuses to aid caller diagnosis.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("no such transition: %s -> %s", e.From, e.To)
}
