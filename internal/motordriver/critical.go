package motordriver

import "github.com/kscalelabs/kmotor/internal/faults"

func isCritical(err error) bool {
	_, ok := err.(*faults.CriticalFault)
	return ok
}
