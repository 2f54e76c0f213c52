package observation

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Protocol-misuse errors raised by the observation layer.
var (
	ErrSwitchNullConnectable = fmt.Errorf("connectable switcher: cannot switch to a nil connectable")
	ErrSwitchActive          = fmt.Errorf("connectable switcher: connectable is already active")
	ErrSwitchInactive        = fmt.Errorf("connectable switcher: cannot exit a connectable that is not active")
	ErrStoppedEffect         = fmt.Errorf("effect: cannot run a stopped effect")
	ErrMaxRecursion          = fmt.Errorf("effect: maximum recursion reached")
	ErrReadOnlyProperty      = fmt.Errorf("property is read-only")
)

// joinErrors returns nil for no errors, the error itself for one, and a
// multierror otherwise.
func joinErrors(errs ...error) error {
	var result *multierror.Error
	n := 0
	var last error
	for _, err := range errs {
		if err == nil {
			continue
		}
		n++
		last = err
		result = multierror.Append(result, err)
	}
	switch n {
	case 0:
		return nil
	case 1:
		return last
	}
	return result
}
