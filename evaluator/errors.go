package evaluator

import (
	"fmt"

	"github.com/podhmo/go-observe/object"
)

var (
	// ErrNullishAccess is returned in strict mode when a non-optional member
	// access or call is made on null or undefined.
	ErrNullishAccess = fmt.Errorf("cannot access a member of a nullish value")
	// ErrNotAFunction is returned when calling a value that is not callable.
	ErrNotAFunction = fmt.Errorf("value is not a function")
	// ErrDestructuring is returned when destructuring a non-object value.
	ErrDestructuring = fmt.Errorf("cannot destructure a non-object value")

	ErrDuplicateBehavior = fmt.Errorf("binding behavior already applied")
	ErrBehaviorNotFound  = fmt.Errorf("binding behavior not found")
	ErrConverterNotFound = fmt.Errorf("value converter not found")

	// ErrHostAssign is returned when assigning to $host.
	ErrHostAssign = fmt.Errorf("cannot assign to $host")
	// ErrHostNotFound is returned when $host is read but not provided.
	ErrHostNotFound = fmt.Errorf("$host is not available in this scope")

	ErrUnknownBinaryOperator = fmt.Errorf("unknown binary operator")
	ErrUnknownUnaryOperator  = fmt.Errorf("unknown unary operator")

	ErrNotCountable = fmt.Errorf("value is not countable")
	ErrNotIterable  = fmt.Errorf("value is not iterable")

	// ErrIncrementInBinding is returned for ++, -- and compound assignment
	// while dependencies are collected; the write would re-trigger the
	// evaluation forever.
	ErrIncrementInBinding = fmt.Errorf("increment or compound assignment inside an observed evaluation")

	ErrInvalidArrayLength = object.ErrInvalidLength
)
