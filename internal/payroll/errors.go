package payroll

import "errors"

// Error kinds returned by the engine. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrInvalidRate      = errors.New("invalid hourly rate")
	ErrLookupMiss       = errors.New("no matching bracket")
	ErrCalculationFault = errors.New("calculation fault")
)
