package shared

import "fmt"

// LockedMessage is shown to the user whenever a mutation is refused because the
// person list is locked.
const LockedMessage = "Person list cannot be modified in this window, please go back to the person page."

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Registry errors
	ErrDuplicatePerson = fmt.Errorf("person already exists in the list")
	ErrPersonNotFound  = fmt.Errorf("person not found")
	ErrRegistryLocked  = fmt.Errorf("%s", LockedMessage)
	ErrIndexOutOfRange = fmt.Errorf("index out of range")

	// Loan errors
	ErrInvalidLoan   = fmt.Errorf("invalid loan")
	ErrInvalidAmount = fmt.Errorf("payment amount must be positive")
	ErrLoanPaid      = fmt.Errorf("loan is already paid")
	ErrMalformedLoan = fmt.Errorf("malformed loan record")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
