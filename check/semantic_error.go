package check

import "errors"

var (
	semErrDuplicateConstr  = errors.New("a constructor name must belong to exactly one type")
	semErrDuplicateType    = errors.New("duplicate type name")
	semErrUnknownType      = errors.New("undefined type")
	semErrUnknownConstr    = errors.New("undefined constructor")
	semErrArityMismatch    = errors.New("a constructor or a function was applied to the wrong number of arguments")
	semErrNonlinearPattern = errors.New("a pattern variable must not occur more than once")
	semErrUnboundVar       = errors.New("a rule body refers to a variable its pattern does not bind")
	semErrNoSignature      = errors.New("a rule belongs to a function with no declared signature")
	semErrUnknownFunction  = errors.New("a call refers to an undeclared function")
	semErrUnknownVar       = errors.New("the start expression refers to a variable with no declared type")
)
