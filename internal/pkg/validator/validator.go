package validator

// Validator validates a struct and returns a ValidationError on failure.
type Validator interface {
	Validate(data any) error
}
