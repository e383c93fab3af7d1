package hal

// PeripheralError wraps a driver failure with the operation that caused it
type PeripheralError struct {
	Op  string
	Err error
}

func (e *PeripheralError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PeripheralError) Unwrap() error {
	return e.Err
}

// Wrap returns nil for a nil err, or err tagged with op
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PeripheralError{Op: op, Err: err}
}
