package flightsql

import (
	"context"
	"errors"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/joacominatel/theseus/internal/transport"
)

// fromADBC re-raises a driver failure as a generic transport runtime error.
// Context cancellation passes through untouched.
func fromADBC(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var rt *transport.RuntimeError
	if errors.As(err, &rt) {
		return err
	}

	var ae adbc.Error
	if errors.As(err, &ae) {
		return &transport.RuntimeError{
			Message: ae.Msg,
			Code:    ae.Code.String(),
			Cause:   err,
		}
	}

	return &transport.RuntimeError{Message: err.Error(), Cause: err}
}
