package errno

import "errors"

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// WithMessage keeps the code and replaces the message, e.g. with the controller's
// status text.
func (e Errno) WithMessage(msg string) Errno {
	return Errno{Code: e.Code, Message: msg}
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var p *Errno
	if errors.As(err, &p) && p != nil {
		return p.Code, p.Message
	}
	var e Errno
	if errors.As(err, &e) {
		return e.Code, e.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrNotFound         = Errno{Code: 10003, Message: "Not found"}
	ErrStore            = Errno{Code: 10004, Message: "Store error"}
)

// Console Errors (20000+)
var (
	ErrWalletUnavailable = Errno{Code: 20101, Message: "Wallet not detected"}
	ErrGateClosed        = Errno{Code: 20201, Message: "Interaction not allowed: connect a wallet on the target network and wait for the pending operation"}
	ErrOperationFailed   = Errno{Code: 20202, Message: "Operation failed"}
	ErrBusy              = Errno{Code: 20203, Message: "Another operation is in progress"}
	ErrNoTransaction     = Errno{Code: 20301, Message: "No transaction recorded"}
	ErrClipboard         = Errno{Code: 20302, Message: "Clipboard unavailable"}
)
