package errno

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"nil", nil, 0, "Success"},
		{"value", ErrGateClosed, ErrGateClosed.Code, ErrGateClosed.Message},
		{"pointer", &ErrNoTransaction, ErrNoTransaction.Code, ErrNoTransaction.Message},
		{"wrapped", fmt.Errorf("copy: %w", ErrClipboard), ErrClipboard.Code, ErrClipboard.Message},
		{"custom message", ErrOperationFailed.WithMessage("User rejected transaction"), ErrOperationFailed.Code, "User rejected transaction"},
		{"plain error", errors.New("boom"), InternalServerError.Code, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Decode(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}
