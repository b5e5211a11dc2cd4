package availability

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestNormalizeDates(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"sorted dedup", []string{"2026-09-02", "2026-09-01", "2026-09-02"}, []string{"2026-09-01", "2026-09-02"}},
		{"empties dropped", []string{"", "2026-09-01", ""}, []string{"2026-09-01"}},
		{"already clean", []string{"2026-09-01"}, []string{"2026-09-01"}},
		{"nil", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDates(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeDates(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsRetryableMySQLError(t *testing.T) {
	deadlock := &mysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}
	lockWait := &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

	if !isRetryableMySQLError(deadlock) || !isRetryableMySQLError(lockWait) {
		t.Error("deadlock and lock-wait must be retryable")
	}
	if isRetryableMySQLError(dup) {
		t.Error("duplicate key is not retryable")
	}
	if isRetryableMySQLError(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
	if !isRetryableMySQLError(fmt.Errorf("tx: %w", deadlock)) {
		t.Error("wrapped deadlock must still be retryable")
	}
}
