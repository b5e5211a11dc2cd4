package availability

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyBookingInTx increments the hunters-booked counter for every date of the
// booking inside the CALLER's transaction (no nested tx). Dates missing from
// the table are upserted. Either every date commits or none does.
func ApplyBookingInTx(ctx context.Context, tx *gorm.DB, b Booking) error {
	if len(b.Dates) == 0 || b.NumberOfHunters <= 0 {
		return nil
	}

	dates := normalizeDates(b.Dates)

	deck := make(map[string]bool, len(b.PartyDeckDates))
	for _, d := range b.PartyDeckDates {
		deck[d] = true
	}

	for _, date := range dates {
		assigns := map[string]any{
			"hunters_booked": gorm.Expr("hunters_booked + ?", b.NumberOfHunters),
		}
		if deck[date] {
			assigns["party_deck_booked"] = true
		}

		row := Availability{
			Date:            date,
			HuntersBooked:   b.NumberOfHunters,
			PartyDeckBooked: deck[date],
		}
		if err := tx.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "date"}},
				DoUpdates: clause.Assignments(assigns),
			}).
			Create(&row).Error; err != nil {
			return err
		}
	}

	return nil
}

// normalizeDates collapses duplicates and empty strings into a sorted list so
// rows lock in a deterministic order.
func normalizeDates(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, d := range in {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// WithTxRetry runs fn in its own transaction, retrying on MySQL deadlock and
// lock-wait-timeout errors with a short linear backoff. fn must be safe to run
// again from scratch.
func WithTxRetry(ctx context.Context, db *gorm.DB, attempts int, fn func(tx *gorm.DB) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error

	for i := 0; i < attempts; i++ {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(tx)
		})
		if err == nil {
			return nil
		}
		lastErr = err

		if isRetryableMySQLError(err) && i < attempts-1 {
			time.Sleep(time.Duration(50*(i+1)) * time.Millisecond)
			continue
		}
		return err
	}
	return lastErr
}

func isRetryableMySQLError(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		// 1213: Deadlock found; 1205: Lock wait timeout
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}
