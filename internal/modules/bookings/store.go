package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/webdevRafa/rancho-de-paloma-blanca-sub001/internal/modules/availability"
)

type Store struct{ db *gorm.DB }

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// DB returns the underlying database connection for direct queries.
func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	if err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// PaymentLinkAttachment is what gets merged onto an order after a hosted
// payment link has been created at the gateway.
type PaymentLinkAttachment struct {
	LinkID   string
	LinkURL  string
	Request  json.RawMessage
	Response json.RawMessage
}

// AttachPaymentLink merge-writes link fields and the raw request/response pair
// onto the order without clobbering unrelated columns.
func (s *Store) AttachPaymentLink(ctx context.Context, id string, att PaymentLinkAttachment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		gw := decodeObject(o.GatewayData)
		gw["paymentLinkId"] = att.LinkID
		gw["paymentUrl"] = att.LinkURL
		if len(att.Request) > 0 {
			gw["lastPaymentLinkRequest"] = json.RawMessage(att.Request)
		}
		if len(att.Response) > 0 {
			gw["lastPaymentLinkResponse"] = json.RawMessage(att.Response)
		}
		gwRaw, err := json.Marshal(gw)
		if err != nil {
			return err
		}

		return tx.WithContext(ctx).Model(&Order{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"payment_link_id":  att.LinkID,
				"payment_link_url": att.LinkURL,
				"gateway_data":     datatypes.JSON(gwRaw),
				"updated_at":       time.Now(),
			}).Error
	})
}

// ConfirmPaid performs the pending->paid transition and the capacity
// increments in one transaction. The order row is locked first; an order that
// is already paid (webhook redelivery) or not pending at all is skipped, so
// capacity is counted at most once per order.
//
// Returns the order as read, whether the transition happened, and any error.
func (s *Store) ConfirmPaid(ctx context.Context, id string, event json.RawMessage, paymentID string) (Order, bool, error) {
	var o Order
	transitioned := false

	// Concurrent deliveries lock an order row and then shared availability
	// rows; that ordering can deadlock, so the whole tx retries.
	err := availability.WithTxRetry(ctx, s.db, 3, func(tx *gorm.DB) error {
		o = Order{}
		transitioned = false

		if err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		// pending->paid is the only writable transition on this path
		if o.Status != StatusPending {
			return nil
		}

		now := time.Now()
		updates := map[string]any{
			"status":     StatusPaid,
			"updated_at": now,
		}
		if len(event) > 0 {
			updates["last_webhook"] = datatypes.JSON(event)
		}
		if paymentID != "" {
			gw := decodeObject(o.GatewayData)
			gw["paymentId"] = paymentID
			if gwRaw, err := json.Marshal(gw); err == nil {
				updates["gateway_data"] = datatypes.JSON(gwRaw)
			}
		}

		if err := tx.WithContext(ctx).Model(&Order{}).
			Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return err
		}

		if err := availability.ApplyBookingInTx(ctx, tx, availability.Booking{
			Dates:           o.Dates(),
			NumberOfHunters: o.NumberOfHunters,
			PartyDeckDates:  o.DeckDates(),
		}); err != nil {
			return err
		}

		transitioned = true
		return nil
	})
	if err != nil {
		return Order{}, false, err
	}
	return o, transitioned, nil
}

func decodeObject(raw datatypes.JSON) map[string]any {
	m := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &m)
	}
	return m
}
