package bookings

import "errors"

var ErrNotFound = errors.New("order not found")
