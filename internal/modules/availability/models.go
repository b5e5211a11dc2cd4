package availability

// Availability is the per-date capacity counter. HuntersBooked is
// increment-only from this service; cancellations are handled elsewhere.
type Availability struct {
	Date            string `gorm:"type:char(10);primaryKey"`
	HuntersBooked   int    `gorm:"not null;default:0"`
	PartyDeckBooked bool   `gorm:"not null;default:false"`
	InSeason        bool   `gorm:"not null;default:true"`
}

func (Availability) TableName() string { return "availability" }

// Booking is the slice of an order the capacity ledger cares about.
type Booking struct {
	Dates           []string
	NumberOfHunters int
	PartyDeckDates  []string
}
