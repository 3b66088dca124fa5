package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation types
const (
	DonationTypeClothes = "clothes"
	DonationTypeToys    = "toys"
)

// Donation statuses
const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusAssigned  = "assigned"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Point awards for completed pickups
const (
	DonorPointsPerClothingItem = 10
	DonorPointsPerToyItem      = 15
	DriverBasePoints           = 20
	DriverPointsPerItem        = 5
	DriverFastBonusPoints      = 15
	DriverFastBonusWindow      = 24 * time.Hour
)

// ClothingItem is a single clothing entry in a donation
type ClothingItem struct {
	Type     string   `bson:"type" json:"type"`
	Size     string   `bson:"size" json:"size"`
	Color    string   `bson:"color" json:"color"`
	Gender   string   `bson:"gender" json:"gender"`
	Quantity int      `bson:"quantity" json:"quantity"`
	Images   []string `bson:"images" json:"images"`
}

// ToyItem is a single toy entry in a donation
type ToyItem struct {
	Name        string   `bson:"name" json:"name"`
	Description string   `bson:"description" json:"description"`
	Condition   string   `bson:"condition" json:"condition"`
	Quantity    int      `bson:"quantity" json:"quantity"`
	Images      []string `bson:"images" json:"images"`
}

// Donation represents a published donation and its pickup lifecycle
type Donation struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"userId"`
	DonationType   string              `bson:"donation_type" json:"donationType"`
	Status         string              `bson:"status" json:"status"`
	ClothingItems  []ClothingItem      `bson:"clothing_items" json:"clothingItems"`
	ToyItems       []ToyItem           `bson:"toy_items" json:"toyItems"`
	Size           int                 `bson:"size" json:"size"`
	PickupDate     *time.Time          `bson:"pickup_date,omitempty" json:"pickupDate,omitempty"`
	PickupAddress  string              `bson:"pickup_address,omitempty" json:"pickupAddress,omitempty"`
	PickupNotes    string              `bson:"pickup_notes,omitempty" json:"pickupNotes,omitempty"`
	Location       *Coordinates        `bson:"location,omitempty" json:"location,omitempty"`
	AssignedDriver *primitive.ObjectID `bson:"assigned_driver,omitempty" json:"assignedDriver,omitempty"`
	AssignedAt     *time.Time          `bson:"assigned_at,omitempty" json:"assignedAt,omitempty"`
	PickedUpAt     *time.Time          `bson:"picked_up_at,omitempty" json:"pickedUpAt,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updatedAt"`
}

var (
	ErrBadDonationType = errors.New(`donation type must be "clothes" or "toys"`)
	ErrNoClothingItems = errors.New("clothing items are required for clothes donation")
	ErrNoToyItems      = errors.New("toy items are required for toys donation")
	ErrBadClothingItem = errors.New("each clothing item needs type, size, color, gender, quantity of at least 1, and at least one image")
	ErrBadToyItem      = errors.New("each toy item needs name, description, condition, quantity of at least 1, and at least one image")
	ErrBadStatus       = errors.New("invalid donation status")
)

// ValidStatus reports whether s is one of the lifecycle statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusScheduled, StatusAssigned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Validate checks a donation at creation time: the type must be known,
// exactly the matching item list must be populated, and every item must
// be complete.
func (d *Donation) Validate() error {
	switch d.DonationType {
	case DonationTypeClothes:
		if len(d.ClothingItems) == 0 {
			return ErrNoClothingItems
		}
		for _, item := range d.ClothingItems {
			if item.Type == "" || item.Size == "" || item.Color == "" || item.Gender == "" ||
				item.Quantity < 1 || len(item.Images) == 0 {
				return ErrBadClothingItem
			}
		}
	case DonationTypeToys:
		if len(d.ToyItems) == 0 {
			return ErrNoToyItems
		}
		for _, item := range d.ToyItems {
			if item.Name == "" || item.Description == "" || item.Condition == "" ||
				item.Quantity < 1 || len(item.Images) == 0 {
				return ErrBadToyItem
			}
		}
	default:
		return ErrBadDonationType
	}
	return nil
}

// TotalQuantity sums item quantities across whichever list is populated.
func (d *Donation) TotalQuantity() int {
	total := 0
	for _, item := range d.ClothingItems {
		total += item.Quantity
	}
	for _, item := range d.ToyItems {
		total += item.Quantity
	}
	return total
}

// DonorPoints computes the points the donor earns when the pickup
// completes: 10 per clothing item quantity, 15 per toy item quantity.
func (d *Donation) DonorPoints() int {
	points := 0
	for _, item := range d.ClothingItems {
		points += item.Quantity * DonorPointsPerClothingItem
	}
	for _, item := range d.ToyItems {
		points += item.Quantity * DonorPointsPerToyItem
	}
	return points
}

// DriverPoints computes the points the driver earns for completing the
// pickup at completedAt: a base award, a per-item bonus, and a fast
// completion bonus when the pickup finishes within 24 hours of
// assignment.
func (d *Donation) DriverPoints(completedAt time.Time) int {
	points := DriverBasePoints + d.TotalQuantity()*DriverPointsPerItem
	if d.AssignedAt != nil && completedAt.Sub(*d.AssignedAt) <= DriverFastBonusWindow {
		points += DriverFastBonusPoints
	}
	return points
}

// CanSchedule reports whether the donation may move to scheduled.
func (d *Donation) CanSchedule() bool {
	return d.Status == StatusPending
}

// CanAssign reports whether a driver may claim the donation.
func (d *Donation) CanAssign() bool {
	return d.Status == StatusScheduled && d.AssignedDriver == nil
}

// CanComplete reports whether driverID may complete the pickup.
func (d *Donation) CanComplete(driverID primitive.ObjectID) bool {
	return d.Status == StatusAssigned && d.AssignedDriver != nil && *d.AssignedDriver == driverID
}
