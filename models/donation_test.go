package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func clothingDonation(items ...ClothingItem) *Donation {
	return &Donation{
		DonationType:  DonationTypeClothes,
		Status:        StatusPending,
		ClothingItems: items,
	}
}

func toyDonation(items ...ToyItem) *Donation {
	return &Donation{
		DonationType: DonationTypeToys,
		Status:       StatusPending,
		ToyItems:     items,
	}
}

func validClothingItem(quantity int) ClothingItem {
	return ClothingItem{
		Type:     "shirt",
		Size:     "M",
		Color:    "blue",
		Gender:   "unisex",
		Quantity: quantity,
		Images:   []string{"https://example.com/shirt.jpg"},
	}
}

func validToyItem(quantity int) ToyItem {
	return ToyItem{
		Name:        "teddy bear",
		Description: "soft brown bear",
		Condition:   "good",
		Quantity:    quantity,
		Images:      []string{"https://example.com/bear.jpg"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid clothes donation", func(t *testing.T) {
		require.NoError(t, clothingDonation(validClothingItem(1)).Validate())
	})

	t.Run("valid toys donation", func(t *testing.T) {
		require.NoError(t, toyDonation(validToyItem(2)).Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		d := &Donation{DonationType: "books"}
		assert.ErrorIs(t, d.Validate(), ErrBadDonationType)
	})

	t.Run("clothes donation with no items", func(t *testing.T) {
		assert.ErrorIs(t, clothingDonation().Validate(), ErrNoClothingItems)
	})

	t.Run("toys donation with no items", func(t *testing.T) {
		assert.ErrorIs(t, toyDonation().Validate(), ErrNoToyItems)
	})

	t.Run("clothing item missing image", func(t *testing.T) {
		item := validClothingItem(1)
		item.Images = nil
		assert.ErrorIs(t, clothingDonation(item).Validate(), ErrBadClothingItem)
	})

	t.Run("clothing item zero quantity", func(t *testing.T) {
		item := validClothingItem(0)
		assert.ErrorIs(t, clothingDonation(item).Validate(), ErrBadClothingItem)
	})

	t.Run("toy item missing condition", func(t *testing.T) {
		item := validToyItem(1)
		item.Condition = ""
		assert.ErrorIs(t, toyDonation(item).Validate(), ErrBadToyItem)
	})
}

func TestTotalQuantity(t *testing.T) {
	d := clothingDonation(validClothingItem(2), validClothingItem(3))
	assert.Equal(t, 5, d.TotalQuantity())

	assert.Equal(t, 0, (&Donation{}).TotalQuantity())
}

func TestDonorPoints(t *testing.T) {
	t.Run("clothing items award 10 per quantity", func(t *testing.T) {
		d := clothingDonation(validClothingItem(2), validClothingItem(3))
		assert.Equal(t, 50, d.DonorPoints())
	})

	t.Run("toy items award 15 per quantity", func(t *testing.T) {
		d := toyDonation(validToyItem(1))
		assert.Equal(t, 15, d.DonorPoints())
	})
}

func TestDriverPoints(t *testing.T) {
	assignedAt := time.Now()

	t.Run("fast completion earns the bonus", func(t *testing.T) {
		d := clothingDonation(validClothingItem(1))
		d.AssignedAt = &assignedAt
		completedAt := assignedAt.Add(2 * time.Hour)
		assert.Equal(t, 20+5+15, d.DriverPoints(completedAt))
	})

	t.Run("slow completion earns no bonus", func(t *testing.T) {
		d := clothingDonation(validClothingItem(1))
		d.AssignedAt = &assignedAt
		completedAt := assignedAt.Add(25 * time.Hour)
		assert.Equal(t, 20+5, d.DriverPoints(completedAt))
	})

	t.Run("exactly 24 hours still earns the bonus", func(t *testing.T) {
		d := toyDonation(validToyItem(4))
		d.AssignedAt = &assignedAt
		completedAt := assignedAt.Add(24 * time.Hour)
		assert.Equal(t, 20+4*5+15, d.DriverPoints(completedAt))
	})

	t.Run("missing assignment time earns no bonus", func(t *testing.T) {
		d := toyDonation(validToyItem(2))
		assert.Equal(t, 20+2*5, d.DriverPoints(time.Now()))
	})
}

func TestTransitionGuards(t *testing.T) {
	driver := primitive.NewObjectID()
	other := primitive.NewObjectID()

	t.Run("only pending can be scheduled", func(t *testing.T) {
		d := clothingDonation(validClothingItem(1))
		assert.True(t, d.CanSchedule())

		for _, status := range []string{StatusScheduled, StatusAssigned, StatusCompleted, StatusCancelled} {
			d.Status = status
			assert.False(t, d.CanSchedule(), status)
		}
	})

	t.Run("only scheduled and unassigned can be claimed", func(t *testing.T) {
		d := clothingDonation(validClothingItem(1))
		d.Status = StatusScheduled
		assert.True(t, d.CanAssign())

		d.AssignedDriver = &driver
		assert.False(t, d.CanAssign())

		d.AssignedDriver = nil
		d.Status = StatusPending
		assert.False(t, d.CanAssign())
	})

	t.Run("only the assigned driver can complete", func(t *testing.T) {
		d := clothingDonation(validClothingItem(1))
		d.Status = StatusAssigned
		d.AssignedDriver = &driver
		assert.True(t, d.CanComplete(driver))
		assert.False(t, d.CanComplete(other))

		d.Status = StatusCompleted
		assert.False(t, d.CanComplete(driver))
	})
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{StatusPending, StatusScheduled, StatusAssigned, StatusCompleted, StatusCancelled} {
		assert.True(t, ValidStatus(status), status)
	}
	assert.False(t, ValidStatus("shipped"))
	assert.False(t, ValidStatus(""))
}
