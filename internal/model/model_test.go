package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClosedEnumSets(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleUser))
	assert.False(t, ValidRole("ROOT"))
	assert.False(t, ValidRole(""))

	assert.True(t, ValidDeliveryMethod(DeliveryDirect))
	assert.True(t, ValidDeliveryMethod(DeliveryCourier))
	assert.False(t, ValidDeliveryMethod("PIGEON"))

	assert.True(t, ValidItemStatus(StatusUnconfirmed))
	assert.True(t, ValidItemStatus(StatusInProgress))
	assert.True(t, ValidItemStatus(StatusCompleted))
	assert.False(t, ValidItemStatus("WAITING"))

	assert.True(t, ValidPriority(PriorityHigh))
	assert.True(t, ValidPriority(PriorityMedium))
	assert.True(t, ValidPriority(PriorityLow))
	assert.False(t, ValidPriority("URGENT"))
}

func TestPublicUserOmitsCredentials(t *testing.T) {
	u := User{ID: 3, Username: "admin", PasswordHash: "hash", Role: RoleAdmin}
	pub := u.Public()
	assert.Equal(t, uint(3), pub.ID)
	assert.Equal(t, "admin", pub.Username)
	assert.Equal(t, RoleAdmin, pub.Role)
}
