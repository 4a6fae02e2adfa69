package group

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGroupToResponse(t *testing.T) {
	desc := "Apartment 4B"
	g := &Group{
		ID:              7,
		Name:            "Roommates",
		Description:     &desc,
		DefaultCurrency: "EUR",
		IsTemporary:     false,
		CreatedAt:       time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC),
	}

	resp := g.ToResponse()
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "Roommates", resp.Name)
	assert.Equal(t, &desc, resp.Description)
	assert.Equal(t, "EUR", resp.DefaultCurrency)
	assert.Equal(t, "2026-03-15T09:30:00Z", resp.CreatedAt)
}
