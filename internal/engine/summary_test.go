package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skydentango/ping-social-app/internal/models"
)

var summarySentAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func expiringPing(ttl time.Duration) models.Ping {
	exp := summarySentAt.Add(ttl)
	return models.Ping{
		ID:         "p1",
		Message:    "Coffee?",
		Mode:       models.ModeFriends,
		SenderID:   "u1",
		Recipients: []string{"u1", "u2"},
		SentAt:     summarySentAt,
		ExpiresAt:  &exp,
	}
}

func TestVisible(t *testing.T) {
	p := expiringPing(15 * time.Minute)

	tests := []struct {
		name   string
		viewer string
		asOf   time.Time
		want   bool
	}{
		{"recipient before expiry", "u2", summarySentAt.Add(14 * time.Minute), true},
		{"recipient at expiry", "u2", summarySentAt.Add(15 * time.Minute), false},
		{"recipient after expiry", "u2", summarySentAt.Add(16 * time.Minute), false},
		{"non-recipient", "u9", summarySentAt.Add(time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(&p, tt.viewer, tt.asOf))
		})
	}

	t.Run("no expiry means visible forever", func(t *testing.T) {
		p := p
		p.ExpiresAt = nil
		assert.True(t, Visible(&p, "u2", summarySentAt.Add(1000*time.Hour)))
	})
}

func TestSummarizeCounts(t *testing.T) {
	p := expiringPing(time.Hour)
	p.Responses = []models.PingResponse{
		{UserID: "u2", Response: models.ResponseYes},
		{UserID: "u3", Response: models.ResponseYes},
		{UserID: "u4", Response: models.ResponseNo},
		{UserID: "u5", Response: models.ResponseMaybe},
	}

	now := summarySentAt.Add(30 * time.Minute)
	s := Summarize(&p, "u4", now)

	assert.Equal(t, 2, s.Yes)
	assert.Equal(t, 1, s.No)
	assert.Equal(t, 1, s.Maybe)
	assert.Equal(t, models.ResponseNo, s.OwnResponse)

	assert.True(t, s.HasExpiry)
	assert.Equal(t, 30*time.Minute, s.Remaining)
	assert.InDelta(t, 0.5, s.Progress, 1e-9)

	// Pure function: repeated calls agree.
	assert.Equal(t, s, Summarize(&p, "u4", now))
}

func TestSummarizeProgressClamped(t *testing.T) {
	p := expiringPing(time.Hour)

	past := Summarize(&p, "u1", summarySentAt.Add(-time.Minute))
	assert.Equal(t, 0.0, past.Progress)

	late := Summarize(&p, "u1", summarySentAt.Add(2*time.Hour))
	assert.Equal(t, 1.0, late.Progress)
	assert.Equal(t, time.Duration(0), late.Remaining)
}

func TestSummarizeNoExpiry(t *testing.T) {
	p := expiringPing(time.Hour)
	p.ExpiresAt = nil
	s := Summarize(&p, "u1", summarySentAt)
	assert.False(t, s.HasExpiry)
	assert.Zero(t, s.Progress)
}

func TestDescribeRecipients(t *testing.T) {
	names := map[string]string{
		"u2": "Alice Johnson",
		"u3": "Bob Lee",
		"u4": "Carol May",
		"u5": "Dan Roe",
	}
	userName := func(id string) (string, bool) {
		n, ok := names[id]
		return n, ok
	}
	groupName := func(id string) (string, bool) {
		if id == "g1" {
			return "Weekend Crew", true
		}
		return "", false
	}

	friendsPing := func(recips ...string) models.Ping {
		return models.Ping{
			Mode:       models.ModeFriends,
			SenderID:   "u1",
			Recipients: append([]string{"u1"}, recips...),
		}
	}

	tests := []struct {
		name string
		ping models.Ping
		want string
	}{
		{"group ping uses group name", models.Ping{Mode: models.ModeGroup, GroupID: "g1"}, "Weekend Crew"},
		{"unknown group degrades", models.Ping{Mode: models.ModeGroup, GroupID: "gone"}, "a group"},
		{"one friend", friendsPing("u2"), "Alice"},
		{"two friends", friendsPing("u2", "u3"), "Alice & Bob"},
		{"three friends", friendsPing("u2", "u3", "u4"), "Alice, Bob & 1 more"},
		{"four friends", friendsPing("u2", "u3", "u4", "u5"), "Alice, Bob & 2 more"},
		{"unknown friends degrade", friendsPing("x", "y"), "friends"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeRecipients(&tt.ping, groupName, userName))
		})
	}
}
