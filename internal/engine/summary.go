package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/skydentango/ping-social-app/internal/models"
)

// Visible reports whether the viewer may see the ping at the given instant.
// Expired pings stay in the store but are filtered out of every snapshot
// before it reaches presentation.
func Visible(p *models.Ping, viewerID string, asOf time.Time) bool {
	if !p.HasRecipient(viewerID) {
		return false
	}
	if p.ExpiresAt != nil && !asOf.Before(*p.ExpiresAt) {
		return false
	}
	return true
}

// VisibleTo filters a snapshot down to the pings the viewer may see now.
func VisibleTo(pings []models.Ping, viewerID string, asOf time.Time) []models.Ping {
	out := make([]models.Ping, 0, len(pings))
	for _, p := range pings {
		if Visible(&p, viewerID, asOf) {
			out = append(out, p)
		}
	}
	return out
}

// Summary is the per-ping display aggregate. Pure data, recomputed from the
// latest snapshot; invoking Summarize repeatedly between mutations yields
// identical results.
type Summary struct {
	Yes   int `json:"yes"`
	No    int `json:"no"`
	Maybe int `json:"maybe"`

	// OwnResponse is the viewer's current answer, empty if none.
	OwnResponse models.ResponseValue `json:"own_response,omitempty"`

	// Expiry progress, only meaningful when HasExpiry is set.
	HasExpiry bool          `json:"has_expiry"`
	Remaining time.Duration `json:"remaining,omitempty"`
	// Progress is the elapsed fraction of the ping's lifetime in [0, 1].
	Progress float64 `json:"progress,omitempty"`
}

// Summarize aggregates a ping's responses for the given viewer.
func Summarize(p *models.Ping, viewerID string, now time.Time) Summary {
	var s Summary
	for _, r := range p.Responses {
		switch r.Response {
		case models.ResponseYes:
			s.Yes++
		case models.ResponseNo:
			s.No++
		case models.ResponseMaybe:
			s.Maybe++
		}
		if r.UserID == viewerID {
			s.OwnResponse = r.Response
		}
	}
	if p.ExpiresAt != nil {
		s.HasExpiry = true
		s.Remaining = p.ExpiresAt.Sub(now)
		if s.Remaining < 0 {
			s.Remaining = 0
		}
		total := p.ExpiresAt.Sub(p.SentAt)
		if total > 0 {
			s.Progress = clamp(float64(now.Sub(p.SentAt))/float64(total), 0, 1)
		} else {
			s.Progress = 1
		}
	}
	return s
}

// NameLookup resolves an entity ID to a display name. The second return
// reports whether the entity is locally known.
type NameLookup func(id string) (string, bool)

// DescribeRecipients renders a short human label for who a ping went to:
// the group's name for group pings, or "A", "A & B", "A, B & N more" for
// friend pings. Unknown entities degrade to a generic label.
func DescribeRecipients(p *models.Ping, groupName, userName NameLookup) string {
	if p.Mode == models.ModeGroup {
		if name, ok := groupName(p.GroupID); ok && name != "" {
			return name
		}
		return "a group"
	}

	var others int
	var names []string
	for _, id := range p.Recipients {
		if id == p.SenderID {
			continue
		}
		others++
		if len(names) >= 2 {
			continue
		}
		if name, ok := userName(id); ok && name != "" {
			names = append(names, firstName(name))
		}
	}
	switch {
	case len(names) == 0:
		return "friends"
	case others == 1:
		return names[0]
	case others == 2 && len(names) == 2:
		return names[0] + " & " + names[1]
	case len(names) == 2:
		return fmt.Sprintf("%s, %s & %d more", names[0], names[1], others-2)
	default:
		return fmt.Sprintf("%s & %d more", names[0], others-1)
	}
}

func firstName(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return displayName
	}
	return fields[0]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
