package models

import "time"

// MaxPingMessageLen caps ping messages.
const MaxPingMessageLen = 200

// PingMode distinguishes who a ping was addressed to.
type PingMode string

const (
	ModeGroup   PingMode = "group"
	ModeFriends PingMode = "friends"
)

// ResponseValue is a recipient's answer to a ping.
type ResponseValue string

const (
	ResponseYes   ResponseValue = "yes"
	ResponseNo    ResponseValue = "no"
	ResponseMaybe ResponseValue = "maybe"
)

// ValidResponse reports whether v is one of the three allowed answers.
func ValidResponse(v ResponseValue) bool {
	return v == ResponseYes || v == ResponseNo || v == ResponseMaybe
}

type PingResponse struct {
	UserID      string        `bson:"user_id" json:"user_id"`
	Response    ResponseValue `bson:"response" json:"response"`
	RespondedAt time.Time     `bson:"responded_at" json:"responded_at"`
}

// Ping is a broadcast prompt. Recipients are snapshotted at send time: later
// edits or deletion of the source group never change who can see or respond.
type Ping struct {
	ID         string         `bson:"_id,omitempty" json:"id"`
	Message    string         `bson:"message" json:"message"`
	Mode       PingMode       `bson:"mode" json:"mode"`
	GroupID    string         `bson:"group_id,omitempty" json:"group_id,omitempty"` // set iff Mode == ModeGroup
	SenderID   string         `bson:"sender_id" json:"sender_id"`
	Recipients []string       `bson:"recipients" json:"recipients"`
	Responses  []PingResponse `bson:"responses" json:"responses"`
	SentAt     time.Time      `bson:"sent_at" json:"sent_at"`
	ExpiresAt  *time.Time     `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
}

// HasRecipient reports whether the user may see and respond to the ping.
func (p *Ping) HasRecipient(userID string) bool {
	for _, r := range p.Recipients {
		if r == userID {
			return true
		}
	}
	return false
}

// ResponseOf returns the user's current response, if any.
func (p *Ping) ResponseOf(userID string) (PingResponse, bool) {
	for _, r := range p.Responses {
		if r.UserID == userID {
			return r, true
		}
	}
	return PingResponse{}, false
}
