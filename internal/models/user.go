package models

import "time"

// UserStatus is the short availability line shown next to a user's name.
type UserStatus struct {
	Emoji     string    `bson:"emoji" json:"emoji"`
	Text      string    `bson:"text" json:"text"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

type User struct {
	ID             string     `bson:"_id,omitempty" json:"id"`
	Email          string     `bson:"email,omitempty" json:"email,omitempty"`
	DisplayName    string     `bson:"display_name" json:"display_name"`
	ProfilePicture string     `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Status         UserStatus `bson:"status" json:"status"`
	PushToken      string     `bson:"push_token,omitempty" json:"-"`
	CreatedAt      time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// DefaultStatus is assigned when a user document is first created.
func DefaultStatus(now time.Time) UserStatus {
	return UserStatus{Emoji: "🟢", Text: "Free", UpdatedAt: now}
}
