package models

import "time"

// Activity is a plannable event with schedule, location, attendees and comments.
type Activity struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Category    string     `db:"category" json:"category"`
	Date        time.Time  `db:"date" json:"date"`
	City        string     `db:"city" json:"city"`
	Venue       string     `db:"venue" json:"venue"`
	IsGoing     bool       `db:"-" json:"isGoing"`
	IsHost      bool       `db:"-" json:"isHost"`
	Attendees   []Attendee `db:"-" json:"attendees"`
	Comments    []Comment  `db:"-" json:"comments"`
}

// HostUsername returns the username of the attendee flagged as host, or "".
func (a *Activity) HostUsername() string {
	for _, att := range a.Attendees {
		if att.IsHost {
			return att.Username
		}
	}
	return ""
}

// Attendee is a user's participation record on an activity.
type Attendee struct {
	Username    string `db:"username" json:"username"`
	DisplayName string `db:"display_name" json:"displayName"`
	Image       string `db:"image" json:"image"`
	IsHost      bool   `db:"is_host" json:"isHost"`
}
