package models

// Profile is the public view of a user.
type Profile struct {
	Username    string  `db:"username" json:"username"`
	DisplayName string  `db:"display_name" json:"displayName"`
	Image       string  `db:"image" json:"image"`
	Bio         string  `db:"bio" json:"bio"`
	Photos      []Photo `db:"-" json:"photos"`
}

// Photo is an uploaded profile image.
type Photo struct {
	ID     string `db:"id" json:"id"`
	URL    string `db:"url" json:"url"`
	IsMain bool   `db:"is_main" json:"isMain"`
}

// User is the authenticated account as seen by the client.
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Image       string `json:"image"`
	Token       string `json:"token"`
}
