package model

// User is a household member. Role is free text and not enforced anywhere.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}
