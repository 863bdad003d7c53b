package models

// TokenData is the resolved identity behind a bearer credential.
type TokenData struct {
	UserID string
	Email  string
}
