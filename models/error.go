package models

type (
	// Error represents any erroneous response from the CapsuleCRM API
	Error struct {
		Message string `json:"message"`
	}
)
