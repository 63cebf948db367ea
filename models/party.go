package models

import "strings"

const (
	// PartyTypePerson is the envelope key CapsuleCRM uses for people
	PartyTypePerson = "person"
	// PartyTypeOrganisation is the envelope key CapsuleCRM uses for organisations
	PartyTypeOrganisation = "organisation"
)

type (
	// Party represents the response from GET /api/party/{id}
	// It does not represent the full response, just what a case needs
	Party struct {
		ID        *ID    `json:"id,omitempty"`
		Type      string `json:"-"`
		Name      string `json:"name,omitempty"`
		FirstName string `json:"firstName,omitempty"`
		LastName  string `json:"lastName,omitempty"`
		About     string `json:"about,omitempty"`
	}
)

// DisplayName returns the organisation name, or the person's full name
func (p Party) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
