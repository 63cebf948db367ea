package models

const (
	// StatusOpen is the status CapsuleCRM assigns to a case it has not been told otherwise about
	StatusOpen = "OPEN"
	// StatusClosed marks a finished case; only then does the server honour closeDate
	StatusClosed = "CLOSED"
)

type (
	// Case represents a CapsuleCRM case as it travels inside the 'kase' envelope
	// TrackID is never sent in a body; it only goes out as the trackId query parameter on create
	Case struct {
		ID          *ID    `json:"id,omitempty"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Status      string `json:"status,omitempty"`
		CloseDate   *Date  `json:"closeDate,omitempty"`
		Owner       string `json:"owner,omitempty"`
		PartyID     *ID    `json:"partyId,omitempty"`
		TrackID     *ID    `json:"trackId,omitempty"`
	}
)
