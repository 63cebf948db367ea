package models

type (
	// Track represents one entry of the response from GET /api/tracks
	Track struct {
		ID          *ID    `json:"id,omitempty"`
		Description string `json:"description,omitempty"`
		CaptureRule string `json:"captureRule,omitempty"`
	}
)
