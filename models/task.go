package models

type (
	// Task represents one entry of the response from GET /api/kase/{id}/tasks
	Task struct {
		ID          *ID    `json:"id,omitempty"`
		Description string `json:"description,omitempty"`
		Detail      string `json:"detail,omitempty"`
		Category    string `json:"category,omitempty"`
		DueDate     *Date  `json:"dueDate,omitempty"`
		Owner       string `json:"owner,omitempty"`
		CaseID      *ID    `json:"caseId,omitempty"`
	}
)
