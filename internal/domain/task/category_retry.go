package task

// CategoryRetryTask re-fetches a single rail category whose page failed to import.
type CategoryRetryTask struct {
	Name       string `json:"name"`        // Category name from the rail
	Label      string `json:"label"`       // Rail label
	Kind       string `json:"kind"`        // normal or special
	ImageRef   string `json:"image_ref"`   // Rail image
	PageURL    string `json:"page_url"`    // Category page to fetch
	RetryCount int    `json:"retry_count"` // Number of attempts so far
	Error      string `json:"error"`       // Error message from the last failure
}

func (t *CategoryRetryTask) TaskType() string {
	return "CategoryRetryTask"
}

func (t *CategoryRetryTask) TaskValue() ([]byte, error) {
	return DefaultTaskValue(t)
}
