package dto

// ExtractResponse represents the expense data extracted from an image, for preview.
type ExtractResponse struct {
	Data CandidateResponse `json:"data"`
	AIMeta
}

// CreateFromImageResponse represents an expense stored from an image.
type CreateFromImageResponse struct {
	Expense       ExpenseResponse   `json:"expense"`
	ExtractedData CandidateResponse `json:"extracted_data"`
	AIMeta
}
