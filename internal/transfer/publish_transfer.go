package transfer

// ProcessResult summarizes one executor run.
type ProcessResult struct {
	Processed int         `json:"processed"`
	Published int         `json:"published"`
	Failed    int         `json:"failed"`
	Errors    []PostError `json:"errors"`
}

type PostError struct {
	PostID int64  `json:"post_id"`
	Error  string `json:"error"`
}

type FailureNotification struct {
	PostID       int64  `json:"post_id"`
	UserEmail    string `json:"user_email"`
	Platform     string `json:"platform"`
	Content      string `json:"content"`
	ErrorMessage string `json:"error_message"`
}
