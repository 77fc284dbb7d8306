package types

// ErrorBody is the JSON error envelope written by the API.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// MessageBody is the common {"message": ...} acknowledgement.
type MessageBody struct {
	Message string `json:"message"`
}

// DeletedBody acknowledges a bulk delete.
type DeletedBody struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}
