package dto

import "time"

// ErrorResponse is the JSON body returned by every failing endpoint.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid query parameters"`
	ErrorDetails string    `json:"error_details,omitempty" example:"Key: 'n' Error:Field validation for 'n' failed on the 'max' tag"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse; err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
