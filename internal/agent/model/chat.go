package model

// ConversationTurn is one caller-supplied history entry, in chronological order.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IncomingRequest is the decoded inbound body.
type IncomingRequest struct {
	UserMessage string
	Messages    []ConversationTurn
}

// SearchInfo tells the caller which searches actually produced results.
type SearchInfo struct {
	Searches  []PlannedSearch `json:"searches"`
	Reasoning string          `json:"reasoning,omitempty"`
}

// EmptySearchInfo returns a SearchInfo whose searches serialise as [].
func EmptySearchInfo() SearchInfo {
	return SearchInfo{Searches: []PlannedSearch{}}
}

// OutgoingResponse is the body of every HTTP 200 answer.
type OutgoingResponse struct {
	Content    string     `json:"content"`
	SearchInfo SearchInfo `json:"searchInfo"`
}

// ErrorResponse is the body of the HTTP 500 answer. Content is still set so
// callers that only read it degrade gracefully.
type ErrorResponse struct {
	Error      string     `json:"error"`
	Content    string     `json:"content"`
	SearchInfo SearchInfo `json:"searchInfo"`
}

// NewErrorResponse builds the failure envelope from a raw failure description.
func NewErrorResponse(cause string) ErrorResponse {
	return ErrorResponse{
		Error:      cause,
		Content:    "Server error: " + cause,
		SearchInfo: EmptySearchInfo(),
	}
}
