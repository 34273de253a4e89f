package server

// ChatRequest is the inbound chat payload. ConversationID is optional; a new
// conversation is created when it is empty.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// ChatResponse carries the assistant's reply. Error is set only on the fatal
// completion-failure path, alongside the fixed apology in Response.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Response       string `json:"response"`
	Error          string `json:"error,omitempty"`
}
