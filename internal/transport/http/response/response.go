package response

// Message is the wire shape of every non-record response.
type Message struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func New(status int, msg string) Message { return Message{Message: msg, Status: status} }
