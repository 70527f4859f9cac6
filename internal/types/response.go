package types

// FulfillmentResponse is the text returned to Dialogflow for one intent.
type FulfillmentResponse struct {
	Text string `json:"text"`
}

// ChatRequest is the body accepted by the inference proxy generation routes.
// Temperature and TopP are pointers so an omitted value can be told apart from zero.
type ChatRequest struct {
	Text        string   `json:"text"`
	Model       string   `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
}

type StatusResponse struct {
	Status    string `json:"status"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
}

type ModelsResponse struct {
	Status string   `json:"status"`
	Models []string `json:"models"`
}

type ChatResponse struct {
	Status   string `json:"status"`
	Response string `json:"response"`
}

// TestParametersResponse echoes the sampling parameters that were sent upstream.
// Unset values are reported as the literal "default".
type TestParametersResponse struct {
	Status     string         `json:"status"`
	Response   string         `json:"response"`
	Parameters EchoParameters `json:"parameters"`
}

type EchoParameters struct {
	Model       string `json:"model"`
	Temperature any    `json:"temperature"`
	TopP        any    `json:"topP"`
}

const (
	StatusOK      = "OK"
	StatusError   = "ERROR"
	StatusTimeout = "TIMEOUT"
)
