package models

// MRequest is a decoded GET command. Lives for one connection only.
type MRequest struct {
	Command string `json:"command"`
	Symbol  string `json:"symbol"`
	Years   int    `json:"years"`
}

// MParameters are the estimated simulation inputs for one symbol.
type MParameters struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	S0    float64 `json:"s0"`
}

// MServedEvent is pushed to admin feed subscribers after each exchange.
type MServedEvent struct {
	ConnID    string       `json:"conn_id"`
	Symbol    string       `json:"symbol"`
	Years     int          `json:"years"`
	Outcome   string       `json:"outcome"`
	Params    *MParameters `json:"params,omitempty"`
	Error     string       `json:"error,omitempty"`
	Timestamp int64        `json:"timestamp"`
	ElapsedMs int64        `json:"elapsed_ms"`
}

// MFeedCommand is sent by websocket clients to filter the served feed.
// An empty Symbols list means every symbol.
type MFeedCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
