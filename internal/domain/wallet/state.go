// Package wallet provides the wallet connection state seen by the first render.
package wallet

import "github.com/cockroachdb/errors"

// Status represents the connection status of a wallet session.
type Status int

const (
	StatusDisconnected Status = iota // No prior session
	StatusReconnecting               // Prior session found, client finishes reconnecting
	StatusConnected                  // Client confirmed the connection
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "disconnected":
		*s = StatusDisconnected
	case "reconnecting":
		*s = StatusReconnecting
	case "connected":
		*s = StatusConnected
	default:
		return errors.Newf("unknown wallet status %q", text)
	}
	return nil
}

// Connector identifies the wallet connector that owns a connection.
type Connector struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	UID  string `json:"uid"`
}

// Connection is one stored wallet connection.
type Connection struct {
	Accounts  []string  `json:"accounts"`
	ChainID   int64     `json:"chainId"`
	Connector Connector `json:"connector"`
}

// InitialState is the connection state derived once per request.
// It is passed by value and never mutated after construction.
type InitialState struct {
	Status    Status    `json:"status"`
	Address   string    `json:"address,omitempty"`
	ChainID   int64     `json:"chainId"`
	Connector Connector `json:"connector,omitempty"`
	Current   string    `json:"current,omitempty"`
}

// Disconnected returns the "no prior session" state on the given chain.
func Disconnected(chainID int64) InitialState {
	return InitialState{
		Status:  StatusDisconnected,
		ChainID: chainID,
	}
}

// IsConnected reports whether the first render should show an account.
func (s InitialState) IsConnected() bool {
	return s.Status != StatusDisconnected && s.Address != ""
}

// DisplayAddress returns the abbreviated address, or empty when disconnected.
func (s InitialState) DisplayAddress() string {
	if !s.IsConnected() {
		return ""
	}
	return ShortAddress(s.Address)
}
