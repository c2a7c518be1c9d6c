// Package transport is a minimal HTTP join protocol between an issuer
// node and a user node, demonstrating start-join/process-join/
// finish-join over the wire using the groupsig codec's own byte
// encodings rather than any JSON representation of curve points.
package transport

import "encoding/json"

// Message is the generic envelope for any message sent over the
// network. Payload carries the type-specific body, deferred until a
// handler for Type is known.
type Message struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	SenderID string          `json:"senderId"`
}

// JoinRequestPayload carries a user's join message and the challenge it
// was bound to. JoinMessage is the groupsig wire encoding of a
// JoinMessage, produced by EncodeJoinMessage — encoding/json encodes a
// []byte field as base64 automatically, so no custom marshaling is
// needed the way a raw gnark-crypto point would require.
type JoinRequestPayload struct {
	SenderID    string `json:"senderId"`
	Challenge   []byte `json:"challenge"`
	JoinMessage []byte `json:"joinMessage"`
}

// JoinResponsePayload carries the issuer's JoinResponse, wire-encoded.
type JoinResponsePayload struct {
	SenderID     string `json:"senderId"`
	JoinResponse []byte `json:"joinResponse"`
}
