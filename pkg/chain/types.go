// Package chain defines the types and collaborator interfaces the
// edge-connect core consumes from the host ledger: block heights and hashes,
// the runtime call union, transactions, and the submission/keystore
// primitives. The real consensus engine sits behind these interfaces; an
// in-memory SimChain is provided for the node binary and tests.
package chain

import (
	"encoding/json"
	"fmt"
)

// AccountID identifies a signing account: the hex-encoded ed25519 public key.
type AccountID string

// Height is a block height.
type Height uint64

// Hash is a hex-encoded block hash.
type Hash string

// CallKind discriminates the runtime call union.
type CallKind string

const (
	KindCreateConnection  CallKind = "create_connection"
	KindSendCommand       CallKind = "send_command"
	KindReceiveResponse   CallKind = "receive_response"
	KindRemoveConnection  CallKind = "remove_connection"
	KindRecordResponse    CallKind = "record_response"
	KindRecordResponseRaw CallKind = "record_response_raw"
)

// Call is the closed union of runtime calls. Only the types in this package
// implement it.
type Call interface {
	Kind() CallKind
}

// CreateConnection registers the singleton connection slot.
type CreateConnection struct {
	Connection uint32
}

// SendCommand forwards a command to the edge server.
type SendCommand struct {
	Command string
}

// ReceiveResponse reads the latest buffered edge-server response.
type ReceiveResponse struct{}

// RemoveConnection clears the singleton connection slot.
type RemoveConnection struct {
	Connection uint32
}

// RecordResponse commits a relayed edge-server response on-ledger. Public
// carries the local signer identity embedded by the unsigned-for-any and
// unsigned-for-all strategies; it is empty on the signed path, where the
// transaction signer itself attributes the call.
type RecordResponse struct {
	Response string
	Height   Height
	Public   AccountID
}

// RecordResponseRaw is the bespoke unsigned relay payload: no signer
// identity, keyed only by the height it was produced at.
type RecordResponseRaw struct {
	Response string
	Height   Height
}

func (CreateConnection) Kind() CallKind { return KindCreateConnection }
func (SendCommand) Kind() CallKind { return KindSendCommand }
func (ReceiveResponse) Kind() CallKind { return KindReceiveResponse }
func (RemoveConnection) Kind() CallKind { return KindRemoveConnection }
func (RecordResponse) Kind() CallKind { return KindRecordResponse }
func (RecordResponseRaw) Kind() CallKind { return KindRecordResponseRaw }

// Transaction is a runtime call wrapped for pool submission. Signer and
// Signature are empty on unsigned transactions.
type Transaction struct {
	ID        string
	Call      Call
	Signer    AccountID
	Signature []byte
}

// IsSigned reports whether the transaction carries a signer attribution.
func (t Transaction) IsSigned() bool {
	return t.Signer != ""
}

type callEnvelope struct {
	Kind       CallKind  `json:"kind"`
	Connection uint32    `json:"connection,omitempty"`
	Command    string    `json:"command,omitempty"`
	Response   string    `json:"response,omitempty"`
	Height     Height    `json:"height,omitempty"`
	Public     AccountID `json:"public,omitempty"`
}

// EncodeCall produces the canonical byte encoding of a call, used as the
// signing payload. json.Marshal over a fixed envelope keeps the encoding
// stable across processes.
func EncodeCall(c Call) ([]byte, error) {
	env := callEnvelope{Kind: c.Kind()}
	switch call := c.(type) {
	case CreateConnection:
		env.Connection = call.Connection
	case SendCommand:
		env.Command = call.Command
	case ReceiveResponse:
	case RemoveConnection:
		env.Connection = call.Connection
	case RecordResponse:
		env.Response = call.Response
		env.Height = call.Height
		env.Public = call.Public
	case RecordResponseRaw:
		env.Response = call.Response
		env.Height = call.Height
	default:
		return nil, fmt.Errorf("unknown call kind %q", c.Kind())
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode call: %w", err)
	}
	return raw, nil
}
