package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the only version tag this package speaks.
const ProtocolVersion = "2.0"

/*
Version is the protocol tag field. It serializes as the literal "2.0" and
refuses anything else on the way in, so a request carrying a foreign
version fails structural parsing as a whole rather than being half
accepted.
*/
type Version struct{}

func (Version) MarshalJSON() ([]byte, error) {
	return []byte(`"` + ProtocolVersion + `"`), nil
}

func (*Version) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag != ProtocolVersion {
		return fmt.Errorf("jsonrpc: unsupported version %q", tag)
	}

	return nil
}

/*
Request is one JSON-RPC 2.0 call as read off the wire. Params stays raw
until a handler interprets it, and an absent id leaves ID as the
notification marker.
*/
type Request struct {
	JSONRPC Version         `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      ID              `json:"id"`
}

// NewRequest builds a call for the given id. Use NewNotification when no
// reply is wanted.
func NewRequest(method string, params any, id ID) (Request, error) {
	req := Request{Method: method, ID: id}

	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return Request{}, fmt.Errorf("jsonrpc: marshal params for %s: %w", method, err)
		}
		req.Params = raw
	}

	return req, nil
}

// NewNotification builds a call whose outcome the caller never sees.
func NewNotification(method string, params any) (Request, error) {
	return NewRequest(method, params, ID{})
}

/*
MarshalJSON omits the id field entirely for notifications. Writing
"id":null instead would turn the call into a regular request, so the
distinction has to be made at the field level.
*/
func (r Request) MarshalJSON() ([]byte, error) {
	if r.ID.IsNotification() {
		return json.Marshal(struct {
			JSONRPC Version         `json:"jsonrpc"`
			Method  string          `json:"method"`
			Params  json.RawMessage `json:"params,omitempty"`
		}{Method: r.Method, Params: r.Params})
	}

	type wire Request
	return json.Marshal(wire(r))
}

/*
UnmarshalJSON enforces the structural rules a plain field decode would let
slide: the version tag and the method name must both be present. Their
absence is a parse failure, exactly like a wrong-typed field.
*/
func (r *Request) UnmarshalJSON(data []byte) error {
	type wire Request

	aux := struct {
		JSONRPC *Version `json:"jsonrpc"`
		Method  *string  `json:"method"`
		*wire
	}{wire: (*wire)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.JSONRPC == nil {
		return fmt.Errorf("jsonrpc: missing version tag")
	}

	if aux.Method == nil {
		return fmt.Errorf("jsonrpc: missing method")
	}

	r.Method = *aux.Method
	return nil
}
