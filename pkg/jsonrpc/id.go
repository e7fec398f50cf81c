package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// idKind discriminates the variants an ID can hold. The zero value is the
// notification marker so an absent wire field decodes to it without any
// extra plumbing.
type idKind uint8

const (
	idNotification idKind = iota
	idNumber
	idString
	idNull
)

/*
ID is the JSON-RPC 2.0 request identifier: an integer, a string, an
explicit null, or — when the field was omitted — the notification marker.
The marker means "no response is ever produced for this exchange"; it only
appears on parsed Requests and must never reach a Response.

ID values are comparable with ==.
*/
type ID struct {
	kind idKind
	num  int64
	str  string
}

// NewNumberID returns an integer identifier.
func NewNumberID(n int64) ID { return ID{kind: idNumber, num: n} }

// NewStringID returns a text identifier.
func NewStringID(s string) ID { return ID{kind: idString, str: s} }

// NullID returns the explicit-null identifier used on error responses when
// the originating id could not be recovered.
func NullID() ID { return ID{kind: idNull} }

// IsNotification reports whether the id field was absent from the request.
func (id ID) IsNotification() bool { return id.kind == idNotification }

// IsNull reports whether the id is the explicit JSON null.
func (id ID) IsNull() bool { return id.kind == idNull }

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case idNumber:
		return strconv.AppendInt(nil, id.num, 10), nil
	case idString:
		return json.Marshal(id.str)
	case idNull:
		return []byte("null"), nil
	}
	// Response construction filters notifications first, so this is
	// unreachable through the dispatch path.
	return nil, fmt.Errorf("jsonrpc: notification marker cannot be serialized")
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0:
		return fmt.Errorf("jsonrpc: empty id")
	case bytes.Equal(data, []byte("null")):
		*id = ID{kind: idNull}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{kind: idString, str: s}
		return nil
	}

	// Only integers are admissible numbers: 1.1 and friends must fail the
	// whole request parse.
	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("jsonrpc: invalid id %s", data)
	}
	*id = ID{kind: idNumber, num: n}
	return nil
}

// rank maps variants onto the total order number < string < null <
// notification.
func (id ID) rank() int {
	switch id.kind {
	case idNumber:
		return 0
	case idString:
		return 1
	case idNull:
		return 2
	}
	return 3
}

// Compare orders ids by variant (number < string < null < notification) and
// by value within a variant. Dispatch never needs it; tests use it to sort
// batch output deterministically.
func (id ID) Compare(other ID) int {
	if r, o := id.rank(), other.rank(); r != o {
		if r < o {
			return -1
		}
		return 1
	}

	switch id.kind {
	case idNumber:
		switch {
		case id.num < other.num:
			return -1
		case id.num > other.num:
			return 1
		}
	case idString:
		return strings.Compare(id.str, other.str)
	}

	return 0
}

// String renders the id for log output.
func (id ID) String() string {
	switch id.kind {
	case idNumber:
		return strconv.FormatInt(id.num, 10)
	case idString:
		return id.str
	case idNull:
		return "null"
	}
	return "<notification>"
}
