package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	fiberClient "github.com/gofiber/fiber/v3/client"
	"github.com/google/uuid"

	"github.com/theapemachine/jsonrpc-go/pkg/errors"
	"github.com/theapemachine/jsonrpc-go/pkg/jsonrpc"
	"github.com/theapemachine/jsonrpc-go/pkg/service"
)

/*
Client issues JSON-RPC 2.0 calls over HTTP against a single server.
Request ids are fresh UUID strings, so concurrent callers sharing one
Client never collide.
*/
type Client struct {
	baseURL string
	conn    *fiberClient.Client
	path    string
}

/*
New creates a client for the server at baseURL, posting to /rpc.
*/
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		conn:    fiberClient.New().SetBaseURL(baseURL),
		path:    "/rpc",
	}
}

/*
Call sends one request and returns the raw result. A server-reported
error comes back as *errors.RpcError, so callers can inspect the code.
*/
func (client *Client) Call(method string, params any) (json.RawMessage, error) {
	id := jsonrpc.NewStringID(uuid.NewString())

	resp, err := client.CallWithID(id, method, params)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return nil, resp.Error
	}

	if resp.ID != id {
		return nil, fmt.Errorf("client: response id %s does not match request id %s", resp.ID, id)
	}

	return resp.Result, nil
}

/*
CallWithID sends one request under a caller-chosen id and returns the
whole response envelope, error member included. Most callers want Call,
which generates a unique id and unwraps the result.
*/
func (client *Client) CallWithID(id jsonrpc.ID, method string, params any) (jsonrpc.Response, error) {
	req, err := jsonrpc.NewRequest(method, params, id)
	if err != nil {
		return jsonrpc.Response{}, err
	}

	body, err := client.post(req)
	if err != nil {
		return jsonrpc.Response{}, err
	}

	var resp jsonrpc.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return jsonrpc.Response{}, fmt.Errorf("client: decode response: %w", err)
	}

	return resp, nil
}

/*
Notify sends a notification: no id on the wire, no reply expected. Only
transport-level failures surface; by protocol the server stays silent
even when the method does not exist.
*/
func (client *Client) Notify(method string, params any) error {
	req, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}

	res, err := client.conn.Post(client.path, fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   req,
	})

	if err != nil {
		return err
	}

	if res.StatusCode() >= 300 {
		return fmt.Errorf("client: unexpected status %d", res.StatusCode())
	}

	return nil
}

/*
BatchEntry describes one call inside a batch. Notification entries get
no id and therefore no response slot filled.
*/
type BatchEntry struct {
	Method       string
	Params       any
	Notification bool
}

/*
CallBatch submits every entry in one round trip. The returned slice is
indexed like entries; slots for notifications, and for entries the
server never answered, hold the zero Response, recognizable by
ID.IsNotification. Server responses arrive in completion order and are
matched back to their entries by id.
*/
func (client *Client) CallBatch(entries []BatchEntry) ([]jsonrpc.Response, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	batch := make([]jsonrpc.Request, 0, len(entries))
	index := make(map[jsonrpc.ID]int, len(entries))

	// collect every broken entry before giving up, so one bad params
	// value does not hide the next
	var broken []any

	for i, entry := range entries {
		var (
			req jsonrpc.Request
			err error
		)

		if entry.Notification {
			req, err = jsonrpc.NewNotification(entry.Method, entry.Params)
		} else {
			id := jsonrpc.NewStringID(uuid.NewString())
			index[id] = i
			req, err = jsonrpc.NewRequest(entry.Method, entry.Params, id)
		}

		if err != nil {
			broken = append(broken, fmt.Sprintf("entry %d (%s)", i, entry.Method), err)
			continue
		}

		batch = append(batch, req)
	}

	if len(broken) != 0 {
		return nil, errors.New(broken...)
	}

	body, err := client.post(batch)
	if err != nil {
		return nil, err
	}

	results := make([]jsonrpc.Response, len(entries))

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return results, nil
	}

	// a whole-batch failure comes back as a single error object
	if body[0] == '{' {
		var single jsonrpc.Response
		if err := json.Unmarshal(body, &single); err == nil && single.Error != nil {
			return nil, single.Error
		}

		return nil, fmt.Errorf("client: unexpected batch response %s", body)
	}

	var responses []jsonrpc.Response
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, fmt.Errorf("client: decode batch response: %w", err)
	}

	for _, resp := range responses {
		if i, ok := index[resp.ID]; ok {
			results[i] = resp
		} else {
			log.Warn("unmatched response id", "id", resp.ID)
		}
	}

	return results, nil
}

// Discover fetches the service descriptor from /.well-known/rpc.json.
func (client *Client) Discover() (service.Descriptor, error) {
	res, err := client.conn.Get("/.well-known/rpc.json")
	if err != nil {
		return service.Descriptor{}, err
	}

	var desc service.Descriptor
	if err := json.Unmarshal(res.Body(), &desc); err != nil {
		return service.Descriptor{}, fmt.Errorf("client: decode descriptor: %w", err)
	}

	return desc, nil
}

// post sends a payload and returns the reply body. 204 yields an empty
// body by construction.
func (client *Client) post(payload any) ([]byte, error) {
	res, err := client.conn.Post(client.path, fiberClient.Config{
		Header: map[string]string{"Content-Type": "application/json"},
		Body:   payload,
	})

	if err != nil {
		return nil, err
	}

	if res.StatusCode() == http.StatusNoContent {
		return nil, nil
	}

	if res.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("client: unexpected status %d", res.StatusCode())
	}

	return res.Body(), nil
}
