// Package thinknode implements JSON HTTP clients for the remote object
// store and calculation provider the engine fronts (spec §1, §6): the
// Identity & Access Management (IAM) realm/context lookup, the
// Immutable Semantic Storage (ISS) object store, and the calculation
// submission (APM/calc) endpoint shapes. Only JSON is implemented — the
// retrieved example pack carries no MessagePack library, and spec §6
// does not require the binary wire format (see DESIGN.md).
package thinknode

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/httpconn"
	"github.com/urlofmar/cradle-sub001/internal/progress"
)

// Client is a thin JSON-over-HTTP client reused across many calls,
// grounded on the teacher's internal/federation/handshake_client.go and
// internal/marketplace/connectors.go outbound-client idiom (one
// constructed client/connection, bearer token attached per call, JSON
// body marshal/unmarshal wrapped in cerr).
type Client struct {
	conn    httpconn.Connection
	baseURL string
	token   string
}

// NewClient returns a Client issuing requests over conn (which may be a
// production httpconn.Connection or an httpconn.MockConnection in
// tests).
func NewClient(conn httpconn.Connection, baseURL, token string) *Client {
	return &Client{conn: conn, baseURL: baseURL, token: token}
}

func (c *Client) do(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, method, path string, body any) ([]byte, error) {
	var bodyBytes []byte
	if body != nil {
		var err error
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			return nil, cerr.Wrap(cerr.Parse, err, "marshaling thinknode request body")
		}
	}

	resp, err := c.conn.PerformRequest(ctx, checkIn, reporter, httpconn.Request{
		Method: method,
		URL:    c.baseURL + path,
		Headers: map[string]string{
			"Authorization": "Bearer " + c.token,
			"Content-Type":  "application/json",
			"Accept":        "application/json",
		},
		Body: bodyBytes,
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, cerr.New(cerr.Protocol, "thinknode request failed").
			With("status", resp.StatusCode).With("path", path).With("body", string(resp.Body))
	}
	return resp.Body, nil
}

// Context is the IAM realm context returned by GetContext.
type Context struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// GetContext fetches the calculation context for realm (IAM).
func (c *Client) GetContext(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, realm string) (Context, error) {
	body, err := c.do(ctx, checkIn, reporter, "GET", "/iam/realms/"+realm+"/context", nil)
	if err != nil {
		return Context{}, err
	}
	var out Context
	if err := json.Unmarshal(body, &out); err != nil {
		return Context{}, cerr.Wrap(cerr.Parse, err, "decoding IAM context response")
	}
	return out, nil
}

// PutObject uploads obj as an ISS immutable object of the given type and
// returns its assigned object id.
func (c *Client) PutObject(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, contextID, objectType string, obj dynamic.Value) (string, error) {
	path := fmt.Sprintf("/iss/%s?context=%s", objectType, contextID)
	body, err := c.do(ctx, checkIn, reporter, "POST", path, dynamic.ToJSON(obj))
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", cerr.Wrap(cerr.Parse, err, "decoding ISS put-object response")
	}
	return out.ID, nil
}

// GetObject fetches the ISS object stored under objectID.
func (c *Client) GetObject(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, contextID, objectID string) (dynamic.Value, error) {
	path := fmt.Sprintf("/iss/%s?context=%s", objectID, contextID)
	body, err := c.do(ctx, checkIn, reporter, "GET", path, nil)
	if err != nil {
		return dynamic.Value{}, err
	}
	v, err := dynamic.UnmarshalJSON(body)
	if err != nil {
		return dynamic.Value{}, cerr.Wrap(cerr.Parse, err, "decoding ISS get-object response")
	}
	return v, nil
}

// SubmitCalculation posts a calculation request (the dynamic-value
// encoding of a request.Apply/Meta tree, per spec §6) and returns the
// assigned calculation id.
func (c *Client) SubmitCalculation(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, contextID string, calcRequest dynamic.Value) (string, error) {
	path := "/calc/" + contextID
	body, err := c.do(ctx, checkIn, reporter, "POST", path, dynamic.ToJSON(calcRequest))
	if err != nil {
		return "", err
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", cerr.Wrap(cerr.Parse, err, "decoding calc submission response")
	}
	return out.ID, nil
}

// CalculationStatus is the polled state of a submitted calculation.
type CalculationStatus struct {
	State    string  `json:"state"`
	Progress float64 `json:"progress"`
}

// GetCalculationStatus polls the status of a previously submitted
// calculation.
func (c *Client) GetCalculationStatus(ctx context.Context, checkIn progress.CheckIn, reporter progress.Reporter, contextID, calcID string) (CalculationStatus, error) {
	path := fmt.Sprintf("/calc/%s/%s/status", contextID, calcID)
	body, err := c.do(ctx, checkIn, reporter, "GET", path, nil)
	if err != nil {
		return CalculationStatus{}, err
	}
	var out CalculationStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return CalculationStatus{}, cerr.Wrap(cerr.Parse, err, "decoding calc status response")
	}
	return out, nil
}
