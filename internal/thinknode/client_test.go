package thinknode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/urlofmar/cradle-sub001/internal/cerr"
	"github.com/urlofmar/cradle-sub001/internal/dynamic"
	"github.com/urlofmar/cradle-sub001/internal/httpconn"
)

func noopCheckIn() error { return nil }

func TestGetContext(t *testing.T) {
	mock := httpconn.NewMockConnection(httpconn.Exchange{
		ExpectMethod: "GET",
		ExpectURL:    "https://api.example/iam/realms/acme/context",
		Response:     httpconn.Response{StatusCode: 200, Body: []byte(`{"id":"ctx-1","name":"acme"}`)},
	})
	c := NewClient(mock, "https://api.example", "tok")

	got, err := c.GetContext(context.Background(), noopCheckIn, nil, "acme")
	require.NoError(t, err)
	require.Equal(t, Context{ID: "ctx-1", Name: "acme"}, got)
}

func TestPutAndGetObject(t *testing.T) {
	mock := httpconn.NewMockConnection(
		httpconn.Exchange{ExpectMethod: "POST", Response: httpconn.Response{StatusCode: 200, Body: []byte(`{"id":"obj-1"}`)}},
		httpconn.Exchange{ExpectMethod: "GET", Response: httpconn.Response{StatusCode: 200, Body: []byte(`"hello"`)}},
	)
	c := NewClient(mock, "https://api.example", "tok")

	id, err := c.PutObject(context.Background(), noopCheckIn, nil, "ctx-1", "string", dynamic.String("hello"))
	require.NoError(t, err)
	require.Equal(t, "obj-1", id)

	v, err := c.GetObject(context.Background(), noopCheckIn, nil, "ctx-1", id)
	require.NoError(t, err)
	require.True(t, dynamic.String("hello").Equals(v))
}

func TestSubmitAndPollCalculation(t *testing.T) {
	mock := httpconn.NewMockConnection(
		httpconn.Exchange{ExpectMethod: "POST", Response: httpconn.Response{StatusCode: 200, Body: []byte(`{"id":"calc-1"}`)}},
		httpconn.Exchange{ExpectMethod: "GET", Response: httpconn.Response{StatusCode: 200, Body: []byte(`{"state":"running","progress":0.5}`)}},
	)
	c := NewClient(mock, "https://api.example", "tok")

	calcID, err := c.SubmitCalculation(context.Background(), noopCheckIn, nil, "ctx-1", dynamic.Int(1))
	require.NoError(t, err)
	require.Equal(t, "calc-1", calcID)

	status, err := c.GetCalculationStatus(context.Background(), noopCheckIn, nil, "ctx-1", calcID)
	require.NoError(t, err)
	require.Equal(t, "running", status.State)
	require.InDelta(t, 0.5, status.Progress, 1e-9)
}

func TestErrorStatusSurfacesProtocolError(t *testing.T) {
	mock := httpconn.NewMockConnection(httpconn.Exchange{
		Response: httpconn.Response{StatusCode: 500, Body: []byte("boom")},
	})
	c := NewClient(mock, "https://api.example", "tok")
	_, err := c.GetContext(context.Background(), noopCheckIn, nil, "acme")
	require.Error(t, err)
	require.True(t, cerr.Is(err, cerr.Protocol))
}
