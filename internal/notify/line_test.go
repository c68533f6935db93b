package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLineSender_Push(t *testing.T) {
	var got pushRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	}))
	defer srv.Close()

	s := NewLineSender("tok", "U123", WithEndpoint(srv.URL))
	require.NoError(t, s.Push(context.Background(), "hello"))

	require.Equal(t, "Bearer tok", auth)
	require.Equal(t, "U123", got.To)
	require.Equal(t, []textMessage{{Type: "text", Text: "hello"}}, got.Messages)
}

func TestLineSender_TruncatesLongText(t *testing.T) {
	var got pushRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	s := NewLineSender("tok", "U123", WithEndpoint(srv.URL))
	require.NoError(t, s.Push(context.Background(), strings.Repeat("あ", maxTextLength+10)))
	require.Len(t, []rune(got.Messages[0].Text), maxTextLength)
}

func TestLineSender_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"The request body has 1 error(s)"}`))
	}))
	defer srv.Close()

	err := NewLineSender("tok", "U123", WithEndpoint(srv.URL)).Push(context.Background(), "x")
	require.ErrorContains(t, err, "LINE push returned 400")

	err = NewLineSender("", "U123").Push(context.Background(), "x")
	require.ErrorIs(t, err, ErrNotConfigured)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer slow.Close()
	err = NewLineSender("tok", "U123",
		WithEndpoint(slow.URL),
		WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}),
	).Push(context.Background(), "x")
	require.ErrorContains(t, err, "failed to send message")
}
