package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDeliverPostsHTMLMessage(t *testing.T) {
	t.Parallel()

	var gotPath, gotText, gotMode, gotChat string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotText = r.PostFormValue("text")
		gotMode = r.PostFormValue("parse_mode")
		gotChat = r.PostFormValue("chat_id")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier("token123", "@channel")
	n.apiBase = server.URL
	n.client = server.Client()

	err := n.Deliver(context.Background(), "🚨 <b>headline</b>", "https://news.example.com/a")
	if err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	if gotPath != "/bottoken123/sendMessage" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotChat != "@channel" {
		t.Fatalf("chat = %s", gotChat)
	}
	if gotMode != "HTML" {
		t.Fatalf("parse mode = %s", gotMode)
	}
	if !strings.Contains(gotText, "<b>headline</b>") || !strings.Contains(gotText, `<a href="https://news.example.com/a">`) {
		t.Fatalf("text = %s", gotText)
	}
}

func TestDeliverFailureIsDistinguishable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := NewNotifier("token123", "@channel")
	n.apiBase = server.URL
	n.client = server.Client()

	err := n.Deliver(context.Background(), "msg", "")
	if !errors.Is(err, ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}

func TestDeliverMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier("", "")
	if err := n.Deliver(context.Background(), "msg", ""); !errors.Is(err, ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
}
