package consent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestQueueHTTPApprove(t *testing.T) {
	q := NewQueue()
	srv := httptest.NewServer(q.Routes())
	defer srv.Close()

	done := make(chan Decision, 1)
	go func() {
		done <- q.Decide(context.Background(), Prompt{ID: "p1", Method: "personal_sign", Title: "Sign message", RequestedAt: time.Now()})
	}()
	waitForPending(t, q, 1)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var prompts []Prompt
	if err := json.NewDecoder(resp.Body).Decode(&prompts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	_ = resp.Body.Close()
	if len(prompts) != 1 || prompts[0].ID != "p1" || prompts[0].Method != "personal_sign" {
		t.Fatalf("pending list: %+v", prompts)
	}

	resp, err = http.Post(srv.URL+"/p1/approve", "application/json", nil)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve status: %d", resp.StatusCode)
	}
	if d := <-done; d != Approved {
		t.Fatalf("got %s want approved", d)
	}
}

func TestQueueHTTPUnknownPrompt(t *testing.T) {
	q := NewQueue()
	srv := httptest.NewServer(q.Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/nope/reject", "application/json", nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d want 404", resp.StatusCode)
	}
}
