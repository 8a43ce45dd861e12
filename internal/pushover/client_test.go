package pushover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/noahxzhu/hydrate/internal/notify"
)

func TestSendPostsForm(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		got = map[string]string{}
		for k := range r.PostForm {
			got[k] = r.PostForm.Get(k)
		}
		w.Write([]byte(`{"status":1}`))
	}))
	defer srv.Close()

	c := NewClient("tok", "usr")
	c.APIURL = srv.URL

	err := c.Send(context.Background(), notify.Message{Kind: notify.KindMissed, Title: "Reminder missed", Body: "You missed the 8:00 AM reminder"})
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"token":    "tok",
		"user":     "usr",
		"title":    "Reminder missed",
		"message":  "You missed the 8:00 AM reminder",
		"priority": "-1",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: expected %q, got %q", k, v, got[k])
		}
	}
}

func TestSendReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["user key is invalid"]}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("tok", "bad")
	c.APIURL = srv.URL

	if err := c.Send(context.Background(), notify.Message{Kind: notify.KindDue}); err == nil {
		t.Fatal("Expected an error for a 400 response")
	}
}
