package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/buildgate/pkg/domain/model"
	"github.com/m-mizutani/buildgate/pkg/infra/notify"
)

func testReport() *model.RunReport {
	return &model.RunReport{
		RunID: "run-1",
		Decision: &model.GateDecision{
			BuildNeeded: true,
			Reason:      model.ReasonCodeChanges,
			CurrentHash: "f9e8d7c",
		},
		Release: &model.PublishedRelease{
			ID:      42,
			TagName: "f9e8d7c",
			HTMLURL: "https://github.com/owner/repo/releases/tag/f9e8d7c",
		},
	}
}

func TestSlackNotifier_NotifyRelease(t *testing.T) {
	var payload struct {
		Text string `json:"text"`
	}
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		gt.NoError(t, json.Unmarshal(body, &payload))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	n := notify.NewSlack(server.URL)
	gt.NoError(t, n.NotifyRelease(context.Background(), testReport()))

	gt.Number(t, calls).Equal(1)
	gt.String(t, payload.Text).Contains("f9e8d7c")
	gt.String(t, payload.Text).Contains("code_changes")
	gt.String(t, payload.Text).Contains("https://github.com/owner/repo/releases/tag/f9e8d7c")
}

func TestSlackNotifier_NoReleaseIsNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("webhook must not be called when no release was published")
	}))
	defer server.Close()

	report := testReport()
	report.Release = nil

	n := notify.NewSlack(server.URL)
	gt.NoError(t, n.NotifyRelease(context.Background(), report))
}

func TestSlackNotifier_WebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := notify.NewSlack(server.URL)
	gt.Error(t, n.NotifyRelease(context.Background(), testReport()))
}
