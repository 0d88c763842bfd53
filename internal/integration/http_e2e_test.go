//go:build integration || !unit

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	server "review_insights/internal/adapters/http_server"
	"review_insights/internal/adapters/huggingface"
	redisad "review_insights/internal/adapters/redis"
	"review_insights/internal/app"
	"review_insights/internal/domain"
	mysqlrepo "review_insights/internal/storage/mysql"
	"review_insights/internal/storage/mysql/mysqltest"
)

// ---------- helpers ----------

// fakeModel answers like the hosted inference API: nested label lists, an
// error object for texts containing "glitch".
func fakeModel(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		var in struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		switch {
		case strings.Contains(in.Inputs, "glitch"):
			_, _ = w.Write([]byte(`{"error":"unexpected"}`))
		case strings.Contains(in.Inputs, "great"):
			_, _ = w.Write([]byte(`[[{"label":"POSITIVE","score":0.99},{"label":"NEGATIVE","score":0.01}]]`))
		default:
			_, _ = w.Write([]byte(`[[{"label":"NEGATIVE","score":0.95},{"label":"POSITIVE","score":0.05}]]`))
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

// ---------- the test ----------

func TestHTTP_EndToEnd_UploadAndFetchReport(t *testing.T) {
	db := mysqltest.Start(t)

	mr := miniredis.RunT(t)
	cache := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "e2e:")

	var modelCalls int32
	model, err := huggingface.New(fakeModel(t, &modelCalls).URL, "", "token", 1000)
	if err != nil {
		t.Fatalf("model client: %v", err)
	}
	classifier := app.NewModelClassifier(model, 2*time.Second).WithCache(cache, time.Hour)

	srv := server.New(30 * time.Second)
	srv.MountHandlers(&server.Handlers{
		A: app.NewAnalysisService(classifier, 4),
		R: app.NewReportService(mysqlrepo.New(db), cache, time.Minute),
	})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	csv := "id,review_text\n" +
		"1,Great service!\n" +
		"2,\"Terrible wait, so slow\"\n" +
		"3,staff was rude and slow\n" +
		"4,glitch in the matrix\n" +
		"5,Terrible wait; so slow!!\n"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "week42.csv")
	_, _ = io.WriteString(fw, csv)
	_ = mw.Close()

	res, err := http.Post(ts.URL+"/v1/analyze", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("status %d: %s", res.StatusCode, b)
	}
	var result domain.AnalysisResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if result.Summary.TotalReviews != 5 {
		t.Fatalf("total = %d", result.Summary.TotalReviews)
	}
	wantSent := []domain.SentimentCount{
		{Sentiment: domain.Negative, Count: 3, Percentage: 60},
		{Sentiment: domain.Positive, Count: 1, Percentage: 20},
		{Sentiment: domain.Neutral, Count: 1, Percentage: 20},
	}
	if fmt.Sprint(result.Summary.SentimentBreakdown) != fmt.Sprint(wantSent) {
		t.Fatalf("breakdown = %+v", result.Summary.SentimentBreakdown)
	}
	wantIssues := []domain.IssueRecord{
		{Issue: domain.IssueLongWait, Count: 2, Severity: domain.SeverityLow},
		{Issue: domain.IssueRudeStaff, Count: 1, Severity: domain.SeverityLow},
	}
	if fmt.Sprint(result.IssueAnalysis.Issues) != fmt.Sprint(wantIssues) {
		t.Fatalf("issues = %+v", result.IssueAnalysis.Issues)
	}
	// rows 2 and 5 normalize to the same text, so the cache saves one model call
	if got := atomic.LoadInt32(&modelCalls); got > 5 {
		t.Fatalf("model calls = %d", got)
	}

	id := res.Header.Get("X-Report-ID")
	if id == "" {
		t.Fatalf("missing X-Report-ID")
	}
	mr.FlushAll() // force the read to hit MySQL

	get, err := http.Get(ts.URL + "/v1/reports/" + id)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer get.Body.Close()
	if get.StatusCode != http.StatusOK {
		t.Fatalf("status %d", get.StatusCode)
	}
	var rep domain.Report
	if err := json.NewDecoder(get.Body).Decode(&rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.ID != id || rep.Source != "week42.csv" || rep.Result.Summary.TotalReviews != 5 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}
