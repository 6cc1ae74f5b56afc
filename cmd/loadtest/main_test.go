package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/customers/internal/service/customers"
	"github.com/vladislavdragonenkov/customers/internal/service/rest"
	"github.com/vladislavdragonenkov/customers/internal/storage/memory"
)

func newCustomerAPI(t *testing.T) *httptest.Server {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := logger.WithField("component", "loadtest-test")

	repo := customers.NewRepository(memory.NewCustomerStore(), nil, entry)
	srv := httptest.NewServer(rest.NewRouter(repo, entry, nil))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseMode(t *testing.T) {
	if got, err := parseMode(" crud "); err != nil || got != modeCRUD {
		t.Fatalf("parseMode(crud) = %q, %v", got, err)
	}
	if got, err := parseMode("create"); err != nil || got != modeCreate {
		t.Fatalf("parseMode(create) = %q, %v", got, err)
	}
	if _, err := parseMode("create-pay"); err == nil || !strings.Contains(err.Error(), "unsupported mode") {
		t.Fatalf("expected unsupported mode error, got %v", err)
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		cfg, err := parseConfig([]string{
			"-url=http://127.0.0.1:8000/",
			"-mode=create",
			"-total=12",
			"-concurrency=3",
			"-timeout=2s",
			"-list-every=0",
			"-output=/tmp/out.json",
		}, io.Discard)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.totalSet {
			t.Fatal("expected totalSet=true")
		}
		if cfg.baseURL != "http://127.0.0.1:8000" {
			t.Fatalf("trailing slash must be trimmed, got %s", cfg.baseURL)
		}
		if cfg.mode != modeCreate || cfg.total != 12 || cfg.concurrency != 3 || cfg.listEvery != 0 {
			t.Fatalf("unexpected config: %+v", cfg)
		}
		if cfg.timeout != 2*time.Second {
			t.Fatalf("unexpected timeout: %s", cfg.timeout)
		}
	})

	t.Run("duration mode", func(t *testing.T) {
		cfg, err := parseConfig([]string{"-duration=3s", "-concurrency=2"}, io.Discard)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.duration != 3*time.Second {
			t.Fatalf("unexpected duration: %s", cfg.duration)
		}
		if cfg.totalSet {
			t.Fatal("expected totalSet=false when -total was not provided")
		}
	})

	t.Run("validation errors", func(t *testing.T) {
		tests := []struct {
			name    string
			args    []string
			wantErr string
		}{
			{name: "invalid duration", args: []string{"-duration=bad"}, wantErr: "invalid value"},
			{name: "negative duration", args: []string{"-duration=-1s"}, wantErr: "duration must be >= 0"},
			{name: "relative url", args: []string{"-url=localhost"}, wantErr: "url must be absolute"},
			{name: "empty total", args: []string{"-total=0"}, wantErr: "total must be > 0"},
			{name: "negative list-every", args: []string{"-list-every=-1"}, wantErr: "list-every"},
			{name: "bad mode", args: []string{"-mode=x"}, wantErr: "unsupported mode"},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				_, err := parseConfig(tc.args, io.Discard)
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
				}
			})
		}
	})
}

func TestDispatchJobs(t *testing.T) {
	t.Run("count mode", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{total: 5})

		var got []int
		for v := range jobs {
			got = append(got, v)
		}
		if !slices.Equal(got, []int{0, 1, 2, 3, 4}) {
			t.Fatalf("unexpected jobs sequence: %v", got)
		}
	})

	t.Run("duration with explicit max total", func(t *testing.T) {
		jobs := make(chan int, 16)
		dispatchJobs(jobs, config{duration: time.Second, total: 3, totalSet: true})
		count := 0
		for range jobs {
			count++
		}
		if count != 3 {
			t.Fatalf("expected 3 jobs, got %d", count)
		}
	})
}

func TestCollectorAndReport(t *testing.T) {
	c := newCollector()
	c.record(scenarioKey, 10*time.Millisecond, "ok", true)
	c.record(scenarioKey, 20*time.Millisecond, "failed", false)
	c.record("create", 15*time.Millisecond, "201", true)
	c.record("create", 15*time.Millisecond, "500", false)

	r := c.buildReport(time.Now(), 2*time.Second)
	if r.TotalScenarios != 2 || r.FailedScenarios != 1 || r.SuccessScenarios != 1 {
		t.Fatalf("unexpected report totals: %+v", r)
	}
	if r.RPS != 1 {
		t.Fatalf("expected rps=1, got %f", r.RPS)
	}
	if _, ok := r.Operations[scenarioKey]; ok {
		t.Fatal("scenario must not be listed as an operation")
	}
	create := r.Operations["create"]
	if create.Calls != 2 || create.Statuses["201"] != 1 || create.Statuses["500"] != 1 || create.ErrorRate != 0.5 {
		t.Fatalf("unexpected create stats: %+v", create)
	}
}

func TestUtilityFunctions(t *testing.T) {
	if got := ratio(1, 4); got != 0.25 {
		t.Fatalf("ratio mismatch: %f", got)
	}
	if got := ratio(1, 0); got != 0 {
		t.Fatalf("ratio with zero total must be 0, got %f", got)
	}

	summary := buildLatencySummary([]float64{10, 20, 30, 40})
	if summary.Min != 10 || summary.Max != 40 || summary.Avg != 25 || summary.P50 != 25 {
		t.Fatalf("unexpected latency summary: %+v", summary)
	}
	if buildLatencySummary(nil) != (latencySummary{}) {
		t.Fatal("empty input must produce zero summary")
	}

	if got := runTarget(config{total: 50}); got != "count:50" {
		t.Fatalf("unexpected run target: %s", got)
	}
	if got := runTarget(config{duration: 2 * time.Second, total: 10, totalSet: true}); got != "duration:2s,max-total:10" {
		t.Fatalf("unexpected capped duration run target: %s", got)
	}
}

func TestWriteJSONReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	if err := writeJSONReport(path, report{TotalScenarios: 2, SuccessScenarios: 2}); err != nil {
		t.Fatalf("writeJSONReport error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.TotalScenarios != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}

	if err := writeJSONReport("../escape.json", report{}); err == nil {
		t.Fatal("expected error for path outside current directory")
	}
}

func TestRunScenario_CRUDAgainstAPI(t *testing.T) {
	srv := newCustomerAPI(t)
	cfg := config{baseURL: srv.URL, timeout: 2 * time.Second, mode: modeCRUD, listEvery: 1, namePrefix: "lt", concurrency: 1}
	col := newCollector()
	client := newAPIClient(cfg, col)

	if err := runScenario(client, cfg, 0, "run"); err != nil {
		t.Fatalf("scenario failed: %v", err)
	}

	r := col.buildReport(time.Now(), time.Second)
	for _, op := range []string{"create", "get", "update", "list", "delete"} {
		if r.Operations[op].Calls != 1 || r.Operations[op].Failed != 0 {
			t.Fatalf("unexpected %s stats: %+v", op, r.Operations[op])
		}
	}

	var remaining []customerBody
	if err := client.do("list", http.MethodGet, "/customers", nil, http.StatusOK, &remaining); err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("crud scenario must clean up, got %d customers", len(remaining))
	}
}

func TestRunScenario_FailureIsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"store down"}`))
	}))
	defer srv.Close()

	cfg := config{baseURL: srv.URL, timeout: time.Second, mode: modeCreate, namePrefix: "lt", concurrency: 1}
	col := newCollector()

	err := runScenario(newAPIClient(cfg, col), cfg, 1, "run")
	if err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected server error, got %v", err)
	}

	r := col.buildReport(time.Now(), time.Second)
	if r.FailedScenarios != 1 || r.Operations["create"].Statuses["500"] != 1 {
		t.Fatalf("unexpected report: %+v", r)
	}
}

func TestRunSmoke(t *testing.T) {
	srv := newCustomerAPI(t)
	output := filepath.Join(t.TempDir(), "report.json")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-url=" + srv.URL, "-total=20", "-concurrency=4", "-output=" + output}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "total=20 success=20 failed=0") {
		t.Fatalf("unexpected summary: %s", stdout.String())
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-concurrency=0"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}
