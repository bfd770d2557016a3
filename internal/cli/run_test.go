package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"azor/internal/credential"
	"azor/internal/llm"
	"azor/internal/version"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != version.Version {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRequestCommand(t *testing.T) {
	out, _, err := execute(t, "request", "--model", "gemini-custom", "--thinking-budget", "128")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var req llm.GenerateRequest
	if err := json.Unmarshal([]byte(out), &req); err != nil {
		t.Fatalf("output is not a request: %v\n%s", err, out)
	}
	if req.Model != "gemini-custom" {
		t.Fatalf("unexpected model: %s", req.Model)
	}
	if len(req.Turns) != 3 || req.Turns[0].Role != llm.RoleUser || req.Turns[1].Role != llm.RoleModel {
		t.Fatalf("unexpected turns: %+v", req.Turns)
	}
	if req.Options.ThinkingBudget == nil || *req.Options.ThinkingBudget != 128 {
		t.Fatalf("unexpected thinking budget: %v", req.Options.ThinkingBudget)
	}
}

func TestRunMissingCredential(t *testing.T) {
	t.Setenv(credential.DefaultEnv, "")
	_, _, err := execute(t, "run", "--backend", "rest", "--url", "http://127.0.0.1:1")
	if !errors.Is(err, credential.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestRunRESTBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if _, ok := body["generationConfig"]; !ok {
			t.Fatalf("thinking budget not sent: %v", body)
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Woof, hello!"}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	t.Setenv(credential.DefaultEnv, "AIzaSyCLI-test-key-1234")
	out, errOut, err := execute(t, "run", "--log-format", "text", "--backend", "rest", "--url", server.URL, "--model", "gemini-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Woof, hello!\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(errOut, "AIza...1234") {
		t.Fatalf("masked key not logged: %q", errOut)
	}
}

func TestRunRemoteErrorExitsCleanly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	t.Setenv(credential.DefaultEnv, "AIzaSyCLI-test-key-1234")
	out, errOut, err := execute(t, "run", "--log-format", "text", "--backend", "rest", "--url", server.URL)
	if err != nil {
		t.Fatalf("remote error should not fail the command: %v", err)
	}
	if out != "" {
		t.Fatalf("unexpected stdout: %q", out)
	}
	if !strings.Contains(errOut, "boom") {
		t.Fatalf("error not reported: %q", errOut)
	}
}

func TestInvalidConfigFails(t *testing.T) {
	_, _, err := execute(t, "request", "--log-format", "xml")
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
