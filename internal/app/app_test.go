package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"azor/internal/credential"
	"azor/internal/llm"
	"azor/internal/logger"
)

const testKey = "AIzaSyTEST-middle-part-9876"

type stubClient struct {
	text     string
	err      error
	requests []llm.GenerateRequest
}

func (s *stubClient) Generate(_ context.Context, req llm.GenerateRequest) (llm.GenerateResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return llm.GenerateResponse{}, s.err
	}
	return llm.GenerateResponse{Text: s.text, FinishReason: "STOP"}, nil
}

func factoryFor(client llm.Client, calls *int) ClientFactory {
	return func(_ context.Context, _ string) (llm.Client, error) {
		if calls != nil {
			*calls++
		}
		return client, nil
	}
}

func settingsWithKey(key string, present bool) Settings {
	return Settings{
		CredentialEnv: credential.DefaultEnv,
		Lookup: func(name string) (string, bool) {
			if name != credential.DefaultEnv {
				return "", false
			}
			return key, present
		},
	}
}

func run(t *testing.T, settings Settings, client llm.Client) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), settings, factoryFor(client, nil), Output{
		Out:    &out,
		Logger: logger.New(logger.WithWriter(&errOut), logger.WithFormat(logger.FormatText)),
	})
	return out.String(), errOut.String(), err
}

func TestRunMissingCredential(t *testing.T) {
	for name, settings := range map[string]Settings{
		"absent": settingsWithKey("", false),
		"empty":  settingsWithKey("", true),
	} {
		t.Run(name, func(t *testing.T) {
			client := &stubClient{text: "unused"}
			calls := 0
			err := Run(context.Background(), settings, factoryFor(client, &calls), Output{})
			if !errors.Is(err, credential.ErrMissing) {
				t.Fatalf("expected ErrMissing, got %v", err)
			}
			if calls != 0 || len(client.requests) != 0 {
				t.Fatalf("client used despite missing credential")
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	client := &stubClient{text: "Dogs have about 300 million scent receptors."}
	out, errOut, err := run(t, settingsWithKey(testKey, true), client)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != client.text+"\n" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(errOut, credential.Mask(testKey)) {
		t.Fatalf("masked key missing from log: %q", errOut)
	}
	if strings.Contains(errOut, testKey) || strings.Contains(out, testKey) {
		t.Fatalf("full key leaked")
	}
}

func TestRunRemoteError(t *testing.T) {
	client := &stubClient{err: &llm.RemoteError{Message: "boom"}}
	out, errOut, err := run(t, settingsWithKey(testKey, true), client)
	if err != nil {
		t.Fatalf("remote error should be reported, not returned: %v", err)
	}
	if !strings.Contains(errOut, "boom") {
		t.Fatalf("error output missing message: %q", errOut)
	}
	if out != "" {
		t.Fatalf("unexpected stdout: %q", out)
	}
}

func TestRunPassesFixedConversation(t *testing.T) {
	client := &stubClient{text: "ok"}
	budget := int32(0)
	settings := settingsWithKey(testKey, true)
	settings.Model = "gemini-test"
	settings.ThinkingBudget = &budget

	if _, _, err := run(t, settings, client); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.requests) != 1 {
		t.Fatalf("expected one call, got %d", len(client.requests))
	}
	req := client.requests[0]
	if req.Model != "gemini-test" {
		t.Fatalf("unexpected model: %s", req.Model)
	}
	want := []llm.Role{llm.RoleUser, llm.RoleModel, llm.RoleUser}
	if len(req.Turns) != len(want) {
		t.Fatalf("unexpected turns: %+v", req.Turns)
	}
	for i, role := range want {
		if req.Turns[i].Role != role {
			t.Fatalf("turn %d: got %q, want %q", i, req.Turns[i].Role, role)
		}
	}
	if req.Options.ThinkingBudget == nil || *req.Options.ThinkingBudget != 0 {
		t.Fatalf("thinking budget not forwarded")
	}
}

func TestRunIdempotent(t *testing.T) {
	client := &stubClient{text: "same"}
	settings := settingsWithKey(testKey, true)

	firstOut, _, err := run(t, settings, client)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	secondOut, _, err := run(t, settings, client)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if firstOut != secondOut {
		t.Fatalf("outputs differ: %q vs %q", firstOut, secondOut)
	}
	if len(client.requests) != 2 {
		t.Fatalf("expected two calls, got %d", len(client.requests))
	}
	first, second := client.requests[0], client.requests[1]
	if first.Model != second.Model || first.SystemInstruction != second.SystemInstruction || len(first.Turns) != len(second.Turns) {
		t.Fatalf("requests differ between runs")
	}
	for i := range first.Turns {
		if first.Turns[i] != second.Turns[i] {
			t.Fatalf("turn %d differs between runs", i)
		}
	}
}

func TestRunFactoryError(t *testing.T) {
	factory := func(context.Context, string) (llm.Client, error) {
		return nil, errors.New("bad backend")
	}
	err := Run(context.Background(), settingsWithKey(testKey, true), factory, Output{})
	if err == nil || !strings.Contains(err.Error(), "bad backend") {
		t.Fatalf("expected factory error, got %v", err)
	}
}
