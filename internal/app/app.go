// Package app runs the single azor exchange: load the credential, build the
// fixed request, call the model once and report the outcome.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"azor/internal/conversation"
	"azor/internal/credential"
	"azor/internal/llm"
	"azor/internal/logger"
)

type Settings struct {
	CredentialEnv  string
	Lookup         credential.LookupFunc
	Model          string
	ThinkingBudget *int32
	Timeout        time.Duration
}

// ClientFactory builds the model client once the credential is known.
type ClientFactory func(ctx context.Context, token string) (llm.Client, error)

type Output struct {
	Out    io.Writer
	Logger *slog.Logger
}

// Run returns an error only for configuration problems. A failed model call is
// logged and swallowed so the process still exits normally.
func Run(ctx context.Context, settings Settings, newClient ClientFactory, output Output) error {
	if newClient == nil {
		return errors.New("client factory is required")
	}
	out := output.Out
	if out == nil {
		out = io.Discard
	}
	log := output.Logger
	if log == nil {
		log = logger.Nop()
	}

	token, err := credential.Load(settings.Lookup, settings.CredentialEnv)
	if err != nil {
		return err
	}
	log.Info("credential loaded", "key", credential.Mask(token))

	client, err := newClient(ctx, token)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	req := conversation.Build(conversation.Options{
		Model:          settings.Model,
		ThinkingBudget: settings.ThinkingBudget,
	})
	log.Debug("request built", "model", req.Model, "turns", len(req.Turns))

	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	log.Info("sending conversation", "model", req.Model)
	resp, err := client.Generate(ctx, req)
	if err != nil {
		log.Error("generation failed", "error", err.Error())
		return nil
	}
	log.Debug("generation finished", "model", resp.Model, "finish_reason", resp.FinishReason)

	if _, err := fmt.Fprintln(out, resp.Text); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
