package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrNoCommand is returned when the bridge command line is empty.
var ErrNoCommand = errors.New("anki bridge command not configured")

// ProcessBridge runs the bridge as a child process for every operation.
type ProcessBridge struct {
	command []string
	env     []string
}

// NewProcessBridge creates a bridge from a command line such as
// "python3 -m anki_bridge". Extra env entries are added to the child
// environment.
func NewProcessBridge(commandLine string, env ...string) *ProcessBridge {
	return &ProcessBridge{
		command: strings.Fields(commandLine),
		env:     env,
	}
}

func (b *ProcessBridge) Sync(ctx context.Context, collection string, creds Credentials, endpoint string) (*SyncOutput, error) {
	args := []string{}
	if endpoint != "" {
		args = append(args, "--endpoint", endpoint)
	}

	var out SyncOutput
	if err := b.run(ctx, "sync", collection, &creds, args, &out); err != nil {
		return nil, err
	}
	if out.Required == "" {
		out.Required = SyncNoChanges
	}
	return &out, nil
}

func (b *ProcessBridge) FullSync(ctx context.Context, collection string, creds Credentials, req FullSyncRequest) error {
	direction := "download"
	if req.Upload {
		direction = "upload"
	}
	args := []string{"--direction", direction}
	if req.Endpoint != "" {
		args = append(args, "--endpoint", req.Endpoint)
	}
	if req.ServerUSN != nil {
		args = append(args, "--server-usn", strconv.FormatInt(*req.ServerUSN, 10))
	}
	return b.run(ctx, "full-sync", collection, &creds, args, nil)
}

func (b *ProcessBridge) Export(ctx context.Context, collection, out string, opts ExportOptions) (string, error) {
	args := []string{"--out", out}
	if opts.DeckID != nil {
		args = append(args, "--deck-id", strconv.FormatInt(*opts.DeckID, 10))
	}
	flags := []struct {
		set  bool
		name string
	}{
		{opts.WithScheduling, "--with-scheduling"},
		{opts.WithDeckConfigs, "--with-deck-configs"},
		{opts.WithMedia, "--with-media"},
		{opts.Legacy, "--legacy"},
	}
	for _, f := range flags {
		if f.set {
			args = append(args, f.name)
		}
	}

	var result struct {
		Path string `json:"path"`
	}
	if err := b.run(ctx, "export", collection, nil, args, &result); err != nil {
		return "", err
	}
	if result.Path == "" {
		result.Path = out
	}
	return result.Path, nil
}

func (b *ProcessBridge) DueTree(ctx context.Context, collection string) ([]DueDeck, error) {
	var result struct {
		Decks []DueDeck `json:"decks"`
	}
	if err := b.run(ctx, "due", collection, nil, nil, &result); err != nil {
		return nil, err
	}
	return result.Decks, nil
}

// run invokes "<command> <op> --collection <path> <args...>" and decodes
// stdout into result when it is not nil.
func (b *ProcessBridge) run(ctx context.Context, op, collection string, creds *Credentials, args []string, result any) error {
	if len(b.command) == 0 {
		return ErrNoCommand
	}

	argv := append([]string{}, b.command[1:]...)
	argv = append(argv, op, "--collection", collection)
	argv = append(argv, args...)

	cmd := exec.CommandContext(ctx, b.command[0], argv...)
	cmd.Env = append(os.Environ(), b.env...)
	if creds != nil {
		// credentials never go through argv, which is visible to other users
		cmd.Env = append(cmd.Env,
			"ANKIWEB_EMAIL="+creds.Email,
			"ANKIWEB_PASSWORD="+creds.Password,
		)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return parseBridgeError(op, exitErr.ExitCode(), stderr.Bytes())
		}
		return fmt.Errorf("failed to run anki bridge %s: %w", op, err)
	}

	if result == nil {
		return nil
	}
	payload := bytes.TrimSpace(stdout.Bytes())
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, result); err != nil {
		return fmt.Errorf("failed to decode anki bridge %s output: %w", op, err)
	}
	return nil
}

func parseBridgeError(op string, code int, stderr []byte) *BridgeError {
	bridgeErr := &BridgeError{Op: op, ExitCode: code}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	trimmed := bytes.TrimSpace(stderr)
	if err := json.Unmarshal(trimmed, &payload); err == nil && (payload.Error != "" || payload.Message != "") {
		bridgeErr.Kind = payload.Error
		bridgeErr.Message = payload.Message
		return bridgeErr
	}

	bridgeErr.Message = string(trimmed)
	if bridgeErr.Message == "" {
		bridgeErr.Message = fmt.Sprintf("exit status %d", code)
	}
	return bridgeErr
}
