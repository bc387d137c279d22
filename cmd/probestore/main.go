package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"video-renditions/internal/database"

	"golang.org/x/term"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default probe database path
	defaultDBPath = "/database/probes.db"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	command := os.Args[1]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	if command != "status" && command != "show" && command != "forget" {
		// Sanitize command input using allowlist to break taint chain
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand; only [a-zA-Z0-9_-] characters pass through
		printUsage(os.Stdout)
		os.Exit(1)
	}

	dbPath := dbPathFromEnv()
	db, err := database.New(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open probe store: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure PROBE_DB_PATH is set correctly (current: %s)\n", dbPath)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
	}()

	ok := true
	switch command {
	case "status":
		ok = showStatus(ctx, db, os.Stdout)
	case "show":
		ok = showProbe(ctx, db, digestArg(os.Args), os.Stdout)
	case "forget":
		confirm := confirmFromTerminal
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			confirm = nil
		}
		ok = forgetProbe(ctx, db, digestArg(os.Args), os.Stdout, confirm)
	}
	if !ok {
		os.Exit(1)
	}
}

func dbPathFromEnv() string {
	if p := os.Getenv("PROBE_DB_PATH"); p != "" {
		return p
	}
	return defaultDBPath
}

func digestArg(args []string) string {
	if len(args) < 3 {
		return ""
	}
	return strings.TrimSpace(args[2])
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Video Renditions Probe Store")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: probestore <command> [digest]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  status           - Show schema version and stored probe count")
	fmt.Fprintln(w, "  show <digest>    - Print the stored probe for a source digest")
	fmt.Fprintln(w, "  forget <digest>  - Remove the stored probe for a source digest")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintf(w, "  PROBE_DB_PATH - Path to the probe database (default: %s)\n", defaultDBPath)
}

func showStatus(ctx context.Context, db *database.Database, w io.Writer) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	version, err := db.GetMetadata(ctx, "schema_version")
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		fmt.Fprintf(os.Stderr, "Error: Failed to read schema version: %v\n", err)
		return false
	}
	if version == "" {
		version = "unknown"
	}

	count, err := db.CountProbes(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to count probes: %v\n", err)
		return false
	}

	fmt.Fprintf(w, "Database:       %s\n", db.Path())
	fmt.Fprintf(w, "Schema version: %s\n", version)
	fmt.Fprintf(w, "Stored probes:  %d\n", count)
	return true
}

func showProbe(ctx context.Context, db *database.Database, digest string, w io.Writer) bool {
	if digest == "" {
		fmt.Fprintln(os.Stderr, "Error: show requires a digest")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	info, found, err := db.GetProbe(ctx, digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read probe: %v\n", err)
		return false
	}
	if !found {
		fmt.Fprintf(os.Stderr, "No probe stored for %s\n", sanitizeCommand(digest))
		return false
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	return true
}

// forgetProbe deletes the probe for digest. confirm, when non-nil, is asked
// before deleting and aborts on false.
func forgetProbe(ctx context.Context, db *database.Database, digest string, w io.Writer, confirm func(prompt string) bool) bool {
	if digest == "" {
		fmt.Fprintln(os.Stderr, "Error: forget requires a digest")
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, found, err := db.GetProbe(ctx, digest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read probe: %v\n", err)
		return false
	}
	if !found {
		fmt.Fprintf(w, "No probe stored for %s\n", sanitizeCommand(digest))
		return true
	}

	if confirm != nil && !confirm(fmt.Sprintf("Forget probe %s? [y/N]: ", sanitizeCommand(digest))) {
		fmt.Fprintln(w, "Aborted.")
		return false
	}

	if err := db.DeleteProbe(ctx, digest); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to delete probe: %v\n", err)
		return false
	}

	fmt.Fprintln(w, "Probe removed. The source will be probed again on its next transcode.")
	return true
}

func confirmFromTerminal(prompt string) bool {
	fmt.Print(prompt)
	return readConfirmation(os.Stdin)
}

func readConfirmation(r io.Reader) bool {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
