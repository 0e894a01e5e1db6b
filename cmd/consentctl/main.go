// Package main provides a CLI for querying a consent platform through the
// assent client: status lookups, per-purpose checks, catalog listings, and
// batch sweeps, plus API key provisioning helpers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"assent/pkg/consent"
	"assent/pkg/secrets"
	s "assent/pkg/string"
)

const (
	defaultBaseURL = "http://localhost:8184"
	defaultTimeout = 10 * time.Second
)

// version is set at build time via ldflags.
var version = "dev"

// clientFlags are shared by every subcommand that talks to the platform.
type clientFlags struct {
	baseURL *string
	apiKey  *string
	timeout *time.Duration
	jsonOut *bool
	debug   *bool
}

func addClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		baseURL: fs.String("base-url", envOr("ASSENT_BASE_URL", defaultBaseURL), "Consent platform base URL"),
		apiKey:  fs.String("api-key", os.Getenv("ASSENT_API_KEY"), "API key (env ASSENT_API_KEY)"),
		timeout: fs.Duration("timeout", defaultTimeout, "Per-request timeout"),
		jsonOut: fs.Bool("json", false, "Output as JSON"),
		debug:   fs.Bool("debug", false, "Log wire diagnostics to stderr"),
	}
}

func main() {
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	statusFlags := addClientFlags(statusCmd)

	checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
	checkFlags := addClientFlags(checkCmd)

	purposesCmd := flag.NewFlagSet("purposes", flag.ExitOnError)
	purposesFlags := addClientFlags(purposesCmd)

	batchCmd := flag.NewFlagSet("batch", flag.ExitOnError)
	batchFlags := addClientFlags(batchCmd)
	batchConcurrency := batchCmd.Int("concurrency", 0, "Max concurrent lookups (0 = unbounded)")

	keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
	keyJSON := keyCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "status":
		statusCmd.Parse(os.Args[2:])
		if statusCmd.NArg() != 1 {
			fatalf("usage: consentctl status [flags] <email>")
		}
		runStatus(statusFlags, statusCmd.Arg(0))
	case "check":
		checkCmd.Parse(os.Args[2:])
		if checkCmd.NArg() != 2 {
			fatalf("usage: consentctl check [flags] <email> <purpose-uuid>")
		}
		runCheck(checkFlags, checkCmd.Arg(0), checkCmd.Arg(1))
	case "purposes":
		purposesCmd.Parse(os.Args[2:])
		runPurposes(purposesFlags)
	case "batch":
		batchCmd.Parse(os.Args[2:])
		if batchCmd.NArg() < 1 {
			fatalf("usage: consentctl batch [flags] <email>...")
		}
		runBatch(batchFlags, *batchConcurrency, batchCmd.Args())
	case "key":
		keyCmd.Parse(os.Args[2:])
		runKey(*keyJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`consentctl - Query a consent platform from the command line

Usage:
  consentctl <command> [flags]

Commands:
  status     Show a user's consent status
  check      Check consent for one purpose
  purposes   List the purpose catalog
  batch      Check consent status for many users
  key        Generate an API key and its bcrypt hash

Examples:
  # Show everything alice has consented to
  consentctl status alice@example.com

  # Check a single purpose
  consentctl check alice@example.com 11111111-1111-1111-1111-111111111111

  # Sweep a list of users, four lookups at a time
  consentctl batch -concurrency 4 alice@example.com bob@example.com

  # Point at a different platform
  consentctl status -base-url https://consent.internal -api-key $KEY alice@example.com

  # Machine-readable output
  consentctl purposes -json

The -api-key flag falls back to ASSENT_API_KEY, -base-url to ASSENT_BASE_URL.

Use "consentctl <command> -h" for more information about a command.`)
}

func newClient(cf clientFlags, extra ...consent.Option) *consent.Client {
	if *cf.apiKey == "" {
		fatalf("an API key is required: pass -api-key or set ASSENT_API_KEY")
	}

	opts := []consent.Option{
		consent.WithTimeout(*cf.timeout),
		consent.WithUserAgent("consentctl/" + version),
	}
	if *cf.debug {
		// Diagnostics go to stderr so stdout stays parseable
		stderr := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, consent.WithLogger(stderr), consent.WithDebug(true))
	}
	opts = append(opts, extra...)

	client, err := consent.New(*cf.baseURL, *cf.apiKey, opts...)
	if err != nil {
		fatalErr(err)
	}
	return client
}

func runStatus(cf clientFlags, email string) {
	client := newClient(cf)
	status, err := client.ConsentStatus(context.Background(), email)
	if err != nil {
		fatalErr(err)
	}

	if *cf.jsonOut {
		printJSON(status)
		return
	}

	fmt.Println("Consent Status")
	fmt.Println("==============")
	fmt.Printf("Email:       %s\n", email)
	fmt.Printf("Has Consent: %t\n", status.HasConsent)
	if len(status.Consents) > 0 {
		fmt.Println()
		fmt.Println("Active Consents:")
		for _, record := range status.Consents {
			fmt.Printf("  %-20s %s  %s\n", record.PurposeName, record.PurposeUUID, formatExpiry(record.ExpiresAt))
		}
	}
}

func runCheck(cf clientFlags, email, purposeUUID string) {
	client := newClient(cf)
	granted, err := client.HasConsent(context.Background(), email, purposeUUID)
	if err != nil {
		fatalErr(err)
	}

	if *cf.jsonOut {
		printJSON(map[string]any{
			"email":        email,
			"purpose_uuid": purposeUUID,
			"has_consent":  granted,
		})
		return
	}

	fmt.Printf("Consent granted: %t\n", granted)
}

func runPurposes(cf clientFlags) {
	client := newClient(cf)
	purposes, err := client.Purposes(context.Background())
	if err != nil {
		fatalErr(err)
	}

	if *cf.jsonOut {
		printJSON(purposes)
		return
	}

	fmt.Println("Purpose Catalog")
	fmt.Println("===============")
	for _, purpose := range purposes {
		mandatory := ""
		if purpose.IsMandatory {
			mandatory = "  [mandatory]"
		}
		fmt.Printf("  %-20s %s  %s%s\n", purpose.Name, purpose.UUID, purpose.LegalBasis, mandatory)
		if purpose.Description != "" {
			fmt.Printf("      %s\n", purpose.Description)
		}
	}
}

func runBatch(cf clientFlags, concurrency int, emails []string) {
	// Arguments pasted from spreadsheets tend to carry stray whitespace.
	s.TrimSlice(emails)

	var extra []consent.Option
	if concurrency > 0 {
		extra = append(extra, consent.WithBatchConcurrency(concurrency))
	}
	client := newClient(cf, extra...)
	results, err := client.CheckBatch(context.Background(), emails)
	if err != nil {
		fatalErr(err)
	}

	if *cf.jsonOut {
		printJSON(results)
		return
	}

	failures := 0
	for _, result := range results {
		switch {
		case result.Err != "":
			failures++
			fmt.Printf("  %-30s ERROR: %s\n", result.Email, result.Err)
		case result.HasConsent:
			fmt.Printf("  %-30s consented (%d purposes)\n", result.Email, len(result.Consents))
		default:
			fmt.Printf("  %-30s no consent\n", result.Email)
		}
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "%d of %d lookups failed\n", failures, len(results))
		os.Exit(1)
	}
}

func runKey(jsonOutput bool) {
	key, err := secrets.Generate()
	if err != nil {
		fatalErr(err)
	}
	hash, err := secrets.Hash(key)
	if err != nil {
		fatalErr(err)
	}

	if jsonOutput {
		printJSON(map[string]string{
			"api_key":     key,
			"bcrypt_hash": hash,
		})
		return
	}

	fmt.Println("API Key")
	fmt.Println("=======")
	fmt.Printf("Key:  %s\n", key)
	fmt.Printf("Hash: %s\n", hash)
	fmt.Println()
	fmt.Println("Hand the key to the client, store only the hash at rest.")
	fmt.Printf("Configure the platform with ASSENT_API_KEY=%s\n", key)
}

func formatExpiry(expiresAt *time.Time) string {
	if expiresAt == nil {
		return "no expiry"
	}
	return "expires " + expiresAt.Format(time.RFC3339)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// fatalErr reports the classified error kind when the client produced one.
func fatalErr(err error) {
	if kind := consent.KindOf(err); kind != "" {
		fmt.Fprintf(os.Stderr, "Error (%s): %v\n", kind, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
