package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lukalafaye/LinkedinAutoApply/internal/answers"
	"github.com/lukalafaye/LinkedinAutoApply/internal/browser"
	"github.com/lukalafaye/LinkedinAutoApply/internal/config"
	"github.com/lukalafaye/LinkedinAutoApply/internal/files"
	"github.com/lukalafaye/LinkedinAutoApply/internal/observability"
	"github.com/lukalafaye/LinkedinAutoApply/internal/oracle"
	"github.com/lukalafaye/LinkedinAutoApply/internal/resume"
	"github.com/lukalafaye/LinkedinAutoApply/internal/session"
)

var applyCommand = &cobra.Command{
	Use:   "apply",
	Short: "Apply to job postings end-to-end",
	Long: `Walks each posting's application form step by step: scan -> resolve -> fill -> validate -> advance, until submission.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runApplyCmd,
}

var (
	applyConfigPath  string
	applyProfile     string
	applyResume      string
	applyJobsFile    string
	applyJobURL      string
	applyLegacyCSV   string
	applyCallLog     string
	applyUserDataDir string
	applyLimit       int
	applyRetryCap    int
	applyAPIKey      string
	applyDatabaseURL string
	applyHeadless    bool
	applyVerbose     bool
)

func init() {
	// Config file flag (processed first)
	applyCommand.Flags().StringVar(&applyConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	applyCommand.Flags().StringVarP(&applyProfile, "profile", "p", "", "Path to candidate profile JSON")
	applyCommand.Flags().StringVarP(&applyResume, "resume", "r", "", "Path to resume file for upload fields")
	applyCommand.Flags().StringVar(&applyJobsFile, "jobs-file", "", "File with one posting URL per line (mutually exclusive with --job-url)")
	applyCommand.Flags().StringVar(&applyJobURL, "job-url", "", "Single posting URL to apply to (mutually exclusive with --jobs-file)")
	applyCommand.Flags().StringVar(&applyLegacyCSV, "legacy-csv", "", "Old CSV answer cache to import on startup")
	applyCommand.Flags().StringVar(&applyCallLog, "call-log", "", "JSONL file for oracle call accounting")
	applyCommand.Flags().StringVar(&applyUserDataDir, "user-data-dir", "", "Browser profile directory, keeps login sessions between runs")
	applyCommand.Flags().IntVar(&applyLimit, "limit", 0, "Stop after this many submitted applications (0 = no limit)")
	applyCommand.Flags().IntVar(&applyRetryCap, "retry-cap", 0, "Validation retries per element before aborting the application")
	applyCommand.Flags().BoolVar(&applyHeadless, "headless", true, "Run the browser without a window")
	applyCommand.Flags().BoolVarP(&applyVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	applyCommand.Flags().StringVar(&applyAPIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for the durable answer store
	applyCommand.Flags().StringVar(&applyDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(applyCommand)
}

func runApplyCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if applyConfigPath != "" {
		loadedCfg, err := config.LoadConfig(applyConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if applyVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", applyConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("profile") {
		cfg.Profile = applyProfile
	}
	if cmd.Flags().Changed("resume") {
		cfg.Resume = applyResume
	}
	if cmd.Flags().Changed("jobs-file") {
		cfg.JobsFile = applyJobsFile
	}
	if cmd.Flags().Changed("job-url") {
		cfg.JobURL = applyJobURL
	}
	if cmd.Flags().Changed("legacy-csv") {
		cfg.LegacyAnswersCSV = applyLegacyCSV
	}
	if cmd.Flags().Changed("call-log") {
		cfg.CallLog = applyCallLog
	}
	if cmd.Flags().Changed("user-data-dir") {
		cfg.UserDataDir = applyUserDataDir
	}
	if cmd.Flags().Changed("limit") {
		cfg.ApplicationLimit = applyLimit
	}
	if cmd.Flags().Changed("retry-cap") {
		cfg.RetryCap = applyRetryCap
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = applyAPIKey
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = applyDatabaseURL
	}
	// Bool fields come from flags only; unset and false are
	// indistinguishable in the config JSON
	cfg.Headless = applyHeadless
	cfg.Verbose = applyVerbose

	// Step 3: Apply defaults for unset values, then validate
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	if cfg.Profile == "" {
		return fmt.Errorf("--profile is required (via flag or config)")
	}
	if cfg.JobsFile == "" && cfg.JobURL == "" {
		return fmt.Errorf("either --jobs-file or --job-url must be provided (via flag or config)")
	}

	// Step 5: API key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	return runApplications(ctx, cfg)
}

func runApplications(ctx context.Context, cfg config.Config) error {
	profile, err := resume.Load(cfg.Profile)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	store := openStore(ctx, cfg)
	defer store.Close()
	seedLegacyAnswers(ctx, store, cfg.LegacyAnswersCSV)

	usage := observability.NewAccountant(cfg.CallLog)

	client, err := oracle.NewGeminiClient(ctx, oracle.DefaultClientConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create oracle client: %w", err)
	}
	defer client.Close()

	bridge := oracle.NewBridge(client, profile, usage, time.Duration(cfg.OracleTimeoutSec)*time.Second)

	driver, err := browser.NewChromeDriver(ctx, browser.Options{
		Headless:    cfg.Headless,
		UserDataDir: cfg.UserDataDir,
	})
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer driver.Close()

	provisioner := files.NewStaticProvisioner(cfg.Resume, bridge)

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(os.Stdout)
	}

	limits := session.Limits{
		Numeric: oracle.NumericConfig{
			Default: cfg.NumericDefault,
			Min:     cfg.NumericMin,
			Max:     cfg.NumericMax,
		},
		RetryCap:      cfg.RetryCap,
		ScanPasses:    cfg.ScanPasses,
		StepCeiling:   cfg.StepCeiling,
		RenderTimeout: time.Duration(cfg.RenderTimeoutSec) * time.Second,
	}

	urls, err := postingURLs(cfg)
	if err != nil {
		return err
	}

	runner := session.NewRunner(driver, cfg.ApplicationLimit, cfg.Verbose,
		func() *session.ApplicationSession {
			return session.New(session.Options{
				Driver:      driver,
				Store:       store,
				Oracle:      bridge,
				Provisioner: provisioner,
				Limits:      limits,
				Printer:     printer,
				Verbose:     cfg.Verbose,
			})
		},
		func(_ context.Context, url string) error {
			bridge.SetJob(oracle.JobContext{Description: "Job posting: " + url})
			provisioner.Reset()
			return nil
		},
	)

	submitted, err := runner.Run(ctx, urls)
	if err != nil && !errors.Is(err, session.ErrApplicationLimit) {
		return err
	}

	if printer != nil {
		printer.PrintUsage(usage)
	}
	calls, tokens, cost := usage.Totals()
	fmt.Fprintf(os.Stdout, "Submitted %d application(s). Oracle usage: %d calls, %d tokens, $%.4f.\n",
		submitted, calls, tokens, cost)
	if errors.Is(err, session.ErrApplicationLimit) {
		fmt.Fprintln(os.Stdout, "Stopped: application limit reached.")
	}
	return nil
}

// openStore connects the durable Postgres answer store, degrading to a
// process-local one when no database is reachable.
func openStore(ctx context.Context, cfg config.Config) answers.Store {
	if cfg.DatabaseURL == "" {
		log.Println("no DATABASE_URL configured; answers will not persist across runs")
		return answers.NewMemoryStore()
	}
	store, err := answers.ConnectPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("failed to connect answer store, falling back to in-memory: %v", err)
		return answers.NewMemoryStore()
	}
	return store
}

func seedLegacyAnswers(ctx context.Context, store answers.Store, path string) {
	if path == "" {
		return
	}
	recs, err := answers.ImportLegacyCSV(path)
	if err != nil {
		log.Printf("failed to import legacy answers from %s: %v", path, err)
		return
	}
	for _, rec := range recs {
		if err := store.Remember(ctx, rec); err != nil {
			log.Printf("failed to import legacy answer %q: %v", rec.Signature, err)
		}
	}
	if len(recs) > 0 {
		log.Printf("imported %d legacy answers from %s", len(recs), path)
	}
}

func postingURLs(cfg config.Config) ([]string, error) {
	if cfg.JobURL != "" {
		return []string{cfg.JobURL}, nil
	}
	f, err := os.Open(cfg.JobsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open jobs file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("jobs file %s contains no URLs", cfg.JobsFile)
	}
	return urls, nil
}
