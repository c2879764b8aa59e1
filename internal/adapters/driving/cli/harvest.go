package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clharvest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/clharvest/internal/config"
	"github.com/custodia-labs/clharvest/internal/connectors/github"
	"github.com/custodia-labs/clharvest/internal/core/domain"
	"github.com/custodia-labs/clharvest/internal/core/services"
	"github.com/custodia-labs/clharvest/internal/progress"
)

// renderInterval is how often the status line is redrawn from a stats
// snapshot while the harvest runs.
const renderInterval = 200 * time.Millisecond

var harvestCmd = &cobra.Command{
	Use:   "harvest <database>",
	Short: "Run one incremental harvest into a SQLite database",
	Long: `Runs the full harvest: every configured query term is searched, every
changed repository's tree is enumerated, and every changed tracked file
is downloaded, include-flattened, and persisted.

Requires GITHUB_USERNAME, GITHUB_PW and GITHUB_TOKEN in the environment
(a .env file next to the working directory is honoured).`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	creds, err := credentialsFromEnv()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
	}

	store, err := sqlite.NewStore(args[0])
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	client := github.NewClient(ctx, creds.Token)
	stats := domain.NewHarvestStats()

	gate := github.NewQuotaGate(client.RemainingQuota, cfg.RateLimitLowWater)
	gate.OnWait(func(_ int) {
		stats.SetCurrent("WAITING ON RATE LIMIT")
	})

	harvester := services.NewHarvester(client, store, gate, stats,
		cfg.QueryTerms, cfg.Extensions)

	// The renderer observes snapshots; the harvest never writes to
	// stdout itself.
	reporter := progress.NewReporter(cmd.OutOrStdout())
	stop := make(chan struct{})
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		ticker := time.NewTicker(renderInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				reporter.Render(stats.Snapshot())
			}
		}
	}()

	runErr := harvester.Run(ctx)
	close(stop)
	<-rendered

	if runErr != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		return fmt.Errorf("harvest: %w", runErr)
	}

	reporter.Finish(stats.Snapshot())
	return nil
}

// credentials are the three required environment-supplied secrets.
type credentials struct {
	Username string
	Password string
	Token    string
}

// credentialsFromEnv reads the required credentials, failing fast on the
// first missing one with a message naming the variable.
func credentialsFromEnv() (credentials, error) {
	var c credentials
	for _, v := range []struct {
		name string
		dst  *string
	}{
		{"GITHUB_USERNAME", &c.Username},
		{"GITHUB_PW", &c.Password},
		{"GITHUB_TOKEN", &c.Token},
	} {
		val, ok := os.LookupEnv(v.name)
		if !ok || val == "" {
			return credentials{}, fmt.Errorf("environment variable %s not set: %w",
				v.name, domain.ErrMissingCredential)
		}
		*v.dst = val
	}
	return c, nil
}
