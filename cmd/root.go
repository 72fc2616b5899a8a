package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/flanksource/clicky"
	"github.com/flanksource/jdk/pkg/config"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/spf13/cobra"
)

var (
	osOverride   string
	archOverride string
	configFile   string
	cacheDir     string
	offline      bool
	jdkConfig    *config.Config

	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "jdk",
	Short: "Resolve and provision JDK installations",
	Long: `jdk finds an installed JDK matching your constraints, or downloads a
matching build from the foojay Disco API into a local cache.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Apply clicky flags after command line parsing
		clicky.Flags.UseFlags()

		// Set global platform overrides from CLI flags
		platform.SetGlobalOverrides(osOverride, archOverride)

		var err error
		jdkConfig, err = config.Load(configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cacheDir != "" {
			jdkConfig.CacheDir = cacheDir
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// SetVersion records build metadata shown by the version command.
func SetVersion(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "tasks", "!format")

	rootCmd.PersistentFlags().StringVar(&osOverride, "os", runtime.GOOS, "Target OS (linux, darwin, windows)")
	rootCmd.PersistentFlags().StringVar(&archOverride, "arch", runtime.GOARCH, "Target architecture (amd64, arm64, etc.)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to jdk.yaml config file")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory for downloaded and extracted JDKs")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "Never download; only use installed JDKs")
}
