package cmd

import (
	"runtime"

	"github.com/flanksource/jdk/pkg/envs"
	"github.com/spf13/cobra"
)

var (
	shellFlag  string
	systemFlag bool
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print shell statements that activate a resolved JDK",
	Long: `Env resolves a JDK like the resolve command, then prints the
environment variable assignments (JAVA_HOME and a PATH entry) that make it
the active JDK. Meant for eval: eval "$(jdk env --version 21)".`,
	RunE: runEnv,
}

func init() {
	addQueryFlags(envCmd)
	envCmd.Flags().StringVar(&shellFlag, "shell", defaultShell(), "Output dialect: sh, fish, powershell or plain")
	envCmd.Flags().BoolVar(&systemFlag, "system", false, "Merge the variables into /etc/environment (requires root)")
	rootCmd.AddCommand(envCmd)
}

func defaultShell() string {
	if runtime.GOOS == "windows" {
		return envs.ShellPowershell
	}
	return envs.ShellPosix
}

func runEnv(cmd *cobra.Command, args []string) error {
	inst, _, err := resolveFromFlags()
	if err != nil {
		return err
	}

	vars := envs.ForInstallation(*inst)
	if systemFlag {
		return envs.MergeToSystemEnvironment(vars)
	}

	out, err := envs.Render(vars, shellFlag)
	if err != nil {
		return err
	}
	cmd.Print(out)
	return nil
}
