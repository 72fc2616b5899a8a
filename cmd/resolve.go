package cmd

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/flanksource/jdk"
	"github.com/flanksource/jdk/pkg/disco"
	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/resolver"
	"github.com/flanksource/jdk/pkg/types"
	"github.com/flanksource/jdk/pkg/verify"
	"github.com/flanksource/jdk/pkg/version"
	"github.com/spf13/cobra"
)

var (
	versionFlag     string
	vendorFlag      string
	javafxFlag      bool
	nativeImageFlag bool
	ltsFlag         bool
	verifyFlag      bool
)

// ResolvedJdk is the resolve command's output row.
type ResolvedJdk struct {
	Home        string `json:"home" pretty:"label=JDK Home"`
	Version     string `json:"version" pretty:"label=Version"`
	Vendor      string `json:"vendor,omitempty" pretty:"label=Vendor"`
	OS          string `json:"os" pretty:"label=OS"`
	Arch        string `json:"arch" pretty:"label=Arch"`
	JavaFX      bool   `json:"javafx,omitempty" pretty:"label=JavaFX"`
	NativeImage bool   `json:"native_image,omitempty" pretty:"label=Native Image"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve a JDK matching the given constraints",
	Long: `Resolve finds an installed JDK matching the constraints, or downloads
one from the package index. Prints the JDK home on success.`,
	RunE: runResolve,
}

// addQueryFlags registers the JDK constraint flags shared by the resolve
// and env commands.
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&versionFlag, "version", "", "Version constraint (e.g. 21, 21+, 21.0.2, latest, latest_lts)")
	cmd.Flags().StringVar(&vendorFlag, "vendor", "", "Vendor name or alias (e.g. eclipse, azul, oracle)")
	cmd.Flags().BoolVar(&javafxFlag, "javafx", false, "Require a JavaFX-bundled JDK")
	cmd.Flags().BoolVar(&nativeImageFlag, "native-image", false, "Require a native-image capable JDK")
	cmd.Flags().BoolVar(&ltsFlag, "lts", false, "Restrict to long-term support releases")
}

func init() {
	addQueryFlags(resolveCmd)
	resolveCmd.Flags().BoolVar(&verifyFlag, "verify", false, "Inspect the java launcher's executable format after resolution")
	rootCmd.AddCommand(resolveCmd)
}

// queryFromFlags folds the constraint flags and config defaults into a query.
func queryFromFlags() (types.JdkQuery, error) {
	var opts []types.QueryOption
	if versionFlag != "" {
		spec, err := version.Parse(versionFlag)
		if err != nil {
			return types.JdkQuery{}, fmt.Errorf("invalid --version: %w", err)
		}
		opts = append(opts, types.WithVersion(spec))
	}
	if vendorFlag != "" {
		opts = append(opts, types.WithVendor(vendorFlag))
	}
	if javafxFlag {
		opts = append(opts, types.WithJavaFX(true))
	}
	if nativeImageFlag {
		opts = append(opts, types.WithNativeImage(true))
	}
	if ltsFlag {
		opts = append(opts, types.WithLTSOnly(true))
	}
	// Applied last so --os/--arch overrides win over config defaults.
	opts = append(opts,
		types.WithOS(platform.CurrentOS()),
		types.WithArch(platform.CurrentArch()))

	return jdk.BuildQuery(jdkConfig, opts...)
}

// resolveFromFlags runs one resolution using the flag-derived query.
func resolveFromFlags() (*types.JdkInstallation, types.JdkQuery, error) {
	query, err := queryFromFlags()
	if err != nil {
		return nil, query, err
	}

	r := resolver.New(jdkConfig.InstallationPaths, jdkConfig.EffectiveCacheDir(),
		resolver.WithClient(disco.NewClient(disco.WithBaseURL(jdkConfig.EffectiveDiscoBaseURL()))))

	var inst *types.JdkInstallation
	var resolveErr error
	task.StartTask("jdk "+query.Version.String(), func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		inst, resolveErr = r.Resolve(ctx, query, offline || !jdkConfig.DownloadAllowed(), t)
		return inst, resolveErr
	})
	clicky.WaitForGlobalCompletion()

	if resolveErr != nil {
		return nil, query, resolveErr
	}
	if inst == nil {
		return nil, query, fmt.Errorf("no JDK found matching %s", query)
	}
	return inst, query, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	inst, query, err := resolveFromFlags()
	if err != nil {
		return err
	}

	if verifyFlag {
		if err := verify.VerifyJavaBinary(inst.Home, query.OS, query.Arch); err != nil {
			return err
		}
	}

	result, err := clicky.Format(ResolvedJdk{
		Home:        inst.Home,
		Version:     inst.Spec.Version,
		Vendor:      inst.Spec.Vendor,
		OS:          string(inst.Spec.OS),
		Arch:        string(inst.Spec.Arch),
		JavaFX:      inst.Spec.JavaFXBundled,
		NativeImage: inst.Spec.NativeImageCapable,
	})
	if err != nil {
		return err
	}
	cmd.Println(result)
	return nil
}
