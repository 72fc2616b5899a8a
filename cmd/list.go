package cmd

import (
	"sort"

	"github.com/flanksource/clicky"
	"github.com/flanksource/jdk/pkg/local"
	"github.com/flanksource/jdk/pkg/provision"
	"github.com/spf13/cobra"
)

// InstalledJdkInfo represents one discovered installation
type InstalledJdkInfo struct {
	Version     string `json:"version" pretty:"label=Version"`
	Vendor      string `json:"vendor" pretty:"label=Vendor"`
	OS          string `json:"os" pretty:"label=OS"`
	Arch        string `json:"arch" pretty:"label=Arch"`
	JavaFX      string `json:"javafx" pretty:"label=JavaFX"`
	NativeImage string `json:"native_image" pretty:"label=Native Image"`
	Home        string `json:"home" pretty:"label=Home"`
}

// InstalledJdkList represents all discovered installations for table display
type InstalledJdkList struct {
	Jdks []InstalledJdkInfo `json:"jdks" pretty:"table"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed JDKs",
	Long:  `List every JDK found in JAVA_HOME, the configured installation paths, and the download cache.`,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func runList(cmd *cobra.Command, args []string) error {
	prov := provision.New(jdkConfig.EffectiveCacheDir())
	scanner := local.NewScanner(jdkConfig.InstallationPaths, prov.ExtractedDir())

	var jdks []InstalledJdkInfo
	for _, inst := range scanner.InstalledJdks() {
		jdks = append(jdks, InstalledJdkInfo{
			Version:     inst.Spec.Version,
			Vendor:      inst.Spec.Vendor,
			OS:          string(inst.Spec.OS),
			Arch:        string(inst.Spec.Arch),
			JavaFX:      yesNo(inst.Spec.JavaFXBundled),
			NativeImage: yesNo(inst.Spec.NativeImageCapable),
			Home:        inst.Home,
		})
	}

	sort.Slice(jdks, func(i, j int) bool {
		if jdks[i].Version != jdks[j].Version {
			return jdks[i].Version > jdks[j].Version
		}
		return jdks[i].Home < jdks[j].Home
	})

	result, err := clicky.Format(InstalledJdkList{Jdks: jdks})
	if err != nil {
		return err
	}

	cmd.Println(result)
	return nil
}
