// Package jdk resolves and provisions JDK installations: it checks the
// local machine first, then downloads a matching build from the foojay
// Disco API into a user-level cache.
package jdk

import (
	"context"
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/flanksource/jdk/pkg/config"
	"github.com/flanksource/jdk/pkg/disco"
	"github.com/flanksource/jdk/pkg/resolver"
	"github.com/flanksource/jdk/pkg/types"
	"github.com/flanksource/jdk/pkg/version"
)

// Re-export commonly used types for public API
type (
	JdkQuery        = types.JdkQuery
	JdkSpec         = types.JdkSpec
	JdkInstallation = types.JdkInstallation
	QueryOption     = types.QueryOption
)

// Re-export query options
var (
	WithOS                = types.WithOS
	WithArch              = types.WithArch
	WithVersion           = types.WithVersion
	WithVendor            = types.WithVendor
	WithNativeImage       = types.WithNativeImage
	WithJavaFX            = types.WithJavaFX
	WithLTSOnly           = types.WithLTSOnly
	WithStableOnly        = types.WithStableOnly
	WithProductionUseOnly = types.WithProductionUseOnly
	WithLibc              = types.WithLibc
)

// Resolve finds or provisions a JDK matching the given constraints,
// merged over the defaults from jdk.yaml.
//
// Example:
//
//	inst, err := jdk.Resolve(jdk.WithVersion(version.MustParse("21+")),
//	    jdk.WithVendor("eclipse"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(inst.Home)
func Resolve(opts ...QueryOption) (*JdkInstallation, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}

	query, err := BuildQuery(cfg, opts...)
	if err != nil {
		return nil, err
	}

	var result *JdkInstallation
	var resolveErr error

	task.StartTask("jdk "+query.Version.String(), func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		result, resolveErr = resolveWith(ctx, cfg, query, t)
		return result, resolveErr
	})
	clicky.WaitForGlobalCompletion()

	return result, resolveErr
}

// ResolveWithContext is the context-aware variant for programmatic use
// without the task UI.
func ResolveWithContext(ctx context.Context, opts ...QueryOption) (*JdkInstallation, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, err
	}
	query, err := BuildQuery(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return resolveWith(ctx, cfg, query, nil)
}

// BuildQuery constructs a query from configuration defaults, then applies
// the caller's options on top.
func BuildQuery(cfg *config.Config, opts ...QueryOption) (JdkQuery, error) {
	var base []QueryOption
	if cfg.Query.Version != "" {
		spec, err := version.Parse(cfg.Query.Version)
		if err != nil {
			return JdkQuery{}, fmt.Errorf("invalid version in configuration: %w", err)
		}
		base = append(base, WithVersion(spec))
	}
	if cfg.Query.Vendor != "" {
		base = append(base, WithVendor(cfg.Query.Vendor))
	}
	if cfg.Query.JavaFXBundled {
		base = append(base, WithJavaFX(true))
	}
	if cfg.Query.NativeImageCapable {
		base = append(base, WithNativeImage(true))
	}
	if cfg.Query.StableOnly != nil {
		base = append(base, WithStableOnly(*cfg.Query.StableOnly))
	}
	if cfg.Query.LTSOnly {
		base = append(base, WithLTSOnly(true))
	}
	if cfg.Query.ProductionUseOnly != nil {
		base = append(base, WithProductionUseOnly(*cfg.Query.ProductionUseOnly))
	}
	return types.NewQuery(append(base, opts...)...), nil
}

func resolveWith(ctx context.Context, cfg *config.Config, query JdkQuery, t *task.Task) (*JdkInstallation, error) {
	r := resolver.New(cfg.InstallationPaths, cfg.EffectiveCacheDir(),
		resolver.WithClient(disco.NewClient(disco.WithBaseURL(cfg.EffectiveDiscoBaseURL()))))

	offline := !cfg.DownloadAllowed()
	inst, err := r.Resolve(ctx, query, offline, t)
	if err != nil {
		return nil, err
	}
	if inst == nil {
		return nil, fmt.Errorf("no JDK found matching %s", query)
	}
	return inst, nil
}
