// Package resolver orchestrates JDK resolution: installed JDKs first,
// then the remote package index, then provisioning.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/commons/logger"
	"github.com/flanksource/jdk/pkg/disco"
	"github.com/flanksource/jdk/pkg/local"
	"github.com/flanksource/jdk/pkg/provision"
	"github.com/flanksource/jdk/pkg/types"
)

// ErrOffline is wrapped by resolution failures caused by offline mode.
var ErrOffline = errors.New("offline mode prevents downloading a JDK")

// Resolver finds or provisions a JDK matching a query.
type Resolver struct {
	scanner     *local.Scanner
	client      *disco.Client
	provisioner *provision.Provisioner
}

// Option is a functional option for configuring the resolver
type Option func(*Resolver)

// WithScanner replaces the local installation scanner.
func WithScanner(s *local.Scanner) Option {
	return func(r *Resolver) {
		if s != nil {
			r.scanner = s
		}
	}
}

// WithClient replaces the package index client.
func WithClient(c *disco.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithProvisioner replaces the provisioner.
func WithProvisioner(p *provision.Provisioner) Option {
	return func(r *Resolver) {
		if p != nil {
			r.provisioner = p
		}
	}
}

// New builds a resolver whose scanner also covers the provisioner's
// extraction cache, so previously provisioned JDKs resolve locally.
func New(searchPaths []string, cacheDir string, opts ...Option) *Resolver {
	prov := provision.New(cacheDir)
	r := &Resolver{
		scanner:     local.NewScanner(searchPaths, prov.ExtractedDir()),
		client:      disco.NewClient(),
		provisioner: prov,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the first installed JDK compatible with the query, or
// downloads and provisions one from the package index. A nil result with
// a nil error means no JDK could be found anywhere; the caller decides
// how to report that. Offline mode with no installed match is fatal
// because no fallback remains.
func (r *Resolver) Resolve(ctx context.Context, query types.JdkQuery, offline bool, t *task.Task) (*types.JdkInstallation, error) {
	if installed := r.scanner.CompatibleInstalledJdks(query); len(installed) > 0 {
		inst := installed[0]
		logger.Infof("Using installed JDK %s at %s", inst.Spec, inst.Home)
		return &inst, nil
	}

	if offline {
		return nil, fmt.Errorf("%w: no installed JDK matches %s", ErrOffline, query)
	}

	pkg, err := r.client.FindPackage(ctx, query, t)
	if err != nil {
		// Index failures are recoverable from the caller's point of
		// view: absence of a remote match is a normal outcome.
		logger.Warnf("Package index query failed: %v", err)
		return nil, nil
	}
	if pkg == nil {
		return nil, nil
	}

	home, err := r.provisioner.Provision(ctx, pkg.DownloadURL, pkg.Checksum, pkg.Filename, pkg.ArchiveType, t)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Infof("Provisioning cancelled: %v", err)
			return nil, nil
		}
		return nil, err
	}

	// Re-read the provisioned tree through the scanner so the returned
	// record carries normalized metadata regardless of source.
	inst, ok := local.ReadInstallation(home)
	if !ok {
		return nil, fmt.Errorf("provisioned JDK at %s has no readable release metadata", home)
	}
	if !types.IsCompatible(inst.Spec, query) {
		dimension := types.Mismatch(inst.Spec, query)
		return nil, fmt.Errorf("provisioned JDK %s does not satisfy %s of query %s", inst.Spec, dimension, query)
	}
	return &inst, nil
}
