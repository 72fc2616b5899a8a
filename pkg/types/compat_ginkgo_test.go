package types

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/jdk/pkg/platform"
	"github.com/flanksource/jdk/pkg/version"
)

var _ = Describe("Compatibility", func() {
	Describe("IsCompatible", func() {
		Context("with a JavaFX-bundled macOS installation", func() {
			spec := JdkSpec{
				OS:            platform.MacOS,
				Arch:          platform.Aarch64,
				Version:       "25.0.1",
				Vendor:        "azul",
				JavaFXBundled: true,
			}

			It("matches a query for version 25, macOS, aarch64, javafx", func() {
				query := NewQuery(
					WithOS(platform.MacOS),
					WithArch(platform.Aarch64),
					WithVersion(version.MustParse("25")),
					WithJavaFX(true),
				)
				Expect(IsCompatible(spec, query)).To(BeTrue())
			})

			It("does not match a query for a different architecture", func() {
				query := NewQuery(
					WithOS(platform.MacOS),
					WithArch(platform.X64),
					WithVersion(version.MustParse("25")),
				)
				Expect(IsCompatible(spec, query)).To(BeFalse())
				Expect(Mismatch(spec, query)).To(Equal("architecture"))
			})

			It("does not match a query for a different major version", func() {
				query := NewQuery(
					WithOS(platform.MacOS),
					WithArch(platform.Aarch64),
					WithVersion(version.MustParse("21")),
				)
				Expect(Mismatch(spec, query)).To(Equal("version"))
			})

			It("requires native-image when the query asks for it", func() {
				query := NewQuery(
					WithOS(platform.MacOS),
					WithArch(platform.Aarch64),
					WithVersion(version.MustParse("25")),
					WithNativeImage(true),
				)
				Expect(Mismatch(spec, query)).To(Equal("native-image capability"))
			})

			It("matches vendor by alias", func() {
				query := NewQuery(
					WithOS(platform.MacOS),
					WithArch(platform.Aarch64),
					WithVersion(version.MustParse("25")),
					WithVendor("zulu"),
				)
				Expect(IsCompatible(spec, query)).To(BeTrue())
			})
		})

		Context("with unset query dimensions", func() {
			spec := JdkSpec{
				OS:      platform.Linux,
				Arch:    platform.X64,
				Version: "21.0.2",
				Vendor:  "eclipse",
			}

			It("matches everything when only platform is constrained", func() {
				query := NewQuery(WithOS(platform.Linux), WithArch(platform.X64))
				Expect(IsCompatible(spec, query)).To(BeTrue())
			})

			It("treats open version constraints component-wise", func() {
				q21plus := NewQuery(WithOS(platform.Linux), WithArch(platform.X64),
					WithVersion(version.MustParse("21+")))
				Expect(IsCompatible(spec, q21plus)).To(BeTrue())

				q22plus := NewQuery(WithOS(platform.Linux), WithArch(platform.X64),
					WithVersion(version.MustParse("22+")))
				Expect(IsCompatible(spec, q22plus)).To(BeFalse())
			})
		})
	})

	Describe("NewQuery defaults", func() {
		It("defaults to the current platform and latest stable", func() {
			query := NewQuery()
			Expect(query.OS).To(Equal(platform.CurrentOS()))
			Expect(query.Arch).To(Equal(platform.CurrentArch()))
			Expect(query.Version.String()).To(Equal("latest"))
			Expect(query.StableOnly).To(BeTrue())
			Expect(query.ProductionUseOnly).To(BeTrue())
			Expect(query.LTSOnly).To(BeFalse())
		})
	})
})
