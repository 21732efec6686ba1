package df_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/wobbles/internal/df"
	"github.com/san-kum/wobbles/internal/phasespace"
)

func displacedDisk(nu, dz, dv float64) (phasespace.Field, phasespace.Field, phasespace.Domain) {
	dom := phasespace.Grid{ZMin: -1, ZMax: 1, NZ: 41, VMin: -1, VMax: 1, NV: 101}.Domain()
	j := phasespace.NewField(len(dom.Z), len(dom.V))
	for i, z := range dom.Z {
		for k, v := range dom.V {
			a, b := z-dz, v-dv
			j.Set(i, k, (b*b+nu*nu*a*a)/(2*nu))
		}
	}
	return j, phasespace.Uniform(1, 1, nu), dom
}

var _ = Describe("Composite", func() {
	var (
		j, nu  phasespace.Field
		dom    phasespace.Domain
		scales phasespace.Scales
	)

	BeforeEach(func() {
		j, nu, dom = displacedDisk(0.3, 0.05, 0.02)
		scales = phasespace.DefaultScales()
	})

	Describe("construction", func() {
		It("rejects mismatched lists before touching the fields", func() {
			_, err := df.NewComposite(1, []float64{1, 2}, []float64{0.1}, phasespace.Field{}, phasespace.Field{}, phasespace.Domain{}, phasespace.Scales{})
			Expect(err).To(MatchError(df.ErrLengthMismatch))
		})

		It("rejects an empty mixture", func() {
			_, err := df.NewComposite(1, nil, nil, j, nu, dom, scales)
			Expect(err).To(MatchError(df.ErrNoComponents))
		})

		DescribeTable("rejects unusable normalizations",
			func(norms []float64) {
				sigmas := make([]float64, len(norms))
				for i := range sigmas {
					sigmas[i] = 0.1
				}
				_, err := df.NewComposite(1, norms, sigmas, j, nu, dom, scales)
				Expect(err).To(MatchError(df.ErrBadWeights))
			},
			Entry("negative", []float64{1, -0.5}),
			Entry("all zero", []float64{0, 0}),
			Entry("NaN", []float64{math.NaN(), 1}),
		)

		It("reports which component failed", func() {
			_, err := df.NewComposite(1, []float64{0.5, 0.5}, []float64{0.1, -1}, j, nu, dom, scales)
			var ce *df.ComponentError
			Expect(err).To(BeAssignableToTypeOf(ce))
			Expect(err).To(MatchError(df.ErrBadDispersion))
			ce = err.(*df.ComponentError)
			Expect(ce.Index).To(Equal(1))
		})
	})

	Describe("weights", func() {
		It("normalizes the caller's list", func() {
			c, err := df.NewComposite(1, []float64{2, 1, 1}, []float64{0.1, 0.15, 0.2}, j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())

			w := c.Weights()
			Expect(w).To(HaveLen(3))
			Expect(w[0] + w[1] + w[2]).To(BeNumerically("~", 1, 1e-15))
			Expect(w[0]).To(BeNumerically("~", 0.5, 1e-15))
		})

		It("hands each component its unnormalized share of the midplane density", func() {
			c, err := df.NewComposite(2, []float64{3, 1}, []float64{0.1, 0.2}, j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())

			comps := c.Components()
			Expect(comps[0].RhoMidplane()).To(Equal(6.0))
			Expect(comps[1].RhoMidplane()).To(Equal(2.0))
		})
	})

	Describe("a single component", func() {
		It("reproduces the component exactly", func() {
			c, err := df.NewComposite(1.5, []float64{1}, []float64{0.15}, j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())
			s, err := df.NewSingleComponent(1.5, 0.15, j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.Density()).To(Equal(s.Density()))
			Expect(c.MeanV()).To(Equal(s.MeanV()))
			Expect(c.A()).To(Equal(s.A()))
		})
	})

	Describe("aggregation", func() {
		var (
			c      *df.Composite
			thin   *df.SingleComponent
			thick  *df.SingleComponent
			norms  = []float64{0.8, 0.4}
			sigmas = []float64{0.1, 0.2}
		)

		BeforeEach(func() {
			var err error
			c, err = df.NewComposite(1, norms, sigmas, j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())
			thin, err = df.NewSingleComponent(norms[0], sigmas[0], j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())
			thick, err = df.NewSingleComponent(norms[1], sigmas[1], j, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())
		})

		It("sums densities without weights", func() {
			rho, r1, r2 := c.Density(), thin.Density(), thick.Density()
			for i := range rho {
				Expect(rho[i]).To(BeNumerically("~", r1[i]+r2[i], 1e-12*rho[i]))
			}
		})

		It("weights the mean velocity and asymmetry", func() {
			w := c.Weights()
			mv, a := c.MeanV(), c.A()
			m1, m2 := thin.MeanV(), thick.MeanV()
			a1, a2 := thin.A(), thick.A()
			for i := range mv {
				Expect(mv[i]).To(BeNumerically("~", w[0]*m1[i]+w[1]*m2[i], 1e-9))
				Expect(a[i]).To(BeNumerically("~", w[0]*a1[i]+w[1]*a2[i], 1e-12))
			}
		})

		It("derives the dispersion from the mixed moments", func() {
			m1, m2 := c.VelocityMoment(1), c.VelocityMoment(2)
			sigma := c.VelocityDispersion()
			for i := range sigma {
				Expect(sigma[i]).To(BeNumerically("~", math.Sqrt(m2[i]-m1[i]*m1[i]), 1e-9))
			}
			// A two-temperature mixture is hotter than its cold component.
			Expect(sigma[20]).To(BeNumerically(">", thin.VelocityDispersion()[20]))
		})

		It("has a zeroth moment of one", func() {
			for _, m := range c.VelocityMoment(0) {
				Expect(m).To(BeNumerically("~", 1, 1e-6))
			}
		})

		It("removes the bulk motion from the relative mean velocity", func() {
			rel := c.MeanVRelative()
			sum := 0.0
			for _, v := range rel {
				sum += v
			}
			Expect(sum / float64(len(rel))).To(BeNumerically("~", 0, 1e-9))

			mv := c.MeanV()
			Expect(mv[0] - rel[0]).To(BeNumerically("~", mv[10]-rel[10], 1e-9))
		})

		It("shares the grid of its first component", func() {
			Expect(c.Z()).To(Equal(thin.Z()))
			Expect(c.ZPlus()).To(Equal(thin.ZPlus()))
			Expect(c.A()).To(HaveLen(len(dom.Z)))
		})

		It("snapshots every profile", func() {
			p := c.Profiles()
			Expect(p.Density).To(Equal(c.Density()))
			Expect(p.ZFit).To(HaveLen(2))
			Expect(p.ZFit[0]).To(Equal(thin.ZFit()))
			Expect(p.ScaleHeight[0]).To(Equal(thin.Fit().ScaleHeight))
			Expect(p.Sigma).To(HaveLen(2))
			Expect(p.Sigma[0]).To(Equal(thin.Sigma()))
			Expect(p.MeanVRelative).To(Equal(c.MeanVRelative()))
		})
	})

	Describe("an unperturbed disk", func() {
		It("is flat and symmetric when the action vanishes", func() {
			zero := phasespace.NewField(len(dom.Z), len(dom.V))
			c, err := df.NewComposite(1, []float64{0.6, 0.4}, []float64{0.1, 0.2}, zero, nu, dom, scales)
			Expect(err).NotTo(HaveOccurred())

			for _, r := range c.Density() {
				Expect(r).To(BeNumerically("~", scales.Density, 1e-12))
			}
			for _, a := range c.A() {
				Expect(a).To(BeNumerically("~", 0, 1e-12))
			}
		})
	})
})
