package experiment_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/scatsim/internal/config"
	"github.com/san-kum/scatsim/internal/experiment"
	"github.com/san-kum/scatsim/internal/scatter"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.EnergyGrid = &config.RangeConfig{Start: 0.5, Stop: 5.0, Count: 12}
	cfg.AngleGrid = &config.RangeConfig{Start: 0, Stop: math.Pi, Count: 13}
	cfg.Ells = []int{0, 1, 2}
	cfg.Integration = config.IntegrationConfig{RMin: 1e-3, RMax: 20, Steps: 800}
	cfg.Potentials = []config.PotentialConfig{
		{Type: "square_well", Params: map[string]float64{"V0": 5.0, "R": 1.2}},
		{Type: "yukawa", Params: map[string]float64{"g": 2.5, "mu": 1.0}},
	}
	return cfg
}

var _ = Describe("Experiment", func() {
	ctx := context.Background()

	Context("free particle, single s-wave energy", func() {
		It("reproduces a zero phase shift", func() {
			cfg := config.GetPreset("free")
			Expect(cfg).NotTo(BeNil())

			res, err := experiment.Run(ctx, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Phases).To(HaveLen(1))
			Expect(res.Phases[0]).To(HaveLen(1))
			Expect(res.Phases[0][0].Energy).To(Equal(2.0))
			Expect(res.Phases[0][0].Delta).To(BeNumerically("~", 0, 1e-9))

			Expect(res.Delays[0][0].Tau).To(BeZero())
			Expect(res.CandidateCount()).To(BeZero())
			Expect(res.KStar).To(BeNumerically("~", 2.0, 1e-12))
			for _, s := range res.CrossSection {
				Expect(s.Value).To(BeNumerically("~", 0, 1e-18))
			}
		})
	})

	Context("square well plus yukawa", func() {
		var res *experiment.Result

		BeforeEach(func() {
			var err error
			res, err = experiment.Run(ctx, smallConfig())
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns one series per partial wave on the input grid", func() {
			energies := smallConfig().EnergyValues()
			Expect(res.Phases.Ells()).To(Equal([]int{0, 1, 2}))
			for _, ell := range res.Phases.Ells() {
				Expect(res.Phases[ell].Energies()).To(Equal(energies))
				Expect(res.Delays[ell]).To(HaveLen(len(energies)))
			}
		})

		It("reports the cross section at the middle grid energy", func() {
			energies := smallConfig().EnergyValues()
			Expect(res.EStar).To(Equal(energies[len(energies)/2]))
			Expect(res.KStar).To(BeNumerically("~", math.Sqrt(2*res.EStar), 1e-12))
			Expect(res.CrossSection).To(HaveLen(13))
			Expect(res.SigmaTotal).To(BeNumerically(">", 0))
		})

		It("scores every candidate at least by its phase jump", func() {
			for ell, cands := range res.Candidates {
				series := res.Phases[ell]
				for _, c := range cands {
					idx := -1
					for i, p := range series {
						if p.Energy == c.Energy {
							idx = i
						}
					}
					Expect(idx).To(BeNumerically(">=", 1))
					jump := math.Abs(series[idx].Delta - series[idx-1].Delta)
					Expect(c.Score).To(BeNumerically(">=", jump))
				}
			}
		})

		It("describes the combined potential", func() {
			Expect(res.Potential).To(ContainSubstring("square_well"))
			Expect(res.Potential).To(ContainSubstring("yukawa"))
		})
	})

	Context("explicit potential", func() {
		It("uses the supplied potential instead of the config", func() {
			cfg := smallConfig()
			cfg.Ells = []int{0}
			exp := experiment.New(cfg).WithPotential(scatter.PotentialFunc(func(float64) float64 { return 0 }))
			Expect(exp.Setup()).To(Succeed())

			res, err := exp.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range res.Phases[0] {
				Expect(p.Delta).To(BeZero())
			}
		})
	})

	Context("failures", func() {
		It("rejects an invalid config before integrating", func() {
			cfg := smallConfig()
			cfg.ReducedMass = 0
			_, err := experiment.Run(ctx, cfg)
			Expect(err).To(MatchError(ContainSubstring("mu_red")))
		})

		It("rejects an unknown potential type", func() {
			cfg := smallConfig()
			cfg.Potentials = []config.PotentialConfig{{Type: "harmonic"}}
			_, err := experiment.Run(ctx, cfg)
			Expect(err).To(MatchError(ContainSubstring("unknown potential type")))
		})

		It("refuses to run before setup", func() {
			_, err := experiment.New(smallConfig()).Run(ctx)
			Expect(err).To(HaveOccurred())
		})

		It("passes potential failures through", func() {
			boom := errors.New("boom")
			exp := experiment.New(smallConfig()).WithPotential(failing{err: boom})
			Expect(exp.Setup()).To(Succeed())

			_, err := exp.Run(ctx)
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(errors.Is(err, scatter.ErrDomain)).To(BeFalse())
		})

		It("surfaces a canceled context", func() {
			c, cancel := context.WithCancel(ctx)
			cancel()
			exp := experiment.New(smallConfig())
			Expect(exp.Setup()).To(Succeed())

			_, err := exp.Run(c)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})
})

type failing struct{ err error }

func (f failing) Eval(float64) (float64, error) { return 0, f.err }
