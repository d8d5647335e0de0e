package accounting_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/accounting"
	"github.com/sarchlab/hesmodel/costmodel"
)

var _ = Describe("Model", func() {
	var model *accounting.Model

	BeforeEach(func() {
		model = &accounting.Model{
			Costs:    costmodel.Default(),
			Variants: hesmodel.DefaultVariants(),
			Workers:  10,
		}
	})

	It("should normalize the baseline to exactly one", func() {
		report, err := model.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(report.ChunkLength).To(Equal(6))
		Expect(report.Baseline.Name).To(Equal("Baseline"))
		Expect(report.NormalizedOverheads()["Baseline"]).To(Equal(
			hesmodel.NormalizedOverhead{Runtime: 1, Memory: 1, Bandwidth: 1}))
	})

	It("should model r=2 as slower than the baseline", func() {
		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		r2 := report.NormalizedOverheads()["H-ES-r2"]
		Expect(r2.Runtime).To(BeNumerically("~", 0.167376/0.138576, 1e-9))
		Expect(r2.Runtime).To(BeNumerically("~", 1.2078, 1e-4))
		Expect(r2.Memory).To(BeNumerically("~", 2867700.0/4300620, 1e-12))
		Expect(r2.Bandwidth).To(BeNumerically("~", 715536.0/1431060, 1e-12))
	})

	It("should cut r=3 network traffic to about a third", func() {
		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(report.RawTotals()["Baseline"].Bandwidth).To(Equal(1431060.0))
		Expect(report.RawTotals()["H-ES-r3"].Bandwidth).To(Equal(477028.0))

		r3 := report.NormalizedOverheads()["H-ES-r3"]
		Expect(r3.Bandwidth).To(BeNumerically("~", 477028.0/1431060, 1e-12))
		Expect(r3.Bandwidth).To(BeNumerically("~", 0.3333, 1e-4))
		Expect(r3.Memory).To(BeNumerically("~", 2390060.0/4300620, 1e-12))
	})

	It("should keep the order of the variants", func() {
		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(report.Rows).To(HaveLen(3))
		Expect(report.Rows[0].Variant.Name).To(Equal("Baseline"))
		Expect(report.Rows[1].Variant.Name).To(Equal("H-ES-r2"))
		Expect(report.Rows[2].Variant.Name).To(Equal("H-ES-r3"))

		row, ok := report.Row("H-ES-r3")
		Expect(ok).To(BeTrue())
		Expect(row.Schedule.RoundCount(hesmodel.FullGradient)).To(Equal(2))
	})

	It("should produce identical results on every run", func() {
		first, err := model.Run()
		Expect(err).NotTo(HaveOccurred())
		second, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(second.RawTotals()).To(Equal(first.RawTotals()))
		Expect(second.NormalizedOverheads()).To(Equal(first.NormalizedOverheads()))
	})

	It("should rank runtimes when hybrid-only costs are free", func() {
		table := costmodel.Default()
		for _, op := range []hesmodel.Operation{
			hesmodel.RandomShift, hesmodel.Transmit, hesmodel.Receive, hesmodel.Combine,
		} {
			var err error
			table, err = table.With(op, costmodel.Entry{})
			Expect(err).NotTo(HaveOccurred())
		}
		model.Costs = table

		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		r2 := report.NormalizedOverheads()["H-ES-r2"].Runtime
		r3 := report.NormalizedOverheads()["H-ES-r3"].Runtime
		Expect(r3).To(BeNumerically("<=", r2))
		Expect(r2).To(BeNumerically("<=", 1))
	})

	It("should report a degenerate cost table instead of infinities", func() {
		entries := make(map[hesmodel.Operation]costmodel.Entry)
		for _, op := range hesmodel.Operations() {
			entries[op] = costmodel.Entry{}
		}
		table, err := costmodel.NewTable(entries, map[hesmodel.RoundKind]int64{
			hesmodel.FullGradient: 0,
			hesmodel.Stochastic:   0,
		})
		Expect(err).NotTo(HaveOccurred())
		model.Costs = table

		report, err := model.Run()

		Expect(report).To(BeNil())
		Expect(err).To(MatchError(hesmodel.ErrDivisionByZero))
		Expect(err.Error()).To(ContainSubstring("runtime"))
	})

	It("should keep nonzero network costs", func() {
		table, err := costmodel.Default().With(hesmodel.Transmit, costmodel.Entry{Runtime: 0.01})
		Expect(err).NotTo(HaveOccurred())
		model.Costs = table

		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(report.RawTotals()["Baseline"].Runtime).To(BeNumerically("~", 0.138576+0.06, 1e-12))
	})

	It("should accept a new variant without new formulas", func() {
		model.Variants = append(model.Variants, hesmodel.HybridES(4))

		report, err := model.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(report.ChunkLength).To(Equal(12))
		Expect(report.RawTotals()["H-ES-r4"].Bandwidth).To(Equal(3*238510.0 + 9*2))
		Expect(report.NormalizedOverheads()["Baseline"].IsUnit()).To(BeTrue())
	})

	It("should refuse periods whose chunk does not fit", func() {
		model.Variants = append(model.Variants,
			hesmodel.Variant{Name: "wide", Period: 4294967311, FullGradientRounds: 1},
			hesmodel.Variant{Name: "wider", Period: 4294967357, FullGradientRounds: 1},
		)

		report, err := model.Run()

		Expect(report).To(BeNil())
		Expect(err).To(MatchError(hesmodel.ErrIncompatiblePeriod))
	})

	It("should refuse duplicated names", func() {
		model.Variants = append(model.Variants, hesmodel.HybridES(2))

		_, err := model.Run()

		Expect(err).To(MatchError(hesmodel.ErrInvalidVariant))
	})

	It("should refuse a set without baseline", func() {
		model.Variants = []hesmodel.Variant{hesmodel.HybridES(2)}

		_, err := model.Run()

		Expect(err).To(MatchError(hesmodel.ErrInvalidVariant))
	})

	It("should propagate unknown operations", func() {
		table, err := costmodel.NewTable(map[hesmodel.Operation]costmodel.Entry{
			hesmodel.ForwardProp: {Runtime: 1},
		}, nil)
		Expect(err).NotTo(HaveOccurred())
		model.Costs = table

		_, err = model.Run()

		Expect(err).To(MatchError(hesmodel.ErrUnknownOperation))
	})
})
