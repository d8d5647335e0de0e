package accounting_test

import (
	gomock "github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/hesmodel"
	"github.com/sarchlab/hesmodel/accounting"
	"github.com/sarchlab/hesmodel/costmodel"
	"github.com/sarchlab/hesmodel/schedule"
)

const tolerance = 1e-12

var _ = Describe("Aggregate", func() {
	var (
		mockCtrl *gomock.Controller
		costs    *MockLookup
		builder  *schedule.Builder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		costs = NewMockLookup(mockCtrl)

		var err error
		builder, err = schedule.NewBuilder(hesmodel.DefaultVariants())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should multiply counts by costs", func() {
		s, err := builder.Build(hesmodel.HybridES(3))
		Expect(err).NotTo(HaveOccurred())

		costs.EXPECT().
			Cost(gomock.Any(), hesmodel.Runtime).
			Return(1.0, nil).
			Times(len(s.Entries))
		costs.EXPECT().
			Cost(gomock.Any(), hesmodel.Memory).
			Return(10.0, nil).
			Times(len(s.Entries))
		costs.EXPECT().Payload(hesmodel.FullGradient).Return(100.0, nil)
		costs.EXPECT().Payload(hesmodel.Stochastic).Return(2.0, nil)

		totals, err := accounting.Aggregate(s, costs)

		Expect(err).NotTo(HaveOccurred())
		// 6 forward, 2 backprop, 4 random shift, 6 update and 6 of each network
		// operation.
		Expect(totals.Runtime).To(Equal(36.0))
		Expect(totals.Memory).To(Equal(360.0))
		Expect(totals.Bandwidth).To(Equal(2*100.0 + 4*2.0))
	})

	It("should not ask for the stochastic payload of the baseline", func() {
		s, err := builder.Build(hesmodel.Baseline)
		Expect(err).NotTo(HaveOccurred())

		costs.EXPECT().Cost(gomock.Any(), gomock.Any()).Return(0.5, nil).AnyTimes()
		costs.EXPECT().Payload(hesmodel.FullGradient).Return(7.0, nil)

		totals, err := accounting.Aggregate(s, costs)

		Expect(err).NotTo(HaveOccurred())
		Expect(totals.Bandwidth).To(Equal(42.0))
	})

	It("should name the variant when a lookup fails", func() {
		s, err := builder.Build(hesmodel.HybridES(2))
		Expect(err).NotTo(HaveOccurred())

		costs.EXPECT().
			Cost(hesmodel.ForwardProp, hesmodel.Runtime).
			Return(0.0, errors.Wrap(hesmodel.ErrUnknownOperation, "no cost for ForwardProp"))

		_, err = accounting.Aggregate(s, costs)

		Expect(err).To(MatchError(hesmodel.ErrUnknownOperation))
		Expect(err.Error()).To(ContainSubstring("H-ES-r2"))
	})

	It("should refuse an empty schedule", func() {
		s := &schedule.Schedule{Variant: hesmodel.Baseline, ChunkLength: 6}

		_, err := accounting.Aggregate(s, costs)

		Expect(err).To(MatchError(hesmodel.ErrEmptySchedule))
		Expect(err.Error()).To(ContainSubstring("Baseline"))
	})

	It("should refuse a nil schedule", func() {
		_, err := accounting.Aggregate(nil, costs)

		Expect(err).To(MatchError(hesmodel.ErrEmptySchedule))
	})

	Context("with the measured costs", func() {
		var table *costmodel.Table

		BeforeEach(func() {
			table = costmodel.Default()
		})

		aggregate := func(v hesmodel.Variant) hesmodel.ResourceTotals {
			s, err := builder.Build(v)
			Expect(err).NotTo(HaveOccurred())

			totals, err := accounting.Aggregate(s, table)
			Expect(err).NotTo(HaveOccurred())

			return totals
		}

		It("should compute the baseline runtime per chunk", func() {
			totals := aggregate(hesmodel.Baseline)

			Expect(totals.Runtime).To(BeNumerically("~", 6*(0.0164+0.0055+0.001196), tolerance))
			Expect(totals.Runtime).To(BeNumerically("~", 0.138576, tolerance))
		})

		It("should compute the r=2 runtime per chunk", func() {
			totals := aggregate(hesmodel.HybridES(2))

			Expect(totals.Runtime).To(BeNumerically("~",
				3*(0.0164+0.0055+0.001196)+3*(0.0164+0.0151+0.001196), tolerance))
			Expect(totals.Runtime).To(BeNumerically("~", 0.167376, tolerance))
		})

		It("should compute the memory per chunk", func() {
			Expect(aggregate(hesmodel.Baseline).Memory).To(Equal(6.0 * (239130 + 477640)))
			Expect(aggregate(hesmodel.HybridES(2)).Memory).To(Equal(3.0*(239130+477640) + 3*239130))
			Expect(aggregate(hesmodel.HybridES(3)).Memory).To(Equal(2.0*(239130+477640) + 4*239130))
		})

		It("should compute the bandwidth per chunk", func() {
			Expect(aggregate(hesmodel.Baseline).Bandwidth).To(Equal(1431060.0))
			Expect(aggregate(hesmodel.HybridES(2)).Bandwidth).To(Equal(3*238510.0 + 3*2))
			Expect(aggregate(hesmodel.HybridES(3)).Bandwidth).To(Equal(477028.0))
		})
	})
})
