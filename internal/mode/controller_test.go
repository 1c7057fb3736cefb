package mode

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pantrack/internal/associate"
	"github.com/san-kum/pantrack/internal/command"
	"github.com/san-kum/pantrack/internal/logging"
	"github.com/san-kum/pantrack/internal/pantilt"
	"github.com/san-kum/pantrack/internal/trajectory"
)

type historySpy struct{ cleared int }

func (h *historySpy) ClearHistory() { h.cleared++ }

// bench runs the controller against a perfect plant that reports exactly
// what was commanded.
type bench struct {
	eng     *trajectory.Engine
	ctrl    *Controller
	history *historySpy
	t       float64
	dt      float64
	objects []associate.Object
}

func newBench() *bench {
	tcfg := trajectory.DefaultConfig()
	eng := trajectory.NewEngine(tcfg, pantilt.Pose{})
	h := &historySpy{}
	return &bench{
		eng:     eng,
		ctrl:    NewController(DefaultConfig(), eng, h, logging.Noop()),
		history: h,
		dt:      tcfg.Dt,
	}
}

func (b *bench) step(toks ...command.Token) (cmd pantilt.Pair, quit bool) {
	cmd = b.eng.Tick(b.t)
	measured := cmd.Pose()
	b.eng.Latch(measured)
	for _, tok := range toks {
		if b.ctrl.Handle(b.t, tok) {
			quit = true
		}
	}
	b.ctrl.Track(b.t, b.objects)
	Expect(b.ctrl.Settle(b.t, measured)).To(Succeed())
	b.ctrl.Advance()
	b.t += b.dt
	return cmd, quit
}

func (b *bench) run(n int) {
	for i := 0; i < n; i++ {
		b.step()
	}
}

func expectSameSample(got, want pantilt.Pair) {
	const tol = 1e-7
	ExpectWithOffset(1, got.Pan.Pos).To(BeNumerically("~", want.Pan.Pos, tol))
	ExpectWithOffset(1, got.Pan.Vel).To(BeNumerically("~", want.Pan.Vel, tol))
	ExpectWithOffset(1, got.Tilt.Pos).To(BeNumerically("~", want.Tilt.Pos, tol))
	ExpectWithOffset(1, got.Tilt.Vel).To(BeNumerically("~", want.Tilt.Vel, tol))
}

var _ = Describe("Controller", func() {
	var b *bench

	BeforeEach(func() {
		b = newBench()
	})

	It("starts at home holding the start pose", func() {
		Expect(b.ctrl.Mode()).To(Equal(GoHome))
		Expect(b.eng.Kind()).To(Equal(trajectory.KindHold))
		cmd, _ := b.step()
		Expect(cmd).To(Equal(pantilt.Pair{}))
	})

	Describe("mode cycle", func() {
		It("goes from home through a spline into the scan and back home", func() {
			b.step(command.Scan)
			Expect(b.ctrl.Mode()).To(Equal(Scanning))
			Expect(b.eng.Kind()).To(Equal(trajectory.KindSpline))
			Expect(b.history.cleared).To(Equal(1))

			spline := b.eng.Spec().(trajectory.Spline)
			ticks := int((spline.T1-spline.T0)/b.dt) + 2
			b.run(ticks)

			Expect(b.eng.Kind()).To(Equal(trajectory.KindScan))
			scan := b.eng.Spec().(trajectory.Scan)
			Expect(scan.T0).To(Equal(spline.T1))
			expectSameSample(scan.Eval(scan.T0), spline.Eval(spline.T1))

			b.run(123)
			now := b.t
			cmd, _ := b.step(command.Home)

			Expect(b.ctrl.Mode()).To(Equal(GoHome))
			home := b.eng.Spec().(trajectory.Spline)
			Expect(home.T0).To(Equal(now))
			expectSameSample(cmd, scan.Eval(now))
			expectSameSample(home.Eval(now), cmd)

			b.run(int((home.T1-home.T0)/b.dt) + 2)
			Expect(b.eng.Kind()).To(Equal(trajectory.KindHold))
			h := b.eng.Spec().(trajectory.Hold)
			Expect(h.Pan).To(BeNumerically("~", 0, 1e-3))
			Expect(h.Tilt).To(BeNumerically("~", 0, 1e-3))
		})

		It("never commands a jump when a command lands mid-move", func() {
			b.step(command.Home)
			b.step(command.Scan)
			b.run(40)

			cmd, _ := b.step(command.Track)
			s := b.eng.Spec().(trajectory.Spline)
			expectSameSample(s.Eval(s.T0), cmd)
			Expect(cmd.Pan.Vel).NotTo(BeZero())
		})

		It("stops in place on track and then holds", func() {
			b.step(command.Scan)
			b.run(50)
			at := b.eng.Last()

			b.step(command.Track)
			Expect(b.ctrl.Mode()).To(Equal(Tracking))
			stop := b.eng.Spec().(trajectory.Spline)
			end := stop.Eval(stop.T1)
			Expect(end.Pan.Vel).To(BeNumerically("~", 0, 1e-9))
			Expect(end.Pan.Pos).To(BeNumerically("~", at.Pan.Pos, 0.05))

			b.run(int((stop.T1-stop.T0)/b.dt) + 2)
			Expect(b.eng.Kind()).To(Equal(trajectory.KindHold))
		})

		It("reports quit without changing mode", func() {
			b.step(command.Scan)
			_, quit := b.step(command.Quit)
			Expect(quit).To(BeTrue())
			Expect(b.ctrl.Mode()).To(Equal(Scanning))
		})
	})

	Describe("tracking", func() {
		BeforeEach(func() {
			b.step(command.Track)
		})

		It("keeps the last command when nothing is tracked", func() {
			b.run(30)
			spec := b.eng.Spec()
			b.ctrl.Track(b.t, nil)
			Expect(b.eng.Spec()).To(Equal(spec))
			_, ok := b.ctrl.Target()
			Expect(ok).To(BeFalse())
		})

		It("re-aims at the object of interest every tick", func() {
			b.objects = []associate.Object{{Pan: 0.4, Tilt: 0.1}, {Pan: -0.4, Tilt: 0.2}}
			b.step()

			s := b.eng.Spec().(trajectory.Spline)
			end := s.Eval(s.T1)
			Expect(end.Pan.Pos).To(BeNumerically("~", 0.4, 1e-7))
			Expect(end.Tilt.Pos).To(BeNumerically("~", 0.1, 1e-7))
			Expect(s.T1 - s.T0).To(BeNumerically(">=", DefaultConfig().MinTrackMove))

			target, ok := b.ctrl.Target()
			Expect(ok).To(BeTrue())
			Expect(target).To(Equal(pantilt.Pose{Pan: 0.4, Tilt: 0.1}))
		})

		It("moves on to the next object after one period", func() {
			b.objects = []associate.Object{{Pan: 0.4}, {Pan: -0.4}}
			for b.ctrl.Ticks() < DefaultPeriod {
				b.step()
			}
			b.step()
			target, _ := b.ctrl.Target()
			Expect(target.Pan).To(Equal(-0.4))
		})

		It("ignores objects outside tracking mode", func() {
			b.step(command.Home)
			spec := b.eng.Spec()
			b.ctrl.Track(b.t, []associate.Object{{Pan: 1}})
			Expect(b.eng.Spec()).To(Equal(spec))
		})
	})

	It("fails on a spline ending in an unknown mode", func() {
		b.step(command.Home)
		b.ctrl.mode = Mode(42)

		s := b.eng.Spec().(trajectory.Spline)
		err := b.ctrl.Settle(s.T1, pantilt.Pose{})
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, pantilt.ErrUnexpectedSplineEnd)).To(BeTrue())
	})
})

var _ = Describe("Interest", func() {
	It("cycles with period n*Period over 900 ticks", func() {
		in := Interest{Period: 200}
		seq := make([]int, 900)
		for k := range seq {
			i, ok := in.Index(k, 3)
			Expect(ok).To(BeTrue())
			seq[k] = i
		}

		Expect(seq[0]).To(Equal(0))
		Expect(seq[199]).To(Equal(0))
		Expect(seq[200]).To(Equal(1))
		Expect(seq[400]).To(Equal(2))
		Expect(seq[599]).To(Equal(2))
		Expect(seq[600]).To(Equal(0))
		Expect(seq[899]).To(Equal(1))
		for k := 600; k < 900; k++ {
			Expect(seq[k]).To(Equal(seq[k-600]))
		}
	})

	It("selects nothing from an empty list", func() {
		_, ok := Interest{Period: 200}.Index(1234, 0)
		Expect(ok).To(BeFalse())
	})

	It("falls back to the default period", func() {
		i, _ := Interest{}.Index(DefaultPeriod, 2)
		Expect(i).To(Equal(1))
	})
})

var _ = DescribeTable("ParseMode",
	func(in string, want Mode, ok bool) {
		got, err := ParseMode(in)
		if !ok {
			Expect(err).To(HaveOccurred())
			return
		}
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
		Expect(ParseMode(got.String())).To(Equal(want))
	},
	Entry("home", "home", GoHome, true),
	Entry("tracking", "Tracking", Tracking, true),
	Entry("scan alias", "scan", Scanning, true),
	Entry("unknown", "orbit", Mode(0), false),
)
