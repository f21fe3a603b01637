package layout_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/physics"
	"github.com/san-kum/forcelayout/internal/sim"
)

func record(l *layout.Layout) *[]layout.EventType {
	var events []layout.EventType
	l.Subscribe(func(e layout.Event) { events = append(events, e.Type) })
	return &events
}

func count(events []layout.EventType, t layout.EventType) int {
	n := 0
	for _, e := range events {
		if e == t {
			n++
		}
	}
	return n
}

var _ = Describe("Layout", func() {
	var g *graph.Graph

	BeforeEach(func() {
		g = graph.New()
	})

	Describe("construction", func() {
		It("requires a graph", func() {
			_, err := layout.New(nil)
			Expect(err).To(MatchError(physics.ErrMissingGraph))

			var typed *graph.Graph
			_, err = layout.New(typed)
			Expect(err).To(MatchError(physics.ErrMissingGraph))
		})

		It("rejects invalid settings", func() {
			s := physics.DefaultSettings()
			s.Dimensions = 0
			_, err := layout.New(g, layout.WithSettings(s))
			Expect(errors.Is(err, physics.ErrInvalidDimension)).To(BeTrue())
		})

		It("creates a body per node and a spring per link", func() {
			g.AddLink("a", "b")
			g.AddLink("a", "c")
			l, err := layout.New(g)
			Expect(err).NotTo(HaveOccurred())

			Expect(l.BodyCount()).To(Equal(3))
			Expect(l.Spring("a->b")).NotTo(BeNil())
			Expect(l.SpringBetween("a", "c")).NotTo(BeNil())
			Expect(l.SpringBetween("c", "a")).To(BeNil())
			Expect(l.Body("a").Mass).To(BeNumerically("~", 1+2.0/3, 1e-12))
			Expect(l.Body("b").Mass).To(BeNumerically("~", 1+1.0/3, 1e-12))
			Expect(l.Body("a").ID).To(Equal("a"))
		})

		It("uses node position, pinning and link length from the graph", func() {
			g.AddNode("a", graph.At(5, -5), graph.Pinned())
			g.AddLink("a", "b", graph.Length(25))
			l, err := layout.New(g)
			Expect(err).NotTo(HaveOccurred())

			pos, err := l.NodePosition("a")
			Expect(err).NotTo(HaveOccurred())
			Expect([]float64(pos)).To(Equal([]float64{5, -5}))
			pinned, err := l.IsNodePinned("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(pinned).To(BeTrue())
			Expect(l.Spring("a->b").Length).To(Equal(25.0))
		})

		It("places new nodes near their neighbors", func() {
			g.AddNode("a", graph.At(1000, 1000))
			g.AddLink("a", "b")
			l, err := layout.New(g)
			Expect(err).NotTo(HaveOccurred())

			pos, _ := l.NodePosition("b")
			Expect(pos[0]).To(BeNumerically("~", 1000, 10))
			Expect(pos[1]).To(BeNumerically("~", 1000, 10))
		})

		It("applies custom mass and spring transform", func() {
			g.AddLink("a", "b", graph.Weight(3))
			var seen []string
			l, err := layout.New(g,
				layout.WithNodeMass(func(string) float64 { return 4 }),
				layout.WithSpringTransform(func(lk *graph.Link, s *physics.Spring) {
					seen = append(seen, lk.ID)
					s.Coefficient = s.Weight * 0.1
				}),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(seen).To(Equal([]string{"a->b"}))
			Expect(l.Body("a").Mass).To(Equal(4.0))
			Expect(l.Spring("a->b").Coefficient).To(BeNumerically("~", 0.3, 1e-12))
		})

		It("rejects a non-finite mass", func() {
			g.AddNode("a")
			_, err := layout.New(g, layout.WithNodeMass(func(string) float64 { return math.NaN() }))
			Expect(errors.Is(err, physics.ErrInvalidParameter)).To(BeTrue())
		})

		It("uses a custom simulator factory", func() {
			boom := errors.New("boom")
			_, err := layout.New(g, layout.WithSimulatorFactory(func(physics.Settings) (layout.Simulator, error) {
				return nil, boom
			}))
			Expect(err).To(MatchError(boom))
		})

		It("works in three dimensions", func() {
			s := physics.DefaultSettings()
			s.Dimensions = 3
			g.AddLink("a", "b")
			l, err := layout.New(g, layout.WithSettings(s))
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 10; i++ {
				l.Step()
			}
			pos, _ := l.NodePosition("a")
			Expect(pos).To(HaveLen(3))
			Expect(l.GraphRect().Min).To(HaveLen(3))
		})
	})

	Describe("stepping", func() {
		It("is stable immediately without bodies", func() {
			l, err := layout.New(g)
			Expect(err).NotTo(HaveOccurred())
			events := record(l)
			Expect(l.Step()).To(BeTrue())
			Expect(l.Step()).To(BeTrue())
			Expect(*events).To(Equal([]layout.EventType{layout.EventStable}))
		})

		It("stabilizes a single link", func() {
			g.AddLink("1", "2")
			l, err := layout.New(g)
			Expect(err).NotTo(HaveOccurred())
			events := record(l)

			stable := false
			steps := 0
			for ; steps < 200 && !stable; steps++ {
				stable = l.Step()
			}
			Expect(stable).To(BeTrue())
			Expect(count(*events, layout.EventStep)).To(Equal(steps))
			Expect(count(*events, layout.EventStable)).To(Equal(1))
			Expect(l.LastMove()).To(BeNumerically("<=", 2*layout.StableThreshold))

			pos, _ := l.NodePosition("1")
			Expect(pos.IsValid()).To(BeTrue())
		})

		It("fires stable only on transitions", func() {
			g.AddLink("1", "2")
			l, _ := layout.New(g)
			events := record(l)
			for i := 0; i < 200; i++ {
				l.Step()
			}
			Expect(count(*events, layout.EventStable)).To(Equal(1))

			Expect(l.SetNodePosition("1", 500, 500)).To(Succeed())
			Expect(l.Step()).To(BeFalse())
			Expect(count(*events, layout.EventUnstable)).To(Equal(1))
		})

		It("keeps pinned nodes in place", func() {
			g.AddLink("a", "b")
			g.AddLink("b", "c")
			l, _ := layout.New(g)
			Expect(l.PinNode("a", true)).To(Succeed())
			before := l.Body("a").Pos.Clone()
			other := l.Body("c").Pos.Clone()

			for i := 0; i < 50; i++ {
				l.Step()
			}
			Expect(l.Body("a").Pos).To(Equal(before))
			Expect(l.Body("c").Pos).NotTo(Equal(other))

			Expect(l.PinNode("a", false)).To(Succeed())
			pinned, _ := l.IsNodePinned("a")
			Expect(pinned).To(BeFalse())
		})

		It("reports link positions and the graph rect", func() {
			g.AddNode("a", graph.At(0, 0))
			g.AddNode("b", graph.At(10, 4))
			g.AddLink("a", "b")
			l, _ := layout.New(g)

			from, to, ok := l.LinkPosition("a->b")
			Expect(ok).To(BeTrue())
			Expect([]float64(from)).To(Equal([]float64{0, 0}))
			Expect([]float64(to)).To(Equal([]float64{10, 4}))
			_, _, ok = l.LinkPosition("nope")
			Expect(ok).To(BeFalse())

			r := l.GraphRect()
			Expect([]float64(r.Min)).To(Equal([]float64{0, 0}))
			Expect([]float64(r.Max)).To(Equal([]float64{10, 4}))
		})

		It("enumerates bodies in node order", func() {
			g.AddLink("x", "y")
			g.AddNode("z")
			l, _ := layout.New(g)
			var ids []string
			l.ForEachBody(func(id string, b *physics.Body) { ids = append(ids, id) })
			Expect(ids).To(Equal([]string{"x", "y", "z"}))
		})

		It("reports a force vector length after a step", func() {
			g.AddLink("a", "b")
			l, _ := layout.New(g)
			l.Step()
			Expect(l.ForceVectorLength()).To(BeNumerically(">", 0))
		})
	})

	Describe("graph changes", func() {
		var l *layout.Layout

		BeforeEach(func() {
			g.AddLink("a", "b")
			var err error
			l, err = layout.New(g)
			Expect(err).NotTo(HaveOccurred())
		})

		It("adds bodies and springs", func() {
			g.AddLink("b", "c")
			Expect(l.BodyCount()).To(Equal(3))
			Expect(l.SpringBetween("b", "c")).NotTo(BeNil())
			Expect(l.Body("b").Mass).To(BeNumerically("~", 1+2.0/3, 1e-12))
		})

		It("releases springs and restores mass", func() {
			Expect(g.RemoveLink("a->b")).To(BeTrue())
			Expect(l.Spring("a->b")).To(BeNil())
			Expect(l.Body("a").Mass).To(Equal(1.0))
		})

		It("releases bodies of removed nodes", func() {
			Expect(g.RemoveNode("b")).To(BeTrue())
			Expect(l.Body("b")).To(BeNil())
			Expect(l.Spring("a->b")).To(BeNil())
			Expect(l.BodyCount()).To(Equal(1))
			Expect(l.Body("a").Mass).To(Equal(1.0))
		})

		It("leaves no body for a node with an invalid mass", func() {
			strict, err := layout.New(g, layout.WithNodeMass(func(id string) float64 {
				if id == "x" {
					return -1
				}
				return 1
			}))
			Expect(err).NotTo(HaveOccurred())

			g.AddNode("x")
			Expect(strict.Body("x")).To(BeNil())
			Expect(strict.BodyCount()).To(Equal(2))
			Expect(strict.Simulator().(*sim.Simulator).Bodies()).To(HaveLen(2))

			_, err = strict.NodePosition("x")
			Expect(errors.Is(err, physics.ErrInvalidParameter)).To(BeTrue())
			Expect(strict.BodyCount()).To(Equal(2))
		})

		It("keeps springs and masses when a link is rejected", func() {
			mass := l.Body("a").Mass
			g.AddLink("a", "c", graph.Length(math.Inf(1)))

			Expect(l.Spring("a->c")).To(BeNil())
			Expect(l.BodyCount()).To(Equal(3))
			Expect(l.Body("a").Mass).To(Equal(mass))
			Expect(l.Simulator().(*sim.Simulator).Springs()).To(HaveLen(1))
		})

		It("handles batched updates", func() {
			g.BeginUpdate()
			g.AddLink("c", "d")
			g.RemoveNode("a")
			Expect(l.Body("c")).To(BeNil())
			g.EndUpdate()

			Expect(l.Body("c")).NotTo(BeNil())
			Expect(l.Body("a")).To(BeNil())
			Expect(l.BodyCount()).To(Equal(3))
		})
	})

	Describe("unknown nodes", func() {
		It("fails body operations", func() {
			l, _ := layout.New(g)
			_, err := l.NodePosition("ghost")
			Expect(errors.Is(err, physics.ErrUnknownNode)).To(BeTrue())
			var ne *physics.NodeError
			Expect(errors.As(err, &ne)).To(BeTrue())
			Expect(ne.ID).To(Equal("ghost"))

			Expect(l.SetNodePosition("ghost", 1, 1)).To(MatchError(physics.ErrUnknownNode))
			Expect(l.PinNode("ghost", true)).To(MatchError(physics.ErrUnknownNode))
			_, err = l.IsNodePinned("ghost")
			Expect(err).To(MatchError(physics.ErrUnknownNode))
			Expect(l.Body("ghost")).To(BeNil())
		})
	})

	Describe("disposal", func() {
		It("detaches from the graph and goes inert", func() {
			g.AddLink("a", "b")
			l, _ := layout.New(g)
			events := record(l)

			l.Dispose()
			l.Dispose()
			Expect(*events).To(Equal([]layout.EventType{layout.EventDisposed}))
			Expect(l.Disposed()).To(BeTrue())

			g.AddNode("c")
			Expect(l.Body("c")).To(BeNil())

			before := l.Body("a").Pos.Clone()
			Expect(l.Step()).To(BeTrue())
			Expect(l.Body("a").Pos).To(Equal(before))
		})

		It("lets subscribers leave", func() {
			l, _ := layout.New(g)
			calls := 0
			unsubscribe := l.Subscribe(func(layout.Event) { calls++ })
			l.Step()
			unsubscribe()
			l.Dispose()
			Expect(calls).To(Equal(1))
		})
	})

	Describe("Ensemble", func() {
		It("runs seeded copies to stability", func() {
			g.AddLink("a", "b")
			g.AddLink("b", "c")
			e := layout.NewEnsemble(g, 4, 10, 500)
			e.Limit = 2
			results, err := e.Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(4))
			for i, r := range results {
				Expect(r.Seed).To(Equal(uint64(10 + i)))
				Expect(r.Stable).To(BeTrue())
				Expect(r.Steps).To(BeNumerically("<=", 500))
			}
			Expect(g.NodeCount()).To(Equal(3))
		})

		It("is deterministic per seed", func() {
			g.AddLink("a", "b")
			a, err := layout.NewEnsemble(g, 2, 1, 100).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			b, err := layout.NewEnsemble(g, 2, 1, 100).Run(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})

		It("stops on cancellation", func() {
			g.AddLink("a", "b")
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := layout.NewEnsemble(g, 2, 1, 100).Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
		})

		It("requires a graph", func() {
			_, err := layout.NewEnsemble(nil, 1, 1, 1).Run(context.Background())
			Expect(err).To(MatchError(physics.ErrMissingGraph))
		})
	})
})
