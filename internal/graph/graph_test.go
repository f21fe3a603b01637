package graph_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/san-kum/forcelayout/internal/graph"
)

type GraphSuite struct {
	suite.Suite
	g       *graph.Graph
	batches [][]graph.Change
	unsub   func()
}

func (s *GraphSuite) SetupTest() {
	s.g = graph.New()
	s.batches = nil
	s.unsub = s.g.Subscribe(func(c []graph.Change) {
		s.batches = append(s.batches, c)
	})
}

func (s *GraphSuite) TestAddNodeIsIdempotent() {
	require := require.New(s.T())
	a := s.g.AddNode("a")
	again := s.g.AddNode("a", graph.WithLabel("A"))

	require.Same(a, again, "existing node should be returned")
	require.Equal("A", a.Label, "options should apply to the existing node")
	require.Equal(1, s.g.NodeCount())
	require.Len(s.batches, 1, "only the first AddNode is a change")
	require.Equal(graph.Added, s.batches[0][0].Type)
}

func (s *GraphSuite) TestNodeOptions() {
	require := require.New(s.T())
	n := s.g.AddNode("p", graph.At(1, 2), graph.Pinned())
	require.Equal([]float64{1, 2}, n.Position)
	require.True(n.Pinned)
}

func (s *GraphSuite) TestAddLinkCreatesEndpointsInOneBatch() {
	require := require.New(s.T())
	l := s.g.AddLink("a", "b", graph.Length(4))

	require.Equal("a->b", l.ID)
	require.Equal(4.0, l.Length)
	require.Equal(1.0, l.Weight)
	require.Equal(2, s.g.NodeCount())
	require.Len(s.batches, 1, "AddLink should deliver one batch")
	require.Len(s.batches[0], 3)
	require.NotNil(s.batches[0][0].Node)
	require.NotNil(s.batches[0][2].Link)
}

func (s *GraphSuite) TestParallelLinksGetDistinctIDs() {
	require := require.New(s.T())
	first := s.g.AddLink("a", "b")
	second := s.g.AddLink("a", "b")

	require.NotEqual(first.ID, second.ID)
	require.Equal(2, s.g.LinkCount())
	require.Same(first, s.g.HasLink("a", "b"))
	require.Nil(s.g.HasLink("b", "a"), "links are directed")
}

func (s *GraphSuite) TestLinksIncident() {
	require := require.New(s.T())
	s.g.AddLink("a", "b")
	s.g.AddLink("c", "a")
	s.g.AddLink("b", "c")
	s.g.AddLink("a", "a")

	require.Len(s.g.Links("a"), 3)
	require.Len(s.g.Links("b"), 2)
	require.Empty(s.g.Links("missing"))
}

func (s *GraphSuite) TestRemoveNodeRemovesLinksFirst() {
	require := require.New(s.T())
	s.g.AddLink("a", "b")
	s.g.AddLink("b", "c")
	s.batches = nil

	require.True(s.g.RemoveNode("b"))
	require.False(s.g.RemoveNode("b"))
	require.Equal(0, s.g.LinkCount())
	require.Equal(2, s.g.NodeCount())
	require.Empty(s.g.Links("a"))

	require.Len(s.batches, 1)
	batch := s.batches[0]
	require.Len(batch, 3)
	require.NotNil(batch[0].Link)
	require.NotNil(batch[1].Link)
	require.Equal(graph.Removed, batch[2].Type)
	require.Equal("b", batch[2].Node.ID)
}

func (s *GraphSuite) TestBatching() {
	require := require.New(s.T())
	s.g.BeginUpdate()
	s.g.AddNode("x")
	s.g.BeginUpdate()
	s.g.AddLink("x", "y")
	s.g.EndUpdate()
	require.Empty(s.batches, "nested EndUpdate must not flush")
	s.g.EndUpdate()

	require.Len(s.batches, 1)
	require.Len(s.batches[0], 3)
	s.g.EndUpdate()
	require.Len(s.batches, 1, "unbalanced EndUpdate is ignored")
}

func (s *GraphSuite) TestUnsubscribe() {
	require := require.New(s.T())
	s.unsub()
	s.g.AddNode("quiet")
	require.Empty(s.batches)
}

func (s *GraphSuite) TestForEachInsertionOrder() {
	require := require.New(s.T())
	for _, id := range []string{"c", "a", "b"} {
		s.g.AddNode(id)
	}
	var ids []string
	s.g.ForEachNode(func(n *graph.Node) { ids = append(ids, n.ID) })
	require.Equal([]string{"c", "a", "b"}, ids)

	s.g.AddLink("a", "c")
	s.g.AddLink("b", "a")
	var links []string
	s.g.ForEachLink(func(l *graph.Link) { links = append(links, l.ID) })
	require.Equal([]string{"a->c", "b->a"}, links)
}

func (s *GraphSuite) TestCloneIsIndependent() {
	require := require.New(s.T())
	s.g.AddNode("a", graph.At(1, 1))
	s.g.AddLink("a", "b")

	c := s.g.Clone()
	c.Node("a").Position[0] = 9
	c.AddLink("b", "c")

	require.Equal(1.0, s.g.Node("a").Position[0])
	require.Equal(1, s.g.LinkCount())
	require.Equal(2, c.LinkCount())
	require.Len(c.Links("b"), 2)
}

func TestGraphSuite(t *testing.T) {
	suite.Run(t, new(GraphSuite))
}

func TestFromGonumUndirected(t *testing.T) {
	src := simple.NewUndirectedGraph()
	src.SetEdge(src.NewEdge(simple.Node(0), simple.Node(1)))
	src.SetEdge(src.NewEdge(simple.Node(2), simple.Node(1)))
	src.AddNode(simple.Node(5))

	g := graph.FromGonum(src)
	require.Equal(t, 4, g.NodeCount())
	require.Equal(t, 2, g.LinkCount())
	require.NotNil(t, g.HasLink("0", "1"))
	require.NotNil(t, g.HasLink("1", "2"))
	require.Empty(t, g.Links("5"))
}

func TestFromGonumDirected(t *testing.T) {
	src := simple.NewDirectedGraph()
	src.SetEdge(src.NewEdge(simple.Node(0), simple.Node(1)))
	src.SetEdge(src.NewEdge(simple.Node(1), simple.Node(0)))

	g := graph.FromGonum(src)
	require.Equal(t, 2, g.LinkCount())
	require.NotNil(t, g.HasLink("1", "0"))
}
