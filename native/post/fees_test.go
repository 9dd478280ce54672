package post

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func testFees() FeeParams {
	return FeeParams{
		Creation: uint256.NewInt(100_000),
		Reaction: uint256.NewInt(10),
		Link:     uint256.NewInt(500),
		Text:     uint256.NewInt(1_000),
		Tag:      uint256.NewInt(250),
		TipPct:   uint256.NewInt(0),
	}
}

func TestComputeNodeCostCreationOnly(t *testing.T) {
	fees := FeeParams{Creation: uint256.NewInt(100_000)}.Normalize()
	total, sub, err := ComputeNodeCost(fees, false, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(100_000), total)
	require.Equal(t, uint256.NewInt(100_000), sub.Creation)
	require.True(t, sub.Body.IsZero())
	require.True(t, sub.Tags.IsZero())
	require.True(t, sub.Links.IsZero())
}

func TestComputeNodeCostAdditive(t *testing.T) {
	// 600 chars is two full 280-char blocks, 3 tags, 2 links.
	total, sub, err := ComputeNodeCost(testFees(), false, 600, 3, 2)
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(2_000), sub.Body)
	require.Equal(t, uint256.NewInt(750), sub.Tags)
	require.Equal(t, uint256.NewInt(1_000), sub.Links)
	require.Equal(t, uint256.NewInt(100_000), sub.Creation)

	want := new(uint256.Int)
	for _, part := range []*uint256.Int{sub.Creation, sub.Body, sub.Tags, sub.Links} {
		want.Add(want, part)
	}
	require.Equal(t, want, total)
}

func TestComputeNodeCostUpdateSkipsCreation(t *testing.T) {
	total, sub, err := ComputeNodeCost(testFees(), true, 280, 1, 0)
	require.NoError(t, err)
	require.True(t, sub.Creation.IsZero())
	require.Equal(t, uint256.NewInt(1_250), total)
}

func TestComputeNodeCostBodyBlocks(t *testing.T) {
	fees := FeeParams{Text: uint256.NewInt(7)}.Normalize()
	for bodyLen, blocks := range map[int]uint64{0: 0, 279: 0, 280: 1, 559: 1, 560: 2} {
		total, _, err := ComputeNodeCost(fees, true, bodyLen, 0, 0)
		require.NoError(t, err)
		require.Equal(t, uint256.NewInt(7*blocks), total, "bodyLen %d", bodyLen)
	}
}

func TestComputeNodeCostOverflow(t *testing.T) {
	max := new(uint256.Int).Not(uint256.NewInt(0))
	fees := FeeParams{Tag: max}.Normalize()
	_, _, err := ComputeNodeCost(fees, true, 0, 2, 0)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestCostQuery(t *testing.T) {
	engine := newTestEngine(t)
	cfg := testConfig()
	cfg.Fees = testFees()
	instantiate(t, engine, cfg, NodeInitArgs{Title: "root"})

	res, err := engine.Cost(CostQueryArgs{Node: NodeInitArgs{
		Title: "priced",
		Body:  strings.Repeat("x", 280),
		Tags:  []string{"a", "b"},
		Links: []Link{{Kind: LinkGeneric, URL: "https://example.com"}},
	}})
	require.NoError(t, err)
	// creation 100_000 + one text block 1_000 + two tags 500 + one link 500
	require.Equal(t, uint256.NewInt(102_000), res.Total)

	res, err = engine.Cost(CostQueryArgs{IsUpdate: true, Node: NodeInitArgs{Body: strings.Repeat("x", 280)}})
	require.NoError(t, err)
	require.Equal(t, uint256.NewInt(1_000), res.Total)
}
