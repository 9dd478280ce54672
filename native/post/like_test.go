package post

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// parentRanks returns (rank, id) pairs for one parent's ranked index in
// ascending key order.
func parentRanks(t *testing.T, engine *Engine, parentID string) [][2]interface{} {
	t.Helper()
	scope, err := parentRankScope(parentID)
	require.NoError(t, err)
	var entries [][2]interface{}
	for _, suffix := range indexSuffixes(t, engine, scope) {
		rank, id, err := rankedSuffix(suffix)
		require.NoError(t, err)
		entries = append(entries, [2]interface{}{rank, id})
	}
	return entries
}

func tagRanks(t *testing.T, engine *Engine, tag string) [][2]interface{} {
	t.Helper()
	var entries [][2]interface{}
	for _, suffix := range indexSuffixes(t, engine, tagRankScope(tag)) {
		rank, id, err := rankedSuffix(suffix)
		require.NoError(t, err)
		entries = append(entries, [2]interface{}{rank, id})
	}
	return entries
}

func likeCount(t *testing.T, engine *Engine, id string) uint32 {
	t.Helper()
	var n uint32
	view(t, engine, func(s *state) error {
		var err error
		n, err = s.numLikes(id)
		return err
	})
	return n
}

func TestLikeRelocatesRankEntry(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	res, err := engine.Reply(testAlice, NodeInitArgs{Title: "child", ParentID: RootNodeID})
	require.NoError(t, err)

	// Creation leaves a rank-0 entry.
	require.Equal(t, [][2]interface{}{{uint32(0), res.ID}}, parentRanks(t, engine, RootNodeID))

	liked, err := engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	require.True(t, liked.Liked)
	require.Equal(t, uint32(1), liked.NLikes)

	// Exactly one entry, at the new rank. No stale rank-0 entry survives.
	require.Equal(t, [][2]interface{}{{uint32(1), res.ID}}, parentRanks(t, engine, RootNodeID))
	require.Equal(t, uint32(1), likeCount(t, engine, res.ID))

	liked2, err := engine.ToggleLike(testCarol, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	require.Equal(t, uint32(2), liked2.NLikes)
	require.Equal(t, [][2]interface{}{{uint32(2), res.ID}}, parentRanks(t, engine, RootNodeID))
}

func TestUnlikeReturnsToZeroState(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	res, err := engine.Reply(testAlice, NodeInitArgs{Title: "child", ParentID: RootNodeID})
	require.NoError(t, err)

	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	unliked, err := engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	require.False(t, unliked.Liked)
	require.Equal(t, uint32(0), unliked.NLikes)

	// Counter record is gone (absence is the canonical zero) and no rank
	// entry remains for this node under the parent.
	require.Equal(t, uint32(0), likeCount(t, engine, res.ID))
	require.Empty(t, parentRanks(t, engine, RootNodeID))

	var hasCounter bool
	view(t, engine, func(s *state) error {
		key, err := nodeKey(likesPrefix, res.ID)
		if err != nil {
			return err
		}
		hasCounter, err = s.kv.Has(key)
		return err
	})
	require.False(t, hasCounter)
}

func TestDoubleToggleRestoresIndices(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	a, err := engine.Reply(testAlice, NodeInitArgs{Title: "a", ParentID: RootNodeID})
	require.NoError(t, err)
	b, err := engine.Reply(testAlice, NodeInitArgs{Title: "b", ParentID: RootNodeID})
	require.NoError(t, err)

	// Give b a standing like so the toggled node moves through an occupied
	// neighborhood.
	_, err = engine.ToggleLike(testCarol, LikeMsg{NodeID: b.ID})
	require.NoError(t, err)

	before := parentRanks(t, engine, RootNodeID)
	beforeCount := likeCount(t, engine, a.ID)

	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: a.ID})
	require.NoError(t, err)
	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: a.ID})
	require.NoError(t, err)

	require.Equal(t, beforeCount, likeCount(t, engine, a.ID))
	// a's rank-0 entry does not come back after like+unlike; everything
	// else is untouched.
	var after [][2]interface{}
	for _, e := range before {
		if e[1] == a.ID {
			continue
		}
		after = append(after, e)
	}
	require.Equal(t, after, parentRanks(t, engine, RootNodeID))
}

func TestMirrorInvariant(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	res, err := engine.Reply(testAlice, NodeInitArgs{Title: "child", ParentID: RootNodeID})
	require.NoError(t, err)

	checkMirror := func(wantPresent bool) {
		view(t, engine, func(s *state) error {
			forward, err := addrLikedKey(testBob, res.ID)
			require.NoError(t, err)
			reverse, err := likedAddrKey(res.ID, testBob)
			require.NoError(t, err)
			hasForward, err := s.kv.Has(forward)
			require.NoError(t, err)
			hasReverse, err := s.kv.Has(reverse)
			require.NoError(t, err)
			require.Equal(t, wantPresent, hasForward)
			require.Equal(t, hasForward, hasReverse)
			return nil
		})
	}

	checkMirror(false)
	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	checkMirror(true)
	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	checkMirror(false)
}

// TestUnlikeLeavesTagRankBehind pins the deployed asymmetry: the tag-ranked
// index is relocated on like but never on unlike.
func TestUnlikeLeavesTagRankBehind(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	res, err := engine.Reply(testAlice, NodeInitArgs{Title: "tagged", ParentID: RootNodeID, Tags: []string{"Go"}})
	require.NoError(t, err)

	require.Equal(t, [][2]interface{}{{uint32(0), res.ID}}, tagRanks(t, engine, "go"))

	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	require.Equal(t, [][2]interface{}{{uint32(1), res.ID}}, tagRanks(t, engine, "go"))

	_, err = engine.ToggleLike(testBob, LikeMsg{NodeID: res.ID})
	require.NoError(t, err)
	// Parent rank entry is gone, the tag entry stays at rank 1.
	require.Empty(t, parentRanks(t, engine, RootNodeID))
	require.Equal(t, [][2]interface{}{{uint32(1), res.ID}}, tagRanks(t, engine, "go"))
}

func TestLikeOnMissingNodeFails(t *testing.T) {
	engine := newTestEngine(t)
	instantiate(t, engine, testConfig(), NodeInitArgs{Title: "root"})
	_, err := engine.ToggleLike(testBob, LikeMsg{NodeID: "7"})
	require.ErrorIs(t, err, ErrNotFound)
}
