package accel

import (
	"math"
	"time"

	"github.com/prism-render/prism/geometry"
	"github.com/prism-render/prism/log"
	"github.com/prism-render/prism/types"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis

	// The BVH builder will not attempt to calculate split candidates
	// if the node bbox along an axis is less than this threshold.
	minSideLength float32 = 1e-3

	// If the split step (calculated as side length / (1024 * depth+1))
	// is less than this threshold the BVH builder will not evaluate
	// split candidates.
	minSplitStep float32 = 1e-5
)

var (
	// A split scoring strategy that uses the surface area heuristic (SAH).
	SurfaceAreaHeuristic = surfaceAreaHeuristic{}
)

// A split scoring strategy.
type ScoreStrategy interface {
	// Calculate a score for splitting workList at splitPoint along a particular Axis.
	ScoreSplit(workList []geometry.Primitive, splitAxis Axis, splitPoint float32) (leftCount, rightCount int, score float32)

	// Calculate a score for all items in workList.
	ScorePartition(workList []geometry.Primitive) (score float32)
}

type splitScore struct {
	axis       Axis
	splitPoint float32

	leftCount, rightCount int
	score                 float32
}

type bvhStats struct {
	partitionedItems int
	totalItems       int
	nodes            int
	leafs            int
	maxDepth         int
}

// A BVH node stored inside a contiguous node list. Internal nodes reference
// their children by index; leaves reference a primitive range inside the
// leaf-ordered primitive list and are marked by primCount > 0.
type bvhNode struct {
	bounds types.BBox

	left  int32
	right int32

	firstPrim uint32
	primCount uint32
}

// BVH is a bounding volume hierarchy accelerator. Nodes are stored as a
// contiguous list and leaves index into a primitive list reordered during
// the build, so traversal touches cache-friendly ranges.
type BVH struct {
	logger log.Logger

	prims   []geometry.Primitive
	ordered []geometry.Primitive
	nodes   []bvhNode

	// The minimum number of items that are required for creating a leaf.
	minLeafItems int

	// A channel for receiving score results.
	scoreChan chan splitScore

	// The split scoring strategy to use.
	scoreStrategy ScoreStrategy

	stats bvhStats
}

// Create a BVH accelerator. The minLeafItems param specifies the minimum
// number of items that can form a leaf: the builder automatically generates
// leafs whenever the incoming work length is <= minLeafItems or no split
// improves on the parent's score.
func NewBVH(minLeafItems int, scoreStrategy ScoreStrategy) *BVH {
	if minLeafItems < 1 {
		minLeafItems = 1
	}
	return &BVH{
		logger:        log.New("bvh"),
		minLeafItems:  minLeafItems,
		scoreStrategy: scoreStrategy,
	}
}

// Bind the primitive set to partition. The slice is referenced, not copied;
// the build reorders primitives into its own internal list and leaves the
// bound slice untouched.
func (b *BVH) SetPrimitives(prims []geometry.Primitive) {
	b.prims = prims
}

// Construct the hierarchy. Calling Build again discards the previous index
// and rebuilds from scratch.
func (b *BVH) Build() {
	b.nodes = make([]bvhNode, 0, 2*len(b.prims))
	b.ordered = make([]geometry.Primitive, 0, len(b.prims))
	b.scoreChan = make(chan splitScore)
	b.stats = bvhStats{totalItems: len(b.prims)}

	if len(b.prims) == 0 {
		return
	}

	start := time.Now()
	b.partition(b.prims, 0)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.stats.nodes+b.stats.leafs, b.stats.leafs,
	)
}

// Partition workList and return the created node index.
func (b *BVH) partition(workList []geometry.Primitive, depth int) int32 {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	node := bvhNode{bounds: types.NewBBox()}
	for _, item := range workList {
		node.bounds = node.bounds.Union(item.BBox())
	}

	// Do we have enough items for partitioning? If not create a leaf
	if len(workList) <= b.minLeafItems {
		return b.createLeaf(&node, workList)
	}

	// Calc current node score
	var bestScore float32 = b.scoreStrategy.ScorePartition(workList)
	var bestSplit *splitScore = nil

	// Try partitioning along each axis and select the split with best score
	pendingScores := 0

	// Run axis split tests in parallel
	side := node.bounds.Size()
	for axis := XAxis; axis <= ZAxis; axis++ {
		// Skip axis if bbox dimension is too small
		if side[axis] < minSideLength {
			continue
		}

		// We want the split steps to become more granular the deeper we go
		splitStep := side[axis] / (1024.0 / float32(depth+1))
		if splitStep < minSplitStep {
			continue
		}

		for splitPoint := node.bounds.Min[axis]; splitPoint < node.bounds.Max[axis]; splitPoint += splitStep {
			pendingScores++
			go func(axis Axis, splitPoint float32) {
				lCount, rCount, score := b.scoreStrategy.ScoreSplit(workList, axis, splitPoint)
				b.scoreChan <- splitScore{
					axis:       axis,
					splitPoint: splitPoint,

					leftCount:  lCount,
					rightCount: rCount,
					score:      score,
				}
			}(axis, splitPoint)
		}
	}

	// Process all scores and pick the best split
	for ; pendingScores > 0; pendingScores-- {
		candidate := <-b.scoreChan
		if candidate.score < bestScore {
			bestScore = candidate.score
			bestSplit = &candidate
		}
	}

	// If we can't find a split that improves the current node score create a leaf
	if bestSplit == nil {
		return b.createLeaf(&node, workList)
	}

	// Split work list into two sets
	leftWorkList := make([]geometry.Primitive, 0, bestSplit.leftCount)
	rightWorkList := make([]geometry.Primitive, 0, bestSplit.rightCount)
	for _, item := range workList {
		if item.Center()[bestSplit.axis] < bestSplit.splitPoint {
			leftWorkList = append(leftWorkList, item)
		} else {
			rightWorkList = append(rightWorkList, item)
		}
	}

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, node)
	b.stats.nodes++

	// Partition children and update node indices
	leftNodeIndex := b.partition(leftWorkList, depth+1)
	rightNodeIndex := b.partition(rightWorkList, depth+1)
	b.nodes[nodeIndex].left = leftNodeIndex
	b.nodes[nodeIndex].right = rightNodeIndex

	return nodeIndex
}

// Set up the given node as a leaf referencing all items in the work list.
// Returns the index of the node in the bvh node list.
func (b *BVH) createLeaf(node *bvhNode, workList []geometry.Primitive) int32 {
	node.firstPrim = uint32(len(b.ordered))
	node.primCount = uint32(len(workList))
	b.ordered = append(b.ordered, workList...)

	nodeIndex := int32(len(b.nodes))
	b.nodes = append(b.nodes, *node)

	b.stats.leafs++
	b.stats.partitionedItems += len(workList)

	return nodeIndex
}

// Walk the hierarchy front to back with an explicit stack. With a hit record
// the traversal keeps shrinking the clamp distance so the globally closest
// hit survives; without one it returns on the first in-range hit.
func (b *BVH) Intersect(ray *geometry.Ray, isect *geometry.Intersection) bool {
	if len(b.nodes) == 0 {
		return false
	}

	stack := make([]int32, 0, 64)
	stack = append(stack, 0)

	hit := false
	for len(stack) > 0 {
		node := &b.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		clamp := ray.TMax
		if isect != nil && isect.T < clamp {
			clamp = isect.T
		}
		if !node.bounds.Intersects(ray.Origin, ray.InvDir, ray.TMin, clamp) {
			continue
		}

		if node.primCount > 0 {
			for _, prim := range b.ordered[node.firstPrim : node.firstPrim+node.primCount] {
				if prim.Intersect(ray, isect) {
					if isect == nil {
						return true
					}
					hit = true
				}
			}
			continue
		}

		stack = append(stack, node.right, node.left)
	}

	return hit
}

// Get the root node bounding box; the empty sentinel before Build or for an
// empty primitive set.
func (b *BVH) BBox() types.BBox {
	if len(b.nodes) == 0 {
		return types.NewBBox()
	}
	return b.nodes[0].bounds
}

// Get node/leaf counts and the maximum tree depth of the last build.
func (b *BVH) Stats() (nodes, leafs, maxDepth int) {
	return b.stats.nodes + b.stats.leafs, b.stats.leafs, b.stats.maxDepth
}

// A score implementation that uses the surface area heuristic for
// calculating split scores.
type surfaceAreaHeuristic struct{}

// Score a BVH split based on the surface area heuristic. The SAH calculates
// the split score using the formula (lower score is better):
//
// left count * left BBOX area + right count * right BBOX area.
//
// SAH avoids splits that generate empty partitions by assigning the worst
// possible score (MaxFloat32) when it encounters such cases.
func (h surfaceAreaHeuristic) ScoreSplit(workList []geometry.Primitive, axis Axis, splitPoint float32) (leftCount, rightCount int, score float32) {
	lbox := types.NewBBox()
	rbox := types.NewBBox()

	for _, item := range workList {
		if item.Center()[axis] < splitPoint {
			leftCount++
			lbox = lbox.Union(item.BBox())
		} else {
			rightCount++
			rbox = rbox.Union(item.BBox())
		}
	}

	// Make sure that we don't generate empty partitions
	if leftCount == 0 || rightCount == 0 {
		return leftCount, rightCount, math.MaxFloat32
	}

	score = float32(leftCount)*0.5*lbox.SurfaceArea() + float32(rightCount)*0.5*rbox.SurfaceArea()
	return leftCount, rightCount, score
}

// Calculate the score for an unsplit workList using formula:
// count * BBOX area
//
// If the workList is empty, then this method returns the worst possible
// score (MaxFloat32).
func (h surfaceAreaHeuristic) ScorePartition(workList []geometry.Primitive) (score float32) {
	if len(workList) == 0 {
		return math.MaxFloat32
	}

	box := types.NewBBox()
	for _, item := range workList {
		box = box.Union(item.BBox())
	}

	return float32(len(workList)) * 0.5 * box.SurfaceArea()
}
