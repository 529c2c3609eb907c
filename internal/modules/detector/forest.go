package detector

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a fitted decision tree. Interior nodes split on
// Feature <= Threshold; leaves carry the fraud probability of the training
// samples that reached them.
type treeNode struct {
	Left      *treeNode `msgpack:"l"`
	Right     *treeNode `msgpack:"r"`
	Threshold float64   `msgpack:"t"`
	Prob      float64   `msgpack:"p"`
	Feature   int       `msgpack:"f"`
	Leaf      bool      `msgpack:"leaf"`
}

// predict walks the tree for one feature row
func (n *treeNode) predict(row []float64) float64 {
	for !n.Leaf {
		if row[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Prob
}

// buildTree fits one CART-style tree on a bootstrap sample.
// indices selects the rows visible to this node; rng drives the per-split
// feature subsampling so the whole tree is deterministic given its seed.
func buildTree(rows [][]float64, labels []bool, indices []int, depth, maxDepth int, rng *rand.Rand) *treeNode {
	positives := 0
	for _, i := range indices {
		if labels[i] {
			positives++
		}
	}
	prob := float64(positives) / float64(len(indices))

	if depth >= maxDepth || len(indices) < minSamplesSplit || positives == 0 || positives == len(indices) {
		return &treeNode{Leaf: true, Prob: prob}
	}

	feature, threshold, ok := bestSplit(rows, labels, indices, rng)
	if !ok {
		return &treeNode{Leaf: true, Prob: prob}
	}

	var left, right []int
	for _, i := range indices {
		if rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Leaf: true, Prob: prob}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(rows, labels, left, depth+1, maxDepth, rng),
		Right:     buildTree(rows, labels, right, depth+1, maxDepth, rng),
	}
}

// bestSplit searches a random sqrt(d) feature subset for the threshold with
// the lowest weighted Gini impurity. Returns ok=false when no candidate
// feature separates the samples.
func bestSplit(rows [][]float64, labels []bool, indices []int, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	numFeatures := len(rows[indices[0]])
	k := int(math.Ceil(math.Sqrt(float64(numFeatures))))
	perm := rng.Perm(numFeatures)

	bestImpurity := math.Inf(1)

	// Reused across features: indices sorted by the candidate feature value
	sorted := make([]int, len(indices))

	for _, f := range perm[:k] {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, b int) bool {
			return rows[sorted[a]][f] < rows[sorted[b]][f]
		})

		// Sweep split points between consecutive distinct values, tracking
		// left-side class counts incrementally.
		total := len(sorted)
		totalPos := 0
		for _, i := range sorted {
			if labels[i] {
				totalPos++
			}
		}

		leftPos := 0
		for pos := 1; pos < total; pos++ {
			if labels[sorted[pos-1]] {
				leftPos++
			}
			prev := rows[sorted[pos-1]][f]
			cur := rows[sorted[pos]][f]
			if prev == cur {
				continue
			}

			impurity := weightedGini(pos, leftPos, total-pos, totalPos-leftPos)
			if impurity < bestImpurity {
				bestImpurity = impurity
				feature = f
				threshold = (prev + cur) / 2
				ok = true
			}
		}
	}

	return feature, threshold, ok
}

// weightedGini computes the size-weighted Gini impurity of a binary split
func weightedGini(leftN, leftPos, rightN, rightPos int) float64 {
	return float64(leftN)*gini(leftN, leftPos) + float64(rightN)*gini(rightN, rightPos)
}

func gini(n, pos int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
