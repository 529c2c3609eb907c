// Package detector implements the fraud risk model: a bagged ensemble of
// randomized decision trees with train/predict/save/load semantics.
package detector

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/fraudwatch/fraudwatch/internal/domain"
)

// Ensemble configuration. Sized to bound inference latency and overfitting
// on a small per-user feature table, not to squeeze out the last point of
// accuracy.
const (
	DefaultNumTrees = 100
	DefaultMaxDepth = 10

	minSamplesSplit = 2
	testFraction    = 0.2

	// artifactVersion tags the persisted blob. Changing the feature schema,
	// the ratio smoothing constant, or the tier thresholds invalidates older
	// fits; bump this so stale artifacts are rejected at load time.
	artifactVersion = 1
)

// Model wraps the fitted ensemble. An unfitted Model is created by New;
// fitted state is owned exclusively by the Model and replaced wholesale by
// Train or Load, never mutated in place. Predict is safe for concurrent use.
type Model struct {
	seed     int64
	numTrees int
	maxDepth int
	trees    []*treeNode
	schema   []string
}

// New creates an untrained model with the given random seed
func New(seed int64) *Model {
	return &Model{
		seed:     seed,
		numTrees: DefaultNumTrees,
		maxDepth: DefaultMaxDepth,
	}
}

// Fitted reports whether the model holds trained parameters
func (m *Model) Fitted() bool {
	return len(m.trees) > 0
}

// Schema returns the feature column order the model was fitted on,
// or nil for an unfitted model.
func (m *Model) Schema() []string {
	if m.schema == nil {
		return nil
	}
	s := make([]string, len(m.schema))
	copy(s, m.schema)
	return s
}

// Train fits the ensemble on an 80/20 split of the labeled feature table and
// returns held-out evaluation metrics. The fitted parameters replace any
// prior fit only after training succeeds; a failed run leaves the model in
// its previous state.
func (m *Model) Train(rows [][]float64, schema []string, labels []bool) (*TrainingReport, error) {
	if len(rows) == 0 || len(rows) != len(labels) {
		return nil, &domain.InvalidInputError{Reason: fmt.Sprintf("training set has %d rows and %d labels", len(rows), len(labels))}
	}
	if len(schema) == 0 {
		return nil, &domain.InvalidInputError{Reason: "training schema is empty"}
	}
	for i, row := range rows {
		if len(row) != len(schema) {
			return nil, &domain.InvalidInputError{Reason: fmt.Sprintf("training row %d has %d columns, schema has %d", i, len(row), len(schema))}
		}
	}

	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return nil, fmt.Errorf("degenerate label distribution: %d of %d samples fraudulent, need both classes", positives, len(labels))
	}

	// Reproducible 80/20 shuffle split
	rng := rand.New(rand.NewSource(m.seed))
	perm := rng.Perm(len(rows))
	testSize := int(math.Ceil(testFraction * float64(len(rows))))
	if testSize >= len(rows) {
		testSize = len(rows) - 1
	}
	testIdx := perm[:testSize]
	trainIdx := perm[testSize:]

	trainPos := 0
	for _, i := range trainIdx {
		if labels[i] {
			trainPos++
		}
	}
	if trainPos == 0 || trainPos == len(trainIdx) {
		return nil, fmt.Errorf("degenerate label distribution in training partition: %d of %d samples fraudulent", trainPos, len(trainIdx))
	}

	trees := make([]*treeNode, m.numTrees)
	for t := range trees {
		treeRNG := rand.New(rand.NewSource(rng.Int63()))

		// Bootstrap sample of the training partition
		sample := make([]int, len(trainIdx))
		for i := range sample {
			sample[i] = trainIdx[treeRNG.Intn(len(trainIdx))]
		}

		trees[t] = buildTree(rows, labels, sample, 0, m.maxDepth, treeRNG)
	}

	m.trees = trees
	m.schema = make([]string, len(schema))
	copy(m.schema, schema)

	return evaluate(m, rows, labels, trainIdx, testIdx), nil
}

// Predict returns fraud probabilities in [0,1] for each feature row.
// The column set and order must match the schema the model was fitted on.
func (m *Model) Predict(rows [][]float64, schema []string) ([]float64, error) {
	if !m.Fitted() {
		return nil, &domain.ModelNotFittedError{}
	}
	if !schemaEqual(m.schema, schema) {
		return nil, &domain.SchemaMismatchError{Want: m.Schema(), Got: schema}
	}
	for _, row := range rows {
		if len(row) != len(m.schema) {
			return nil, &domain.SchemaMismatchError{Want: m.Schema(), Got: schema}
		}
	}

	probs := make([]float64, len(rows))
	for i, row := range rows {
		sum := 0.0
		for _, tree := range m.trees {
			sum += tree.predict(row)
		}
		probs[i] = sum / float64(len(m.trees))
	}
	return probs, nil
}

func schemaEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// artifact is the persisted form of a fitted model
type artifact struct {
	Version int         `msgpack:"version"`
	Seed    int64       `msgpack:"seed"`
	Schema  []string    `msgpack:"schema"`
	Trees   []*treeNode `msgpack:"trees"`
}

// Save serializes the fitted parameters to path. The write goes through a
// temp file and rename so a crash never leaves a half-written artifact.
func (m *Model) Save(path string) error {
	if !m.Fitted() {
		return &domain.ModelNotFittedError{}
	}

	blob, err := msgpack.Marshal(artifact{
		Version: artifactVersion,
		Seed:    m.seed,
		Schema:  m.schema,
		Trees:   m.trees,
	})
	if err != nil {
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory %s: %w", dir, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize model artifact: %w", err)
	}
	return nil
}

// Load reconstructs a fitted model from a persisted artifact.
// Corrupt or incompatible artifacts fail with ModelLoadError.
func Load(path string) (*Model, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ModelLoadError{Path: path, Err: err}
	}

	var art artifact
	if err := msgpack.Unmarshal(blob, &art); err != nil {
		return nil, &domain.ModelLoadError{Path: path, Err: err}
	}
	if art.Version != artifactVersion {
		return nil, &domain.ModelLoadError{Path: path, Err: fmt.Errorf("artifact version %d is incompatible with supported version %d", art.Version, artifactVersion)}
	}
	if len(art.Trees) == 0 || len(art.Schema) == 0 {
		return nil, &domain.ModelLoadError{Path: path, Err: fmt.Errorf("artifact holds no fitted parameters")}
	}

	return &Model{
		seed:     art.Seed,
		numTrees: len(art.Trees),
		maxDepth: DefaultMaxDepth,
		trees:    art.Trees,
		schema:   art.Schema,
	}, nil
}
