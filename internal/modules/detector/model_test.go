package detector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fraudwatch/fraudwatch/internal/domain"
)

// separableSet builds a two-column training set where fraud is perfectly
// separated on the first feature.
func separableSet(n int) (rows [][]float64, schema []string, labels []bool) {
	schema = []string{"ratio", "volume"}
	for i := 0; i < n; i++ {
		fraud := i%2 == 0
		x := 0.1 + float64(i)*0.001
		if fraud {
			x += 10.0
		}
		rows = append(rows, []float64{x, float64(i)})
		labels = append(labels, fraud)
	}
	return rows, schema, labels
}

func TestTrainAndPredict(t *testing.T) {
	rows, schema, labels := separableSet(60)

	model := New(42)
	require.False(t, model.Fitted())

	report, err := model.Train(rows, schema, labels)
	require.NoError(t, err)
	require.True(t, model.Fitted())

	assert.Equal(t, 48, report.TrainSize)
	assert.Equal(t, 12, report.TestSize)
	assert.GreaterOrEqual(t, report.Accuracy, 0.9)
	assert.Len(t, report.Probabilities, report.TestSize)
	assert.Len(t, report.Predictions, report.TestSize)

	probs, err := model.Predict([][]float64{{0.2, 5}, {10.5, 5}}, schema)
	require.NoError(t, err)
	require.Len(t, probs, 2)

	assert.Less(t, probs[0], 0.3)
	assert.Greater(t, probs[1], 0.7)
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	rows, schema, labels := separableSet(60)
	probe := [][]float64{{0.15, 1}, {3.0, 2}, {10.2, 3}}

	a := New(7)
	_, err := a.Train(rows, schema, labels)
	require.NoError(t, err)

	b := New(7)
	_, err = b.Train(rows, schema, labels)
	require.NoError(t, err)

	probsA, err := a.Predict(probe, schema)
	require.NoError(t, err)
	probsB, err := b.Predict(probe, schema)
	require.NoError(t, err)

	assert.Equal(t, probsA, probsB)
}

func TestTrain_DegenerateLabels(t *testing.T) {
	rows, schema, _ := separableSet(20)
	allSame := make([]bool, len(rows))

	model := New(42)
	_, err := model.Train(rows, schema, allSame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degenerate label distribution")

	// A failed training run must not mark the model fitted
	assert.False(t, model.Fitted())
}

func TestTrain_MismatchedInput(t *testing.T) {
	model := New(42)

	_, err := model.Train([][]float64{{1, 2}}, []string{"a", "b"}, []bool{true, false})
	var invalid *domain.InvalidInputError
	assert.ErrorAs(t, err, &invalid)

	_, err = model.Train([][]float64{{1}}, []string{"a", "b"}, []bool{true})
	assert.ErrorAs(t, err, &invalid)
}

func TestPredict_NotFitted(t *testing.T) {
	model := New(42)
	_, err := model.Predict([][]float64{{1, 2}}, []string{"a", "b"})

	var notFitted *domain.ModelNotFittedError
	assert.ErrorAs(t, err, &notFitted)
}

func TestPredict_SchemaMismatch(t *testing.T) {
	rows, schema, labels := separableSet(40)
	model := New(42)
	_, err := model.Train(rows, schema, labels)
	require.NoError(t, err)

	var mismatch *domain.SchemaMismatchError

	// Reordered columns
	_, err = model.Predict([][]float64{{1, 2}}, []string{"volume", "ratio"})
	assert.ErrorAs(t, err, &mismatch)

	// Missing column
	_, err = model.Predict([][]float64{{1}}, []string{"ratio"})
	assert.ErrorAs(t, err, &mismatch)

	// Row width differs from schema
	_, err = model.Predict([][]float64{{1, 2, 3}}, schema)
	assert.ErrorAs(t, err, &mismatch)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	rows, schema, labels := separableSet(60)
	model := New(42)
	_, err := model.Train(rows, schema, labels)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, model.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Fitted())
	assert.Equal(t, model.Schema(), loaded.Schema())

	probe := [][]float64{{0.2, 1}, {5.0, 2}, {10.4, 3}}
	want, err := model.Predict(probe, schema)
	require.NoError(t, err)
	got, err := loaded.Predict(probe, schema)
	require.NoError(t, err)

	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestSave_NotFitted(t *testing.T) {
	model := New(42)
	err := model.Save(filepath.Join(t.TempDir(), "model.bin"))

	var notFitted *domain.ModelNotFittedError
	assert.ErrorAs(t, err, &notFitted)
}

func TestLoad_CorruptArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a model artifact"), 0644))

	_, err := Load(path)
	var loadErr *domain.ModelLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.bin"))

	var loadErr *domain.ModelLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestLoad_IncompatibleVersion(t *testing.T) {
	blob, err := msgpack.Marshal(artifact{
		Version: artifactVersion + 1,
		Seed:    42,
		Schema:  []string{"ratio"},
		Trees:   []*treeNode{{Leaf: true, Prob: 0.5}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, blob, 0644))

	_, err = Load(path)
	var loadErr *domain.ModelLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "incompatible")
}

func TestSnapshot_Swap(t *testing.T) {
	snap := NewSnapshot()
	assert.Nil(t, snap.Current())

	rows, schema, labels := separableSet(40)
	model := New(42)
	_, err := model.Train(rows, schema, labels)
	require.NoError(t, err)

	snap.Store(model)
	assert.Same(t, model, snap.Current())

	replacement := New(43)
	_, err = replacement.Train(rows, schema, labels)
	require.NoError(t, err)

	snap.Store(replacement)
	assert.Same(t, replacement, snap.Current())
}
