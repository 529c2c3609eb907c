package detector

// ClassMetrics holds precision/recall/F1 for one class of the held-out
// evaluation.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// TrainingReport summarizes one training run: partition sizes, held-out
// metrics, and the raw held-out predictions for inspection.
type TrainingReport struct {
	TrainSize  int          `json:"train_size"`
	TestSize   int          `json:"test_size"`
	Accuracy   float64      `json:"accuracy"`
	Legitimate ClassMetrics `json:"legitimate"`
	Fraudulent ClassMetrics `json:"fraudulent"`

	// Held-out raw output, aligned index-wise
	Probabilities []float64 `json:"probabilities"`
	Predictions   []bool    `json:"predictions"`
	Labels        []bool    `json:"labels"`
}

// evaluate scores the fitted model on the held-out partition
func evaluate(m *Model, rows [][]float64, labels []bool, trainIdx, testIdx []int) *TrainingReport {
	report := &TrainingReport{
		TrainSize:     len(trainIdx),
		TestSize:      len(testIdx),
		Probabilities: make([]float64, len(testIdx)),
		Predictions:   make([]bool, len(testIdx)),
		Labels:        make([]bool, len(testIdx)),
	}

	correct := 0
	var tp, fp, fn, tn int
	for i, idx := range testIdx {
		sum := 0.0
		for _, tree := range m.trees {
			sum += tree.predict(rows[idx])
		}
		prob := sum / float64(len(m.trees))
		pred := prob > 0.5

		report.Probabilities[i] = prob
		report.Predictions[i] = pred
		report.Labels[i] = labels[idx]

		switch {
		case pred && labels[idx]:
			tp++
		case pred && !labels[idx]:
			fp++
		case !pred && labels[idx]:
			fn++
		default:
			tn++
		}
		if pred == labels[idx] {
			correct++
		}
	}

	if len(testIdx) > 0 {
		report.Accuracy = float64(correct) / float64(len(testIdx))
	}
	report.Fraudulent = classMetrics(tp, fp, fn, tp+fn)
	report.Legitimate = classMetrics(tn, fn, fp, tn+fp)

	return report
}

// classMetrics derives precision/recall/F1 from confusion counts for one
// class; undefined ratios (zero denominators) report as 0.
func classMetrics(truePos, falsePos, falseNeg, support int) ClassMetrics {
	m := ClassMetrics{Support: support}
	if truePos+falsePos > 0 {
		m.Precision = float64(truePos) / float64(truePos+falsePos)
	}
	if truePos+falseNeg > 0 {
		m.Recall = float64(truePos) / float64(truePos+falseNeg)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
