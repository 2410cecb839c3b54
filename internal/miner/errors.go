package miner

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmptyInput is returned when there are no transactions to mine. A
// zero-transaction run has no meaningful rules, so it is reported instead
// of yielding empty tables.
var ErrEmptyInput = errors.New("no transactions to mine")

// ErrZeroDenominator marks a metric whose denominator is zero. The filter
// skips such directions; Confidence and Lift return it directly.
var ErrZeroDenominator = errors.New("zero denominator")

// ThresholdRangeError reports a threshold outside [0, 100].
type ThresholdRangeError struct {
	Name  string
	Value float64
}

func (e *ThresholdRangeError) Error() string {
	return fmt.Sprintf("%s threshold %v out of range [0, 100]", e.Name, e.Value)
}

// Validate rejects thresholds outside [0, 100], including NaN. Values are
// never clamped.
func (th Thresholds) Validate() error {
	if !inPercentRange(th.Support) {
		return &ThresholdRangeError{Name: "support", Value: th.Support}
	}
	if !inPercentRange(th.Confidence) {
		return &ThresholdRangeError{Name: "confidence", Value: th.Confidence}
	}
	return nil
}

func inPercentRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}
