package catalog

import (
	"errors"
	"fmt"
	"math"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// ApplyRating folds a single vote into a running mean. The new mean is
// rounded to one decimal place.
func ApplyRating(mean float64, count int, value int) (float64, int, error) {
	if value < MinRating || value > MaxRating {
		return mean, count, fmt.Errorf("%w: got %d", ErrInvalidRating, value)
	}
	if count < 0 {
		count = 0
	}
	total := mean*float64(count) + float64(value)
	newCount := count + 1
	return math.Round(total/float64(newCount)*10) / 10, newCount, nil
}

// Rate applies a vote to the location in place.
func (l *Location) Rate(value int) error {
	mean, count, err := ApplyRating(l.Rating, l.RatingsCount, value)
	if err != nil {
		return err
	}
	l.Rating = mean
	l.RatingsCount = count
	return nil
}
