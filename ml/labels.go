package ml

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// StressLabel is the closed set of detector outputs. The numeric value is the
// class id emitted by the classifier.
type StressLabel int

const (
	Anxious StressLabel = iota
	Calm
	Relaxed
	Tense
)

var ErrUnknownClass = errors.New("unknown stress class")

var labelNames = [...]string{
	Anxious: "Anxious",
	Calm:    "Calm",
	Relaxed: "Relaxed",
	Tense:   "Tense",
}

var labelColors = [...]string{
	Anxious: "#e74c3c",
	Calm:    "#2ecc71",
	Relaxed: "#3498db",
	Tense:   "#f39c12",
}

// Labels lists every label in class id order.
func Labels() []StressLabel {
	return []StressLabel{Anxious, Calm, Relaxed, Tense}
}

// LabelForClass maps a classifier output to its label. Ids outside the table
// are an error.
func LabelForClass(id int) (StressLabel, error) {
	if id < 0 || id >= len(labelNames) {
		return 0, fmt.Errorf("%w: class id %d", ErrUnknownClass, id)
	}
	return StressLabel(id), nil
}

// ParseStressLabel accepts a label name (case-insensitive) or a class id.
func ParseStressLabel(s string) (StressLabel, error) {
	s = strings.TrimSpace(s)
	for i, name := range labelNames {
		if strings.EqualFold(name, s) {
			return StressLabel(i), nil
		}
	}
	if id, err := strconv.Atoi(s); err == nil {
		return LabelForClass(id)
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

func (l StressLabel) Valid() bool {
	return l >= 0 && int(l) < len(labelNames)
}

func (l StressLabel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("StressLabel(%d)", int(l))
	}
	return labelNames[l]
}

// Color is the hex display color shared by every presentation path.
func (l StressLabel) Color() string {
	if !l.Valid() {
		return ""
	}
	return labelColors[l]
}

func (l StressLabel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: class id %d", ErrUnknownClass, int(l))
	}
	return []byte(labelNames[l]), nil
}

func (l *StressLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseStressLabel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
