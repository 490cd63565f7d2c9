package tetra

/*------------------------------------------------------------------
 *
 * Purpose:	Training sequences used to find burst boundaries.
 *
 * Description:	Every downlink burst carries a known bit sequence at a
 *		fixed offset from its start.  Which one tells us the burst
 *		type.  EN 300 392-2, 9.4.4.3.
 *
 *		normal training sequence 1 (n)	normal continuous downlink burst
 *		normal training sequence 2 (p)	split continuous downlink burst
 *		synchronisation sequence (y)	synchronisation continuous downlink burst
 *
 *		Burst layout (bits), normal:   q 12, ha 2, bkn1 216, bb 14, n/p 22, bb 16, bkn2 216, hb 2, q 10
 *		                     sync:     q 12, ha 2, fc 80, sb 120, y 38, bb 30, bkn2 216, hb 2, q 10
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type BurstType int

const (
	BurstUnknown BurstType = iota
	BurstNormal1
	BurstNormal2
	BurstSync
)

var burstTypeNames = map[BurstType]string{
	BurstUnknown: "unknown",
	BurstNormal1: "normal1",
	BurstNormal2: "normal2",
	BurstSync:    "sync",
}

func (b BurstType) String() string {
	if name, ok := burstTypeNames[b]; ok {
		return name
	}

	return fmt.Sprintf("burst(%d)", int(b))
}

func ParseBurstType(s string) (BurstType, error) {
	for b, name := range burstTypeNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}

	return BurstUnknown, fmt.Errorf("%w: unknown burst type %q", ErrInvalidConfig, s)
}

func (b BurstType) MarshalYAML() (any, error) {
	return b.String(), nil
}

func (b *BurstType) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	var parsed, err = ParseBurstType(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}

	*b = parsed

	return nil
}

// TrainingSequence is a known bit pattern found Offset bits after the start
// of a burst of type Burst.  Sequences marked Acquire are searched for while
// unlocked; all of them are accepted when checking an expected burst start.
type TrainingSequence struct {
	Name    string    `yaml:"name"`
	Burst   BurstType `yaml:"burst"`
	Offset  int       `yaml:"offset"`
	Pattern string    `yaml:"pattern"`
	Acquire bool      `yaml:"acquire"`
}

// Span is how far into the burst the sequence reaches.
func (ts *TrainingSequence) Span() int {
	return ts.Offset + len(ts.Pattern)
}

// Bits converts the pattern text, "0" and "1" characters, to one bit per byte.
func (ts *TrainingSequence) Bits() ([]byte, error) {
	var bits, err = parsePattern(ts.Pattern)
	if err != nil {
		return nil, fmt.Errorf("training sequence %q: %w", ts.Name, err)
	}

	return bits, nil
}

func parsePattern(s string) ([]byte, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidConfig)
	}

	var bits = make([]byte, len(s))
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("%w: pattern character %q at %d", ErrInvalidConfig, c, i)
		}
	}

	return bits, nil
}

func hammingDistance(a, b []byte) int {
	var d = 0
	for i := range b {
		if (a[i]^b[i])&1 != 0 {
			d++
		}
	}

	return d
}

/*
 * 9.4.4.3.2 Normal training sequences, 9.4.4.3.4 Synchronisation training sequence.
 */
const (
	normalTrainingSeq1 = "1101000011101001110100"
	normalTrainingSeq2 = "0111101001000011011110"
	syncTrainingSeq    = "11000001100111001110100111000001100111"

	normalTrainingOffset = 244
	syncTrainingOffset   = 214
)

func DefaultTrainingSequences() []TrainingSequence {
	return []TrainingSequence{
		{Name: "y", Burst: BurstSync, Offset: syncTrainingOffset, Pattern: syncTrainingSeq, Acquire: true},
		{Name: "n", Burst: BurstNormal1, Offset: normalTrainingOffset, Pattern: normalTrainingSeq1},
		{Name: "p", Burst: BurstNormal2, Offset: normalTrainingOffset, Pattern: normalTrainingSeq2},
	}
}
