package recognizer

import (
	"fmt"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// DecodeCTC performs greedy CTC decoding of a [seqLen, classes] probability map.
//
// At each step the most probable class is taken; repeats are collapsed and
// blanks dropped. The score is the mean probability of the emitted classes.
//
// Arguments:
//   - output: Row-major model output, at least seqLen*len(charset) floats.
//   - seqLen: Number of time steps.
//   - charset: Class table, blank at index 0.
//
// Returns:
//   - string: The decoded text.
//   - float32: The mean score, zero when nothing was emitted.
//   - error: An error if the output does not match the charset.
func DecodeCTC(output []float32, seqLen int, charset Charset) (string, float32, error) {
	numClasses := charset.Len()
	if seqLen <= 0 || numClasses < 2 {
		return "", 0, fmt.Errorf("invalid CTC geometry: seqLen=%d classes=%d", seqLen, numClasses)
	}
	if len(output) < seqLen*numClasses {
		return "", 0, fmt.Errorf("output holds %d floats, needs %d", len(output), seqLen*numClasses)
	}

	probs := tensor.New(
		tensor.WithShape(seqLen, numClasses),
		tensor.WithBacking(output[:seqLen*numClasses]),
	)

	argmax, err := probs.Argmax(1)
	if err != nil {
		return "", 0, fmt.Errorf("argmax over classes: %w", err)
	}
	maxima, err := probs.Max(1)
	if err != nil {
		return "", 0, fmt.Errorf("max over classes: %w", err)
	}

	indices := asInts(argmax.Data())
	values := asFloat32s(maxima.Data())
	if len(indices) != seqLen || len(values) != seqLen {
		return "", 0, fmt.Errorf("unexpected reduction length %d/%d", len(indices), len(values))
	}

	var (
		text  []byte
		score float32
		count int
		last  = -1
	)
	for n, idx := range indices {
		if idx > 0 && idx != last {
			text = append(text, charset[idx]...)
			score += values[n]
			count++
		}
		last = idx
	}

	if count == 0 {
		return "", 0, nil
	}
	score /= float32(count)
	if math32.IsNaN(score) {
		score = 0
	}
	return string(text), score, nil
}

func asInts(v interface{}) []int {
	switch x := v.(type) {
	case []int:
		return x
	case int:
		return []int{x}
	}
	return nil
}

func asFloat32s(v interface{}) []float32 {
	switch x := v.(type) {
	case []float32:
		return x
	case float32:
		return []float32{x}
	}
	return nil
}
