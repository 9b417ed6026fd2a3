package reference

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/verte-zerg/cryptology/internal/alphabet"
)

// WriteUnigrams writes t in the 26-line unigram format.
func WriteUnigrams(w io.Writer, t *UnigramTable) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < alphabet.Size; i++ {
		if _, err := fmt.Fprintln(bw, strconv.FormatFloat(t.Prob(i), 'f', 8, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteBigrams writes the pairs present in t as "XY value" lines in alphabetical order.
func WriteBigrams(w io.Writer, t *BigramTable) error {
	bw := bufio.NewWriter(w)
	for a := 0; a < alphabet.Size; a++ {
		for b := 0; b < alphabet.Size; b++ {
			if !t.Has(a, b) {
				continue
			}
			key := string([]byte{alphabet.Upper(a), alphabet.Upper(b)})
			if _, err := fmt.Fprintf(bw, "%s %s\n", key, strconv.FormatFloat(t.Score(a, b), 'f', 6, 64)); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
