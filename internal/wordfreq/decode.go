package wordfreq

import (
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// cbHeader is the first element of a wordfreq "cBpack" file.
type cbHeader struct {
	Format  string `msgpack:"format"`
	Version int    `msgpack:"version"`
}

// scoredBucket is a bucket that carries its own Zipf value instead of relying
// on its position.
type scoredBucket struct {
	Zipf  float64
	Words []string
}

// zipfFromBucket converts a cBpack bucket index into a Zipf value. Bucket i
// holds words with a frequency of -i centibels.
func zipfFromBucket(i int) float64 {
	return 9 - float64(i)/100
}

func decodeDataFile(name string, r io.Reader) ([]Entry, error) {
	if strings.HasSuffix(name, ".gz") {
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer func() {
			_ = gr.Close()
		}()
		r = gr
	}
	return decodeEntries(r)
}

// decodeEntries reads a msgpack array of word buckets. The first element may
// be a cBpack header; each following element is either a list of words, in
// which case its position gives the frequency, or a [zipf, words] pair.
func decodeEntries(r io.Reader) ([]Entry, error) {
	dec := msgpack.NewDecoder(r)
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wordfreq data: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("wordfreq data contained no entries")
	}

	var entries []Entry
	bucket := 0
	for i := 0; i < n; i++ {
		raw, err := dec.DecodeRaw()
		if err != nil {
			return nil, fmt.Errorf("failed to decode bucket %d: %w", i, err)
		}
		if i == 0 {
			var header cbHeader
			if err := msgpack.Unmarshal(raw, &header); err == nil && header.Format != "" {
				if header.Format != "cB" {
					return nil, fmt.Errorf("unsupported wordfreq format %q", header.Format)
				}
				continue
			}
		}

		var words []string
		if err := msgpack.Unmarshal(raw, &words); err == nil {
			zipf := zipfFromBucket(bucket)
			bucket++
			for _, w := range words {
				entries = append(entries, Entry{Word: w, Zipf: zipf})
			}
			continue
		}

		sb, err := decodeScoredBucket(raw)
		if err != nil {
			return nil, fmt.Errorf("unsupported bucket %d: %w", i, err)
		}
		for _, w := range sb.Words {
			entries = append(entries, Entry{Word: w, Zipf: sb.Zipf})
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("wordfreq data contained no entries")
	}
	return entries, nil
}

func decodeScoredBucket(raw msgpack.RawMessage) (scoredBucket, error) {
	var parts []msgpack.RawMessage
	if err := msgpack.Unmarshal(raw, &parts); err != nil {
		return scoredBucket{}, err
	}
	if len(parts) != 2 {
		return scoredBucket{}, fmt.Errorf("expected [zipf, words], got %d elements", len(parts))
	}
	var sb scoredBucket
	if err := msgpack.Unmarshal(parts[0], &sb.Zipf); err != nil {
		return scoredBucket{}, err
	}
	if err := msgpack.Unmarshal(parts[1], &sb.Words); err != nil {
		return scoredBucket{}, err
	}
	return sb, nil
}
