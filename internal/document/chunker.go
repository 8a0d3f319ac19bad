package document

import "strings"

// SplitText splits text into overlapping chunks of at most size characters.
//
// A sliding window advances by size-overlap characters per step, so adjacent
// chunks share overlap characters of context. Chunks that are empty after
// trimming are skipped. Iteration stops once the window start reaches the end
// of the text, which the overlap bound guarantees.
func SplitText(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}
	if overlap < 0 || overlap >= size {
		return nil, ErrOverlapTooLarge
	}

	// Window over runes, not bytes: slicing the raw string would split
	// multi-byte characters (å, ä, ö) at chunk boundaries.
	runes := []rune(text)

	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}

		chunk := string(runes[start:end])
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks, nil
}
