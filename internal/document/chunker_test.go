package document

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitText_InvalidParameters(t *testing.T) {
	_, err := SplitText("some text", 0, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = SplitText("some text", -5, 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = SplitText("some text", 100, 100)
	assert.ErrorIs(t, err, ErrOverlapTooLarge)

	_, err = SplitText("some text", 100, 150)
	assert.ErrorIs(t, err, ErrOverlapTooLarge)

	_, err = SplitText("some text", 100, -1)
	assert.ErrorIs(t, err, ErrOverlapTooLarge)
}

func TestSplitText_ShortTextSingleChunk(t *testing.T) {
	chunks, err := SplitText("short policy text", 500, 50)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short policy text", chunks[0])
}

func TestSplitText_EmptyText(t *testing.T) {
	chunks, err := SplitText("", 500, 50)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = SplitText("   \n\t  ", 500, 50)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitText_DefaultWindowOn1200Chars(t *testing.T) {
	text := strings.Repeat("a", 1200)

	chunks, err := SplitText(text, 500, 50)
	require.NoError(t, err)

	// Window starts: 0, 450, 900; 1350 >= 1200 stops iteration.
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 300)
}

func TestSplitText_OverlapSharedBetweenChunks(t *testing.T) {
	text := strings.Repeat("abcdefghij", 20) // 200 chars

	chunks, err := SplitText(text, 100, 20)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	// The tail of each chunk reappears at the head of the next one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		assert.True(t, strings.HasPrefix(chunks[i], prev[len(prev)-20:]))
	}
}

func TestSplitText_RoundTrip(t *testing.T) {
	// When the step divides the text length evenly, dropping the known
	// overlap from every chunk after the first recovers the original.
	text := strings.Repeat("x1y2z3", 150) // 900 chars, step 450

	chunks, err := SplitText(text, 500, 50)
	require.NoError(t, err)

	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		sb.WriteString(chunk[50:])
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitText_MultiByteRuneBoundaries(t *testing.T) {
	// Swedish text is full of two-byte runes; the window must never cut
	// one in half.
	text := strings.Repeat("ä", 300)

	chunks, err := SplitText(text, 499, 0)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.True(t, utf8.ValidString(chunks[0]))
	assert.Equal(t, text, chunks[0])

	chunks, err = SplitText(text, 100, 10)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	total := 0
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d", i)
		total += utf8.RuneCountInString(chunk)
	}
	// Window starts 0, 90, 180, 270: 100+100+100+30 runes.
	assert.Equal(t, 330, total)
	assert.Equal(t, 30, utf8.RuneCountInString(chunks[3]))
}

func TestSplitText_SwedishRoundTrip(t *testing.T) {
	text := strings.Repeat("semesterår på kontoret i Växjö ", 30)

	chunks, err := SplitText(text, 120, 20)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(chunks), 2)

	var sb strings.Builder
	sb.WriteString(chunks[0])
	for _, chunk := range chunks[1:] {
		runes := []rune(chunk)
		sb.WriteString(string(runes[20:]))
	}
	assert.Equal(t, text, sb.String())
}

func TestSplitText_AllChunksNonEmpty(t *testing.T) {
	text := "policy  " + strings.Repeat(" ", 600) + "  more policy"

	chunks, err := SplitText(text, 100, 10)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}
