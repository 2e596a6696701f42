package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeWords(t *testing.T) {
	toks := Tokenize("ls -la /tmp")
	want := []Token{
		{Text: "ls", Kind: Normal},
		{Text: "-la", Kind: Normal},
		{Text: "/tmp", Kind: Normal},
	}
	assert.Equal(t, want, toks)
}

func TestTokenizeQuotedSpan(t *testing.T) {
	toks := Tokenize(`echo "hello world"`)
	assert.Equal(t, []Token{
		{Text: "echo", Kind: Normal},
		{Text: "hello world", Kind: Normal},
	}, toks)
}

func TestTokenizeRedirections(t *testing.T) {
	toks := Tokenize("sort < in.txt > out.txt")
	assert.Equal(t, []Token{
		{Text: "sort", Kind: Normal},
		{Text: "<", Kind: Redir},
		{Text: "in.txt", Kind: Normal},
		{Text: ">", Kind: Redir},
		{Text: "out.txt", Kind: Normal},
	}, toks)
}

func TestTokenizeAppendRedirection(t *testing.T) {
	toks := Tokenize("echo hi >> log.txt")
	assert.Equal(t, []Token{
		{Text: "echo", Kind: Normal},
		{Text: "hi", Kind: Normal},
		{Text: ">>", Kind: Redir},
		{Text: "log.txt", Kind: Normal},
	}, toks)
}

func TestTokenizeRedirectionAbuttingWord(t *testing.T) {
	toks := Tokenize("cat<in.txt")
	assert.Equal(t, []Token{
		{Text: "cat", Kind: Normal},
		{Text: "<", Kind: Redir},
		{Text: "in.txt", Kind: Normal},
	}, toks)
}

func TestTokenizeEmptySegment(t *testing.T) {
	assert.Empty(t, Tokenize("   "))
}
