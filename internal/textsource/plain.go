package textsource

import (
	"fmt"
	"os"
	"unicode/utf8"
)

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Method: "plain-text"}, fmt.Errorf("read text: %w", err)
	}
	var warns []string
	if !utf8.Valid(b) {
		warns = append(warns, "invalid utf-8 sequences replaced")
	}
	return Result{Text: Normalize(string(b)), Pages: 1, Method: "plain-text", Warnings: warns}, nil
}
