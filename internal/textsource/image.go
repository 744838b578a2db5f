package textsource

import (
	"context"
	"fmt"
	"strings"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (Result, error) {
	txt, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{Method: "image-ocr"}, err
	}
	return Result{Text: Normalize(txt), Pages: 1, Method: "image-ocr"}, nil
}

// tesseract runs `tesseract <file> stdout -l <lang>` and strips ruler lines.
func (e *Extractor) tesseract(ctx context.Context, path string) (string, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, path, "stdout", "-l", e.cfg.TesseractLang)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}
