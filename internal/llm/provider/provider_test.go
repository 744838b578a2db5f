package provider

import (
	"errors"
	"testing"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/remote"
)

func TestNew(t *testing.T) {
	got, err := New(common.AIConfig{}, nil)
	if err != nil || got != nil {
		t.Fatalf("New(disabled) = %v, %v; want nil, nil", got, err)
	}

	got, err = New(common.AIConfig{Provider: "openai", APIKey: "sk-test"}, nil)
	if _, ok := got.(*openai.Client); err != nil || !ok {
		t.Errorf("New(openai) = %T, %v", got, err)
	}

	got, err = New(common.AIConfig{Provider: "remote", BaseURL: "http://ai:9000"}, nil)
	if _, ok := got.(*remote.Client); err != nil || !ok {
		t.Errorf("New(remote) = %T, %v", got, err)
	}

	if _, err = New(common.AIConfig{Provider: "bard"}, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("New(unknown) error = %v, want ErrInvalidInput", err)
	}
}
