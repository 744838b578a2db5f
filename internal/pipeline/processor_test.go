package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProcessor(repo repository.ExtractionRepository) *Processor {
	return NewProcessor(
		textsource.NewExtractor(textsource.Config{}, nil),
		extraction.NewEngine(nil, extraction.Config{}, nil),
		repo,
		nil,
	)
}

func TestProcessFileWithoutRepository(t *testing.T) {
	path := writeFile(t, "invoice.txt", "Монитор | 2 | 15000.00 | 30000.00\r\nИтого: 30000 руб\r\n")

	rec, err := newProcessor(nil).ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	want := []entity.LineItem{{Name: "Монитор", Quantity: 2, Price: 15000, Total: 30000, Code: "ITEM-1", Unit: "pcs"}}
	if diff := cmp.Diff(want, rec.Result.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if rec.Source != "invoice.txt" || rec.ItemCount != 1 || rec.Route != entity.RouteFreeform {
		t.Errorf("record = %+v", rec)
	}
}

func TestProcessFilePersists(t *testing.T) {
	ctx := context.Background()
	store, err := repository.Open(ctx, common.DatabaseConfig{DSN: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	repo := repository.NewExtractionRepository(store, nil)

	path := writeFile(t, "requisites.txt", "SWIFT CODE: BKCHCNBJ92B\nUSD A/C NO.: 397475795838")
	rec, err := newProcessor(repo).ProcessFile(ctx, path)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	stored, err := repo.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !stored.HasRequisites || stored.Result.BankInfo.Swift != "BKCHCNBJ92B" {
		t.Errorf("stored record = %+v", stored)
	}
}

func TestProcessFileErrors(t *testing.T) {
	p := newProcessor(nil)
	if _, err := p.ProcessFile(context.Background(), "card.docx"); !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("ProcessFile(.docx) error = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("ProcessFile(missing) error = nil")
	}
}

func TestProcessTextRejectsCompanyCard(t *testing.T) {
	_, err := newProcessor(nil).ProcessText(context.Background(), "card", "ИНН 7701234567", "company_card")
	if !errors.Is(err, common.ErrUnsupportedDocumentType) {
		t.Errorf("ProcessText() error = %v, want ErrUnsupportedDocumentType", err)
	}
}
