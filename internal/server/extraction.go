package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const maxListLimit = 500

var errNoStore = common.NewAppError("NOT_CONFIGURED", "persistence is not configured", common.ErrNotConfigured)

// TextProcessor is satisfied by *pipeline.Processor.
type TextProcessor interface {
	ProcessText(ctx context.Context, source, text, docType string) (*entity.ExtractionRecord, error)
}

type ExtractionService struct {
	proc     TextProcessor
	repo     repository.ExtractionRepository // nil when persistence is off
	exporter *export.Service
	logger   *slog.Logger
}

func NewExtractionService(proc TextProcessor, repo repository.ExtractionRepository, exporter *export.Service, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{proc: proc, repo: repo, exporter: exporter, logger: logger}
}

func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start := time.Now()
	ctx, reqID := common.EnsureRequestID(ctx)
	text := stringField(req, "text")
	docType := strings.ToLower(strings.TrimSpace(stringField(req, "document_type")))
	source := strings.TrimSpace(stringField(req, "source"))
	if source == "" {
		source = "grpc"
	}

	v := common.NewValidator().
		Field("text", text, common.Required).
		Field("document_type", docType, common.OneOf(constants.DocumentTypes...))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.logger.Warn("grpc.extract.invalid", "req_id", reqID, "error", v.ErrorMessage())
		return nil, err
	}

	rec, err := s.proc.ProcessText(ctx, source, text, docType)
	if err != nil {
		s.logger.Error("grpc.extract.failed", "req_id", reqID, "error", err)
		return nil, common.ToStatus(err)
	}

	out, err := resultStruct(rec, s.repo != nil)
	if err != nil {
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	s.logger.Info("grpc.extract.ok",
		"req_id", reqID,
		"route", rec.Route,
		"items", rec.ItemCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (s *ExtractionService) GetExtraction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, common.ToStatus(errNoStore)
	}
	id := strings.TrimSpace(stringField(req, "id"))
	v := common.NewValidator().Field("id", id, common.Required, common.UUID)
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	rec, err := s.repo.GetByID(ctx, uuid.MustParse(id))
	if err != nil {
		s.logger.Warn("grpc.get.failed", "id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	out, err := recordStruct(rec)
	if err != nil {
		return nil, common.InternalErrorf("encode record: %v", err)
	}
	return out, nil
}

func (s *ExtractionService) ListExtractions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, common.ToStatus(errNoStore)
	}
	limit, err := s.limit(req)
	if err != nil {
		return nil, err
	}

	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("grpc.list.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	list := make([]any, 0, len(recs))
	for _, rec := range recs {
		m, err := toMap(rec)
		if err != nil {
			return nil, common.InternalErrorf("encode record: %v", err)
		}
		list = append(list, m)
	}
	out, err := structpb.NewStruct(map[string]any{"extractions": list})
	if err != nil {
		return nil, common.InternalErrorf("encode list: %v", err)
	}
	s.logger.Info("grpc.list.ok", "count", len(recs))
	return out, nil
}

// ExportExtractions returns the newest stored extractions as a base64
// encoded XLSX workbook.
func (s *ExtractionService) ExportExtractions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil || s.exporter == nil {
		return nil, common.ToStatus(errNoStore)
	}
	limit, err := s.limit(req)
	if err != nil {
		return nil, err
	}
	data, err := s.exporter.ExportRecentXLSX(ctx, limit)
	if err != nil {
		s.logger.Error("grpc.export.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return structpb.NewStruct(map[string]any{
		"filename":    exportFilename(time.Now()),
		"xlsx_base64": base64.StdEncoding.EncodeToString(data),
	})
}

func exportFilename(at time.Time) string {
	return "extractions-" + at.UTC().Format("20060102-150405") + ".xlsx"
}

func (s *ExtractionService) limit(req *structpb.Struct) (int, error) {
	limit := 0
	if v, ok := req.GetFields()["limit"]; ok {
		n := v.GetNumberValue()
		if n != float64(int(n)) {
			return 0, common.InvalidArgumentErrorf("limit must be an integer, got %v", n)
		}
		limit = int(n)
	}
	v := common.NewValidator().Field("limit", limit, common.IntRange(0, maxListLimit))
	if err := common.ValidateAndReturnError(v); err != nil {
		return 0, err
	}
	return limit, nil
}

func stringField(req *structpb.Struct, key string) string {
	return req.GetFields()[key].GetStringValue()
}

// resultStruct renders the extraction result; the record id is included only
// when the record was persisted.
func resultStruct(rec *entity.ExtractionRecord, persisted bool) (*structpb.Struct, error) {
	m, err := toMap(rec.Result)
	if err != nil {
		return nil, err
	}
	if persisted {
		m["id"] = rec.ID.String()
	}
	return structpb.NewStruct(m)
}

func recordStruct(rec *entity.ExtractionRecord) (*structpb.Struct, error) {
	m, err := toMap(rec)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

// toMap goes through JSON so the wire shape matches the entity JSON tags.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return m, nil
}
