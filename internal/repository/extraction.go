package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const (
	extractionsTable = "extractions"

	colID            = "id"
	colSource        = "source"
	colRoute         = "route"
	colItemCount     = "item_count"
	colHasRequisites = "has_requisites"
	colResult        = "result_json"
	colCreatedAt     = "created_at"

	defaultListLimit = 50
	maxListLimit     = 500
)

var extractionColumns = []string{colID, colSource, colRoute, colItemCount, colHasRequisites, colResult, colCreatedAt}

type ExtractionRepository interface {
	Save(ctx context.Context, source string, res entity.ExtractionResult) (*entity.ExtractionRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionRecord, error)
	List(ctx context.Context, limit int) ([]*entity.ExtractionRecord, error)
}

type extractionRepo struct {
	store *Store
	log   *slog.Logger
	now   func() time.Time
}

func NewExtractionRepository(store *Store, log *slog.Logger) ExtractionRepository {
	if log == nil {
		log = slog.Default()
	}
	return &extractionRepo{store: store, log: log, now: time.Now}
}

func (r *extractionRepo) Save(ctx context.Context, source string, res entity.ExtractionResult) (*entity.ExtractionRecord, error) {
	start := time.Now()
	if res.Items == nil {
		res.Items = []entity.LineItem{}
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	rec := &entity.ExtractionRecord{
		ID:            uuid.New(),
		Source:        source,
		Route:         res.Route,
		ItemCount:     len(res.Items),
		HasRequisites: res.BankInfo != nil && res.BankInfo.HasRequisites(),
		Result:        res,
		CreatedAt:     r.now().UTC().Truncate(time.Microsecond),
	}

	query, args := entsql.Dialect(r.store.dialect).
		Insert(extractionsTable).
		Columns(extractionColumns...).
		Values(rec.ID.String(), rec.Source, string(rec.Route), rec.ItemCount, rec.HasRequisites, string(payload), rec.CreatedAt).
		Query()
	if err := r.store.drv.Exec(ctx, query, args, nil); err != nil {
		r.log.Error("repo.save.failed", "source", source, "error", err)
		return nil, fmt.Errorf("%w: insert extraction: %v", common.ErrDatabase, err)
	}
	r.log.Info("repo.save.ok",
		"id", rec.ID,
		"source", source,
		"items", rec.ItemCount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ExtractionRecord, error) {
	b := entsql.Dialect(r.store.dialect)
	query, args := b.Select(extractionColumns...).
		From(b.Table(extractionsTable)).
		Where(entsql.EQ(colID, id.String())).
		Query()

	recs, err := r.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, common.NewAppError("NOT_FOUND", fmt.Sprintf("extraction %s not found", id), common.ErrNotFound)
	}
	return recs[0], nil
}

// List returns the newest extractions first. A non-positive limit takes the
// default page size.
func (r *extractionRepo) List(ctx context.Context, limit int) ([]*entity.ExtractionRecord, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	b := entsql.Dialect(r.store.dialect)
	query, args := b.Select(extractionColumns...).
		From(b.Table(extractionsTable)).
		OrderBy(entsql.Desc(colCreatedAt), entsql.Desc(colID)).
		Limit(limit).
		Query()
	return r.query(ctx, query, args)
}

func (r *extractionRepo) query(ctx context.Context, query string, args []any) ([]*entity.ExtractionRecord, error) {
	rows := &entsql.Rows{}
	if err := r.store.drv.Query(ctx, query, args, rows); err != nil {
		r.log.Error("repo.query.failed", "error", err)
		return nil, fmt.Errorf("%w: query extractions: %v", common.ErrDatabase, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.log.Warn("repo.rows.close_failed", "error", err)
		}
	}()

	var out []*entity.ExtractionRecord
	for rows.Next() {
		rec, err := scanExtraction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate extractions: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func scanExtraction(rows *entsql.Rows) (*entity.ExtractionRecord, error) {
	var (
		id, source, route, payload string
		itemCount                  int
		hasRequisites              bool
		createdAt                  any
	)
	if err := rows.Scan(&id, &source, &route, &itemCount, &hasRequisites, &payload, &createdAt); err != nil {
		return nil, fmt.Errorf("%w: scan extraction: %v", common.ErrDatabase, err)
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id %q: %v", common.ErrDatabase, id, err)
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: created_at: %v", common.ErrDatabase, err)
	}
	rec := &entity.ExtractionRecord{
		ID:            uid,
		Source:        source,
		Route:         entity.Route(route),
		ItemCount:     itemCount,
		HasRequisites: hasRequisites,
		CreatedAt:     ts,
	}
	if err := json.Unmarshal([]byte(payload), &rec.Result); err != nil {
		return nil, fmt.Errorf("%w: decode result: %v", common.ErrDatabase, err)
	}
	return rec, nil
}

// timestampLayouts covers what the SQLite driver writes for time.Time values.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case []byte:
		return parseTimestamp(string(t))
	case string:
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", t)
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case nil:
		return time.Time{}, errors.New("null timestamp")
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
}
