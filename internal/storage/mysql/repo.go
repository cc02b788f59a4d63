package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"tabito/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

// nullable empty strings: external ids are absent more often than present.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Insert(ctx context.Context, e domain.Experience) (int64, error) {
	general, _ := json.Marshal(e.GeneralTags)
	budget, _ := json.Marshal(e.BudgetTags)
	category, _ := json.Marshal(e.CategoryTagValues())

	res, err := r.db.ExecContext(ctx, insertExperienceSQL,
		e.Title,
		e.Caption,
		e.Slug,
		string(e.Category),
		e.Region,
		e.Prefecture,
		e.Price,
		valF64(e.Lat),
		valF64(e.Lon),
		valStr(e.Phone),
		valStr(e.Website),
		valStr(e.Address),
		e.Schedule,
		e.Rating,
		e.ReviewCount,
		e.Approved,
		string(general),
		string(budget),
		string(category),
		nullIfEmpty(e.ExternalIDs.PlaceID),
		nullIfEmpty(e.ExternalIDs.OSMID),
		valStr(e.ImageURL),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FindOne answers the dedupe lookup: a single query ORing every predicate,
// returning the first structural match or nil.
func (r *Repo) FindOne(ctx context.Context, preds []domain.Predicate) (*domain.CatalogRecord, error) {
	if len(preds) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds)*3)
	for _, p := range preds {
		switch p.Kind {
		case domain.MatchPlaceID:
			clauses = append(clauses, "place_id = ?")
			args = append(args, p.Value)
		case domain.MatchOSMID:
			clauses = append(clauses, "osm_id = ?")
			args = append(args, p.Value)
		case domain.MatchTitle:
			clauses = append(clauses, "(title = ? AND prefecture = ? AND category = ?)")
			args = append(args, p.Value, p.Prefecture, string(p.Category))
		default:
			return nil, fmt.Errorf("unknown predicate kind %d", p.Kind)
		}
	}

	q := selectExperienceCols + "WHERE " + strings.Join(clauses, " OR ") + " LIMIT 1"
	row := r.db.QueryRowContext(ctx, q, args...)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) Count(ctx context.Context, pred domain.Predicate) (int64, error) {
	var n int64
	var err error
	if pred.Kind == domain.MatchTitle && pred.Value == "" {
		err = r.db.QueryRowContext(ctx, countByCategorySQL, string(pred.Category)).Scan(&n)
	} else if pred.Kind == domain.MatchTitle {
		err = r.db.QueryRowContext(ctx, countByTitleSQL, pred.Value, pred.Prefecture, string(pred.Category)).Scan(&n)
	} else {
		col := "place_id"
		if pred.Kind == domain.MatchOSMID {
			col = "osm_id"
		}
		err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM experiences WHERE "+col+" = ?", pred.Value).Scan(&n)
	}
	return n, err
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.CatalogRecord, error) {
	row := r.db.QueryRowContext(ctx, getExperienceSQL, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return domain.CatalogRecord{}, domain.ErrNotFound
	}
	return rec, err
}

func (r *Repo) List(ctx context.Context, q domain.ListQuery) ([]domain.CatalogRecord, error) {
	var clauses []string
	var args []any
	if q.Prefecture != "" {
		clauses = append(clauses, "prefecture = ?")
		args = append(args, q.Prefecture)
	}
	if q.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, string(q.Category))
	}
	sqlStr := selectExperienceCols
	if len(clauses) > 0 {
		sqlStr += "WHERE " + strings.Join(clauses, " AND ") + " "
	}
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sqlStr += "ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CatalogRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(row rowScanner) (domain.CatalogRecord, error) {
	var rec domain.CatalogRecord
	var lat, lon sql.NullFloat64
	var placeID, osmID sql.NullString
	var category string

	if err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Slug,
		&category,
		&rec.Region,
		&rec.Prefecture,
		&rec.Price,
		&lat, &lon,
		&rec.Rating,
		&rec.ReviewCount,
		&rec.Approved,
		&placeID, &osmID,
	); err != nil {
		return domain.CatalogRecord{}, err
	}

	rec.Category = domain.Category(category)
	if lat.Valid {
		v := lat.Float64
		rec.Lat = &v
	}
	if lon.Valid {
		v := lon.Float64
		rec.Lon = &v
	}
	if placeID.Valid {
		rec.ExternalIDs.PlaceID = placeID.String
	}
	if osmID.Valid {
		rec.ExternalIDs.OSMID = osmID.String
	}
	return rec, nil
}
