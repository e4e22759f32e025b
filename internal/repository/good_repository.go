package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"strings"

	"github.com/clothica/backend/internal/model"
)

// GoodFilter carries the catalog filter parameters. Every provided filter
// narrows the result conjunctively.
type GoodFilter struct {
	CategoryID   uint64
	Search       string
	Gender       string
	PriceFrom    float64
	PriceTo      float64
	HasPrice     bool
	Color        string
	Sizes        []string
	Page         int
	PerPage      int
	SortByRating bool
}

// GoodPage is one page of catalog results plus the total over the unpaged
// filtered set.
type GoodPage struct {
	Goods      []model.Good
	TotalGoods int64
	TotalPages int64
}

// GoodRepo implements catalog queries: dynamic filtering, weighted text
// search, feedback aggregation and pagination.
type GoodRepo struct{ DB *sql.DB }

func NewGoodRepo(db *sql.DB) *GoodRepo { return &GoodRepo{DB: db} }

// Search matches across name, preview description and long description.
const searchPredicate = "(MATCH(g.name) AGAINST (?) OR MATCH(g.prev_description) AGAINST (?) OR MATCH(g.description) AGAINST (?))"

// starsExpr is the SQL twin of Stars: rating average rounded to the nearest
// half step. Sorting happens in SQL, projection in Go, both with the same
// rule.
const starsExpr = "ROUND(COALESCE(fb.avg_rate,0)*2)/2"

// Stars converts a feedback count/average into the derived rating: 0 without
// feedback, otherwise the mean rounded to the nearest 0.5.
func Stars(count int, avg float64) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(avg*2) / 2
}

// buildGoodsWhere translates a filter into a WHERE condition and its args.
// Only predicates over the goods table appear here so the count query can
// skip the joins.
func buildGoodsWhere(f GoodFilter) (string, []any) {
	where := []string{}
	args := []any{}

	if f.CategoryID != 0 {
		where = append(where, "g.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Gender != "" {
		where = append(where, "g.gender = ?")
		args = append(args, f.Gender)
	}
	if f.Color != "" {
		where = append(where, "FIND_IN_SET(?, g.colors) > 0")
		args = append(args, f.Color)
	}
	if len(f.Sizes) > 0 {
		any := make([]string, 0, len(f.Sizes))
		for _, s := range f.Sizes {
			any = append(any, "FIND_IN_SET(?, g.sizes) > 0")
			args = append(args, s)
		}
		where = append(where, "("+strings.Join(any, " OR ")+")")
	}
	if f.HasPrice {
		where = append(where, "g.price_value BETWEEN ? AND ?")
		args = append(args, f.PriceFrom, f.PriceTo)
	}
	if f.Search != "" {
		where = append(where, searchPredicate)
		args = append(args, f.Search, f.Search, f.Search)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// orderClause picks the sort order: rating sort when requested, newest-first
// otherwise. Searching narrows the set but does not change the order.
func orderClause(f GoodFilter) string {
	if f.SortByRating {
		return "ORDER BY " + starsExpr + " DESC, COALESCE(fb.cnt,0) DESC, g.id ASC"
	}
	return "ORDER BY g.id DESC"
}

const goodSelect = `SELECT
		g.id, g.name, g.image,
		c.id AS category_id, c.name AS category_name,
		g.prev_description, g.description, g.colors, g.sizes, g.gender,
		g.price_value, g.price_currency, g.characteristics,
		COALESCE(fb.cnt, 0)      AS feedbacks_count,
		COALESCE(fb.avg_rate, 0) AS avg_rate
	FROM goods g
	JOIN categories c ON c.id = g.category_id
	LEFT JOIN (
		SELECT good_id, COUNT(*) AS cnt, AVG(rate) AS avg_rate
		FROM feedbacks GROUP BY good_id
	) fb ON fb.good_id = g.id`

// List returns one page of the filtered catalog and the total count over the
// same filtered set. The count is computed independently of the paginated
// fetch, concurrently, since the two reads do not depend on each other.
func (r *GoodRepo) List(ctx context.Context, f GoodFilter) (GoodPage, error) {
	cond, args := buildGoodsWhere(f)

	type countResult struct {
		total int64
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		var total int64
		err := r.DB.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM goods g WHERE "+cond, args...).Scan(&total)
		countCh <- countResult{total, err}
	}()

	dataSQL := goodSelect + "\n\tWHERE " + cond + "\n\t" + orderClause(f) + "\n\tLIMIT ? OFFSET ?"
	dataArgs := append(append([]any{}, args...), f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.DB.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return GoodPage{}, err
	}
	defer rows.Close()

	goods := make([]model.Good, 0, f.PerPage)
	for rows.Next() {
		g, err := scanGood(rows)
		if err != nil {
			return GoodPage{}, err
		}
		goods = append(goods, g)
	}
	if err := rows.Err(); err != nil {
		return GoodPage{}, err
	}

	cr := <-countCh
	if cr.err != nil {
		return GoodPage{}, cr.err
	}
	totalPages := (cr.total + int64(f.PerPage) - 1) / int64(f.PerPage)
	return GoodPage{Goods: goods, TotalGoods: cr.total, TotalPages: totalPages}, nil
}

// GetByID fetches a single good with the same category join and star
// computation as List, plus its full feedback list. Returns ErrNotFound when
// no record matches.
func (r *GoodRepo) GetByID(ctx context.Context, id uint64) (model.Good, error) {
	rows, err := r.DB.QueryContext(ctx, goodSelect+"\n\tWHERE g.id = ?", id)
	if err != nil {
		return model.Good{}, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return model.Good{}, err
		}
		return model.Good{}, ErrNotFound
	}
	g, err := scanGood(rows)
	if err != nil {
		return model.Good{}, err
	}
	rows.Close()

	fbRows, err := r.DB.QueryContext(ctx,
		"SELECT f.id, f.author, f.date, f.description, f.rate FROM feedbacks f WHERE f.good_id=? ORDER BY f.id", id)
	if err != nil {
		return model.Good{}, err
	}
	defer fbRows.Close()
	for fbRows.Next() {
		var fb model.Feedback
		if err := fbRows.Scan(&fb.ID, &fb.Author, &fb.Date, &fb.Description, &fb.Rate); err != nil {
			return model.Good{}, err
		}
		fb.Good = model.FeedbackGood{ID: g.ID, Name: g.Name}
		g.Feedbacks = append(g.Feedbacks, fb)
	}
	if err := fbRows.Err(); err != nil {
		return model.Good{}, err
	}
	return g, nil
}

// UnitPrices resolves authoritative unit prices for a batch of good ids in
// one lookup. Unknown ids are simply absent from the result.
func (r *GoodRepo) UnitPrices(ctx context.Context, ids []uint64) (map[uint64]float64, error) {
	prices := make(map[uint64]float64, len(ids))
	if len(ids) == 0 {
		return prices, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = "?"
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, price_value FROM goods WHERE id IN ("+strings.Join(ph, ",")+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id    uint64
			price float64
		)
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func scanGood(rows *sql.Rows) (model.Good, error) {
	var (
		g               model.Good
		colors, sizes   string
		characteristics sql.NullString
		cnt             int
		avg             float64
	)
	err := rows.Scan(&g.ID, &g.Name, &g.Image,
		&g.Category.ID, &g.Category.Name,
		&g.PrevDescription, &g.Description, &colors, &sizes, &g.Gender,
		&g.Price.Value, &g.Price.Currency, &characteristics, &cnt, &avg)
	if err != nil {
		return model.Good{}, err
	}
	g.Colors = splitSet(colors)
	g.Sizes = splitSet(sizes)
	if characteristics.Valid && characteristics.String != "" {
		if err := json.Unmarshal([]byte(characteristics.String), &g.Characteristics); err != nil {
			return model.Good{}, err
		}
	}
	g.FeedbacksCount = cnt
	g.Stars = Stars(cnt, avg)
	return g, nil
}

func splitSet(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
