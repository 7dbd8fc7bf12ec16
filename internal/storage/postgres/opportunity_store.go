package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/opportunity-discovery/internal/filter"
	"github.com/JakeFAU/opportunity-discovery/internal/opportunity"
)

const opportunityColumns = `id, title, description, organization, category, location, is_remote,
	compensation, requirements, skills, tags, application_url, deadline, source, external_id,
	estimated_hours, duration, posted_at, created_at, updated_at`

// OpportunityStore persists opportunities in the opportunities table.
type OpportunityStore struct {
	pool Pool
}

// NewOpportunityStore constructs a store over pool.
func NewOpportunityStore(pool Pool) (*OpportunityStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &OpportunityStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *OpportunityStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// FindByKey looks a record up by (source, external id).
func (s *OpportunityStore) FindByKey(ctx context.Context, key opportunity.Key) (opportunity.Opportunity, error) {
	if !key.Known() {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE source = $1 AND external_id = $2`,
		key.Source, key.ExternalID)
	opp, err := scanOpportunity(row)
	if err != nil {
		return opportunity.Opportunity{}, notFound(err, "find opportunity by key")
	}
	return opp, nil
}

// Get fetches a record by id.
func (s *OpportunityStore) Get(ctx context.Context, id string) (opportunity.Opportunity, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id)
	opp, err := scanOpportunity(row)
	if err != nil {
		return opportunity.Opportunity{}, notFound(err, "get opportunity")
	}
	return opp, nil
}

// Insert writes a new row.
func (s *OpportunityStore) Insert(ctx context.Context, opp opportunity.Opportunity) (opportunity.Opportunity, error) {
	if opp.ID == "" {
		return opportunity.Opportunity{}, fmt.Errorf("insert opportunity: id is required")
	}
	opp = opp.Normalized()
	query := `
INSERT INTO opportunities (` + opportunityColumns + `) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20
)`
	if _, err := s.pool.Exec(ctx, query, opportunityArgs(opp)...); err != nil {
		return opportunity.Opportunity{}, fmt.Errorf("insert opportunity: %w", err)
	}
	return opp, nil
}

// Update overwrites every column except id and created_at.
func (s *OpportunityStore) Update(ctx context.Context, opp opportunity.Opportunity) (opportunity.Opportunity, error) {
	opp = opp.Normalized()
	query := `
UPDATE opportunities SET
	title = $2, description = $3, organization = $4, category = $5, location = $6,
	is_remote = $7, compensation = $8, requirements = $9, skills = $10, tags = $11,
	application_url = $12, deadline = $13, source = $14, external_id = $15,
	estimated_hours = $16, duration = $17, posted_at = $18, updated_at = $19
WHERE id = $1`
	args := opportunityArgs(opp)
	args = append(args[:18], opp.UpdatedAt)
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return opportunity.Opportunity{}, fmt.Errorf("update opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return opportunity.Opportunity{}, opportunity.ErrNotFound
	}
	return opp, nil
}

// Count returns the number of stored rows.
func (s *OpportunityStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM opportunities`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count opportunities: %w", err)
	}
	return n, nil
}

// Query returns the page of rows matching f, newest posting first unless
// shuffled.
func (s *OpportunityStore) Query(ctx context.Context, f opportunity.Filter) (opportunity.Page, error) {
	w := buildWhere(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM opportunities`+w.sql(), w.args...).Scan(&total); err != nil {
		return opportunity.Page{}, fmt.Errorf("count matching opportunities: %w", err)
	}

	order := ` ORDER BY posted_at DESC NULLS LAST, created_at DESC`
	if f.Shuffle {
		order = ` ORDER BY random()`
	}
	offset := max(f.Offset, 0)
	query := `SELECT ` + opportunityColumns + ` FROM opportunities` + w.sql() + order +
		` LIMIT ` + w.arg(f.EffectiveLimit()) + ` OFFSET ` + w.arg(offset)

	rows, err := s.pool.Query(ctx, query, w.args...)
	if err != nil {
		return opportunity.Page{}, fmt.Errorf("query opportunities: %w", err)
	}
	defer rows.Close()

	page := opportunity.Page{Opportunities: []opportunity.Opportunity{}, Total: total}
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return opportunity.Page{}, fmt.Errorf("scan opportunity: %w", err)
		}
		page.Opportunities = append(page.Opportunities, opp)
	}
	if err := rows.Err(); err != nil {
		return opportunity.Page{}, fmt.Errorf("iterate opportunities: %w", err)
	}
	return page, nil
}

type where struct {
	parts []string
	args  []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

func (w *where) add(clause string) {
	w.parts = append(w.parts, clause)
}

func (w *where) sql() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// buildWhere mirrors filter.Match in SQL.
func buildWhere(f opportunity.Filter) *where {
	w := &where{}
	if f.Category != "" {
		w.add("category = " + w.arg(string(f.Category)))
	}
	if f.Compensation != "" {
		w.add("compensation = " + w.arg(string(f.Compensation)))
	}
	if f.IsRemote != nil {
		w.add("is_remote = " + w.arg(*f.IsRemote))
	}
	if terms := filter.LocationTerms(f.Location); !terms.Empty() {
		var ors []string
		for _, p := range terms.Phrases {
			ors = append(ors, "location ILIKE "+w.arg("%"+escapeLike(p)+"%"))
		}
		for _, tok := range terms.Tokens {
			ors = append(ors, "location ~* "+w.arg(`\m`+regexp.QuoteMeta(tok)+`\M`))
		}
		w.add("(" + strings.Join(ors, " OR ") + ")")
	}
	if skills := lowered(f.Skills); len(skills) > 0 {
		w.add("EXISTS (SELECT 1 FROM unnest(skills) AS s WHERE lower(s) = ANY(" + w.arg(skills) + "))")
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		p := w.arg("%" + escapeLike(kw) + "%")
		w.add("(title ILIKE " + p + " OR description ILIKE " + p + " OR organization ILIKE " + p + ")")
	}
	return w
}

func lowered(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func opportunityArgs(o opportunity.Opportunity) []any {
	return []any{
		o.ID,
		o.Title,
		o.Description,
		o.Organization,
		string(o.Category),
		o.Location,
		o.IsRemote,
		string(o.Compensation),
		o.Requirements,
		o.Skills,
		o.Tags,
		o.ApplicationURL,
		o.Deadline,
		o.Source,
		o.ExternalID,
		o.EstimatedHours,
		o.Duration,
		o.PostedAt,
		o.CreatedAt,
		o.UpdatedAt,
	}
}

func scanOpportunity(row pgx.Row) (opportunity.Opportunity, error) {
	var (
		o                      opportunity.Opportunity
		category, compensation string
	)
	err := row.Scan(
		&o.ID,
		&o.Title,
		&o.Description,
		&o.Organization,
		&category,
		&o.Location,
		&o.IsRemote,
		&compensation,
		&o.Requirements,
		&o.Skills,
		&o.Tags,
		&o.ApplicationURL,
		&o.Deadline,
		&o.Source,
		&o.ExternalID,
		&o.EstimatedHours,
		&o.Duration,
		&o.PostedAt,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return opportunity.Opportunity{}, err
	}
	o.Category = opportunity.Category(category)
	o.Compensation = opportunity.Compensation(compensation)
	return o.Normalized(), nil
}

func notFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return opportunity.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
