package database

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"staygrow/errs"
	"staygrow/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize  = 9
	maxPageSize      = 50
	// maxPage keeps (page-1)*limit well inside int64.
	maxPage          = math.MaxInt32
	recentWindow     = 30 * 24 * time.Hour
	aiMatchThreshold = 70.0
)

const (
	likeCountExpr = "(SELECT COUNT(*) FROM " + tableLikes + " pl WHERE pl.project_id = p.id)"
	saveCountExpr = "(SELECT COUNT(*) FROM " + tableSaved + " si WHERE si.project_id = p.id)"
	projectSource = tableProjects + " p JOIN " + tableUsers + " u ON u.id = p.user_id"
)

// ListingSpec is the validated, immutable form of a listing request.
// Build it with NewListingSpec; every query is compiled from it.
type ListingSpec struct {
	Page     int
	Limit    int
	Statuses []models.Status
	OwnerID  *uuid.UUID
	SDG      string
	Filter   models.ListFilter
	Sort     models.SortKey
	Search   string
	Viewer   models.Viewer

	pattern string
	now     time.Time
}

// NewListingSpec normalizes raw listing parameters for viewer. Malformed
// page/limit values fall back to defaults; an over-long search term or an
// unparsable userId is a validation error.
func NewListingSpec(params models.ListParams, viewer models.Viewer, now time.Time) (ListingSpec, error) {
	if viewer == nil {
		viewer = models.Anonymous{}
	}

	spec := ListingSpec{
		Page:     min(validatePage(atoiOr(params.Page, 1)), maxPage),
		Limit:    validateLimit(atoiOr(params.Limit, defaultPageSize), defaultPageSize, maxPageSize),
		Statuses: models.ParseStatusSet(params.Status),
		Filter:   models.ParseListFilter(params.Filter),
		Sort:     models.ParseSortKey(params.SortBy),
		Viewer:   viewer,
		now:      now,
	}

	if sdg := strings.TrimSpace(params.SDG); sdg != "" && !strings.EqualFold(sdg, "all") {
		spec.SDG = models.NormalizeSDGTag(sdg)
	}

	if owner := strings.TrimSpace(params.UserID); owner != "" {
		id, err := uuid.Parse(owner)
		if err != nil {
			return ListingSpec{}, errs.NewValidationError("invalid userId", "userId")
		}
		spec.OwnerID = &id
	}

	pattern, err := NewSearchTermParser().Parse(params.Search)
	if err != nil {
		return ListingSpec{}, errs.NewValidationError(err.Error(), "search")
	}
	spec.pattern = pattern
	if pattern != "" {
		spec.Search = strings.Join(strings.Fields(params.Search), " ")
	}

	// liked/bookmarked need someone to have liked or bookmarked
	switch viewer.(type) {
	case models.Identified:
	default:
		if spec.Filter == models.FilterLiked || spec.Filter == models.FilterBookmarked {
			spec.Filter = models.FilterAll
		}
	}

	return spec, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

func (s ListingSpec) Offset() int {
	return (s.Page - 1) * s.Limit
}

func (s ListingSpec) IsSearch() bool {
	return s.pattern != ""
}

// Applied echoes the normalized parameters for the response's "filters" object.
func (s ListingSpec) Applied() models.AppliedFilters {
	applied := models.AppliedFilters{
		Search: s.Search,
		Filter: string(s.Filter),
		SDG:    s.SDG,
		SortBy: string(s.Sort),
		Status: s.Statuses,
		Page:   s.Page,
		Limit:  s.Limit,
	}
	if applied.SDG == "" {
		applied.SDG = "all"
	}
	if s.OwnerID != nil {
		applied.UserID = s.OwnerID.String()
	}
	return applied
}

// filterBuilder compiles every predicate except the text search.
func (s ListingSpec) filterBuilder() *QueryBuilder {
	qb := NewQueryBuilder()

	statuses := make([]string, len(s.Statuses))
	for i, st := range s.Statuses {
		statuses[i] = string(st)
	}
	qb.AddIn("p.status", statuses)

	if s.OwnerID != nil {
		qb.AddCondition("p.user_id", *s.OwnerID)
	}
	if s.SDG != "" {
		qb.AddArrayContains("p.sdg_tags", s.SDG)
	}

	switch s.Filter {
	case models.FilterFeatured:
		qb.AddRaw("p.featured = TRUE")
	case models.FilterRecent:
		qb.AddComparison("p.created_at", ">=", s.now.Add(-recentWindow))
	case models.FilterAIMatch:
		qb.AddComparison("p.ai_match_score", ">=", aiMatchThreshold)
	case models.FilterLiked:
		s.addViewerExists(qb, tableLikes)
	case models.FilterBookmarked:
		s.addViewerExists(qb, tableSaved)
	}

	s.addVisibility(qb)
	return qb
}

func (s ListingSpec) addViewerExists(qb *QueryBuilder, table string) {
	id, ok := models.ViewerID(s.Viewer)
	if !ok {
		return
	}
	qb.AddRaw(fmt.Sprintf("EXISTS (SELECT 1 FROM %s x WHERE x.project_id = p.id AND x.user_id = %s)",
		table, qb.Bind(id)))
}

// addVisibility hides rows the viewer may not see when non-published
// statuses were requested: drafts belong to their owner, flagged and
// archived projects to their owner and admins.
func (s ListingSpec) addVisibility(qb *QueryBuilder) {
	if onlyPublished(s.Statuses) {
		return
	}

	switch v := s.Viewer.(type) {
	case models.Identified:
		if v.Role == models.RoleAdmin {
			qb.AddRaw(fmt.Sprintf("(p.status <> 'DRAFT' OR p.user_id = %s)", qb.Bind(v.UserID)))
			return
		}
		qb.AddRaw(fmt.Sprintf("(p.status = 'PUBLISHED' OR p.user_id = %s)", qb.Bind(v.UserID)))
	default:
		qb.AddRaw("p.status = 'PUBLISHED'")
	}
}

func onlyPublished(statuses []models.Status) bool {
	for _, st := range statuses {
		if st != models.StatusPublished {
			return false
		}
	}
	return true
}

// orderBy maps the filter preset and sort key to an ORDER BY list.
// created_at and id always close the list so pages are deterministic.
func (s ListingSpec) orderBy() string {
	keys := []string{}

	switch s.Filter {
	case models.FilterPopular:
		keys = append(keys, "p.view_count DESC")
	case models.FilterAIMatch:
		keys = append(keys, "p.ai_match_score DESC NULLS LAST")
	}

	switch s.Sort {
	case models.SortPopular:
		keys = append(keys, "p.view_count DESC")
	case models.SortLikes:
		keys = append(keys, likeCountExpr+" DESC")
	case models.SortMatch:
		keys = append(keys, "p.ai_match_score DESC NULLS LAST")
	default:
		keys = append(keys, "p.created_at DESC")
	}

	keys = append(keys, "p.created_at DESC", "p.id DESC")

	seen := map[string]bool{}
	unique := keys[:0]
	for _, key := range keys {
		if !seen[key] {
			seen[key] = true
			unique = append(unique, key)
		}
	}
	return strings.Join(unique, ", ")
}

// summaryColumns returns the select list of a ProjectSummary. Viewer flags
// are bound on qb when the viewer is identified and constant FALSE otherwise.
func summaryColumns(qb *QueryBuilder, viewer models.Viewer) string {
	isLiked, isBookmarked, isOwner := "FALSE", "FALSE", "FALSE"

	switch v := viewer.(type) {
	case models.Identified:
		placeholder := qb.Bind(v.UserID)
		isLiked = fmt.Sprintf("EXISTS (SELECT 1 FROM %s vl WHERE vl.project_id = p.id AND vl.user_id = %s)", tableLikes, placeholder)
		isBookmarked = fmt.Sprintf("EXISTS (SELECT 1 FROM %s vs WHERE vs.project_id = p.id AND vs.user_id = %s)", tableSaved, placeholder)
		isOwner = fmt.Sprintf("(p.user_id = %s)", placeholder)
	case models.Anonymous:
	}

	return fmt.Sprintf(`
		p.id, p.title, p.description, p.image_url, p.sdg_tags, p.tech_tags,
		p.github_url, p.demo_url, p.status, p.featured, p.ai_match_score, p.created_at,
		u.id, u.name, u.avatar_url,
		%s AS likes, p.view_count, %s AS saves,
		%s AS is_liked, %s AS is_bookmarked, %s AS is_owner`,
		likeCountExpr, saveCountExpr, isLiked, isBookmarked, isOwner)
}

func scanSummary(row rowScanner) (*models.ProjectSummary, error) {
	var s models.ProjectSummary
	var imageURL *string
	var status string

	err := row.Scan(
		&s.ID, &s.Title, &s.Description, &imageURL, &s.SDGTags, &s.TechTags,
		&s.GithubURL, &s.DemoURL, &status, &s.Featured, &s.AIMatchScore, &s.CreatedAt,
		&s.Owner.ID, &s.Owner.Name, &s.Owner.AvatarURL,
		&s.Likes, &s.Views, &s.Saves,
		&s.IsLiked, &s.IsBookmarked, &s.IsOwner,
	)
	if err != nil {
		return nil, err
	}

	s.Status = models.Status(status)
	s.ImageURL = models.PlaceholderImageURL
	if imageURL != nil && *imageURL != "" {
		s.ImageURL = *imageURL
	}
	if s.SDGTags == nil {
		s.SDGTags = []string{}
	}
	if s.TechTags == nil {
		s.TechTags = []string{}
	}
	return &s, nil
}

func scanSummaries(rows rowsScanner) ([]models.ProjectSummary, error) {
	summaries := []models.ProjectSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		summaries = append(summaries, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return summaries, nil
}

// ListProjects returns one page of project summaries for spec.
//
// Without a search term a single filtered, ordered, paginated query runs
// alongside a count query with the same WHERE clause.
//
// With a search term the matching ids are selected first (in final order),
// the page is sliced out of that id list, and the full rows are fetched by id
// and put back into id order.
//
// An empty page is not an error.
func (db *DB) ListProjects(ctx context.Context, spec ListingSpec) ([]models.ProjectSummary, int64, error) {
	start := time.Now()
	defer func() {
		log.Debug().
			Dur("duration", time.Since(start)).
			Str("filter", string(spec.Filter)).
			Str("sort", string(spec.Sort)).
			Bool("search", spec.IsSearch()).
			Int("page", spec.Page).
			Msg("ListProjects")
	}()

	if spec.IsSearch() {
		return db.searchProjects(ctx, spec)
	}

	qb := spec.filterBuilder()
	where := qb.WhereClause()
	countArgs := qb.Args()
	columns := summaryColumns(qb, spec.Viewer)

	// SAFETY: All user input is parameterized via $N placeholders.
	// where and the ORDER BY list only contain column names and operators.
	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM %s
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, columns, projectSource, where, spec.orderBy(), qb.NextArgNum(), qb.NextArgNum()+1)
	pageArgs := append(qb.Args(), spec.Limit, spec.Offset())

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s %s`, projectSource, where)

	var (
		summaries []models.ProjectSummary
		total     int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := db.Pool.Query(gctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query projects: %w", err)
		}
		defer rows.Close()

		summaries, err = scanSummaries(rows)
		return err
	})
	g.Go(func() error {
		if err := db.Pool.QueryRow(gctx, countQuery, countArgs...).Scan(&total); err != nil {
			return fmt.Errorf("failed to count projects: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}

func (db *DB) searchProjects(ctx context.Context, spec ListingSpec) ([]models.ProjectSummary, int64, error) {
	ids, err := db.searchProjectIDs(ctx, spec)
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(ids))
	page := pageOf(ids, spec.Offset(), spec.Limit)
	if len(page) == 0 {
		return []models.ProjectSummary{}, total, nil
	}

	summaries, err := db.fetchSummaries(ctx, page, spec.Viewer)
	if err != nil {
		return nil, 0, err
	}

	return orderByIDs(summaries, page), total, nil
}

// searchProjectIDs returns the ids of every project matching spec, ordered.
func (db *DB) searchProjectIDs(ctx context.Context, spec ListingSpec) ([]uuid.UUID, error) {
	qb := spec.filterBuilder()
	qb.AddTextSearch(spec.pattern,
		[]string{"p.title", "p.description", "u.name"},
		[]string{"p.tech_tags", "p.sdg_tags"})

	// SAFETY: the search pattern is bound as a parameter like every other value.
	query := fmt.Sprintf(`
		SELECT p.id
		FROM %s
		%s
		ORDER BY %s
	`, projectSource, qb.WhereClause(), spec.orderBy())

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project ids: %w", err)
	}

	return ids, nil
}

// fetchSummaries loads summaries for ids. Row order is unspecified.
func (db *DB) fetchSummaries(ctx context.Context, ids []uuid.UUID, viewer models.Viewer) ([]models.ProjectSummary, error) {
	qb := NewQueryBuilder()
	qb.AddIn("p.id", ids)
	columns := summaryColumns(qb, viewer)

	query := fmt.Sprintf(`SELECT %s FROM %s %s`, columns, projectSource, qb.WhereClause())

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// pageOf slices ids[offset:offset+limit], clamped to the slice bounds.
func pageOf(ids []uuid.UUID, offset, limit int) []uuid.UUID {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) || limit <= 0 {
		return []uuid.UUID{}
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

// orderByIDs returns summaries in the order of ids. Rows whose id is not in
// ids are dropped; ids with no row (deleted in between) are skipped.
func orderByIDs(summaries []models.ProjectSummary, ids []uuid.UUID) []models.ProjectSummary {
	byID := make(map[uuid.UUID]models.ProjectSummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID] = s
	}

	ordered := make([]models.ProjectSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered
}
