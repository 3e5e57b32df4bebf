package pkg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/pagination"
	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/domain"
)

const (
	defaultPage         = 1
	DefaultItemsPerPage = 10
	defaultSortKey      = "created_at"

	// AllItemsSentinel in items_per_page disables the page-size cap.
	AllItemsSentinel = "all"
)

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// likeEscaper escapes LIKE wildcards so search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// QuerySpec configures the list query for one collection.
type QuerySpec struct {
	// SearchFields are OR-ed together for the search term.
	SearchFields []string
	// SortKey defaults to created_at; the primary key breaks ties.
	SortKey string
	// StatusColumn partitions Active and Trashed rows. Empty disables the
	// partition for entities without a lifecycle.
	StatusColumn string
}

// ParseFilter extracts search and pagination parameters from the query string.
// The status partition is fixed by the endpoint, not by the caller.
func ParseFilter(c *gin.Context, status domain.Status) domain.Filter {
	f := domain.Filter{
		Search:       strings.TrimSpace(c.Query("search")),
		Status:       status,
		Page:         defaultPage,
		ItemsPerPage: DefaultItemsPerPage,
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page >= 1 {
		f.Page = page
	}

	raw := strings.TrimSpace(c.Query("items_per_page"))
	if strings.EqualFold(raw, AllItemsSentinel) {
		f.All = true
	} else if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
		f.ItemsPerPage = n
	}

	return f
}

// Search returns a GORM scope matching term as a case-insensitive substring of
// any of the given columns. An empty term matches everything.
func Search(term string, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(fields) == 0 {
			return db
		}

		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		conds := make([]string, 0, len(fields))
		args := make([]any, 0, len(fields))
		for _, field := range fields {
			if !validFieldName.MatchString(field) {
				continue
			}
			conds = append(conds, "LOWER("+field+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// WithStatus returns a GORM scope restricting rows to one lifecycle partition.
func WithStatus(column string, status domain.Status) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if column == "" || !validFieldName.MatchString(column) {
			return db
		}
		return db.Where(column+" = ?", status)
	}
}

// Query computes one page of T matching f.
//
// total counts rows matching the search, the status partition and any extra
// scopes. A page past the last one yields empty data rather than an error, so
// the engine handles empty and out-of-range pages itself and only hands
// in-range pages to the paginator, which would otherwise clamp them.
func Query[T any](ctx context.Context, db *gorm.DB, f domain.Filter, spec QuerySpec, scopes ...func(*gorm.DB) *gorm.DB) (*domain.PageResult[T], error) {
	base := db.WithContext(ctx).Model(new(T))
	for _, scope := range scopes {
		base = scope(base)
	}
	base = Search(f.Search, spec.SearchFields)(base)
	if spec.StatusColumn != "" {
		base = WithStatus(spec.StatusColumn, f.Status)(base)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, MapDBError(err)
	}

	page := f.Page
	if page < 1 {
		page = defaultPage
	}

	perPage := f.ItemsPerPage
	if f.All {
		perPage = int(total)
	} else if perPage < 1 {
		perPage = DefaultItemsPerPage
	}

	result := &domain.PageResult[T]{
		Data:         []T{},
		Total:        total,
		CurrentPage:  page,
		ItemsPerPage: perPage,
	}
	if total > 0 && perPage > 0 {
		// No addition before the divide: perPage may be as large as MaxInt.
		last := total / int64(perPage)
		if total%int64(perPage) != 0 {
			last++
		}
		result.LastPage = int(last)
	}
	if page < result.LastPage {
		next := page + 1
		result.NextPage = &next
	}
	if page-1 >= 1 {
		prev := page - 1
		result.PreviousPage = &prev
	}

	if page > result.LastPage {
		return result, nil
	}

	// Here page <= LastPage, so a page size above total only occurs on page 1
	// and fetching total rows yields the same slice.
	fetch := perPage
	if int64(fetch) > total {
		fetch = int(total)
	}

	order := orderClause(spec.SortKey)
	paginator := pagination.NewPaginator[T](
		pagination.WithItemsPerPage[T](fetch),
		pagination.WithKnownTotal[T](total),
		pagination.WithSliceCallback[T](func(ctx context.Context, offset, limit int) ([]T, error) {
			var items []T
			err := base.WithContext(ctx).Order(order).Offset(offset).Limit(limit).Find(&items).Error
			return items, err
		}),
	)

	p, err := paginator.Paginate(ctx, page)
	if err != nil {
		return nil, MapDBError(fmt.Errorf("paginate: %w", err))
	}
	if p.Items != nil {
		result.Data = p.Items
	}
	return result, nil
}

// orderClause builds the newest-first ordering with the primary key as a
// stable tie-breaker.
func orderClause(sortKey string) string {
	if sortKey == "" || !validFieldName.MatchString(sortKey) {
		sortKey = defaultSortKey
	}
	return sortKey + " DESC, id DESC"
}
