package catalog

import (
	"context"
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/teomanager/teomanager-backend/pkg/db/models"
)

// CategoryFix records one applied label rewrite.
type CategoryFix struct {
	From string
	To   string
	Rows int64
}

// NormalizeCategories folds category labels that differ only by
// surrounding whitespace or letter case into one canonical spelling.
// The spelling carried by the most listings wins; ties go to the
// lexicographically smallest variant. Inactive listings are included so
// a reactivated product cannot resurrect a retired spelling.
func (r *Repository) NormalizeCategories(ctx context.Context) ([]CategoryFix, error) {
	totals := map[string]map[string]int64{}
	for _, model := range []any{&models.Product{}, &models.ServiceOffering{}} {
		var rows []categoryCountRecord
		err := r.db.WithContext(ctx).
			Model(model).
			Select("category, COUNT(*) AS total").
			Group("category").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			folded := strings.ToLower(strings.TrimSpace(row.Category))
			if folded == "" {
				continue
			}
			if totals[folded] == nil {
				totals[folded] = map[string]int64{}
			}
			totals[folded][row.Category] += row.Total
		}
	}

	fixes := []CategoryFix{}
	for _, variants := range totals {
		canonical := canonicalCategory(variants)
		for variant := range variants {
			if variant == canonical {
				continue
			}
			rows, err := r.relabelCategory(ctx, variant, canonical)
			if err != nil {
				return fixes, err
			}
			fixes = append(fixes, CategoryFix{From: variant, To: canonical, Rows: rows})
		}
	}

	sort.Slice(fixes, func(i, j int) bool { return fixes[i].From < fixes[j].From })
	return fixes, nil
}

func canonicalCategory(variants map[string]int64) string {
	winner := ""
	var best int64 = -1
	for variant, total := range variants {
		trimmed := strings.TrimSpace(variant)
		if total > best || (total == best && trimmed < winner) {
			winner = trimmed
			best = total
		}
	}
	return winner
}

func (r *Repository) relabelCategory(ctx context.Context, from, to string) (int64, error) {
	var rows int64
	for _, model := range []any{&models.Product{}, &models.ServiceOffering{}} {
		result := r.db.WithContext(ctx).
			Model(model).
			Where("category = ?", from).
			Update("category", to)
		if result.Error != nil {
			return rows, result.Error
		}
		rows += result.RowsAffected
	}
	return rows, nil
}

// ReferencedImageURLs lists every URL still attached to a listing
// gallery, deduplicated.
func (r *Repository) ReferencedImageURLs(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := []string{}
	collect := func(query *gorm.DB) error {
		var urls []string
		if err := query.Pluck("url", &urls).Error; err != nil {
			return err
		}
		for _, url := range urls {
			if _, ok := seen[url]; ok {
				continue
			}
			seen[url] = struct{}{}
			out = append(out, url)
		}
		return nil
	}

	if err := collect(r.db.WithContext(ctx).Model(&models.ProductImage{})); err != nil {
		return nil, err
	}
	if err := collect(r.db.WithContext(ctx).Model(&models.ServiceImage{})); err != nil {
		return nil, err
	}
	sort.Strings(out)
	return out, nil
}
