package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logger"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// Kind is the type of catalog file, detected from its header row.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

// CSVImporter reads catalog CSV files and upserts categories and products by
// slug. Product rows create their category on first reference.
type CSVImporter struct {
	reader     *csv.Reader
	products   ProductWriter
	categories CategoryWriter
	lg         *zap.Logger

	// slug -> id of categories already written in this run
	seen map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, lg *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:     csvr,
		products:   products,
		categories: categories,
		lg:         logger.OrNop(lg).Named("importer"),
		seen:       map[string]string{},
	}
}

// DetectKind peeks at the header row. Files with price or stock columns are
// product files.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(r).Read()
	if err != nil {
		return "", errors.Wrap(err, "read headers")
	}
	return kindOf(headerIndex(headers)), nil
}

func kindOf(index map[string]int) Kind {
	_, price := index["price"]
	_, stock := index["stock"]
	if price || stock {
		return KindProducts
	}
	return KindCategories
}

// Run imports every row and returns how many entities were written.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read headers")
	}
	index := headerIndex(headers)
	kind := kindOf(index)
	if kind == KindProducts && i.products == nil {
		return 0, errors.New("product file given but no product writer configured")
	}

	imported := 0
	for line := 2; ; line++ {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, errors.Wrapf(err, "read line %d", line)
		}
		if blank(record) {
			continue
		}

		switch kind {
		case KindProducts:
			err = i.saveProduct(ctx, record, index)
		default:
			err = i.saveCategory(ctx, record, index)
		}
		if err != nil {
			return imported, errors.Wrapf(err, "line %d", line)
		}
		imported++
	}

	i.lg.Info("import finished", zap.String("kind", string(kind)), zap.Int("rows", imported))
	return imported, nil
}

func (i *CSVImporter) saveCategory(ctx context.Context, record []string, index map[string]int) error {
	slug := slugify(pick(record, index, "slug"))
	name := pick(record, index, "name")
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" {
		return errors.New("category row needs a slug or name")
	}
	_, err := i.ensureCategory(ctx, slug, name, pick(record, index, "description"))
	return err
}

func (i *CSVImporter) saveProduct(ctx context.Context, record []string, index map[string]int) error {
	name := pick(record, index, "name")
	slug := slugify(pick(record, index, "slug"))
	if slug == "" {
		slug = slugify(name)
	}
	if slug == "" || name == "" {
		return errors.New("product row needs a name")
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return errors.Wrapf(err, "price for %q", slug)
	}
	if price.IsNegative() {
		return errors.Errorf("negative price for %q", slug)
	}

	stock := 0
	if raw := pick(record, index, "stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return errors.Errorf("invalid stock %q for %q", raw, slug)
		}
	}

	active := true
	if raw := pick(record, index, "active"); raw != "" {
		active, err = strconv.ParseBool(raw)
		if err != nil {
			return errors.Errorf("invalid active flag %q for %q", raw, slug)
		}
	}

	p := domain.Product{
		Slug:        slug,
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price.Round(2),
		Stock:       stock,
		IsActive:    active,
	}
	if cat := slugify(pick(record, index, "category")); cat != "" {
		id, err := i.ensureCategory(ctx, cat, "", "")
		if err != nil {
			return err
		}
		p.CategoryID = &id
	}

	if _, err := i.products.Upsert(ctx, p); err != nil {
		return errors.Wrapf(err, "upsert product %q", slug)
	}
	return nil
}

func (i *CSVImporter) ensureCategory(ctx context.Context, slug, name, desc string) (string, error) {
	if id, ok := i.seen[slug]; ok && name == "" {
		return id, nil
	}
	if i.categories == nil {
		return "", errors.Errorf("category %q referenced but no category writer configured", slug)
	}
	if name == "" {
		name = titleFromSlug(slug)
	}
	c, err := i.categories.Upsert(ctx, domain.Category{Slug: slug, Name: name, Description: desc})
	if err != nil {
		return "", errors.Wrapf(err, "upsert category %q", slug)
	}
	i.seen[slug] = c.ID
	return c.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func titleFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
