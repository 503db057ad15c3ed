package catalogsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ahmadfnugroho/gpr-sub003/model"
)

type ErrCode string

const (
	ErrBadInput        ErrCode = "BAD_INPUT"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrDuplicateSerial ErrCode = "DUPLICATE_SERIAL"
	ErrInvalidBundle   ErrCode = "INVALID_BUNDLE"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return string(e.code) + ": " + e.msg }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode, format string, args ...any) error {
	return codedError{code: c, msg: fmt.Sprintf(format, args...)}
}

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	CreateProduct(ctx context.Context, name string, price float64) (int64, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
	AddItems(ctx context.Context, productID int64, serials []string) (int64, error)
	ListItems(ctx context.Context, productID int64) ([]model.SerializedItem, error)
	SetAvailable(ctx context.Context, itemID int64, available bool) (bool, error)
}

type BundleRepo interface {
	CreateBundle(ctx context.Context, b *model.Bundle) (int64, error)
}

type Service interface {
	CreateProduct(ctx context.Context, name string, price float64) (int64, error)
	RegisterItems(ctx context.Context, productID int64, serials []string) (int64, error)
	ListItems(ctx context.Context, productID int64) ([]model.SerializedItem, error)
	SetItemAvailability(ctx context.Context, itemID int64, available bool) error
	CreateBundle(ctx context.Context, b *model.Bundle) (int64, error)
}

type service struct {
	r       Repo
	bundles BundleRepo
}

func New(r Repo, bundles BundleRepo) Service { return &service{r: r, bundles: bundles} }

func (s *service) CreateProduct(ctx context.Context, name string, price float64) (int64, error) {
	if strings.TrimSpace(name) == "" || price < 0 {
		return 0, makeErr(ErrBadInput, "name is required and price must not be negative")
	}
	return s.r.CreateProduct(ctx, name, price)
}

// RegisterItems adds one unit per serial number. Serials are trimmed and must
// be unique within the product.
func (s *service) RegisterItems(ctx context.Context, productID int64, serials []string) (int64, error) {
	if len(serials) == 0 {
		return 0, makeErr(ErrBadInput, "no serial numbers given")
	}
	clean := make([]string, 0, len(serials))
	seen := make(map[string]struct{}, len(serials))
	for _, sn := range serials {
		sn = strings.TrimSpace(sn)
		if sn == "" {
			return 0, makeErr(ErrBadInput, "empty serial number")
		}
		if _, dup := seen[sn]; dup {
			return 0, makeErr(ErrDuplicateSerial, "serial %s repeated in request", sn)
		}
		seen[sn] = struct{}{}
		clean = append(clean, sn)
	}

	if err := s.mustExist(ctx, productID); err != nil {
		return 0, err
	}
	n, err := s.r.AddItems(ctx, productID, clean)
	if err != nil {
		if derr := mapPgErr(err); derr != nil {
			return 0, derr
		}
		return 0, err
	}
	return n, nil
}

func (s *service) ListItems(ctx context.Context, productID int64) ([]model.SerializedItem, error) {
	if err := s.mustExist(ctx, productID); err != nil {
		return nil, err
	}
	return s.r.ListItems(ctx, productID)
}

func (s *service) SetItemAvailability(ctx context.Context, itemID int64, available bool) error {
	found, err := s.r.SetAvailable(ctx, itemID, available)
	if err != nil {
		return err
	}
	if !found {
		return makeErr(ErrNotFound, "item %d", itemID)
	}
	return nil
}

func (s *service) CreateBundle(ctx context.Context, b *model.Bundle) (int64, error) {
	if b == nil || strings.TrimSpace(b.Name) == "" || b.Price < 0 {
		return 0, makeErr(ErrBadInput, "name is required and price must not be negative")
	}
	if len(b.Components) == 0 {
		return 0, makeErr(ErrInvalidBundle, "bundle needs at least one component")
	}
	seen := make(map[int64]struct{}, len(b.Components))
	for _, c := range b.Components {
		if c.RequiredQuantity < 1 {
			return 0, makeErr(ErrInvalidBundle, "product %d: required quantity must be at least 1", c.ProductID)
		}
		if _, dup := seen[c.ProductID]; dup {
			return 0, makeErr(ErrInvalidBundle, "product %d listed twice", c.ProductID)
		}
		seen[c.ProductID] = struct{}{}
		if err := s.mustExist(ctx, c.ProductID); err != nil {
			return 0, err
		}
	}
	id, err := s.bundles.CreateBundle(ctx, b)
	if err != nil {
		if derr := mapPgErr(err); derr != nil {
			return 0, derr
		}
		return 0, err
	}
	return id, nil
}

func (s *service) mustExist(ctx context.Context, productID int64) error {
	ok, err := s.r.ProductExists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound, "product %d", productID)
	}
	return nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		if strings.Contains(strings.ToLower(pgErr.ConstraintName), "serial") {
			return makeErr(ErrDuplicateSerial, "%s", pgErr.Detail)
		}
		return makeErr(ErrBadInput, "%s", pgErr.Message)
	case pgerrcode.ForeignKeyViolation:
		// product deleted between the existence check and the insert
		return makeErr(ErrNotFound, "%s", pgErr.Detail)
	case pgerrcode.CheckViolation:
		return makeErr(ErrInvalidBundle, "%s", pgErr.Message)
	}
	return nil
}
