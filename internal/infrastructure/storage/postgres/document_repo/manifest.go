package document_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/manifest"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const (
	manifestTable       = "doc_manifests"
	manifestParcelTable = "doc_manifest_parcels"
)

// ManifestRepo implements manifest.Repository.
type ManifestRepo struct {
	*BaseDocumentRepo[*manifest.Manifest]
}

// NewManifestRepo creates a new manifest repository.
func NewManifestRepo(txManager *postgres.TxManager) *ManifestRepo {
	return &ManifestRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*manifest.Manifest](
			txManager,
			manifestTable,
			postgres.ExtractDBColumns[manifest.Manifest](),
			func() *manifest.Manifest { return &manifest.Manifest{} },
		),
	}
}

// GetByNumber retrieves a manifest by its number.
func (r *ManifestRepo) GetByNumber(ctx context.Context, number string) (*manifest.Manifest, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"number": number})

	return r.findOne(ctx, q, number)
}

// List retrieves manifests with filtering and pagination.
func (r *ManifestRepo) List(ctx context.Context, filter manifest.Filter) (domain.ListResult[*manifest.Manifest], error) {
	result := domain.ListResult[*manifest.Manifest]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.BranchID != nil {
		q = q.Where(squirrel.Eq{"branch_id": *filter.BranchID})
	}
	if filter.DriverID != nil {
		q = q.Where(squirrel.Eq{"driver_id": *filter.DriverID})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("date DESC, number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	return result, nil
}

// AddParcel attaches a parcel to a manifest.
func (r *ManifestRepo) AddParcel(ctx context.Context, manifestID, parcelID id.ID) error {
	q := r.Builder().
		Insert(manifestParcelTable).
		Columns("manifest_id", "parcel_id").
		Values(manifestID, parcelID)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", manifestParcelTable, err)
	}

	return nil
}

// RemoveParcel detaches a parcel from a manifest.
func (r *ManifestRepo) RemoveParcel(ctx context.Context, manifestID, parcelID id.ID) error {
	q := r.Builder().
		Delete(manifestParcelTable).
		Where(squirrel.Eq{"manifest_id": manifestID}).
		Where(squirrel.Eq{"parcel_id": parcelID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", manifestParcelTable, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("parcel %s is not on manifest %s", parcelID, manifestID)
	}

	return nil
}

// ParcelIDs returns the IDs of parcels attached to a manifest, in attach
// order.
func (r *ManifestRepo) ParcelIDs(ctx context.Context, manifestID id.ID) ([]id.ID, error) {
	q := r.Builder().
		Select("parcel_id").
		From(manifestParcelTable).
		Where(squirrel.Eq{"manifest_id": manifestID}).
		OrderBy("added_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ids []id.ID
	if err := pgxscan.Select(ctx, r.querier(ctx), &ids, sql, args...); err != nil {
		return nil, fmt.Errorf("parcel ids: %w", err)
	}

	return ids, nil
}

// OpenManifestIDForParcel returns the non-terminal manifest the parcel is
// attached to, or Nil when there is none.
func (r *ManifestRepo) OpenManifestIDForParcel(ctx context.Context, parcelID id.ID) (id.ID, error) {
	q := r.Builder().
		Select("m.id").
		From(manifestTable + " m").
		Join(manifestParcelTable + " mp ON mp.manifest_id = m.id").
		Where(squirrel.Eq{"mp.parcel_id": parcelID}).
		Where(squirrel.NotEq{"m.status": []manifest.Status{
			manifest.StatusCompleted,
			manifest.StatusCancelled,
		}}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build query: %w", err)
	}

	var manifestID id.ID
	err = r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&manifestID)
	if errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), nil
	}
	if err != nil {
		return id.Nil(), fmt.Errorf("open manifest for parcel: %w", err)
	}

	return manifestID, nil
}
