package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"parceldesk/internal/core/id"
	"parceldesk/internal/domain"
	"parceldesk/internal/domain/parcel"
	"parceldesk/internal/infrastructure/storage/postgres"
)

const (
	parcelTable    = "doc_parcels"
	parcelLogTable = "doc_parcel_logs"
)

// ParcelRepo implements parcel.Repository.
type ParcelRepo struct {
	*BaseDocumentRepo[*parcel.Parcel]
}

// NewParcelRepo creates a new parcel repository.
func NewParcelRepo(txManager *postgres.TxManager) *ParcelRepo {
	return &ParcelRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*parcel.Parcel](
			txManager,
			parcelTable,
			postgres.ExtractDBColumns[parcel.Parcel](),
			func() *parcel.Parcel { return &parcel.Parcel{} },
		),
	}
}

// GetByTrackingNumber retrieves a parcel by its tracking number.
func (r *ParcelRepo) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*parcel.Parcel, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"tracking_number": trackingNumber})

	return r.findOne(ctx, q, trackingNumber)
}

// GetByIDs loads parcels by ID list.
func (r *ParcelRepo) GetByIDs(ctx context.Context, parcelIDs []id.ID) ([]*parcel.Parcel, error) {
	if len(parcelIDs) == 0 {
		return nil, nil
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"id": parcelIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*parcel.Parcel
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get by ids: %w", err)
	}

	return items, nil
}

// List retrieves parcels with filtering and pagination.
func (r *ParcelRepo) List(ctx context.Context, filter parcel.Filter) (domain.ListResult[*parcel.Parcel], error) {
	result := domain.ListResult[*parcel.Parcel]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Eq{"deletion_mark": false})

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.PaymentType != nil {
		q = q.Where(squirrel.Eq{"payment_type": *filter.PaymentType})
	}
	if filter.OriginBranchID != nil {
		q = q.Where(squirrel.Eq{"origin_branch_id": *filter.OriginBranchID})
	}
	if filter.AssignedDriverID != nil {
		q = q.Where(squirrel.Eq{"assigned_driver_id": *filter.AssignedDriverID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"tracking_number": pattern},
			squirrel.ILike{"sender_name": pattern},
			squirrel.ILike{"receiver_name": pattern},
		})
	}

	total, err := r.count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("date DESC, tracking_number DESC")
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

// AppendLog inserts one lifecycle log row.
func (r *ParcelRepo) AppendLog(ctx context.Context, log *parcel.Log) error {
	q := r.Builder().
		Insert(parcelLogTable).
		SetMap(postgres.StructToMap(log))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", parcelLogTable, err)
	}

	return nil
}

// ListLogs returns the lifecycle log of a parcel, oldest first.
func (r *ParcelRepo) ListLogs(ctx context.Context, parcelID id.ID) ([]*parcel.Log, error) {
	q := r.Builder().
		Select(postgres.ExtractDBColumns[parcel.Log]()...).
		From(parcelLogTable).
		Where(squirrel.Eq{"parcel_id": parcelID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*parcel.Log
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}

	return items, nil
}
