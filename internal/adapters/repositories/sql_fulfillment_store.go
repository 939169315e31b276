package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/platform/obs"
	"order-fulfillment-service/internal/ports"
)

// SQLFulfillmentStore is the Postgres-backed implementation of the
// FulfillmentStore port, for deployments where several stations share one
// database.
type SQLFulfillmentStore struct{ DB *sql.DB }

func NewSQLFulfillmentStore(db *sql.DB) *SQLFulfillmentStore {
	return &SQLFulfillmentStore{DB: db}
}

var _ ports.FulfillmentStore = (*SQLFulfillmentStore)(nil)

func (s *SQLFulfillmentStore) Load(ctx context.Context, orderKey string) (_ *domain.FulfillmentState, _ bool, err error) {
	defer obs.Time(ctx, "store.Load")(&err)

	if s.DB == nil {
		return nil, false, errors.New("sql fulfillment store: DB is nil")
	}
	if orderKey == "" {
		return nil, false, errors.New("load state: order key must not be empty")
	}

	query := `
	SELECT
		order_key,
		status,
		declared_box_count,
		packing_list,
		picked_summary,
		artifact_ref,
		updated_at
	FROM fulfillment_states
	WHERE order_key = $1;
	`

	var r stateRow
	err = s.DB.QueryRowContext(ctx, query, orderKey).Scan(
		&r.orderKey,
		&r.status,
		&r.declaredBoxCount,
		&r.packingList,
		&r.pickedSummary,
		&r.artifactRef,
		&r.updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load state %q: %w: %w", orderKey, domain.ErrPersistence, err)
	}

	state, err := decodeState(r)
	if err != nil {
		return nil, false, err
	}
	return state, true, nil
}

func (s *SQLFulfillmentStore) Save(ctx context.Context, state *domain.FulfillmentState) (err error) {
	defer obs.Time(ctx, "store.Save")(&err)

	if s.DB == nil {
		return errors.New("sql fulfillment store: DB is nil")
	}
	if state == nil || state.OrderKey == "" {
		return errors.New("save state: state with order key is required")
	}

	r, err := encodeState(state)
	if err != nil {
		return err
	}

	query := `
	INSERT INTO fulfillment_states (
		order_key,
		status,
		declared_box_count,
		packing_list,
		picked_summary,
		artifact_ref,
		updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (order_key) DO UPDATE
	SET status = EXCLUDED.status,
		declared_box_count = EXCLUDED.declared_box_count,
		packing_list = EXCLUDED.packing_list,
		picked_summary = EXCLUDED.picked_summary,
		artifact_ref = EXCLUDED.artifact_ref,
		updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, query,
		r.orderKey, r.status, r.declaredBoxCount, r.packingList, r.pickedSummary, r.artifactRef, r.updatedAt,
	); err != nil {
		return fmt.Errorf("save state %q: %w: %w", state.OrderKey, domain.ErrPersistence, err)
	}

	return nil
}

func (s *SQLFulfillmentStore) List(ctx context.Context) (_ []*domain.FulfillmentState, err error) {
	defer obs.Time(ctx, "store.List")(&err)

	if s.DB == nil {
		return nil, errors.New("sql fulfillment store: DB is nil")
	}

	query := `
	SELECT
		order_key,
		status,
		declared_box_count,
		packing_list,
		picked_summary,
		artifact_ref,
		updated_at
	FROM fulfillment_states
	ORDER BY order_key;
	`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list states: %w: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	states := make([]*domain.FulfillmentState, 0, 64)
	for rows.Next() {
		var r stateRow
		if err := rows.Scan(
			&r.orderKey, &r.status, &r.declaredBoxCount, &r.packingList, &r.pickedSummary, &r.artifactRef, &r.updatedAt,
		); err != nil {
			return nil, fmt.Errorf("list states: scan row: %w", err)
		}

		state, err := decodeState(r)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list states: row iteration: %w", err)
	}

	return states, nil
}
