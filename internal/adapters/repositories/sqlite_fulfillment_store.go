package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"order-fulfillment-service/internal/domain"
	"order-fulfillment-service/internal/ports"
)

// SQLite-backed implementation of the FulfillmentStore port, used for local
// single-node deployments.
type SqliteFulfillmentStore struct{ DB *sql.DB }

func NewSqliteFulfillmentStore(db *sql.DB) *SqliteFulfillmentStore {
	return &SqliteFulfillmentStore{DB: db}
}

var _ ports.FulfillmentStore = (*SqliteFulfillmentStore)(nil)

func (s *SqliteFulfillmentStore) Load(ctx context.Context, orderKey string) (*domain.FulfillmentState, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("sqlite fulfillment store: DB is nil")
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
	WHERE order_key = ?;
	`

	var r stateRow
	err := s.DB.QueryRowContext(ctx, query, orderKey).Scan(
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

func (s *SqliteFulfillmentStore) Save(ctx context.Context, state *domain.FulfillmentState) error {
	if s.DB == nil {
		return errors.New("sqlite fulfillment store: DB is nil")
	}
	if state == nil || state.OrderKey == "" {
		return errors.New("save state: state with order key is required")
	}

	r, err := encodeState(state)
	if err != nil {
		return err
	}

	query := `
	INSERT OR REPLACE INTO fulfillment_states (
		order_key,
		status,
		declared_box_count,
		packing_list,
		picked_summary,
		artifact_ref,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, query,
		r.orderKey, r.status, r.declaredBoxCount, r.packingList, r.pickedSummary, r.artifactRef, r.updatedAt,
	); err != nil {
		return fmt.Errorf("save state %q: %w: %w", state.OrderKey, domain.ErrPersistence, err)
	}

	return nil
}

func (s *SqliteFulfillmentStore) List(ctx context.Context) ([]*domain.FulfillmentState, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite fulfillment store: DB is nil")
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
