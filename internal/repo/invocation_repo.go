package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/jira-worklog/internal/domain"
)

// schema — таблица вызовов шагов.
const schema = `
	CREATE TABLE IF NOT EXISTS step_invocations (
		id          uuid PRIMARY KEY,
		step_type   text        NOT NULL,
		inputs      jsonb,
		status      text        NOT NULL,
		result      jsonb,
		error       text,
		error_kind  text,
		started_at  timestamptz,
		finished_at timestamptz,
		created_at  timestamptz NOT NULL
	);
	CREATE INDEX IF NOT EXISTS step_invocations_created_at_idx ON step_invocations (created_at DESC);
`

// maxListLimit — верхняя граница Limit в List.
const maxListLimit = 500

// InvocationRepo — репозиторий вызовов шагов.
type InvocationRepo struct {
	pool *pgxpool.Pool
}

// NewInvocationRepo создаёт новый InvocationRepo.
func NewInvocationRepo(pool *pgxpool.Pool) *InvocationRepo {
	return &InvocationRepo{pool: pool}
}

// EnsureSchema создаёт таблицу, если её нет.
func (r *InvocationRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Create сохраняет новый вызов.
func (r *InvocationRepo) Create(ctx context.Context, inv *domain.Invocation) error {
	inputsJSON, err := json.Marshal(inv.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}
	resultJSON, err := marshalResult(inv.Result)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO step_invocations
			(id, step_type, inputs, status, result, error, error_kind, started_at, finished_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.pool.Exec(ctx, query,
		inv.ID,
		inv.StepType,
		inputsJSON,
		inv.Status,
		resultJSON,
		nullString(inv.Error),
		nullString(inv.ErrorKind),
		inv.StartedAt,
		inv.FinishedAt,
		inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invocation: %w", err)
	}
	return nil
}

// Update обновляет статус, результат и ошибку вызова.
func (r *InvocationRepo) Update(ctx context.Context, inv *domain.Invocation) error {
	resultJSON, err := marshalResult(inv.Result)
	if err != nil {
		return err
	}

	query := `
		UPDATE step_invocations
		SET status = $2, result = $3, error = $4, error_kind = $5, started_at = $6, finished_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		inv.ID,
		inv.Status,
		resultJSON,
		nullString(inv.Error),
		nullString(inv.ErrorKind),
		inv.StartedAt,
		inv.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update invocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает вызов по ID.
func (r *InvocationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invocation, error) {
	query := `
		SELECT id, step_type, inputs, status, result, error, error_kind, started_at, finished_at, created_at
		FROM step_invocations
		WHERE id = $1
	`
	return scanInvocation(r.pool.QueryRow(ctx, query, id))
}

// InvocationFilter — параметры фильтрации вызовов.
type InvocationFilter struct {
	StepType string
	Status   domain.InvocationStatus
	Limit    int
	Offset   int
}

// List возвращает вызовы, новые первыми.
func (r *InvocationRepo) List(ctx context.Context, filter InvocationFilter) ([]domain.Invocation, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, step_type, inputs, status, result, error, error_kind, started_at, finished_at, created_at
		FROM step_invocations
		WHERE ($1::text IS NULL OR step_type = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(filter.StepType),
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var out []domain.Invocation
	for rows.Next() {
		inv, err := scanInvocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

// scanInvocation сканирует одну строку в Invocation.
// pgx.Rows тоже реализует pgx.Row.
func scanInvocation(row pgx.Row) (*domain.Invocation, error) {
	var inv domain.Invocation
	var inputsJSON, resultJSON []byte
	var invError, errorKind *string

	err := row.Scan(
		&inv.ID,
		&inv.StepType,
		&inputsJSON,
		&inv.Status,
		&resultJSON,
		&invError,
		&errorKind,
		&inv.StartedAt,
		&inv.FinishedAt,
		&inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan invocation: %w", err)
	}

	if inputsJSON != nil {
		if err := json.Unmarshal(inputsJSON, &inv.Inputs); err != nil {
			return nil, fmt.Errorf("unmarshal inputs: %w", err)
		}
	}
	if resultJSON != nil {
		if err := json.Unmarshal(resultJSON, &inv.Result); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
	}
	if invError != nil {
		inv.Error = *invError
	}
	if errorKind != nil {
		inv.ErrorKind = *errorKind
	}

	return &inv, nil
}

// marshalResult возвращает nil для пустого результата (NULL в БД).
func marshalResult(result any) ([]byte, error) {
	if result == nil {
		return nil, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}
