package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/aditya/go-gigs/internal/models"
	"github.com/aditya/go-gigs/pkg/utils"
	"github.com/jmoiron/sqlx"
)

// TransactionRepository stores at most one transaction per job. Create
// returns ErrDuplicate for a second one.
type TransactionRepository interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByJobID(ctx context.Context, jobID string) (*models.Transaction, error)
}

type transactionRepository struct {
	db *sqlx.DB
}

func NewTransactionRepository(db *sqlx.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = utils.GenerateID()
	}
	txn.CreatedAt = time.Now()

	query := `
		INSERT INTO transactions (id, job_id, payer_id, payee_id, amount,
			platform_fee, provider_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		txn.ID, txn.JobID, txn.PayerID, txn.PayeeID, txn.Amount,
		txn.PlatformFee, txn.ProviderAmount, txn.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *transactionRepository) GetByJobID(ctx context.Context, jobID string) (*models.Transaction, error) {
	var txn models.Transaction
	query := `SELECT * FROM transactions WHERE job_id = $1`
	err := r.db.GetContext(ctx, &txn, query, jobID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &txn, err
}
