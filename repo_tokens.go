package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TokenRecords is the durable record of token issuance and liveness. It is
// the only shared mutable state the auth flow touches: every liveness check
// is a fresh read, so a revocation is visible to the very next request.
type TokenRecords interface {
	repository.Repository[*TokenRecord]

	Create(ctx context.Context, record *TokenRecord, criteria ...repository.InsertCriteria) (*TokenRecord, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *TokenRecord, criteria ...repository.InsertCriteria) (*TokenRecord, error)

	FindByToken(ctx context.Context, token string) (*TokenRecord, error)
	FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*TokenRecord, error)

	FindAllLiveByAccount(ctx context.Context, accountID uuid.UUID) ([]*TokenRecord, error)
	FindAllLiveByAccountTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) ([]*TokenRecord, error)

	// RevokeAllLive marks every live record for the account revoked and
	// expired. Callers issuing a replacement token must run this and the
	// insert inside the same transaction to keep at most one live record
	// per account.
	RevokeAllLive(ctx context.Context, accountID uuid.UUID) error
	RevokeAllLiveTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error

	// Revoke invalidates a single record by token string. Unknown tokens
	// are a no-op so logout stays idempotent.
	Revoke(ctx context.Context, token string) error
	RevokeTx(ctx context.Context, tx bun.IDB, token string) error

	IsLive(ctx context.Context, token string) (bool, error)
}

type tokenRecords struct {
	repository.Repository[*TokenRecord]
	db *bun.DB
}

var (
	_ TokenRecords                        = (*tokenRecords)(nil)
	_ repository.Repository[*TokenRecord] = (*tokenRecords)(nil)
)

func NewTokenRecordsRepository(db *bun.DB) TokenRecords {
	repo := repository.NewRepository[*TokenRecord](db, repository.ModelHandlers[*TokenRecord]{
		NewRecord: func() *TokenRecord { return &TokenRecord{} },
		GetID: func(t *TokenRecord) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *TokenRecord, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &tokenRecords{
		Repository: repo,
		db:         db,
	}
}

func (r *tokenRecords) Create(ctx context.Context, record *TokenRecord, criteria ...repository.InsertCriteria) (*TokenRecord, error) {
	return r.CreateTx(ctx, r.db, record, criteria...)
}

func (r *tokenRecords) CreateTx(ctx context.Context, tx bun.IDB, record *TokenRecord, criteria ...repository.InsertCriteria) (*TokenRecord, error) {
	if record != nil {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		if record.Kind == "" {
			record.Kind = TokenKindBearer
		}
	}
	return r.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (r *tokenRecords) FindByToken(ctx context.Context, token string) (*TokenRecord, error) {
	return r.FindByTokenTx(ctx, r.db, token)
}

func (r *tokenRecords) FindByTokenTx(ctx context.Context, tx bun.IDB, token string) (*TokenRecord, error) {
	record := &TokenRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

func (r *tokenRecords) FindAllLiveByAccount(ctx context.Context, accountID uuid.UUID) ([]*TokenRecord, error) {
	return r.FindAllLiveByAccountTx(ctx, r.db, accountID)
}

func (r *tokenRecords) FindAllLiveByAccountTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) ([]*TokenRecord, error) {
	var records []*TokenRecord
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.account_id = ?", accountID).
		Where("?TableAlias.revoked = ?", false).
		Where("?TableAlias.expired = ?", false).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (r *tokenRecords) RevokeAllLive(ctx context.Context, accountID uuid.UUID) error {
	return r.RevokeAllLiveTx(ctx, r.db, accountID)
}

func (r *tokenRecords) RevokeAllLiveTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_tokens" AS "tok"
		SET
			"revoked" = ?,
			"expired" = ?
		WHERE
			("tok".account_id = ?)
			AND "tok"."revoked" = ?
			AND "tok"."expired" = ?;
	`, true, true, accountID, false, false).Exec(ctx)

	return err
}

func (r *tokenRecords) Revoke(ctx context.Context, token string) error {
	return r.RevokeTx(ctx, r.db, token)
}

func (r *tokenRecords) RevokeTx(ctx context.Context, tx bun.IDB, token string) error {
	_, err := tx.NewRaw(`
		UPDATE "auth_tokens" AS "tok"
		SET
			"revoked" = ?,
			"expired" = ?
		WHERE
			("tok".token = ?);
	`, true, true, token).Exec(ctx)

	return err
}

func (r *tokenRecords) IsLive(ctx context.Context, token string) (bool, error) {
	record, err := r.FindByToken(ctx, token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return false, nil
		}
		return false, err
	}

	return record.IsLive(), nil
}
