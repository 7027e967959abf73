package repomanager

import (
	"context"
	"database/sql"

	"github.com/myfinance/finauth/internal/dbx"
	"github.com/myfinance/finauth/internal/server/repositories/issuedtokens"
	"github.com/myfinance/finauth/internal/server/repositories/revokedtokens"
	"github.com/myfinance/finauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to either the pool or an open
// transaction, plus the schema-migration hook.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	IssuedTokens(db dbx.DBTX) issuedtokens.Repository
	RevokedTokens(db dbx.DBTX) revokedtokens.Repository
}
