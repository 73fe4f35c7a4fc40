package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/followhub/internal/dbx"
	"github.com/dmitrijs2005/followhub/internal/server/repositories/userindex"
	"github.com/dmitrijs2005/followhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	UserIndex(db dbx.DBTX) userindex.Repository
}
