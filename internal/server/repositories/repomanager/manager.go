package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notesum/internal/dbx"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/summaries"
	"github.com/dmitrijs2005/notesum/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Summaries(db dbx.DBTX) summaries.Repository
}
