package hierarchy

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"orghierarchy-backend/shared/database/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestGormStoreGet(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "name", "slug", "org_type", "hierarchy_level", "settings"}).
			AddRow(id, "Acme Group", "acme-group", "HOLDING_COMPANY", 0, []byte(`{"theme":"dark"}`))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "organizations" WHERE id = $1`)).WillReturnRows(rows)

		org, err := store.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "acme-group", org.Slug)
		assert.Equal(t, models.OrgTypeHoldingCompany, org.OrgType)
		assert.Equal(t, "dark", org.Settings["theme"])
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "organizations" WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := store.Get(context.Background(), id)
		assert.ErrorIs(t, err, ErrOrganizationNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreFindChildren(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	parentA, parentB, child := uuid.New(), uuid.New(), uuid.New()

	children, err := store.FindChildren(context.Background(), nil, ChildFilter{})
	require.NoError(t, err)
	assert.Empty(t, children)

	rows := sqlmock.NewRows([]string{"id", "slug", "org_type", "parent_org_id", "hierarchy_level"}).
		AddRow(child, "acme-brand", "BRAND", parentA, 1)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "organizations" WHERE parent_org_id IN ($1,$2) AND org_type IN ($3) ORDER BY display_order ASC,created_at ASC,id ASC`)).
		WithArgs(parentA, parentB, "BRAND").
		WillReturnRows(rows)

	children, err = store.FindChildren(context.Background(), []uuid.UUID{parentA, parentB}, ChildFilter{OrgTypes: []models.OrgType{models.OrgTypeBrand}})
	require.NoError(t, err)
	require.Len(t, children, 1)
	require.NotNil(t, children[0].ParentOrgID)
	assert.Equal(t, parentA, *children[0].ParentOrgID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreExistsSlugOrDomain(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)

	exists, err := store.ExistsSlugOrDomain(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "organizations" WHERE slug = $1 OR domain = $2`)).
		WithArgs("acme", "acme.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	exists, err = store.ExistsSlugOrDomain(context.Background(), "acme", "acme.com")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "organizations" WHERE domain = $1`)).
		WithArgs("free.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	exists, err = store.ExistsSlugOrDomain(context.Background(), "", "free.com")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreInsertMapsUniqueViolations(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{"slug", slugIndexName, ErrSlugTaken},
		{"domain", domainIndexName, ErrDomainTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewGormStore(db)

			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "organizations"`)).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint, Detail: "Key already exists."})

			err := store.Insert(context.Background(), &models.Organization{ID: uuid.New(), Name: "Acme", Slug: "acme", OrgType: models.OrgTypeBrand})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestMapPgError(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Equal(t, plain, mapPgError(plain))

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "fk_organizations_parent"}
	assert.Equal(t, error(fk), mapPgError(fk))

	other := &pgconn.PgError{Code: "23505", ConstraintName: "organizations_pkey"}
	assert.Equal(t, error(other), mapPgError(other))
}

func TestGormStoreDelete(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "organizations" WHERE id = $1`)).
		WithArgs(id).
		WillReturnError(&pgconn.PgError{Code: "23503", Detail: "Key is still referenced"})
	assert.ErrorIs(t, store.Delete(context.Background(), id), ErrOrganizationHasChildren)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "organizations" WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Delete(context.Background(), id), ErrOrganizationNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "organizations" WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, store.Delete(context.Background(), id))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreAggregateCountsByType(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT org_type, COUNT(*) AS count FROM "organizations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"org_type", "count"}).
			AddRow("BRAND", 3).
			AddRow("SUBSIDIARY", 1))

	counts, err := store.AggregateCountsByType(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[models.OrgType]int64{models.OrgTypeBrand: 3, models.OrgTypeSubsidiary: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTransactionCommitsInsertAndAudit(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	sink := NewGormAuditSink(db)
	org := &models.Organization{ID: uuid.New(), Name: "Acme Widgets", Slug: "acme-widgets", OrgType: models.OrgTypeSubsidiary}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "organizations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(org.ID))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New()))
	mock.ExpectCommit()

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		if err := store.Insert(ctx, org); err != nil {
			return err
		}
		return sink.Record(ctx, AuditRecord{
			Action:         AuditActionChildCreated,
			OrganizationID: org.ID,
			OccurredAt:     time.Now(),
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTransactionRollsBackOnAuditFailure(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	sink := NewGormAuditSink(db)
	org := &models.Organization{ID: uuid.New(), Name: "Acme Widgets", Slug: "acme-widgets", OrgType: models.OrgTypeSubsidiary}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "organizations"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(org.ID))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_logs"`)).
		WillReturnError(errors.New("relation \"audit_logs\" does not exist"))
	mock.ExpectRollback()

	err := store.Transaction(context.Background(), func(ctx context.Context) error {
		if err := store.Insert(ctx, org); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return store.Transaction(ctx, func(ctx context.Context) error {
			return sink.Record(ctx, AuditRecord{Action: AuditActionChildCreated, OrganizationID: org.ID})
		})
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write audit record hierarchy.child_created")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreUpdateLogoURL(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "organizations" SET "logo_url"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.UpdateLogoURL(context.Background(), id, "http://cdn/logo.png"), ErrOrganizationNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "organizations" SET "logo_url"=$1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, store.UpdateLogoURL(context.Background(), id, "http://cdn/logo.png"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
