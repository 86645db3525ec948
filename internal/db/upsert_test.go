package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ICTylor/json-to-relational/internal/model"
)

func TestUpsertSQL_UserSQLite(t *testing.T) {
	got := UpsertSQL(SQLite, &model.UserTable, false)
	assert.Equal(t,
		`INSERT INTO "user" ("id", "username", "email", "phone", "website", "name") VALUES (?, ?, ?, ?, ?, ?) `+
			`ON CONFLICT ("id") DO UPDATE SET "username" = EXCLUDED."username", "email" = EXCLUDED."email", `+
			`"phone" = EXCLUDED."phone", "website" = EXCLUDED."website", "name" = EXCLUDED."name"`,
		got)
}

func TestUpsertSQL_AddressPostgresReturning(t *testing.T) {
	got := UpsertSQL(Postgres, &model.AddressTable, true)
	assert.Equal(t,
		`INSERT INTO "address" ("street", "suite", "city", "zipcode", "user_id") VALUES ($1, $2, $3, $4, $5) `+
			`ON CONFLICT ("user_id") DO UPDATE SET "street" = EXCLUDED."street", "suite" = EXCLUDED."suite", `+
			`"city" = EXCLUDED."city", "zipcode" = EXCLUDED."zipcode" RETURNING "id"`,
		got)
}

func TestUpsertSQL_QuotesMixedCaseColumns(t *testing.T) {
	got := UpsertSQL(Postgres, &model.CompanyTable, true)
	assert.Contains(t, got, `"catchPhrase" = EXCLUDED."catchPhrase"`)
	assert.Contains(t, got, `ON CONFLICT ("user_id")`)
}

func TestUpsertSQL_NothingToUpdate(t *testing.T) {
	tbl := &model.Table{
		Name:    "tag",
		Key:     "id",
		Columns: []model.Column{{Name: "id", Type: model.ColumnInteger}},
	}
	got := UpsertSQL(SQLite, tbl, false)
	assert.Equal(t, `INSERT INTO "tag" ("id") VALUES (?) ON CONFLICT ("id") DO NOTHING`, got)
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "catchPhrase"})
	assert.Equal(t, `"id", "name", "catchPhrase"`, result)
}
