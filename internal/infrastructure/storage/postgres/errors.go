package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"szafa/internal/core/apperror"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// uniqueEntities maps unique constraint names to the entity and field they protect.
var uniqueEntities = map[string][2]string{
	"products_code_key":                     {"product", "code"},
	"product_categories_name_type_key":      {"product_category", "name"},
	"companies_name_key":                    {"company", "name"},
	"departments_name_key":                  {"department", "name"},
	"positions_name_key":                    {"position", "name"},
	"suppliers_name_key":                    {"supplier", "name"},
	"employees_card_number_key":             {"employee", "card_number"},
	"issue_documents_document_number_key":   {"issue_document", "document_number"},
	"receipt_documents_document_number_key": {"receipt_document", "document_number"},
	"pending_products_code_key":             {"pending_product", "code"},
}

// WrapDBError converts constraint violations into application errors: unique violations
// become apperror.CodeDuplicate and foreign key violations apperror.CodeProtected.
// Other errors are returned unchanged.
func WrapDBError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		entity, field := pgErr.TableName, pgErr.ConstraintName
		if known, ok := uniqueEntities[pgErr.ConstraintName]; ok {
			entity, field = known[0], known[1]
		}
		return apperror.NewDuplicate(entity, field, pgErr.Detail).WithCause(err)
	case pgForeignKeyViolation:
		// On delete TableName is the referencing table.
		return apperror.NewProtected("record", pgErr.TableName).WithCause(err)
	case pgCheckViolation:
		return apperror.NewValidation("value violates constraint " + pgErr.ConstraintName).WithCause(err)
	}
	return err
}

// ForEntity names entity in a protected-delete error produced by WrapDBError.
func ForEntity(err error, entity string) error {
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeProtected {
		return err
	}
	dependency, _ := appErr.Details["dependency"].(string)
	return apperror.NewProtected(entity, dependency).WithCause(appErr.Err)
}
