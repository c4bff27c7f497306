package sql

import "database/sql"

// GetTxFromProductRepo is a test helper to extract transaction from ProductRepository.
func GetTxFromProductRepo(repo *ProductRepository) *sql.Tx {
	return repo.txn
}

func EscapeLike(s string) string {
	return escapeLike(s)
}

func TranslateError(err error) error {
	return translateError(err)
}
