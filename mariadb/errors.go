package mariadb

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/nuvix/sqldoc/dberrors"
)

// mysqlErrorKind is the authoritative MariaDB/MySQL error-code -> Kind
// mapping from §7. Keyed by MySQLError.Number (the numeric code; the
// symbolic ER_* names from the spec are recorded alongside for readability).
var mysqlErrorKind = map[uint16]struct {
	subject dberrors.DuplicateSubject
	kind    dberrors.Kind
	name    string
}{
	1205: {dberrors.DuplicateUnknown, dberrors.KindTimeout, "LOCK_WAIT_TIMEOUT"},
	1213: {dberrors.DuplicateUnknown, dberrors.KindTimeout, "DEADLOCK"},
	1050: {dberrors.DuplicateTable, dberrors.KindDuplicate, "ER_TABLE_EXISTS_ERROR"},
	1060: {dberrors.DuplicateColumn, dberrors.KindDuplicate, "ER_DUP_FIELDNAME"},
	1061: {dberrors.DuplicateIndex, dberrors.KindDuplicate, "ER_DUP_KEYNAME"},
	1062: {dberrors.DuplicateRow, dberrors.KindDuplicate, "ER_DUP_ENTRY"},
	1406: {dberrors.DuplicateUnknown, dberrors.KindTruncation, "ER_DATA_TOO_LONG"},
	1264: {dberrors.DuplicateUnknown, dberrors.KindTruncation, "ER_WARN_DATA_OUT_OF_RANGE"},
	1049: {dberrors.DuplicateUnknown, dberrors.KindNotFound, "ER_BAD_DB_ERROR"},
}

// mapError implements the mapping policy of §7.4: map when a code matches,
// re-raise unchanged otherwise.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dberrors.NewTimeout("statement exceeded deadline", "PROTOCOL_SEQUENCE_TIMEOUT", err)
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		if rule, ok := mysqlErrorKind[me.Number]; ok {
			switch rule.kind {
			case dberrors.KindDuplicate:
				return dberrors.NewDuplicate(rule.subject, extractEntity(me.Message), rule.name, err)
			case dberrors.KindTruncation:
				return dberrors.NewTruncation(me.Message, rule.name, err)
			case dberrors.KindTimeout:
				return dberrors.NewTimeout(me.Message, rule.name, err)
			case dberrors.KindNotFound:
				return dberrors.NewNotFound(me.Message, err)
			}
		}
	}
	if strings.Contains(err.Error(), "max_statement_time exceeded") {
		return dberrors.NewTimeout(err.Error(), "PROTOCOL_SEQUENCE_TIMEOUT", err)
	}
	return err
}

// extractEntity pulls the quoted identifier MySQL embeds in duplicate-key
// messages, e.g. "Duplicate entry 'a' for key 'users.uid'" -> "a".
func extractEntity(msg string) string {
	start := strings.IndexByte(msg, '\'')
	if start < 0 {
		return msg
	}
	end := strings.IndexByte(msg[start+1:], '\'')
	if end < 0 {
		return msg
	}
	return msg[start+1 : start+1+end]
}
