package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/lib/pq"

	"github.com/nuvix/sqldoc/dberrors"
)

// pgErrorKind is the authoritative Postgres SQLSTATE -> Kind mapping from §7.
var pgErrorKind = map[string]struct {
	subject dberrors.DuplicateSubject
	kind    dberrors.Kind
}{
	"57014": {dberrors.DuplicateUnknown, dberrors.KindTimeout},
	"40P01": {dberrors.DuplicateUnknown, dberrors.KindTimeout}, // deadlock_detected
	"42P07": {dberrors.DuplicateTable, dberrors.KindDuplicate},
	"42701": {dberrors.DuplicateColumn, dberrors.KindDuplicate},
	"23505": {dberrors.DuplicateRow, dberrors.KindDuplicate},
	"22001": {dberrors.DuplicateUnknown, dberrors.KindTruncation},
}

// mapError implements the mapping policy of §7.4.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return dberrors.NewTimeout("statement exceeded deadline", "57014", err)
	}
	var pe *pq.Error
	if errors.As(err, &pe) {
		code := string(pe.Code)
		if rule, ok := pgErrorKind[code]; ok {
			switch rule.kind {
			case dberrors.KindDuplicate:
				return dberrors.NewDuplicate(rule.subject, entityFromDetail(pe), code, err)
			case dberrors.KindTruncation:
				return dberrors.NewTruncation(pe.Message, code, err)
			case dberrors.KindTimeout:
				return dberrors.NewTimeout(pe.Message, code, err)
			}
		}
		// Index-name conflicts also arrive as 42P07 ("relation ... already
		// exists"); the lookup above already returns every 42P07 as a
		// duplicate table, so this check does not change the result.
		if code == "42P07" && strings.Contains(pe.Message, "index") {
			return dberrors.NewDuplicate(dberrors.DuplicateIndex, pe.Message, code, err)
		}
	}
	return err
}

func entityFromDetail(pe *pq.Error) string {
	if pe.Detail != "" {
		return pe.Detail
	}
	return pe.Message
}
