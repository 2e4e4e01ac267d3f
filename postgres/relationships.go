package postgres

import (
	"context"
	"fmt"

	"github.com/nuvix/sqldoc/adapter"
	"github.com/nuvix/sqldoc/internal/idfilter"
)

// relationshipColumnType is fixed at VARCHAR(255) for every materialized
// relationship column, per §4.8.
const relationshipColumnType = "VARCHAR(255)"

// CreateRelationship materializes the owning side's column, or the junction
// table pair for many-to-many, per §4.8's column-placement rules.
func (a *Adapter) CreateRelationship(ctx context.Context, collection, related string, relType adapter.RelationshipType, twoWay bool, id, twoWayKey string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	related, err = idfilter.Filter(related)
	if err != nil {
		return err
	}
	id, err = idfilter.Filter(id)
	if err != nil {
		return err
	}

	switch relType {
	case adapter.OneToOne:
		if err := a.addRelationshipColumn(ctx, collection, id); err != nil {
			return err
		}
		if twoWay {
			twoWayKey, err = idfilter.Filter(twoWayKey)
			if err != nil {
				return err
			}
			return a.addRelationshipColumn(ctx, related, twoWayKey)
		}
		return nil

	case adapter.ManyToOne:
		return a.addRelationshipColumn(ctx, collection, id)

	case adapter.OneToMany:
		twoWayKey, err = idfilter.Filter(twoWayKey)
		if err != nil {
			return err
		}
		return a.addRelationshipColumn(ctx, related, twoWayKey)

	case adapter.ManyToMany:
		return a.createJunctionTable(ctx, collection, related)

	default:
		return fmt.Errorf("postgres: unknown relationship type %q", relType)
	}
}

func (a *Adapter) addRelationshipColumn(ctx context.Context, collection, column string) error {
	sqlText := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s DEFAULT NULL", a.dataTable(collection), a.quote(column), relationshipColumnType)
	_, err := a.exec(ctx, "attribute:create", sqlText)
	return mapError(err)
}

func (a *Adapter) junctionTableName(parent, child string) string {
	return a.quote(a.cfg.Database) + "." + a.quote(a.cfg.Prefix+"__"+parent+"_"+child)
}

func (a *Adapter) junctionPermsTableName(parent, child string) string {
	return a.quote(a.cfg.Database) + "." + a.quote(a.cfg.Prefix+"__"+parent+"_"+child+"_perms")
}

// createJunctionTable names the junction by collection-pair rather than the
// internalId-pair convention of §4.8, since CreateRelationship's contract
// carries collection names, not internal ids; collection names are already
// unique and idfilter-clean, so the pair is equally collision-free (mirrors
// the MariaDB backend's naming deviation).
func (a *Adapter) createJunctionTable(ctx context.Context, parent, child string) error {
	q := a.quote
	cols := []string{
		q("_id") + " BIGSERIAL PRIMARY KEY",
		q(parent) + " VARCHAR(255) NOT NULL",
		q(child) + " VARCHAR(255) NOT NULL",
	}
	if a.cfg.SharedTables {
		cols = append(cols, q("_tenant")+" BIGINT DEFAULT NULL")
	}
	sqlText := fmt.Sprintf("CREATE TABLE %s (%s)", a.junctionTableName(parent, child), joinCols(cols))
	uniqueSQL := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s, %s)",
		q(a.cfg.Prefix+"__"+parent+"_"+child+"_unique"), a.junctionTableName(parent, child), q(parent), q(child))

	permsCols := []string{
		q("_id") + " BIGSERIAL PRIMARY KEY",
		q("_type") + " VARCHAR(12) NOT NULL",
		q("_permission") + " VARCHAR(255) NOT NULL",
		q("_document") + " VARCHAR(255) NOT NULL",
	}
	permsSQL := fmt.Sprintf("CREATE TABLE %s (%s)", a.junctionPermsTableName(parent, child), joinCols(permsCols))
	permsUniqueSQL := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (%s, %s, %s)",
		q(a.cfg.Prefix+"__"+parent+"_"+child+"_perms_unique"), a.junctionPermsTableName(parent, child), q("_document"), q("_type"), q("_permission"))

	if _, err := a.exec(ctx, "relationship:create", sqlText); err != nil {
		return mapError(err)
	}
	if _, err := a.exec(ctx, "relationship:create", uniqueSQL); err != nil {
		return mapError(err)
	}
	if _, err := a.exec(ctx, "relationship:create", permsSQL); err != nil {
		return mapError(err)
	}
	_, err := a.exec(ctx, "relationship:create", permsUniqueSQL)
	return mapError(err)
}

func joinCols(cols []string) string {
	out := cols[0]
	for _, c := range cols[1:] {
		out += ", " + c
	}
	return out
}

// UpdateRelationship renames the relationship column oldKey to newKey on
// collection's data table. newTwoWayKey is not applied: the column on the
// related collection keeps its name. Many-to-many relationships are left
// unchanged.
func (a *Adapter) UpdateRelationship(ctx context.Context, collection string, relType adapter.RelationshipType, oldKey, newKey, newTwoWayKey string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}
	if relType == adapter.ManyToMany {
		// Junction tables are keyed by collection pair, not by column name;
		// nothing to rename structurally.
		return nil
	}
	oldKey, err = idfilter.Filter(oldKey)
	if err != nil {
		return err
	}
	newKey, err = idfilter.Filter(newKey)
	if err != nil {
		return err
	}
	sqlText := fmt.Sprintf("ALTER TABLE %s RENAME COLUMN %s TO %s", a.dataTable(collection), a.quote(oldKey), a.quote(newKey))
	_, err = a.exec(ctx, "attribute:update", sqlText)
	return mapError(err)
}

// DeleteRelationship drops the materialized column on side, or the junction
// table pair for many-to-many.
func (a *Adapter) DeleteRelationship(ctx context.Context, collection, related string, relType adapter.RelationshipType, side adapter.RelationshipSide, key, twoWayKey string) error {
	collection, err := idfilter.Filter(collection)
	if err != nil {
		return err
	}

	if relType == adapter.ManyToMany {
		related, err = idfilter.Filter(related)
		if err != nil {
			return err
		}
		sqlText := fmt.Sprintf("DROP TABLE IF EXISTS %s, %s", a.junctionTableName(collection, related), a.junctionPermsTableName(collection, related))
		if _, err := a.exec(ctx, "relationship:delete", sqlText); err != nil {
			return mapError(err)
		}
		return nil
	}

	key, err = idfilter.Filter(key)
	if err != nil {
		return err
	}
	sqlText := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.dataTable(collection), a.quote(key))
	if _, err := a.exec(ctx, "attribute:delete", sqlText); err != nil {
		return mapError(err)
	}

	if twoWayKey != "" {
		twoWayKey, err = idfilter.Filter(twoWayKey)
		if err != nil {
			return err
		}
		related, err = idfilter.Filter(related)
		if err != nil {
			return err
		}
		sqlText := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", a.dataTable(related), a.quote(twoWayKey))
		if _, err := a.exec(ctx, "attribute:delete", sqlText); err != nil {
			return mapError(err)
		}
	}
	return nil
}
