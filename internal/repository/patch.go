package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/eco-stations/internal/model"
)

// assignment is one "column = ?" pair of an UPDATE statement.  Column
// names only ever come from the patch types below, never from request
// input.
type assignment struct {
	column string
	value  any
}

// UserPatch lists the user columns an update may touch.  Nil fields are
// left unchanged.
type UserPatch struct {
	Username     *string
	Email        *string
	Role         *model.Role
	PasswordHash *string
}

func (p UserPatch) assignments() []assignment {
	var out []assignment
	if p.Username != nil {
		out = append(out, assignment{"username", *p.Username})
	}
	if p.Email != nil {
		out = append(out, assignment{"email", *p.Email})
	}
	if p.Role != nil {
		out = append(out, assignment{"role", string(*p.Role)})
	}
	if p.PasswordHash != nil {
		out = append(out, assignment{"hashed_password", *p.PasswordHash})
	}
	return out
}

// StationPatch lists the station columns an administrator may edit.
type StationPatch struct {
	Name      *string
	Address   *string
	District  *string
	AdmArea   *string
	Owner     *string
	EcoStatus *bool
	Latitude  *float64
	Longitude *float64
	TestDate  *time.Time
}

func (p StationPatch) assignments() []assignment {
	var out []assignment
	if p.Name != nil {
		out = append(out, assignment{"name", *p.Name})
	}
	if p.Address != nil {
		out = append(out, assignment{"address", *p.Address})
	}
	if p.District != nil {
		out = append(out, assignment{"district", *p.District})
	}
	if p.AdmArea != nil {
		out = append(out, assignment{"admarea", *p.AdmArea})
	}
	if p.Owner != nil {
		out = append(out, assignment{"owner", *p.Owner})
	}
	if p.EcoStatus != nil {
		out = append(out, assignment{"eco_status", *p.EcoStatus})
	}
	if p.Latitude != nil {
		out = append(out, assignment{"latitude", *p.Latitude})
	}
	if p.Longitude != nil {
		out = append(out, assignment{"longitude", *p.Longitude})
	}
	if p.TestDate != nil {
		out = append(out, assignment{"test_date", p.TestDate.Format("2006-01-02")})
	}
	return out
}

// ReviewPatch lists the review columns an administrator may edit.
type ReviewPatch struct {
	Rating  *int
	Comment *string
}

func (p ReviewPatch) assignments() []assignment {
	var out []assignment
	if p.Rating != nil {
		out = append(out, assignment{"rating", *p.Rating})
	}
	if p.Comment != nil {
		out = append(out, assignment{"comment", *p.Comment})
	}
	return out
}

// buildUpdate renders a single-row UPDATE for the given assignments.
func buildUpdate(table string, id uint64, sets []assignment) (string, []any) {
	cols := make([]string, 0, len(sets))
	args := make([]any, 0, len(sets)+1)
	for _, a := range sets {
		cols = append(cols, a.column+" = ?")
		args = append(args, a.value)
	}
	args = append(args, id)
	return "UPDATE " + table + " SET " + strings.Join(cols, ", ") + " WHERE id = ?", args
}

// updateByID applies sets to the row id of table.  The row is looked up
// first because MySQL reports zero affected rows for no-op updates, which
// would be indistinguishable from a missing row.  An empty patch only
// checks existence.
func updateByID(ctx context.Context, db *sql.DB, table string, id uint64, sets []assignment) error {
	var one int
	err := db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}
	q, args := buildUpdate(table, id, sets)
	if _, err := db.ExecContext(ctx, q, args...); err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}
