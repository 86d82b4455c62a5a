package tables

import (
	"github.com/JonMunkholm/leaddesk/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

// The roster's "id" header carries the legacy system's identifier. It is
// stored as legacy_id and is the conflict key, so re-importing the same
// roster inserts nothing new.
var teamMembers = Def{
	Table: core.TableTeam,
	Label: "Team Members",
	Fields: []core.FieldSpec{
		required(renamed(field("id", core.FieldInt, "1024"), "legacy_id")),
		required(field("name", core.FieldText, "Priya Sharma")),
		field("email", core.FieldNullableText, "priya@example.com"),
		field("phone", core.FieldNullableText, "+91 98100 00001"),
		field("role", core.FieldNullableText, "sales"),
		field("is_active", core.FieldBool, "yes"),
		renamed(field("created_at", core.FieldTimestamp, "15-01-2024 10:30"), "joined_at"),
	},
	ConflictKey: "legacy_id",
	Map:         mapper(mapTeamMember),
}

type teamMember struct {
	LegacyID pgtype.Int8
	Name     pgtype.Text
	Email    pgtype.Text
	Phone    pgtype.Text
	Role     pgtype.Text
	IsActive pgtype.Bool
	JoinedAt pgtype.Timestamp
}

func mapTeamMember(r core.Row) (teamMember, error) {
	id, err := core.RequireInt(r, "id")
	if err != nil {
		return teamMember{}, err
	}
	name, err := core.RequireText(r, "name")
	if err != nil {
		return teamMember{}, err
	}
	return teamMember{
		LegacyID: id,
		Name:     name,
		Email:    core.ToPgText(NormalizeEmail(r.Get("email"))),
		Phone:    core.ToPgText(NormalizePhone(r.Get("phone"))),
		Role:     core.ToPgText(r.Get("role")),
		IsActive: core.ToPgBool(r.Get("is_active")),
		JoinedAt: core.ToPgTimestamp(r.Get("created_at")),
	}, nil
}

func (m teamMember) values() []any {
	return []any{m.LegacyID, m.Name, m.Email, m.Phone, m.Role, m.IsActive, m.JoinedAt}
}
