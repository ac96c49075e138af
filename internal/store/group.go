package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/pablodelgado26/family-organizer/internal/model"
)

type GroupStore struct {
	db *sql.DB
}

func NewGroupStore(db *sql.DB) *GroupStore {
	return &GroupStore{db: db}
}

func scanGroup(scanner interface{ Scan(...any) error }) (*model.FamilyGroup, error) {
	var g model.FamilyGroup
	var tempCode sql.NullString
	var tempExpires sql.NullTime

	err := scanner.Scan(&g.ID, &g.Name, &g.InviteCode, &tempCode, &tempExpires, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tempCode.Valid {
		g.TempCode = &tempCode.String
	}
	if tempExpires.Valid {
		t := tempExpires.Time
		g.TempExpiresAt = &t
	}
	return &g, nil
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.GroupMember, error) {
	var m model.GroupMember
	err := scanner.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const groupCols = `id, name, invite_code, temp_invite_code, temp_invite_expires_at, created_at, updated_at`
const memberCols = `id, group_id, user_id, role, created_at, updated_at`

// Create inserts a group with its permanent invite code. Codes are stored
// uppercase so lookups can compare case-insensitively.
func (s *GroupStore) Create(name, inviteCode string) (*model.FamilyGroup, error) {
	result, err := s.db.Exec(
		`INSERT INTO family_groups (name, invite_code) VALUES (?, ?)`,
		name, strings.ToUpper(inviteCode),
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroupStore) GetByID(id int64) (*model.FamilyGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM family_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// GetByInviteCode looks a group up by its permanent code, case-insensitively.
func (s *GroupStore) GetByInviteCode(code string) (*model.FamilyGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM family_groups WHERE invite_code = ?`, strings.ToUpper(code))
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group by invite code: %w", err)
	}
	return g, nil
}

// GetByTempCode looks a group up by its current temporary code,
// case-insensitively. Expiry is not checked here; callers decide what a
// stale code means.
func (s *GroupStore) GetByTempCode(code string) (*model.FamilyGroup, error) {
	row := s.db.QueryRow(`SELECT `+groupCols+` FROM family_groups WHERE temp_invite_code = ?`, strings.ToUpper(code))
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group by temp code: %w", err)
	}
	return g, nil
}

func (s *GroupStore) Update(id int64, name string) (*model.FamilyGroup, error) {
	_, err := s.db.Exec(`UPDATE family_groups SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	return s.GetByID(id)
}

func (s *GroupStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM family_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return nil
}

// ReplaceTempCode sets the group's current temporary code and expiry in a
// single statement. Whatever code was there before stops matching
// immediately, which is the "regenerate invalidates previous" contract.
func (s *GroupStore) ReplaceTempCode(groupID int64, code string, expiresAt time.Time) error {
	_, err := s.db.Exec(
		`UPDATE family_groups SET temp_invite_code = ?, temp_invite_expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.ToUpper(code), expiresAt.UTC(), groupID,
	)
	if err != nil {
		return fmt.Errorf("replace temp code: %w", err)
	}
	return nil
}

// ReplacePermanentCode rotates the group's permanent invite code. The old
// code stops matching immediately.
func (s *GroupStore) ReplacePermanentCode(groupID int64, code string) error {
	_, err := s.db.Exec(
		`UPDATE family_groups SET invite_code = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		strings.ToUpper(code), groupID,
	)
	if err != nil {
		return fmt.Errorf("replace permanent code: %w", err)
	}
	return nil
}

func (s *GroupStore) AddMember(groupID, userID int64, role string) (*model.GroupMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO group_members (group_id, user_id, role) VALUES (?, ?, ?)`,
		groupID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM group_members WHERE id = ?`, id)
	return scanMember(row)
}

func (s *GroupStore) RemoveMember(groupID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *GroupStore) GetMember(groupID, userID int64) (*model.GroupMember, error) {
	row := s.db.QueryRow(
		`SELECT `+memberCols+` FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *GroupStore) ListMembers(groupID int64) ([]model.MemberDetail, error) {
	rows, err := s.db.Query(
		`SELECT gm.user_id, u.name, u.email, gm.role, gm.created_at
		 FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY gm.created_at ASC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.MemberDetail
	for rows.Next() {
		var m model.MemberDetail
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *GroupStore) CountMembers(groupID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return n, nil
}

func (s *GroupStore) ListGroupsForUser(userID int64) ([]model.GroupWithRole, error) {
	rows, err := s.db.Query(
		`SELECT g.id, g.name, g.invite_code, g.temp_invite_code, g.temp_invite_expires_at, g.created_at, g.updated_at, gm.role
		 FROM family_groups g
		 JOIN group_members gm ON g.id = gm.group_id
		 WHERE gm.user_id = ?
		 ORDER BY g.name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	defer rows.Close()

	var groups []model.GroupWithRole
	for rows.Next() {
		var g model.GroupWithRole
		var tempCode sql.NullString
		var tempExpires sql.NullTime
		if err := rows.Scan(&g.ID, &g.Name, &g.InviteCode, &tempCode, &tempExpires, &g.CreatedAt, &g.UpdatedAt, &g.Role); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if tempCode.Valid {
			g.TempCode = &tempCode.String
		}
		if tempExpires.Valid {
			t := tempExpires.Time
			g.TempExpiresAt = &t
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
