package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"membership-backend/internal/models"
)

const memberColumns = `id, user_id, full_name, contact_email, phone_number, address, status, created_at, updated_at`

func (s *Storage) ListMembers(ctx context.Context) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY created_at DESC`

	members := make([]models.Member, 0)
	if err := s.db.SelectContext(ctx, &members, query); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	if err := s.attachMemberAccounts(ctx, members, ids); err != nil {
		return nil, err
	}
	return members, nil
}

func (s *Storage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`

	var member models.Member
	if err := s.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	accounts := make([]models.Account, 0)
	err := s.db.SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts WHERE member_id = $1 ORDER BY open_date DESC`, id)
	if err != nil {
		return nil, err
	}
	member.Accounts = accounts
	return &member, nil
}

func (s *Storage) CreateMember(ctx context.Context, input models.CreateMemberInput) (*models.Member, error) {
	status := models.MemberStatusActive
	if input.Status != nil {
		status = *input.Status
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO members (id, user_id, full_name, contact_email, phone_number, address, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, input.UserID, input.FullName, input.ContactEmail, input.PhoneNumber, input.Address, status)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s.GetMember(ctx, id)
}

// UpdateMember applies a partial update: nil input fields are left untouched.
func (s *Storage) UpdateMember(ctx context.Context, id string, input models.UpdateMemberInput) (*models.Member, error) {
	var b updateBuilder
	if input.UserID != nil {
		b.set("user_id", nullIfEmpty(*input.UserID))
	}
	if input.FullName != nil {
		b.set("full_name", *input.FullName)
	}
	if input.ContactEmail != nil {
		b.set("contact_email", *input.ContactEmail)
	}
	if input.PhoneNumber != nil {
		b.set("phone_number", nullIfEmpty(*input.PhoneNumber))
	}
	if input.Address != nil {
		b.set("address", nullIfEmpty(*input.Address))
	}
	if input.Status != nil {
		b.set("status", *input.Status)
	}

	if b.empty() {
		return s.GetMember(ctx, id)
	}
	b.set("updated_at", time.Now().UTC())

	query, args := b.query("members", id)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrInvalidReference
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetMember(ctx, id)
}

func (s *Storage) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Storage) attachMemberAccounts(ctx context.Context, members []models.Member, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	accounts := make([]models.Account, 0)
	err := s.db.SelectContext(ctx, &accounts,
		`SELECT `+accountColumns+` FROM accounts WHERE member_id = ANY($1) ORDER BY open_date DESC`, pq.Array(ids))
	if err != nil {
		return err
	}

	byMember := make(map[string][]models.Account, len(members))
	for _, account := range accounts {
		byMember[account.MemberID] = append(byMember[account.MemberID], account)
	}
	for i := range members {
		members[i].Accounts = byMember[members[i].ID]
	}
	return nil
}
