package userstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"

	"github.com/avyure/go_workout_backend/internal/adapter/storage"
	"github.com/avyure/go_workout_backend/internal/adapter/storage/pgutil"
	"github.com/avyure/go_workout_backend/internal/domain"
	"github.com/avyure/go_workout_backend/internal/domain/user"
)

type PostgresStorage struct {
	db     storage.DBContext
	seenMu sync.Mutex
	seen   map[string]*user.User
}

func NewPostgresStorage(db storage.DBContext) *PostgresStorage {
	return &PostgresStorage{
		db:   db,
		seen: make(map[string]*user.User),
	}
}

func (s *PostgresStorage) Add(ctx context.Context, u *user.User) error {
	q := sqlf.InsertInto("users").
		Set("user_id", u.UserID).
		Set("email", u.Email).
		Set("password_hash", u.PasswordHash).
		Set("created_at", u.CreatedAt).
		Set("updated_at", u.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		if isUserDuplicated(err) {
			return errors.Join(fmt.Errorf("user exists: %w", err), user.ErrUserExists)
		}
		return storage.InternalError(err)
	}

	for i := range u.Authorizations {
		if err := s.addAuthorization(ctx, u.UserID, &u.Authorizations[i]); err != nil {
			return err
		}
	}

	s.markSeen(u)

	return nil
}

func (s *PostgresStorage) addAuthorization(ctx context.Context, userID string, a *user.Authorization) error {
	addAuth := sqlf.InsertInto("authorizations").
		Set("authorization_id", a.Identifier).
		Set("logout_at", a.LogoutAt).
		Set("created_at", a.CreatedAt).
		Set("valid_until", a.ValidUntil).
		Set("user_id", userID)

	addDevice := sqlf.InsertInto("devices").
		Set("authorization_id", a.Identifier).
		Set("os", a.Device.OS).
		Set("device_model", a.Device.Model).
		Set("ip_address", a.Device.IPAddress).
		Set("browser", a.Device.Browser)

	if _, err := addAuth.ExecAndClose(ctx, s.db); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user.ErrAuthorizationExists
		}
		return storage.InternalError(err)
	}

	if _, err := addDevice.ExecAndClose(ctx, s.db); err != nil {
		return storage.InternalError(err)
	}

	return nil
}

func (s *PostgresStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	users, err := s.get(ctx, "u.email = ?", email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrUserNotFound
	}
	s.markSeen(users[0])
	return users[0], nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, userID string) (*user.User, error) {
	users, err := s.get(ctx, "u.user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, user.ErrUserNotFound
	}
	s.markSeen(users[0])
	return users[0], nil
}

// Persist writes back field-level changes against the stored state and
// inserts authorizations the database has not seen yet.
func (s *PostgresStorage) Persist(ctx context.Context, u *user.User) error {
	dbState, err := s.get(ctx, "u.user_id = ?", u.UserID)
	if err != nil {
		return err
	}
	if len(dbState) == 0 {
		return user.ErrUserNotFound
	}
	stored := dbState[0]

	if log, _ := diff.Diff(stored, u); len(log) != 0 {
		q := sqlf.Update("users").Where("user_id = ?", u.UserID)
		q = pgutil.MakeUpdateQuery(q, log)

		res, err := q.ExecAndClose(ctx, s.db)
		if assertErr := pgutil.AssertUpdated(res, err, user.ErrUserNotFound); assertErr != nil {
			return assertErr
		}
	}

	storedAuth := make(map[string]*user.Authorization, len(stored.Authorizations))
	for i := range stored.Authorizations {
		storedAuth[stored.Authorizations[i].Identifier] = &stored.Authorizations[i]
	}

	for i := range u.Authorizations {
		a := &u.Authorizations[i]
		existing, ok := storedAuth[a.Identifier]
		if !ok {
			if err := s.addAuthorization(ctx, u.UserID, a); err != nil {
				return err
			}
			continue
		}
		if err := s.persistAuthorization(ctx, existing, a); err != nil {
			return err
		}
	}

	s.markSeen(u)

	return nil
}

func (s *PostgresStorage) persistAuthorization(ctx context.Context, stored, changed *user.Authorization) error {
	log, _ := diff.Diff(stored, changed)
	if len(log) == 0 {
		return nil
	}

	q := sqlf.Update("authorizations").Where("authorization_id = ?", stored.Identifier)
	q = pgutil.MakeUpdateQuery(q, log)

	if _, err := q.ExecAndClose(ctx, s.db); err != nil {
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	whereClause string,
	whereArgs ...any,
) ([]*user.User, error) {
	var tmp userWithAuthRow

	q := sqlf.From("users u").
		LeftJoin("authorizations a", "u.user_id = a.user_id").
		LeftJoin("devices d", "d.authorization_id = a.authorization_id").
		Where(whereClause, whereArgs...).
		Select("u.user_id").To(&tmp.UserID).
		Select("u.email").To(&tmp.Email).
		Select("u.password_hash").To(&tmp.PasswordHash).
		Select("u.created_at").To(&tmp.CreatedAt).
		Select("u.updated_at").To(&tmp.UpdatedAt).
		Select("a.authorization_id").To(&tmp.AuthorizationID).
		Select("a.logout_at").To(&tmp.LogoutAt).
		Select("a.created_at AS auth_created_at").To(&tmp.AuthCreatedAt).
		Select("a.valid_until").To(&tmp.AuthValidUntil).
		Select("d.ip_address").To(&tmp.IPAddress).
		Select("d.browser").To(&tmp.Browser).
		Select("d.os").To(&tmp.OS).
		Select("d.device_model").To(&tmp.Model)

	var rows []userWithAuthRow

	err := q.QueryAndClose(ctx, s.db, func(_ *sql.Rows) {
		rows = append(rows, tmp)
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}

	return rowsToDomain(rows), nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	var events []domain.Event
	s.seenMu.Lock()
	for _, u := range s.seen {
		events = append(events, u.PopEvents()...)
	}
	s.seen = make(map[string]*user.User)
	s.seenMu.Unlock()
	return events
}

func (s *PostgresStorage) Close() error {
	s.seenMu.Lock()
	s.seen = make(map[string]*user.User)
	s.seenMu.Unlock()
	return nil
}

func (s *PostgresStorage) markSeen(u *user.User) {
	s.seenMu.Lock()
	s.seen[u.UserID] = u
	s.seenMu.Unlock()
}

func isUserDuplicated(err error) bool {
	pgErr := &pgconn.PgError{}
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) && pgErr.ConstraintName == "users_pkey"
}

type userWithAuthRow struct {
	UserID       string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	AuthorizationID *string
	LogoutAt        *time.Time
	AuthCreatedAt   *time.Time
	AuthValidUntil  *time.Time

	IPAddress *string
	Browser   *string
	OS        *string
	Model     *string
}

func rowsToDomain(rows []userWithAuthRow) []*user.User {
	order := make([]string, 0, len(rows))
	usersMap := make(map[string]*user.User)

	for _, row := range rows {
		u, ok := usersMap[row.UserID]
		if !ok {
			u = &user.User{
				UserID:       row.UserID,
				Email:        row.Email,
				PasswordHash: row.PasswordHash,
				CreatedAt:    row.CreatedAt,
				UpdatedAt:    row.UpdatedAt,
			}
			usersMap[row.UserID] = u
			order = append(order, row.UserID)
		}
		if row.AuthorizationID != nil {
			a := user.Authorization{
				Identifier: *row.AuthorizationID,
				CreatedAt:  *row.AuthCreatedAt,
				ValidUntil: *row.AuthValidUntil,
				LogoutAt:   row.LogoutAt,
			}
			if row.Browser != nil {
				a.Device = user.Device{
					Browser:   *row.Browser,
					OS:        *row.OS,
					IPAddress: *row.IPAddress,
					Model:     *row.Model,
				}
			}
			u.Authorizations = append(u.Authorizations, a)
		}
	}

	users := make([]*user.User, 0, len(usersMap))
	for _, id := range order {
		users = append(users, usersMap[id])
	}
	return users
}
