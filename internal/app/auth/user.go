package auth

import (
	"context"
	"log/slog"

	"github.com/avyure/go_workout_backend/internal/app/unitofwork"
	"github.com/avyure/go_workout_backend/internal/domain/user"
)

type Service struct {
	logger     *slog.Logger
	Authorizer *Authorizer
}

func NewService(auth *Authorizer, logger *slog.Logger) *Service {
	return &Service{
		logger:     logger,
		Authorizer: auth,
	}
}

func (s *Service) CreateUser(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	email string,
	password string,
) (u *user.User, outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		u = user.NewUser(userID, email, password, s.Authorizer)
		if err := a.UserStorage.Add(a.Context(), u); err != nil {
			return err
		}

		return a.Commit()
	})
	return
}

func (s *Service) Login(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	device user.Device,
	email string,
	password string,
) (tokens Tokens, outErr error) {
	outErr = uow.Atomic(ctx, func(a *AtomicContext) error {
		u, err := a.UserStorage.GetByEmail(a.Context(), email)
		if err != nil {
			return err
		}

		auth, err := u.Authorize(s.Authorizer, password, device)
		if err != nil {
			return err
		}

		accessToken, err := s.Authorizer.GenerateAccessToken(u, &auth)
		if err != nil {
			return err
		}

		if err := a.UserStorage.Persist(a.Context(), u); err != nil {
			return err
		}

		tokens = Tokens{
			AccessToken:  accessToken,
			RefreshToken: auth.Identifier,
		}
		return a.Commit()
	})
	return
}

func (s *Service) Logout(
	ctx context.Context,
	uow *unitofwork.UnitOfWork[*AtomicContext],
	userID string,
	authIdentifier string,
) error {
	return uow.Atomic(ctx, func(a *AtomicContext) error {
		u, err := a.UserStorage.GetByID(a.Context(), userID)
		if err != nil {
			return err
		}

		if err := u.Logout(authIdentifier); err != nil {
			return err
		}

		if err := a.UserStorage.Persist(a.Context(), u); err != nil {
			return err
		}

		return a.Commit()
	})
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}
