package service

import (
	"context"
	"errors"

	"writescape/internal/models"
	"writescape/internal/repository"
	"writescape/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Invalid username / password."

// passwordCost is lowered by tests.
var passwordCost = bcrypt.DefaultCost

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register validates the payload, checks username and email availability,
// and stores the account. All problems are reported together.
func (s *UserService) Register(ctx context.Context, raw validation.RawRegister) (*models.User, error) {
	in, errs := validation.ParseRegister(raw)

	if in.Username != "" {
		existing, err := s.userRepo.GetByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			errs.Add(models.NewDuplicateError("That username is already taken."))
		}
	}
	if in.Email != "" {
		existing, err := s.userRepo.GetByEmail(ctx, in.Email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			errs.Add(models.NewDuplicateError("That email is already being used."))
		}
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks a username and password pair.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, models.NewUnauthorizedError(msgBadCredentials)
	}
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(msgBadCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewUnauthorizedError(msgBadCredentials)
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByUsername returns NOT_FOUND when nobody has the name.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundMessage("Invalid user requested.")
	}
	return user, nil
}

func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	return user != nil, err
}

func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	return user != nil, err
}
