package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"respondapi/internal/model"
	"respondapi/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("user not found")
)

// UserListResult is the service-level DTO for paginated users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

// UserService defines the use cases for handling users.
type UserService interface {
	// Create validates the input and stores a new user. Validation failures
	// are returned as *model.ValidationErrors.
	Create(ctx context.Context, in model.UserInput) (*model.User, error)

	// Get returns a single user by its ID.
	Get(ctx context.Context, id string) (*model.User, error)

	// List returns users using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*UserListResult, error)

	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error
}

type userService struct {
	repo     repository.UserRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, validate: newValidator(), now: time.Now}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *userService) Create(ctx context.Context, in model.UserInput) (*model.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if verrs := s.check(in); !verrs.Empty() {
		return nil, verrs
	}

	u := &model.User{
		ID:        uuid.New().String(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		CreatedAt: s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return stored, nil
}

// check runs struct validation and translates failures into attribute
// messages.
func (s *userService) check(in model.UserInput) *model.ValidationErrors {
	verrs := model.NewValidationErrors()
	err := s.validate.Struct(in)
	if err == nil {
		return verrs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verrs.Add("base", "is invalid")
		return verrs
	}
	for _, fe := range fieldErrs {
		verrs.Add(fe.Field(), message(fe))
	}
	return verrs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	default:
		return "is invalid"
	}
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns paginated users without exposing repository types.
func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
