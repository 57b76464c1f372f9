package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medicore/hms/internal/platform/auth"
	"github.com/medicore/hms/internal/platform/blobstore"
	"github.com/medicore/hms/internal/platform/db"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrStaffSecret        = errors.New("invalid staff registration secret")
)

const minPasswordLength = 8

type Service struct {
	users       UserRepository
	images      blobstore.Store
	staffSecret string
}

func NewService(users UserRepository, images blobstore.Store, staffSecret string) *Service {
	return &Service{users: users, images: images, staffSecret: staffSecret}
}

// Register creates a new account. Non-patient roles require the staff
// registration secret.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	role := auth.Role(req.Role)
	if req.Role == "" {
		role = auth.RolePatient
	}
	if !auth.ValidRole(string(role)) {
		return nil, fmt.Errorf("invalid role: %s", req.Role)
	}
	if auth.IsStaff(role) {
		if s.staffSecret == "" || req.StaffSecret != s.staffSecret {
			return nil, ErrStaffSecret
		}
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	u := &User{
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        req.Phone,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Concurrent registrations of the same email both pass the lookup
		// above; the unique index on LOWER(email) catches the loser.
		if db.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the account.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies the non-nil fields of upd to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, upd *ProfileUpdate) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, fmt.Errorf("name cannot be empty")
		}
		u.Name = *upd.Name
	}
	if upd.Phone != nil {
		u.Phone = upd.Phone
	}
	if upd.Address != nil {
		u.Address = upd.Address
	}
	if upd.Gender != nil {
		u.Gender = upd.Gender
	}
	if upd.DateOfBirth != nil {
		u.DateOfBirth = upd.DateOfBirth
	}
	if upd.BloodGroup != nil {
		u.BloodGroup = upd.BloodGroup
	}
	if upd.Specialization != nil {
		u.Specialization = upd.Specialization
	}
	if upd.Department != nil {
		u.Department = upd.Department
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UploadProfileImage stores the image and records its key on the profile.
func (s *Service) UploadProfileImage(ctx context.Context, userID uuid.UUID, contentType string, content io.Reader) (*User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := "profiles/" + userID.String()
	info, err := s.images.Put(ctx, key, contentType, content)
	if err != nil {
		return nil, err
	}

	u.ProfileImageKey = &info.Key
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ProfileImage fetches the user's stored image.
func (s *Service) ProfileImage(ctx context.Context, userID uuid.UUID) (io.ReadCloser, *blobstore.ObjectInfo, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if u.ProfileImageKey == nil {
		return nil, nil, blobstore.ErrObjectNotFound
	}
	return s.images.Get(ctx, *u.ProfileImageKey)
}

// ListByRole returns users holding the given role.
func (s *Service) ListByRole(ctx context.Context, role auth.Role, limit, offset int) ([]*User, int, error) {
	if !auth.ValidRole(string(role)) {
		return nil, 0, fmt.Errorf("invalid role: %s", role)
	}
	return s.users.ListByRole(ctx, role, limit, offset)
}

// ListDoctors returns the public doctor directory.
func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, auth.RoleDoctor, limit, offset)
}
