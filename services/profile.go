package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"campuslink/models"
	"campuslink/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	maxFailedLogins = 3
	lockoutDuration = time.Minute
	lockoutMemory   = 15 * time.Minute
	logoSize        = 512
)

type ProfileService struct {
	base
	cost       int
	logoPolicy storage.Policy
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required"`
	OrgName  string `json:"org_name" validate:"max=255"`
}

// Register creates a student or organization account with its profile.
func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.OrgName = strings.TrimSpace(in.OrgName)

	fields := map[string]string{}
	if err := mergeFields(fields, validateStruct(in)); err != nil {
		return nil, err
	}
	role, err := models.ParseRole(in.Role)
	if _, seen := fields["role"]; !seen && (err != nil || !role.SelfRegistrable()) {
		fields["role"] = "role must be Student or Organization"
	}
	if len(fields) > 0 {
		return nil, validationError("Validation failed", fields)
	}

	return s.createAccount(ctx, in.Name, in.Email, in.Password, role, in.OrgName)
}

// CreateAdmin provisions an admin account. It is used by the seeding script only.
func (s *ProfileService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) || len(password) < 8 {
		return nil, validationError("Validation failed", map[string]string{"email": "a valid email and a password of at least 8 characters are required"})
	}
	return s.createAccount(ctx, strings.TrimSpace(name), email, password, models.RoleAdmin, "")
}

func (s *ProfileService) createAccount(ctx context.Context, name, email, password string, role models.Role, orgName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &models.Profile{Role: role, VerificationStatus: models.VerificationUnverified, IsPublic: true}
	switch role {
	case models.RoleStudent:
		profile.FullName = name
	case models.RoleOrganization:
		profile.OrgName = orgName
		if profile.OrgName == "" {
			profile.OrgName = name
		}
	case models.RoleAdmin:
	default:
		panic(fmt.Sprintf("unhandled role %q", role))
	}

	user := models.User{Name: name, Email: email, Password: string(hash), Profile: profile}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isUniqueViolation(err) {
				return newError(KindDuplicate, "Email is already registered")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] registered %s user %d", role, user.ID)
	return &user, nil
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	Device    string
}

type LoginResult struct {
	User    *models.User
	Session *models.Session
}

// Login checks the credentials, applies the failed attempt lockout and opens a session.
func (s *ProfileService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Preload("Profile").
		Where("email = ? AND is_deleted = ?", strings.ToLower(strings.TrimSpace(in.Email)), false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindUnauthenticated, "Invalid credentials")
		}
		return nil, err
	}

	current := s.timestamp()
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(current) {
		return nil, newError(KindUnauthenticated, "Your account is temporarily blocked. Try again later.")
	}
	if user.LastFailedLogin != nil && current.Sub(*user.LastFailedLogin) > lockoutMemory {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &current
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := current.Add(lockoutDuration)
			user.IsBlocked = true
			user.BlockedUntil = &until
			log.Printf("[AUTH] user %d blocked until %s", user.ID, until.Format("15:04:05"))
		}
		if err := db.Model(&user).Select("failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").Updates(&user).Error; err != nil {
			log.Printf("[AUTH] failed to record failed login for user %d: %v", user.ID, err)
		}
		return nil, newError(KindUnauthenticated, "Invalid credentials")
	}
	if user.Profile == nil {
		return nil, newError(KindUnauthenticated, "Account has no profile")
	}

	session := models.Session{
		TokenID:      uuid.NewString(),
		UserID:       user.ID,
		IPAddress:    in.IPAddress,
		Device:       in.Device,
		LastActivity: current,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		user.LastLogin = &current
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
		user.IsBlocked = false
		user.BlockedUntil = nil
		if err := tx.Model(&user).
			Select("last_login", "failed_login_attempts", "last_failed_login", "is_blocked", "blocked_until").
			Updates(&user).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] user %d logged in from %s", user.ID, in.IPAddress)
	return &LoginResult{User: &user, Session: &session}, nil
}

// ProfileView is an account with its profile and resolved logo link.
type ProfileView struct {
	User    *models.User `json:"user"`
	LogoURL string       `json:"logo_url,omitempty"`
}

func (s *ProfileService) Get(ctx context.Context, actor Actor) (*ProfileView, error) {
	if !actor.Authenticated() {
		return nil, newError(KindUnauthenticated, "Please log in")
	}
	return s.view(ctx, actor.UserID)
}

func (s *ProfileService) view(ctx context.Context, userID uint) (*ProfileView, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "User not found")
		}
		return nil, err
	}
	view := &ProfileView{User: &user}
	if user.Profile != nil {
		view.LogoURL = s.resolveURL(ctx, user.Profile.OrgLogo)
	}
	return view, nil
}

// Organization returns the public page of an organization.
func (s *ProfileService) Organization(ctx context.Context, userID uint) (*ProfileView, error) {
	view, err := s.view(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := view.User.Profile
	if p == nil || p.Role != models.RoleOrganization || !p.IsPublic {
		return nil, newError(KindNotFound, "Organization not found")
	}
	p.VerificationDocument = ""
	p.InstitutionalEmail = ""
	return view, nil
}

// ProfileUpdate holds optional changes. Nil fields are left untouched.
type ProfileUpdate struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`

	FullName       *string  `json:"full_name" validate:"omitempty,max=255"`
	AcademicYear   *string  `json:"academic_year" validate:"omitempty,max=50"`
	Major          *string  `json:"major" validate:"omitempty,max=100"`
	Bio            *string  `json:"bio" validate:"omitempty,max=2000"`
	Skills         []string `json:"skills" validate:"omitempty,max=50,dive,max=50"`
	PortfolioLinks []string `json:"portfolio_links" validate:"omitempty,max=10,dive,url"`

	OrgName     *string           `json:"org_name" validate:"omitempty,min=1,max=255"`
	Description *string           `json:"description" validate:"omitempty,max=5000"`
	Mission     *string           `json:"mission" validate:"omitempty,max=2000"`
	Website     *string           `json:"website" validate:"omitempty,url"`
	Address     *string           `json:"address" validate:"omitempty,max=255"`
	Department  *string           `json:"department" validate:"omitempty,max=255"`
	SocialLinks map[string]string `json:"social_links" validate:"omitempty,dive,url"`
	IsPublic    *bool             `json:"is_public"`
}

func (u ProfileUpdate) studentChanges() map[string]any {
	changes := map[string]any{}
	setString(changes, "full_name", u.FullName)
	setString(changes, "academic_year", u.AcademicYear)
	setString(changes, "major", u.Major)
	setString(changes, "bio", u.Bio)
	if u.Skills != nil {
		changes["skills"] = datatypes.JSONSlice[string](normalizeTags(u.Skills))
	}
	if u.PortfolioLinks != nil {
		changes["portfolio_links"] = datatypes.JSONSlice[string](u.PortfolioLinks)
	}
	return changes
}

func (u ProfileUpdate) organizationChanges() map[string]any {
	changes := map[string]any{}
	setString(changes, "org_name", u.OrgName)
	setString(changes, "description", u.Description)
	setString(changes, "mission", u.Mission)
	setString(changes, "website", u.Website)
	setString(changes, "address", u.Address)
	setString(changes, "department", u.Department)
	if u.SocialLinks != nil {
		links := datatypes.JSONMap{}
		for k, v := range u.SocialLinks {
			links[k] = v
		}
		changes["social_links"] = links
	}
	if u.IsPublic != nil {
		changes["is_public"] = *u.IsPublic
	}
	return changes
}

func setString(changes map[string]any, column string, v *string) {
	if v != nil {
		changes[column] = strings.TrimSpace(*v)
	}
}

// rejectFields reports every change that does not belong to the caller's role.
func rejectFields(fields map[string]string, changes map[string]any, role models.Role) {
	for column := range changes {
		fields[column] = fmt.Sprintf("%s cannot be set on a %s profile", strings.ReplaceAll(column, "_", " "), strings.ToLower(string(role)))
	}
}

// Update applies contact changes to the user and role specific changes to the profile.
func (s *ProfileService) Update(ctx context.Context, actor Actor, in ProfileUpdate) (*ProfileView, error) {
	if !actor.Authenticated() {
		return nil, newError(KindUnauthenticated, "Please log in")
	}
	fields := map[string]string{}
	if err := mergeFields(fields, validateStruct(in)); err != nil {
		return nil, err
	}

	student, organization := in.studentChanges(), in.organizationChanges()
	var changes map[string]any
	switch actor.Role {
	case models.RoleStudent:
		changes = student
		rejectFields(fields, organization, actor.Role)
	case models.RoleOrganization:
		changes = organization
		rejectFields(fields, student, actor.Role)
	case models.RoleAdmin:
		rejectFields(fields, student, actor.Role)
		rejectFields(fields, organization, actor.Role)
	default:
		panic(fmt.Sprintf("unhandled role %q", actor.Role))
	}
	if len(fields) > 0 {
		return nil, validationError("Validation failed", fields)
	}

	contact := map[string]any{}
	setString(contact, "name", in.Name)
	setString(contact, "phone", in.Phone)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(contact) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", actor.UserID).Updates(contact).Error; err != nil {
				return err
			}
		}
		if len(changes) > 0 {
			if err := tx.Model(&models.Profile{}).Where("user_id = ?", actor.UserID).Updates(changes).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, actor.UserID)
}

// UpdateLogo stores the organization's logo fitted to a square PNG.
func (s *ProfileService) UpdateLogo(ctx context.Context, actor Actor, upload *storage.Upload) (*ProfileView, error) {
	if err := actor.require(models.RoleOrganization, "Only organizations have a logo"); err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, validationError("Validation failed", map[string]string{"logo": "logo is required"})
	}
	blob, err := s.logoPolicy.Inspect(*upload)
	if err != nil {
		return nil, uploadError("logo", s.logoPolicy, err)
	}
	data, err := storage.FitPNG(blob.Data, logoSize)
	if err != nil {
		return nil, validationError("Validation failed", map[string]string{"logo": "logo could not be read as an image"})
	}

	db := s.db.WithContext(ctx)
	profile, err := s.profileByUser(db, actor.UserID)
	if err != nil {
		return nil, err
	}
	if s.blobs == nil {
		return nil, errors.New("no blob store configured")
	}
	ref, err := s.blobs.Put(ctx, storage.NewKey(fmt.Sprintf("logos/%d", actor.UserID), ".png"), "image/png", int64(len(data)), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store logo: %w", err)
	}
	previous := profile.OrgLogo
	if err := db.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("org_logo", ref).Error; err != nil {
		s.discard(ctx, ref)
		return nil, err
	}
	if previous != "" && previous != ref {
		s.discard(ctx, previous)
	}
	return s.view(ctx, actor.UserID)
}
