package ledger

import (
	"context"  // Request scoped cancellation
	"errors"   // Sentinel checks
	"fmt"      // Referral description
	"net/mail" // Email syntax check
	"strings"  // Normalisation

	"yield_wallet/internal/domain" // Models
	"yield_wallet/internal/store"  // Persistence contract
	"yield_wallet/internal/utils"  // Ids and money helpers

	"github.com/sirupsen/logrus" // Logging library
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// maxCodeAttempts bounds the draws for an unused referral code
const maxCodeAttempts = 5

// uniqueReferralCode draws referral codes until one is not taken
func (s *Service) uniqueReferralCode(tx store.Tx) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := s.codes()
		if err != nil {
			return "", fmt.Errorf("failed to generate referral code: %w", err)
		}
		_, err = tx.FindUserByReferralCode(code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("no unused referral code found")
}

// createUser inserts u. A duplicate on anything but the email means the referral code was
// taken concurrently, so the transaction is retried with a fresh code.
func createUser(tx store.Tx, u *domain.User) error {
	err := tx.CreateUser(u)
	if !errors.Is(err, store.ErrDuplicate) {
		return err
	}
	if _, ferr := tx.FindUserByEmail(u.Email); ferr == nil {
		return ErrEmailTaken
	} else if !errors.Is(ferr, store.ErrNotFound) {
		return ferr
	}
	return store.ErrConflict
}

// RegisterInput is a new account
type RegisterInput struct {
	Email        string
	Phone        string
	Name         string
	Password     string
	ReferralCode string
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	if len(password) < 8 || len(password) > 64 {
		return "", ErrInvalidPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates a user, credits the signup bonus and pays the referrer in one transaction
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	phone := strings.TrimSpace(in.Phone)
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = s.update(ctx, "register", func(tx store.Tx) error {
		blocked, err := tx.IsBlacklisted(email, phone)
		if err != nil {
			return err
		}
		if blocked {
			return ErrBlacklisted
		}
		if _, err := tx.FindUserByEmail(email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// Unknown codes are ignored rather than failing the signup
		var referrer *domain.User
		if code := strings.ToUpper(strings.TrimSpace(in.ReferralCode)); code != "" {
			found, err := tx.FindUserByReferralCode(code)
			switch {
			case err == nil:
				referrer = found
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		code, err := s.uniqueReferralCode(tx)
		if err != nil {
			return err
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Email:        email,
			Phone:        phone,
			Name:         name,
			Password:     hash,
			Role:         domain.RoleUser,
			ReferralCode: code,
			CreatedAt:    s.now(),
		}
		if referrer != nil {
			u.ReferredBy = referrer.ID
		}
		if err := createUser(tx, u); err != nil {
			return err
		}

		if s.opts.SignupBonus > 0 {
			if err := s.move(tx, u, s.opts.SignupBonus, domain.EntrySignupBonus, "Signup bonus", ""); err != nil {
				return err
			}
			u.BonusClaimed = true
			if err := tx.SaveUser(u); err != nil {
				return err
			}
		}

		if referrer != nil && s.opts.ReferralReward > 0 {
			ref, err := lockActive(tx, referrer.ID)
			if err != nil {
				return err
			}
			if err := s.move(tx, ref, s.opts.ReferralReward, domain.EntryReferral, "Referral reward for "+u.Email, u.ID); err != nil {
				return err
			}
			ref.ReferralRewards = utils.AddMoney(ref.ReferralRewards, s.opts.ReferralReward)
			if err := tx.SaveUser(ref); err != nil {
				return err
			}
			msg := fmt.Sprintf("You earned %.2f for inviting %s", s.opts.ReferralReward, u.Name)
			if err := s.notify(tx, ref.ID, domain.NotifyReferral, msg); err != nil {
				return err
			}
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":     created.ID,         // New user ID
		"email":       created.Email,      // Registered email
		"referred_by": created.ReferredBy, // Referrer, if any
	}).Info("User registered")
	return created, nil
}

// Login checks the credentials and records the login time
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.IsDeleted || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrBlocked
	}
	now := s.now()
	if err := s.store.TouchUser(ctx, u.ID, domain.Activity{LastLogin: &now, LastActive: &now}); err != nil {
		return nil, err
	}
	u.LastLogin, u.LastActive = &now, &now
	logrus.WithField("user_id", u.ID).Info("User logged in")
	return u, nil
}

// EnsureAdmin creates the admin account, or promotes an existing user with that email
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	var admin *domain.User
	err = s.update(ctx, "ensure_admin", func(tx store.Tx) error {
		existing, err := tx.FindUserByEmail(email)
		if err == nil {
			u, err := tx.LockUser(existing.ID)
			if err != nil {
				return err
			}
			if u.Role == domain.RoleAdmin {
				admin = u
				return nil
			}
			u.Role = domain.RoleAdmin
			if err := tx.SaveUser(u); err != nil {
				return err
			}
			admin = u
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		code, err := s.uniqueReferralCode(tx)
		if err != nil {
			return err
		}
		u := &domain.User{
			ID:           utils.NewID(),
			Email:        email,
			Name:         "Administrator",
			Password:     hash,
			Role:         domain.RoleAdmin,
			ReferralCode: code,
			CreatedAt:    s.now(),
		}
		if err := createUser(tx, u); err != nil {
			return err
		}
		admin = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("email", email).Info("Admin account ready")
	return admin, nil
}
