package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"foliosh/folio-api/internal/repositories"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 40

	slugMaxLength = 30
)

// Usernames colliding with application routes can never be allocated.
var reservedUsernames = map[string]struct{}{
	"preview":   {},
	"api":       {},
	"upload":    {},
	"pdf":       {},
	"admin":     {},
	"auth":      {},
	"login":     {},
	"sign-in":   {},
	"sign-up":   {},
	"settings":  {},
	"profile":   {},
	"dashboard": {},
}

// Suffix lengths tried in order during auto-generation. Each collision
// escalates to a longer suffix before the purely random final fallback.
var suffixLadder = []int{6, 8, 10}

var (
	usernameRe = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	spacesRe   = regexp.MustCompile(`\s+`)
	hyphensRe  = regexp.MustCompile(`-+`)
)

type Availability struct {
	Available bool
	Reason    string
}

type UsernameService interface {
	CheckAvailability(candidate string) (Availability, error)
	Update(userID, candidate string) (string, error)
	Lookup(userID string) (string, error)
	Ensure(userID, displayName string) (string, error)
}

type usernameService struct {
	repo repositories.UsernameRepository
}

func NewUsernameService(repo repositories.UsernameRepository) UsernameService {
	return &usernameService{repo: repo}
}

// CheckAvailability implements UsernameService. Checks run in a fixed order
// (length, character set, reserved list, uniqueness) and the first failure
// wins, so error messages are deterministic.
func (s *usernameService) CheckAvailability(candidate string) (Availability, error) {
	normalized := strings.ToLower(strings.TrimSpace(candidate))

	if len(normalized) < MinUsernameLength {
		return Availability{
			Reason: fmt.Sprintf("Username must be at least %d characters", MinUsernameLength),
		}, nil
	}
	if len(normalized) > MaxUsernameLength {
		return Availability{
			Reason: fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength),
		}, nil
	}

	if !usernameRe.MatchString(normalized) {
		return Availability{
			Reason: "Username can only contain letters, numbers, and hyphens",
		}, nil
	}

	if _, reserved := reservedUsernames[normalized]; reserved {
		return Availability{Reason: "This username is reserved"}, nil
	}

	taken, err := s.repo.ExistsByUsername(normalized)
	if err != nil {
		return Availability{}, err
	}
	if taken {
		return Availability{Reason: "Username is already taken"}, nil
	}

	return Availability{Available: true}, nil
}

// Update implements UsernameService. Fails with ConflictError carrying the
// user-actionable reason when the candidate is unavailable.
func (s *usernameService) Update(userID, candidate string) (string, error) {
	availability, err := s.CheckAvailability(candidate)
	if err != nil {
		return "", err
	}
	if !availability.Available {
		return "", &ConflictError{Reason: availability.Reason}
	}

	record, err := s.repo.UpdateUsername(userID, strings.ToLower(strings.TrimSpace(candidate)))
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return "", &ConflictError{Reason: "Username is already taken"}
		}
		return "", err
	}
	return record.Username, nil
}

// Lookup implements UsernameService. Returns "" when the user has no
// username yet.
func (s *usernameService) Lookup(userID string) (string, error) {
	record, err := s.repo.FindByUserID(userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return record.Username, nil
}

// Ensure implements UsernameService: it returns the user's existing username
// or allocates one from the display name. Concurrent allocations of the same
// base name race on the unique index; a duplicate-key result simply moves to
// the next rung of the suffix ladder.
func (s *usernameService) Ensure(userID, displayName string) (string, error) {
	existing, err := s.Lookup(userID)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	base := SlugifyName(displayName)
	if base == "" {
		base = "user"
	}

	for _, suffixLen := range suffixLadder {
		candidate := fmt.Sprintf("%s-%s", base, randomSuffix(suffixLen))

		availability, err := s.CheckAvailability(candidate)
		if err != nil {
			return "", err
		}
		if !availability.Available {
			continue
		}

		record, err := s.repo.Create(userID, candidate)
		if errors.Is(err, repositories.ErrConflict) {
			slog.Warn("username collision, escalating suffix", "userId", userID, "candidate", candidate)
			continue
		}
		if err != nil {
			return "", err
		}
		return record.Username, nil
	}

	// Ladder exhausted: fall back to a purely random handle.
	fallback := fmt.Sprintf("user-%s", randomSuffix(10))
	record, err := s.repo.Create(userID, fallback)
	if err != nil {
		return "", fmt.Errorf("failed to allocate fallback username: %w", err)
	}
	return record.Username, nil
}

// SlugifyName reduces a display name to a username base: lowercase, strip
// characters outside [a-z0-9 -], whitespace to hyphens, collapsed and capped.
func SlugifyName(name string) string {
	slug := strings.ToLower(name)
	slug = nonSlugRe.ReplaceAllString(slug, "")
	slug = spacesRe.ReplaceAllString(strings.TrimSpace(slug), "-")
	slug = hyphensRe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > slugMaxLength {
		slug = strings.Trim(slug[:slugMaxLength], "-")
	}
	return slug
}

const suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

func randomSuffix(length int) string {
	buf := make([]byte, length)
	// rand.Read never fails on supported platforms.
	rand.Read(buf)
	for i, b := range buf {
		buf[i] = suffixAlphabet[int(b)%len(suffixAlphabet)]
	}
	return string(buf)
}
