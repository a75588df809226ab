package membership

import (
	"regexp"
	"strings"
	"time"

	"github.com/library/backend/internal/domain/shared"
)

// MemberStatus represents the standing of a borrower's membership
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusInactive  MemberStatus = "inactive"
	MemberStatusSuspended MemberStatus = "suspended"
)

var (
	emailPattern      = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	dangerousChars    = regexp.MustCompile(`[<>'"&\\/()=]`)
	scriptScheme      = regexp.MustCompile(`(?i)javascript:`)
	eventAttribute    = regexp.MustCompile(`(?i)on\w+\s*=`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	nonDigitCharacter = regexp.MustCompile(`\D`)
)

// Borrower represents a registered library member
// It is the aggregate root for membership operations
type Borrower struct {
	shared.BaseAggregateRoot
	FirstName        string       `gorm:"type:varchar(50);not null"`
	LastName         string       `gorm:"type:varchar(50);not null;default:''"`
	Email            string       `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone            string       `gorm:"type:varchar(15)"`
	RegistrationDate time.Time    `gorm:"not null"`
	Status           MemberStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (Borrower) TableName() string {
	return "borrowers"
}

// NewBorrower registers a new active borrower
func NewBorrower(firstName, lastName, email, phone string) (*Borrower, error) {
	if err := validateFirstName(firstName); err != nil {
		return nil, err
	}
	if err := validateLastName(lastName); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	normalizedPhone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	borrower := &Borrower{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         SanitizeText(firstName),
		LastName:          SanitizeText(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Phone:             normalizedPhone,
		RegistrationDate:  time.Now().UTC(),
		Status:            MemberStatusActive,
	}

	borrower.AddDomainEvent(NewBorrowerRegisteredEvent(borrower))

	return borrower, nil
}

// NewBorrowerFromFullName registers a borrower from a single name field,
// splitting it into first and last name
func NewBorrowerFromFullName(fullName, email, phone string) (*Borrower, error) {
	firstName, lastName, err := SplitFullName(fullName)
	if err != nil {
		return nil, err
	}
	return NewBorrower(firstName, lastName, email, phone)
}

// UpdateContactInfo updates name and phone. The update only bumps the
// version and emits an event when a field actually changed.
func (b *Borrower) UpdateContactInfo(firstName, lastName, phone string) error {
	if err := validateFirstName(firstName); err != nil {
		return err
	}
	if err := validateLastName(lastName); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	normalizedPhone, err := NormalizePhone(phone)
	if err != nil {
		return err
	}

	sanitizedFirst := SanitizeText(firstName)
	sanitizedLast := SanitizeText(lastName)
	changed := false

	if b.FirstName != sanitizedFirst {
		b.FirstName = sanitizedFirst
		changed = true
	}
	if b.LastName != sanitizedLast {
		b.LastName = sanitizedLast
		changed = true
	}
	if b.Phone != normalizedPhone {
		b.Phone = normalizedPhone
		changed = true
	}

	if changed {
		b.UpdatedAt = time.Now().UTC()
		b.IncrementVersion()
		b.AddDomainEvent(NewBorrowerUpdatedEvent(b))
	}

	return nil
}

// UpdateContactInfoFromFullName updates contact info from a single name field
func (b *Borrower) UpdateContactInfoFromFullName(fullName, phone string) error {
	firstName, lastName, err := SplitFullName(fullName)
	if err != nil {
		return err
	}
	return b.UpdateContactInfo(firstName, lastName, phone)
}

// UpdateEmail changes the borrower's email address
func (b *Borrower) UpdateEmail(email string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	newEmail := strings.ToLower(strings.TrimSpace(email))
	if b.Email == newEmail {
		return nil
	}

	b.Email = newEmail
	b.UpdatedAt = time.Now().UTC()
	b.IncrementVersion()
	b.AddDomainEvent(NewBorrowerUpdatedEvent(b))

	return nil
}

// Activate restores the membership to active. Idempotent.
func (b *Borrower) Activate() {
	b.setStatus(MemberStatusActive)
}

// Deactivate marks the membership inactive. Idempotent.
func (b *Borrower) Deactivate() {
	b.setStatus(MemberStatusInactive)
}

// Suspend suspends the membership. Idempotent.
func (b *Borrower) Suspend() {
	b.setStatus(MemberStatusSuspended)
}

func (b *Borrower) setStatus(status MemberStatus) {
	if b.Status == status {
		return
	}
	oldStatus := b.Status
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	b.IncrementVersion()

	b.AddDomainEvent(NewBorrowerStatusChangedEvent(b, oldStatus, status))
}

// FullName returns the display name of the borrower
func (b *Borrower) FullName() string {
	if strings.TrimSpace(b.LastName) == "" {
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

// CanBorrowBooks returns true if the borrower may take out loans
func (b *Borrower) CanBorrowBooks() bool {
	return b.Status == MemberStatusActive
}

// SanitizeText strips markup and script fragments from free-text input
// and collapses whitespace. Names pass through this before being stored.
func SanitizeText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}

	sanitized := dangerousChars.ReplaceAllString(input, "")
	sanitized = scriptScheme.ReplaceAllString(sanitized, "")
	sanitized = eventAttribute.ReplaceAllString(sanitized, "")
	sanitized = whitespaceRun.ReplaceAllString(sanitized, " ")

	return strings.TrimSpace(sanitized)
}

// NormalizePhone strips all non-digit characters from a phone number.
// An empty or blank input yields an empty result; otherwise the digits
// must number between 10 and 15.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", nil
	}

	digitsOnly := nonDigitCharacter.ReplaceAllString(phone, "")
	if len(digitsOnly) < 10 || len(digitsOnly) > 15 {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone number must be between 10 and 15 digits")
	}

	return digitsOnly, nil
}

// SplitFullName splits a sanitized full name into first and last name.
// A single word becomes the first name; with more words the first word
// is the first name and the remainder joins into the last name.
func SplitFullName(fullName string) (string, string, error) {
	if strings.TrimSpace(fullName) == "" {
		return "", "", shared.NewDomainError("INVALID_NAME", "Name is required")
	}

	parts := strings.Fields(SanitizeText(fullName))
	switch len(parts) {
	case 0:
		return "", "", shared.NewDomainError("INVALID_NAME", "Name is required")
	case 1:
		return parts[0], "", nil
	default:
		return parts[0], strings.Join(parts[1:], " "), nil
	}
}

// validateFirstName validates the first name after sanitization
func validateFirstName(firstName string) error {
	if strings.TrimSpace(firstName) == "" {
		return shared.NewDomainError("INVALID_NAME", "First name is required")
	}
	if len(SanitizeText(firstName)) > 50 {
		return shared.NewDomainError("INVALID_NAME", "First name cannot exceed 50 characters")
	}
	return nil
}

// validateLastName validates the optional last name after sanitization
func validateLastName(lastName string) error {
	if len(SanitizeText(lastName)) > 50 {
		return shared.NewDomainError("INVALID_NAME", "Last name cannot exceed 50 characters")
	}
	return nil
}

// validateEmail validates the email address format
func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 255 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 255 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// validatePhone validates the raw phone input length
func validatePhone(phone string) error {
	if strings.TrimSpace(phone) != "" && len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 20 characters")
	}
	return nil
}
