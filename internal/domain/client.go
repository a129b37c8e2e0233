/**
 * @description
 * Client is the natural person that owns accounts. It carries the eligibility
 * rules (adulthood, name length) and the creation/modification stamps.
 *
 * @notes
 * - Deletion is logical: DeletedAt is set by the store, the row is kept.
 * - Email is a value type; it is always stored lowercased.
 */
package domain

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// AdultAge is the minimum age, in whole calendar years, required to become a client.
const AdultAge = 18

const minNameLength = 2

// emailPattern is the legacy client address rule. TLDs are limited to 2-6
// letters, which validator's email tag does not enforce.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,6}$`)

// Email is a validated, lowercased e-mail address.
type Email struct {
	address string
}

// NewEmail validates and normalizes an address.
func NewEmail(address string) (Email, error) {
	trimmed := strings.TrimSpace(address)
	if !emailPattern.MatchString(trimmed) {
		return Email{}, ErrInvalidEmail
	}
	return Email{address: strings.ToLower(trimmed)}, nil
}

func (e Email) String() string { return e.address }

func (e Email) IsZero() bool { return e.address == "" }

func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.address)
}

func (e *Email) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidEmail
	}
	parsed, err := NewEmail(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Client represents a bank customer.
type Client struct {
	ID                   int64      `json:"id"`
	IdentificationType   string     `json:"tipo_identificacion"`
	IdentificationNumber string     `json:"numero_identificacion"`
	FirstNames           string     `json:"nombres"`
	LastName             string     `json:"apellido"`
	Email                Email      `json:"correo_electronico"`
	BirthDate            time.Time  `json:"fecha_nacimiento"`
	CreatedAt            time.Time  `json:"fecha_creacion"`
	ModifiedAt           time.Time  `json:"fecha_modificacion"`
	DeletedAt            *time.Time `json:"-"`
}

// NewClient builds a client for registration and stamps its timestamps.
func NewClient(idType, idNumber, firstNames, lastName string, email Email, birthDate time.Time, now time.Time) *Client {
	c := &Client{
		IdentificationType:   strings.TrimSpace(idType),
		IdentificationNumber: strings.TrimSpace(idNumber),
		FirstNames:           firstNames,
		LastName:             lastName,
		Email:                email,
		BirthDate:            birthDate,
	}
	c.MarkCreated(now)
	return c
}

// IsAdult reports whether the client has completed AdultAge whole years at now.
func (c *Client) IsAdult(now time.Time) bool {
	return wholeYearsBetween(c.BirthDate, now) >= AdultAge
}

// Validate checks the name length rule.
func (c *Client) Validate() error {
	if utf8.RuneCountInString(c.FirstNames) < minNameLength || utf8.RuneCountInString(c.LastName) < minNameLength {
		return ErrInvalidClientData
	}
	return nil
}

// MarkCreated stamps both creation and modification time.
func (c *Client) MarkCreated(now time.Time) {
	c.CreatedAt = now
	c.ModifiedAt = now
}

// MarkModified re-stamps modification time only.
func (c *Client) MarkModified(now time.Time) {
	c.ModifiedAt = now
}

// wholeYearsBetween counts completed calendar years from 'from' to 'to',
// comparing dates only.
func wholeYearsBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	years := ty - fy
	if tm < fm || (tm == fm && td < fd) {
		years--
	}
	return years
}
