package models

import (
	"fmt"
	"time"
)

// ModerationKind tags the four content kinds that pass through moderation.
type ModerationKind string

const (
	KindProfile     ModerationKind = "profile"
	KindGallery     ModerationKind = "gallery"
	KindCertificate ModerationKind = "certificate"
	KindLetter      ModerationKind = "letter"
)

// ModerationKinds lists every kind, in queue display order.
var ModerationKinds = []ModerationKind{KindProfile, KindGallery, KindCertificate, KindLetter}

// ParseModerationKind validates a kind coming from a request path.
func ParseModerationKind(raw string) (ModerationKind, error) {
	kind := ModerationKind(raw)
	switch kind {
	case KindProfile, KindGallery, KindCertificate, KindLetter:
		return kind, nil
	}
	return "", fmt.Errorf("unknown moderation kind: %q", raw)
}

// Valid reports whether the kind is one of the four known queues.
func (k ModerationKind) Valid() bool {
	switch k {
	case KindProfile, KindGallery, KindCertificate, KindLetter:
		return true
	}
	return false
}

// ProfilePayload carries the moderation-sensitive profile fields.
type ProfilePayload struct {
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// GalleryPayload describes a submitted gallery entry.
type GalleryPayload struct {
	ImageURLs   []string `json:"image_urls"`
	Description string   `json:"description,omitempty"`
	AltText     string   `json:"alt_text,omitempty"`
}

// DocumentPayload covers certificates and recommendation letters.
type DocumentPayload struct {
	FileURL     string `json:"file_url"`
	Description string `json:"description,omitempty"`
}

// ModerationPayload is the kind-specific variant body. Exactly one field is
// set, matching the item's Kind: Profile for profile, Gallery for gallery,
// Document for certificate and letter.
type ModerationPayload struct {
	Profile  *ProfilePayload  `json:"profile,omitempty"`
	Gallery  *GalleryPayload  `json:"gallery,omitempty"`
	Document *DocumentPayload `json:"document,omitempty"`
}

// ModerationItem is a unit of content awaiting an admin decision.
type ModerationItem struct {
	ID            int64             `json:"-"`
	PublicID      string            `json:"id"`
	Kind          ModerationKind    `json:"kind"`
	PerformerID   int64             `json:"performer_id"`
	PerformerName string            `json:"performer_name"`
	Status        string            `json:"status"` // pending_approval, approved, rejected
	Payload       ModerationPayload `json:"payload"`
	Reason        string            `json:"reason,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Version       int64             `json:"version"`
}

// IsTerminal reports whether the item already received a decision.
func (m *ModerationItem) IsTerminal() bool {
	return m.Status == ModerationApproved || m.Status == ModerationRejected
}

// ValidatePayload checks that the payload variant matches the kind.
func (m *ModerationItem) ValidatePayload() error {
	switch m.Kind {
	case KindProfile:
		if m.Payload.Profile == nil || m.Payload.Profile.Name == "" {
			return fmt.Errorf("profile payload with name is required")
		}
	case KindGallery:
		if m.Payload.Gallery == nil || len(m.Payload.Gallery.ImageURLs) == 0 {
			return fmt.Errorf("gallery payload with image urls is required")
		}
	case KindCertificate, KindLetter:
		if m.Payload.Document == nil || m.Payload.Document.FileURL == "" {
			return fmt.Errorf("document payload with file url is required")
		}
	default:
		return fmt.Errorf("unknown moderation kind: %q", m.Kind)
	}
	return nil
}
