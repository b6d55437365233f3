package model

import "time"

// Profile type values accepted for an entrepreneur profile.
// These are the values the frontend's profile form submits.
const (
	ProfileTypeEntreprise   = "entreprise"
	ProfileTypeFreelance    = "freelance"
	ProfileTypePME          = "pme"
	ProfileTypeArtisan      = "artisan"
	ProfileTypeONG          = "ONG"
	ProfileTypeCabinet      = "cabinet"
	ProfileTypeOrganisation = "organisation"
	ProfileTypeAutre        = "autre"
)

// PortfolioItem is one entry in a profile's portfolio: either an uploaded
// image (base64 or URL) or an external link.
type PortfolioItem struct {
	Type  string `json:"type" validate:"required,oneof=image link"`
	Value string `json:"value" validate:"required"`
}

// Entrepreneur is a directory profile. Exactly one exists per user
// (entrepreneurs.user_id carries a UNIQUE constraint).
//
// Rating, ReviewCount and IsPremium are display fields seeded at creation;
// no operation in this service mutates them.
type Entrepreneur struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	ProfileType  string          `json:"profileType"`
	FirstName    string          `json:"firstName,omitempty"`
	LastName     string          `json:"lastName,omitempty"`
	CompanyName  string          `json:"companyName,omitempty"`
	ActivityName string          `json:"activityName,omitempty"`
	Logo         string          `json:"logo,omitempty"` // base64 image or URL
	Description  string          `json:"description"`
	Tags         []string        `json:"tags"`
	Phone        string          `json:"phone"`
	Whatsapp     string          `json:"whatsapp"`
	Email        string          `json:"email"`
	Location     string          `json:"location"` // ISO country code
	City         string          `json:"city"`
	Website      string          `json:"website,omitempty"`
	Portfolio    []PortfolioItem `json:"portfolio"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	IsPremium    bool            `json:"isPremium"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// EntrepreneurPublic is the listing/search representation. Phone, whatsapp
// and email are deliberately absent; contact details only leave the system
// through the dedicated contact endpoint.
type EntrepreneurPublic struct {
	ID           string          `json:"id"`
	ProfileType  string          `json:"profileType"`
	FirstName    string          `json:"firstName,omitempty"`
	LastName     string          `json:"lastName,omitempty"`
	CompanyName  string          `json:"companyName,omitempty"`
	ActivityName string          `json:"activityName,omitempty"`
	Logo         string          `json:"logo,omitempty"`
	Description  string          `json:"description"`
	Tags         []string        `json:"tags"`
	Location     string          `json:"location"`
	City         string          `json:"city"`
	Website      string          `json:"website,omitempty"`
	Portfolio    []PortfolioItem `json:"portfolio"`
	Rating       float64         `json:"rating"`
	ReviewCount  int             `json:"reviewCount"`
	IsPremium    bool            `json:"isPremium"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ContactInfo is the gated contact view: exactly the three fields the
// public view redacts, nothing else.
type ContactInfo struct {
	Phone    string `json:"phone"`
	Whatsapp string `json:"whatsapp"`
	Email    string `json:"email"`
}

// Public derives the contact-redacted view of e.
func (e *Entrepreneur) Public() EntrepreneurPublic {
	return EntrepreneurPublic{
		ID:           e.ID,
		ProfileType:  e.ProfileType,
		FirstName:    e.FirstName,
		LastName:     e.LastName,
		CompanyName:  e.CompanyName,
		ActivityName: e.ActivityName,
		Logo:         e.Logo,
		Description:  e.Description,
		Tags:         e.Tags,
		Location:     e.Location,
		City:         e.City,
		Website:      e.Website,
		Portfolio:    e.Portfolio,
		Rating:       e.Rating,
		ReviewCount:  e.ReviewCount,
		IsPremium:    e.IsPremium,
		CreatedAt:    e.CreatedAt,
	}
}

// Contact derives the gated contact view of e.
func (e *Entrepreneur) Contact() ContactInfo {
	return ContactInfo{
		Phone:    e.Phone,
		Whatsapp: e.Whatsapp,
		Email:    e.Email,
	}
}
