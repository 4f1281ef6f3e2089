package registration

import (
	"time"
)

type Occasion string

const (
	OccasionBirthday     Occasion = "birthday"
	OccasionAnniversary  Occasion = "anniversary"
	OccasionJustADate    Occasion = "just-a-date"
	OccasionSurpriseGift Occasion = "surprise-gift"
)

type Experience string

const (
	ExperienceRomanticEscape Experience = "romantic-escape"
	ExperienceAdventureDate  Experience = "adventure-date"
	ExperienceMysteryBox     Experience = "mystery-box"
)

type Dining string

const (
	DiningItalian      Dining = "italian"
	DiningAsian        Dining = "asian"
	DiningNepaliFusion Dining = "nepali-fusion"
	DiningContinental  Dining = "continental"
	DiningSurpriseMe   Dining = "surprise-me"
)

type Budget string

const (
	BudgetTBD Budget = "tbd"
	Budget3K  Budget = "3k"
	Budget5K  Budget = "5k"
	Budget10K Budget = "10k"
)

var (
	Occasions   = []Occasion{OccasionBirthday, OccasionAnniversary, OccasionJustADate, OccasionSurpriseGift}
	Experiences = []Experience{ExperienceRomanticEscape, ExperienceAdventureDate, ExperienceMysteryBox}
	Dinings     = []Dining{DiningItalian, DiningAsian, DiningNepaliFusion, DiningContinental, DiningSurpriseMe}
	Budgets     = []Budget{BudgetTBD, Budget3K, Budget5K, Budget10K}
)

// Registration is one stored date-planning submission.
type Registration struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	StartDateTime time.Time `json:"startDateTime"`
	EndDateTime   time.Time `json:"endDateTime"`

	Occasion   Occasion   `json:"occasion"`
	Experience Experience `json:"experience"`
	Dining     Dining     `json:"dining"`

	DietVeg       bool   `json:"dietVeg"`
	DietHalal     bool   `json:"dietHalal"`
	DietAllergies string `json:"dietAllergies"`

	Flowers bool `json:"flowers"`
	Cake    bool `json:"cake"`

	Budget       Budget `json:"budget"`
	PersonalNote string `json:"personalNote"`

	Name             string `json:"name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	EmergencyContact string `json:"emergencyContact"`

	PaymentConfirmed bool `json:"paymentConfirmed"`
}

// Patch is a validated partial update. Nil fields are left untouched.
type Patch struct {
	StartDateTime *time.Time
	EndDateTime   *time.Time

	Occasion   *Occasion
	Experience *Experience
	Dining     *Dining
	Budget     *Budget

	DietVeg       *bool
	DietHalal     *bool
	DietAllergies *string
	Flowers       *bool
	Cake          *bool
	PersonalNote  *string

	Name             *string
	Phone            *string
	Email            *string
	EmergencyContact *string

	PaymentConfirmed *bool
}

// TouchesDates reports whether either date is part of the update.
func (p *Patch) TouchesDates() bool {
	return p.StartDateTime != nil || p.EndDateTime != nil
}

// Apply copies the present fields onto r.
func (p *Patch) Apply(r *Registration) {
	if p.StartDateTime != nil {
		r.StartDateTime = *p.StartDateTime
	}
	if p.EndDateTime != nil {
		r.EndDateTime = *p.EndDateTime
	}
	if p.Occasion != nil {
		r.Occasion = *p.Occasion
	}
	if p.Experience != nil {
		r.Experience = *p.Experience
	}
	if p.Dining != nil {
		r.Dining = *p.Dining
	}
	if p.Budget != nil {
		r.Budget = *p.Budget
	}
	if p.DietVeg != nil {
		r.DietVeg = *p.DietVeg
	}
	if p.DietHalal != nil {
		r.DietHalal = *p.DietHalal
	}
	if p.DietAllergies != nil {
		r.DietAllergies = *p.DietAllergies
	}
	if p.Flowers != nil {
		r.Flowers = *p.Flowers
	}
	if p.Cake != nil {
		r.Cake = *p.Cake
	}
	if p.PersonalNote != nil {
		r.PersonalNote = *p.PersonalNote
	}
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.EmergencyContact != nil {
		r.EmergencyContact = *p.EmergencyContact
	}
	if p.PaymentConfirmed != nil {
		r.PaymentConfirmed = *p.PaymentConfirmed
	}
}

// ===========================
// 📄 List query

type PaymentFilter string

const (
	PaymentAll     PaymentFilter = ""
	PaymentPaid    PaymentFilter = "paid"
	PaymentPending PaymentFilter = "pending"
)

type SortKey string

const (
	SortByCreatedAt     SortKey = "createdAt"
	SortByStartDateTime SortKey = "startDateTime"
	SortByName          SortKey = "name"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListQuery drives the paginated list endpoint.
type ListQuery struct {
	Q        string
	Payment  PaymentFilter
	SortBy   SortKey
	Asc      bool
	Page     int
	PageSize int
}

// Skip is the number of records before the requested page.
func (q ListQuery) Skip() int {
	return (q.Page - 1) * q.PageSize
}

// SearchFields are the text fields the q parameter is matched against.
var SearchFields = []string{
	"name",
	"email",
	"phone",
	"emergencyContact",
	"occasion",
	"experience",
	"dining",
	"budget",
	"dietAllergies",
	"personalNote",
}

// ListResult is one page plus the total count before pagination.
type ListResult struct {
	Data     []Registration `json:"data"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
	Total    int64          `json:"total"`
}
