package wizard

// Draft is the in-progress questionnaire. Date fields keep the text the
// user entered; they are parsed when a step is checked and on submit.
type Draft struct {
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`

	Occasion   string `json:"occasion"`
	Experience string `json:"experience"`
	Dining     string `json:"dining"`

	DietVeg       bool   `json:"dietVeg"`
	DietHalal     bool   `json:"dietHalal"`
	DietAllergies string `json:"dietAllergies"`

	Flowers bool `json:"flowers"`
	Cake    bool `json:"cake"`

	Budget       string `json:"budget"`
	PersonalNote string `json:"personalNote"`

	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	EmergencyContact string `json:"emergencyContact"`

	PaymentConfirmed bool `json:"paymentConfirmed"`
}

// DraftUpdate carries the fields a client changed. Enum values are checked
// on bind; completeness is a matter for the step predicates.
type DraftUpdate struct {
	StartDateTime *string `json:"startDateTime" binding:"omitempty,max=64"`
	EndDateTime   *string `json:"endDateTime" binding:"omitempty,max=64"`

	Occasion   *string `json:"occasion" binding:"omitempty,occasion"`
	Experience *string `json:"experience" binding:"omitempty,experience"`
	Dining     *string `json:"dining" binding:"omitempty,dining"`

	DietVeg       *bool   `json:"dietVeg"`
	DietHalal     *bool   `json:"dietHalal"`
	DietAllergies *string `json:"dietAllergies" binding:"omitempty,max=500"`

	Flowers *bool `json:"flowers"`
	Cake    *bool `json:"cake"`

	Budget       *string `json:"budget" binding:"omitempty,budget"`
	PersonalNote *string `json:"personalNote" binding:"omitempty,max=2000"`

	Name             *string `json:"name" binding:"omitempty,max=200"`
	Email            *string `json:"email" binding:"omitempty,max=254"`
	Phone            *string `json:"phone" binding:"omitempty,max=64"`
	EmergencyContact *string `json:"emergencyContact" binding:"omitempty,max=200"`

	PaymentConfirmed *bool `json:"paymentConfirmed"`
}

// Merge copies the present fields of u onto d.
func (d *Draft) Merge(u DraftUpdate) {
	setString(&d.StartDateTime, u.StartDateTime)
	setString(&d.EndDateTime, u.EndDateTime)
	setString(&d.Occasion, u.Occasion)
	setString(&d.Experience, u.Experience)
	setString(&d.Dining, u.Dining)
	setBool(&d.DietVeg, u.DietVeg)
	setBool(&d.DietHalal, u.DietHalal)
	setString(&d.DietAllergies, u.DietAllergies)
	setBool(&d.Flowers, u.Flowers)
	setBool(&d.Cake, u.Cake)
	setString(&d.Budget, u.Budget)
	setString(&d.PersonalNote, u.PersonalNote)
	setString(&d.Name, u.Name)
	setString(&d.Email, u.Email)
	setString(&d.Phone, u.Phone)
	setString(&d.EmergencyContact, u.EmergencyContact)
	setBool(&d.PaymentConfirmed, u.PaymentConfirmed)
}

// Payload is the submission body sent to registration validation.
func (d Draft) Payload() map[string]any {
	return map[string]any{
		"startDateTime":    d.StartDateTime,
		"endDateTime":      d.EndDateTime,
		"occasion":         d.Occasion,
		"experience":       d.Experience,
		"dining":           d.Dining,
		"dietVeg":          d.DietVeg,
		"dietHalal":        d.DietHalal,
		"dietAllergies":    d.DietAllergies,
		"flowers":          d.Flowers,
		"cake":             d.Cake,
		"budget":           d.Budget,
		"personalNote":     d.PersonalNote,
		"name":             d.Name,
		"email":            d.Email,
		"phone":            d.Phone,
		"emergencyContact": d.EmergencyContact,
		"paymentConfirmed": d.PaymentConfirmed,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
