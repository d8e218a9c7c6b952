package bookings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Objective is the client's training goal picked in the first wizard step.
type Objective string

const (
	ObjectiveWeightLoss  Objective = "weight-loss"
	ObjectiveMuscleGain  Objective = "muscle-gain"
	ObjectiveFitness     Objective = "fitness"
	ObjectivePerformance Objective = "performance"
)

var objectiveLabels = map[Objective]string{
	ObjectiveWeightLoss:  "Perte de poids",
	ObjectiveMuscleGain:  "Prise de muscle",
	ObjectiveFitness:     "Remise en forme",
	ObjectivePerformance: "Performance sportive",
}

// Label returns the French display label, empty for unknown values.
func (o Objective) Label() string { return objectiveLabels[o] }

// Valid reports whether o is a known objective.
func (o Objective) Valid() bool { _, ok := objectiveLabels[o]; return ok }

// Location is where the session takes place.
type Location string

const (
	LocationHome    Location = "home"
	LocationOutdoor Location = "outdoor"
	LocationGym     Location = "gym"
)

var locationLabels = map[Location]string{
	LocationHome:    "À domicile",
	LocationOutdoor: "En extérieur",
	LocationGym:     "En salle",
}

func (l Location) Label() string { return locationLabels[l] }
func (l Location) Valid() bool   { _, ok := locationLabels[l]; return ok }

// FitnessLevel is the self-assessed level of the client.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

var levelLabels = map[FitnessLevel]string{
	LevelBeginner:     "Débutant",
	LevelIntermediate: "Intermédiaire",
	LevelAdvanced:     "Avancé",
}

func (f FitnessLevel) Label() string { return levelLabels[f] }
func (f FitnessLevel) Valid() bool   { _, ok := levelLabels[f]; return ok }

// Gender is optional profile information.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Label returns Homme/Femme for known values and Autre for anything else set.
func (g Gender) Label() string {
	switch g {
	case "":
		return ""
	case GenderMale:
		return "Homme"
	case GenderFemale:
		return "Femme"
	default:
		return "Autre"
	}
}

// Status of a stored booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Measure is an optional numeric profile field (age, height, weight). The
// wizard may post numbers, numeric strings, empty strings or null.
type Measure struct {
	Value float64
	Valid bool
}

// NewMeasure returns a set measure.
func NewMeasure(v float64) Measure { return Measure{Value: v, Valid: true} }

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*m = Measure{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*m = Measure{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("bookings: invalid number %s", data)
	}
	*m = Measure{Value: v, Valid: true}
	return nil
}

// String formats the measure without trailing zeros, empty when unset.
func (m Measure) String() string {
	if !m.Valid {
		return ""
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// Request is the payload posted by the booking wizard.
type Request struct {
	// Step 1
	Objective        Objective `json:"objective"`
	ObjectiveDetails string    `json:"objectiveDetails,omitempty"`

	// Step 2
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	Age          Measure      `json:"age"`
	Gender       Gender       `json:"gender,omitempty"`
	Height       Measure      `json:"height"`
	Weight       Measure      `json:"weight"`
	FitnessLevel FitnessLevel `json:"fitnessLevel"`
	HealthIssues string       `json:"healthIssues,omitempty"`

	// Steps 3 and 4
	SelectedDate string   `json:"selectedDate"`
	SelectedTime string   `json:"selectedTime"`
	Location     Location `json:"location"`
	Address      string   `json:"address,omitempty"`

	// Step 5
	TermsAccepted bool `json:"termsAccepted"`
}

// Normalize trims free text and applies the wizard defaults.
func (r *Request) Normalize() {
	r.ObjectiveDetails = strings.TrimSpace(r.ObjectiveDetails)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.HealthIssues = strings.TrimSpace(r.HealthIssues)
	r.SelectedDate = strings.TrimSpace(r.SelectedDate)
	r.SelectedTime = strings.TrimSpace(r.SelectedTime)
	r.Address = strings.TrimSpace(r.Address)
	if r.FitnessLevel == "" {
		r.FitnessLevel = LevelBeginner
	}
	if r.Location == "" {
		r.Location = LocationHome
	}
}

// FullName joins first and last name.
func (r *Request) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Booking is a stored reservation.
type Booking struct {
	ID string `json:"id"`
	Request
	CreatedAt time.Time `json:"createdAt"`
	Status    Status    `json:"status"`
}

// Confirmed reports whether the booking currently holds its slot.
func (b *Booking) Confirmed() bool { return b.Status == StatusConfirmed }

func (b *Booking) clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}
