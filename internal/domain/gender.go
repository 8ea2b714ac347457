package domain

// Gender is the enumerated gender code accepted by online_score.
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

var genderNames = map[Gender]string{
	GenderUnknown: "unknown",
	GenderMale:    "male",
	GenderFemale:  "female",
}

func (g Gender) String() string {
	if name, ok := genderNames[g]; ok {
		return name
	}
	return "invalid"
}
