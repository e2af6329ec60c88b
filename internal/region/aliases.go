package region

// AliasTable maps a normalised topology name to the backend's canonical key.
// Lookups are exact; fuzzy matching happens only after the alias step.
type AliasTable map[string]string

// IndiaStates covers the state and union territory names where the boundary
// dataset and the statistical dataset disagree. Keys are stored already
// normalised, so "Jammu & Kashmir" reaches "jammu and kashmir" via Normalize.
var IndiaStates = AliasTable{
	"nct of delhi":                "delhi",
	"delhi":                       "delhi",
	"jammu and kashmir":           "jammu and kashmir",
	"orissa":                      "odisha",
	"odisha":                      "odisha",
	"uttaranchal":                 "uttarakhand",
	"andaman and nicobar island":  "andaman and nicobar islands",
	"andaman and nicobar islands": "andaman and nicobar islands",
	"dadra and nagar haveli and daman and diu": "dadra and nagar haveli",
}

// Canonical returns the alias target for name, if any.
func (t AliasTable) Canonical(name string) (string, bool) {
	canonical, ok := t[name]
	return canonical, ok
}
