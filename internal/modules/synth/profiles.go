// Package synth generates labeled synthetic trade and transaction
// collections for training and demonstration.
package synth

import (
	"fmt"
)

// Profile is a named behavioral archetype. Each profile parameterizes the
// distributions used to synthesize a user's trades and transactions and
// carries a ground-truth fraud label. Adding a profile means adding a
// constant here and an entry in the generator's parameter table.
type Profile int

const (
	RegularTrader Profile = iota
	HighVolumeTrader
	NewUser
	SuspiciousPattern
	DayTrader
	LongTermInvestor

	numProfiles
)

var profileNames = [numProfiles]string{
	"Regular Trader",
	"High Volume Trader",
	"New User",
	"Suspicious Pattern",
	"Day Trader",
	"Long-term Investor",
}

var profileDescriptions = [numProfiles]string{
	"Normal trading patterns with moderate activity",
	"Frequent trades with large volumes",
	"Limited trading history, small number of transactions",
	"Unusual trading patterns that may indicate fraud",
	"Multiple trades per day with short holding periods",
	"Fewer trades with longer holding periods",
}

func (p Profile) String() string {
	if p < 0 || p >= numProfiles {
		return fmt.Sprintf("Profile(%d)", int(p))
	}
	return profileNames[p]
}

// Description returns a human-readable summary of the archetype
func (p Profile) Description() string {
	if p < 0 || p >= numProfiles {
		return ""
	}
	return profileDescriptions[p]
}

// Fraudulent reports the ground-truth label of the archetype. Exactly one
// profile is fraudulent by convention.
func (p Profile) Fraudulent() bool {
	return p == SuspiciousPattern
}

// Profiles returns all archetypes in declaration order
func Profiles() []Profile {
	out := make([]Profile, numProfiles)
	for i := range out {
		out[i] = Profile(i)
	}
	return out
}

// ParseProfile resolves a profile by its display name
func ParseProfile(name string) (Profile, error) {
	for i, n := range profileNames {
		if n == name {
			return Profile(i), nil
		}
	}
	return 0, fmt.Errorf("unknown profile %q", name)
}
