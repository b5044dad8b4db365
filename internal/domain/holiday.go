package domain

import "slices"

// HolidayDate is one of the celebration days users can offer or look for.
type HolidayDate string

// Holiday dates.
const (
	ChristmasEve    HolidayDate = "24 Dec"
	ChristmasDay    HolidayDate = "25 Dec"
	SecondChristmas HolidayDate = "26 Dec"
	NewYearsEve     HolidayDate = "31 Dec"
)

// HolidayDates lists every valid date token in calendar order.
var HolidayDates = []HolidayDate{ChristmasEve, ChristmasDay, SecondChristmas, NewYearsEve}

// Valid reports whether d is a known date token.
func (d HolidayDate) Valid() bool {
	return slices.Contains(HolidayDates, d)
}

// City is where a profile is based.
type City string

// Cities.
const (
	Vilnius   City = "Vilnius"
	Kaunas    City = "Kaunas"
	Klaipeda  City = "Klaipėda"
	Siauliai  City = "Šiauliai"
	Panevezys City = "Panevėžys"
	OtherCity City = "Other"
)

// Cities lists every valid city.
var Cities = []City{Vilnius, Kaunas, Klaipeda, Siauliai, Panevezys, OtherCity}

// Valid reports whether c is a known city.
func (c City) Valid() bool {
	return slices.Contains(Cities, c)
}

// Language is a language a profile owner speaks.
type Language string

// Languages.
const (
	Lithuanian Language = "Lithuanian"
	English    Language = "English"
	Ukrainian  Language = "Ukrainian"
	Russian    Language = "Russian"
)

// Languages lists every valid language.
var Languages = []Language{Lithuanian, English, Ukrainian, Russian}

// Valid reports whether l is a known language.
func (l Language) Valid() bool {
	return slices.Contains(Languages, l)
}

// Role describes whether a user hosts, visits, or both.
type Role string

// Roles.
const (
	RoleHost  Role = "host"
	RoleGuest Role = "guest"
	RoleBoth  Role = "both"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleHost || r == RoleGuest || r == RoleBoth
}

// CanHost reports whether the role includes hosting.
func (r Role) CanHost() bool {
	return r == RoleHost || r == RoleBoth
}

// CanVisit reports whether the role includes attending as a guest.
func (r Role) CanVisit() bool {
	return r == RoleGuest || r == RoleBoth
}

// Capability is how certain a user is about hosting or attending.
type Capability string

// Capabilities.
const (
	CapabilityYes   Capability = "definite"
	CapabilityMaybe Capability = "maybe"
	CapabilityNo    Capability = "no"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	return c == CapabilityYes || c == CapabilityMaybe || c == CapabilityNo
}

// Concept is the kind of celebration a host offers.
type Concept string

// Concepts.
const (
	ConceptParty   Concept = "Party"
	ConceptDinner  Concept = "Dinner"
	ConceptHangout Concept = "Hangout"
)

// Valid reports whether c is a known concept. Empty means unspecified.
func (c Concept) Valid() bool {
	return c == "" || c == ConceptParty || c == ConceptDinner || c == ConceptHangout
}
