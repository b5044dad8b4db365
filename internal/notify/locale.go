package notify

import (
	"golang.org/x/text/language"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
)

var (
	supportedTags = []language.Tag{language.Lithuanian, language.English}
	localeMatcher = language.NewMatcher(supportedTags)
)

// MatchLocale picks the email locale for a recipient. An explicit profile
// locale wins, then the Accept-Language header, then fallback.
func MatchLocale(preferred domain.Locale, acceptLanguage string, fallback domain.Locale) domain.Locale {
	if preferred.Valid() {
		return preferred
	}
	if acceptLanguage != "" {
		tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
		if err == nil && len(tags) > 0 {
			_, idx, conf := localeMatcher.Match(tags...)
			if conf != language.No {
				return localeFor(supportedTags[idx])
			}
		}
	}
	if fallback.Valid() {
		return fallback
	}
	return domain.LocaleLithuanian
}

func localeFor(tag language.Tag) domain.Locale {
	if tag == language.English {
		return domain.LocaleEnglish
	}
	return domain.LocaleLithuanian
}

var dateNames = map[domain.Locale]map[domain.HolidayDate]string{
	domain.LocaleLithuanian: {
		domain.ChristmasEve:    "Kūčias (gruodžio 24 d.)",
		domain.ChristmasDay:    "Kalėdas (gruodžio 25 d.)",
		domain.SecondChristmas: "antrąją Kalėdų dieną (gruodžio 26 d.)",
		domain.NewYearsEve:     "Naujųjų metų išvakares (gruodžio 31 d.)",
	},
	domain.LocaleEnglish: {
		domain.ChristmasEve:    "Christmas Eve (24 Dec)",
		domain.ChristmasDay:    "Christmas Day (25 Dec)",
		domain.SecondChristmas: "the second day of Christmas (26 Dec)",
		domain.NewYearsEve:     "New Year's Eve (31 Dec)",
	},
}

// DateLabel renders a holiday date for an email in locale.
func DateLabel(date domain.HolidayDate, locale domain.Locale) string {
	if names, ok := dateNames[locale]; ok {
		if name, ok := names[date]; ok {
			return name
		}
	}
	return string(date)
}
