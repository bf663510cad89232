package language

import xlanguage "golang.org/x/text/language"

// Name is the article language tag stored with every article ("english", "dutch").
type Name string

const (
	English Name = "english"
	Dutch   Name = "dutch"

	Unknown Name = ""
)

// Supported lists the languages that ship a stopword list, in a fixed order.
var Supported = []Name{English, Dutch}

// Resolve maps a stored name or a BCP 47 tag onto a supported language.
// "english", "en" and "en-GB" all resolve to English; anything else is Unknown.
func Resolve(raw string) Name {
	switch code := NormalizeCode(raw); code {
	case "english", "en", "eng":
		return English
	case "dutch", "nl", "nld", "vlaams", "flemish":
		return Dutch
	default:
		return Unknown
	}
}

// Tag returns the x/text tag used for language-aware case mapping.
func (n Name) Tag() xlanguage.Tag {
	switch n {
	case English:
		return xlanguage.English
	case Dutch:
		return xlanguage.Dutch
	default:
		return xlanguage.Und
	}
}

func (n Name) String() string {
	if n == Unknown {
		return "und"
	}
	return string(n)
}
