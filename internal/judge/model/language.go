package model

// Language identifies a supported compiled language.
type Language string

const (
	LanguageC   Language = "c"
	LanguageCPP Language = "cpp"
)

// SourceFileName returns the in-sandbox file name for user code.
func (l Language) SourceFileName() string {
	if l == LanguageCPP {
		return "user.cpp"
	}
	return "user.c"
}

// Valid reports whether the language is part of the closed set.
func (l Language) Valid() bool {
	return l == LanguageC || l == LanguageCPP
}

// Standards lists the accepted language standards per language.
var Standards = map[Language][]string{
	LanguageC:   {"c89", "c99", "c11", "c17", "c23"},
	LanguageCPP: {"cpp98", "cpp03", "cpp11", "cpp14", "cpp17", "cpp20", "cpp23"},
}

// DefaultCompilerSettings returns the default compiler settings per language.
func DefaultCompilerSettings(l Language) CompilerSettings {
	if l == LanguageCPP {
		return CompilerSettings{Standard: "cpp17", Flags: "-Wall -Wextra -O2"}
	}
	return CompilerSettings{Standard: "c99", Flags: "-Wall -Wextra"}
}

// ValidStandard reports whether the standard belongs to the language.
func ValidStandard(l Language, standard string) bool {
	for _, s := range Standards[l] {
		if s == standard {
			return true
		}
	}
	return false
}
